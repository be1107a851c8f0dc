/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package exec orchestrates one connection's handling on a pool worker:
// request validation, credential decoding, the filter chain, the
// authorization hook, dispatch, traces, cleanups, and the keep-alive
// handback to the driver.
package exec

import (
	"net/url"

	liblcy "github.com/sabouaram/aoserver/lifecycle"
	liblog "github.com/sabouaram/aoserver/logger"
	librtr "github.com/sabouaram/aoserver/router"
	libsiz "github.com/sabouaram/aoserver/size"
	libskt "github.com/sabouaram/aoserver/socket"
)

// defaultMaxMemMultipart is the in-memory multipart payload size above
// which a warning is logged.
const defaultMaxMemMultipart = 10 * libsiz.SizeMega

// Exec runs dequeued connections through the full dispatch pipeline.
type Exec interface {
	// Run handles one connection end to end. It is the worker pool's run
	// function.
	Run(c *libskt.Conn)

	// ParseForm decodes the connection's buffered body and query string
	// into form values.
	ParseForm(c *libskt.Conn) (url.Values, error)
}

// New returns an executor dispatching through the given registry under the
// given lifecycle controller.
func New(rtr librtr.Registry, ctl liblcy.Controller, log liblog.FuncLog, maxMemMultipart libsiz.Size) Exec {
	if maxMemMultipart == 0 {
		maxMemMultipart = defaultMaxMemMultipart
	}

	return &run{
		r: rtr,
		c: ctl,
		l: log,
		m: maxMemMultipart,
	}
}

type run struct {
	r librtr.Registry
	c liblcy.Controller
	l liblog.FuncLog
	m libsiz.Size
}

func (o *run) log() liblog.Logger {
	if o.l != nil {
		if g := o.l(); g != nil {
			return g
		}
	}

	return nil
}
