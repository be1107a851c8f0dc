/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package httpserver assembles the multi-threaded application server: the
// connection drivers, the worker pool, the dispatch registry and the
// lifecycle controller, behind one Server facade with asynchronous
// start/stop semantics.
package httpserver

import (
	"context"

	libatm "github.com/sabouaram/aoserver/atomic"
	libctx "github.com/sabouaram/aoserver/context"
	liberr "github.com/sabouaram/aoserver/errors"
	libexc "github.com/sabouaram/aoserver/exec"
	liblcy "github.com/sabouaram/aoserver/lifecycle"
	liblog "github.com/sabouaram/aoserver/logger"
	libmon "github.com/sabouaram/aoserver/monitor"
	librtr "github.com/sabouaram/aoserver/router"
	librun "github.com/sabouaram/aoserver/runner/startStop"
	libskt "github.com/sabouaram/aoserver/socket"
)

// Info provides read-only access to server identification information.
type Info interface {
	// GetName returns the unique identifier name of the server instance.
	GetName() string

	// GetBindable returns the bind address of the first listener.
	GetBindable() string

	// GetExpose returns the public url of the first listener.
	GetExpose() string

	// IsDisable returns true if the server is configured as disabled.
	IsDisable() bool
}

// Server is one application server instance. Its lifecycle methods come
// from the embedded runner: Start launches asynchronously, Stop drives the
// timed shutdown protocol.
type Server interface {
	librun.StartStop
	Info

	// GetConfig returns a copy of the current configuration.
	GetConfig() *Config

	// SetConfig replaces the configuration after validation. The server
	// must be stopped.
	SetConfig(cfg Config, defLog liblog.FuncLog) liberr.Error

	// Router returns the dispatch registry of the server.
	Router() librtr.Registry

	// Lifecycle returns the lifecycle controller of the server.
	Lifecycle() liblcy.Controller

	// Exec returns the request execution pipeline of the server.
	Exec() libexc.Exec

	// Metrics returns the prometheus collector publishing the server's
	// gauges. The caller registers it where appropriate.
	Metrics() *libmon.Metrics

	// Monitors returns the health check pool of the server.
	Monitors() libmon.Pool

	// Signal runs the registered signal-phase callbacks, the way a reload
	// signal does.
	Signal()

	// RegisterRequest binds a handler to a url pattern.
	RegisterRequest(server, method, url string, proc librtr.HandlerProc, del librtr.FuncDelete, arg interface{}, flags librtr.Flag)

	// UnregisterRequest removes a handler binding.
	UnregisterRequest(server, method, url string, inherit bool)

	// RegisterFilter appends a filter to the phases of the mask.
	RegisterFilter(server string, phases librtr.FilterPhase, method, urlPattern string, proc librtr.FilterProc, arg interface{})

	// RegisterTrace appends a void-trace filter.
	RegisterTrace(server, method, urlPattern string, proc librtr.FilterProc, arg interface{})

	// RegisterProxyRequest binds a handler to absolute-url requests.
	RegisterProxyRequest(server, method, protocol string, proc librtr.HandlerProc, del librtr.FuncDelete, arg interface{})

	// UnregisterProxyRequest removes a proxy binding.
	UnregisterProxyRequest(server, method, protocol string)

	// AllocNamespaceId returns a fresh url-space namespace id.
	AllocNamespaceId() int

	// SetData attaches a named server-scoped value, the way external
	// collaborators (interpreter factories, template engines) hand their
	// entrypoints to the core. A nil value removes the key.
	SetData(key string, val interface{})

	// GetData returns a named server-scoped value, or nil.
	GetData(key string) interface{}
}

// New creates a server instance from the given configuration. The
// configuration is validated first; defLog may be nil.
func New(cfg Config, defLog liblog.FuncLog) (Server, liberr.Error) {
	s := &srv{
		l: libatm.NewValue[liblog.FuncLog](),
		d: libatm.NewValue[[]libskt.Driver](),
		x: libctx.New[string](context.Background()),
	}

	s.setLogger(defLog)

	s.ctl = liblcy.New(s.logFct())
	s.rtr = librtr.New(s.ctl, s.logFct())
	s.mon = libmon.NewPool()

	if e := s.SetConfig(cfg, defLog); e != nil {
		return nil, e
	}

	s.run = librun.New(s.start, s.stop)

	return s, nil
}
