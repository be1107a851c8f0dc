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

package exec

import (
	"encoding/base64"
	"net/http"
	"strings"

	liblcy "github.com/sabouaram/aoserver/lifecycle"
	loglvl "github.com/sabouaram/aoserver/logger/level"
	librtr "github.com/sabouaram/aoserver/router"
	libskt "github.com/sabouaram/aoserver/socket"
)

func (o *run) Run(c *libskt.Conn) {
	if c == nil {
		return
	}

	st := o.dispatch(c)
	o.close(c, st)

	keep := c.KeepAliveUsable() && !o.stopping()
	sock := c.Sock
	drv := c.Drv

	c.RunCleanups()

	libskt.FreeRequest(c.Req)
	c.Req = nil

	if drv != nil && sock != nil {
		drv.Done(sock, keep)
	}
}

func (o *run) stopping() bool {
	return o.c != nil && o.c.IsStopping()
}

func (o *run) server(c *libskt.Conn) string {
	if c.Drv != nil {
		return c.Drv.Config().Name
	}

	return ""
}

// dispatch walks the request through validation, filters, authorization
// and the registered handler, returning the aggregated status.
func (o *run) dispatch(c *libskt.Conn) int {
	if c.Req == nil || c.Req.Method == "" || c.Req.RawUrl == "" {
		c.Abort()
		c.ReturnStatus(http.StatusBadRequest)
		return librtr.ERROR
	}

	srv := o.server(c)

	if c.Req.Proto != "" {
		o.decodeAuth(c)

		if c.Req.Method == http.MethodHead {
			c.SkipBody()
		}
	}

	// absolute-url requests go through the proxy bindings
	if c.Req.Scheme != "" {
		return o.r.RunProxy(c)
	}

	if st := o.r.RunFilters(c, srv, librtr.FilterPreAuth); st != librtr.OK {
		return st
	}

	if st := o.authorize(c); st != librtr.OK {
		return st
	}

	if st := o.r.RunFilters(c, srv, librtr.FilterPostAuth); st != librtr.OK {
		return st
	}

	return o.r.RunRequest(c)
}

// decodeAuth extracts Basic credentials into the connection record.
func (o *run) decodeAuth(c *libskt.Conn) {
	h := c.Req.Header("Authorization")
	if h == "" {
		return
	}

	s := strings.SplitN(h, " ", 2)
	if len(s) != 2 || !strings.EqualFold(s[0], "Basic") {
		return
	}

	b, e := base64.StdEncoding.DecodeString(strings.TrimSpace(s[1]))
	if e != nil {
		return
	}

	if u, p, ok := strings.Cut(string(b), ":"); ok {
		c.AuthUser, c.AuthPasswd = u, p
	} else {
		c.AuthUser = string(b)
	}
}

// authorize runs the lifecycle authorization hook. The request body is
// already fully buffered by the read-ahead, so a refused request leaves
// the socket clean for keep-alive.
func (o *run) authorize(c *libskt.Conn) int {
	if o.c == nil {
		return librtr.OK
	}

	auth := o.c.GetAuthorize()
	if auth == nil {
		return librtr.OK
	}

	switch auth(c.Req.Method, c.Req.Path, c.AuthUser, c.AuthPasswd, c.Peer) {
	case liblcy.AuthOK:
		return librtr.OK

	case liblcy.AuthForbidden:
		c.ReturnStatus(http.StatusForbidden)

	case liblcy.AuthUnauthorized:
		c.SetHeader("WWW-Authenticate", `Basic realm="server"`)
		c.ReturnStatus(http.StatusUnauthorized)

	default:
		c.ReturnStatus(http.StatusInternalServerError)
	}

	return librtr.FilterReturn
}

// close terminates the response then runs the trace chains. Traces cannot
// affect the response anymore.
func (o *run) close(c *libskt.Conn, st int) {
	if !c.ResponseDone() {
		// a handler that sent nothing at all yields a 500
		c.CloseResponse(http.StatusInternalServerError)
	}

	if st != librtr.OK && st != librtr.FilterReturn {
		return
	}

	srv := o.server(c)

	if tr := o.r.RunFilters(c, srv, librtr.FilterTrace); tr != librtr.OK {
		if l := o.log(); l != nil {
			l.LogDetails(loglvl.DebugLevel, "trace filter returned %d on %s", nil, nil, nil, tr, c.Req.Path)
		}

		return
	}

	_ = o.r.RunFilters(c, srv, librtr.FilterVoidTrace)
}
