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

package socket

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// FuncCleanup is a connection teardown callback registered with AtClose.
type FuncCleanup func(c *Conn)

// Conn is the reusable per-connection record a worker owns exclusively
// while handling one request. The worker pool recycles records through its
// free list; Reset prepares a record for its next connection while keeping
// the allocated maps.
type Conn struct {
	ID       uint64
	Arrival  time.Time
	Drv      Driver
	Sock     net.Conn
	Peer     string
	Req      *Request
	NSent    int64
	Recursed int
	Keep     bool

	AuthUser   string
	AuthPasswd string

	interp   interface{}
	cleanups []FuncCleanup

	hdrOut   map[string][]string
	hdrOrder []string
	status   int
	headSent bool
	bodyDone bool
	skipBody bool
	aborted  bool
	clSet    bool
	sendWait time.Duration
}

// Init binds the record to a freshly dequeued connection.
func (c *Conn) Init(id uint64, drv Driver, sock net.Conn, req *Request) {
	c.ID = id
	c.Arrival = time.Now()
	c.Drv = drv
	c.Sock = sock
	c.Req = req

	if sock != nil {
		c.Peer = sock.RemoteAddr().String()
	}

	if drv != nil {
		c.sendWait = drv.Config().SendWait.Time()
	}

	if c.hdrOut == nil {
		c.hdrOut = make(map[string][]string)
	}
}

// Reset clears the record for reuse. The output header map is truncated,
// not reallocated, so a busy pool stops allocating once warm.
func (c *Conn) Reset() {
	c.ID = 0
	c.Drv = nil
	c.Sock = nil
	c.Peer = ""
	c.Req = nil
	c.NSent = 0
	c.Recursed = 0
	c.Keep = false
	c.AuthUser = ""
	c.AuthPasswd = ""
	c.interp = nil
	c.cleanups = c.cleanups[:0]
	c.hdrOrder = c.hdrOrder[:0]
	c.status = 0
	c.headSent = false
	c.bodyDone = false
	c.skipBody = false
	c.aborted = false
	c.clSet = false

	for k := range c.hdrOut {
		delete(c.hdrOut, k)
	}
}

// SetInterp lazily attaches an interpreter handle to the connection.
func (c *Conn) SetInterp(i interface{}) {
	c.interp = i
}

// Interp returns the attached interpreter handle, or nil.
func (c *Conn) Interp() interface{} {
	return c.interp
}

// AtClose registers a cleanup run after the response, in reverse
// registration order.
func (c *Conn) AtClose(fct FuncCleanup) {
	if fct != nil {
		c.cleanups = append(c.cleanups, fct)
	}
}

// RunCleanups runs and drops the registered cleanups, last first.
func (c *Conn) RunCleanups() {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		c.cleanups[i](c)
	}

	c.cleanups = c.cleanups[:0]
}

// SkipBody suppresses the response body, as a HEAD request demands.
func (c *Conn) SkipBody() {
	c.skipBody = true
}

// Abort marks the connection unfit for keep-alive reuse.
func (c *Conn) Abort() {
	c.aborted = true
}

// Aborted reports whether the connection was marked unfit for reuse.
func (c *Conn) Aborted() bool {
	return c.aborted
}

// SetHeader sets a response header, replacing previous values.
func (c *Conn) SetHeader(name, value string) {
	if _, ok := c.hdrOut[name]; !ok {
		c.hdrOrder = append(c.hdrOrder, name)
	}

	c.hdrOut[name] = []string{value}

	if name == "Content-Length" {
		c.clSet = true
	}
}

// AddHeader appends a response header value.
func (c *Conn) AddHeader(name, value string) {
	if _, ok := c.hdrOut[name]; !ok {
		c.hdrOrder = append(c.hdrOrder, name)
	}

	c.hdrOut[name] = append(c.hdrOut[name], value)
}

// HeadersSent reports whether the status line left for the peer.
func (c *Conn) HeadersSent() bool {
	return c.headSent
}

// Status returns the response status sent so far, zero before WriteHeader.
func (c *Conn) Status() int {
	return c.status
}

// WriteHeader sends the status line and accumulated headers. Further
// header changes are lost. Without a socket the status is only recorded.
func (c *Conn) WriteHeader(status int) {
	if c.headSent {
		return
	}

	c.headSent = true
	c.status = status

	if c.Sock == nil {
		return
	}

	proto := "HTTP/1.1"
	if c.Req != nil && c.Req.Major == 1 && c.Req.Minor == 0 {
		proto = "HTTP/1.0"
	}

	b := make([]byte, 0, 256)
	b = append(b, fmt.Sprintf("%s %d %s\r\n", proto, status, http.StatusText(status))...)

	for _, k := range c.hdrOrder {
		for _, v := range c.hdrOut[k] {
			b = append(b, k...)
			b = append(b, ": "...)
			b = append(b, v...)
			b = append(b, "\r\n"...)
		}
	}

	b = append(b, "\r\n"...)
	c.send(b)
}

// Write sends body bytes, emitting a 200 status line first when none was
// sent. HEAD responses count but do not transmit the body.
func (c *Conn) Write(p []byte) (int, error) {
	if !c.headSent {
		c.WriteHeader(http.StatusOK)
	}

	if c.skipBody {
		return len(p), nil
	}

	return c.send(p)
}

func (c *Conn) send(p []byte) (int, error) {
	if c.Sock == nil {
		return 0, ErrorListenClosed.Error(nil)
	}

	if c.sendWait > 0 {
		_ = c.Sock.SetWriteDeadline(time.Now().Add(c.sendWait))
	}

	n, e := c.Sock.Write(p)
	c.NSent += int64(n)

	if e != nil {
		c.aborted = true
	}

	return n, e
}

// ReturnStatus sends a minimal plain text response for the status code.
func (c *Conn) ReturnStatus(status int) {
	c.ReturnText(status, http.StatusText(status))
}

// ReturnText sends a plain text response with its content length, keeping
// the connection reusable.
func (c *Conn) ReturnText(status int, body string) {
	if c.headSent {
		return
	}

	if body != "" && !hasSuffixNl(body) {
		body += "\n"
	}

	c.SetHeader("Content-Type", "text/plain; charset=utf-8")
	c.SetHeader("Content-Length", strconv.Itoa(len(body)))
	c.WriteHeader(status)

	if body != "" {
		_, _ = c.Write([]byte(body))
	}

	c.bodyDone = true
}

// ReturnNotFound sends a 404 response.
func (c *Conn) ReturnNotFound() {
	c.ReturnStatus(http.StatusNotFound)
}

// ResponseDone reports whether a response has been started or completed:
// it is true as soon as the status line was sent, even if the body is not
// finished.
func (c *Conn) ResponseDone() bool {
	return c.bodyDone || c.headSent
}

// CloseResponse terminates the response, emitting the given fallback
// status when nothing was sent at all.
func (c *Conn) CloseResponse(fallback int) {
	if !c.headSent {
		c.ReturnStatus(fallback)
		return
	}

	c.bodyDone = true
}

// KeepAliveUsable reports whether the socket can go back to the driver's
// read-ahead: the protocol allows reuse, the response was length-delimited
// and nothing aborted the connection.
func (c *Conn) KeepAliveUsable() bool {
	if c.aborted || c.Req == nil || c.Sock == nil {
		return false
	}

	return c.Req.KeepAliveAllowed() && c.clSet
}

func hasSuffixNl(s string) bool {
	return len(s) > 0 && s[len(s)-1] == '\n'
}
