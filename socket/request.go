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
	"bytes"
	"fmt"
	"strconv"
	"strings"
	gosync "sync"
)

// ReadState tracks the progress of one request's read-ahead.
type ReadState uint8

const (
	// StateInit precedes the first byte.
	StateInit ReadState = iota
	// StateReadingRequest reads the request line.
	StateReadingRequest
	// StateReadingHeaders reads the header block.
	StateReadingHeaders
	// StateReadingBody reads the declared body.
	StateReadingBody
	// StateReady holds a fully buffered request.
	StateReady
)

// ReadCode is the outcome of one read-ahead step.
type ReadCode int

const (
	// ReadReady means the request is fully buffered.
	ReadReady ReadCode = iota
	// ReadMore means more bytes are needed.
	ReadMore
	// ReadError means the peer closed early or sent a malformed request.
	ReadError
)

// Request is the reusable record assembled by the driver's read-ahead
// before a connection is handed to the worker pool. The buffer is split by
// three offsets: Coff marks the content start once headers are parsed,
// Woff the next write position, Roff the next read position.
type Request struct {
	Buf []byte

	Method   string
	RawUrl   string
	Proto    string
	Major    int
	Minor    int
	Scheme   string // non empty on absolute-url requests
	Host     string
	Path     string
	Query    string
	Headers  map[string][]string
	HdrOrder []string

	ContentLength int64
	Coff          int
	Woff          int
	Roff          int

	State ReadState

	hcase HeaderCase
}

var reqPool = gosync.Pool{
	New: func() interface{} {
		return &Request{
			Headers: make(map[string][]string),
		}
	},
}

// NewRequest takes a reset request record from the shared free list.
func NewRequest(hcase HeaderCase) *Request {
	r := reqPool.Get().(*Request)
	r.hcase = hcase

	return r
}

// FreeRequest resets the record and returns it to the shared free list.
func FreeRequest(r *Request) {
	if r == nil {
		return
	}

	r.Reset()
	reqPool.Put(r)
}

// Reset clears the record for reuse, truncating the header map instead of
// reallocating it.
func (r *Request) Reset() {
	r.Buf = r.Buf[:0]
	r.Method, r.RawUrl, r.Proto = "", "", ""
	r.Major, r.Minor = 0, 0
	r.Scheme, r.Host, r.Path, r.Query = "", "", "", ""
	r.ContentLength = 0
	r.Coff, r.Woff, r.Roff = 0, 0, 0
	r.State = StateInit
	r.HdrOrder = r.HdrOrder[:0]

	for k := range r.Headers {
		delete(r.Headers, k)
	}
}

// Avail returns the unread byte count between Roff and Woff.
func (r *Request) Avail() int {
	return r.Woff - r.Roff
}

// Append grows the buffer with freshly read bytes, advancing Woff.
func (r *Request) Append(p []byte) {
	r.Buf = append(r.Buf, p...)
	r.Woff += len(p)
}

// Body returns the buffered request body.
func (r *Request) Body() []byte {
	if r.Coff < 1 || r.Coff > len(r.Buf) {
		return nil
	}

	return r.Buf[r.Coff:r.Woff]
}

// Header returns the first value of the named header, honoring the case
// policy the request was parsed with. Under the preserve policy the match
// falls back to a case-insensitive scan.
func (r *Request) Header(name string) string {
	if v := r.Headers[r.foldKey(name)]; len(v) > 0 {
		return v[0]
	}

	if r.hcase == HeaderCasePreserve {
		for k, v := range r.Headers {
			if strings.EqualFold(k, name) && len(v) > 0 {
				return v[0]
			}
		}
	}

	return ""
}

func (r *Request) foldKey(name string) string {
	switch r.hcase {
	case HeaderCaseLower:
		return strings.ToLower(name)
	case HeaderCaseUpper:
		return strings.ToUpper(name)
	}

	return name
}

// Parse drives the read state machine over the buffered bytes. It returns
// ReadReady once the request line, headers and declared body are all
// buffered, ReadMore when bytes are missing, and ReadError on a malformed
// request.
func (r *Request) Parse() ReadCode {
	if r.State == StateInit {
		r.State = StateReadingRequest
	}

	if r.State == StateReadingRequest {
		if c := r.parseRequestLine(); c != ReadReady {
			return c
		}
	}

	if r.State == StateReadingHeaders {
		if c := r.parseHeaders(); c != ReadReady {
			return c
		}
	}

	if r.State == StateReadingBody {
		if int64(r.Woff-r.Coff) < r.ContentLength {
			return ReadMore
		}

		r.State = StateReady
	}

	return ReadReady
}

// parseRequestLine consumes "METHOD URL [HTTP/x.y]". A request without
// protocol token is accepted as a pre-HTTP/1.0 request carrying neither
// headers nor body.
func (r *Request) parseRequestLine() ReadCode {
	e := bytes.IndexByte(r.Buf[:r.Woff], '\n')
	if e < 0 {
		return ReadMore
	}

	line := strings.TrimRight(string(r.Buf[:e]), "\r")
	f := strings.Fields(line)

	switch len(f) {
	case 2:
		r.Method, r.RawUrl = f[0], f[1]
		r.Proto = ""
	case 3:
		r.Method, r.RawUrl, r.Proto = f[0], f[1], f[2]
	default:
		return ReadError
	}

	if r.Method == "" || r.RawUrl == "" {
		return ReadError
	}

	if r.Proto != "" {
		var ok bool

		if r.Major, r.Minor, ok = parseProto(r.Proto); !ok {
			return ReadError
		}
	}

	r.splitUrl()
	r.Roff = e + 1

	if r.Proto == "" {
		// pre-HTTP/1.0: no headers, content starts right away
		r.Coff = r.Roff
		r.State = StateReady
		return ReadReady
	}

	r.State = StateReadingHeaders
	return ReadReady
}

// parseHeaders consumes "Name: value" lines up to the blank line, then
// records the content offset and declared length.
func (r *Request) parseHeaders() ReadCode {
	for {
		e := bytes.IndexByte(r.Buf[r.Roff:r.Woff], '\n')
		if e < 0 {
			return ReadMore
		}

		line := strings.TrimRight(string(r.Buf[r.Roff:r.Roff+e]), "\r")
		r.Roff += e + 1

		if line == "" {
			r.Coff = r.Roff

			if v := r.Header("Content-Length"); v != "" {
				n, err := strconv.ParseInt(v, 10, 64)
				if err != nil || n < 0 {
					return ReadError
				}

				r.ContentLength = n
			}

			r.State = StateReadingBody
			return ReadReady
		}

		i := strings.IndexByte(line, ':')
		if i < 1 {
			return ReadError
		}

		k := r.foldKey(strings.TrimSpace(line[:i]))
		v := strings.TrimSpace(line[i+1:])

		if _, ok := r.Headers[k]; !ok {
			r.HdrOrder = append(r.HdrOrder, k)
		}

		r.Headers[k] = append(r.Headers[k], v)
	}
}

// parseProto splits "HTTP/x.y" into its version pair.
func parseProto(p string) (major, minor int, ok bool) {
	if !strings.HasPrefix(p, "HTTP/") {
		return 0, 0, false
	}

	v := strings.SplitN(p[5:], ".", 2)
	if len(v) != 2 {
		return 0, 0, false
	}

	var e error

	if major, e = strconv.Atoi(v[0]); e != nil {
		return 0, 0, false
	}

	if minor, e = strconv.Atoi(v[1]); e != nil {
		return 0, 0, false
	}

	return major, minor, true
}

// SetUrl replaces the request url in place, the way an internal redirect
// does, and re-derives its parsed parts.
func (r *Request) SetUrl(u string) {
	r.RawUrl = u
	r.Scheme, r.Host, r.Path, r.Query = "", "", "", ""
	r.splitUrl()
}

// splitUrl breaks the raw url into scheme, host, path and query. Absolute
// urls keep their scheme and host so the dispatcher can route them through
// the proxy registry.
func (r *Request) splitUrl() {
	u := r.RawUrl

	if i := strings.Index(u, "://"); i > 0 {
		r.Scheme = u[:i]
		u = u[i+3:]

		if j := strings.IndexByte(u, '/'); j >= 0 {
			r.Host, u = u[:j], u[j:]
		} else {
			r.Host, u = u, "/"
		}
	}

	if i := strings.IndexByte(u, '?'); i >= 0 {
		r.Query = u[i+1:]
		u = u[:i]
	}

	r.Path = u
}

// KeepAliveAllowed reports whether the protocol level and the Connection
// header allow reusing the socket for a further request.
func (r *Request) KeepAliveAllowed() bool {
	c := strings.ToLower(r.Header("Connection"))

	switch {
	case r.Major > 1 || (r.Major == 1 && r.Minor >= 1):
		return c != "close"
	case r.Major == 1:
		return c == "keep-alive"
	}

	return false
}

// String renders the request line for logs.
func (r *Request) String() string {
	if r.Proto == "" {
		return fmt.Sprintf("%s %s", r.Method, r.RawUrl)
	}

	return fmt.Sprintf("%s %s %s", r.Method, r.RawUrl, r.Proto)
}
