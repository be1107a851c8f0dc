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
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"

	libskt "github.com/sabouaram/aoserver/socket"
)

// ParseForm decodes the buffered request body into form values: query
// string values first, then an url-encoded or multipart body. Multipart
// file parts stay in memory with the other values; payloads beyond the
// configured threshold only log a warning.
func (o *run) ParseForm(c *libskt.Conn) (url.Values, error) {
	var r = make(url.Values)

	if c == nil || c.Req == nil {
		return r, nil
	}

	if q, e := url.ParseQuery(c.Req.Query); e == nil {
		for k, v := range q {
			r[k] = append(r[k], v...)
		}
	}

	ct := c.Req.Header("Content-Type")
	if ct == "" {
		return r, nil
	}

	mt, params, e := mime.ParseMediaType(ct)
	if e != nil {
		return r, e
	}

	body := c.Req.Body()

	switch {
	case mt == "application/x-www-form-urlencoded":
		q, e := url.ParseQuery(string(body))
		if e != nil {
			return r, e
		}

		for k, v := range q {
			r[k] = append(r[k], v...)
		}

	case strings.HasPrefix(mt, "multipart/"):
		if int64(len(body)) > o.m.Int64() {
			if l := o.log(); l != nil {
				l.Warning("multipart payload of %d bytes held in memory, above the %s threshold", nil, len(body), o.m.String())
			}
		}

		mr := multipart.NewReader(bytes.NewReader(body), params["boundary"])

		for {
			p, e := mr.NextPart()
			if e == io.EOF {
				break
			} else if e != nil {
				return r, e
			}

			b, e := io.ReadAll(p)
			if e != nil {
				return r, e
			}

			if n := p.FormName(); n != "" {
				r[n] = append(r[n], string(b))
			}
		}
	}

	return r, nil
}
