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

package urlspace

import (
	"path"
	"strings"
)

// catchAll is the filter of the channel holding patterns without wildcard.
const catchAll = "*"

// MkSeq flattens a (server, method, url) tuple into its token sequence:
// the server, the method, then each non-empty path segment. Trailing and
// duplicated slashes are normalized away. A tuple with an empty method
// yields a server-only sequence.
func MkSeq(server, method, url string) []string {
	if method == "" {
		return []string{server}
	}

	var seq = []string{server, method}

	for _, s := range strings.Split(url, "/") {
		if s != "" {
			seq = append(seq, s)
		}
	}

	return seq
}

// hasFilter reports whether the sequence's last token carries a filename
// wildcard, making it a channel filter.
func hasFilter(seq []string) bool {
	if len(seq) < 3 {
		return false
	}

	return strings.ContainsAny(seq[len(seq)-1], "*?")
}

// matchFilter reports whether the token matches the channel filter, using
// case-sensitive filename globbing.
func matchFilter(filter, token string) bool {
	if filter == catchAll {
		return true
	}

	ok, err := path.Match(filter, token)
	return err == nil && ok
}
