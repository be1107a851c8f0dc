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

// Package urlspace indexes payloads under (server, method, url, namespace)
// tuples. Each namespace owns a junction: an ordered list of channels, one
// per filename-wildcard filter found in registered patterns, each holding a
// trie keyed by path segments. Lookups iterate channels whose filter
// matches the url's last segment, descend the trie, and honor payload
// inheritance along the path prefix unless registered otherwise.
//
// The space performs no locking of its own: callers serialize access, the
// way the request registry does behind its single mutex.
package urlspace

// Op carries the option flags of an operation on the space.
type Op uint8

const (
	// OpNoInherit addresses the payload slot that never propagates to
	// deeper urls.
	OpNoInherit Op = 1 << iota

	// OpNoDelete suppresses the delete function of a displaced payload.
	OpNoDelete

	// OpRecurse applies a delete to the whole subtree under the url.
	OpRecurse
)

// FuncDelete releases a payload displaced or removed from the space.
type FuncDelete func(data interface{})

// Space is the payload index. It is not safe for concurrent use.
type Space interface {
	// AllocNamespace returns a new namespace id backed by its own junction.
	// Ids are monotonically allocated from zero.
	AllocNamespace() int

	// Add stores a payload under the given tuple. When the url's last
	// segment carries a wildcard it becomes the channel filter. An occupied
	// slot is displaced, invoking its delete function unless OpNoDelete is
	// given.
	Add(id int, server, method, url string, data interface{}, del FuncDelete, flags Op)

	// Get returns the payload serving the url, honoring inheritance: the
	// deepest inheriting payload along the path applies unless the terminal
	// node carries a non-inheriting payload. Across channels, the deepest
	// match wins. On a tie, wildcard filters win in their registration
	// order, and the catch-all channel comes last.
	Get(id int, server, method, url string) interface{}

	// GetExact returns the payload stored at exactly the given tuple,
	// reading the slot selected by OpNoInherit, without any inheritance.
	GetExact(id int, server, method, url string, flags Op) interface{}

	// Del removes the payload stored at the tuple's slot selected by
	// OpNoInherit, invoking its delete function unless OpNoDelete is given,
	// and prunes emptied nodes and branches. With OpRecurse the whole
	// subtree under the url is truncated for this namespace, both slots
	// included. It returns the removed payload for single deletes, nil for
	// recursive ones.
	Del(id int, server, method, url string, flags Op) interface{}
}

// New returns an empty space.
func New() Space {
	return &space{}
}
