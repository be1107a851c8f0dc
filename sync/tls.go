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

package sync

import (
	gosync "sync"

	liberr "github.com/sabouaram/aoserver/errors"
)

// TlsSlots caps the number of local storage keys in the process.
const TlsSlots = 200

// TlsKey identifies one goroutine-local storage slot.
type TlsKey int

// FuncTlsCleanup releases the value left in a slot when its goroutine
// ends its local storage lifetime.
type FuncTlsCleanup func(value interface{})

var (
	tlsNext  int
	tlsClean [TlsSlots]FuncTlsCleanup
	tlsStore gosync.Map // gid -> *[TlsSlots]interface{}
)

// TlsAlloc reserves a new slot, registering the cleanup run against every
// goroutine's non-nil value on TlsCleanup. Allocation fails once TlsSlots
// keys exist.
func TlsAlloc(cleanup FuncTlsCleanup) (TlsKey, liberr.Error) {
	master.Lock()
	defer master.Unlock()

	if tlsNext >= TlsSlots {
		return -1, ErrorTlsExhausted.Error(nil)
	}

	k := TlsKey(tlsNext)
	tlsClean[k] = cleanup
	tlsNext++

	return k, nil
}

func tlsSlots(create bool) *[TlsSlots]interface{} {
	g := gid()

	if i, ok := tlsStore.Load(g); ok {
		return i.(*[TlsSlots]interface{})
	}

	if !create {
		return nil
	}

	s := new([TlsSlots]interface{})
	a, _ := tlsStore.LoadOrStore(g, s)

	return a.(*[TlsSlots]interface{})
}

// TlsSet stores a value into the calling goroutine's slot.
func TlsSet(key TlsKey, value interface{}) liberr.Error {
	if key < 0 || int(key) >= TlsSlots {
		return ErrorTlsInvalidKey.Error(nil)
	}

	tlsSlots(true)[key] = value
	return nil
}

// TlsGet returns the value stored in the calling goroutine's slot, or nil.
func TlsGet(key TlsKey) interface{} {
	if key < 0 || int(key) >= TlsSlots {
		return nil
	}

	s := tlsSlots(false)
	if s == nil {
		return nil
	}

	return s[key]
}

// TlsCleanup runs the registered cleanup of every non-nil slot of the
// calling goroutine, in key order, then drops its storage. Long lived
// goroutines owning local state must call it before returning.
func TlsCleanup() {
	g := gid()

	i, ok := tlsStore.LoadAndDelete(g)
	if !ok {
		return
	}

	s := i.(*[TlsSlots]interface{})

	master.Lock()
	n := tlsNext
	master.Unlock()

	for k := 0; k < n; k++ {
		if s[k] == nil {
			continue
		}

		if f := tlsClean[k]; f != nil {
			f(s[k])
		}

		s[k] = nil
	}
}
