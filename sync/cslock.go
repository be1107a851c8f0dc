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

// CsLock is a critical section reentrant by the goroutine holding it:
// nested Enter calls increase a depth counter and the section is released
// once Leave has undone every Enter. The zero value is an open section.
type CsLock struct {
	mx Mutex
	cd Cond

	owner uint64
	depth int
}

// CsInit returns a registered critical section carrying the given
// diagnostics name.
func CsInit(name string) *CsLock {
	l := &CsLock{}
	l.mx.SetName("cs", name)

	return l
}

// Enter acquires the section, nesting when the caller already holds it.
func (o *CsLock) Enter() {
	g := gid()

	o.mx.Lock()

	if o.depth > 0 && o.owner == g {
		o.depth++
		o.mx.Unlock()
		return
	}

	for o.depth > 0 {
		o.cd.Wait(&o.mx)
	}

	o.owner = g
	o.depth = 1
	o.mx.Unlock()
}

// Leave undoes one Enter, releasing the section and waking one waiter when
// the depth reaches zero.
func (o *CsLock) Leave() {
	o.mx.Lock()

	if o.depth > 0 {
		o.depth--
	}

	if o.depth == 0 {
		o.owner = 0
		o.cd.Signal()
	}

	o.mx.Unlock()
}

// Depth returns the current nesting depth.
func (o *CsLock) Depth() int {
	o.mx.Lock()
	defer o.mx.Unlock()

	return o.depth
}
