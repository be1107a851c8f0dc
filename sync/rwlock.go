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

// RWLock is a read/write lock with writer preference: as soon as one
// writer waits, new readers block until every pending writer has been
// served. The lock count is positive while shared, and -1 while exclusive.
// The zero value is an unlocked lock.
type RWLock struct {
	mx Mutex
	rc Cond
	wc Cond

	lockcnt int
	nwaitrd int
	nwaitwr int
}

// RWInit returns a registered lock carrying the given diagnostics name.
func RWInit(name string) *RWLock {
	l := &RWLock{}
	l.mx.SetName("rw", name)

	return l
}

// RdLock acquires the lock shared. It waits while a writer holds the lock
// or any writer is waiting for it.
func (o *RWLock) RdLock() {
	o.mx.Lock()

	o.nwaitrd++
	for o.lockcnt < 0 || o.nwaitwr > 0 {
		o.rc.Wait(&o.mx)
	}
	o.nwaitrd--

	o.lockcnt++
	o.mx.Unlock()
}

// WrLock acquires the lock exclusive, waiting for every reader and any
// previous writer to release.
func (o *RWLock) WrLock() {
	o.mx.Lock()

	o.nwaitwr++
	for o.lockcnt != 0 {
		o.wc.Wait(&o.mx)
	}
	o.nwaitwr--

	o.lockcnt = -1
	o.mx.Unlock()
}

// Unlock releases either mode. The last release wakes one waiting writer
// if present, otherwise every waiting reader.
func (o *RWLock) Unlock() {
	o.mx.Lock()

	if o.lockcnt < 0 {
		o.lockcnt = 0
	} else if o.lockcnt > 0 {
		o.lockcnt--
	}

	if o.lockcnt == 0 {
		if o.nwaitwr > 0 {
			o.wc.Signal()
		} else if o.nwaitrd > 0 {
			o.rc.Broadcast()
		}
	}

	o.mx.Unlock()
}

// LockCount returns the current lock count: the number of readers holding
// the lock, or -1 when a writer holds it.
func (o *RWLock) LockCount() int {
	o.mx.Lock()
	defer o.mx.Unlock()

	return o.lockcnt
}
