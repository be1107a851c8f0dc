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

// Sema is a counting semaphore. Unlike the other primitives it must be
// created through SemaInit.
type Sema struct {
	mx Mutex
	cd Cond
	nb int
}

// SemaInit returns a semaphore holding the given initial count.
func SemaInit(count int) *Sema {
	if count < 0 {
		count = 0
	}

	s := &Sema{nb: count}
	s.mx.SetName("sema", "")

	return s
}

// Wait blocks while the count is zero, then consumes one unit.
func (o *Sema) Wait() {
	o.mx.Lock()

	for o.nb == 0 {
		o.cd.Wait(&o.mx)
	}

	o.nb--
	o.mx.Unlock()
}

// Post releases n units. One unit signals a single waiter; several units
// broadcast so every waiter rechecks the count.
func (o *Sema) Post(n int) {
	if n < 1 {
		return
	}

	o.mx.Lock()
	o.nb += n

	if n > 1 {
		o.cd.Broadcast()
	} else {
		o.cd.Signal()
	}

	o.mx.Unlock()
}

// Count returns the currently available units.
func (o *Sema) Count() int {
	o.mx.Lock()
	defer o.mx.Unlock()

	return o.nb
}
