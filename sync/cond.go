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
	"time"

	liberr "github.com/sabouaram/aoserver/errors"
)

// Cond is a condition variable whose waiters are queued and served in FIFO
// arrival order. Broadcast wakes the queue as a rolling chain: each woken
// waiter wakes its successor once it holds the associated mutex again, so
// the queue drains one waiter at a time in arrival order instead of
// herding onto the mutex. The zero value is ready to use.
type Cond struct {
	q    gosync.Mutex
	head *waiter
	tail *waiter
}

type waiter struct {
	ch    chan struct{}
	next  *waiter // FIFO queue link
	chain *waiter // successor to wake after a broadcast
}

// CondInit returns a ready to use condition variable.
func CondInit() *Cond {
	return &Cond{}
}

func (o *Cond) enqueue() *waiter {
	w := &waiter{ch: make(chan struct{}, 1)}

	o.q.Lock()
	defer o.q.Unlock()

	if o.tail == nil {
		o.head = w
	} else {
		o.tail.next = w
	}

	o.tail = w
	return w
}

// remove unlinks w from the queue, reporting false when w was already
// dequeued by a signal or broadcast.
func (o *Cond) remove(w *waiter) bool {
	o.q.Lock()
	defer o.q.Unlock()

	var prev *waiter

	for c := o.head; c != nil; c = c.next {
		if c != w {
			prev = c
			continue
		}

		if prev == nil {
			o.head = c.next
		} else {
			prev.next = c.next
		}

		if o.tail == c {
			o.tail = prev
		}

		c.next = nil
		return true
	}

	return false
}

func fire(w *waiter) {
	w.ch <- struct{}{}
}

// woken propagates the rolling chain: a released waiter wakes its
// broadcast successor, which then blocks on the mutex the caller already
// holds. Waiters therefore reacquire the mutex in arrival order.
func (w *waiter) woken() {
	if w.chain != nil {
		fire(w.chain)
		w.chain = nil
	}
}

// Wait atomically releases m and suspends the caller until signalled, then
// reacquires m before returning.
func (o *Cond) Wait(m *Mutex) {
	w := o.enqueue()

	m.Unlock()
	<-w.ch
	m.Lock()
	w.woken()
}

// TimedWait is Wait bounded by an absolute deadline. A zero deadline
// degenerates to Wait. It returns ErrorTimeout when the deadline passed
// before a signal; m is reacquired in every case.
func (o *Cond) TimedWait(m *Mutex, deadline time.Time) liberr.Error {
	if deadline.IsZero() {
		o.Wait(m)
		return nil
	}

	w := o.enqueue()
	m.Unlock()

	t := time.NewTimer(time.Until(deadline))
	defer t.Stop()

	select {
	case <-w.ch:
		m.Lock()
		w.woken()
		return nil

	case <-t.C:
	}

	if o.remove(w) {
		m.Lock()
		return ErrorTimeout.Error(nil)
	}

	// lost the race: a signal dequeued us while the timer fired, so
	// consume it and keep the chain rolling.
	<-w.ch
	m.Lock()
	w.woken()

	return nil
}

// Signal wakes the oldest waiter, if any.
func (o *Cond) Signal() {
	o.q.Lock()

	w := o.head
	if w != nil {
		o.head = w.next
		if o.head == nil {
			o.tail = nil
		}

		w.next = nil
	}

	o.q.Unlock()

	if w != nil {
		fire(w)
	}
}

// Broadcast wakes every waiter in arrival order through the rolling chain.
func (o *Cond) Broadcast() {
	o.q.Lock()

	w := o.head
	o.head = nil
	o.tail = nil

	for c := w; c != nil; {
		n := c.next
		c.chain = n
		c.next = nil
		c = n
	}

	o.q.Unlock()

	if w != nil {
		fire(w)
	}
}
