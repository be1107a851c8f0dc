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

package workerpool

import (
	gosync "sync"
	"time"

	liblog "github.com/sabouaram/aoserver/logger"
	libsem "github.com/sabouaram/aoserver/semaphore"
	libskt "github.com/sabouaram/aoserver/socket"
	libsyn "github.com/sabouaram/aoserver/sync"
)

type pool struct {
	mx libsyn.Mutex
	cd libsyn.Cond
	wg gosync.WaitGroup

	c Config
	r FuncRun
	l liblog.FuncLog

	// sem is the hard cap on worker goroutines: one slot taken per spawn,
	// released when the worker retires
	sem libsem.Sem

	frl []*libskt.Conn // free records
	wtq []*libskt.Conn // waiting queue, head first
	act []*libskt.Conn // records held by workers

	nextID   uint64
	current  int
	idle     int
	waiting  int
	stopping bool

	rdm gosync.Mutex
	rdf []FuncReady
}

func (o *pool) log() liblog.Logger {
	if o.l != nil {
		if g := o.l(); g != nil {
			return g
		}
	}

	return nil
}

func (o *pool) RegisterReady(fct FuncReady) {
	if fct == nil {
		return
	}

	o.rdm.Lock()
	o.rdf = append(o.rdf, fct)
	o.rdm.Unlock()
}

func (o *pool) runReady() {
	o.rdm.Lock()
	lst := make([]FuncReady, len(o.rdf))
	copy(lst, o.rdf)
	o.rdm.Unlock()

	for _, f := range lst {
		f()
	}
}

func (o *pool) Enqueue(h libskt.Handoff) libskt.EnqueueCode {
	var spawn bool

	o.mx.Lock()

	if o.stopping {
		o.mx.Unlock()
		return libskt.EnqueueShutdown
	}

	if len(o.frl) == 0 {
		o.mx.Unlock()
		return libskt.EnqueueFull
	}

	c := o.frl[len(o.frl)-1]
	o.frl = o.frl[:len(o.frl)-1]

	o.nextID++
	c.Init(o.nextID, h.Drv, h.Sock, h.Req)

	o.wtq = append(o.wtq, c)
	o.waiting++

	if o.idle == 0 && o.current < o.c.MaxWorkers && o.sem.NewWorkerTry() {
		o.idle++
		o.current++
		spawn = true
	}

	o.cd.Signal()
	o.mx.Unlock()

	if spawn {
		o.wg.Add(1)
		go o.worker()
	}

	return libskt.EnqueueOK
}

// worker serves queued connections until told to stop, or until an idle
// timeout retires it while the pool holds more than its minimum.
func (o *pool) worker() {
	defer o.wg.Done()
	defer o.sem.DeferWorker()
	defer libsyn.TlsCleanup()

	o.mx.Lock()

	for {
		var deadline time.Time

		if o.current > o.c.MinWorkers {
			deadline = time.Now().Add(o.c.IdleTimeout.Time())
		}

		var expired bool

		for !o.stopping && len(o.wtq) == 0 {
			if e := o.cd.TimedWait(&o.mx, deadline); e != nil {
				expired = true
				break
			}
		}

		if len(o.wtq) == 0 {
			if o.stopping || (expired && o.current > o.c.MinWorkers) {
				break
			}

			continue
		}

		c := o.wtq[0]
		o.wtq = o.wtq[1:]
		o.waiting--
		o.idle--
		o.act = append(o.act, c)

		o.mx.Unlock()
		o.r(c)
		o.mx.Lock()

		o.dropActive(c)
		c.Reset()

		wasEmpty := len(o.frl) == 0
		o.frl = append(o.frl, c)
		o.idle++

		if wasEmpty {
			o.mx.Unlock()
			o.runReady()
			o.mx.Lock()
		}
	}

	o.current--
	o.idle--
	o.cd.Broadcast()
	o.mx.Unlock()
}

func (o *pool) dropActive(c *libskt.Conn) {
	for i, x := range o.act {
		if x == c {
			o.act = append(o.act[:i], o.act[i+1:]...)
			return
		}
	}
}

func (o *pool) Stop(deadline time.Time) {
	o.mx.Lock()
	o.stopping = true
	o.cd.Broadcast()

	for o.current > 0 {
		if e := o.cd.TimedWait(&o.mx, deadline); e != nil {
			if l := o.log(); l != nil {
				l.Warning("%d workers still busy past the shutdown deadline", nil, o.current)
			}

			break
		}
	}

	done := o.current == 0
	o.mx.Unlock()

	if done {
		o.wg.Wait()
	}

	o.sem.DeferMain()
}

func (o *pool) Stats() Stats {
	o.mx.Lock()
	defer o.mx.Unlock()

	return Stats{
		Current: o.current,
		Idle:    o.idle,
		Waiting: o.waiting,
		Free:    len(o.frl),
		Min:     o.c.MinWorkers,
		Max:     o.c.MaxWorkers,
	}
}
