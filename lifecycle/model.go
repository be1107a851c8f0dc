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

package lifecycle

import (
	"time"

	liblog "github.com/sabouaram/aoserver/logger"
	libsyn "github.com/sabouaram/aoserver/sync"
)

type callback struct {
	fct  FuncCallback
	arg  interface{}
	next *callback
}

type teardown struct {
	name string
	done chan struct{}
}

type ctl struct {
	mx libsyn.Mutex
	cd libsyn.Cond
	l  liblog.FuncLog

	started  bool
	stopping bool
	deadline time.Time

	auth FuncAuthorize
	cbs  [PhaseExit + 1]*callback
	tear []*teardown
}

func (o *ctl) log() liblog.Logger {
	if o.l != nil {
		if g := o.l(); g != nil {
			return g
		}
	}

	return nil
}

func (o *ctl) RegisterAtPhase(p Phase, fct FuncCallback, arg interface{}) Handle {
	if fct == nil || p > PhaseExit {
		return nil
	}

	o.mx.Lock()
	defer o.mx.Unlock()

	if o.stopping {
		return nil
	}

	c := &callback{
		fct:  fct,
		arg:  arg,
		next: o.cbs[p],
	}

	o.cbs[p] = c
	return c
}

func (o *ctl) RegisterAtPreStartup(fct FuncCallback, arg interface{}) Handle {
	return o.RegisterAtPhase(PhasePreStartup, fct, arg)
}

func (o *ctl) RegisterAtStartup(fct FuncCallback, arg interface{}) Handle {
	return o.RegisterAtPhase(PhaseStartup, fct, arg)
}

func (o *ctl) RegisterAtSignal(fct FuncCallback, arg interface{}) Handle {
	return o.RegisterAtPhase(PhaseSignal, fct, arg)
}

func (o *ctl) RegisterAtReady(fct FuncCallback, arg interface{}) Handle {
	return o.RegisterAtPhase(PhaseReady, fct, arg)
}

func (o *ctl) RegisterAtServerShutdown(fct FuncCallback, arg interface{}) Handle {
	return o.RegisterAtPhase(PhaseServerShutdown, fct, arg)
}

func (o *ctl) RegisterAtShutdown(fct FuncCallback, arg interface{}) Handle {
	return o.RegisterAtPhase(PhaseShutdown, fct, arg)
}

func (o *ctl) RegisterAtExit(fct FuncCallback, arg interface{}) Handle {
	return o.RegisterAtPhase(PhaseExit, fct, arg)
}

func (o *ctl) RunPhase(p Phase) {
	if p > PhaseExit {
		return
	}

	o.mx.Lock()
	c := o.cbs[p]
	o.mx.Unlock()

	for ; c != nil; c = c.next {
		c.fct(c.arg)
	}
}

func (o *ctl) SetAuthorize(fct FuncAuthorize) {
	o.mx.Lock()
	defer o.mx.Unlock()

	o.auth = fct
}

func (o *ctl) GetAuthorize() FuncAuthorize {
	o.mx.Lock()
	defer o.mx.Unlock()

	return o.auth
}

func (o *ctl) SetStarted() {
	o.mx.Lock()
	o.started = true
	o.cd.Broadcast()
	o.mx.Unlock()
}

func (o *ctl) IsStarted() bool {
	o.mx.Lock()
	defer o.mx.Unlock()

	return o.started
}

func (o *ctl) WaitForStartup() {
	// dirty read fast path
	if o.started {
		return
	}

	o.mx.Lock()
	for !o.started {
		o.cd.Wait(&o.mx)
	}
	o.mx.Unlock()
}

func (o *ctl) SetStopping(timeout time.Duration) {
	o.mx.Lock()

	if !o.stopping {
		o.stopping = true
		o.deadline = time.Now().Add(timeout)
	}

	o.cd.Broadcast()
	o.mx.Unlock()
}

func (o *ctl) IsStopping() bool {
	o.mx.Lock()
	defer o.mx.Unlock()

	return o.stopping
}

func (o *ctl) ShutdownDeadline() time.Time {
	o.mx.Lock()
	defer o.mx.Unlock()

	return o.deadline
}

func (o *ctl) WaitStopping() {
	o.mx.Lock()
	for !o.stopping {
		o.cd.Wait(&o.mx)
	}
	o.mx.Unlock()
}

func (o *ctl) Reset() {
	o.mx.Lock()
	o.started = false
	o.stopping = false
	o.deadline = time.Time{}
	o.tear = nil
	o.mx.Unlock()
}

func (o *ctl) StartShutdown(name string, fct func(deadline time.Time)) {
	if fct == nil {
		return
	}

	t := &teardown{
		name: name,
		done: make(chan struct{}),
	}

	o.mx.Lock()
	d := o.deadline
	o.tear = append(o.tear, t)
	o.mx.Unlock()

	go func() {
		defer close(t.done)
		fct(d)
	}()
}

func (o *ctl) WaitShutdown() {
	o.mx.Lock()
	d := o.deadline
	lst := o.tear
	o.tear = nil
	o.mx.Unlock()

	for _, t := range lst {
		if d.IsZero() {
			<-t.done
			continue
		}

		w := time.NewTimer(time.Until(d))

		select {
		case <-t.done:
		case <-w.C:
			if l := o.log(); l != nil {
				l.Warning("shutdown of %s did not finish before the deadline", nil, t.name)
			}
		}

		w.Stop()
	}
}
