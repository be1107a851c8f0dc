/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package startStop

import (
	"context"
	"fmt"
	"time"
)

func (o *run) errAdd(e error) {
	if e == nil {
		return
	}

	o.m.Lock()
	defer o.m.Unlock()

	o.e = append(o.e, e)
}

func (o *run) errReset() {
	o.m.Lock()
	defer o.m.Unlock()

	o.e = o.e[:0]
}

func (o *run) ErrorsLast() error {
	o.m.Lock()
	defer o.m.Unlock()

	if len(o.e) < 1 {
		return nil
	}

	return o.e[len(o.e)-1]
}

func (o *run) ErrorsList() []error {
	o.m.Lock()
	defer o.m.Unlock()

	var r = make([]error, len(o.e))
	copy(r, o.e)

	return r
}

func (o *run) IsRunning() bool {
	return o.r.Load()
}

func (o *run) Uptime() time.Duration {
	if !o.r.Load() {
		return 0
	}

	t := o.t.Load()
	if t.IsZero() {
		return 0
	}

	return time.Since(t)
}

func (o *run) Start(ctx context.Context) error {
	o.s.Lock()
	defer o.s.Unlock()

	o.stopRun(ctx, false)
	o.errReset()

	if o.f.start == nil {
		o.errAdd(fmt.Errorf("invalid start function"))
		return nil
	}

	var (
		x context.Context
		d = make(chan struct{})
	)

	o.m.Lock()
	x, o.n = context.WithCancel(ctx)
	o.d = d
	o.m.Unlock()

	o.t.Store(time.Now())
	o.r.Store(true)

	go func() {
		defer func() {
			o.r.Store(false)
			close(d)
		}()

		if e := o.f.start(x); e != nil {
			o.errAdd(e)
		}
	}()

	return nil
}

func (o *run) Stop(ctx context.Context) error {
	o.s.Lock()
	defer o.s.Unlock()

	o.stopRun(ctx, true)
	return nil
}

func (o *run) Restart(ctx context.Context) error {
	if e := o.Stop(ctx); e != nil {
		return e
	}

	return o.Start(ctx)
}

// stopRun cancels the running instance's context and, if one was running,
// invokes the stop function exactly once. The callErr flag is used to keep
// the previous error list intact when stopping as part of a new Start.
func (o *run) stopRun(ctx context.Context, callErr bool) {
	o.m.Lock()
	n := o.n
	d := o.d
	o.n = nil
	o.d = nil
	o.m.Unlock()

	if n == nil {
		return
	}

	n()

	if d != nil {
		select {
		case <-d:
		case <-ctx.Done():
		}
	}

	if o.f.stop == nil {
		if callErr {
			o.errAdd(fmt.Errorf("invalid stop function"))
		}
		return
	}

	if e := o.f.stop(ctx); e != nil && callErr {
		o.errAdd(e)
	}
}
