/*
 * MIT License
 *
 * Copyright (c) 2023 Nicolas JUHEL
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

package semaphore

import (
	"context"
	"time"

	"github.com/vbauerster/mpb/v8"
	sdksmp "golang.org/x/sync/semaphore"
)

type sem struct {
	x context.Context
	n context.CancelFunc
	s *sdksmp.Weighted
	w int64
	p *mpb.Progress
}

// newSem builds an instance over the given parent. A non-nil shared
// progress container (Clone) wins over the progress flag.
func newSem(ctx context.Context, nbr int64, progress bool, shared *mpb.Progress) *sem {
	if ctx == nil {
		ctx = context.Background()
	}

	o := &sem{w: nbr}
	o.x, o.n = context.WithCancel(ctx)

	if nbr > 0 {
		o.s = sdksmp.NewWeighted(nbr)
	} else {
		o.w = -1
	}

	if shared != nil {
		o.p = shared
	} else if progress {
		o.p = mpb.NewWithContext(o.x, mpb.WithRefreshRate(100*time.Millisecond))
	}

	return o
}

func (o *sem) Deadline() (deadline time.Time, ok bool) {
	return o.x.Deadline()
}

func (o *sem) Done() <-chan struct{} {
	return o.x.Done()
}

func (o *sem) Err() error {
	return o.x.Err()
}

func (o *sem) Value(key any) any {
	return o.x.Value(key)
}

func (o *sem) New() Sem {
	return newSem(o.x, o.w, o.p != nil, nil)
}

func (o *sem) Clone() Sem {
	return newSem(o.x, o.w, o.p != nil, o.p)
}

func (o *sem) Weighted() int64 {
	return o.w
}

// GetMPB exposes the underlying progress container, or nil when the
// semaphore renders no progress.
func (o *sem) GetMPB() interface{} {
	if o.p == nil {
		return nil
	}

	return o.p
}

func (o *sem) NewWorker() error {
	if o.s == nil {
		return nil
	}

	return o.s.Acquire(o.x, 1)
}

func (o *sem) NewWorkerTry() bool {
	if o.s == nil {
		return true
	}

	return o.s.TryAcquire(1)
}

func (o *sem) DeferWorker() {
	if o.s == nil {
		return
	}

	o.s.Release(1)
}

func (o *sem) WaitAll() error {
	if o.s == nil {
		return nil
	}

	if e := o.s.Acquire(o.x, o.w); e != nil {
		return e
	}

	o.s.Release(o.w)
	return nil
}

func (o *sem) DeferMain() {
	o.n()

	if o.p != nil {
		o.p.Wait()
	}
}
