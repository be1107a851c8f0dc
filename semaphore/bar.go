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
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type bar struct {
	s *sem
	b *mpb.Bar
	c *atomic.Int64
	t int64
}

func (o *sem) BarNumber(name, job string, total int64, drop bool, opts []mpb.BarOption) SemBar {
	r := &bar{
		s: o,
		c: new(atomic.Int64),
		t: total,
	}

	if o.p == nil {
		return r
	}

	var b = make([]mpb.BarOption, 0, len(opts)+3)

	b = append(b,
		mpb.PrependDecorators(
			decor.Name(name),
			decor.Name(" "+job),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit(" %d / %d"),
		),
	)

	if drop {
		b = append(b, mpb.BarRemoveOnComplete())
	}

	for _, i := range opts {
		if i != nil {
			b = append(b, i)
		}
	}

	r.b = o.p.AddBar(total, b...)
	return r
}

func (o *bar) NewWorker() error {
	return o.s.NewWorker()
}

func (o *bar) NewWorkerTry() bool {
	return o.s.NewWorkerTry()
}

func (o *bar) DeferWorker() {
	o.Inc(1)
	o.s.DeferWorker()
}

func (o *bar) Inc(n int64) {
	o.c.Add(n)

	if o.b != nil {
		o.b.IncrInt64(n)
	}
}

func (o *bar) Current() int64 {
	if o.b != nil {
		return o.b.Current()
	}

	return o.c.Load()
}

func (o *bar) Completed() bool {
	if o.b != nil {
		return o.b.Completed()
	}

	return o.c.Load() >= o.t
}
