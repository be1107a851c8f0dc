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

// Package semaphore bounds the number of concurrent workers around a
// weighted semaphore, optionally rendering per-task progress bars while
// workers run.
package semaphore

import (
	"context"
	"runtime"

	"github.com/vbauerster/mpb/v8"
)

// Sem bounds concurrent workers. It also behaves as a context.Context tied
// to its internal lifetime: DeferMain cancels it.
type Sem interface {
	context.Context

	// New returns a fresh semaphore with the same weight and progress mode,
	// sharing nothing but the parent context.
	New() Sem

	// Clone returns a new independent semaphore sharing the progress
	// container of the source, so bars of both render together.
	Clone() Sem

	// Weighted returns the configured weight, or -1 when unlimited.
	Weighted() int64

	// NewWorker blocks until a worker slot is free and takes it.
	NewWorker() error

	// NewWorkerTry takes a worker slot without blocking, reporting success.
	NewWorkerTry() bool

	// DeferWorker releases a slot taken by NewWorker or NewWorkerTry.
	DeferWorker()

	// WaitAll blocks until every taken slot has been released.
	WaitAll() error

	// DeferMain releases the semaphore's resources: the internal context is
	// cancelled and the progress rendering, if any, is flushed.
	DeferMain()

	// BarNumber attaches a counting progress bar to this semaphore. The
	// returned SemBar gates workers on the same slots and increments the
	// bar as workers complete. When drop is set the bar is removed from
	// display on completion. Extra mpb options may be passed through opts.
	BarNumber(name, job string, total int64, drop bool, opts []mpb.BarOption) SemBar
}

// SemBar is a progress bar bound to a semaphore's worker slots.
type SemBar interface {
	// NewWorker takes a worker slot from the owning semaphore.
	NewWorker() error

	// NewWorkerTry takes a worker slot without blocking, reporting success.
	NewWorkerTry() bool

	// DeferWorker increments the bar by one then releases the slot.
	DeferWorker()

	// Inc increments the bar by n without touching worker slots.
	Inc(n int64)

	// Current returns the current bar count.
	Current() int64

	// Completed reports whether the bar reached its total.
	Completed() bool
}

// MaxSimultaneous returns the preferred bound for concurrent workers on
// this host.
func MaxSimultaneous() int {
	return runtime.NumCPU()
}

// SetSimultaneous clamps the given worker bound into [1, MaxSimultaneous].
// Values below one are replaced by MaxSimultaneous.
func SetSimultaneous(m int64) int64 {
	if x := int64(MaxSimultaneous()); m < 1 || m > x {
		return x
	}

	return m
}

// New returns a semaphore admitting up to nbrSimultaneous concurrent
// workers. A negative weight disables the bound entirely. When progress is
// set, a progress container is attached and BarNumber renders into it.
func New(ctx context.Context, nbrSimultaneous int64, progress bool) Sem {
	return newSem(ctx, nbrSimultaneous, progress, nil)
}
