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
	"sync"
	"time"

	libatm "github.com/sabouaram/aoserver/atomic"
)

// FuncAction is the signature of a start or stop routine driven by the runner.
// A start function may block for the whole life of the component: the runner
// invokes it on a dedicated goroutine and cancels its context on stop.
type FuncAction func(ctx context.Context) error

// StartStop drives an asynchronous start/stop pair. Start never blocks: the
// start function runs on its own goroutine and any error it returns is
// collected into the runner's error list. Calling Start while running first
// stops the previous instance.
type StartStop interface {
	// Start launches the start function. A previous running instance is
	// stopped first and the error list is reset.
	Start(ctx context.Context) error

	// Stop cancels the running start function's context and calls the stop
	// function once. Calling Stop when not running is a no-op.
	Stop(ctx context.Context) error

	// Restart is a Stop followed by a Start.
	Restart(ctx context.Context) error

	// IsRunning returns true while the start function has not returned.
	IsRunning() bool

	// Uptime returns the elapsed time since the last Start while running,
	// and zero otherwise.
	Uptime() time.Duration

	// ErrorsLast returns the most recent collected error, or nil.
	ErrorsLast() error

	// ErrorsList returns a copy of all errors collected since the last Start.
	ErrorsList() []error
}

// New returns a StartStop runner bound to the given start and stop functions.
// Either function may be nil: the corresponding operation then records an
// error at run time instead of failing construction.
func New(start, stop FuncAction) StartStop {
	return &run{
		f: fct{start: start, stop: stop},
		r: libatm.NewValue[bool](),
		t: libatm.NewValue[time.Time](),
	}
}

type fct struct {
	start FuncAction
	stop  FuncAction
}

type run struct {
	s sync.Mutex // serializes Start / Stop / Restart
	m sync.Mutex
	f fct
	e []error
	n context.CancelFunc
	d chan struct{}
	r libatm.Value[bool]
	t libatm.Value[time.Time]
}
