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

// Package workerpool runs dispatched requests on a bounded set of lazily
// created workers. Connection records come from a preallocated free list
// whose exhaustion is the pool's backpressure signal; queued connections
// are served in arrival order, workers above the configured minimum retire
// after an idle timeout, and shutdown drains under an absolute deadline.
package workerpool

import (
	"context"
	"time"

	libdur "github.com/sabouaram/aoserver/duration"
	liblog "github.com/sabouaram/aoserver/logger"
	libsem "github.com/sabouaram/aoserver/semaphore"
	libskt "github.com/sabouaram/aoserver/socket"
)

const (
	defaultMinWorkers = 1
	defaultMaxWorkers = 10
	defaultMaxWaiting = 100
	defaultIdle       = 30 * time.Second
)

// Config sizes one pool.
type Config struct {
	// MinWorkers is the worker count kept alive while not stopping,
	// defaulting to 1.
	MinWorkers int `json:"minWorkers,omitempty" yaml:"minWorkers,omitempty" mapstructure:"minWorkers" validate:"gte=0"`

	// MaxWorkers bounds the worker count, defaulting to 10.
	MaxWorkers int `json:"maxWorkers,omitempty" yaml:"maxWorkers,omitempty" mapstructure:"maxWorkers" validate:"gte=0"`

	// MaxWaiting sizes the connection free list and therefore the waiting
	// queue, defaulting to 100.
	MaxWaiting int `json:"maxWaiting,omitempty" yaml:"maxWaiting,omitempty" mapstructure:"maxWaiting" validate:"gte=0"`

	// IdleTimeout retires workers above MinWorkers after this idle time,
	// defaulting to 30s.
	IdleTimeout libdur.Duration `json:"idleTimeout,omitempty" yaml:"idleTimeout,omitempty" mapstructure:"idleTimeout"`
}

func (c *Config) setDefaults() {
	if c.MinWorkers < 1 {
		c.MinWorkers = defaultMinWorkers
	}

	if c.MaxWorkers < c.MinWorkers {
		c.MaxWorkers = defaultMaxWorkers
	}

	if c.MaxWorkers < c.MinWorkers {
		c.MaxWorkers = c.MinWorkers
	}

	if c.MaxWaiting < 1 {
		c.MaxWaiting = defaultMaxWaiting
	}

	if c.IdleTimeout == 0 {
		c.IdleTimeout = libdur.ParseDuration(defaultIdle)
	}
}

// FuncRun handles one dequeued connection.
type FuncRun func(c *libskt.Conn)

// FuncReady is invoked when the free list leaves exhaustion, meaning the
// pool can take work again.
type FuncReady func()

// Stats exposes the pool counters, all read under the pool lock.
type Stats struct {
	Current int
	Idle    int
	Waiting int
	Free    int
	Min     int
	Max     int
}

// Pool is one server's worker pool. It implements the driver's queue.
type Pool interface {
	libskt.Queue

	// RegisterReady adds a callback run whenever the free list leaves
	// exhaustion.
	RegisterReady(fct FuncReady)

	// Stop refuses further work, wakes every worker and waits for them to
	// drain, bounded by the given absolute deadline. Overrunning workers
	// are logged and abandoned.
	Stop(deadline time.Time)

	// Stats returns the current pool counters.
	Stats() Stats
}

// New returns an idle pool running connections through the given function.
func New(name string, cfg Config, run FuncRun, log liblog.FuncLog) Pool {
	cfg.setDefaults()

	p := &pool{
		c:   cfg,
		r:   run,
		l:   log,
		sem: libsem.New(context.Background(), int64(cfg.MaxWorkers), false),
		frl: make([]*libskt.Conn, 0, cfg.MaxWaiting),
	}

	p.mx.SetName("pool", name)

	for i := 0; i < cfg.MaxWaiting; i++ {
		p.frl = append(p.frl, &libskt.Conn{})
	}

	return p
}
