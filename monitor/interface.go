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

// Package monitor tracks subsystem health and publishes the server's
// runtime gauges (pool occupancy, driver connection counts, mutex
// contention) as prometheus metrics.
package monitor

import (
	"context"
	"sync"
)

// Status is a health check verdict.
type Status uint8

const (
	// StatusKO means the check failed.
	StatusKO Status = iota
	// StatusWarn means the check passed degraded.
	StatusWarn
	// StatusOK means the check passed.
	StatusOK
)

// String returns the status's canonical name.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarn:
		return "Warn"
	}

	return "KO"
}

// MarshalText encodes the status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FuncCheck probes one subsystem.
type FuncCheck func(ctx context.Context) error

// Monitor is one named health check.
type Monitor interface {
	// Name identifies the check.
	Name() string

	// Check probes the subsystem, recording and returning its verdict.
	Check(ctx context.Context) error

	// Status returns the last recorded verdict.
	Status() Status
}

// NewMonitor returns a monitor running the given probe.
func NewMonitor(name string, fct FuncCheck) Monitor {
	return &mon{
		n: name,
		f: fct,
	}
}

type mon struct {
	m sync.RWMutex
	n string
	f FuncCheck
	s Status
}

func (o *mon) Name() string {
	return o.n
}

func (o *mon) Check(ctx context.Context) error {
	if o.f == nil {
		return nil
	}

	e := o.f(ctx)

	o.m.Lock()
	if e != nil {
		o.s = StatusKO
	} else {
		o.s = StatusOK
	}
	o.m.Unlock()

	return e
}

func (o *mon) Status() Status {
	o.m.RLock()
	defer o.m.RUnlock()

	return o.s
}

// Pool is a set of monitors keyed by name.
type Pool interface {
	// Add stores the monitor, replacing a previous one of the same name.
	Add(m Monitor)

	// Get returns the named monitor, or nil.
	Get(name string) Monitor

	// Del drops the named monitor.
	Del(name string)

	// Check probes every monitor, returning the verdicts keyed by name.
	Check(ctx context.Context) map[string]error

	// Walk visits every monitor until the visitor returns false.
	Walk(fct func(m Monitor) bool)
}

// NewPool returns an empty monitor pool.
func NewPool() Pool {
	return &pl{
		m: make(map[string]Monitor),
	}
}

type pl struct {
	s sync.RWMutex
	m map[string]Monitor
}

func (o *pl) Add(m Monitor) {
	if m == nil {
		return
	}

	o.s.Lock()
	o.m[m.Name()] = m
	o.s.Unlock()
}

func (o *pl) Get(name string) Monitor {
	o.s.RLock()
	defer o.s.RUnlock()

	return o.m[name]
}

func (o *pl) Del(name string) {
	o.s.Lock()
	delete(o.m, name)
	o.s.Unlock()
}

func (o *pl) Check(ctx context.Context) map[string]error {
	var r = make(map[string]error)

	o.Walk(func(m Monitor) bool {
		r[m.Name()] = m.Check(ctx)
		return true
	})

	return r
}

func (o *pl) Walk(fct func(m Monitor) bool) {
	if fct == nil {
		return
	}

	o.s.RLock()
	lst := make([]Monitor, 0, len(o.m))
	for _, m := range o.m {
		lst = append(lst, m)
	}
	o.s.RUnlock()

	for _, m := range lst {
		if !fct(m) {
			return
		}
	}
}
