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
	"sync/atomic"
)

// master guards every lazy initialization in this package together with
// the mutex diagnostics registry.
var (
	master  gosync.Mutex
	mtxList []*Mutex
	mtxNext uint64
)

// Mutex is a mutual exclusion lock carrying a diagnostics name and
// lock/contention counters. The zero value is an unlocked, unnamed mutex:
// its first operation registers it into the package registry.
type Mutex struct {
	mu gosync.Mutex

	one  gosync.Once
	id   uint64
	name string

	nlock uint64
	ncont uint64
}

// MutexInit returns a registered mutex carrying the given name.
func MutexInit(name string) *Mutex {
	m := &Mutex{}
	m.register()
	m.SetName("", name)

	return m
}

func (o *Mutex) register() {
	o.one.Do(func() {
		master.Lock()
		defer master.Unlock()

		mtxNext++
		o.id = mtxNext
		mtxList = append(mtxList, o)
	})
}

// Lock acquires the mutex, counting one lock and, when the fast acquire
// fails, one contention.
func (o *Mutex) Lock() {
	o.register()

	if !o.mu.TryLock() {
		atomic.AddUint64(&o.ncont, 1)
		o.mu.Lock()
	}

	atomic.AddUint64(&o.nlock, 1)
}

// TryLock acquires the mutex without blocking and reports success. A
// failed attempt counts one contention.
func (o *Mutex) TryLock() bool {
	o.register()

	if o.mu.TryLock() {
		atomic.AddUint64(&o.nlock, 1)
		return true
	}

	atomic.AddUint64(&o.ncont, 1)
	return false
}

// Unlock releases the mutex. It must mirror a successful Lock or TryLock.
func (o *Mutex) Unlock() {
	o.mu.Unlock()
}

// SetName renames the mutex in the diagnostics registry. A non-empty
// prefix is joined to the name with a colon.
func (o *Mutex) SetName(prefix, name string) {
	o.register()

	if prefix != "" && name != "" {
		name = prefix + ":" + name
	} else if name == "" {
		name = prefix
	}

	master.Lock()
	defer master.Unlock()

	o.name = name
}

// Name returns the registered name of the mutex.
func (o *Mutex) Name() string {
	o.register()

	master.Lock()
	defer master.Unlock()

	return o.name
}

// NbrLock returns how many times the mutex has been acquired.
func (o *Mutex) NbrLock() uint64 {
	return atomic.LoadUint64(&o.nlock)
}

// NbrContention returns how many acquisitions found the mutex busy.
func (o *Mutex) NbrContention() uint64 {
	return atomic.LoadUint64(&o.ncont)
}

// FuncEnumMutex receives one registered mutex's diagnostics.
type FuncEnumMutex func(name string, id, nlock, ncontention uint64)

// EnumMutex walks every mutex registered in the process, in registration
// order. The list is copied under the package master lock; the callback
// runs outside it.
func EnumMutex(fct FuncEnumMutex) {
	if fct == nil {
		return
	}

	master.Lock()
	lst := make([]*Mutex, len(mtxList))
	copy(lst, mtxList)
	master.Unlock()

	for _, m := range lst {
		master.Lock()
		n := m.name
		master.Unlock()

		fct(n, m.id, m.NbrLock(), m.NbrContention())
	}
}
