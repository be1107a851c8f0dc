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

// Package lifecycle coordinates the server's global state machine from
// startup to timed shutdown. Subsystems register callbacks against named
// phases; registrations are LIFO within a phase and refused once the
// controller is stopping. The shutdown protocol launches per-subsystem
// teardown routines in parallel, each bounded by one shared absolute
// deadline.
package lifecycle

import (
	"time"

	liblog "github.com/sabouaram/aoserver/logger"
)

// Phase names one step of the controller's state machine.
type Phase uint8

const (
	// PhasePreStartup runs before listeners are opened.
	PhasePreStartup Phase = iota
	// PhaseStartup runs after listeners are opened.
	PhaseStartup
	// PhaseSignal runs when the process receives a reload signal.
	PhaseSignal
	// PhaseReady runs whenever a worker pool leaves its saturated state.
	PhaseReady
	// PhaseServerShutdown begins per-subsystem teardown.
	PhaseServerShutdown
	// PhaseShutdown runs final cleanups.
	PhaseShutdown
	// PhaseExit runs destructors after the timed shutdown completed.
	PhaseExit
)

// String returns the phase's canonical name.
func (p Phase) String() string {
	switch p {
	case PhasePreStartup:
		return "prestartup"
	case PhaseStartup:
		return "startup"
	case PhaseSignal:
		return "signal"
	case PhaseReady:
		return "ready"
	case PhaseServerShutdown:
		return "server-shutdown"
	case PhaseShutdown:
		return "shutdown"
	case PhaseExit:
		return "exit"
	}

	return ""
}

// FuncCallback is a phase callback with its registration argument.
type FuncCallback func(arg interface{})

// FuncAuthorize checks the credentials carried by a request against a
// method/url pair. It returns one of the Auth statuses below.
type FuncAuthorize func(method, url, user, passwd, peer string) int

// Authorization hook results.
const (
	AuthOK = iota
	AuthUnauthorized
	AuthForbidden
	AuthError
)

// Handle identifies one registration. It is nil when the registration was
// refused because the controller is already stopping.
type Handle *callback

// Controller is the server's global lifecycle state machine.
type Controller interface {
	// RegisterAtPhase attaches a callback to the given phase, executing
	// before previously registered callbacks of the same phase. It returns
	// nil when the controller is already stopping.
	RegisterAtPhase(p Phase, fct FuncCallback, arg interface{}) Handle

	// RunPhase invokes every callback of the phase, most recent first.
	RunPhase(p Phase)

	// RegisterAtPreStartup attaches a callback run before listeners open.
	RegisterAtPreStartup(fct FuncCallback, arg interface{}) Handle

	// RegisterAtStartup attaches a callback run after listeners open.
	RegisterAtStartup(fct FuncCallback, arg interface{}) Handle

	// RegisterAtSignal attaches a callback run on a reload signal.
	RegisterAtSignal(fct FuncCallback, arg interface{}) Handle

	// RegisterAtReady attaches a callback run when a pool leaves
	// saturation.
	RegisterAtReady(fct FuncCallback, arg interface{}) Handle

	// RegisterAtServerShutdown attaches a per-subsystem teardown callback.
	RegisterAtServerShutdown(fct FuncCallback, arg interface{}) Handle

	// RegisterAtShutdown attaches a final cleanup callback.
	RegisterAtShutdown(fct FuncCallback, arg interface{}) Handle

	// RegisterAtExit attaches a destructor run after the timed shutdown.
	RegisterAtExit(fct FuncCallback, arg interface{}) Handle

	// SetAuthorize installs the authorization hook run for each request.
	SetAuthorize(fct FuncAuthorize)

	// GetAuthorize returns the installed authorization hook, or nil.
	GetAuthorize() FuncAuthorize

	// SetStarted marks the controller started and releases every
	// WaitForStartup caller.
	SetStarted()

	// IsStarted reports whether SetStarted has been called.
	IsStarted() bool

	// WaitForStartup blocks until the controller is started.
	WaitForStartup()

	// SetStopping marks the controller stopping and records the shutdown
	// deadline as now plus the given timeout. Further registrations are
	// refused from this point.
	SetStopping(timeout time.Duration)

	// IsStopping reports whether SetStopping has been called.
	IsStopping() bool

	// ShutdownDeadline returns the absolute deadline recorded by
	// SetStopping, or the zero time before it.
	ShutdownDeadline() time.Time

	// WaitStopping blocks until SetStopping is called.
	WaitStopping()

	// Reset clears the started/stopping state for a restart, keeping the
	// registered callbacks and authorization hook.
	Reset()

	// StartShutdown launches one subsystem teardown routine, handing it
	// the shutdown deadline, and returns immediately.
	StartShutdown(name string, fct func(deadline time.Time))

	// WaitShutdown waits for every routine launched by StartShutdown, each
	// bounded by the shutdown deadline. A routine overrunning the deadline
	// is logged as a warning and abandoned, never joined.
	WaitShutdown()
}

// New returns an idle controller logging through the given function.
func New(log liblog.FuncLog) Controller {
	return &ctl{
		l: log,
	}
}
