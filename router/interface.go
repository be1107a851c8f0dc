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

// Package router binds request handlers, filter chains, proxy handlers and
// the authorization hook to url patterns. Handler entries are reference
// counted: a dispatch holds one reference across the handler invocation,
// so unregistration removes an entry from the index immediately while its
// backing record survives until the last dispatch returns.
package router

import (
	liblcy "github.com/sabouaram/aoserver/lifecycle"
	liblog "github.com/sabouaram/aoserver/logger"
	libskt "github.com/sabouaram/aoserver/socket"
	libspc "github.com/sabouaram/aoserver/urlspace"
)

// Handler and filter statuses.
const (
	OK      = 0
	ERROR   = -1
	TIMEOUT = -2

	// FilterOK lets the phase continue.
	FilterOK = 0
	// FilterBreak stops the phase's iteration.
	FilterBreak = -4
	// FilterReturn stops the phase and skips the handler, traces still
	// running.
	FilterReturn = -5
)

// Flag carries registration options.
type Flag uint8

const (
	// FlagNoInherit keeps the handler from serving deeper urls.
	FlagNoInherit Flag = 1 << iota

	// FlagNoDelete suppresses the entry's delete function on release.
	FlagNoDelete
)

// FilterPhase is a bitmask of the filter chain phases.
type FilterPhase uint8

const (
	// FilterPreAuth runs before the authorization hook.
	FilterPreAuth FilterPhase = 1 << iota
	// FilterPostAuth runs after a successful authorization.
	FilterPostAuth
	// FilterTrace runs after the response closed.
	FilterTrace
	// FilterVoidTrace runs last and cannot affect anything.
	FilterVoidTrace
)

// HandlerProc serves one connection, returning a status.
type HandlerProc func(arg interface{}, c *libskt.Conn) int

// FilterProc inspects one connection during a phase, returning a status.
type FilterProc func(arg interface{}, c *libskt.Conn, phase FilterPhase) int

// FuncDelete releases a handler argument once its entry is freed.
type FuncDelete func(arg interface{})

// Registry dispatches requests to registered handlers.
type Registry interface {
	// AllocNamespaceId returns a fresh namespace id of the underlying url
	// space, for subsystems maintaining their own pattern tree.
	AllocNamespaceId() int

	// SpecificSet stores a payload under the tuple in the given namespace.
	SpecificSet(id int, server, method, url string, data interface{}, del libspc.FuncDelete, flags libspc.Op)

	// SpecificGet returns the inheriting payload serving the tuple in the
	// given namespace.
	SpecificGet(id int, server, method, url string) interface{}

	// SpecificDel removes the payload stored under the tuple in the given
	// namespace.
	SpecificDel(id int, server, method, url string, flags libspc.Op) interface{}

	// Register binds a handler to the pattern. A handler already bound to
	// the same pattern is displaced and released once idle.
	Register(server, method, url string, proc HandlerProc, del FuncDelete, arg interface{}, flags Flag)

	// Unregister removes the handler bound to the pattern, selecting the
	// inheriting binding or not, and releases it once idle.
	Unregister(server, method, url string, inherit bool)

	// RunRequest dispatches the connection to the handler serving its
	// request, answering 404 itself when none is bound. The entry stays
	// referenced, never locked, across the invocation.
	RunRequest(c *libskt.Conn) int

	// RegisterProxy binds a handler to absolute-url requests of the given
	// method and protocol.
	RegisterProxy(server, method, protocol string, proc HandlerProc, del FuncDelete, arg interface{})

	// UnregisterProxy removes a proxy binding, releasing it once idle.
	UnregisterProxy(server, method, protocol string)

	// RunProxy dispatches an absolute-url connection through the proxy
	// bindings, answering 404 when none matches.
	RunProxy(c *libskt.Conn) int

	// RegisterFilter appends a filter to every phase of the mask, keeping
	// registration order within each phase.
	RegisterFilter(server string, phases FilterPhase, method, urlPattern string, proc FilterProc, arg interface{})

	// RegisterTrace appends a void-trace filter.
	RegisterTrace(server, method, urlPattern string, proc FilterProc, arg interface{})

	// RunFilters runs one phase's filters in registration order. It
	// returns OK, ERROR on a failing filter, or FilterReturn when a filter
	// asked to skip the handler.
	RunFilters(c *libskt.Conn, server string, phase FilterPhase) int

	// Redirect reruns authorization and dispatch against a new url on the
	// same connection. The fourth nested redirect fails with a 500.
	Redirect(c *libskt.Conn, server, url string) int
}

// New returns an empty registry using the controller's authorization hook
// for internal redirects.
func New(ctl liblcy.Controller, log liblog.FuncLog) Registry {
	r := &reg{
		ctl: ctl,
		l:   log,
		spc: libspc.New(),
	}

	r.mx.SetName("router", "registry")
	r.pmx.SetName("router", "proxy")
	r.ns = r.spc.AllocNamespace()

	return r
}
