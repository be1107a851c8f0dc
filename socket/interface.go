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

// Package socket ingests connections: it binds the configured listeners,
// accepts sockets, performs the read-ahead assembling a complete request
// off the worker pool, hands ready requests over for dispatch, and takes
// sockets back afterwards for keep-alive reuse or a graceful close drain.
// The pool saturating pauses accepts, pending handoffs being retried first.
package socket

import (
	"context"
	"net"
	"time"

	liberr "github.com/sabouaram/aoserver/errors"
	liblog "github.com/sabouaram/aoserver/logger"
)

// EnqueueCode is the worker pool's answer to one handoff.
type EnqueueCode int

const (
	// EnqueueOK accepted the handoff.
	EnqueueOK EnqueueCode = iota
	// EnqueueFull refused it for lack of a free connection record; the
	// driver keeps the socket and retries.
	EnqueueFull
	// EnqueueShutdown refused it because the pool is stopping.
	EnqueueShutdown
)

// Handoff carries one fully buffered request from the driver to the pool.
type Handoff struct {
	Sock net.Conn
	Req  *Request
	Drv  Driver
}

// Queue is the worker pool facade the driver feeds.
type Queue interface {
	// Enqueue hands one ready request to the pool.
	Enqueue(h Handoff) EnqueueCode
}

// Stats exposes the driver's connection accounting.
type Stats struct {
	Accepted  uint64
	ReadAhead int64
	Closing   int64
	Pending   int64
}

// Driver owns one listener's socket lifecycle.
type Driver interface {
	// Start binds and listens, then launches the driver loop. The context
	// bounds the whole listener lifetime.
	Start(ctx context.Context) liberr.Error

	// Stop closes the listener and drains the in-flight sockets, bounded
	// by the given absolute deadline.
	Stop(deadline time.Time)

	// Done takes a socket back from a worker, pushing it to read-ahead
	// when keepalive is set and to the close drain otherwise.
	Done(sock net.Conn, keepalive bool)

	// Trigger wakes the driver loop for out-of-band events, typically the
	// pool freeing a slot while handoffs are pending.
	Trigger()

	// Config returns the listener's defaulted configuration.
	Config() Config

	// Location returns the public base url of the listener.
	Location() string

	// Stats returns the current connection accounting.
	Stats() Stats
}

// New returns an idle driver for the given listener config, feeding the
// given queue. The config must have been validated.
func New(cfg Config, q Queue, log liblog.FuncLog) Driver {
	cfg.DeriveLocation()

	return &driver{
		c: cfg,
		q: q,
		l: log,
	}
}
