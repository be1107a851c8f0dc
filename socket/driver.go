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

package socket

import (
	"context"
	"io"
	"net"
	"sync/atomic"
	"time"

	liberr "github.com/sabouaram/aoserver/errors"
	liblog "github.com/sabouaram/aoserver/logger"
	loglvl "github.com/sabouaram/aoserver/logger/level"
)

type retSock struct {
	sock net.Conn
	keep bool
}

type driver struct {
	c Config
	q Queue
	l liblog.FuncLog

	lis net.Listener
	cnl context.CancelFunc

	accepted  uint64
	readahead int64
	closing   int64
	pending   int64

	acceptCh chan net.Conn
	readyCh  chan Handoff
	doneCh   chan retSock
	trig     chan struct{}
	stopped  chan struct{}
}

func (o *driver) log() liblog.Logger {
	if o.l != nil {
		if g := o.l(); g != nil {
			return g
		}
	}

	return nil
}

func (o *driver) Config() Config {
	return o.c
}

func (o *driver) Location() string {
	return o.c.Location
}

func (o *driver) Stats() Stats {
	return Stats{
		Accepted:  atomic.LoadUint64(&o.accepted),
		ReadAhead: atomic.LoadInt64(&o.readahead),
		Closing:   atomic.LoadInt64(&o.closing),
		Pending:   atomic.LoadInt64(&o.pending),
	}
}

func (o *driver) Start(ctx context.Context) liberr.Error {
	lc := net.ListenConfig{}

	lis, e := lc.Listen(ctx, "tcp", o.c.Bindable())
	if e != nil {
		return ErrorListenBind.Error(e)
	}

	o.lis = lis

	var x context.Context
	x, o.cnl = context.WithCancel(ctx)

	o.acceptCh = make(chan net.Conn)
	o.readyCh = make(chan Handoff)
	o.doneCh = make(chan retSock, 32)
	o.trig = make(chan struct{}, 1)
	o.stopped = make(chan struct{})

	go o.accept(x)
	go o.loop(x)

	if l := o.log(); l != nil {
		l.Info("listening on %s for %s", nil, o.c.Bindable(), o.c.Location)
	}

	return nil
}

func (o *driver) Stop(deadline time.Time) {
	if o.cnl != nil {
		o.cnl()
	}

	if o.lis != nil {
		_ = o.lis.Close()
	}

	if o.stopped == nil {
		return
	}

	if deadline.IsZero() {
		<-o.stopped
		return
	}

	w := time.NewTimer(time.Until(deadline))
	defer w.Stop()

	select {
	case <-o.stopped:
	case <-w.C:
		if l := o.log(); l != nil {
			l.Warning("driver %s did not drain before the deadline", nil, o.c.Bindable())
		}
	}
}

func (o *driver) Done(sock net.Conn, keepalive bool) {
	select {
	case o.doneCh <- retSock{sock: sock, keep: keepalive}:
	case <-o.stopped:
		_ = sock.Close()
	}
}

func (o *driver) Trigger() {
	select {
	case o.trig <- struct{}{}:
	default:
	}
}

// accept feeds the loop one socket at a time. The unbuffered channel is
// the backpressure point: while the loop sits on pending handoffs it does
// not receive, so at most one accepted socket waits here.
func (o *driver) accept(ctx context.Context) {
	for {
		s, e := o.lis.Accept()
		if e != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if ne, ok := e.(net.Error); ok && ne.Timeout() {
				continue
			}

			if l := o.log(); l != nil {
				l.Error("accept on %s: %v", nil, o.c.Bindable(), e)
			}

			return
		}

		o.setupSock(s)
		atomic.AddUint64(&o.accepted, 1)

		select {
		case o.acceptCh <- s:
		case <-ctx.Done():
			_ = s.Close()
			return
		}
	}
}

// setupSock applies the configured socket buffer sizes.
func (o *driver) setupSock(s net.Conn) {
	t, ok := s.(*net.TCPConn)
	if !ok {
		return
	}

	if o.c.RcvBuf > 0 {
		_ = t.SetReadBuffer(o.c.RcvBuf.Int())
	}

	if o.c.SndBuf > 0 {
		_ = t.SetWriteBuffer(o.c.SndBuf.Int())
	}
}

// loop serializes every socket state change: accepted sockets enter the
// read-ahead, ready requests go to the pool or wait on the pending list,
// returned sockets go back to read-ahead or to the close drain.
func (o *driver) loop(ctx context.Context) {
	defer close(o.stopped)

	var pending []Handoff

	for {
		// apply backpressure: while a handoff is pending, leave freshly
		// accepted sockets waiting in the accept goroutine
		acc := o.acceptCh
		if len(pending) > 0 {
			acc = nil
		}

		atomic.StoreInt64(&o.pending, int64(len(pending)))

		select {
		case s := <-acc:
			o.startReadAhead(ctx, s, o.c.RecvWait.Time())

		case h := <-o.readyCh:
			if !o.tryEnqueue(h) {
				pending = append(pending, h)
			}

		case r := <-o.doneCh:
			if r.keep {
				o.startReadAhead(ctx, r.sock, o.c.KeepWait.Time())
			} else {
				o.startClosing(r.sock)
			}

		case <-o.trig:
			pending = o.retry(pending)

		case <-ctx.Done():
			for _, h := range pending {
				FreeRequest(h.Req)
				_ = h.Sock.Close()
			}

			return
		}

		if len(pending) > 0 {
			pending = o.retry(pending)
		}
	}
}

// retry re-attempts pending handoffs oldest first, keeping the refused
// tail for the next wakeup.
func (o *driver) retry(pending []Handoff) []Handoff {
	for i, h := range pending {
		if !o.tryEnqueue(h) {
			return append(pending[:0:0], pending[i:]...)
		}
	}

	return pending[:0]
}

func (o *driver) tryEnqueue(h Handoff) bool {
	switch o.q.Enqueue(h) {
	case EnqueueOK:
		return true

	case EnqueueShutdown:
		FreeRequest(h.Req)
		_ = h.Sock.Close()
		return true

	default:
		return false
	}
}

// startReadAhead assembles one request off the worker pool. The first
// read is bounded by the given wait (the keep-alive wait for reused
// sockets), later reads by the receive wait.
func (o *driver) startReadAhead(ctx context.Context, s net.Conn, firstWait time.Duration) {
	atomic.AddInt64(&o.readahead, 1)

	go func() {
		defer atomic.AddInt64(&o.readahead, -1)

		r := NewRequest(o.c.HeaderCase)

		if o.readAhead(ctx, s, r, firstWait) != ReadReady {
			FreeRequest(r)
			_ = s.Close()
			return
		}

		select {
		case o.readyCh <- Handoff{Sock: s, Req: r, Drv: o}:
		case <-ctx.Done():
			FreeRequest(r)
			_ = s.Close()
		}
	}()
}

func (o *driver) readAhead(ctx context.Context, s net.Conn, r *Request, wait time.Duration) ReadCode {
	var (
		buf  = make([]byte, o.c.BufSize.Int())
		next = wait
	)

	for {
		if c := r.Parse(); c == ReadError {
			return ReadError
		} else if r.State == StateReady {
			return ReadReady
		}

		select {
		case <-ctx.Done():
			// an idle socket is dropped on shutdown; a request already
			// under way is still read to completion
			if r.State == StateInit {
				return ReadError
			}
		default:
		}

		_ = s.SetReadDeadline(time.Now().Add(next))

		n, e := s.Read(buf)
		if n > 0 {
			r.Append(buf[:n])
		}

		if e != nil {
			if e == io.EOF && r.State == StateInit {
				return ReadError
			}

			if ne, ok := e.(net.Error); ok && ne.Timeout() {
				if l := o.log(); l != nil && r.State != StateInit {
					l.LogDetails(loglvl.DebugLevel, "read-ahead timeout from %s", nil, nil, nil, s.RemoteAddr())
				}
			}

			return ReadError
		}

		next = o.c.RecvWait.Time()
	}
}

// startClosing half-closes the socket then drains the peer until silence,
// end of stream or the close wait elapsing.
func (o *driver) startClosing(s net.Conn) {
	atomic.AddInt64(&o.closing, 1)

	go func() {
		defer atomic.AddInt64(&o.closing, -1)
		defer func() { _ = s.Close() }()

		if t, ok := s.(*net.TCPConn); ok {
			_ = t.CloseWrite()
		}

		var (
			buf      = make([]byte, 1024)
			deadline = time.Now().Add(o.c.CloseWait.Time())
		)

		for time.Now().Before(deadline) {
			_ = s.SetReadDeadline(deadline)

			if _, e := s.Read(buf); e != nil {
				return
			}
		}
	}()
}
