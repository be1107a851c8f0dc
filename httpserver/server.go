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

package httpserver

import (
	"context"
	gosync "sync"
	"time"

	libatm "github.com/sabouaram/aoserver/atomic"
	libctx "github.com/sabouaram/aoserver/context"
	liberr "github.com/sabouaram/aoserver/errors"
	libexc "github.com/sabouaram/aoserver/exec"
	liblcy "github.com/sabouaram/aoserver/lifecycle"
	liblog "github.com/sabouaram/aoserver/logger"
	libmon "github.com/sabouaram/aoserver/monitor"
	librtr "github.com/sabouaram/aoserver/router"
	librun "github.com/sabouaram/aoserver/runner/startStop"
	libskt "github.com/sabouaram/aoserver/socket"
	libwkp "github.com/sabouaram/aoserver/workerpool"
)

type srv struct {
	m gosync.RWMutex
	c Config

	l libatm.Value[liblog.FuncLog]
	d libatm.Value[[]libskt.Driver]
	x libctx.Config[string]

	run librun.StartStop
	ctl liblcy.Controller
	rtr librtr.Registry
	mon libmon.Pool
	exe libexc.Exec
	pol libwkp.Pool
	met *libmon.Metrics
}

func (o *srv) setLogger(def liblog.FuncLog) {
	if def == nil {
		def = func() liblog.Logger {
			return liblog.New(context.Background())
		}
	}

	o.l.Store(def)
}

func (o *srv) logFct() liblog.FuncLog {
	return func() liblog.Logger {
		if f := o.l.Load(); f != nil {
			return f()
		}

		return nil
	}
}

func (o *srv) log() liblog.Logger {
	return o.logFct()()
}

func (o *srv) GetConfig() *Config {
	o.m.RLock()
	defer o.m.RUnlock()

	c := o.c.Clone()
	return &c
}

func (o *srv) SetConfig(cfg Config, defLog liblog.FuncLog) liberr.Error {
	if o.run != nil && o.run.IsRunning() {
		return ErrorServerRunning.Error(nil)
	}

	if e := cfg.Validate(); e != nil {
		return e
	}

	if defLog != nil {
		o.setLogger(defLog)
	}

	o.m.Lock()
	o.c = cfg
	o.m.Unlock()

	return nil
}

func (o *srv) Router() librtr.Registry {
	return o.rtr
}

func (o *srv) Lifecycle() liblcy.Controller {
	return o.ctl
}

func (o *srv) Exec() libexc.Exec {
	o.m.RLock()
	defer o.m.RUnlock()

	return o.exe
}

func (o *srv) Metrics() *libmon.Metrics {
	o.m.RLock()
	defer o.m.RUnlock()

	return o.met
}

func (o *srv) Monitors() libmon.Pool {
	return o.mon
}

func (o *srv) Signal() {
	o.ctl.RunPhase(liblcy.PhaseSignal)
}

// start is the runner's blocking start function: it raises the whole
// pipeline, marks the controller started, then holds until the context is
// cancelled by a stop.
func (o *srv) start(ctx context.Context) error {
	cfg := o.GetConfig()

	o.ctl.Reset()
	o.ctl.RunPhase(liblcy.PhasePreStartup)

	o.m.Lock()
	o.exe = libexc.New(o.rtr, o.ctl, o.logFct(), cfg.MaxMemMultipart)
	o.pol = libwkp.New(cfg.Name, cfg.Pool, o.exe.Run, o.logFct())
	o.met = libmon.NewMetrics(cfg.Name)
	o.met.AddPool(cfg.Name, o.pol.Stats)
	pol := o.pol
	o.m.Unlock()

	var drvs []libskt.Driver

	for i := range cfg.Listeners {
		d := libskt.New(cfg.Listeners[i], pol, o.logFct())

		if e := d.Start(ctx); e != nil {
			for _, p := range drvs {
				p.Stop(time.Now())
			}

			return ErrorServerStart.Error(e)
		}

		o.met.AddDriver(cfg.Listeners[i].Name, d.Stats)
		drvs = append(drvs, d)
	}

	o.d.Store(drvs)

	// a slot freeing up retries pending handoffs and runs ready callbacks
	pol.RegisterReady(func() {
		for _, d := range drvs {
			d.Trigger()
		}

		o.ctl.RunPhase(liblcy.PhaseReady)
	})

	o.mon.Add(libmon.NewMonitor(cfg.Name, func(_ context.Context) error {
		if s := pol.Stats(); s.Free == 0 {
			return ErrorServerRunning.Error(nil)
		}

		return nil
	}))

	o.ctl.RunPhase(liblcy.PhaseStartup)
	o.ctl.SetStarted()

	if l := o.log(); l != nil {
		l.Info("server %s started with %d listeners", nil, cfg.Name, len(drvs))
	}

	<-ctx.Done()
	return nil
}

// stop drives the shutdown protocol: record the deadline, launch every
// subsystem teardown, wait for them bounded by the deadline, then run the
// exit callbacks.
func (o *srv) stop(ctx context.Context) error {
	cfg := o.GetConfig()

	o.ctl.SetStopping(cfg.ShutdownTimeout.Time())
	deadline := o.ctl.ShutdownDeadline()

	drvs := o.d.Load()
	o.d.Store(nil)

	o.ctl.StartShutdown("drivers", func(d time.Time) {
		for _, drv := range drvs {
			drv.Stop(d)
		}
	})

	o.m.RLock()
	pol := o.pol
	o.m.RUnlock()

	if pol != nil {
		o.ctl.StartShutdown("worker pool", func(d time.Time) {
			pol.Stop(d)
		})
	}

	o.ctl.StartShutdown("server callbacks", func(_ time.Time) {
		o.ctl.RunPhase(liblcy.PhaseServerShutdown)
	})

	o.ctl.StartShutdown("shutdown callbacks", func(_ time.Time) {
		o.ctl.RunPhase(liblcy.PhaseShutdown)
	})

	o.ctl.WaitShutdown()
	o.ctl.RunPhase(liblcy.PhaseExit)

	if l := o.log(); l != nil {
		l.Info("server %s stopped (deadline %s)", nil, cfg.Name, deadline.Format(time.RFC3339))
	}

	return nil
}

// delegation of the registration api

func (o *srv) RegisterRequest(server, method, url string, proc librtr.HandlerProc, del librtr.FuncDelete, arg interface{}, flags librtr.Flag) {
	o.rtr.Register(server, method, url, proc, del, arg, flags)
}

func (o *srv) UnregisterRequest(server, method, url string, inherit bool) {
	o.rtr.Unregister(server, method, url, inherit)
}

func (o *srv) RegisterFilter(server string, phases librtr.FilterPhase, method, urlPattern string, proc librtr.FilterProc, arg interface{}) {
	o.rtr.RegisterFilter(server, phases, method, urlPattern, proc, arg)
}

func (o *srv) RegisterTrace(server, method, urlPattern string, proc librtr.FilterProc, arg interface{}) {
	o.rtr.RegisterTrace(server, method, urlPattern, proc, arg)
}

func (o *srv) RegisterProxyRequest(server, method, protocol string, proc librtr.HandlerProc, del librtr.FuncDelete, arg interface{}) {
	o.rtr.RegisterProxy(server, method, protocol, proc, del, arg)
}

func (o *srv) UnregisterProxyRequest(server, method, protocol string) {
	o.rtr.UnregisterProxy(server, method, protocol)
}

func (o *srv) AllocNamespaceId() int {
	return o.rtr.AllocNamespaceId()
}

func (o *srv) SetData(key string, val interface{}) {
	if val == nil {
		o.x.Delete(key)
		return
	}

	o.x.Store(key, val)
}

func (o *srv) GetData(key string) interface{} {
	if v, ok := o.x.Load(key); ok {
		return v
	}

	return nil
}

// runner delegation

func (o *srv) Start(ctx context.Context) error {
	return o.run.Start(ctx)
}

func (o *srv) Stop(ctx context.Context) error {
	return o.run.Stop(ctx)
}

func (o *srv) Restart(ctx context.Context) error {
	return o.run.Restart(ctx)
}

func (o *srv) IsRunning() bool {
	return o.run.IsRunning()
}

func (o *srv) Uptime() time.Duration {
	return o.run.Uptime()
}

func (o *srv) ErrorsLast() error {
	return o.run.ErrorsLast()
}

func (o *srv) ErrorsList() []error {
	return o.run.ErrorsList()
}
