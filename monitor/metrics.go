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

package monitor

import (
	"github.com/prometheus/client_golang/prometheus"

	libskt "github.com/sabouaram/aoserver/socket"
	libsyn "github.com/sabouaram/aoserver/sync"
	libwkp "github.com/sabouaram/aoserver/workerpool"
)

// FuncPoolStats returns the live counters of one worker pool.
type FuncPoolStats func() libwkp.Stats

// FuncDriverStats returns the live counters of one driver.
type FuncDriverStats func() libskt.Stats

// Metrics is the prometheus collector publishing the server gauges.
type Metrics struct {
	name string

	pools   map[string]FuncPoolStats
	drivers map[string]FuncDriverStats

	poolCurrent *prometheus.Desc
	poolIdle    *prometheus.Desc
	poolWaiting *prometheus.Desc
	poolFree    *prometheus.Desc

	drvAccepted  *prometheus.Desc
	drvReadAhead *prometheus.Desc
	drvClosing   *prometheus.Desc
	drvPending   *prometheus.Desc

	mtxLock *prometheus.Desc
	mtxCont *prometheus.Desc
}

// NewMetrics returns an unregistered collector for the named server.
func NewMetrics(name string) *Metrics {
	var l = prometheus.Labels{"server": name}

	return &Metrics{
		name:    name,
		pools:   make(map[string]FuncPoolStats),
		drivers: make(map[string]FuncDriverStats),

		poolCurrent: prometheus.NewDesc("aoserver_pool_workers_current", "current worker count of the pool", []string{"pool"}, l),
		poolIdle:    prometheus.NewDesc("aoserver_pool_workers_idle", "idle worker count of the pool", []string{"pool"}, l),
		poolWaiting: prometheus.NewDesc("aoserver_pool_connections_waiting", "connections queued in the pool", []string{"pool"}, l),
		poolFree:    prometheus.NewDesc("aoserver_pool_records_free", "free connection records of the pool", []string{"pool"}, l),

		drvAccepted:  prometheus.NewDesc("aoserver_driver_accepted_total", "sockets accepted by the driver", []string{"driver"}, l),
		drvReadAhead: prometheus.NewDesc("aoserver_driver_readahead", "sockets in read-ahead", []string{"driver"}, l),
		drvClosing:   prometheus.NewDesc("aoserver_driver_closing", "sockets draining toward close", []string{"driver"}, l),
		drvPending:   prometheus.NewDesc("aoserver_driver_pending", "handoffs waiting for a pool slot", []string{"driver"}, l),

		mtxLock: prometheus.NewDesc("aoserver_mutex_lock_total", "acquisitions of the named mutex", []string{"mutex"}, l),
		mtxCont: prometheus.NewDesc("aoserver_mutex_contention_total", "contended acquisitions of the named mutex", []string{"mutex"}, l),
	}
}

// AddPool publishes one pool's counters under the given name.
func (o *Metrics) AddPool(name string, fct FuncPoolStats) {
	if fct != nil {
		o.pools[name] = fct
	}
}

// AddDriver publishes one driver's counters under the given name.
func (o *Metrics) AddDriver(name string, fct FuncDriverStats) {
	if fct != nil {
		o.drivers[name] = fct
	}
}

// Describe implements prometheus.Collector.
func (o *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- o.poolCurrent
	ch <- o.poolIdle
	ch <- o.poolWaiting
	ch <- o.poolFree
	ch <- o.drvAccepted
	ch <- o.drvReadAhead
	ch <- o.drvClosing
	ch <- o.drvPending
	ch <- o.mtxLock
	ch <- o.mtxCont
}

// Collect implements prometheus.Collector.
func (o *Metrics) Collect(ch chan<- prometheus.Metric) {
	for n, f := range o.pools {
		s := f()

		ch <- prometheus.MustNewConstMetric(o.poolCurrent, prometheus.GaugeValue, float64(s.Current), n)
		ch <- prometheus.MustNewConstMetric(o.poolIdle, prometheus.GaugeValue, float64(s.Idle), n)
		ch <- prometheus.MustNewConstMetric(o.poolWaiting, prometheus.GaugeValue, float64(s.Waiting), n)
		ch <- prometheus.MustNewConstMetric(o.poolFree, prometheus.GaugeValue, float64(s.Free), n)
	}

	for n, f := range o.drivers {
		s := f()

		ch <- prometheus.MustNewConstMetric(o.drvAccepted, prometheus.CounterValue, float64(s.Accepted), n)
		ch <- prometheus.MustNewConstMetric(o.drvReadAhead, prometheus.GaugeValue, float64(s.ReadAhead), n)
		ch <- prometheus.MustNewConstMetric(o.drvClosing, prometheus.GaugeValue, float64(s.Closing), n)
		ch <- prometheus.MustNewConstMetric(o.drvPending, prometheus.GaugeValue, float64(s.Pending), n)
	}

	// mutexes sharing a name are summed so the label set stays unique
	type counters struct{ nlock, ncont uint64 }
	var mtx = make(map[string]counters)

	libsyn.EnumMutex(func(name string, id, nlock, ncontention uint64) {
		if name == "" {
			return
		}

		c := mtx[name]
		c.nlock += nlock
		c.ncont += ncontention
		mtx[name] = c
	})

	for n, c := range mtx {
		ch <- prometheus.MustNewConstMetric(o.mtxLock, prometheus.CounterValue, float64(c.nlock), n)
		ch <- prometheus.MustNewConstMetric(o.mtxCont, prometheus.CounterValue, float64(c.ncont), n)
	}
}
