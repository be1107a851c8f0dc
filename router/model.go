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

package router

import (
	"net/http"

	liblcy "github.com/sabouaram/aoserver/lifecycle"
	liblog "github.com/sabouaram/aoserver/logger"
	libskt "github.com/sabouaram/aoserver/socket"
	libsyn "github.com/sabouaram/aoserver/sync"
	libspc "github.com/sabouaram/aoserver/urlspace"
)

// req is one reference counted handler entry. The registry holds one
// reference for the binding itself; every dispatch in flight holds one
// more. The entry's delete function runs exactly once, when the count
// first reaches zero, unless registered with FlagNoDelete.
type req struct {
	proc   HandlerProc
	del    FuncDelete
	arg    interface{}
	flags  Flag
	refcnt int
}

type filter struct {
	server string
	phases FilterPhase
	method string
	url    string
	proc   FilterProc
	arg    interface{}
}

type reg struct {
	mx  libsyn.Mutex
	pmx libsyn.Mutex

	ctl liblcy.Controller
	l   liblog.FuncLog
	spc libspc.Space
	ns  int

	flt []*filter
	pxy map[string]*req
}

// decr drops one reference under the registry lock, releasing the entry at
// zero.
func decr(r *req) {
	if r == nil {
		return
	}

	r.refcnt--

	if r.refcnt == 0 && r.flags&FlagNoDelete == 0 && r.del != nil {
		r.del(r.arg)
	}
}

// spaceDel is handed to the url space so a displaced entry drops the
// registry's reference. The registry lock is already held whenever the
// space runs it.
func spaceDel(data interface{}) {
	if r, ok := data.(*req); ok {
		decr(r)
	}
}

func (o *reg) AllocNamespaceId() int {
	o.mx.Lock()
	defer o.mx.Unlock()

	return o.spc.AllocNamespace()
}

func (o *reg) SpecificSet(id int, server, method, url string, data interface{}, del libspc.FuncDelete, flags libspc.Op) {
	o.mx.Lock()
	defer o.mx.Unlock()

	o.spc.Add(id, server, method, url, data, del, flags)
}

func (o *reg) SpecificGet(id int, server, method, url string) interface{} {
	o.mx.Lock()
	defer o.mx.Unlock()

	return o.spc.Get(id, server, method, url)
}

func (o *reg) SpecificDel(id int, server, method, url string, flags libspc.Op) interface{} {
	o.mx.Lock()
	defer o.mx.Unlock()

	return o.spc.Del(id, server, method, url, flags)
}

func flagsToOp(f Flag) libspc.Op {
	var op libspc.Op

	if f&FlagNoInherit != 0 {
		op |= libspc.OpNoInherit
	}

	return op
}

func (o *reg) Register(server, method, url string, proc HandlerProc, del FuncDelete, arg interface{}, flags Flag) {
	if proc == nil {
		return
	}

	e := &req{
		proc:   proc,
		del:    del,
		arg:    arg,
		flags:  flags,
		refcnt: 1,
	}

	o.mx.Lock()
	defer o.mx.Unlock()

	o.spc.Add(o.ns, server, method, url, e, spaceDel, flagsToOp(flags))
}

func (o *reg) Unregister(server, method, url string, inherit bool) {
	var op libspc.Op

	if !inherit {
		op |= libspc.OpNoInherit
	}

	o.mx.Lock()
	defer o.mx.Unlock()

	// the space runs spaceDel on the removed entry, dropping the
	// registry's own reference
	o.spc.Del(o.ns, server, method, url, op)
}

func (o *reg) RunRequest(c *libskt.Conn) int {
	if c == nil || c.Req == nil {
		return ERROR
	}

	var server string
	if c.Drv != nil {
		server = c.Drv.Config().Name
	}

	o.mx.Lock()

	e, _ := o.spc.Get(o.ns, server, c.Req.Method, c.Req.Path).(*req)
	if e == nil {
		o.mx.Unlock()
		c.ReturnNotFound()
		return OK
	}

	e.refcnt++
	o.mx.Unlock()

	st := e.proc(e.arg, c)

	o.mx.Lock()
	decr(e)
	o.mx.Unlock()

	return st
}

func proxyKey(server, method, protocol string) string {
	return server + "\x00" + method + "\x00" + protocol
}

func (o *reg) RegisterProxy(server, method, protocol string, proc HandlerProc, del FuncDelete, arg interface{}) {
	if proc == nil {
		return
	}

	e := &req{
		proc:   proc,
		del:    del,
		arg:    arg,
		refcnt: 1,
	}

	o.pmx.Lock()
	defer o.pmx.Unlock()

	if o.pxy == nil {
		o.pxy = make(map[string]*req)
	}

	k := proxyKey(server, method, protocol)

	if old := o.pxy[k]; old != nil {
		decr(old)
	}

	o.pxy[k] = e
}

func (o *reg) UnregisterProxy(server, method, protocol string) {
	o.pmx.Lock()
	defer o.pmx.Unlock()

	k := proxyKey(server, method, protocol)

	if old := o.pxy[k]; old != nil {
		decr(old)
		delete(o.pxy, k)
	}
}

func (o *reg) RunProxy(c *libskt.Conn) int {
	if c == nil || c.Req == nil {
		return ERROR
	}

	var server string
	if c.Drv != nil {
		server = c.Drv.Config().Name
	}

	o.pmx.Lock()

	e := o.pxy[proxyKey(server, c.Req.Method, c.Req.Scheme)]
	if e == nil {
		o.pmx.Unlock()
		c.ReturnNotFound()
		return OK
	}

	e.refcnt++
	o.pmx.Unlock()

	st := e.proc(e.arg, c)

	o.pmx.Lock()
	decr(e)
	o.pmx.Unlock()

	return st
}

func (o *reg) RegisterFilter(server string, phases FilterPhase, method, urlPattern string, proc FilterProc, arg interface{}) {
	if proc == nil || phases == 0 {
		return
	}

	f := &filter{
		server: server,
		phases: phases,
		method: method,
		url:    urlPattern,
		proc:   proc,
		arg:    arg,
	}

	o.mx.Lock()
	o.flt = append(o.flt, f)
	o.mx.Unlock()
}

func (o *reg) RegisterTrace(server, method, urlPattern string, proc FilterProc, arg interface{}) {
	o.RegisterFilter(server, FilterVoidTrace, method, urlPattern, proc, arg)
}

func (o *reg) RunFilters(c *libskt.Conn, server string, phase FilterPhase) int {
	if c == nil || c.Req == nil {
		return ERROR
	}

	o.mx.Lock()
	lst := make([]*filter, len(o.flt))
	copy(lst, o.flt)
	o.mx.Unlock()

	for _, f := range lst {
		if f.phases&phase == 0 || f.server != server {
			continue
		}

		if !globMatch(f.method, c.Req.Method) || !globMatch(f.url, c.Req.Path) {
			continue
		}

		switch st := f.proc(f.arg, c, phase); st {
		case FilterOK:
		case FilterBreak:
			return OK
		case FilterReturn:
			return FilterReturn
		default:
			return ERROR
		}
	}

	return OK
}

func (o *reg) Redirect(c *libskt.Conn, server, url string) int {
	if c == nil || c.Req == nil {
		return ERROR
	}

	c.Recursed++

	if c.Recursed > maxRecursion {
		if l := o.logger(); l != nil {
			l.Error("redirect loop on %s, aborting at depth %d", nil, url, c.Recursed)
		}

		c.ReturnStatus(http.StatusInternalServerError)
		return ERROR
	}

	c.Req.SetUrl(url)

	if o.ctl != nil {
		if auth := o.ctl.GetAuthorize(); auth != nil {
			switch auth(c.Req.Method, c.Req.Path, c.AuthUser, c.AuthPasswd, c.Peer) {
			case liblcy.AuthOK:
			case liblcy.AuthForbidden:
				c.ReturnStatus(http.StatusForbidden)
				return OK
			case liblcy.AuthUnauthorized:
				c.SetHeader("WWW-Authenticate", `Basic realm="server"`)
				c.ReturnStatus(http.StatusUnauthorized)
				return OK
			default:
				c.ReturnStatus(http.StatusInternalServerError)
				return ERROR
			}
		}
	}

	return o.RunRequest(c)
}

// maxRecursion bounds nested internal redirects.
const maxRecursion = 3

func (o *reg) logger() liblog.Logger {
	if o.l != nil {
		if g := o.l(); g != nil {
			return g
		}
	}

	return nil
}
