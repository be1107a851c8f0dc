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

// Benchmark harness driving the server end to end over loopback sockets.
package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	libhts "github.com/sabouaram/aoserver/httpserver"
	librtr "github.com/sabouaram/aoserver/router"
	libskt "github.com/sabouaram/aoserver/socket"
	libwkp "github.com/sabouaram/aoserver/workerpool"
)

const benchName = "bench"

func main() {
	ctx, cnl := context.WithCancel(context.Background())
	defer cnl()

	addr := fmt.Sprintf(":%d", GetFreePort())

	RunInit(ctx, addr)
	fmt.Println("serving on", addr)

	<-ctx.Done()
}

// GetFreePort asks the kernel for an unused loopback port.
func GetFreePort() int {
	l, e := net.Listen("tcp", "127.0.0.1:0")
	if e != nil {
		panic(e)
	}

	defer func() { _ = l.Close() }()

	return l.Addr().(*net.TCPAddr).Port
}

// RunInit starts a server on the given address with one plain handler.
func RunInit(ctx context.Context, addr string) {
	h, p, e := net.SplitHostPort(addr)
	if e != nil {
		panic(e)
	}

	port, e := strconv.Atoi(p)
	if e != nil {
		panic(e)
	}

	cfg := libhts.Config{
		Name: benchName,
		Listeners: []libskt.Config{
			{
				Name:    benchName,
				Address: h,
				Port:    port,
			},
		},
		Pool: libwkp.Config{
			MinWorkers: 2,
			MaxWorkers: 16,
			MaxWaiting: 128,
		},
	}

	srv, err := libhts.New(cfg, nil)
	if err != nil {
		panic(err)
	}

	srv.RegisterRequest(benchName, http.MethodGet, "/", func(_ interface{}, c *libskt.Conn) int {
		c.ReturnText(http.StatusOK, "OK")
		return librtr.OK
	}, nil, nil, 0)

	if e := srv.Start(ctx); e != nil {
		panic(e)
	}

	waitReachable(addr)
}

func waitReachable(addr string) {
	for i := 0; i < 100; i++ {
		if c, e := net.DialTimeout("tcp", addr, 100*time.Millisecond); e == nil {
			_ = c.Close()
			return
		}

		time.Sleep(10 * time.Millisecond)
	}
}

// RunQuery hammers the server with sequential GET requests.
func RunQuery(ctx context.Context, addr string, b *testing.B) {
	cli := &http.Client{
		Timeout: 5 * time.Second,
	}

	url := "http://127.0.0.1" + addr + "/"

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		rsp, e := cli.Get(url)
		if e != nil {
			b.Fatal(e)
		}

		_, _ = io.Copy(io.Discard, rsp.Body)
		_ = rsp.Body.Close()
	}
}
