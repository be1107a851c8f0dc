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

package logger

import (
	"log"
	"strings"

	loglvl "github.com/sabouaram/aoserver/logger/level"
)

type stdWriter struct {
	l *lgr
	v loglvl.Level
}

func (o *stdWriter) Write(p []byte) (n int, err error) {
	o.l.log(o.v, strings.TrimRight(string(p), "\r\n"), nil, nil, nil)
	return len(p), nil
}

// GetStdLogger returns a stdlib logger feeding this logger at the given
// level, so third party code expecting a *log.Logger can be plugged in.
func (o *lgr) GetStdLogger(lvl loglvl.Level, logFlags int) *log.Logger {
	return log.New(&stdWriter{l: o, v: lvl}, "", logFlags)
}

// Write logs the given buffer as one InfoLevel entry, allowing the logger
// to stand in for any io.Writer.
func (o *lgr) Write(p []byte) (n int, err error) {
	o.log(loglvl.InfoLevel, strings.TrimRight(string(p), "\r\n"), nil, nil, nil)
	return len(p), nil
}
