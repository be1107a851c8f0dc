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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	loglvl "github.com/sabouaram/aoserver/logger/level"
)

func defaultFormatter(disableColor bool) logrus.Formatter {
	return &logrus.TextFormatter{
		ForceColors:            !disableColor,
		DisableColors:          disableColor,
		ForceQuote:             true,
		DisableTimestamp:       false,
		TimestampFormat:        time.RFC3339,
		DisableLevelTruncation: true,
		PadLevelText:           true,
		QuoteEmptyFields:       true,
	}
}

func (o *lgr) SetLevel(lvl loglvl.Level) {
	o.m.Lock()
	defer o.m.Unlock()

	o.v = lvl
}

func (o *lgr) GetLevel() loglvl.Level {
	o.m.RLock()
	defer o.m.RUnlock()

	return o.v
}

func (o *lgr) SetFields(fld Fields) {
	o.m.Lock()
	defer o.m.Unlock()

	if fld == nil {
		fld = make(Fields)
	}

	o.f = fld
}

func (o *lgr) GetFields() Fields {
	o.m.RLock()
	defer o.m.RUnlock()

	var r = make(Fields, len(o.f))
	for k, v := range o.f {
		r[k] = v
	}

	return r
}

func (o *lgr) SetOptions(opt *Options) error {
	if opt == nil {
		opt = &Options{}
	}

	var (
		out []io.Writer
		cls []io.Closer
	)

	if !opt.Stdout.DisableStandard {
		out = append(out, os.Stdout)
	}

	for _, f := range opt.LogFile {
		if f.Filepath == "" {
			continue
		}

		if f.CreatePath {
			m := os.FileMode(f.PathMode)
			if m == 0 {
				m = 0755
			}

			if e := os.MkdirAll(filepath.Dir(f.Filepath), m); e != nil {
				return e
			}
		}

		m := os.FileMode(f.FileMode)
		if m == 0 {
			m = 0644
		}

		h, e := os.OpenFile(f.Filepath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, m)
		if e != nil {
			return e
		}

		out = append(out, h)
		cls = append(cls, h)
	}

	o.m.Lock()
	defer o.m.Unlock()

	for _, c := range o.c {
		_ = c.Close()
	}

	o.o = opt.Clone()
	o.c = cls

	if len(out) > 0 {
		o.w = io.MultiWriter(out...)
	} else {
		o.w = io.Discard
	}

	return nil
}

func (o *lgr) GetOptions() *Options {
	o.m.RLock()
	defer o.m.RUnlock()

	r := o.o.Clone()
	return &r
}

func (o *lgr) Clone() (Logger, error) {
	n := &lgr{
		x: o.x,
		f: o.GetFields(),
	}

	n.SetLevel(o.GetLevel())

	if e := n.SetOptions(o.GetOptions()); e != nil {
		return nil, e
	}

	return n, nil
}

func (o *lgr) Close() error {
	o.m.Lock()
	defer o.m.Unlock()

	var err error

	for _, c := range o.c {
		if e := c.Close(); e != nil {
			err = e
		}
	}

	o.c = nil
	o.w = io.Discard

	return err
}

// newEntry builds a logrus entry bound to the logger's current output and
// default fields.
func (o *lgr) newEntry() *logrus.Entry {
	o.m.RLock()

	var (
		w = o.w
		v = o.v
		c = o.o.Stdout.DisableColor
		f = make(logrus.Fields, len(o.f))
	)

	for k, i := range o.f {
		f[k] = i
	}

	o.m.RUnlock()

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(v.Logrus())
	l.SetFormatter(defaultFormatter(c))

	return l.WithFields(f)
}

func (o *lgr) log(lvl loglvl.Level, message string, data interface{}, err []error, fields Fields, args ...interface{}) {
	if lvl == loglvl.NilLevel || lvl > o.GetLevel() {
		return
	}

	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}

	e := o.newEntry()

	if data != nil {
		e = e.WithField("data", data)
	}

	var lst []string
	for _, r := range err {
		if r != nil {
			lst = append(lst, r.Error())
		}
	}

	if len(lst) > 0 {
		e = e.WithField("error", lst)
	}

	for k, v := range fields {
		e = e.WithField(k, v)
	}

	switch lvl {
	case loglvl.PanicLevel:
		e.Panic(message)
	case loglvl.FatalLevel:
		e.Fatal(message)
	case loglvl.ErrorLevel:
		e.Error(message)
	case loglvl.WarnLevel:
		e.Warn(message)
	case loglvl.InfoLevel:
		e.Info(message)
	case loglvl.DebugLevel:
		e.Debug(message)
	}
}

func (o *lgr) Debug(message string, data interface{}, args ...interface{}) {
	o.log(loglvl.DebugLevel, message, data, nil, nil, args...)
}

func (o *lgr) Info(message string, data interface{}, args ...interface{}) {
	o.log(loglvl.InfoLevel, message, data, nil, nil, args...)
}

func (o *lgr) Warning(message string, data interface{}, args ...interface{}) {
	o.log(loglvl.WarnLevel, message, data, nil, nil, args...)
}

func (o *lgr) Error(message string, data interface{}, args ...interface{}) {
	o.log(loglvl.ErrorLevel, message, data, nil, nil, args...)
}

func (o *lgr) Fatal(message string, data interface{}, args ...interface{}) {
	o.log(loglvl.FatalLevel, message, data, nil, nil, args...)
}

func (o *lgr) LogDetails(lvl loglvl.Level, message string, data interface{}, err []error, fields Fields, args ...interface{}) {
	o.log(lvl, message, data, err, fields, args...)
}

func (o *lgr) CheckError(lvlKO, lvlOK loglvl.Level, message string, err ...error) bool {
	var lst []error

	for _, e := range err {
		if e != nil {
			lst = append(lst, e)
		}
	}

	if len(lst) > 0 {
		o.log(lvlKO, message, nil, lst, nil)
		return true
	}

	if lvlOK != loglvl.NilLevel {
		o.log(lvlOK, message, nil, nil, nil)
	}

	return false
}
