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

// Package logger exposes a leveled, structured logger backed by logrus,
// writing to stdout and optionally to files. Subsystems receive a
// FuncLog so the concrete logger can be swapped or reconfigured live.
package logger

import (
	"context"
	"io"
	"log"
	"sync"

	loglvl "github.com/sabouaram/aoserver/logger/level"
)

// FuncLog returns a Logger instance. It is used for dependency injection
// and lazy initialization of loggers.
type FuncLog func() Logger

// Fields are custom key/value pairs attached to every entry of a logger.
type Fields map[string]interface{}

// Logger is the main interface for structured logging operations. It also
// implements io.WriteCloser so it can stand in for any standard writer.
type Logger interface {
	io.WriteCloser

	// SetLevel changes the minimal severity of logged messages.
	SetLevel(lvl loglvl.Level)

	// GetLevel returns the minimal severity of logged messages.
	GetLevel() loglvl.Level

	// SetOptions applies output options (stdout flags, log files) to the
	// logger, replacing any previous options.
	SetOptions(opt *Options) error

	// GetOptions returns the currently applied options.
	GetOptions() *Options

	// SetFields replaces the default fields added to every entry.
	SetFields(fld Fields)

	// GetFields returns the default fields added to every entry.
	GetFields() Fields

	// Clone duplicates the logger with its level, fields and options.
	Clone() (Logger, error)

	// GetStdLogger returns a stdlib log.Logger writing into this logger at
	// the given level.
	GetStdLogger(lvl loglvl.Level, logFlags int) *log.Logger

	// Debug adds an entry with DebugLevel to the logger.
	Debug(message string, data interface{}, args ...interface{})

	// Info adds an entry with InfoLevel to the logger.
	Info(message string, data interface{}, args ...interface{})

	// Warning adds an entry with WarnLevel to the logger.
	Warning(message string, data interface{}, args ...interface{})

	// Error adds an entry with ErrorLevel to the logger.
	Error(message string, data interface{}, args ...interface{})

	// Fatal adds an entry with FatalLevel to the logger then exits.
	Fatal(message string, data interface{}, args ...interface{})

	// LogDetails adds an entry with the given level, data payload, error
	// list and additional fields.
	LogDetails(lvl loglvl.Level, message string, data interface{}, err []error, fields Fields, args ...interface{})

	// CheckError logs the given errors at lvlKO if any is non-nil, or logs
	// the message at lvlOK otherwise (unless NilLevel). It reports whether
	// at least one error was found.
	CheckError(lvlKO, lvlOK loglvl.Level, message string, err ...error) bool
}

// New returns a Logger bound to the given context, logging to stdout at
// InfoLevel until options are applied.
func New(ctx context.Context) Logger {
	l := &lgr{
		x: ctx,
		f: make(Fields),
	}

	l.SetLevel(loglvl.InfoLevel)
	_ = l.SetOptions(&Options{})

	return l
}

type lgr struct {
	m sync.RWMutex
	x context.Context
	v loglvl.Level
	o Options
	f Fields
	c []io.Closer
	w io.Writer
}
