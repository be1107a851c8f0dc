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

// Package level maps the logger's severity scale onto logrus levels.
package level

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Level is the severity of a log entry. NilLevel disables the entry.
type Level uint8

const (
	// NilLevel discards the entry.
	NilLevel Level = iota
	// PanicLevel logs then panics.
	PanicLevel
	// FatalLevel logs then exits the process.
	FatalLevel
	// ErrorLevel is for failures needing attention.
	ErrorLevel
	// WarnLevel is for recoverable anomalies.
	WarnLevel
	// InfoLevel is for nominal operational messages.
	InfoLevel
	// DebugLevel is for development details.
	DebugLevel
)

// String returns the level's canonical name.
func (l Level) String() string {
	switch l {
	case PanicLevel:
		return "Critical"
	case FatalLevel:
		return "Fatal"
	case ErrorLevel:
		return "Error"
	case WarnLevel:
		return "Warning"
	case InfoLevel:
		return "Info"
	case DebugLevel:
		return "Debug"
	}

	return ""
}

// Parse returns the level matching the given name, defaulting to InfoLevel.
func Parse(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical", "panic":
		return PanicLevel
	case "fatal":
		return FatalLevel
	case "error":
		return ErrorLevel
	case "warning", "warn":
		return WarnLevel
	case "debug":
		return DebugLevel
	case "none", "nil":
		return NilLevel
	}

	return InfoLevel
}

// Logrus returns the logrus level matching the receiver.
func (l Level) Logrus() logrus.Level {
	switch l {
	case NilLevel:
		return logrus.PanicLevel
	case PanicLevel:
		return logrus.PanicLevel
	case FatalLevel:
		return logrus.FatalLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case WarnLevel:
		return logrus.WarnLevel
	case InfoLevel:
		return logrus.InfoLevel
	case DebugLevel:
		return logrus.DebugLevel
	}

	return logrus.InfoLevel
}
