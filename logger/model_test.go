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

package logger_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	liblog "github.com/sabouaram/aoserver/logger"
	loglvl "github.com/sabouaram/aoserver/logger/level"
)

var _ = Describe("Logger", func() {
	var log liblog.Logger

	BeforeEach(func() {
		log = liblog.New(context.Background())
	})

	AfterEach(func() {
		_ = log.Close()
	})

	Describe("Levels", func() {
		It("should default to InfoLevel", func() {
			Expect(log.GetLevel()).To(Equal(loglvl.InfoLevel))
		})

		It("should store the configured level", func() {
			log.SetLevel(loglvl.DebugLevel)
			Expect(log.GetLevel()).To(Equal(loglvl.DebugLevel))
		})

		It("should parse level names", func() {
			Expect(loglvl.Parse("debug")).To(Equal(loglvl.DebugLevel))
			Expect(loglvl.Parse("Warning")).To(Equal(loglvl.WarnLevel))
			Expect(loglvl.Parse("unknown")).To(Equal(loglvl.InfoLevel))
		})

		It("should map onto logrus levels", func() {
			Expect(loglvl.ErrorLevel.Logrus().String()).To(Equal("error"))
			Expect(loglvl.DebugLevel.Logrus().String()).To(Equal("debug"))
		})
	})

	Describe("Fields", func() {
		It("should copy the default fields", func() {
			log.SetFields(liblog.Fields{"component": "test"})

			f := log.GetFields()
			f["component"] = "mutated"

			Expect(log.GetFields()["component"]).To(Equal("test"))
		})
	})

	Describe("File output", func() {
		It("should append entries to a configured log file", func() {
			dir := GinkgoT().TempDir()
			path := filepath.Join(dir, "sub", "test.log")

			e := log.SetOptions(&liblog.Options{
				Stdout:  liblog.OptionsStd{DisableStandard: true},
				LogFile: []liblog.OptionsFile{{Filepath: path, CreatePath: true}},
			})
			Expect(e).ToNot(HaveOccurred())

			log.Info("a file entry for %s", nil, "testing")
			_ = log.Close()

			b, err := os.ReadFile(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(b)).To(ContainSubstring("a file entry for testing"))
		})
	})

	Describe("CheckError", func() {
		It("should report whether an error was seen", func() {
			Expect(log.CheckError(loglvl.ErrorLevel, loglvl.NilLevel, "boom", errors.New("x"))).To(BeTrue())
			Expect(log.CheckError(loglvl.ErrorLevel, loglvl.NilLevel, "fine")).To(BeFalse())
			Expect(log.CheckError(loglvl.ErrorLevel, loglvl.NilLevel, "fine", nil)).To(BeFalse())
		})
	})

	Describe("Clone", func() {
		It("should duplicate level and fields", func() {
			log.SetLevel(loglvl.DebugLevel)
			log.SetFields(liblog.Fields{"k": "v"})

			c, e := log.Clone()
			Expect(e).ToNot(HaveOccurred())
			Expect(c.GetLevel()).To(Equal(loglvl.DebugLevel))
			Expect(c.GetFields()["k"]).To(Equal("v"))

			_ = c.Close()
		})
	})

	Describe("Std logger bridge", func() {
		It("should return a usable stdlib logger", func() {
			l := log.GetStdLogger(loglvl.InfoLevel, 0)
			Expect(l).ToNot(BeNil())

			// must not panic
			l.Println("bridged entry")
		})
	})
})
