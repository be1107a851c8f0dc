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

// OptionsStd configures logging to the process standard outputs.
type OptionsStd struct {
	// DisableStandard disables the stdout output entirely.
	DisableStandard bool `json:"disableStandard,omitempty" yaml:"disableStandard,omitempty" mapstructure:"disableStandard"`

	// DisableColor forces a colorless output.
	DisableColor bool `json:"disableColor,omitempty" yaml:"disableColor,omitempty" mapstructure:"disableColor"`

	// EnableTrace is kept and merged with the options; the logger does not
	// read it, and entries carry no caller file or line.
	EnableTrace bool `json:"enableTrace,omitempty" yaml:"enableTrace,omitempty" mapstructure:"enableTrace"`
}

// OptionsFile configures one log file destination.
type OptionsFile struct {
	// LogLevel lists level names for the file. The logger does not read it:
	// every file receives all entries passing the logger's level.
	LogLevel []string `json:"logLevel,omitempty" yaml:"logLevel,omitempty" mapstructure:"logLevel"`

	// Filepath is the destination path, created if missing.
	Filepath string `json:"filepath" yaml:"filepath" mapstructure:"filepath"`

	// CreatePath creates the parent directory tree if missing.
	CreatePath bool `json:"createPath,omitempty" yaml:"createPath,omitempty" mapstructure:"createPath"`

	// FileMode is the permission applied to a created file.
	FileMode uint32 `json:"fileMode,omitempty" yaml:"fileMode,omitempty" mapstructure:"fileMode"`

	// PathMode is the permission applied to created directories.
	PathMode uint32 `json:"pathMode,omitempty" yaml:"pathMode,omitempty" mapstructure:"pathMode"`
}

// Options configures a Logger's destinations.
type Options struct {
	// Stdout configures the standard output destination.
	Stdout OptionsStd `json:"stdout,omitempty" yaml:"stdout,omitempty" mapstructure:"stdout"`

	// LogFile configures zero or more file destinations.
	LogFile []OptionsFile `json:"logFile,omitempty" yaml:"logFile,omitempty" mapstructure:"logFile"`
}

// Merge overlays the non-zero parts of the given options onto the receiver.
func (o *Options) Merge(opt *Options) {
	if opt == nil {
		return
	}

	if opt.Stdout.DisableStandard {
		o.Stdout.DisableStandard = true
	}

	if opt.Stdout.DisableColor {
		o.Stdout.DisableColor = true
	}

	if opt.Stdout.EnableTrace {
		o.Stdout.EnableTrace = true
	}

	if len(opt.LogFile) > 0 {
		o.LogFile = append(o.LogFile, opt.LogFile...)
	}
}

// Clone returns a deep copy of the options.
func (o Options) Clone() Options {
	var r = o

	r.LogFile = make([]OptionsFile, len(o.LogFile))
	copy(r.LogFile, o.LogFile)

	return r
}
