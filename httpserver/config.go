/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	libdur "github.com/sabouaram/aoserver/duration"
	liberr "github.com/sabouaram/aoserver/errors"
	libsiz "github.com/sabouaram/aoserver/size"
	libskt "github.com/sabouaram/aoserver/socket"
	libwkp "github.com/sabouaram/aoserver/workerpool"
)

const defaultShutdownTimeout = 20 * time.Second

// Config describes one server instance: its listeners, its worker pool
// and the global shutdown behavior.
type Config struct {
	// Name identifies the server instance.
	Name string `json:"name" yaml:"name" mapstructure:"name" validate:"required"`

	// Disabled keeps the configuration without starting the server.
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty" mapstructure:"disabled"`

	// Listeners configures at least one ingest listener.
	Listeners []libskt.Config `json:"listeners" yaml:"listeners" mapstructure:"listeners" validate:"required,min=1,dive"`

	// Pool sizes the worker pool shared by every listener.
	Pool libwkp.Config `json:"pool,omitempty" yaml:"pool,omitempty" mapstructure:"pool"`

	// ShutdownTimeout bounds the whole shutdown protocol, defaulting
	// to 20s.
	ShutdownTimeout libdur.Duration `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty" mapstructure:"shutdownTimeout"`

	// MaxMemMultipart is the in-memory multipart threshold above which a
	// warning is logged.
	MaxMemMultipart libsiz.Size `json:"maxMemMultipart,omitempty" yaml:"maxMemMultipart,omitempty" mapstructure:"maxMemMultipart"`
}

// Validate checks the config, fills defaults, and propagates the server
// name to unnamed listeners.
func (c *Config) Validate() liberr.Error {
	err := ErrorServerValidate.Error(nil)

	if e := validator.New().Struct(c); e != nil {
		if ve, ok := e.(validator.ValidationErrors); ok {
			for _, f := range ve {
				err.Add(fmt.Errorf("field '%s' rule '%s'", f.Namespace(), f.ActualTag()))
			}
		} else {
			err.Add(e)
		}
	}

	if err.HasParent() {
		return err
	}

	for i := range c.Listeners {
		if c.Listeners[i].Name == "" {
			c.Listeners[i].Name = c.Name
		}

		if e := c.Listeners[i].Validate(); e != nil {
			err.Add(e)
		}
	}

	if err.HasParent() {
		return err
	}

	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = libdur.ParseDuration(defaultShutdownTimeout)
	}

	return nil
}

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	var r = c

	r.Listeners = make([]libskt.Config, len(c.Listeners))
	copy(r.Listeners, c.Listeners)

	return r
}
