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

package socket

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	libdur "github.com/sabouaram/aoserver/duration"
	liberr "github.com/sabouaram/aoserver/errors"
	libsiz "github.com/sabouaram/aoserver/size"
)

// HeaderCase selects how parsed header names are stored.
type HeaderCase uint8

const (
	// HeaderCasePreserve stores header names as received.
	HeaderCasePreserve HeaderCase = iota
	// HeaderCaseLower stores header names lowercased.
	HeaderCaseLower
	// HeaderCaseUpper stores header names uppercased.
	HeaderCaseUpper
)

const (
	defaultPort      = 80
	defaultBacklog   = 5
	defaultBufSize   = libsiz.Size(16000)
	defaultSendWait  = 30 * time.Second
	defaultCloseWait = 2 * time.Second
	defaultKeepWait  = 30 * time.Second
)

// Config describes one listener.
type Config struct {
	// Name identifies the listener in logs and metrics.
	Name string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`

	// Hostname is the public name used to derive Location. When empty the
	// primary hostname of the host is used, normalized to a FQDN by a
	// reverse lookup of its address when one resolves.
	Hostname string `json:"hostname,omitempty" yaml:"hostname,omitempty" mapstructure:"hostname" validate:"omitempty,hostname_rfc1123"`

	// Address is the local address to bind, empty meaning every interface.
	Address string `json:"address,omitempty" yaml:"address,omitempty" mapstructure:"address"`

	// Port is the TCP port to listen on, defaulting to 80.
	Port int `json:"port,omitempty" yaml:"port,omitempty" mapstructure:"port" validate:"gte=0,lte=65535"`

	// Backlog bounds the pending accept queue, defaulting to 5.
	Backlog int `json:"backlog,omitempty" yaml:"backlog,omitempty" mapstructure:"backlog" validate:"gte=0"`

	// BufSize is the initial request buffer size, defaulting to 16000.
	BufSize libsiz.Size `json:"bufsize,omitempty" yaml:"bufsize,omitempty" mapstructure:"bufsize"`

	// RcvBuf sets SO_RCVBUF when positive, zero keeping the OS default.
	RcvBuf libsiz.Size `json:"rcvbuf,omitempty" yaml:"rcvbuf,omitempty" mapstructure:"rcvbuf"`

	// SndBuf sets SO_SNDBUF when positive, zero keeping the OS default.
	SndBuf libsiz.Size `json:"sndbuf,omitempty" yaml:"sndbuf,omitempty" mapstructure:"sndbuf"`

	// SendWait bounds response writes, defaulting to 30s.
	SendWait libdur.Duration `json:"sendwait,omitempty" yaml:"sendwait,omitempty" mapstructure:"sendwait"`

	// RecvWait bounds request reads, defaulting to SendWait.
	RecvWait libdur.Duration `json:"recvwait,omitempty" yaml:"recvwait,omitempty" mapstructure:"recvwait"`

	// CloseWait bounds the drain of a half-closed socket, defaulting to 2s.
	CloseWait libdur.Duration `json:"closewait,omitempty" yaml:"closewait,omitempty" mapstructure:"closewait"`

	// KeepWait bounds the idle time of a kept-alive socket, defaulting
	// to 30s.
	KeepWait libdur.Duration `json:"keepwait,omitempty" yaml:"keepwait,omitempty" mapstructure:"keepwait"`

	// Location is the public base url. It is derived from the hostname,
	// scheme and port when empty.
	Location string `json:"location,omitempty" yaml:"location,omitempty" mapstructure:"location" validate:"omitempty,url"`

	// HeaderCase selects how parsed header names are stored.
	HeaderCase HeaderCase `json:"headerCase,omitempty" yaml:"headerCase,omitempty" mapstructure:"headerCase"`
}

// Validate checks the config and fills every defaulted field.
func (c *Config) Validate() liberr.Error {
	err := ErrorValidatorError.Error(nil)

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

	c.setDefaults()
	return nil
}

func (c *Config) setDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}

	if c.Backlog == 0 {
		c.Backlog = defaultBacklog
	}

	if c.BufSize == 0 {
		c.BufSize = defaultBufSize
	}

	if c.SendWait == 0 {
		c.SendWait = libdur.Duration(defaultSendWait)
	}

	if c.RecvWait == 0 {
		c.RecvWait = c.SendWait
	}

	if c.CloseWait == 0 {
		c.CloseWait = libdur.Duration(defaultCloseWait)
	}

	if c.KeepWait == 0 {
		c.KeepWait = libdur.Duration(defaultKeepWait)
	}
}

// Bindable returns the host:port pair the listener binds.
func (c *Config) Bindable() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

// resolveHost walks the hostname fallback chain: the configured name, the
// host's own name normalized to a FQDN by a reverse lookup of its first
// address, the plain host name when that lookup fails, then "localhost".
func (c *Config) resolveHost() string {
	if c.Hostname != "" {
		return c.Hostname
	}

	if h, e := os.Hostname(); e == nil && h != "" {
		if ips, e := net.LookupHost(h); e == nil && len(ips) > 0 {
			if a, e := net.LookupAddr(ips[0]); e == nil && len(a) > 0 {
				return strings.TrimSuffix(a[0], ".")
			}
		}

		return h
	}

	return "localhost"
}

// DeriveLocation fills Location from the scheme, resolved hostname and
// port when it was not configured explicitly.
func (c *Config) DeriveLocation() string {
	if c.Location != "" {
		return c.Location
	}

	h := c.resolveHost()

	if c.Port == defaultPort {
		c.Location = "http://" + h
	} else {
		c.Location = fmt.Sprintf("http://%s:%d", h, c.Port)
	}

	return c.Location
}

// Clone returns a copy of the config.
func (c Config) Clone() Config {
	return c
}
