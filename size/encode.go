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

package size

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

func (s *Size) unmarshall(p []byte) error {
	if len(p) > 1 && p[0] == '"' && p[len(p)-1] == '"' {
		p = p[1 : len(p)-1]
	}

	v, e := ParseByte(p)
	if e != nil {
		return e
	}

	*s = v
	return nil
}

// MarshalJSON returns the size as a quoted human notation string.
func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a quoted human notation string into the receiver.
func (s *Size) UnmarshalJSON(p []byte) error {
	return s.unmarshall(p)
}

// MarshalYAML returns the size as a human notation string.
func (s Size) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML parses a human notation scalar into the receiver.
func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	return s.unmarshall([]byte(value.Value))
}

func (s Size) MarshalTOML() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Size) UnmarshalTOML(i interface{}) error {
	if b, k := i.([]byte); k {
		return s.unmarshall(b)
	}

	if b, k := i.(string); k {
		return s.unmarshall([]byte(b))
	}

	return fmt.Errorf("size: value not in valid format")
}

// MarshalText returns the size as a human notation string.
func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a human notation string into the receiver.
func (s *Size) UnmarshalText(p []byte) error {
	return s.unmarshall(p)
}

// MarshalCBOR returns the CBOR encoding of the human notation string.
func (s Size) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(s.String())
}

// UnmarshalCBOR parses a CBOR-encoded human notation string into the
// receiver.
func (s *Size) UnmarshalCBOR(p []byte) error {
	var str string

	if e := cbor.Unmarshal(p, &str); e != nil {
		return e
	}

	return s.unmarshall([]byte(str))
}

// MarshalBinary returns the size as 8 bytes in big endian order.
func (s Size) MarshalBinary() ([]byte, error) {
	var p = make([]byte, 8)

	binary.BigEndian.PutUint64(p, uint64(s))
	return p, nil
}

// UnmarshalBinary parses 8 bytes in big endian order into the receiver.
func (s *Size) UnmarshalBinary(p []byte) error {
	if len(p) != 8 {
		return fmt.Errorf("size: value not in valid format")
	}

	*s = Size(binary.BigEndian.Uint64(p))
	return nil
}
