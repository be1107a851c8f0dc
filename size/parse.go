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
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse converts a human notation like "16K", "2.5MB" or "1GB500MB" into a
// Size. The number part may be fractional, units are matched without case,
// and number/unit pairs may be chained to be summed. Negative sizes are
// rejected.
func Parse(str string) (Size, error) {
	s := strings.TrimSpace(str)
	s = strings.Trim(s, `"'`)
	s = strings.TrimSpace(s)

	if len(s) < 1 {
		return SizeNul, fmt.Errorf("invalid size '%s'", str)
	}

	if strings.HasPrefix(s, "-") {
		return SizeNul, fmt.Errorf("invalid size '%s': negative value", str)
	}

	s = strings.TrimPrefix(s, "+")

	var res float64

	for len(s) > 0 {
		s = strings.TrimSpace(s)

		num, rem, err := parseNumber(s, str)
		if err != nil {
			return SizeNul, err
		}

		rem = strings.TrimSpace(rem)

		mul, rem, err := parseUnit(rem, str)
		if err != nil {
			return SizeNul, err
		}

		res += num * mul
		s = rem
	}

	if res >= math.MaxUint64 {
		return SizeNul, fmt.Errorf("invalid size '%s': overflow", str)
	}

	return Size(res), nil
}

func parseNumber(s, org string) (float64, string, error) {
	var i int

	for i < len(s) && (s[i] == '.' || (s[i] >= '0' && s[i] <= '9')) {
		i++
	}

	if i < 1 {
		return 0, "", fmt.Errorf("invalid size '%s'", org)
	}

	n, e := strconv.ParseFloat(strings.TrimSuffix(s[:i], "."), 64)
	if e != nil {
		return 0, "", fmt.Errorf("invalid size '%s': %v", org, e)
	}

	return n, s[i:], nil
}

func parseUnit(s, org string) (float64, string, error) {
	var i int

	for i < len(s) && ((s[i] >= 'a' && s[i] <= 'z') || (s[i] >= 'A' && s[i] <= 'Z')) {
		i++
	}

	if i < 1 {
		return 0, "", fmt.Errorf("invalid size '%s': missing unit", org)
	}

	var (
		u = strings.ToLower(s[:i])
		m float64
	)

	switch u[0] {
	case 'b':
		m = float64(SizeUnit)
	case 'k':
		m = float64(SizeKilo)
	case 'm':
		m = float64(SizeMega)
	case 'g':
		m = float64(SizeGiga)
	case 't':
		m = float64(SizeTera)
	case 'p':
		m = float64(SizePeta)
	case 'e':
		m = float64(SizeExa)
	default:
		return 0, "", fmt.Errorf("invalid size '%s': unknown unit '%s'", org, s[:i])
	}

	switch u[1:] {
	case "", "b", "ib":
		if u[0] == 'b' && len(u) > 1 {
			return 0, "", fmt.Errorf("invalid size '%s': unknown unit '%s'", org, s[:i])
		}
	default:
		return 0, "", fmt.Errorf("invalid size '%s': unknown unit '%s'", org, s[:i])
	}

	return m, s[i:], nil
}

// ParseByte is like Parse for a raw buffer.
func ParseByte(p []byte) (Size, error) {
	return Parse(string(p))
}

// ParseSize is a deprecated alias of Parse.
func ParseSize(s string) (Size, error) {
	return Parse(s)
}

// ParseByteAsSize is a deprecated alias of ParseByte.
func ParseByteAsSize(p []byte) (Size, error) {
	return ParseByte(p)
}

// GetSize is a deprecated helper returning the parsed size and a validity
// flag instead of an error.
func GetSize(s string) (Size, bool) {
	r, e := Parse(s)
	if e != nil {
		return SizeNul, false
	}

	return r, true
}

// ParseInt64 converts a signed byte count into a Size, taking the absolute
// value of negative inputs.
func ParseInt64(i int64) Size {
	if i < 0 {
		return Size(uint64(-i))
	}

	return Size(uint64(i))
}

// SizeFromInt64 is a deprecated alias of ParseInt64.
func SizeFromInt64(i int64) Size {
	return ParseInt64(i)
}

// ParseUint64 converts an unsigned byte count into a Size.
func ParseUint64(i uint64) Size {
	return Size(i)
}

// ParseFloat64 converts a float byte count into a Size. The value is floored
// first, then its absolute value is taken; results beyond the uint64 range
// are capped at math.MaxUint64.
func ParseFloat64(f float64) Size {
	f = math.Abs(math.Floor(f))

	if f >= math.MaxUint64 {
		return Size(math.MaxUint64)
	}

	return Size(f)
}

// SizeFromFloat64 is a deprecated alias of ParseFloat64.
func SizeFromFloat64(f float64) Size {
	return ParseFloat64(f)
}
