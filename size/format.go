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

import "fmt"

func (s Size) mag() Size {
	switch {
	case s >= SizeExa:
		return SizeExa
	case s >= SizePeta:
		return SizePeta
	case s >= SizeTera:
		return SizeTera
	case s >= SizeGiga:
		return SizeGiga
	case s >= SizeMega:
		return SizeMega
	case s >= SizeKilo:
		return SizeKilo
	}

	return SizeUnit
}

// Format renders the size scaled to its magnitude unit with the given
// fmt verb, e.g. Format(FormatRound1) on 5632 bytes yields "5.5".
func (s Size) Format(format string) string {
	return fmt.Sprintf(format, float64(s)/float64(s.mag()))
}

// Unit returns the unit code matching the size's magnitude, using the
// given rune as suffix or the literal 'B' when zero ("KB", "Ki"...).
func (s Size) Unit(unit rune) string {
	if unit == 0 {
		unit = 'B'
	}

	return s.code(unit)
}

// Code is Unit falling back to the suffix registered with SetDefaultUnit
// instead of the literal 'B'.
func (s Size) Code(unit rune) string {
	if unit == 0 {
		unit = getDefaultUnit()
	}

	return s.code(unit)
}

func (s Size) code(unit rune) string {
	switch s.mag() {
	case SizeExa:
		return "E" + string(unit)
	case SizePeta:
		return "P" + string(unit)
	case SizeTera:
		return "T" + string(unit)
	case SizeGiga:
		return "G" + string(unit)
	case SizeMega:
		return "M" + string(unit)
	case SizeKilo:
		return "K" + string(unit)
	}

	return string(unit)
}

// String renders the size with two decimals and its unit code, e.g. "5.50KB".
func (s Size) String() string {
	return s.Format(FormatRound2) + s.Unit(0)
}
