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
)

// ceilSnap rounds up, but snaps results that are within float rounding
// noise of a whole number back to that whole number (10 * 1.1 must give
// 11, not 12).
func ceilSnap(r float64) float64 {
	n := math.Round(r)

	if math.Abs(r-n) < 1e-9*math.Max(1, math.Abs(r)) {
		return n
	}

	return math.Ceil(r)
}

// Mul scales the size by the given factor, rounding up and capping at
// math.MaxUint64. Negative factors are treated as zero.
func (s *Size) Mul(m float64) {
	_ = s.MulErr(m)
}

// MulErr is Mul reporting overflow as an error. The receiver is still
// updated to the capped value when overflowing.
func (s *Size) MulErr(m float64) error {
	if m < 0 {
		m = 0
	}

	r := ceilSnap(float64(*s) * m)

	if r >= math.MaxUint64 {
		*s = Size(math.MaxUint64)
		return fmt.Errorf("size overflow")
	}

	*s = Size(r)
	return nil
}

// Div divides the size by the given divisor, rounding up. Invalid divisors
// leave the size unchanged.
func (s *Size) Div(d float64) {
	_ = s.DivErr(d)
}

// DivErr is Div reporting an invalid (zero or negative) divisor as an error.
func (s *Size) DivErr(d float64) error {
	if d <= 0 {
		return fmt.Errorf("invalid diviser")
	}

	*s = Size(ceilSnap(float64(*s) / d))
	return nil
}

// Add increases the size by the given byte count, capping at math.MaxUint64.
func (s *Size) Add(a uint64) {
	_ = s.AddErr(a)
}

// AddErr is Add reporting overflow as an error. The receiver is still
// updated to the capped value when overflowing.
func (s *Size) AddErr(a uint64) error {
	if uint64(*s) > math.MaxUint64-a {
		*s = Size(math.MaxUint64)
		return fmt.Errorf("size overflow")
	}

	*s = *s + Size(a)
	return nil
}

// Sub decreases the size by the given byte count, flooring at zero.
func (s *Size) Sub(a uint64) {
	_ = s.SubErr(a)
}

// SubErr is Sub reporting underflow as an error. The receiver is still
// updated to zero when underflowing.
func (s *Size) SubErr(a uint64) error {
	if a > uint64(*s) {
		*s = SizeNul
		return fmt.Errorf("invalid substractor")
	}

	*s = *s - Size(a)
	return nil
}
