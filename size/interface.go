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

// Package size exposes a byte-count type with human notation parsing
// ("16K", "2.5MB", "1GB500MB"), formatting helpers, capped arithmetic and
// encoding support for JSON, YAML, TOML, CBOR, text and binary.
package size

import (
	"math"
	"sync/atomic"
)

// Size is an amount of bytes. The zero value is an empty size.
type Size uint64

const (
	SizeNul  Size = 0
	SizeUnit Size = 1
	SizeKilo Size = 1 << 10
	SizeMega Size = 1 << 20
	SizeGiga Size = 1 << 30
	SizeTera Size = 1 << 40
	SizePeta Size = 1 << 50
	SizeExa  Size = 1 << 60
)

const (
	FormatRound0 = "%.0f"
	FormatRound1 = "%.1f"
	FormatRound2 = "%.2f"
	FormatRound3 = "%.3f"
)

var defUnit = new(atomic.Int32)

func init() {
	defUnit.Store('B')
}

// SetDefaultUnit defines the rune appended to the unit letter when no
// explicit rune is given to Unit or Code. Default is 'B'.
func SetDefaultUnit(unit rune) {
	if unit == 0 {
		unit = 'B'
	}

	defUnit.Store(unit)
}

func getDefaultUnit() rune {
	return rune(defUnit.Load())
}

// Uint64 returns the size as a number of bytes.
func (s Size) Uint64() uint64 {
	return uint64(s)
}

// Uint32 returns the size as uint32, capped at math.MaxUint32.
func (s Size) Uint32() uint32 {
	if uint64(s) > math.MaxUint32 {
		return math.MaxUint32
	}

	return uint32(s)
}

// Uint returns the size as uint, capped at math.MaxUint.
func (s Size) Uint() uint {
	if uint64(s) > math.MaxUint {
		return math.MaxUint
	}

	return uint(s)
}

// Int64 returns the size as int64, capped at math.MaxInt64.
func (s Size) Int64() int64 {
	if uint64(s) > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(s)
}

// Int32 returns the size as int32, capped at math.MaxInt32.
func (s Size) Int32() int32 {
	if uint64(s) > math.MaxInt32 {
		return math.MaxInt32
	}

	return int32(s)
}

// Int returns the size as int, capped at math.MaxInt.
func (s Size) Int() int {
	if uint64(s) > math.MaxInt {
		return math.MaxInt
	}

	return int(s)
}

// Float64 returns the size as float64.
func (s Size) Float64() float64 {
	return float64(s)
}

// Float32 returns the size as float32, capped at math.MaxFloat32.
func (s Size) Float32() float32 {
	f := float64(s)

	if f > math.MaxFloat32 {
		return math.MaxFloat32
	}

	return float32(f)
}

// KiloBytes returns the whole number of kilobytes contained in the size.
func (s Size) KiloBytes() uint64 {
	return uint64(s / SizeKilo)
}

// MegaBytes returns the whole number of megabytes contained in the size.
func (s Size) MegaBytes() uint64 {
	return uint64(s / SizeMega)
}

// GigaBytes returns the whole number of gigabytes contained in the size.
func (s Size) GigaBytes() uint64 {
	return uint64(s / SizeGiga)
}

// TeraBytes returns the whole number of terabytes contained in the size.
func (s Size) TeraBytes() uint64 {
	return uint64(s / SizeTera)
}

// PetaBytes returns the whole number of petabytes contained in the size.
func (s Size) PetaBytes() uint64 {
	return uint64(s / SizePeta)
}

// ExaBytes returns the whole number of exabytes contained in the size.
func (s Size) ExaBytes() uint64 {
	return uint64(s / SizeExa)
}
