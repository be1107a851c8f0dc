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
 */

// Package pidcontroller generates a smoothed series of float64 values between
// two bounds, used by duration.RangeTo to build a ramp of retry/backoff
// durations rather than a single jump from the start value to the end value.
package pidcontroller

import "context"

const maxSteps = 64

// PID holds the proportional, integral, and derivative rates used to shape
// the generated range.
type PID struct {
	rateP float64
	rateI float64
	rateD float64
}

// New returns a PID controller with the given rates.
func New(rateP, rateI, rateD float64) *PID {
	return &PID{rateP: rateP, rateI: rateI, rateD: rateD}
}

// RangeCtx walks from start toward target, emitting one value per step sized
// by the controller's proportional/integral/derivative terms applied to the
// remaining error. It stops early if ctx is done, or once the error term
// collapses to zero, or after maxSteps.
func (p *PID) RangeCtx(ctx context.Context, start, target float64) []float64 {
	var (
		out      = []float64{start}
		current  = start
		integral float64
		lastErr  float64
	)

	for i := 0; i < maxSteps; i++ {
		select {
		case <-ctx.Done():
			return out
		default:
		}

		errTerm := target - current
		if errTerm == 0 {
			break
		}

		integral += errTerm
		derivative := errTerm - lastErr
		lastErr = errTerm

		step := p.rateP*errTerm + p.rateI*integral + p.rateD*derivative
		if step == 0 {
			break
		}

		current += step
		if (errTerm > 0 && current >= target) || (errTerm < 0 && current <= target) {
			out = append(out, target)
			break
		}

		out = append(out, current)
	}

	return out
}
