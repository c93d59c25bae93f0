// Package testutil provides reusable signal generators and assertions for
// the amp engine's tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Sine generates n samples of a unit-amplitude sine at the given
// frequency and sample rate.
func Sine(n int, freq, sampleRate float64) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / sampleRate))
	}
	return buf
}

// Impulse generates n samples of a unit impulse.
func Impulse(n int) []float32 {
	buf := make([]float32, n)
	buf[0] = 1
	return buf
}

// RMS returns the root mean square level of the buffer.
func RMS(buf []float32) float64 {
	var sum float64
	for _, v := range buf {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(buf)))
}

// AssertNoNaNOrInf verifies that no sample is NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, buf []float32) bool {
	t.Helper()
	for i, v := range buf {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "buf[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "buf[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that every sample lies within [minVal, maxVal].
func AssertAllInRange(t *testing.T, buf []float32, minVal, maxVal float32) bool {
	t.Helper()
	for i, v := range buf {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "sample out of range",
				"buf[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}
