// Package mathutil provides shared numeric helpers for the amp engine.
package mathutil

import "math"

const (
	// silenceFloorDB is the level below which a decibel gain collapses
	// to a true zero coefficient instead of a denormal-range value.
	silenceFloorDB = -90.0

	// dbPerDecade converts between decibels and log10 magnitude.
	dbPerDecade = 20.0

	// percentFullScale is the upper bound of percentage parameters.
	percentFullScale = 100.0
)

// DBToGain converts a gain expressed in decibels to a linear coefficient.
// Values at or below the -90 dB silence floor map to exactly 0 so that a
// fully closed gain knob produces digital silence rather than a denormal.
func DBToGain(db float64) float64 {
	if db > silenceFloorDB {
		return math.Pow(10.0, db/dbPerDecade)
	}
	return 0.0
}

// GainToDB converts a linear gain coefficient to decibels.
// A non-positive coefficient maps to the -90 dB silence floor.
func GainToDB(gain float64) float64 {
	if gain <= 0 {
		return silenceFloorDB
	}
	return dbPerDecade * math.Log10(gain)
}

// PercentToCoeff scales a 0-100 percentage parameter to a 0-1 coefficient.
// Values at or above 100 clamp to exactly 1.
func PercentToCoeff(percent float64) float64 {
	if percent < percentFullScale {
		return percent / percentFullScale
	}
	return 1.0
}
