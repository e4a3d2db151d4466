// Package quake holds the seismic domain model: magnitude readings,
// the five-way severity binning, and the bin-to-risk mapping used by
// the prediction report.
package quake

import "time"

// Reading is a single magnitude observation from the upstream catalog.
// Magnitudes are positive after filtering; callers sort by Ts before
// windowing.
type Reading struct {
	Magnitude float64   `json:"magnitude"`
	Ts        time.Time `json:"ts"`
	Lat       float64   `json:"lat,omitempty"`
	Lon       float64   `json:"lon,omitempty"`
}

// NumBins is the number of severity categories.
const NumBins = 5

// Bin boundaries. Magnitude m falls into the first range whose upper
// bound exceeds it; the top bin is open-ended.
var binUpper = [NumBins - 1]float64{4, 5, 6, 7}

// severityNames index by bin.
var severityNames = [NumBins]string{"minor", "light", "moderate", "strong", "major"}

// riskLevels index by bin. Bins 0 and 1 both map to "low".
var riskLevels = [NumBins]string{"low", "low", "medium", "high", "extreme"}

// topBinUpper is the finite stand-in for the open-ended major bin,
// used when averaging to an expected magnitude.
const topBinUpper = 10.0

// Bin maps a magnitude to its severity bin 0..4. Lower bounds are
// inclusive: Bin(4.0) == 1, Bin(7.0) == 4.
func Bin(magnitude float64) int {
	for i, upper := range binUpper {
		if magnitude < upper {
			return i
		}
	}
	return NumBins - 1
}

// SeverityName returns the human name for a bin ("minor".."major").
func SeverityName(bin int) string {
	return severityNames[bin]
}

// RiskLevel returns the qualitative risk string for a bin.
func RiskLevel(bin int) string {
	return riskLevels[bin]
}

// BinRange returns the [low, high) magnitude range of a bin, with the
// open-ended top bin reported as (7, 10) for averaging purposes.
func BinRange(bin int) (low, high float64) {
	if bin == 0 {
		return 0, binUpper[0]
	}
	if bin == NumBins-1 {
		return binUpper[NumBins-2], topBinUpper
	}
	return binUpper[bin-1], binUpper[bin]
}

// ExpectedMagnitude returns the midpoint of a bin's range.
func ExpectedMagnitude(bin int) float64 {
	low, high := BinRange(bin)
	return (low + high) / 2
}
