package dataset

import "quakewatch/internal/quake"

// severityAmplifier biases the loss toward the high-severity bins so a
// missed major quake costs more than a missed minor one.
var severityAmplifier = [quake.NumBins]float64{1.0, 1.2, 1.5, 2.0, 3.0}

// ClassWeights builds the per-bin loss multipliers for a training label
// distribution: inverse frequency, amplified toward high severity, then
// renormalized to sum to 1. Computed once per run from the realized
// training split.
func ClassWeights(labels []int) [quake.NumBins]float64 {
	var counts [quake.NumBins]float64
	for _, l := range labels {
		counts[l]++
	}

	var weights [quake.NumBins]float64
	var sum float64
	for i := range weights {
		weights[i] = 1.0 / (counts[i] + 1e-6) * severityAmplifier[i]
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}
