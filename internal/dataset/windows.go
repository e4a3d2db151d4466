package dataset

import (
	"sort"

	"quakewatch/internal/quake"
)

// Example is one training pair: a window of seqLength scaled magnitudes
// and the severity bin of the reading that follows it.
type Example struct {
	Window []float64
	Label  int
}

// BuildWindows sorts the readings by timestamp, fits the scaler over the
// full series, and emits max(N-L, 0) (window, label) pairs where window i
// covers readings [i, i+L) and the label is the bin of reading i+L.
//
// The scaler is fit before the train/validation split, so validation rows
// contribute to the scaling statistics. Matches the historical pipeline;
// changing it would invalidate existing checkpoints.
func BuildWindows(readings []quake.Reading, seqLength int) ([]Example, *MinMaxScaler, error) {
	sorted := make([]quake.Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Ts.Before(sorted[j].Ts) })

	magnitudes := make([]float64, len(sorted))
	for i, r := range sorted {
		magnitudes[i] = r.Magnitude
	}

	scaler, err := FitScaler(magnitudes)
	if err != nil {
		return nil, nil, err
	}
	scaled := scaler.TransformAll(magnitudes)

	n := len(sorted) - seqLength
	if n <= 0 {
		// Insufficient data yields zero windows; the caller decides
		// whether that is fatal.
		return nil, scaler, nil
	}

	examples := make([]Example, n)
	for i := 0; i < n; i++ {
		window := make([]float64, seqLength)
		copy(window, scaled[i:i+seqLength])
		examples[i] = Example{
			Window: window,
			Label:  quake.Bin(magnitudes[i+seqLength]),
		}
	}
	return examples, scaler, nil
}

// Split divides the examples chronologically: the first ratio share for
// training, the remainder for validation.
func Split(examples []Example, ratio float64) (train, val []Example) {
	idx := int(float64(len(examples)) * ratio)
	return examples[:idx], examples[idx:]
}
