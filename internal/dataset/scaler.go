// Package dataset turns a sorted magnitude series into the fixed-length
// scaled windows and severity labels consumed by the classifier.
package dataset

import (
	"errors"
	"math"
)

// ErrEmptySeries is returned when a scaler is fit on no values.
var ErrEmptySeries = errors.New("cannot fit scaler on empty series")

// MinMaxScaler rescales magnitudes into [0, 1] using statistics fit once
// on the training series. It is bundled into the checkpoint so inference
// applies the exact same transform.
type MinMaxScaler struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FitScaler computes min/max over the full series.
func FitScaler(values []float64) (*MinMaxScaler, error) {
	if len(values) == 0 {
		return nil, ErrEmptySeries
	}
	s := &MinMaxScaler{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range values {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s, nil
}

// Transform maps a value into [0, 1]. A degenerate series (max == min)
// maps everything to 0.
func (s *MinMaxScaler) Transform(v float64) float64 {
	span := s.Max - s.Min
	if span == 0 {
		return 0
	}
	return (v - s.Min) / span
}

// TransformAll applies Transform to every value.
func (s *MinMaxScaler) TransformAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.Transform(v)
	}
	return out
}

// Inverse maps a scaled value back to magnitude units.
func (s *MinMaxScaler) Inverse(v float64) float64 {
	return v*(s.Max-s.Min) + s.Min
}
