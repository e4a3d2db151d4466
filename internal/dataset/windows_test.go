package dataset

import (
	"math"
	"testing"
	"time"

	"quakewatch/internal/quake"
)

func readingsFrom(mags ...float64) []quake.Reading {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]quake.Reading, len(mags))
	for i, m := range mags {
		out[i] = quake.Reading{Magnitude: m, Ts: start.Add(time.Duration(i) * time.Hour)}
	}
	return out
}

func TestBuildWindows_Shape(t *testing.T) {
	t.Parallel()

	readings := readingsFrom(1, 2, 3, 4, 5, 6, 7, 8)
	examples, scaler, err := BuildWindows(readings, 3)
	if err != nil {
		t.Fatalf("BuildWindows failed: %v", err)
	}
	if scaler == nil {
		t.Fatal("Expected a fitted scaler")
	}

	// Exactly N-L pairs.
	if len(examples) != 5 {
		t.Fatalf("Expected 5 examples, got %d", len(examples))
	}
	for i, ex := range examples {
		if len(ex.Window) != 3 {
			t.Errorf("Example %d window length %d, want 3", i, len(ex.Window))
		}
	}

	// Window i covers readings [i, i+L); label comes from reading i+L.
	// Magnitudes 1..8 scale to (m-1)/7.
	if got := examples[0].Window[0]; math.Abs(got-0) > 1e-12 {
		t.Errorf("First window should start at scaled 0, got %v", got)
	}
	if got := examples[0].Window[2]; math.Abs(got-2.0/7.0) > 1e-12 {
		t.Errorf("Window[2] = %v, want %v", got, 2.0/7.0)
	}
	if examples[0].Label != quake.Bin(4) {
		t.Errorf("Label for first window should be bin of magnitude 4, got %d", examples[0].Label)
	}
	if examples[4].Label != quake.Bin(8) {
		t.Errorf("Label for last window should be bin of magnitude 8, got %d", examples[4].Label)
	}
}

func TestBuildWindows_SortsByTime(t *testing.T) {
	t.Parallel()

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	// Shuffled timestamps: chronological order is 2, 3, 5, 7.
	readings := []quake.Reading{
		{Magnitude: 5, Ts: start.Add(2 * time.Hour)},
		{Magnitude: 2, Ts: start},
		{Magnitude: 7, Ts: start.Add(3 * time.Hour)},
		{Magnitude: 3, Ts: start.Add(time.Hour)},
	}

	examples, _, err := BuildWindows(readings, 3)
	if err != nil {
		t.Fatalf("BuildWindows failed: %v", err)
	}
	if len(examples) != 1 {
		t.Fatalf("Expected 1 example, got %d", len(examples))
	}
	if examples[0].Label != quake.Bin(7) {
		t.Errorf("Label should come from the chronologically last reading, got bin %d", examples[0].Label)
	}
}

func TestBuildWindows_InsufficientData(t *testing.T) {
	t.Parallel()

	// N == L and N < L both yield zero windows, no error.
	for _, mags := range [][]float64{{1, 2, 3}, {1, 2}} {
		examples, scaler, err := BuildWindows(readingsFrom(mags...), 3)
		if err != nil {
			t.Fatalf("BuildWindows failed for %d readings: %v", len(mags), err)
		}
		if len(examples) != 0 {
			t.Errorf("Expected zero windows for %d readings, got %d", len(mags), len(examples))
		}
		if scaler == nil {
			t.Error("Scaler should still be fit on short series")
		}
	}
}

func TestBuildWindows_EmptySeries(t *testing.T) {
	t.Parallel()

	if _, _, err := BuildWindows(nil, 3); err == nil {
		t.Error("Expected error for empty series")
	}
}

func TestSplit_Chronological(t *testing.T) {
	t.Parallel()

	examples := make([]Example, 10)
	for i := range examples {
		examples[i].Label = i
	}

	train, val := Split(examples, 0.8)
	if len(train) != 8 || len(val) != 2 {
		t.Fatalf("Expected 8/2 split, got %d/%d", len(train), len(val))
	}
	if train[0].Label != 0 || val[0].Label != 8 {
		t.Error("Split must preserve chronological order")
	}
}

func TestScaler_RoundTrip(t *testing.T) {
	t.Parallel()

	s, err := FitScaler([]float64{2, 4, 6, 10})
	if err != nil {
		t.Fatalf("FitScaler failed: %v", err)
	}
	if s.Min != 2 || s.Max != 10 {
		t.Fatalf("Fit produced min=%v max=%v", s.Min, s.Max)
	}
	if got := s.Transform(2); got != 0 {
		t.Errorf("Transform(min) = %v, want 0", got)
	}
	if got := s.Transform(10); got != 1 {
		t.Errorf("Transform(max) = %v, want 1", got)
	}
	if got := s.Inverse(s.Transform(6)); math.Abs(got-6) > 1e-12 {
		t.Errorf("Inverse(Transform(6)) = %v", got)
	}
}

func TestScaler_DegenerateSeries(t *testing.T) {
	t.Parallel()

	s, err := FitScaler([]float64{5, 5, 5})
	if err != nil {
		t.Fatalf("FitScaler failed: %v", err)
	}
	if got := s.Transform(5); got != 0 {
		t.Errorf("Degenerate series should scale to 0, got %v", got)
	}
}
