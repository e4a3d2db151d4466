package data

import (
	"context"
	"testing"
)

func TestSynthetic_Readings(t *testing.T) {
	t.Parallel()

	s := NewSynthetic(1000, 42)
	readings, err := s.Readings(context.Background())
	if err != nil {
		t.Fatalf("Readings failed: %v", err)
	}
	if len(readings) == 0 {
		t.Fatal("Expected readings, got none")
	}

	for i, r := range readings {
		if r.Magnitude <= 0 {
			t.Errorf("Reading %d has non-positive magnitude %v", i, r.Magnitude)
		}
		if i > 0 && r.Ts.Before(readings[i-1].Ts) {
			t.Errorf("Reading %d out of time order", i)
		}
	}
}

func TestSynthetic_Deterministic(t *testing.T) {
	t.Parallel()

	a, err := NewSynthetic(200, 7).Readings(context.Background())
	if err != nil {
		t.Fatalf("Readings failed: %v", err)
	}
	b, err := NewSynthetic(200, 7).Readings(context.Background())
	if err != nil {
		t.Fatalf("Readings failed: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("Same seed produced different counts: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Magnitude != b[i].Magnitude {
			t.Fatalf("Same seed diverged at reading %d: %v vs %v", i, a[i].Magnitude, b[i].Magnitude)
		}
	}
}

func TestSynthetic_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewSynthetic(100, 1).Readings(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
