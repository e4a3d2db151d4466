package ml

import (
	"math"
	"testing"
)

func TestEvaluate_PerfectPredictions(t *testing.T) {
	t.Parallel()

	actuals := []int{0, 1, 2, 3, 4, 0, 2}
	m := Evaluate(actuals, actuals, 5)

	if m.Accuracy != 1 || m.Precision != 1 || m.Recall != 1 || m.F1 != 1 {
		t.Errorf("Perfect predictions should score 1 everywhere: %+v", m)
	}
}

func TestEvaluate_AllWrong(t *testing.T) {
	t.Parallel()

	actuals := []int{0, 0, 0}
	preds := []int{1, 1, 1}
	m := Evaluate(actuals, preds, 5)

	if m.Accuracy != 0 || m.Recall != 0 {
		t.Errorf("All-wrong predictions should score 0: %+v", m)
	}
}

func TestEvaluate_WeightedByRealizedSupport(t *testing.T) {
	t.Parallel()

	// Class 0: 3 samples, 2 correct (recall 2/3).
	// Class 1: 1 sample, correct (recall 1).
	actuals := []int{0, 0, 0, 1}
	preds := []int{0, 0, 1, 1}
	m := Evaluate(actuals, preds, 5)

	wantRecall := 0.75*(2.0/3.0) + 0.25*1.0
	if math.Abs(m.Recall-wantRecall) > 1e-9 {
		t.Errorf("Recall = %v, want %v", m.Recall, wantRecall)
	}
	if math.Abs(m.Accuracy-0.75) > 1e-9 {
		t.Errorf("Accuracy = %v, want 0.75", m.Accuracy)
	}

	// Precision: class 0 predicted twice, both correct (1.0).
	// Class 1 predicted twice, one correct (0.5).
	wantPrecision := 0.75*1.0 + 0.25*0.5
	if math.Abs(m.Precision-wantPrecision) > 1e-9 {
		t.Errorf("Precision = %v, want %v", m.Precision, wantPrecision)
	}
}

func TestEvaluate_ZeroSupportContributesZero(t *testing.T) {
	t.Parallel()

	// Only classes 0 and 4 appear; bins 1-3 have zero support and must
	// not produce NaN or an error.
	actuals := []int{0, 4, 0, 4}
	preds := []int{0, 4, 4, 0}
	m := Evaluate(actuals, preds, 5)

	for name, v := range map[string]float64{
		"accuracy": m.Accuracy, "precision": m.Precision, "recall": m.Recall, "f1": m.F1,
	} {
		if math.IsNaN(v) {
			t.Errorf("%s is NaN with zero-support classes", name)
		}
	}
	if m.Accuracy != 0.5 {
		t.Errorf("Accuracy = %v, want 0.5", m.Accuracy)
	}
}

func TestEvaluate_Empty(t *testing.T) {
	t.Parallel()

	m := Evaluate(nil, nil, 5)
	if m != (EvalMetrics{}) {
		t.Errorf("Empty input should give zero metrics: %+v", m)
	}
}

func TestAdam_ConvergesOnQuadratic(t *testing.T) {
	t.Parallel()

	// Minimize (x-3)^2.
	x := V(10)
	opt := NewAdam(1, 0.1, 0)
	for i := 0; i < 500; i++ {
		x.Grad = 0
		loss := Pow(Sub(x, V(3)), 2)
		Backward(loss)
		opt.Step([]*Value{x})
	}
	if math.Abs(x.Data-3) > 0.05 {
		t.Errorf("Adam did not converge: x = %v, want 3", x.Data)
	}
}

func TestAdam_WeightDecayPullsTowardZero(t *testing.T) {
	t.Parallel()

	// No loss gradient at all: decay alone should shrink the weight.
	x := V(5)
	opt := NewAdam(1, 0.1, 0.1)
	for i := 0; i < 100; i++ {
		x.Grad = 0
		opt.Step([]*Value{x})
	}
	if math.Abs(x.Data) >= 5 {
		t.Errorf("Weight decay had no effect: x = %v", x.Data)
	}
}

func TestPlateauScheduler(t *testing.T) {
	t.Parallel()

	opt := NewAdam(1, 1.0, 0)
	s := NewPlateauScheduler(opt, 2, 0.5)

	// Improving losses never reduce.
	for _, loss := range []float64{10, 9, 8} {
		if s.Step(loss) {
			t.Errorf("Reduced on improving loss %v", loss)
		}
	}
	// Stalls within patience do not reduce.
	if s.Step(8) || s.Step(8) {
		t.Error("Reduced before patience exhausted")
	}
	// One more stall exceeds patience.
	if !s.Step(8) {
		t.Error("Expected reduction after patience exhausted")
	}
	if opt.LR() != 0.5 {
		t.Errorf("LR = %v, want 0.5", opt.LR())
	}
	// Counter resets after a reduction.
	if s.Step(8) {
		t.Error("Reduced immediately after a reduction")
	}
}
