package ml

import (
	"math"
	"testing"
)

func TestBackward_SimpleChain(t *testing.T) {
	t.Parallel()

	// f = (a*b + c)^2, df/da = 2(ab+c)*b
	a := V(2)
	b := V(3)
	c := V(1)
	out := Pow(Add(Mul(a, b), c), 2)
	Backward(out)

	if out.Data != 49 {
		t.Fatalf("Forward value = %v, want 49", out.Data)
	}
	if got, want := a.Grad, 2.0*7*3; math.Abs(got-want) > 1e-9 {
		t.Errorf("da = %v, want %v", got, want)
	}
	if got, want := b.Grad, 2.0*7*2; math.Abs(got-want) > 1e-9 {
		t.Errorf("db = %v, want %v", got, want)
	}
	if got, want := c.Grad, 2.0*7.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("dc = %v, want %v", got, want)
	}
}

func TestBackward_SharedNode(t *testing.T) {
	t.Parallel()

	// f = x*x + x, df/dx = 2x + 1. Gradients must accumulate through
	// both uses of x.
	x := V(3)
	out := Add(Mul(x, x), x)
	Backward(out)

	if got, want := x.Grad, 7.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("dx = %v, want %v", got, want)
	}
}

func TestActivationGradients(t *testing.T) {
	t.Parallel()

	// Numeric gradient check for each unary activation.
	ops := map[string]func(*Value) *Value{
		"relu":    ReLU,
		"sigmoid": Sigmoid,
		"tanh":    Tanh,
		"exp":     Exp,
	}
	const h = 1e-6

	for name, op := range ops {
		for _, x0 := range []float64{-1.3, 0.4, 2.1} {
			x := V(x0)
			out := op(x)
			Backward(out)

			numeric := (op(V(x0 + h)).Data - op(V(x0 - h)).Data) / (2 * h)
			if math.Abs(x.Grad-numeric) > 1e-4 {
				t.Errorf("%s'(%v) = %v, numeric %v", name, x0, x.Grad, numeric)
			}
		}
	}
}

func TestLogGradient(t *testing.T) {
	t.Parallel()

	x := V(2.5)
	out := Log(x)
	Backward(out)
	if got, want := x.Grad, 1/2.5; math.Abs(got-want) > 1e-9 {
		t.Errorf("dlog = %v, want %v", got, want)
	}
}

func TestSoftmax_Distribution(t *testing.T) {
	t.Parallel()

	logits := []*Value{V(1), V(2), V(3), V(0.5), V(-1)}
	probs := Softmax(logits)

	sum := 0.0
	for _, p := range probs {
		if p.Data < 0 || p.Data > 1 {
			t.Errorf("Probability out of range: %v", p.Data)
		}
		sum += p.Data
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("Probabilities sum to %v, want 1", sum)
	}
	if Argmax([]float64{probs[0].Data, probs[1].Data, probs[2].Data, probs[3].Data, probs[4].Data}) != 2 {
		t.Error("Softmax should preserve the argmax")
	}
}

func TestSoftmax_LargeLogitsStable(t *testing.T) {
	t.Parallel()

	probs := SoftmaxData([]float64{1000, 1001, 999})
	sum := 0.0
	for _, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			t.Fatalf("Softmax overflowed: %v", probs)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("Probabilities sum to %v, want 1", sum)
	}
}

func TestSoftmaxData_MatchesGraphSoftmax(t *testing.T) {
	t.Parallel()

	logits := []float64{0.3, -1.2, 2.4, 0.0, 1.1}
	vals := make([]*Value, len(logits))
	for i, l := range logits {
		vals[i] = V(l)
	}
	graph := Softmax(vals)
	plain := SoftmaxData(logits)

	for i := range plain {
		if math.Abs(plain[i]-graph[i].Data) > 1e-12 {
			t.Errorf("Mismatch at %d: %v vs %v", i, plain[i], graph[i].Data)
		}
	}
}

func TestArgmax(t *testing.T) {
	t.Parallel()

	if got := Argmax([]float64{0.1, 0.7, 0.2}); got != 1 {
		t.Errorf("Argmax = %d, want 1", got)
	}
	if got := Argmax([]float64{-5, -2, -9}); got != 1 {
		t.Errorf("Argmax = %d, want 1", got)
	}
	// Ties keep the first index.
	if got := Argmax([]float64{0.5, 0.5}); got != 0 {
		t.Errorf("Argmax tie = %d, want 0", got)
	}
}
