// Package ml implements the severity classifier: a small scalar autograd
// engine, a multi-layer LSTM encoder with a narrowing feed-forward head,
// the imbalance-aware trainer, and the checkpoint-backed predictor.
package ml

import "math"

// Value is one node in the computation graph: a scalar, its gradient,
// and the local derivatives toward its children.
type Value struct {
	Data       float64
	Grad       float64
	Children   []*Value
	LocalGrads []float64
}

func V(x float64) *Value {
	return &Value{Data: x}
}

func Add(a, b *Value) *Value {
	return &Value{Data: a.Data + b.Data, Children: []*Value{a, b}, LocalGrads: []float64{1, 1}}
}

func Sub(a, b *Value) *Value {
	return Add(a, Neg(b))
}

func Mul(a, b *Value) *Value {
	return &Value{Data: a.Data * b.Data, Children: []*Value{a, b}, LocalGrads: []float64{b.Data, a.Data}}
}

func Pow(a *Value, p float64) *Value {
	return &Value{Data: math.Pow(a.Data, p), Children: []*Value{a}, LocalGrads: []float64{p * math.Pow(a.Data, p-1)}}
}

func Div(a, b *Value) *Value {
	return Mul(a, Pow(b, -1))
}

func Neg(a *Value) *Value {
	return Mul(a, V(-1))
}

func Log(a *Value) *Value {
	return &Value{Data: math.Log(a.Data), Children: []*Value{a}, LocalGrads: []float64{1 / a.Data}}
}

func Exp(a *Value) *Value {
	ed := math.Exp(a.Data)
	return &Value{Data: ed, Children: []*Value{a}, LocalGrads: []float64{ed}}
}

func ReLU(a *Value) *Value {
	if a.Data > 0 {
		return &Value{Data: a.Data, Children: []*Value{a}, LocalGrads: []float64{1}}
	}
	return &Value{Data: 0, Children: []*Value{a}, LocalGrads: []float64{0}}
}

func Sigmoid(a *Value) *Value {
	s := 1 / (1 + math.Exp(-a.Data))
	return &Value{Data: s, Children: []*Value{a}, LocalGrads: []float64{s * (1 - s)}}
}

func Tanh(a *Value) *Value {
	th := math.Tanh(a.Data)
	return &Value{Data: th, Children: []*Value{a}, LocalGrads: []float64{1 - th*th}}
}

// Backward accumulates gradients through the graph rooted at out,
// visiting nodes in reverse topological order.
func Backward(out *Value) {
	var topo []*Value
	visited := map[*Value]bool{}
	var build func(v *Value)
	build = func(v *Value) {
		if visited[v] {
			return
		}
		visited[v] = true
		for _, ch := range v.Children {
			build(ch)
		}
		topo = append(topo, v)
	}
	build(out)
	out.Grad = 1
	for i := len(topo) - 1; i >= 0; i-- {
		v := topo[i]
		for j, ch := range v.Children {
			ch.Grad += v.LocalGrads[j] * v.Grad
		}
	}
}

// Softmax returns a probability distribution over the logits, shifted by
// the max for numerical stability.
func Softmax(logits []*Value) []*Value {
	maxVal := logits[0].Data
	for i := 1; i < len(logits); i++ {
		if logits[i].Data > maxVal {
			maxVal = logits[i].Data
		}
	}
	exps := make([]*Value, len(logits))
	total := V(0)
	for i, l := range logits {
		e := Exp(Sub(l, V(maxVal)))
		exps[i] = e
		total = Add(total, e)
	}
	probs := make([]*Value, len(logits))
	for i := range exps {
		probs[i] = Div(exps[i], total)
	}
	return probs
}

// SoftmaxData is the plain-float softmax used at inference time, where
// no gradient graph is needed.
func SoftmaxData(logits []float64) []float64 {
	maxVal := logits[0]
	for _, l := range logits[1:] {
		if l > maxVal {
			maxVal = l
		}
	}
	probs := make([]float64, len(logits))
	var total float64
	for i, l := range logits {
		probs[i] = math.Exp(l - maxVal)
		total += probs[i]
	}
	for i := range probs {
		probs[i] /= total
	}
	return probs
}

// Argmax returns the index of the largest element.
func Argmax(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}
