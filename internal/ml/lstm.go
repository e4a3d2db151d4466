package ml

import (
	"fmt"
	"math"
	"math/rand"

	"quakewatch/internal/quake"
)

// Config fixes the classifier topology. It is persisted with the
// checkpoint so a loaded parameter blob is only ever applied to the
// architecture that produced it.
type Config struct {
	SeqLength  int     `json:"seqLength"`
	HiddenSize int     `json:"hiddenSize"`
	NumLayers  int     `json:"numLayers"`
	Dropout    float64 `json:"dropout"`
}

const (
	fc1Size = 64
	fc2Size = 32
)

// lstmLayer holds one recurrent layer's gate weights. Each gate weight
// matrix maps the concatenated [input, hidden] vector to hidden units.
type lstmLayer struct {
	wi, wf, wg, wo [][]*Value
	bi, bf, bg, bo []*Value
}

type dense struct {
	w [][]*Value
	b []*Value
}

// Classifier is the sequence encoder plus narrowing classification
// head: NumLayers stacked LSTM layers over scalar inputs, final hidden
// state through hidden -> 64 -> 32 -> 5 with ReLU and dropout between
// layers. Forward returns raw logits; callers apply softmax.
type Classifier struct {
	cfg    Config
	layers []*lstmLayer
	fc1    dense
	fc2    dense
	fc3    dense
	params []*Value
	rng    *rand.Rand
}

// NewClassifier builds a freshly initialized classifier. The seed fixes
// both weight init and dropout masks; pass 0 for a time-based seed via
// rand.Int63 upstream if determinism is not needed.
func NewClassifier(cfg Config, seed int64) *Classifier {
	rng := rand.New(rand.NewSource(seed))
	c := &Classifier{cfg: cfg, rng: rng}

	inputSize := 1
	for l := 0; l < cfg.NumLayers; l++ {
		in := inputSize + cfg.HiddenSize
		layer := &lstmLayer{
			wi: c.matrix(cfg.HiddenSize, in),
			wf: c.matrix(cfg.HiddenSize, in),
			wg: c.matrix(cfg.HiddenSize, in),
			wo: c.matrix(cfg.HiddenSize, in),
			bi: c.vector(cfg.HiddenSize),
			bf: c.vector(cfg.HiddenSize),
			bg: c.vector(cfg.HiddenSize),
			bo: c.vector(cfg.HiddenSize),
		}
		c.layers = append(c.layers, layer)
		inputSize = cfg.HiddenSize
	}

	c.fc1 = dense{w: c.matrix(fc1Size, cfg.HiddenSize), b: c.vector(fc1Size)}
	c.fc2 = dense{w: c.matrix(fc2Size, fc1Size), b: c.vector(fc2Size)}
	c.fc3 = dense{w: c.matrix(quake.NumBins, fc2Size), b: c.vector(quake.NumBins)}

	c.params = c.collectParams()
	return c
}

func (c *Classifier) matrix(nout, nin int) [][]*Value {
	std := 1 / math.Sqrt(float64(nin))
	m := make([][]*Value, nout)
	for o := 0; o < nout; o++ {
		row := make([]*Value, nin)
		for i := 0; i < nin; i++ {
			row[i] = V(c.rng.NormFloat64() * std)
		}
		m[o] = row
	}
	return m
}

func (c *Classifier) vector(n int) []*Value {
	v := make([]*Value, n)
	for i := range v {
		v[i] = V(0)
	}
	return v
}

func (c *Classifier) collectParams() []*Value {
	var out []*Value
	appendMatrix := func(m [][]*Value) {
		for _, row := range m {
			out = append(out, row...)
		}
	}
	for _, l := range c.layers {
		appendMatrix(l.wi)
		appendMatrix(l.wf)
		appendMatrix(l.wg)
		appendMatrix(l.wo)
		out = append(out, l.bi...)
		out = append(out, l.bf...)
		out = append(out, l.bg...)
		out = append(out, l.bo...)
	}
	for _, d := range []dense{c.fc1, c.fc2, c.fc3} {
		appendMatrix(d.w)
		out = append(out, d.b...)
	}
	return out
}

// Forward runs one window through the network and returns the 5-way
// logit vector. train enables dropout; inference passes false.
func (c *Classifier) Forward(window []float64, train bool) []*Value {
	hidden := c.cfg.HiddenSize

	h := make([][]*Value, len(c.layers))
	cell := make([][]*Value, len(c.layers))
	for l := range c.layers {
		h[l] = c.zeros(hidden)
		cell[l] = c.zeros(hidden)
	}

	for t := 0; t < len(window); t++ {
		x := []*Value{V(window[t])}
		for l, layer := range c.layers {
			if l > 0 && train {
				x = c.dropoutVec(x)
			}
			xh := make([]*Value, 0, len(x)+hidden)
			xh = append(xh, x...)
			xh = append(xh, h[l]...)

			in := gate(layer.wi, layer.bi, xh, Sigmoid)
			fg := gate(layer.wf, layer.bf, xh, Sigmoid)
			g := gate(layer.wg, layer.bg, xh, Tanh)
			o := gate(layer.wo, layer.bo, xh, Sigmoid)

			for u := 0; u < hidden; u++ {
				cell[l][u] = Add(Mul(fg[u], cell[l][u]), Mul(in[u], g[u]))
				h[l][u] = Mul(o[u], Tanh(cell[l][u]))
			}
			x = h[l]
		}
	}

	// Only the final hidden state of the top layer feeds the head.
	out := linear(h[len(h)-1], c.fc1.w, c.fc1.b)
	out = reluVec(out)
	if train {
		out = c.dropoutVec(out)
	}
	out = linear(out, c.fc2.w, c.fc2.b)
	out = reluVec(out)
	return linear(out, c.fc3.w, c.fc3.b)
}

func (c *Classifier) zeros(n int) []*Value {
	v := make([]*Value, n)
	for i := range v {
		v[i] = V(0)
	}
	return v
}

// dropoutVec applies inverted dropout: surviving units are scaled by
// 1/(1-p) so inference needs no rescaling.
func (c *Classifier) dropoutVec(xs []*Value) []*Value {
	p := c.cfg.Dropout
	if p <= 0 {
		return xs
	}
	out := make([]*Value, len(xs))
	for i, x := range xs {
		if c.rng.Float64() < p {
			out[i] = Mul(x, V(0))
		} else {
			out[i] = Mul(x, V(1/(1-p)))
		}
	}
	return out
}

func gate(w [][]*Value, b []*Value, xh []*Value, act func(*Value) *Value) []*Value {
	out := make([]*Value, len(w))
	for o, row := range w {
		s := b[o]
		for i := range xh {
			s = Add(s, Mul(row[i], xh[i]))
		}
		out[o] = act(s)
	}
	return out
}

func linear(x []*Value, w [][]*Value, b []*Value) []*Value {
	out := make([]*Value, len(w))
	for o, row := range w {
		s := b[o]
		for i := range x {
			s = Add(s, Mul(row[i], x[i]))
		}
		out[o] = s
	}
	return out
}

func reluVec(xs []*Value) []*Value {
	out := make([]*Value, len(xs))
	for i, x := range xs {
		out[i] = ReLU(x)
	}
	return out
}

// Parameters returns the flattened learnable parameters.
func (c *Classifier) Parameters() []*Value {
	return c.params
}

// ZeroGrad clears accumulated gradients before the next batch.
func (c *Classifier) ZeroGrad() {
	for _, p := range c.params {
		p.Grad = 0
	}
}

// ParameterData exports the current parameter values for checkpointing.
func (c *Classifier) ParameterData() []float64 {
	out := make([]float64, len(c.params))
	for i, p := range c.params {
		out[i] = p.Data
	}
	return out
}

// SetParameterData restores parameters from a checkpoint blob.
func (c *Classifier) SetParameterData(data []float64) error {
	if len(data) != len(c.params) {
		return fmt.Errorf("parameter count mismatch: checkpoint has %d, model expects %d", len(data), len(c.params))
	}
	for i, v := range data {
		c.params[i].Data = v
	}
	return nil
}
