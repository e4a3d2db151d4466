package ml

import "math"

// Adam implements the Adam update with L2 weight decay folded into the
// gradient, matching the usual decoupled-from-loss formulation.
type Adam struct {
	lr          float64
	beta1       float64
	beta2       float64
	eps         float64
	weightDecay float64
	m           []float64
	v           []float64
	t           int
}

func NewAdam(paramCount int, lr, weightDecay float64) *Adam {
	return &Adam{
		lr:          lr,
		beta1:       0.9,
		beta2:       0.999,
		eps:         1e-8,
		weightDecay: weightDecay,
		m:           make([]float64, paramCount),
		v:           make([]float64, paramCount),
	}
}

// LR returns the current learning rate.
func (a *Adam) LR() float64 { return a.lr }

// SetLR replaces the learning rate; used by the plateau scheduler.
func (a *Adam) SetLR(lr float64) { a.lr = lr }

// Step applies one update to every parameter from its accumulated
// gradient. Callers zero gradients afterwards.
func (a *Adam) Step(params []*Value) {
	a.t++
	bc1 := 1 - math.Pow(a.beta1, float64(a.t))
	bc2 := 1 - math.Pow(a.beta2, float64(a.t))

	for i, p := range params {
		g := p.Grad + a.weightDecay*p.Data
		a.m[i] = a.beta1*a.m[i] + (1-a.beta1)*g
		a.v[i] = a.beta2*a.v[i] + (1-a.beta2)*g*g
		mHat := a.m[i] / bc1
		vHat := a.v[i] / bc2
		p.Data -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
	}
}

// PlateauScheduler halves (by factor) the optimizer's learning rate when
// the tracked quantity fails to improve for patience consecutive steps.
type PlateauScheduler struct {
	opt      *Adam
	patience int
	factor   float64
	best     float64
	bad      int
	started  bool
}

func NewPlateauScheduler(opt *Adam, patience int, factor float64) *PlateauScheduler {
	return &PlateauScheduler{opt: opt, patience: patience, factor: factor}
}

// Step feeds one epoch's accumulated loss. Returns true when the
// learning rate was reduced.
func (s *PlateauScheduler) Step(loss float64) bool {
	if !s.started || loss < s.best {
		s.best = loss
		s.bad = 0
		s.started = true
		return false
	}
	s.bad++
	if s.bad > s.patience {
		s.opt.SetLR(s.opt.LR() * s.factor)
		s.bad = 0
		return true
	}
	return false
}
