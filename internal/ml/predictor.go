package ml

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"quakewatch/internal/quake"
	"quakewatch/internal/storage"
)

// Report is the risk assessment returned for one window. The
// probability distribution always has five entries summing to 1.
type Report struct {
	MagnitudeBin            int        `json:"magnitudeBin"`
	Confidence              float64    `json:"confidence"`
	ProbabilityDistribution []float64  `json:"probabilityDistribution"`
	ExpectedMagnitude       float64    `json:"expectedMagnitude"`
	RiskLevel               string     `json:"riskLevel"`
	MagnitudeRange          [2]float64 `json:"magnitudeRange"`
}

// Predictor loads the best checkpoint fresh per invocation and runs a
// single inference-mode forward pass. Any load or inference failure
// surfaces as an error; no partial report is returned.
type Predictor struct {
	store   *storage.Store
	metrics MetricsInterface
}

func NewPredictor(store *storage.Store, metrics MetricsInterface) *Predictor {
	return &Predictor{store: store, metrics: metrics}
}

// Predict classifies one window of raw magnitude readings. The window
// must match the sequence length the checkpoint was trained with; the
// bundled scaler is applied before the forward pass.
func (p *Predictor) Predict(window []float64) (*Report, error) {
	start := time.Now()
	report, err := p.predict(window)

	if p.metrics != nil {
		p.metrics.PredictionLatencyObserve(time.Since(start).Seconds())
		if err != nil {
			p.metrics.PredictionFailuresInc()
		} else {
			p.metrics.PredictionsInc()
			p.metrics.ConfidenceObserve(report.Confidence)
		}
	}

	return report, err
}

func (p *Predictor) predict(window []float64) (*Report, error) {
	for i, v := range window {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("window value %d is not finite", i)
		}
	}

	ckpt, err := p.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	if len(window) != ckpt.Meta.SeqLength {
		return nil, fmt.Errorf("window length %d does not match trained sequence length %d",
			len(window), ckpt.Meta.SeqLength)
	}

	model := NewClassifier(Config{
		SeqLength:  ckpt.Meta.SeqLength,
		HiddenSize: ckpt.Meta.HiddenSize,
		NumLayers:  ckpt.Meta.NumLayers,
		Dropout:    ckpt.Meta.Dropout,
	}, 1)
	if err := model.SetParameterData(ckpt.Params); err != nil {
		return nil, fmt.Errorf("restore parameters: %w", err)
	}

	scaled := ckpt.Scaler.TransformAll(window)
	logits := model.Forward(scaled, false)
	scores := make([]float64, len(logits))
	for i, l := range logits {
		scores[i] = l.Data
	}
	probs := SoftmaxData(scores)
	bin := Argmax(probs)
	low, high := quake.BinRange(bin)

	log.Debug().
		Int("bin", bin).
		Float64("confidence", probs[bin]).
		Str("severity", quake.SeverityName(bin)).
		Msg("prediction complete")

	return &Report{
		MagnitudeBin:            bin,
		Confidence:              probs[bin],
		ProbabilityDistribution: probs,
		ExpectedMagnitude:       quake.ExpectedMagnitude(bin),
		RiskLevel:               quake.RiskLevel(bin),
		MagnitudeRange:          [2]float64{low, high},
	}, nil
}
