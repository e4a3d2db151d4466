package metrics

// Wrapper adapts Metrics to the method-style hooks the trainer and
// predictor report into, keeping the ml package free of a Prometheus
// dependency.
type Wrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

func (w *Wrapper) TrainEpochsInc() { w.m.TrainEpochs.Inc() }

func (w *Wrapper) EpochLossSet(v float64) { w.m.EpochLoss.Set(v) }

func (w *Wrapper) ValidationRecallSet(v float64) { w.m.ValidationRecall.Set(v) }

func (w *Wrapper) LearningRateSet(v float64) { w.m.LearningRate.Set(v) }

func (w *Wrapper) CheckpointSavesInc() { w.m.CheckpointSaves.Inc() }

func (w *Wrapper) PredictionsInc() { w.m.Predictions.Inc() }

func (w *Wrapper) PredictionFailuresInc() { w.m.PredictionFailures.Inc() }

func (w *Wrapper) PredictionLatencyObserve(v float64) { w.m.PredictionLatency.Observe(v) }

func (w *Wrapper) ConfidenceObserve(v float64) { w.m.Confidence.Observe(v) }
