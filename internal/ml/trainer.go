package ml

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"quakewatch/internal/data"
	"quakewatch/internal/dataset"
	"quakewatch/internal/quake"
	"quakewatch/internal/storage"
)

// MetricsInterface defines the metrics hooks the trainer and predictor
// report into. A nil implementation disables reporting.
type MetricsInterface interface {
	TrainEpochsInc()
	EpochLossSet(float64)
	ValidationRecallSet(float64)
	LearningRateSet(float64)
	CheckpointSavesInc()
	PredictionsInc()
	PredictionFailuresInc()
	PredictionLatencyObserve(float64)
	ConfidenceObserve(float64)
}

// Training failure taxonomy. Both short-circuit before any epoch runs.
var (
	ErrDataUnavailable  = errors.New("failed to load data")
	ErrInsufficientData = errors.New("insufficient data for windowing")
)

const (
	schedulerPatience = 5
	schedulerFactor   = 0.5
)

// TrainerConfig carries everything one training run needs.
type TrainerConfig struct {
	Model        Config
	BatchSize    int
	LearningRate float64
	WeightDecay  float64
	RecallTarget float64
	MaxEpochs    int
	TrainSplit   float64
	Seed         int64
}

// TrainResult is the structured outcome emitted by the train command.
// FinalMetrics may reflect an unconverged model when the epoch cap was
// hit before the recall target.
type TrainResult struct {
	TrainingCompleted bool        `json:"training_completed"`
	FinalEpoch        int         `json:"final_epoch"`
	FinalMetrics      EvalMetrics `json:"final_metrics"`
}

// EpochState is the explicit loop state threaded through epoch steps.
// Each step consumes the previous state and returns the next, keeping
// the termination rule a pure predicate over the state.
type EpochState struct {
	Epoch      int
	EpochLoss  float64
	LRDrops    int
	Metrics    EvalMetrics
	BestRecall float64
}

// done reports whether the two-sided stopping bound has been reached:
// recall at target, or the epoch safety cap.
func (s EpochState) done(recallTarget float64, maxEpochs int) bool {
	return s.Metrics.Recall >= recallTarget || s.Epoch >= maxEpochs
}

// Trainer orchestrates the epoch loop: weighted loss, Adam updates,
// plateau learning-rate decay, validation scoring, and best-recall
// checkpointing.
type Trainer struct {
	cfg       TrainerConfig
	model     *Classifier
	opt       *Adam
	scheduler *PlateauScheduler
	store     *storage.Store
	metrics   MetricsInterface
	rng       *rand.Rand
	scaler    *dataset.MinMaxScaler
}

// NewTrainer builds a trainer around a freshly initialized classifier.
func NewTrainer(cfg TrainerConfig, store *storage.Store, metrics MetricsInterface) *Trainer {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	model := NewClassifier(cfg.Model, seed)
	opt := NewAdam(len(model.Parameters()), cfg.LearningRate, cfg.WeightDecay)
	return &Trainer{
		cfg:       cfg,
		model:     model,
		opt:       opt,
		scheduler: NewPlateauScheduler(opt, schedulerPatience, schedulerFactor),
		store:     store,
		metrics:   metrics,
		rng:       rand.New(rand.NewSource(seed + 1)),
	}
}

// Run executes the full pipeline: load readings, window and label,
// split, then loop epochs until recall reaches the target or the epoch
// cap is hit. Returns the final metrics and epoch count.
func (t *Trainer) Run(ctx context.Context, source data.Source) (*TrainResult, error) {
	log.Info().Msg("loading earthquake readings")
	readings, err := source.Readings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, err)
	}

	examples, scaler, err := dataset.BuildWindows(readings, t.cfg.Model.SeqLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientData, err)
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("%w: %d readings for window length %d",
			ErrInsufficientData, len(readings), t.cfg.Model.SeqLength)
	}
	t.scaler = scaler

	train, val := dataset.Split(examples, t.cfg.TrainSplit)
	if len(train) == 0 || len(val) == 0 {
		return nil, fmt.Errorf("%w: split produced %d train / %d validation windows",
			ErrInsufficientData, len(train), len(val))
	}

	trainLabels := make([]int, len(train))
	for i, ex := range train {
		trainLabels[i] = ex.Label
	}
	weights := dataset.ClassWeights(trainLabels)

	log.Info().
		Int("train_windows", len(train)).
		Int("val_windows", len(val)).
		Int("seq_length", t.cfg.Model.SeqLength).
		Floats64("class_weights", weights[:]).
		Msg("training started")

	state := EpochState{}
	for !state.done(t.cfg.RecallTarget, t.cfg.MaxEpochs) {
		state, err = t.Step(state, train, val, weights)
		if err != nil {
			return nil, err
		}
	}

	log.Info().
		Int("final_epoch", state.Epoch).
		Float64("recall", state.Metrics.Recall).
		Float64("best_recall", state.BestRecall).
		Msg("training finished")

	return &TrainResult{
		TrainingCompleted: true,
		FinalEpoch:        state.Epoch,
		FinalMetrics:      state.Metrics,
	}, nil
}

// Step runs one epoch: a full pass over shuffled training windows in
// batches, then a validation sweep in inference mode. It returns the
// successor state and persists a checkpoint on strict recall improvement.
func (t *Trainer) Step(state EpochState, train, val []dataset.Example, weights [quake.NumBins]float64) (EpochState, error) {
	epochLoss := 0.0
	perm := t.rng.Perm(len(train))

	for start := 0; start < len(perm); start += t.cfg.BatchSize {
		end := start + t.cfg.BatchSize
		if end > len(perm) {
			end = len(perm)
		}

		t.model.ZeroGrad()
		loss := t.batchLoss(train, perm[start:end], weights)
		Backward(loss)
		t.opt.Step(t.model.Parameters())

		epochLoss += loss.Data
	}

	preds := make([]int, len(val))
	actuals := make([]int, len(val))
	for i, ex := range val {
		logits := t.model.Forward(ex.Window, false)
		scores := make([]float64, len(logits))
		for j, l := range logits {
			scores[j] = l.Data
		}
		preds[i] = Argmax(scores)
		actuals[i] = ex.Label
	}
	metrics := Evaluate(actuals, preds, quake.NumBins)

	next := EpochState{
		Epoch:      state.Epoch + 1,
		EpochLoss:  epochLoss,
		LRDrops:    state.LRDrops,
		Metrics:    metrics,
		BestRecall: state.BestRecall,
	}

	if t.scheduler.Step(epochLoss) {
		next.LRDrops++
		log.Info().Float64("lr", t.opt.LR()).Int("epoch", next.Epoch).Msg("learning rate reduced on plateau")
	}

	if metrics.Recall > state.BestRecall {
		next.BestRecall = metrics.Recall
		if err := t.saveCheckpoint(metrics.Recall); err != nil {
			return next, fmt.Errorf("save checkpoint: %w", err)
		}
		if t.metrics != nil {
			t.metrics.CheckpointSavesInc()
		}
	}

	if t.metrics != nil {
		t.metrics.TrainEpochsInc()
		t.metrics.EpochLossSet(epochLoss)
		t.metrics.ValidationRecallSet(metrics.Recall)
		t.metrics.LearningRateSet(t.opt.LR())
	}

	if next.Epoch%10 == 0 {
		log.Info().
			Int("epoch", next.Epoch).
			Float64("loss", epochLoss).
			Float64("accuracy", metrics.Accuracy).
			Float64("precision", metrics.Precision).
			Float64("recall", metrics.Recall).
			Float64("f1", metrics.F1).
			Msg("epoch complete")
	}

	return next, nil
}

// batchLoss builds the weighted cross-entropy over one batch: the
// per-sample negative log-likelihood scaled by the label's class
// weight, normalized by the total weight in the batch.
func (t *Trainer) batchLoss(train []dataset.Example, indices []int, weights [quake.NumBins]float64) *Value {
	total := V(0)
	denom := V(0)
	for _, idx := range indices {
		ex := train[idx]
		logits := t.model.Forward(ex.Window, true)
		probs := Softmax(logits)
		w := V(weights[ex.Label])
		total = Add(total, Mul(w, Neg(Log(probs[ex.Label]))))
		denom = Add(denom, w)
	}
	return Div(total, denom)
}

func (t *Trainer) saveCheckpoint(recall float64) error {
	return t.store.Save(storage.Checkpoint{
		Params: t.model.ParameterData(),
		Scaler: *t.scaler,
		Meta: storage.ModelMeta{
			SeqLength:  t.cfg.Model.SeqLength,
			HiddenSize: t.cfg.Model.HiddenSize,
			NumLayers:  t.cfg.Model.NumLayers,
			Dropout:    t.cfg.Model.Dropout,
			ParamCount: len(t.model.Parameters()),
			BestRecall: recall,
			SavedAt:    time.Now().UTC(),
		},
	})
}
