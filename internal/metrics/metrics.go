// Package metrics provides Prometheus metrics collection for the
// earthquake severity classifier. It defines the training and
// prediction metrics exposed on the metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the classifier.
type Metrics struct {
	// Training metrics
	TrainEpochs      prometheus.Counter // Total number of training epochs completed
	EpochLoss        prometheus.Gauge   // Summed weighted cross-entropy of the last epoch
	ValidationRecall prometheus.Gauge   // Weighted recall on the validation split
	LearningRate     prometheus.Gauge   // Current optimizer learning rate
	CheckpointSaves  prometheus.Counter // Total number of best-recall checkpoints written

	// Prediction metrics
	Predictions        prometheus.Counter   // Total number of risk reports produced
	PredictionFailures prometheus.Counter   // Total number of failed prediction requests
	PredictionLatency  prometheus.Histogram // End-to-end prediction latency in seconds
	Confidence         prometheus.Histogram // Distribution of winning-bin confidence scores
}

// New creates and registers all Prometheus metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
// This allows for isolated metric collection in tests without affecting
// the global Prometheus registry.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		TrainEpochs: factory.NewCounter(prometheus.CounterOpts{
			Name: "train_epochs_total",
			Help: "Total number of training epochs completed",
		}),
		EpochLoss: factory.NewGauge(prometheus.GaugeOpts{
			Name: "train_epoch_loss",
			Help: "Summed weighted cross-entropy loss of the last epoch",
		}),
		ValidationRecall: factory.NewGauge(prometheus.GaugeOpts{
			Name: "validation_recall",
			Help: "Support-weighted recall on the validation split",
		}),
		LearningRate: factory.NewGauge(prometheus.GaugeOpts{
			Name: "learning_rate",
			Help: "Current optimizer learning rate",
		}),
		CheckpointSaves: factory.NewCounter(prometheus.CounterOpts{
			Name: "checkpoint_saves_total",
			Help: "Total number of best-recall checkpoints written",
		}),
		Predictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of risk reports produced",
		}),
		PredictionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of failed prediction requests",
		}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "End-to-end prediction latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		Confidence: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_confidence",
			Help:    "Distribution of winning-bin confidence scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}
}
