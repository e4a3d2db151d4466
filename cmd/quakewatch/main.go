package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"quakewatch/internal/cfg"
	"quakewatch/internal/common"
	"quakewatch/internal/data"
	"quakewatch/internal/metrics"
	"quakewatch/internal/ml"
	"quakewatch/internal/storage"
)

// errorResult is the structured failure emitted on stdout. Exactly one
// JSON object is written per invocation, success or failure; logs go to
// stderr only.
type errorResult struct {
	Error string `json:"error"`
}

func main() {
	_ = godotenv.Load() // optional .env, absence is fine
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		emitError(fmt.Errorf("no command provided, expected train or predict"))
	}

	c, err := cfg.Load()
	if err != nil {
		emitError(fmt.Errorf("config load failed: %w", err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := os.MkdirAll(c.DataPath, 0o750); err != nil {
		emitError(fmt.Errorf("create data path: %w", err))
	}
	store, err := storage.New(c.DataPath)
	if err != nil {
		emitError(err)
	}
	defer store.Close()

	mw := startMetrics(ctx, c)

	switch os.Args[1] {
	case "train":
		runTrain(ctx, c, store, mw)
	case "predict":
		runPredict(c, store, mw)
	default:
		emitError(fmt.Errorf("unknown command %q, expected train or predict", os.Args[1]))
	}
}

// startMetrics registers collectors and, when a metrics port is
// configured, serves them alongside a health endpoint.
func startMetrics(ctx context.Context, c cfg.Settings) *metrics.Wrapper {
	m := metrics.New()
	if c.MetricsPort == 0 {
		return metrics.NewWrapper(m)
	}

	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		mux.Handle("/metrics", promhttp.Handler())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", c.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		go func() {
			<-ctx.Done()
			if err := server.Shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to shutdown metrics server")
			}
		}()

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	return metrics.NewWrapper(m)
}

// newSource picks the configured readings provider.
func newSource(c cfg.Settings) (data.Source, error) {
	switch c.DataSource {
	case common.SourceSynthetic:
		return data.NewSynthetic(c.SyntheticCount, c.SyntheticSeed), nil
	case common.SourceCatalog:
		return data.NewUSGSClient(c.CatalogURL, c.CatalogStart, c.CatalogEnd, c.RESTTimeout), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", c.DataSource)
	}
}

func runTrain(ctx context.Context, c cfg.Settings, store *storage.Store, mw *metrics.Wrapper) {
	source, err := newSource(c)
	if err != nil {
		emitError(err)
	}

	trainer := ml.NewTrainer(ml.TrainerConfig{
		Model: ml.Config{
			SeqLength:  c.SeqLength,
			HiddenSize: c.HiddenSize,
			NumLayers:  c.NumLayers,
			Dropout:    c.Dropout,
		},
		BatchSize:    c.BatchSize,
		LearningRate: c.LearningRate,
		WeightDecay:  c.WeightDecay,
		RecallTarget: c.RecallTarget,
		MaxEpochs:    c.MaxEpochs,
		TrainSplit:   c.TrainSplit,
		Seed:         c.SyntheticSeed,
	}, store, mw)

	result, err := trainer.Run(ctx, source)
	if err != nil {
		emitError(err)
	}
	emit(result)
}

func runPredict(c cfg.Settings, store *storage.Store, mw *metrics.Wrapper) {
	if len(os.Args) < 3 {
		emitError(fmt.Errorf("predict requires a JSON array of %d magnitudes", c.SeqLength))
	}

	var window []float64
	if err := json.Unmarshal([]byte(os.Args[2]), &window); err != nil {
		emitError(fmt.Errorf("parse window: %w", err))
	}

	report, err := ml.NewPredictor(store, mw).Predict(window)
	if err != nil {
		emitError(err)
	}
	emit(report)
}

func emit(v interface{}) {
	out, err := json.Marshal(v)
	if err != nil {
		emitError(fmt.Errorf("encode result: %w", err))
	}
	fmt.Println(string(out))
}

func emitError(err error) {
	log.Error().Err(err).Msg("command failed")
	out, _ := json.Marshal(errorResult{Error: err.Error()})
	fmt.Println(string(out))
	os.Exit(1)
}
