package data

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"quakewatch/internal/quake"
)

// Synthetic generates a stand-in catalog: hourly readings with
// magnitudes drawn from N(5.0, 1.5), non-positive draws filtered out.
// It exists because the production catalog is an external collaborator;
// the generator keeps the training pipeline runnable without it.
type Synthetic struct {
	count int
	seed  int64
	start time.Time
}

// NewSynthetic creates a generator of count readings. A zero seed is
// replaced with the current time so repeated runs differ; tests pass an
// explicit seed for determinism.
func NewSynthetic(count int, seed int64) *Synthetic {
	if count <= 0 {
		count = 1
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Synthetic{
		count: count,
		seed:  seed,
		start: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

const (
	magMean   = 5.0
	magStddev = 1.5
)

// Readings returns the generated catalog sorted by timestamp.
func (s *Synthetic) Readings(ctx context.Context) ([]quake.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(s.seed))
	readings := make([]quake.Reading, 0, s.count)
	for i := 0; i < s.count; i++ {
		m := rng.NormFloat64()*magStddev + magMean
		if m <= 0 {
			continue
		}
		readings = append(readings, quake.Reading{
			Magnitude: m,
			Ts:        s.start.Add(time.Duration(i) * time.Hour),
			Lat:       rng.Float64()*180 - 90,
			Lon:       rng.Float64()*360 - 180,
		})
	}

	if len(readings) == 0 {
		return nil, ErrNoData
	}

	log.Debug().Int("count", len(readings)).Int64("seed", s.seed).Msg("synthetic catalog generated")
	return readings, nil
}
