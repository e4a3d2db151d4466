// Package data provides the upstream reading sources for training:
// a synthetic generator mirroring the historical catalog's magnitude
// distribution, and a USGS FDSN event catalog client.
package data

import (
	"context"
	"errors"

	"quakewatch/internal/quake"
)

// ErrNoData is returned when a source yields no usable readings.
var ErrNoData = errors.New("data source returned no readings")

// Source supplies a time-ordered collection of positive magnitude
// readings. Implementations must return readings sorted by timestamp
// ascending with non-positive magnitudes filtered out.
type Source interface {
	Readings(ctx context.Context) ([]quake.Reading, error)
}
