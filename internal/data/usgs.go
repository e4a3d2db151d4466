package data

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"quakewatch/internal/quake"
)

const (
	fdsnQueryPath = "/fdsnws/event/1/query"
	fdsnPageLimit = 20000
)

// USGSClient fetches magnitude readings from a USGS FDSN event service.
type USGSClient struct {
	base  string
	start string
	end   string
	rest  *resty.Client
}

// NewUSGSClient creates a catalog client. start and end are optional
// ISO8601 date strings forwarded to the FDSN starttime/endtime params.
func NewUSGSClient(base, start, end string, timeout time.Duration) *USGSClient {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(30 * time.Second) // default fallback
	}
	return &USGSClient{base: base, start: start, end: end, rest: r}
}

type fdsnResponse struct {
	Features []struct {
		Properties struct {
			Mag  *float64 `json:"mag"`
			Time int64    `json:"time"` // milliseconds since epoch
		} `json:"properties"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
		} `json:"geometry"`
	} `json:"features"`
}

// Readings queries the event service and returns positive-magnitude
// readings sorted by event time ascending.
func (c *USGSClient) Readings(ctx context.Context) ([]quake.Reading, error) {
	params := map[string]string{
		"format":       "geojson",
		"orderby":      "time-asc",
		"minmagnitude": "0",
		"limit":        fmt.Sprintf("%d", fdsnPageLimit),
	}
	if c.start != "" {
		params["starttime"] = c.start
	}
	if c.end != "" {
		params["endtime"] = c.end
	}

	var out fdsnResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&out).
		Get(c.base + fdsnQueryPath)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("catalog error: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	readings := make([]quake.Reading, 0, len(out.Features))
	for _, f := range out.Features {
		if f.Properties.Mag == nil || *f.Properties.Mag <= 0 {
			continue
		}
		r := quake.Reading{
			Magnitude: *f.Properties.Mag,
			Ts:        time.UnixMilli(f.Properties.Time).UTC(),
		}
		if len(f.Geometry.Coordinates) >= 2 {
			r.Lon = f.Geometry.Coordinates[0]
			r.Lat = f.Geometry.Coordinates[1]
		}
		readings = append(readings, r)
	}

	if len(readings) == 0 {
		return nil, ErrNoData
	}

	// orderby=time-asc is requested, but re-sort locally so the
	// windowing invariant never depends on server behavior.
	sort.Slice(readings, func(i, j int) bool { return readings[i].Ts.Before(readings[j].Ts) })

	log.Info().
		Int("count", len(readings)).
		Time("first", readings[0].Ts).
		Time("last", readings[len(readings)-1].Ts).
		Msg("catalog readings loaded")

	return readings, nil
}
