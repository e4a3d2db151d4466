package data

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogFixture = `{
	"features": [
		{"properties": {"mag": 5.2, "time": 1700000600000}, "geometry": {"coordinates": [142.3, 38.1, 30.0]}},
		{"properties": {"mag": 4.1, "time": 1700000000000}, "geometry": {"coordinates": [-120.5, 36.7, 8.2]}},
		{"properties": {"mag": null, "time": 1700000300000}, "geometry": {"coordinates": [0, 0, 0]}},
		{"properties": {"mag": -0.4, "time": 1700000400000}, "geometry": {"coordinates": [10.1, 45.2, 5.0]}}
	]
}`

func TestUSGSClient_Readings(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, fdsnQueryPath, r.URL.Path)
		assert.Equal(t, "geojson", r.URL.Query().Get("format"))
		assert.Equal(t, "time-asc", r.URL.Query().Get("orderby"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(catalogFixture))
	}))
	defer srv.Close()

	c := NewUSGSClient(srv.URL, "", "", 5*time.Second)
	readings, err := c.Readings(context.Background())
	require.NoError(t, err)

	// Null and negative magnitudes are dropped.
	require.Len(t, readings, 2)
	// Sorted ascending even though the fixture is out of order.
	assert.Equal(t, 4.1, readings[0].Magnitude)
	assert.Equal(t, 5.2, readings[1].Magnitude)
	assert.Equal(t, 36.7, readings[0].Lat)
	assert.Equal(t, -120.5, readings[0].Lon)
}

func TestUSGSClient_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewUSGSClient(srv.URL, "", "", 5*time.Second)
	_, err := c.Readings(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestUSGSClient_EmptyCatalog(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features": []}`))
	}))
	defer srv.Close()

	c := NewUSGSClient(srv.URL, "", "", 5*time.Second)
	_, err := c.Readings(context.Background())
	require.ErrorIs(t, err, ErrNoData)
}

func TestUSGSClient_TimeRangeParams(t *testing.T) {
	t.Parallel()

	var gotStart, gotEnd string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("starttime")
		gotEnd = r.URL.Query().Get("endtime")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(catalogFixture))
	}))
	defer srv.Close()

	c := NewUSGSClient(srv.URL, "2020-01-01", "2024-01-01", 5*time.Second)
	_, err := c.Readings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2020-01-01", gotStart)
	assert.Equal(t, "2024-01-01", gotEnd)
}
