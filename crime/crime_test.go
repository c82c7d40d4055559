package crime

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-compare/utils"
)

const feed = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": 1,
     "geometry": {"type": "Point", "coordinates": [-75.6972, 45.4215]},
     "properties": {"reported_year": 2023, "offense_code": "Theft"}},
    {"type": "Feature", "id": 2,
     "geometry": {"type": "Point", "coordinates": [-75.6980, 45.4220]},
     "properties": {"Year": "2023", "CrimeType": "Mischief"}},
    {"type": "Feature", "id": 3,
     "geometry": {"type": "Point", "coordinates": [-75.9000, 45.3000]},
     "properties": {"reported_year": 2022}},
    {"type": "Feature", "id": 4, "geometry": null,
     "properties": {"reported_year": 2023, "offense_code": "Fraud"}}
  ]
}`

func TestDecode(t *testing.T) {
	incidents, err := Decode([]byte(feed))
	require.NoError(t, err)
	require.Len(t, incidents, 4)

	assert.True(t, incidents[0].Point)
	assert.InDelta(t, 45.4215, incidents[0].Lat, 1e-9)
	assert.InDelta(t, -75.6972, incidents[0].Lon, 1e-9)
	assert.Equal(t, "Theft", incidents[0].Properties["offense_code"])

	assert.False(t, incidents[3].Point, "null geometry keeps the incident without a point")
}

func TestDecodeRejectsNonCollection(t *testing.T) {
	_, err := Decode([]byte(`{"type": "Feature", "properties": {}}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestCountByYear(t *testing.T) {
	incidents, err := Decode([]byte(feed))
	require.NoError(t, err)

	assert.Equal(t, 3, CountByYear(incidents, 2023))
	assert.Equal(t, 1, CountByYear(incidents, 2022))
	assert.Equal(t, 0, CountByYear(incidents, 1999))
}

func TestHaversine(t *testing.T) {
	assert.InDelta(t, 0, Haversine(45.42, -75.69, 45.42, -75.69), 1e-6)
	// one degree of latitude is roughly 111.2 km
	assert.InDelta(t, 111195, Haversine(45, -75, 46, -75), 50)
}

func TestCrimesNearAndStats(t *testing.T) {
	incidents, err := Decode([]byte(feed))
	require.NoError(t, err)

	near := CrimesNear(incidents, 45.4215, -75.6972, 1)
	require.Len(t, near, 2)

	stats := StatsByArea(incidents, 45.4215, -75.6972, 1)
	assert.Equal(t, 2, stats.TotalCrimes)
	assert.Equal(t, map[string]int{"Theft": 1, "Mischief": 1}, stats.CrimeTypes)
	// 2 incidents over pi * 1km^2 * 2000 residents, per 1000
	assert.InDelta(t, 0.3183, stats.CrimeRate, 1e-4)

	far := StatsByArea(incidents, 44.0, -79.0, 1)
	assert.Zero(t, far.TotalCrimes)
	assert.Empty(t, far.CrimeTypes)
}

func TestStatsUnknownType(t *testing.T) {
	incidents := []Incident{{Lat: 45, Lon: -75, Point: true, Properties: map[string]any{}}}
	stats := StatsByArea(incidents, 45, -75, 0.5)
	assert.Equal(t, map[string]int{"Unknown": 1}, stats.CrimeTypes)
}

func TestTable(t *testing.T) {
	incidents, err := Decode([]byte(feed))
	require.NoError(t, err)

	table := Table(incidents)
	assert.Equal(t, []string{"CrimeType", "Year", "offense_code", "reported_year", "latitude", "longitude"}, table.Columns)
	require.Equal(t, 4, table.Len())
	assert.Equal(t, "2023", table.Rows[0].Field("reported_year"))
	assert.Equal(t, "45.4215", table.Rows[0].Field("latitude"))
	assert.Equal(t, "", table.Rows[3].Field("latitude"))
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = io.WriteString(w, feed)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 5*time.Second, utils.NewNopLogger())
	incidents, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, incidents, 4)
}

func TestClientFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 5*time.Second, utils.NewNopLogger())
	_, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

type countingFetcher struct {
	calls int32
	fail  bool
}

func (f *countingFetcher) Fetch(context.Context) ([]Incident, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if f.fail {
		return nil, errors.New("feed down")
	}
	return make([]Incident, n), nil
}

func TestCacheReusesUntilForced(t *testing.T) {
	f := &countingFetcher{}
	c := NewCache(f)
	ctx := context.Background()

	first, err := c.Incidents(ctx, false)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	again, err := c.Incidents(ctx, false)
	require.NoError(t, err)
	assert.Len(t, again, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.calls))
	assert.False(t, c.FetchedAt().IsZero())

	refreshed, err := c.Incidents(ctx, true)
	require.NoError(t, err)
	assert.Len(t, refreshed, 2)
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	f := &countingFetcher{fail: true}
	c := NewCache(f)

	_, err := c.Incidents(context.Background(), false)
	require.Error(t, err)
	assert.True(t, c.FetchedAt().IsZero())

	f.fail = false
	incidents, err := c.Incidents(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, incidents, 2)
}
