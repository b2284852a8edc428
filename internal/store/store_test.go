package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "forecasts.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleForecast(id, zoneID, validDate string) ForecastRow {
	return ForecastRow{
		ID:                   id,
		ZoneID:               zoneID,
		IssueDate:            "2025-01-14",
		ValidDate:            validDate,
		DangerAlpine:         3,
		DangerTreeline:       3,
		DangerBelowTreeline:  2,
		TravelAdvice:         "Avoid wind-loaded slopes above treeline.",
		KeyMessage:           "Wind slabs remain reactive.",
		ForecastURL:          "https://cbavalanchecenter.org/forecasts/northwest",
		RecentAvalancheCount: 2,
		Problems: []ProblemRow{
			{ID: id + "-p0", ProblemType: "wind_slab", RoseJSON: `{"N":{"alpine":true}}`, Likelihood: "likely", Size: "D2"},
			{ID: id + "-p1", ProblemType: "persistent_slab", Likelihood: "possible"},
		},
	}
}

func TestStore_ForecastRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := sampleForecast("fc-1", "northwest", "2025-01-15")
	require.NoError(t, s.UpsertForecast(ctx, want))

	got, err := s.ListForecasts(ctx, "northwest", 7)
	require.NoError(t, err)
	require.Len(t, got, 1)

	f := got[0]
	assert.Equal(t, want.ID, f.ID)
	assert.Equal(t, want.ZoneID, f.ZoneID)
	assert.Equal(t, want.ValidDate, f.ValidDate)
	assert.Equal(t, want.DangerAlpine, f.DangerAlpine)
	assert.Equal(t, want.TravelAdvice, f.TravelAdvice)
	assert.Equal(t, want.RecentAvalancheCount, f.RecentAvalancheCount)

	require.Len(t, f.Problems, 2)
	assert.Equal(t, "wind_slab", f.Problems[0].ProblemType, "stored position order must hold")
	assert.Equal(t, `{"N":{"alpine":true}}`, f.Problems[0].RoseJSON)
	assert.Equal(t, "persistent_slab", f.Problems[1].ProblemType)
	assert.Empty(t, f.Problems[1].RoseJSON)
}

func TestStore_UpsertReplacesProblems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	f := sampleForecast("fc-1", "northwest", "2025-01-15")
	require.NoError(t, s.UpsertForecast(ctx, f))

	f.DangerAlpine = 4
	f.Problems = []ProblemRow{
		{ID: "fc-1-p0", ProblemType: "storm_slab"},
	}
	require.NoError(t, s.UpsertForecast(ctx, f))

	got, err := s.ListForecasts(ctx, "northwest", 7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].DangerAlpine)
	require.Len(t, got[0].Problems, 1, "rewrite must replace, not accumulate, problem rows")
	assert.Equal(t, "storm_slab", got[0].Problems[0].ProblemType)
}

func TestStore_ListForecastsFiltersAndOrders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertForecast(ctx, sampleForecast("fc-nw-14", "northwest", "2025-01-14")))
	require.NoError(t, s.UpsertForecast(ctx, sampleForecast("fc-nw-15", "northwest", "2025-01-15")))
	require.NoError(t, s.UpsertForecast(ctx, sampleForecast("fc-se-15", "southeast", "2025-01-15")))

	nw, err := s.ListForecasts(ctx, "northwest", 7)
	require.NoError(t, err)
	require.Len(t, nw, 2)
	assert.Equal(t, "fc-nw-15", nw[0].ID, "newest valid date first")
	assert.Equal(t, "fc-nw-14", nw[1].ID)

	both, err := s.ListForecasts(ctx, "", 7)
	require.NoError(t, err)
	assert.Len(t, both, 3)

	capped, err := s.ListForecasts(ctx, "northwest", 1)
	require.NoError(t, err)
	require.Len(t, capped, 1)
	assert.Equal(t, "fc-nw-15", capped[0].ID)
}

func TestStore_WeatherRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	w := WeatherRow{
		ZoneID:        "southeast",
		ForecastDate:  "2025-01-15",
		Temperature:   "12F",
		WindDirection: "NW",
		WindSpeed:     "25mph",
		Snowfall24hr:  "14in",
	}
	require.NoError(t, s.UpsertWeather(ctx, w))

	// Second upsert for the same zone/date updates in place.
	w.Temperature = "18F"
	require.NoError(t, s.UpsertWeather(ctx, w))

	weather, err := s.ListWeather(ctx, "southeast", 7)
	require.NoError(t, err)
	require.Len(t, weather, 1)

	got, ok := weather[WeatherKey("southeast", "2025-01-15")]
	require.True(t, ok, "rows are keyed zone_date for the forecast join")
	assert.Equal(t, "18F", got.Temperature)
	assert.Equal(t, "14in", got.Snowfall24hr)
}

func TestStore_FeatureFlags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetFlag(ctx, FlagRow{
		Key:          "activity.ski_tour",
		Enabled:      true,
		MetadataJSON: `{"order":1}`,
		Description:  "Ski touring activity surface",
	}))
	require.NoError(t, s.SetFlag(ctx, FlagRow{Key: "activity.ice_climb", Enabled: false}))

	flags, err := s.ListFeatureFlags(ctx)
	require.NoError(t, err)
	require.Len(t, flags, 2)

	byKey := make(map[string]FlagRow, len(flags))
	for _, f := range flags {
		byKey[f.Key] = f
	}
	assert.True(t, byKey["activity.ski_tour"].Enabled)
	assert.Equal(t, `{"order":1}`, byKey["activity.ski_tour"].MetadataJSON)
	assert.False(t, byKey["activity.ice_climb"].Enabled)
}
