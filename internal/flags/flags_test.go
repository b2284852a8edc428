package flags

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backcountry-crews/internal/cache"
	"backcountry-crews/internal/store"
)

type mockLister struct {
	rows  []store.FlagRow
	err   error
	calls int
}

func (m *mockLister) ListFeatureFlags(_ context.Context) ([]store.FlagRow, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

func newTestFlags(lister Lister, clock clockwork.Clock) Service {
	return NewService(lister, cache.NewTTLCacheWithClock(clock), slog.Default())
}

func TestEnabled(t *testing.T) {
	lister := &mockLister{rows: []store.FlagRow{
		{Key: "beta_banner", Enabled: true},
		{Key: "legacy_view", Enabled: false},
	}}
	svc := newTestFlags(lister, clockwork.NewFakeClock())
	ctx := context.Background()

	assert.True(t, svc.Enabled(ctx, "beta_banner"))
	assert.False(t, svc.Enabled(ctx, "legacy_view"))
	assert.False(t, svc.Enabled(ctx, "no_such_flag"))
}

func TestEnabled_LoadFailureReadsAsOff(t *testing.T) {
	lister := &mockLister{err: errors.New("database is locked")}
	svc := newTestFlags(lister, clockwork.NewFakeClock())

	assert.False(t, svc.Enabled(context.Background(), "beta_banner"))
}

func TestEnabledActivities_OrderedByMetadata(t *testing.T) {
	lister := &mockLister{rows: []store.FlagRow{
		{Key: "activity.ice_climb", Enabled: true, MetadataJSON: `{"order":2}`},
		{Key: "activity.ski_tour", Enabled: true, MetadataJSON: `{"order":1}`},
		{Key: "activity.snowmobile", Enabled: true}, // no order, sorts last
		{Key: "activity.split_board", Enabled: false},
		{Key: "beta_banner", Enabled: true},
	}}
	svc := newTestFlags(lister, clockwork.NewFakeClock())

	got := svc.EnabledActivities(context.Background())
	assert.Equal(t, []string{"ski_tour", "ice_climb", "snowmobile"}, got)
}

func TestEnabledActivities_DefaultFallback(t *testing.T) {
	tests := []struct {
		name string
		rows []store.FlagRow
	}{
		{"no flags at all", nil},
		{"no enabled activities", []store.FlagRow{
			{Key: "activity.ski_tour", Enabled: false},
			{Key: "beta_banner", Enabled: true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestFlags(&mockLister{rows: tt.rows}, clockwork.NewFakeClock())
			got := svc.EnabledActivities(context.Background())
			assert.Equal(t, []string{DefaultActivity}, got)
		})
	}
}

func TestLoad_CachesWithinTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	lister := &mockLister{rows: []store.FlagRow{{Key: "beta_banner", Enabled: true}}}
	svc := newTestFlags(lister, clock)
	ctx := context.Background()

	svc.Enabled(ctx, "beta_banner")
	clock.Advance(30 * time.Second)
	svc.Enabled(ctx, "beta_banner")
	require.Equal(t, 1, lister.calls, "second read within the TTL must be served from cache")

	clock.Advance(45 * time.Second)
	svc.Enabled(ctx, "beta_banner")
	assert.Equal(t, 2, lister.calls, "expired cache triggers a refresh")
}

func TestLoad_StaleCacheSurvivesFailure(t *testing.T) {
	clock := clockwork.NewFakeClock()
	lister := &mockLister{rows: []store.FlagRow{{Key: "beta_banner", Enabled: true}}}
	svc := newTestFlags(lister, clock)
	ctx := context.Background()

	require.True(t, svc.Enabled(ctx, "beta_banner"))

	clock.Advance(2 * time.Minute)
	lister.err = errors.New("database is locked")

	assert.True(t, svc.Enabled(ctx, "beta_banner"), "stale flag set beats no flag set")
}

func TestInvalidate(t *testing.T) {
	lister := &mockLister{rows: []store.FlagRow{{Key: "beta_banner", Enabled: false}}}
	svc := newTestFlags(lister, clockwork.NewFakeClock())
	ctx := context.Background()

	require.False(t, svc.Enabled(ctx, "beta_banner"))

	lister.rows = []store.FlagRow{{Key: "beta_banner", Enabled: true}}
	svc.Invalidate()

	assert.True(t, svc.Enabled(ctx, "beta_banner"), "invalidate must force a re-read")
}

func TestBuildFlagMap_MalformedMetadata(t *testing.T) {
	flags := buildFlagMap([]store.FlagRow{
		{Key: "activity.ski_tour", Enabled: true, MetadataJSON: `{"order":`},
	}, slog.Default())

	f, ok := flags["activity.ski_tour"]
	require.True(t, ok)
	assert.True(t, f.Enabled, "malformed metadata must not drop the flag")
	assert.Nil(t, f.Metadata)
}
