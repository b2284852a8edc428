// Package flags serves feature flags from the backing store through a short
// TTL cache, so per-request checks never hit the database directly.
package flags

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"time"

	"backcountry-crews/internal/cache"
	"backcountry-crews/internal/store"
)

const (
	cacheKey = "feature-flags"
	cacheTTL = time.Minute

	activityPrefix = "activity."
	// defaultOrder sorts activities without explicit metadata last.
	defaultOrder = 99
)

// DefaultActivity is served when no activity flag is enabled, so the activity
// surface never renders empty.
const DefaultActivity = "ski_tour"

// Flag is one feature flag with its parsed metadata.
type Flag struct {
	Key         string         `json:"key"`
	Enabled     bool           `json:"enabled"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Description string         `json:"description,omitempty"`
}

// Lister is the slice of the store the flag service needs.
type Lister interface {
	ListFeatureFlags(ctx context.Context) ([]store.FlagRow, error)
}

// Service answers feature flag queries.
type Service interface {
	Enabled(ctx context.Context, key string) bool
	EnabledActivities(ctx context.Context) []string
	Invalidate()
}

type flagService struct {
	lister Lister
	cache  *cache.TTLCache
	logger *slog.Logger
}

// NewService creates a flag service over the given store. The cache is owned
// by the caller and shared with the rest of the pipeline.
func NewService(lister Lister, flagCache *cache.TTLCache, logger *slog.Logger) Service {
	return &flagService{
		lister: lister,
		cache:  flagCache,
		logger: logger.With("component", "flags"),
	}
}

// Enabled reports whether the flag with the given key is on. Unknown keys
// and load failures read as disabled.
func (s *flagService) Enabled(ctx context.Context, key string) bool {
	flags := s.load(ctx)
	f, ok := flags[key]
	return ok && f.Enabled
}

// EnabledActivities returns the enabled activity.* flag suffixes ordered by
// their metadata order value (missing order sorts last). An empty result
// falls back to the default activity.
func (s *flagService) EnabledActivities(ctx context.Context) []string {
	flags := s.load(ctx)

	type ranked struct {
		name  string
		order int
	}
	var activities []ranked
	for key, f := range flags {
		if !f.Enabled || !strings.HasPrefix(key, activityPrefix) {
			continue
		}
		order := defaultOrder
		if v, ok := f.Metadata["order"].(float64); ok {
			order = int(v)
		}
		activities = append(activities, ranked{
			name:  strings.TrimPrefix(key, activityPrefix),
			order: order,
		})
	}

	if len(activities) == 0 {
		return []string{DefaultActivity}
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].order < activities[j].order
	})
	names := make([]string, len(activities))
	for i, a := range activities {
		names[i] = a.name
	}
	return names
}

// Invalidate drops the cached flag set so the next read hits the store.
// Used after admin updates.
func (s *flagService) Invalidate() {
	s.cache.Invalidate(cacheKey)
}

// load returns the current flag map, serving a stale cached set when the
// store read fails and an empty map only on a cold failure.
func (s *flagService) load(ctx context.Context) map[string]Flag {
	v, err := s.cache.GetOrRefresh(cacheKey, cacheTTL, func() (any, error) {
		rows, err := s.lister.ListFeatureFlags(ctx)
		if err != nil {
			return nil, err
		}
		return buildFlagMap(rows, s.logger), nil
	})
	if err != nil {
		s.logger.Warn("flag load failed with empty cache, treating all flags as off", "error", err)
		return map[string]Flag{}
	}

	flags, ok := v.(map[string]Flag)
	if !ok {
		return map[string]Flag{}
	}
	return flags
}

func buildFlagMap(rows []store.FlagRow, logger *slog.Logger) map[string]Flag {
	flags := make(map[string]Flag, len(rows))
	for _, row := range rows {
		f := Flag{
			Key:         row.Key,
			Enabled:     row.Enabled,
			Description: row.Description,
		}
		if row.MetadataJSON != "" {
			if err := json.Unmarshal([]byte(row.MetadataJSON), &f.Metadata); err != nil {
				logger.Warn("ignoring malformed flag metadata", "key", row.Key, "error", err)
			}
		}
		flags[row.Key] = f
	}
	return flags
}
