package warning

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"backcountry-crews/internal/cache"
	"backcountry-crews/internal/observability"
	"backcountry-crews/internal/providers/nac"
	"backcountry-crews/internal/zones"
)

const (
	// Products at or above this danger rating are warnings regardless of
	// their product type.
	highDangerThreshold = 4

	// bottomLineLimit caps the narrative excerpt carried on a banner.
	bottomLineLimit = 300

	cacheKey = "warnings"

	defaultAuthor    = "CBAC"
	defaultSourceURL = "https://cbavalanchecenter.org/forecasts/"
)

var htmlTags = regexp.MustCompile(`<[^>]*>`)

// ProductsProvider fetches the day's published products for a center.
type ProductsProvider interface {
	GetProducts(ctx context.Context, centerId, startDate string) ([]nac.Product, error)
}

// Service produces the deduplicated live-warning list.
type Service interface {
	GetActiveWarnings(ctx context.Context) Result
}

type warningService struct {
	provider ProductsProvider
	centerId string
	cache    *cache.TTLCache
	cacheTTL time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewService creates a warning service. The cache is owned by the caller and
// shared with whatever else composes the pipeline.
func NewService(
	provider ProductsProvider,
	centerId string,
	warningCache *cache.TTLCache,
	cacheTTL time.Duration,
	logger *slog.Logger,
	metrics *observability.Metrics,
) Service {
	return newService(provider, centerId, warningCache, cacheTTL, clockwork.NewRealClock(), logger, metrics)
}

// NewServiceWithClock injects a clock for deterministic tests.
func NewServiceWithClock(
	provider ProductsProvider,
	centerId string,
	warningCache *cache.TTLCache,
	cacheTTL time.Duration,
	clock clockwork.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
) Service {
	return newService(provider, centerId, warningCache, cacheTTL, clock, logger, metrics)
}

func newService(
	provider ProductsProvider,
	centerId string,
	warningCache *cache.TTLCache,
	cacheTTL time.Duration,
	clock clockwork.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
) Service {
	return &warningService{
		provider: provider,
		centerId: centerId,
		cache:    warningCache,
		cacheTTL: cacheTTL,
		clock:    clock,
		logger:   logger.With("component", "warning-service"),
		metrics:  metrics,
	}
}

// GetActiveWarnings returns the current deduplicated warning list, at most
// one Warning per canonical zone. Results are cached for the configured TTL;
// when a refresh fails, a stale cached cycle is served in preference to
// nothing. A cold failure degrades to an empty list plus an error string —
// warning unavailability never blocks forecast display.
func (s *warningService) GetActiveWarnings(ctx context.Context) Result {
	var refreshed bool
	var fetchErr error
	v, err := s.cache.GetOrRefresh(cacheKey, s.cacheTTL, func() (any, error) {
		refreshed = true
		r, e := s.fetch(ctx)
		fetchErr = e
		return r, e
	})

	switch {
	case !refreshed:
		s.metrics.WarningCache.WithLabelValues("hit").Inc()
	case fetchErr == nil:
		s.metrics.WarningCache.WithLabelValues("miss").Inc()
	case err == nil:
		s.metrics.WarningCache.WithLabelValues("stale").Inc()
	}

	if err != nil {
		s.logger.Warn("warning fetch failed with empty cache, serving empty list", "error", err)
		return Result{
			Warnings:  []Warning{},
			FetchedAt: s.clock.Now().UTC(),
			Err:       err.Error(),
		}
	}

	result, ok := v.(Result)
	if !ok {
		// Should not happen; the cache only ever holds Results under this key.
		return Result{Warnings: []Warning{}, FetchedAt: s.clock.Now().UTC()}
	}
	return result
}

func (s *warningService) fetch(ctx context.Context) (Result, error) {
	today := s.clock.Now().UTC().Format("2006-01-02")

	products, err := s.provider.GetProducts(ctx, s.centerId, today)
	if err != nil {
		s.metrics.WarningFetches.WithLabelValues("error").Inc()
		s.logger.Error("failed to fetch upstream products",
			"center_id", s.centerId,
			"error", err,
		)
		return Result{}, fmt.Errorf("fetching products: %w", err)
	}

	warnings := s.normalize(products)
	s.metrics.WarningFetches.WithLabelValues("success").Inc()
	s.metrics.ActiveWarnings.Set(float64(len(warnings)))

	s.logger.Debug("warning cycle complete",
		"products", len(products),
		"warnings", len(warnings),
	)

	return Result{
		Warnings:  warnings,
		FetchedAt: s.clock.Now().UTC(),
	}, nil
}

// normalize selects danger/urgency products, converts them to Warnings, and
// collapses multiple entries per zone to the single most severe one (ties
// keep the first encountered). Deterministic and idempotent for a given
// product batch.
func (s *warningService) normalize(products []nac.Product) []Warning {
	byZone := make(map[zones.ZoneID]Warning)
	var order []zones.ZoneID

	for _, p := range products {
		highDanger := p.DangerRating >= highDangerThreshold
		explicit := p.ProductType == string(TypeWarning) || p.ProductType == string(TypeWatch)
		if !highDanger && !explicit {
			continue
		}

		w := s.toWarning(p)
		existing, ok := byZone[w.ZoneId]
		if !ok {
			byZone[w.ZoneId] = w
			order = append(order, w.ZoneId)
			continue
		}
		if w.DangerRating > existing.DangerRating {
			byZone[w.ZoneId] = w
		}
	}

	warnings := make([]Warning, 0, len(order))
	for _, z := range order {
		warnings = append(warnings, byZone[z])
	}
	return warnings
}

func (s *warningService) toWarning(p nac.Product) Warning {
	zoneName := p.ZoneName()

	id := strconv.Itoa(p.Id)
	if p.Id == 0 {
		id = fmt.Sprintf("warning-%d", s.clock.Now().UnixMilli())
	}

	wType := TypeWatch
	title := "Avalanche Watch"
	if p.DangerRating >= highDangerThreshold {
		wType = TypeWarning
		title = "Avalanche Warning"
	}

	author := p.Author
	if author == "" {
		author = defaultAuthor
	}

	return Warning{
		Id:           id,
		Zone:         zoneName,
		ZoneId:       zones.Resolve(zoneName),
		Type:         wType,
		Title:        title,
		DangerRating: p.DangerRating,
		IssuedTime:   p.IssuedTime(),
		ExpiresTime:  p.ExpiresTime,
		BottomLine:   cleanBottomLine(p.BottomLine),
		Author:       author,
		SourceURL:    defaultSourceURL,
	}
}

// cleanBottomLine strips HTML markup from the narrative and truncates it to
// the banner limit, appending an ellipsis when cut.
func cleanBottomLine(raw string) string {
	text := strings.TrimSpace(htmlTags.ReplaceAllString(raw, ""))
	if len(text) > bottomLineLimit {
		text = text[:bottomLineLimit-3] + "..."
	}
	return text
}
