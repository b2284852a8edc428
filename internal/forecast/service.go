package forecast

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"backcountry-crews/internal/observability"
	"backcountry-crews/internal/store"
	"backcountry-crews/internal/zones"
)

// storeReadTimeout is the ceiling applied to every backing-store read. A slow
// or unreachable store degrades the response to "no data" instead of hanging.
const storeReadTimeout = 10 * time.Second

// Reader is the slice of the store the forecast service needs.
type Reader interface {
	ListForecasts(ctx context.Context, zoneID string, lookbackDays int) ([]store.ForecastRow, error)
	ListWeather(ctx context.Context, zoneID string, lookbackDays int) (map[string]store.WeatherRow, error)
}

// View is a Forecast annotated with its derived trend and quick-take bullets.
type View struct {
	Forecast
	QuickTake []string `json:"quick_take"`
}

// DateGroup pairs the two zones' forecasts for one valid date. Either side
// may be nil when that zone published nothing.
type DateGroup struct {
	Date      string `json:"date"`
	Northwest *View  `json:"northwest"`
	Southeast *View  `json:"southeast"`
}

// Service reads persisted forecasts and derives trend and quick-take state.
type Service interface {
	GetForecasts(ctx context.Context, zone zones.ZoneID, days int) []View
	GetCombined(ctx context.Context, days int) []DateGroup
}

type forecastService struct {
	reader  Reader
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewService creates a forecast service over the given store reader.
func NewService(reader Reader, logger *slog.Logger, metrics *observability.Metrics) Service {
	return &forecastService{
		reader:  reader,
		logger:  logger.With("component", "forecast-service"),
		metrics: metrics,
	}
}

// GetForecasts returns a zone's recent forecasts, newest valid date first,
// each annotated with its computed trend and quick-take bullets. Store
// failures and timeouts degrade to an empty slice; they are never surfaced
// as errors.
func (s *forecastService) GetForecasts(ctx context.Context, zone zones.ZoneID, days int) []View {
	forecasts := s.load(ctx, string(zone), days)
	return s.annotate(forecasts)
}

// GetCombined returns both zones' forecasts grouped by valid date, newest
// first, for the side-by-side comparison view.
func (s *forecastService) GetCombined(ctx context.Context, days int) []DateGroup {
	views := s.annotate(s.load(ctx, "", days))

	byDate := make(map[string]*DateGroup)
	var dates []string
	for i := range views {
		v := &views[i]
		group, ok := byDate[v.ValidDate]
		if !ok {
			group = &DateGroup{Date: v.ValidDate}
			byDate[v.ValidDate] = group
			dates = append(dates, v.ValidDate)
		}
		switch v.Zone {
		case zones.Northwest:
			group.Northwest = v
		case zones.Southeast:
			group.Southeast = v
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	groups := make([]DateGroup, 0, len(dates))
	for _, d := range dates {
		groups = append(groups, *byDate[d])
	}
	return groups
}

// load reads and normalizes forecast rows under the bounded store timeout.
// Records with schema defects are skipped individually; a failed read yields
// an empty result for this cycle and the next poll self-heals.
func (s *forecastService) load(ctx context.Context, zoneID string, days int) []Forecast {
	ctx, cancel := context.WithTimeout(ctx, storeReadTimeout)
	defer cancel()

	start := time.Now()
	rows, err := s.reader.ListForecasts(ctx, zoneID, days)
	s.metrics.StoreReadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.StoreReadErrors.Inc()
		s.logger.Warn("forecast store read failed, serving empty result",
			"zone_id", zoneID,
			"error", err,
		)
		return nil
	}

	weather, err := s.reader.ListWeather(ctx, zoneID, days)
	if err != nil {
		// Weather is an optional enrichment; forecasts still render without it.
		s.logger.Warn("weather store read failed, continuing without weather",
			"zone_id", zoneID,
			"error", err,
		)
		weather = nil
	}

	forecasts := make([]Forecast, 0, len(rows))
	for _, row := range rows {
		var w *store.WeatherRow
		if wr, ok := weather[store.WeatherKey(row.ZoneID, row.ValidDate)]; ok {
			w = &wr
		}
		f, err := Normalize(row, w)
		if err != nil {
			if errors.Is(err, ErrMissingIdentity) {
				s.metrics.RecordsSkipped.Inc()
				s.logger.Warn("skipping forecast record with missing identity",
					"forecast_id", row.ID,
					"error", err,
				)
				continue
			}
			s.logger.Error("failed to normalize forecast record",
				"forecast_id", row.ID,
				"error", err,
			)
			continue
		}
		forecasts = append(forecasts, f)
	}

	// The classifier assumes newest-first ordering; enforce the precondition
	// here rather than trusting the store's sort.
	sort.SliceStable(forecasts, func(i, j int) bool {
		return forecasts[i].ValidDate > forecasts[j].ValidDate
	})
	return forecasts
}

// annotate attaches the computed trend and quick-take bullets to each
// forecast. The predecessor for trend purposes is the next same-zone entry in
// the newest-first list. A stored trend label wins over the computed one.
func (s *forecastService) annotate(forecasts []Forecast) []View {
	views := make([]View, 0, len(forecasts))
	for i, f := range forecasts {
		var previous *Forecast
		for j := i + 1; j < len(forecasts); j++ {
			if forecasts[j].Zone == f.Zone {
				previous = &forecasts[j]
				break
			}
		}

		if f.Trend == "" {
			if label, ok := ClassifyTrend(f, previous); ok {
				f.Trend = label
			}
		}

		views = append(views, View{
			Forecast:  f,
			QuickTake: QuickTake(f),
		})
	}
	return views
}
