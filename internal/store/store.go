package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// Store wraps the sqlite database holding scraped forecasts, weather
// observations, and feature flags. It is a read collaborator for the
// pipeline; the write path exists for schema bootstrap and the backfill
// tooling.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the database at path and ensures the
// schema exists.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Pragmas for read-heavy workloads.
	_, _ = db.Exec("PRAGMA journal_mode=WAL")
	_, _ = db.Exec("PRAGMA synchronous=NORMAL")
	_, _ = db.Exec("PRAGMA foreign_keys=ON")

	s := &Store{
		db:     db,
		logger: logger.With("component", "store"),
	}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS forecasts (
			id TEXT PRIMARY KEY,
			zone_id TEXT NOT NULL,
			issue_date TEXT,
			valid_date TEXT NOT NULL,
			danger_alpine INTEGER NOT NULL DEFAULT 1,
			danger_treeline INTEGER NOT NULL DEFAULT 1,
			danger_below_treeline INTEGER NOT NULL DEFAULT 1,
			travel_advice TEXT,
			key_message TEXT,
			trend TEXT,
			forecast_url TEXT,
			recent_avalanche_count INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_forecasts_zone_date ON forecasts(zone_id, valid_date);

		CREATE TABLE IF NOT EXISTS avalanche_problems (
			id TEXT PRIMARY KEY,
			forecast_id TEXT NOT NULL REFERENCES forecasts(id) ON DELETE CASCADE,
			position INTEGER NOT NULL DEFAULT 0,
			problem_type TEXT NOT NULL,
			aspect_elevation_rose TEXT,
			likelihood TEXT,
			size TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_problems_forecast ON avalanche_problems(forecast_id);

		CREATE TABLE IF NOT EXISTS weather_forecasts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			zone_id TEXT NOT NULL,
			forecast_date TEXT NOT NULL,
			temperature TEXT,
			cloud_cover TEXT,
			wind_direction TEXT,
			wind_speed TEXT,
			snowfall_12hr TEXT,
			snowfall_24hr TEXT,
			UNIQUE(zone_id, forecast_date)
		);

		CREATE TABLE IF NOT EXISTS feature_flags (
			key TEXT PRIMARY KEY,
			enabled INTEGER NOT NULL DEFAULT 0,
			metadata TEXT,
			description TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// ForecastRow is a persisted forecast record with its problem rows attached.
// Optional columns surface as empty strings / zero values.
type ForecastRow struct {
	ID                   string
	ZoneID               string
	IssueDate            string
	ValidDate            string
	DangerAlpine         int
	DangerTreeline       int
	DangerBelowTreeline  int
	TravelAdvice         string
	KeyMessage           string
	Trend                string
	ForecastURL          string
	RecentAvalancheCount int
	Problems             []ProblemRow
}

// ProblemRow is one avalanche problem row. RoseJSON holds the raw
// aspect_elevation_rose column; empty means the scraper recorded no footprint.
type ProblemRow struct {
	ID          string
	ProblemType string
	RoseJSON    string
	Likelihood  string
	Size        string
}

// WeatherRow is one observed-weather row keyed by zone and date.
type WeatherRow struct {
	ZoneID        string
	ForecastDate  string
	Temperature   string
	CloudCover    string
	WindDirection string
	WindSpeed     string
	Snowfall12hr  string
	Snowfall24hr  string
}

// FlagRow is one feature flag row. MetadataJSON may be empty.
type FlagRow struct {
	Key          string
	Enabled      bool
	MetadataJSON string
	Description  string
}

// ListForecasts returns the most recent forecast rows for a zone, newest
// valid date first, with problem rows attached in stored order. An empty
// zoneID returns both zones (used by the combined view). lookbackDays caps
// the result per zone-agnostic query; <=0 means no cap.
func (s *Store) ListForecasts(ctx context.Context, zoneID string, lookbackDays int) ([]ForecastRow, error) {
	query := `
		SELECT id, zone_id, COALESCE(issue_date, ''), valid_date,
		       danger_alpine, danger_treeline, danger_below_treeline,
		       COALESCE(travel_advice, ''), COALESCE(key_message, ''),
		       COALESCE(trend, ''), COALESCE(forecast_url, ''),
		       COALESCE(recent_avalanche_count, 0)
		FROM forecasts`
	args := []any{}
	if zoneID != "" {
		query += ` WHERE zone_id = ?`
		args = append(args, zoneID)
	}
	query += ` ORDER BY valid_date DESC`
	if lookbackDays > 0 {
		limit := lookbackDays
		if zoneID == "" {
			limit *= 2 // both zones share one cap
		}
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying forecasts: %w", err)
	}
	defer rows.Close()

	var forecasts []ForecastRow
	for rows.Next() {
		var f ForecastRow
		if err := rows.Scan(
			&f.ID, &f.ZoneID, &f.IssueDate, &f.ValidDate,
			&f.DangerAlpine, &f.DangerTreeline, &f.DangerBelowTreeline,
			&f.TravelAdvice, &f.KeyMessage, &f.Trend, &f.ForecastURL,
			&f.RecentAvalancheCount,
		); err != nil {
			return nil, fmt.Errorf("scanning forecast row: %w", err)
		}
		forecasts = append(forecasts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating forecast rows: %w", err)
	}

	for i := range forecasts {
		problems, err := s.listProblems(ctx, forecasts[i].ID)
		if err != nil {
			return nil, err
		}
		forecasts[i].Problems = problems
	}

	s.logger.Debug("listed forecasts", "zone_id", zoneID, "count", len(forecasts))
	return forecasts, nil
}

func (s *Store) listProblems(ctx context.Context, forecastID string) ([]ProblemRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, problem_type, COALESCE(aspect_elevation_rose, ''),
		       COALESCE(likelihood, ''), COALESCE(size, '')
		FROM avalanche_problems
		WHERE forecast_id = ?
		ORDER BY position ASC`, forecastID)
	if err != nil {
		return nil, fmt.Errorf("querying problems: %w", err)
	}
	defer rows.Close()

	var problems []ProblemRow
	for rows.Next() {
		var p ProblemRow
		if err := rows.Scan(&p.ID, &p.ProblemType, &p.RoseJSON, &p.Likelihood, &p.Size); err != nil {
			return nil, fmt.Errorf("scanning problem row: %w", err)
		}
		problems = append(problems, p)
	}
	return problems, rows.Err()
}

// ListWeather returns observed-weather rows keyed "zone_date" so callers can
// join them onto forecasts by zone and valid date.
func (s *Store) ListWeather(ctx context.Context, zoneID string, lookbackDays int) (map[string]WeatherRow, error) {
	query := `
		SELECT zone_id, forecast_date,
		       COALESCE(temperature, ''), COALESCE(cloud_cover, ''),
		       COALESCE(wind_direction, ''), COALESCE(wind_speed, ''),
		       COALESCE(snowfall_12hr, ''), COALESCE(snowfall_24hr, '')
		FROM weather_forecasts`
	args := []any{}
	if zoneID != "" {
		query += ` WHERE zone_id = ?`
		args = append(args, zoneID)
	}
	query += ` ORDER BY forecast_date DESC`
	if lookbackDays > 0 {
		limit := lookbackDays
		if zoneID == "" {
			limit *= 2
		}
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying weather: %w", err)
	}
	defer rows.Close()

	weather := make(map[string]WeatherRow)
	for rows.Next() {
		var w WeatherRow
		if err := rows.Scan(
			&w.ZoneID, &w.ForecastDate,
			&w.Temperature, &w.CloudCover,
			&w.WindDirection, &w.WindSpeed,
			&w.Snowfall12hr, &w.Snowfall24hr,
		); err != nil {
			return nil, fmt.Errorf("scanning weather row: %w", err)
		}
		weather[WeatherKey(w.ZoneID, w.ForecastDate)] = w
	}
	return weather, rows.Err()
}

// WeatherKey builds the join key used by ListWeather.
func WeatherKey(zoneID, date string) string {
	return zoneID + "_" + date
}

// ListFeatureFlags returns all feature flag rows.
func (s *Store) ListFeatureFlags(ctx context.Context) ([]FlagRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, enabled, COALESCE(metadata, ''), COALESCE(description, '')
		FROM feature_flags`)
	if err != nil {
		return nil, fmt.Errorf("querying feature flags: %w", err)
	}
	defer rows.Close()

	var flags []FlagRow
	for rows.Next() {
		var f FlagRow
		if err := rows.Scan(&f.Key, &f.Enabled, &f.MetadataJSON, &f.Description); err != nil {
			return nil, fmt.Errorf("scanning flag row: %w", err)
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

// UpsertForecast writes a forecast row and replaces its problem rows.
// Used by the backfill tooling and tests.
func (s *Store) UpsertForecast(ctx context.Context, f ForecastRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO forecasts (
			id, zone_id, issue_date, valid_date,
			danger_alpine, danger_treeline, danger_below_treeline,
			travel_advice, key_message, trend, forecast_url, recent_avalanche_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			zone_id = excluded.zone_id,
			issue_date = excluded.issue_date,
			valid_date = excluded.valid_date,
			danger_alpine = excluded.danger_alpine,
			danger_treeline = excluded.danger_treeline,
			danger_below_treeline = excluded.danger_below_treeline,
			travel_advice = excluded.travel_advice,
			key_message = excluded.key_message,
			trend = excluded.trend,
			forecast_url = excluded.forecast_url,
			recent_avalanche_count = excluded.recent_avalanche_count`,
		f.ID, f.ZoneID, f.IssueDate, f.ValidDate,
		f.DangerAlpine, f.DangerTreeline, f.DangerBelowTreeline,
		f.TravelAdvice, f.KeyMessage, f.Trend, f.ForecastURL, f.RecentAvalancheCount,
	)
	if err != nil {
		return fmt.Errorf("upserting forecast: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM avalanche_problems WHERE forecast_id = ?`, f.ID); err != nil {
		return fmt.Errorf("clearing problems: %w", err)
	}
	for i, p := range f.Problems {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO avalanche_problems (
				id, forecast_id, position, problem_type, aspect_elevation_rose, likelihood, size
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, f.ID, i, p.ProblemType, p.RoseJSON, p.Likelihood, p.Size,
		)
		if err != nil {
			return fmt.Errorf("inserting problem: %w", err)
		}
	}

	return tx.Commit()
}

// UpsertWeather writes one observed-weather row.
func (s *Store) UpsertWeather(ctx context.Context, w WeatherRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO weather_forecasts (
			zone_id, forecast_date, temperature, cloud_cover,
			wind_direction, wind_speed, snowfall_12hr, snowfall_24hr
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(zone_id, forecast_date) DO UPDATE SET
			temperature = excluded.temperature,
			cloud_cover = excluded.cloud_cover,
			wind_direction = excluded.wind_direction,
			wind_speed = excluded.wind_speed,
			snowfall_12hr = excluded.snowfall_12hr,
			snowfall_24hr = excluded.snowfall_24hr`,
		w.ZoneID, w.ForecastDate, w.Temperature, w.CloudCover,
		w.WindDirection, w.WindSpeed, w.Snowfall12hr, w.Snowfall24hr,
	)
	if err != nil {
		return fmt.Errorf("upserting weather: %w", err)
	}
	return nil
}

// SetFlag writes one feature flag row.
func (s *Store) SetFlag(ctx context.Context, f FlagRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feature_flags (key, enabled, metadata, description)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			enabled = excluded.enabled,
			metadata = excluded.metadata,
			description = excluded.description`,
		f.Key, f.Enabled, f.MetadataJSON, f.Description,
	)
	if err != nil {
		return fmt.Errorf("upserting flag: %w", err)
	}
	return nil
}
