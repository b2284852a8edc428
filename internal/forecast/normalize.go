package forecast

import (
	"encoding/json"
	"errors"
	"fmt"

	"backcountry-crews/internal/store"
	"backcountry-crews/internal/zones"
)

// defaultForecastURL points readers at the center's full forecast when the
// record does not carry its own link.
const defaultForecastURL = "https://cbavalanchecenter.org/forecasts/"

// ErrMissingIdentity marks a record that cannot be normalized because a
// required identity field (id, zone, valid date) is absent. Such records are
// skipped; they never abort the batch.
var ErrMissingIdentity = errors.New("forecast record missing identity field")

// Normalize converts a persisted forecast row (and its optional weather row)
// into a Forecast. Every optional field has a schema default; only a missing
// identity field is an error.
func Normalize(row store.ForecastRow, weather *store.WeatherRow) (Forecast, error) {
	if row.ID == "" {
		return Forecast{}, fmt.Errorf("%w: id", ErrMissingIdentity)
	}
	if row.ZoneID == "" {
		return Forecast{}, fmt.Errorf("%w: zone", ErrMissingIdentity)
	}
	if row.ValidDate == "" {
		return Forecast{}, fmt.Errorf("%w: valid_date", ErrMissingIdentity)
	}

	f := Forecast{
		Id:                   row.ID,
		Zone:                 zones.ZoneID(row.ZoneID),
		IssueDate:            row.IssueDate,
		ValidDate:            row.ValidDate,
		DangerAlpine:         ClampDanger(row.DangerAlpine),
		DangerTreeline:       ClampDanger(row.DangerTreeline),
		DangerBelowTreeline:  ClampDanger(row.DangerBelowTreeline),
		TravelAdvice:         row.TravelAdvice,
		KeyMessage:           row.KeyMessage,
		RecentAvalancheCount: row.RecentAvalancheCount,
		ForecastURL:          row.ForecastURL,
	}
	if f.ForecastURL == "" {
		f.ForecastURL = defaultForecastURL
	}
	if ValidTrend(row.Trend) {
		f.Trend = TrendLabel(row.Trend)
	}
	if f.RecentAvalancheCount < 0 {
		f.RecentAvalancheCount = 0
	}

	f.Problems = make([]AvalancheProblem, 0, len(row.Problems))
	for _, p := range row.Problems {
		f.Problems = append(f.Problems, normalizeProblem(p))
	}

	if weather != nil {
		f.Weather = &Weather{
			Temperature:   weather.Temperature,
			CloudCover:    weather.CloudCover,
			WindDirection: weather.WindDirection,
			WindSpeed:     weather.WindSpeed,
			Snowfall12hr:  weather.Snowfall12hr,
			Snowfall24hr:  weather.Snowfall24hr,
		}
	}

	return f, nil
}

// normalizeProblem applies the problem-level schema defaults: all-false rose
// when the footprint is missing or unparseable, likelihood "Possible", and
// size "D2".
func normalizeProblem(p store.ProblemRow) AvalancheProblem {
	problem := AvalancheProblem{
		Id:         p.ID,
		Type:       ProblemType(p.ProblemType),
		Rose:       parseRose(p.RoseJSON),
		Likelihood: ParseLikelihood(p.Likelihood),
		Size:       p.Size,
	}
	if problem.Size == "" {
		problem.Size = DefaultSize
	}
	return problem
}

// parseRose decodes the stored aspect_elevation_rose JSON. Missing aspects
// default to all-false cells; bad JSON degrades to the empty rose rather than
// failing the record.
func parseRose(raw string) Rose {
	rose := NewEmptyRose()
	if raw == "" {
		return rose
	}

	var stored map[Aspect]ElevationBands
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return NewEmptyRose()
	}
	for _, a := range Aspects() {
		if bands, ok := stored[a]; ok {
			rose[a] = bands
		}
	}
	return rose
}
