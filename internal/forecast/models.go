package forecast

import (
	"fmt"
	"strings"

	"backcountry-crews/internal/zones"
)

// DangerLevel is a normalized integer matching the North American Avalanche
// Danger Scale. Persisted forecasts always carry levels in [1,5].
type DangerLevel int

const (
	DangerLow          DangerLevel = 1
	DangerModerate     DangerLevel = 2
	DangerConsiderable DangerLevel = 3
	DangerHigh         DangerLevel = 4
	DangerExtreme      DangerLevel = 5
)

var dangerLevelNames = map[DangerLevel]string{
	DangerLow:          "Low",
	DangerModerate:     "Moderate",
	DangerConsiderable: "Considerable",
	DangerHigh:         "High",
	DangerExtreme:      "Extreme",
}

func (d DangerLevel) String() string {
	if name, ok := dangerLevelNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", int(d))
}

// ClampDanger forces a raw danger value into the valid [1,5] range.
// Out-of-range upstream data is a quality issue, not a fatal error.
func ClampDanger(v int) DangerLevel {
	if v < 1 {
		return DangerLow
	}
	if v > 5 {
		return DangerExtreme
	}
	return DangerLevel(v)
}

// Aspect is one of the eight compass-rose slope orientations.
type Aspect string

const (
	AspectN  Aspect = "N"
	AspectNE Aspect = "NE"
	AspectE  Aspect = "E"
	AspectSE Aspect = "SE"
	AspectS  Aspect = "S"
	AspectSW Aspect = "SW"
	AspectW  Aspect = "W"
	AspectNW Aspect = "NW"
)

// Aspects returns all aspects in compass order. Iterate the rose through this
// slice, never the map directly, so derived output is deterministic.
func Aspects() []Aspect {
	return []Aspect{AspectN, AspectNE, AspectE, AspectSE, AspectS, AspectSW, AspectW, AspectNW}
}

// ElevationBands marks which of the three elevation bands a problem is active
// in for a single aspect.
type ElevationBands struct {
	Alpine        bool `json:"alpine"`
	Treeline      bool `json:"treeline"`
	BelowTreeline bool `json:"below_treeline"`
}

// Rose is the 8x3 aspect/elevation matrix describing a problem's geographic
// footprint.
type Rose map[Aspect]ElevationBands

// NewEmptyRose returns a rose with every cell false. This is the schema
// default when the upstream record carries no aspect/elevation data: the
// problem is geographically unspecified, not absent.
func NewEmptyRose() Rose {
	r := make(Rose, 8)
	for _, a := range Aspects() {
		r[a] = ElevationBands{}
	}
	return r
}

// ActiveCells counts the true cells in the rose.
func (r Rose) ActiveCells() int {
	count := 0
	for _, a := range Aspects() {
		bands := r[a]
		if bands.Alpine {
			count++
		}
		if bands.Treeline {
			count++
		}
		if bands.BelowTreeline {
			count++
		}
	}
	return count
}

// AffectedAspects returns, in compass order, the aspects where the problem is
// active at or above treeline.
func (r Rose) AffectedAspects() []Aspect {
	var affected []Aspect
	for _, a := range Aspects() {
		bands := r[a]
		if bands.Alpine || bands.Treeline {
			affected = append(affected, a)
		}
	}
	return affected
}

// ProblemType is the fixed enumeration of avalanche hazard mechanisms.
type ProblemType string

const (
	PersistentSlab ProblemType = "persistent_slab"
	WindSlab       ProblemType = "wind_slab"
	StormSlab      ProblemType = "storm_slab"
	WetSlab        ProblemType = "wet_slab"
	LooseDry       ProblemType = "loose_dry"
	LooseWet       ProblemType = "loose_wet"
	Cornice        ProblemType = "cornice"
	Glide          ProblemType = "glide"
)

// Likelihood is a normalized enum for avalanche problem likelihood.
type Likelihood int

const (
	LikelihoodUnlikely      Likelihood = 1
	LikelihoodPossible      Likelihood = 2
	LikelihoodLikely        Likelihood = 3
	LikelihoodVeryLikely    Likelihood = 4
	LikelihoodAlmostCertain Likelihood = 5
)

var likelihoodNames = map[Likelihood]string{
	LikelihoodUnlikely:      "Unlikely",
	LikelihoodPossible:      "Possible",
	LikelihoodLikely:        "Likely",
	LikelihoodVeryLikely:    "Very Likely",
	LikelihoodAlmostCertain: "Almost Certain",
}

func (l Likelihood) String() string {
	if name, ok := likelihoodNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", int(l))
}

// MarshalJSON renders the likelihood as its display name. Clients consume
// the categorical form ("Possible"), not the internal ordinal.
func (l Likelihood) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", l.String())), nil
}

// ParseLikelihood normalizes likelihood strings from persisted records.
// It handles camelCase ("veryLikely"), space-separated ("Very Likely"), and
// snake_case ("very_likely") forms. Empty or unrecognized input defaults to
// Possible per the forecast schema.
func ParseLikelihood(s string) Likelihood {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "_", "")

	switch normalized {
	case "unlikely":
		return LikelihoodUnlikely
	case "likely":
		return LikelihoodLikely
	case "verylikely":
		return LikelihoodVeryLikely
	case "almostcertain":
		return LikelihoodAlmostCertain
	default:
		return LikelihoodPossible
	}
}

// DefaultSize is the destructive-size code assumed when the record omits one.
const DefaultSize = "D2"

// AvalancheProblem describes one hazard type active within a Forecast.
// Problems are owned by their parent Forecast; index 0 is the primary problem.
type AvalancheProblem struct {
	Id         string      `json:"id"`
	Type       ProblemType `json:"type"`
	Rose       Rose        `json:"aspect_elevation"`
	Likelihood Likelihood  `json:"likelihood"`
	Size       string      `json:"size"`
}

// TrendLabel is the classified direction of change between two consecutive
// daily forecasts. Derived, never authored directly.
type TrendLabel string

const (
	TrendImproving     TrendLabel = "improving"
	TrendSteady        TrendLabel = "steady"
	TrendWorsening     TrendLabel = "worsening"
	TrendStormIncoming TrendLabel = "storm_incoming"
	TrendNewProblem    TrendLabel = "new_problem"
)

// ValidTrend reports whether s is one of the five trend labels.
func ValidTrend(s string) bool {
	switch TrendLabel(s) {
	case TrendImproving, TrendSteady, TrendWorsening, TrendStormIncoming, TrendNewProblem:
		return true
	}
	return false
}

// Weather is an optional snapshot of observed conditions for the forecast's
// valid date. Metrics are kept as the free-form strings the scraper records.
type Weather struct {
	Temperature   string `json:"temperature,omitempty"`
	CloudCover    string `json:"cloud_cover,omitempty"`
	WindDirection string `json:"wind_direction,omitempty"`
	WindSpeed     string `json:"wind_speed,omitempty"`
	Snowfall12hr  string `json:"snowfall_12hr,omitempty"`
	Snowfall24hr  string `json:"snowfall_24hr,omitempty"`
}

// Forecast is one zone's avalanche outlook for one calendar day.
type Forecast struct {
	Id                   string             `json:"id"`
	Zone                 zones.ZoneID       `json:"zone"`
	IssueDate            string             `json:"issue_date"`
	ValidDate            string             `json:"valid_date"`
	DangerAlpine         DangerLevel        `json:"danger_alpine"`
	DangerTreeline       DangerLevel        `json:"danger_treeline"`
	DangerBelowTreeline  DangerLevel        `json:"danger_below_treeline"`
	Problems             []AvalancheProblem `json:"problems"`
	Weather              *Weather           `json:"weather,omitempty"`
	Trend                TrendLabel         `json:"trend,omitempty"`
	KeyMessage           string             `json:"key_message,omitempty"`
	TravelAdvice         string             `json:"travel_advice,omitempty"`
	RecentAvalancheCount int                `json:"recent_avalanche_count,omitempty"`
	ForecastURL          string             `json:"forecast_url,omitempty"`
}
