package forecast

// Coverage hysteresis bands. Coverage must move by more than a quarter in
// either direction before the classifier calls it a change, which keeps the
// label from flapping on noise-level footprint edits.
const (
	coverageWorseningRatio = 1.25
	coverageImprovingRatio = 0.75
)

// ClassifyTrend compares a forecast against its immediate predecessor and
// returns the trend label. The second return value is false when previous is
// nil: absence of history is a distinct state from "no change observed".
//
// The rules form an ordered decision list; the first match wins:
//
//  1. effective danger rose                  -> worsening
//  2. a problem type not seen yesterday      -> new_problem
//  3. coverage grew by more than 25%         -> worsening
//  4. effective danger fell                  -> improving
//  5. fewer problems than yesterday          -> improving
//  6. coverage shrank below 75% of yesterday -> improving
//  7. otherwise                              -> steady
//
// Danger-number changes dominate. A new hazard type gets its own label even
// without a numeric change because it is a distinct terrain management burden.
func ClassifyTrend(current Forecast, previous *Forecast) (TrendLabel, bool) {
	if previous == nil {
		return "", false
	}

	currentDanger := EffectiveDanger(current)
	previousDanger := EffectiveDanger(*previous)

	if currentDanger > previousDanger {
		return TrendWorsening, true
	}

	previousTypes := make(map[ProblemType]bool, len(previous.Problems))
	for _, p := range previous.Problems {
		previousTypes[p.Type] = true
	}
	for _, p := range current.Problems {
		if !previousTypes[p.Type] {
			return TrendNewProblem, true
		}
	}

	currentCoverage := TotalCoverage(current.Problems)
	previousCoverage := TotalCoverage(previous.Problems)

	// A previous forecast with zero coverage makes the ratio undefined; any
	// footprint appearing from nothing is treated as exceeding the band.
	if previousCoverage == 0 {
		if currentCoverage > 0 {
			return TrendWorsening, true
		}
	} else if float64(currentCoverage) > float64(previousCoverage)*coverageWorseningRatio {
		return TrendWorsening, true
	}

	if currentDanger < previousDanger {
		return TrendImproving, true
	}
	if len(current.Problems) < len(previous.Problems) {
		return TrendImproving, true
	}
	if previousCoverage > 0 && float64(currentCoverage) < float64(previousCoverage)*coverageImprovingRatio {
		return TrendImproving, true
	}

	return TrendSteady, true
}
