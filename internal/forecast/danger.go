package forecast

// EffectiveDanger is the worst-case danger level across the three elevation
// bands. Total and deterministic; every downstream component that needs a
// single-number severity uses this.
func EffectiveDanger(f Forecast) DangerLevel {
	max := f.DangerAlpine
	if f.DangerTreeline > max {
		max = f.DangerTreeline
	}
	if f.DangerBelowTreeline > max {
		max = f.DangerBelowTreeline
	}
	return max
}

// TotalCoverage sums the active aspect/elevation cells across all of a
// forecast's problems. It measures the spatial extent of the day's hazard in
// a way the three-band danger scale cannot express.
func TotalCoverage(problems []AvalancheProblem) int {
	total := 0
	for _, p := range problems {
		total += p.Rose.ActiveCells()
	}
	return total
}
