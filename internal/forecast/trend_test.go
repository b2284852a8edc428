package forecast

import "testing"

// problemWithCells builds a problem whose rose has exactly n active cells.
func problemWithCells(pt ProblemType, n int) AvalancheProblem {
	rose := NewEmptyRose()
	remaining := n
	for _, a := range Aspects() {
		if remaining <= 0 {
			break
		}
		bands := ElevationBands{}
		if remaining > 0 {
			bands.Alpine = true
			remaining--
		}
		if remaining > 0 {
			bands.Treeline = true
			remaining--
		}
		if remaining > 0 {
			bands.BelowTreeline = true
			remaining--
		}
		rose[a] = bands
	}
	return AvalancheProblem{Id: "p", Type: pt, Rose: rose, Likelihood: LikelihoodPossible, Size: DefaultSize}
}

func dangerForecast(alpine, treeline, below DangerLevel, problems ...AvalancheProblem) Forecast {
	return Forecast{
		Id:                  "fc",
		Zone:                "northwest",
		ValidDate:           "2025-01-15",
		DangerAlpine:        alpine,
		DangerTreeline:      treeline,
		DangerBelowTreeline: below,
		Problems:            problems,
	}
}

func TestEffectiveDanger(t *testing.T) {
	tests := []struct {
		name                    string
		alpine, treeline, below DangerLevel
		want                    DangerLevel
	}{
		{"alpine highest", 4, 3, 2, 4},
		{"treeline highest", 2, 3, 2, 3},
		{"below highest", 1, 1, 2, 2},
		{"uniform", 3, 3, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := dangerForecast(tt.alpine, tt.treeline, tt.below)
			if got := EffectiveDanger(f); got != tt.want {
				t.Errorf("EffectiveDanger = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTotalCoverage(t *testing.T) {
	problems := []AvalancheProblem{
		problemWithCells(WindSlab, 5),
		problemWithCells(PersistentSlab, 3),
	}
	if got := TotalCoverage(problems); got != 8 {
		t.Errorf("TotalCoverage = %d, want 8", got)
	}
	if got := TotalCoverage(nil); got != 0 {
		t.Errorf("TotalCoverage(nil) = %d, want 0", got)
	}
}

func TestClassifyTrend_NoPredecessor(t *testing.T) {
	current := dangerForecast(3, 3, 2)
	label, ok := ClassifyTrend(current, nil)
	if ok {
		t.Errorf("ok = true, want false without a predecessor")
	}
	if label != "" {
		t.Errorf("label = %q, want empty", label)
	}
}

func TestClassifyTrend_Rules(t *testing.T) {
	tests := []struct {
		name     string
		current  Forecast
		previous Forecast
		want     TrendLabel
	}{
		{
			name:     "danger rose",
			current:  dangerForecast(3, 3, 2),
			previous: dangerForecast(2, 2, 2),
			want:     TrendWorsening,
		},
		{
			name:     "new problem type",
			current:  dangerForecast(3, 3, 2, problemWithCells(WindSlab, 4), problemWithCells(PersistentSlab, 4)),
			previous: dangerForecast(3, 3, 2, problemWithCells(WindSlab, 4)),
			want:     TrendNewProblem,
		},
		{
			name:     "coverage grew past band",
			current:  dangerForecast(3, 3, 2, problemWithCells(WindSlab, 13)),
			previous: dangerForecast(3, 3, 2, problemWithCells(WindSlab, 10)),
			want:     TrendWorsening,
		},
		{
			name:     "coverage grew within band",
			current:  dangerForecast(3, 3, 2, problemWithCells(WindSlab, 12)),
			previous: dangerForecast(3, 3, 2, problemWithCells(WindSlab, 10)),
			want:     TrendSteady,
		},
		{
			name:     "danger fell",
			current:  dangerForecast(2, 2, 1),
			previous: dangerForecast(3, 3, 2),
			want:     TrendImproving,
		},
		{
			name:     "fewer problems",
			current:  dangerForecast(3, 3, 2, problemWithCells(WindSlab, 10)),
			previous: dangerForecast(3, 3, 2, problemWithCells(WindSlab, 5), problemWithCells(StormSlab, 5)),
			want:     TrendImproving,
		},
		{
			name:     "coverage shrank past band",
			current:  dangerForecast(3, 3, 2, problemWithCells(WindSlab, 4)),
			previous: dangerForecast(3, 3, 2, problemWithCells(WindSlab, 10)),
			want:     TrendImproving,
		},
		{
			name:     "coverage shrank within band",
			current:  dangerForecast(3, 3, 2, problemWithCells(WindSlab, 8)),
			previous: dangerForecast(3, 3, 2, problemWithCells(WindSlab, 10)),
			want:     TrendSteady,
		},
		{
			name:     "no change",
			current:  dangerForecast(3, 3, 2, problemWithCells(WindSlab, 6)),
			previous: dangerForecast(3, 3, 2, problemWithCells(WindSlab, 6)),
			want:     TrendSteady,
		},
		{
			name:     "danger rise beats new problem",
			current:  dangerForecast(4, 3, 2, problemWithCells(StormSlab, 6)),
			previous: dangerForecast(3, 3, 2, problemWithCells(WindSlab, 6)),
			want:     TrendWorsening,
		},
		{
			name:     "new problem beats coverage growth",
			current:  dangerForecast(3, 3, 2, problemWithCells(StormSlab, 20)),
			previous: dangerForecast(3, 3, 2, problemWithCells(WindSlab, 6)),
			want:     TrendNewProblem,
		},
		{
			name:     "footprint appearing from nothing",
			current:  dangerForecast(3, 3, 2, problemWithCells(WindSlab, 2)),
			previous: dangerForecast(3, 3, 2, problemWithCells(WindSlab, 0)),
			want:     TrendWorsening,
		},
		{
			name:     "both footprints empty",
			current:  dangerForecast(3, 3, 2, problemWithCells(WindSlab, 0)),
			previous: dangerForecast(3, 3, 2, problemWithCells(WindSlab, 0)),
			want:     TrendSteady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, ok := ClassifyTrend(tt.current, &tt.previous)
			if !ok {
				t.Fatal("ok = false with a predecessor present")
			}
			if label != tt.want {
				t.Errorf("label = %q, want %q", label, tt.want)
			}
		})
	}
}
