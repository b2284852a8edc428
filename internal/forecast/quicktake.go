package forecast

import (
	"fmt"
	"strings"
)

const (
	maxBullets = 3
	// Sentences shorter than this after splitting are fragments, not advice.
	minSentenceLength = 10
	// Prefix length used for the key-message duplicate check.
	duplicateCheckPrefix = 20
)

// problemAdvice is the fixed advisory phrase for each problem type, keyed by
// the primary problem. Immutable; built once at init.
var problemAdvice = map[ProblemType]string{
	PersistentSlab: "Buried weak layer remains a concern",
	WindSlab:       "Watch for wind-loaded slopes",
	StormSlab:      "New snow instabilities possible",
	WetSlab:        "Avoid sun-affected slopes as day warms",
	LooseDry:       "Loose snow sluffs possible on steep terrain",
	LooseWet:       "Wet loose avalanches on sun-affected slopes",
	Cornice:        "Avoid corniced ridgelines",
	Glide:          "Glide cracks indicate potential full-depth releases",
}

// QuickTake produces at most three prioritized advisory bullets for a
// forecast. It never fails and never returns an empty list: with every
// optional field absent, the danger-tier bullet still fires.
func QuickTake(f Forecast) []string {
	var bullets []string
	maxDanger := EffectiveDanger(f)

	// Travel advice first: its opening sentence is the forecaster's own
	// priority call.
	if f.TravelAdvice != "" {
		if sentence := firstSentence(f.TravelAdvice); sentence != "" {
			bullets = append(bullets, sentence)
		}
	}

	// Key message, unless the travel-advice bullet already substantially
	// covers it.
	if f.KeyMessage != "" && !containsPrefix(bullets, f.KeyMessage) {
		bullets = append(bullets, f.KeyMessage)
	}

	// Synthesize a danger-tier bullet when the free text gave us too little.
	if len(bullets) < 2 {
		switch {
		case maxDanger >= DangerHigh:
			bullets = append(bullets, "Dangerous avalanche conditions - avoid steep terrain")
		case maxDanger == DangerConsiderable:
			if f.DangerAlpine == DangerConsiderable {
				bullets = append(bullets, "Careful terrain selection needed above treeline")
			} else {
				bullets = append(bullets, "Heightened avalanche conditions - manage terrain carefully")
			}
		case maxDanger == DangerModerate:
			bullets = append(bullets, "Moderate conditions - evaluate specific terrain features")
		default:
			bullets = append(bullets, "Generally favorable conditions - standard precautions apply")
		}
	}

	// Primary-problem advice, then its affected aspects when they are few
	// enough to be worth naming.
	if len(f.Problems) > 0 {
		primary := f.Problems[0]
		if advice, ok := problemAdvice[primary.Type]; ok && len(bullets) < maxBullets {
			bullets = append(bullets, advice)
		}

		affected := primary.Rose.AffectedAspects()
		if len(affected) > 0 && len(affected) < 5 && len(bullets) < maxBullets {
			names := make([]string, len(affected))
			for i, a := range affected {
				names[i] = string(a)
			}
			bullets = append(bullets, fmt.Sprintf("Primary concern on %s aspects", strings.Join(names, ", ")))
		}
	}

	if f.RecentAvalancheCount > 0 && len(bullets) < maxBullets {
		plural := ""
		if f.RecentAvalancheCount > 1 {
			plural = "s"
		}
		bullets = append(bullets, fmt.Sprintf("%d recent avalanche%s reported", f.RecentAvalancheCount, plural))
	}

	if len(bullets) > maxBullets {
		bullets = bullets[:maxBullets]
	}
	return bullets
}

// firstSentence extracts the first sentence longer than minSentenceLength,
// splitting on periods and exclamation marks. No formal grammar; this is the
// same heuristic the forecast views have always used.
func firstSentence(text string) string {
	for _, s := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!'
	}) {
		trimmed := strings.TrimSpace(s)
		if len(trimmed) > minSentenceLength {
			return trimmed
		}
	}
	return ""
}

// containsPrefix reports whether any existing bullet already contains the
// first duplicateCheckPrefix characters of msg.
func containsPrefix(bullets []string, msg string) bool {
	prefix := msg
	if len(prefix) > duplicateCheckPrefix {
		prefix = prefix[:duplicateCheckPrefix]
	}
	for _, b := range bullets {
		if strings.Contains(b, prefix) {
			return true
		}
	}
	return false
}
