package rank

// neutralScore is returned for any sub-metric whose signal is missing.
const neutralScore = 50

// stepTable maps a raw count onto a bounded score through monotonic
// breakpoints: value < breaks[i] scores scores[i], value >= the last
// breakpoint scores the final entry. len(scores) == len(breaks)+1.
//
// Every bucket table in the engine goes through here so the thresholds
// live in one place.
type stepTable struct {
	breaks []float64
	scores []float64
}

func (t stepTable) eval(value float64) float64 {
	for i, b := range t.breaks {
		if value < b {
			return t.scores[i]
		}
	}
	return t.scores[len(t.scores)-1]
}

// evalOpt scores an optional signal, falling back to the neutral default.
func (t stepTable) evalOpt(value *int) float64 {
	if value == nil {
		return neutralScore
	}
	return t.eval(float64(*value))
}

// Normalization tables. Higher raw counts score higher except the recency
// table, which is inverse (fresher activity scores higher).
var (
	// total posts -> depth score
	depthTable = stepTable{
		breaks: []float64{50, 100, 200, 500, 1000, 2000},
		scores: []float64{35, 45, 55, 65, 75, 85, 95},
	}

	// neighbor/follower count -> chain score
	chainTable = stepTable{
		breaks: []float64{100, 300, 500, 1000, 3000, 5000},
		scores: []float64{35, 45, 55, 65, 75, 85, 95},
	}

	// days since last activity -> information/freshness score (inverse)
	informationTable = stepTable{
		breaks: []float64{2, 4, 8, 15, 31, 61, 91},
		scores: []float64{95, 85, 75, 65, 55, 40, 30, 20},
	}

	// average post length -> content score
	contentTable = stepTable{
		breaks: []float64{100, 200, 300, 500, 1000},
		scores: []float64{15, 30, 50, 65, 85, 95},
	}

	// category count -> context score; very broad blogs dilute topical focus
	contextTable = stepTable{
		breaks: []float64{4, 8, 16},
		scores: []float64{75, 65, 55, 45},
	}
)

// accuracyScore maps the platform's official 1-4 tier onto the accuracy
// sub-metric. Unknown tier scores neutral.
func accuracyScore(officialLevel *int) float64 {
	if officialLevel == nil {
		return neutralScore
	}
	switch *officialLevel {
	case 4:
		return 90
	case 3:
		return 75
	case 2:
		return 60
	default:
		return 40
	}
}
