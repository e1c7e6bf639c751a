package rank

import "math"

// Extra-factor scales: a blog at or above the scale earns the full bonus
// for that factor.
const (
	postScale    = 1000
	chainScale   = 5000
	visitorScale = 10000

	// Each extra factor can add at most weight * bonusRange points.
	bonusRange = 20
)

// percentileByLevel is the estimated "top N%" of blogs at each level.
var percentileByLevel = map[int]float64{
	10: 1, 9: 3, 8: 5, 7: 10, 6: 20, 5: 35, 4: 50, 3: 65, 2: 80, 1: 90,
}

var gradeByLevel = map[int]string{
	10: "S+", 9: "S", 8: "A+", 7: "A", 6: "B+",
	5: "B", 4: "C+", 3: "C", 2: "D", 1: "E",
}

// Score computes the composite 0-100 authority score for one blog from its
// raw stats and one weight snapshot. It is pure: identical inputs always
// produce identical results, and missing signals score neutral instead of
// failing.
func Score(stats BlogStats, provider WeightProvider) CompositeScoreResult {
	ws := snapshot(provider)

	context := contextScore(stats.CategoryCount)
	content := contentTable.evalOpt(stats.AvgPostLength)
	chain := chainTable.evalOpt(stats.NeighborCount)

	depth := depthTable.evalOpt(stats.TotalPosts)
	information := informationTable.evalOpt(stats.RecentActivityDays)
	accuracy := accuracyScore(stats.OfficialLevel)

	axis1 := context*ws.Axis1.Context + content*ws.Axis1.Content + chain*ws.Axis1.Chain
	axis2 := depth*ws.Axis2.Depth + information*ws.Axis2.Information + accuracy*ws.Axis2.Accuracy

	bonus := extraBonus(stats.TotalPosts, postScale, ws.Extra.PostCount) +
		extraBonus(stats.NeighborCount, chainScale, ws.Extra.NeighborCount) +
		extraBonus(stats.TotalVisitors, visitorScale, ws.Extra.VisitorCount)

	total := axis1*ws.Split.Axis1 + axis2*ws.Split.Axis2 + bonus

	var warnings []string

	// Data-quality penalty: a score built on nothing is pinned low, a
	// score built on a single source is discounted.
	switch len(stats.DataSources) {
	case 0:
		total = 25
		warnings = append(warnings, "no data sources available, score pinned to baseline")
	case 1:
		total = math.Max(total*0.7, 30)
		warnings = append(warnings, "single data source, score discounted")
	}

	if stats.OfficialLevel == nil {
		warnings = append(warnings, "official level unavailable, accuracy scored neutral")
	}

	total = clampF(total, 0, 100)
	level := levelForScore(total)

	return CompositeScoreResult{
		TotalScore:    round1(total),
		Level:         level,
		Grade:         gradeByLevel[level],
		LevelCategory: levelCategory(level),
		Percentile:    percentileByLevel[level],
		Axis1:         round1(axis1),
		Axis2:         round1(axis2),
		Axis1Detail: []AxisComponent{
			{Name: "context", Score: context, Weight: ws.Axis1.Context},
			{Name: "content", Score: content, Weight: ws.Axis1.Content},
			{Name: "chain", Score: chain, Weight: ws.Axis1.Chain},
		},
		Axis2Detail: []AxisComponent{
			{Name: "depth", Score: depth, Weight: ws.Axis2.Depth},
			{Name: "information", Score: information, Weight: ws.Axis2.Information},
			{Name: "accuracy", Score: accuracy, Weight: ws.Axis2.Accuracy},
		},
		ExtraBonus: round1(bonus),
		Warnings:   warnings,
	}
}

// contextScore treats zero categories as "not collected": every live blog
// has at least one board.
func contextScore(categoryCount *int) float64 {
	if categoryCount == nil || *categoryCount == 0 {
		return neutralScore
	}
	return contextTable.eval(float64(*categoryCount))
}

func extraBonus(value *int, scale float64, weight float64) float64 {
	if value == nil {
		return 0
	}
	ratio := math.Min(float64(*value)/scale, 1.0)
	return ratio * weight * bonusRange
}

// levelForScore maps a 0-100 score onto levels 1-10 in steps of 10.
func levelForScore(score float64) int {
	return clampI(int(score/10)+1, 1, 10)
}

func levelCategory(level int) string {
	switch {
	case level >= 8:
		return "top"
	case level >= 5:
		return "mid"
	default:
		return "growth"
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
