package rank

import "math"

// probAnchor is one calibration point: at weighted score S the exposure
// probability range is (low, mid, high).
type probAnchor struct {
	score, low, mid, high float64
}

// probAnchors is the calibrated interpolation table, ordered by score.
var probAnchors = []probAnchor{
	{0, 5, 10, 18},
	{30, 12, 22, 32},
	{40, 22, 35, 48},
	{50, 35, 48, 60},
	{60, 48, 60, 72},
	{75, 60, 72, 82},
	{90, 72, 82, 92},
}

// probability is the working triple before final packaging.
type probability struct {
	low, mid, high float64
}

// clampOrder re-establishes the triple's invariants: bounded to [floor, 95]
// and low <= mid <= high. Called after every adjustment.
func (p *probability) clampOrder() {
	p.high = clampF(p.high, 3, 95)
	p.mid = clampF(p.mid, 2, p.high)
	p.low = clampF(p.low, 1, p.mid)
}

// estimateInput feeds the probability and rank estimators.
type estimateInput struct {
	weightedScore float64
	difficulty    KeywordDifficulty
	myLevel       int
	related       int
	totalPosts    int
	sourceLimited bool
	currentRank   int // 0 when not ranking
	results       []SearchResultItem
}

// sourceLimitedRelated reports whether the related-post count is likely an
// undercount: either the collector flagged a fixed observation window, or
// the blog has enough posts that the window almost certainly truncated.
func (in estimateInput) sourceLimitedRelated() bool {
	return in.sourceLimited || in.totalPosts >= 100
}

// estimateProbability produces the ordered, bounded probability triple.
// Hard gates override the calibrated interpolation for qualitatively
// disqualifying conditions.
func estimateProbability(in estimateInput) (probability, []string) {
	var limits []string

	// Already ranking: the question is retention, not entry.
	if in.currentRank >= 1 && in.currentRank <= MaxResults {
		p := probability{
			low:  math.Round(90 - 5*float64(in.currentRank)),
			mid:  math.Round(95 - 2.5*float64(in.currentRank)),
			high: 95,
		}
		p.clampOrder()
		return p, limits
	}

	// Hard gate 1: no related content at all.
	if in.related == 0 {
		limits = append(limits, "no keyword-related posts found")
		if in.sourceLimitedRelated() {
			limits = append(limits, "related-post count may be undercounted by the source window")
			return probability{5, 12, 25}, limits
		}
		return probability{2, 5, 12}, limits
	}

	// Hard gate 2: official tier below what the keyword demands.
	if in.myLevel < in.difficulty.LevelFloor {
		gap := in.difficulty.LevelFloor - in.myLevel
		ceiling := 40.0
		if gap >= 2 {
			ceiling = 18.0
		}
		p := probability{}
		p.mid = clampF(in.weightedScore*0.4, 5, ceiling)
		p.low = math.Max(2, p.mid-8)
		p.high = math.Min(ceiling, p.mid+8)
		p.clampOrder()
		limits = append(limits, "official level below the keyword's effective floor")
		return p, limits
	}

	p := interpolateProbability(in.weightedScore)

	// Difficulty shift.
	switch in.difficulty.Difficulty {
	case DifficultyVeryHard:
		p.low -= 15
		p.mid -= 15
		p.high -= 15
	case DifficultyHard:
		p.low -= 8
		p.mid -= 8
		p.high -= 8
	case DifficultyEasy:
		p.low += 10
		p.mid += 10
		p.high += 10
	}
	p.clampOrder()

	// Thin topical authority caps the upside even when the weighted score
	// looks strong.
	limited := in.sourceLimitedRelated()
	if in.related == 1 {
		if limited {
			p.high = math.Min(p.high, 50)
			p.mid = math.Min(p.mid, 35)
		} else {
			p.high = math.Min(p.high, 35)
			p.mid = math.Min(p.mid, 25)
		}
		p.clampOrder()
	} else if in.related <= 3 {
		if limited {
			p.high = math.Min(p.high, 65)
		} else {
			p.high = math.Min(p.high, 55)
		}
		p.clampOrder()
	}

	// A level-1 blog has an absolute ceiling.
	if in.myLevel <= 1 {
		if limited {
			p.high = math.Min(p.high, 45)
			p.mid = math.Min(p.mid, 35)
			p.low = math.Min(p.low, 20)
		} else {
			p.high = math.Min(p.high, 35)
			p.mid = math.Min(p.mid, 25)
			p.low = math.Min(p.low, 15)
		}
		p.clampOrder()
	}

	return p, limits
}

// interpolateProbability linearly interpolates the triple between the two
// anchors bracketing the weighted score.
func interpolateProbability(score float64) probability {
	first := probAnchors[0]
	if score <= first.score {
		return probability{first.low, first.mid, first.high}
	}
	last := probAnchors[len(probAnchors)-1]
	if score >= last.score {
		return probability{last.low, last.mid, last.high}
	}
	for i := 1; i < len(probAnchors); i++ {
		hi := probAnchors[i]
		if score > hi.score {
			continue
		}
		lo := probAnchors[i-1]
		t := (score - lo.score) / (hi.score - lo.score)
		return probability{
			low:  lo.low + t*(hi.low-lo.low),
			mid:  lo.mid + t*(hi.mid-lo.mid),
			high: lo.high + t*(hi.high-lo.high),
		}
	}
	return probability{last.low, last.mid, last.high}
}

// estimateRank predicts the SERP position band.
func estimateRank(in estimateInput) (best, worst int) {
	n := len(in.results)

	// Already ranking: a narrow band around the current position.
	if in.currentRank >= 1 && in.currentRank <= MaxResults {
		best = clampI(in.currentRank-1, 1, n+1)
		worst = clampI(in.currentRank+1, best, n+1)
		return best, worst
	}

	var canBeat, cannotBeat, neutral, sameLevel int
	for _, r := range in.results {
		compLevel := intVal(r.OfficialLevel, 2) // platform median when unknown
		if compLevel == in.myLevel {
			sameLevel++
		}

		compScore := 50.0
		if r.TotalScore != nil {
			compScore = *r.TotalScore
		}

		levelAdv := clampF(float64(in.myLevel-compLevel)/2, -1, 1)
		authAdv := math.Min(1, float64(in.related)/8)
		contentAdv := clampF((in.weightedScore-compScore)/80, -1, 1)

		beat := 0.40*levelAdv + 0.35*authAdv + 0.25*contentAdv
		switch {
		case beat >= 0.30:
			canBeat++
		case beat <= 0.05:
			cannotBeat++
		default:
			neutral++
		}
	}

	best = cannotBeat + 1
	worst = cannotBeat + neutral + 1
	if worst > n+1 {
		worst = n + 1
	}

	// When most competitors sit at my exact level the pairwise comparison
	// loses resolution; widen the band.
	if n >= 5 && float64(sameLevel) >= 0.7*float64(n) {
		worst += sameLevel / 2
	}

	// Zero related content floors the rank the same way the probability
	// gate caps the probability.
	if in.related == 0 {
		floor := 8
		if in.sourceLimitedRelated() {
			floor = 6
		}
		if floor > n {
			floor = n
		}
		if best < floor {
			best = floor
		}
		worst = n + 1
	}

	best = clampI(best, 1, n+1)
	worst = clampI(worst, best, n+1)
	return best, worst
}

// positionGrade maps the weighted score onto a letter grade for display.
func positionGrade(weighted float64) (grade, label string) {
	switch {
	case weighted >= 80:
		return "S", "dominant"
	case weighted >= 65:
		return "A", "strong"
	case weighted >= 50:
		return "B", "competitive"
	case weighted >= 35:
		return "C", "challenging"
	default:
		return "D", "uphill"
	}
}
