package rank

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Dimension weights. They must sum to 1.0; TestDimensionWeightsSumToOne
// guards against drift.
const (
	weightBlogLevel          = 0.30
	weightTopicalAuthority   = 0.30
	weightContentFreshness   = 0.15
	weightContentQuality     = 0.10
	weightKeywordOptimization = 0.10
	weightPostingConsistency = 0.05
)

// dimensionInput gathers everything the six dimension rules need.
type dimensionInput struct {
	stats    BlogStats
	keyword  string
	related  int
	myLevel  int
	results  []SearchResultItem
	now      time.Time
}

// dimensionOutcome is the analyzer's aggregate over all six dimensions.
type dimensionOutcome struct {
	dimensions    []DimensionResult
	weightedScore float64
	warnings      []string
}

// analyzeDimensions runs the six independent dimension rules and combines
// them into the weighted competitiveness score.
func analyzeDimensions(in dimensionInput) dimensionOutcome {
	var out dimensionOutcome

	add := func(d DimensionResult, warn string) {
		d.Score = clampF(d.Score, 0, 100)
		out.dimensions = append(out.dimensions, d)
		if warn != "" {
			out.warnings = append(out.warnings, warn)
		}
	}

	add(scoreBlogLevel(in.myLevel, in.results))
	add(scoreTopicalAuthority(in.related, in.stats.TotalPosts))
	add(scoreContentFreshness(in.results, in.now))
	add(scoreContentQuality(in.stats.AvgPostLength, in.results))
	add(scoreKeywordOptimization(in.keyword, in.results))
	add(scorePostingConsistency(in.stats))

	var weighted float64
	for _, d := range out.dimensions {
		weighted += d.Score * d.Weight
	}

	// Neglect penalty: a blog that went quiet loses ground regardless of
	// how its dimensions look individually.
	recency := intVal(in.stats.RecentActivityDays, -1)
	last30 := intVal(in.stats.PostsLast30Days, -1)
	if recency > 90 && last30 == 0 {
		if recency > 180 {
			weighted -= 20
		} else {
			weighted -= 10
		}
		out.warnings = append(out.warnings, "blog appears inactive, weighted score penalized")
	}
	if weighted < 5 {
		weighted = 5
	}

	out.weightedScore = round1(weighted)
	return out
}

// scoreBlogLevel compares my official tier against the competitor average.
// A level-1 blog can never score above 35 here no matter how weak the
// competition looks.
func scoreBlogLevel(myLevel int, results []SearchResultItem) (DimensionResult, string) {
	var known, sum int
	for _, r := range results {
		if r.OfficialLevel != nil {
			known++
			sum += *r.OfficialLevel
		}
	}
	compAvg := 2.0 // platform median when nothing is known
	var warn string
	if known > 0 {
		compAvg = float64(sum) / float64(known)
	} else {
		warn = "no competitor levels known, blog level compared against platform median"
	}

	var score float64
	switch myLevel {
	case 4:
		score = 90
	case 3:
		if compAvg <= 3.0 {
			score = 72
		} else {
			score = 58
		}
	case 2:
		switch {
		case compAvg <= 2.0:
			score = 50
		case compAvg <= 3.0:
			score = 30
		default:
			score = 18
		}
	default:
		switch {
		case compAvg <= 1.5:
			score = 35
		case compAvg <= 2.5:
			score = 22
		default:
			score = 12
		}
		if score > 35 {
			score = 35
		}
	}

	return DimensionResult{
		ID:            "blog_level",
		Label:         "Blog level",
		Score:         score,
		Detail:        fmt.Sprintf("my level %d vs competitor average %.1f", myLevel, compAvg),
		MyValue:       float64(myLevel),
		CompetitorAvg: compAvg,
		Weight:        weightBlogLevel,
	}, warn
}

// scoreTopicalAuthority scores the absolute volume of keyword-related
// posts, adjusted by how concentrated the blog is on the topic.
func scoreTopicalAuthority(related int, totalPosts *int) (DimensionResult, string) {
	var score float64
	switch {
	case related <= 0:
		score = 5
	case related == 1:
		score = 25
	case related == 2:
		score = 35
	case related == 3:
		score = 45
	case related <= 5:
		score = 55
	case related <= 7:
		score = 65
	case related <= 9:
		score = 75
	case related <= 14:
		score = 85
	default:
		score = 95
	}

	detail := fmt.Sprintf("%d related posts", related)
	if totalPosts != nil && *totalPosts > 0 {
		concentration := float64(related) / float64(*totalPosts)
		switch {
		case concentration >= 0.30:
			score += 15
			detail += ", topic-focused"
		case concentration < 0.05:
			score -= 10
			detail += ", unfocused"
		}
	}

	return DimensionResult{
		ID:      "topical_authority",
		Label:   "Topical authority",
		Score:   score,
		Detail:  detail,
		MyValue: float64(related),
		Weight:  weightTopicalAuthority,
	}, ""
}

// scoreContentFreshness reads the competitor posts' average age as an
// opportunity signal: a stale top-10 is beatable, a fresh one is saturated.
func scoreContentFreshness(results []SearchResultItem, now time.Time) (DimensionResult, string) {
	var dated, recent int
	var ageSum float64
	for _, r := range results {
		if r.PostDate == nil {
			continue
		}
		dated++
		age := now.Sub(*r.PostDate).Hours() / 24
		if age < 0 {
			age = 0
		}
		ageSum += age
		if age <= 30 {
			recent++
		}
	}

	dim := DimensionResult{
		ID:     "content_freshness",
		Label:  "Content freshness",
		Weight: weightContentFreshness,
	}

	if dated == 0 {
		dim.Score = neutralScore
		dim.Detail = "competitor post dates unavailable"
		return dim, "competitor post dates unavailable, freshness scored neutral"
	}

	avgAge := ageSum / float64(dated)
	switch {
	case avgAge >= 365:
		dim.Score = 80
	case avgAge >= 180:
		dim.Score = 65
	case avgAge >= 90:
		dim.Score = 50
	case avgAge >= 30:
		dim.Score = 35
	default:
		dim.Score = 20
	}
	dim.Detail = fmt.Sprintf("competitor posts average %.0f days old", avgAge)
	dim.CompetitorAvg = round1(avgAge)

	if recent >= 7 {
		dim.Score -= 15
		dim.Detail += ", top results recently refreshed"
	}
	return dim, ""
}

// scoreContentQuality buckets my average post length, then adjusts by the
// ratio to the competitors' average when any competitor length is known.
func scoreContentQuality(avgLength *int, results []SearchResultItem) (DimensionResult, string) {
	dim := DimensionResult{
		ID:     "content_quality",
		Label:  "Content quality",
		Weight: weightContentQuality,
	}

	if avgLength == nil {
		dim.Score = neutralScore
		dim.Detail = "average post length unavailable"
		return dim, "average post length unavailable, content quality scored neutral"
	}

	mine := float64(*avgLength)
	switch {
	case mine >= 500:
		dim.Score = 85
	case mine >= 300:
		dim.Score = 65
	case mine >= 200:
		dim.Score = 50
	case mine >= 100:
		dim.Score = 30
	default:
		dim.Score = 15
	}
	dim.MyValue = mine
	dim.Detail = fmt.Sprintf("average post length %d", *avgLength)

	var known int
	var lenSum float64
	for _, r := range results {
		if r.ContentLength != nil && *r.ContentLength > 0 {
			known++
			lenSum += float64(*r.ContentLength)
		}
	}
	if known > 0 {
		compAvg := lenSum / float64(known)
		dim.CompetitorAvg = round1(compAvg)
		ratio := mine / compAvg
		switch {
		case ratio >= 1.3:
			dim.Score += 10
			dim.Detail += ", longer than competitors"
		case ratio < 0.5:
			dim.Score -= 15
			dim.Detail += ", much shorter than competitors"
		}
	}
	return dim, ""
}

// scoreKeywordOptimization is deliberately non-monotonic: a SERP where
// every title carries the keyword is saturated, one where none do is a
// poor keyword match; the sweet spot is in between.
func scoreKeywordOptimization(keyword string, results []SearchResultItem) (DimensionResult, string) {
	dim := DimensionResult{
		ID:     "keyword_optimization",
		Label:  "Keyword optimization",
		Weight: weightKeywordOptimization,
	}
	if len(results) == 0 {
		dim.Score = neutralScore
		dim.Detail = "no competing results"
		return dim, ""
	}

	matched := 0
	for _, r := range results {
		if titleMatchesKeyword(r.Title, keyword) {
			matched++
		}
	}
	ratio := float64(matched) / float64(len(results))

	switch {
	case ratio >= 0.8:
		dim.Score = 50
		dim.Detail = "titles saturated with the keyword, little room to differentiate"
	case ratio >= 0.5:
		dim.Score = 65
		dim.Detail = "keyword relevant with room to differentiate"
	case ratio >= 0.3:
		dim.Score = 45
		dim.Detail = "keyword weakly represented in top titles"
	default:
		dim.Score = 30
		dim.Detail = "top results barely match the keyword"
	}
	dim.MyValue = round1(ratio * 100)
	return dim, ""
}

// scorePostingConsistency combines recency, 30-day cadence, and blog age.
func scorePostingConsistency(stats BlogStats) (DimensionResult, string) {
	var score float64
	var parts []string

	if d := stats.RecentActivityDays; d != nil {
		switch {
		case *d <= 3:
			score += 50
		case *d <= 7:
			score += 40
		case *d <= 14:
			score += 30
		case *d <= 30:
			score += 20
		case *d <= 60:
			score += 12
		case *d <= 90:
			score += 8
		default:
			score += 5
		}
		parts = append(parts, fmt.Sprintf("last post %d days ago", *d))
	} else {
		score += 25 // recency component neutral midpoint
		parts = append(parts, "last post date unknown")
	}

	if n := stats.PostsLast30Days; n != nil {
		switch {
		case *n >= 12:
			score += 30
		case *n >= 8:
			score += 25
		case *n >= 4:
			score += 18
		case *n >= 1:
			score += 10
		}
		parts = append(parts, fmt.Sprintf("%d posts in 30 days", *n))
	}

	if age := stats.BlogAgeDays; age != nil {
		switch {
		case *age >= 365:
			score += 15
		case *age >= 180:
			score += 10
		case *age >= 90:
			score += 5
		}
	}

	return DimensionResult{
		ID:      "posting_consistency",
		Label:   "Posting consistency",
		Score:   score,
		Detail:  strings.Join(parts, ", "),
		MyValue: float64(intVal(stats.PostsLast30Days, 0)),
		Weight:  weightPostingConsistency,
	}, ""
}

// titleMatchesKeyword accepts an exact case-folded substring match or a
// title containing every significant word of the keyword.
func titleMatchesKeyword(title, keyword string) bool {
	t := strings.ToLower(title)
	k := strings.ToLower(strings.TrimSpace(keyword))
	if k == "" {
		return false
	}
	if strings.Contains(t, k) {
		return true
	}
	words := strings.Fields(k)
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		if utf8.RuneCountInString(w) < 2 {
			continue
		}
		if !strings.Contains(t, w) {
			return false
		}
	}
	return true
}
