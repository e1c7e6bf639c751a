package rank

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput is returned when an input shape is malformed or out of
// range. Missing signals are never an error; they fall back to neutral
// defaults and are reported through DataQuality instead.
var ErrInvalidInput = errors.New("rank: invalid input")

// BlogStats carries the raw signals collected for one blog. All fields are
// optional: a nil pointer means the signal could not be collected.
type BlogStats struct {
	TotalPosts         *int     `json:"total_posts,omitempty"`
	NeighborCount      *int     `json:"neighbor_count,omitempty"`
	TotalVisitors      *int     `json:"total_visitors,omitempty"`
	CategoryCount      *int     `json:"category_count,omitempty"`
	AvgPostLength      *int     `json:"avg_post_length,omitempty"`
	RecentActivityDays *int     `json:"recent_activity_days,omitempty"`
	PostsLast30Days    *int     `json:"posts_last_30_days,omitempty"`
	BlogAgeDays        *int     `json:"blog_age_days,omitempty"`
	OfficialLevel      *int     `json:"official_level,omitempty"` // 1-4 platform tier
	DataSources        []string `json:"data_sources"`

	// SourceLimited marks stats derived from a fixed-window feed that
	// likely undercounts true volume (e.g. an RSS feed capped at 30
	// entries for a blog with hundreds of posts).
	SourceLimited bool `json:"source_limited,omitempty"`
}

// KeywordStats carries the keyword-specific signals for the analyzed blog.
type KeywordStats struct {
	RelatedPostCount *int `json:"related_post_count,omitempty"`
	CurrentRank      *int `json:"current_rank,omitempty"` // 1-based SERP position if already ranking
}

// SearchResultItem is one competing result from the search page.
type SearchResultItem struct {
	BlogID        string     `json:"blog_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	OfficialLevel *int       `json:"official_level,omitempty"`
	TotalScore    *float64   `json:"total_score,omitempty"`
	ContentLength *int       `json:"content_length,omitempty"`
	PostDate      *time.Time `json:"post_date,omitempty"`
}

// AxisComponent is one normalized sub-metric inside a composite axis.
type AxisComponent struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// CompositeScoreResult is the calibrated authority score for one blog.
type CompositeScoreResult struct {
	TotalScore    float64         `json:"total_score"` // 0-100
	Level         int             `json:"level"`       // 1-10
	Grade         string          `json:"grade"`
	LevelCategory string          `json:"level_category"` // top / mid / growth
	Percentile    float64         `json:"percentile"`     // estimated "top N%"
	Axis1         float64         `json:"axis1_score"`    // topical/content
	Axis2         float64         `json:"axis2_score"`    // trust/freshness
	Axis1Detail   []AxisComponent `json:"axis1_detail"`
	Axis2Detail   []AxisComponent `json:"axis2_detail"`
	ExtraBonus    float64         `json:"extra_bonus"`
	Warnings      []string        `json:"warnings,omitempty"`
}

// Difficulty classifies how contested a keyword is.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "very_hard"
	DifficultyUnknown  Difficulty = "unknown"
)

// KeywordDifficulty is the assessed competitiveness of one keyword.
type KeywordDifficulty struct {
	Difficulty     Difficulty `json:"difficulty"`
	Score          float64    `json:"difficulty_score"` // 0-100
	LevelFloor     int        `json:"level_floor"`      // 1-4
	HighLevelCount int        `json:"high_level_count"`
	KnownLevels    int        `json:"known_levels"`
}

// DimensionResult is one of the six weighted comparison dimensions.
type DimensionResult struct {
	ID            string  `json:"dimension_id"`
	Label         string  `json:"label"`
	Score         float64 `json:"score"` // 0-100
	Detail        string  `json:"detail"`
	MyValue       float64 `json:"my_value"`
	CompetitorAvg float64 `json:"competitor_avg"`
	Weight        float64 `json:"weight"`
}

// Confidence communicates residual uncertainty from missing competitor data.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// CompetitivePosition is the predicted outcome for the analyzed keyword.
type CompetitivePosition struct {
	ProbabilityLow  int        `json:"probability_low"`  // 1-95
	ProbabilityMid  int        `json:"probability_mid"`  // low <= mid <= high
	ProbabilityHigh int        `json:"probability_high"` // <= 95
	RankBest        int        `json:"rank_best"`        // 1..N+1
	RankWorst       int        `json:"rank_worst"`       // rank_best <= rank_worst <= N+1
	WeightedScore   float64    `json:"weighted_score"`
	Grade           string     `json:"grade"`
	GradeLabel      string     `json:"grade_label"`
	Confidence      Confidence `json:"confidence"`
}

// Recommendation is one piece of rule-based advice.
type Recommendation struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// DataQuality annotates an analysis with everything the collectors could
// not observe, so missing data surfaces instead of being fabricated.
type DataQuality struct {
	Warnings    []string `json:"warnings"`
	Limitations []string `json:"limitations"`
}

// MyBlogSummary summarizes the analyzed blog inside an analysis result.
type MyBlogSummary struct {
	OfficialLevel    int  `json:"official_level"`
	LevelEstimated   bool `json:"level_estimated"`
	RelatedPostCount int  `json:"related_post_count"`
	AlreadyRanking   bool `json:"already_ranking"`
	CurrentRank      int  `json:"current_rank,omitempty"`
}

// CompetitiveAnalysisResult is the full output for one blog/keyword pair.
type CompetitiveAnalysisResult struct {
	Keyword         string              `json:"keyword"`
	MyBlog          MyBlogSummary       `json:"my_blog"`
	Difficulty      KeywordDifficulty   `json:"keyword_difficulty"`
	Position        CompetitivePosition `json:"competitive_position"`
	Dimensions      []DimensionResult   `json:"dimension_comparisons"`
	Recommendations []Recommendation    `json:"recommendations"`
	DataQuality     DataQuality         `json:"data_quality"`
}

// MaxResults is the largest competing-result set the engine accepts.
const MaxResults = 10

// ValidateStats rejects malformed signal shapes. Missing fields are fine.
func ValidateStats(s BlogStats) error {
	if s.OfficialLevel != nil && (*s.OfficialLevel < 1 || *s.OfficialLevel > 4) {
		return fmt.Errorf("%w: official_level %d outside 1-4", ErrInvalidInput, *s.OfficialLevel)
	}
	for name, v := range map[string]*int{
		"total_posts":          s.TotalPosts,
		"neighbor_count":       s.NeighborCount,
		"total_visitors":       s.TotalVisitors,
		"category_count":       s.CategoryCount,
		"avg_post_length":      s.AvgPostLength,
		"recent_activity_days": s.RecentActivityDays,
		"posts_last_30_days":   s.PostsLast30Days,
		"blog_age_days":        s.BlogAgeDays,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidInput, name)
		}
	}
	return nil
}

// ValidateResults rejects malformed competing-result sets.
func ValidateResults(results []SearchResultItem) error {
	if len(results) > MaxResults {
		return fmt.Errorf("%w: %d results, max %d", ErrInvalidInput, len(results), MaxResults)
	}
	for i, r := range results {
		if r.OfficialLevel != nil && (*r.OfficialLevel < 1 || *r.OfficialLevel > 4) {
			return fmt.Errorf("%w: result %d official_level %d outside 1-4", ErrInvalidInput, i, *r.OfficialLevel)
		}
	}
	return nil
}

func intVal(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
