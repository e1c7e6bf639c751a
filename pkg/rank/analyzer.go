// Package rank implements the search-ranking competitiveness engine: it
// turns raw, partially missing blog signals into a calibrated 0-100
// authority score, and predicts how a blog would fare for a target keyword
// against its top competing results.
//
// The engine is synchronous and pure. All I/O (feed fetching, search-page
// scraping, persistence) belongs to the collaborators in pkg/source,
// internal/store and pkg/server; given the same inputs and the same weight
// snapshot the engine always returns identical output.
package rank

import (
	"fmt"
	"math"
	"time"
)

// AnalysisRequest is the full input for one competitive analysis.
type AnalysisRequest struct {
	Keyword string             `json:"keyword"`
	Stats   BlogStats          `json:"stats"`
	KwStats KeywordStats       `json:"keyword_stats"`
	Results []SearchResultItem `json:"results"`

	// Now anchors all age computations. The zero value means "use the
	// wall clock"; tests pin it for reproducibility.
	Now time.Time `json:"-"`
}

// Analyzer runs competitive analyses against one weight provider.
type Analyzer struct {
	weights WeightProvider
}

// NewAnalyzer creates an analyzer. A nil provider means default weights.
func NewAnalyzer(weights WeightProvider) *Analyzer {
	return &Analyzer{weights: weights}
}

// Score computes the composite authority score for one blog.
func (a *Analyzer) Score(stats BlogStats) (CompositeScoreResult, error) {
	if err := ValidateStats(stats); err != nil {
		return CompositeScoreResult{}, err
	}
	return Score(stats, a.weights), nil
}

// Analyze runs the full pipeline: keyword difficulty, the six comparison
// dimensions, the probability/rank estimate, and recommendations. Missing
// signals degrade into warnings; only malformed shapes return an error.
func (a *Analyzer) Analyze(req AnalysisRequest) (*CompetitiveAnalysisResult, error) {
	if req.Keyword == "" {
		return nil, fmt.Errorf("%w: empty keyword", ErrInvalidInput)
	}
	if err := ValidateStats(req.Stats); err != nil {
		return nil, err
	}
	if err := ValidateResults(req.Results); err != nil {
		return nil, err
	}
	if r := req.KwStats.CurrentRank; r != nil && (*r < 1 || *r > MaxResults) {
		return nil, fmt.Errorf("%w: current_rank %d outside 1-%d", ErrInvalidInput, *r, MaxResults)
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var quality DataQuality

	// Effective level: official when known, otherwise estimated as the
	// bottom tier and flagged. Fabricating a plausible level from stats
	// was considered and rejected; the caller gets the honest floor.
	myLevel := intVal(req.Stats.OfficialLevel, 1)
	estimated := req.Stats.OfficialLevel == nil
	if estimated {
		quality.Warnings = append(quality.Warnings, "official level unavailable, estimated as tier 1")
	}

	related := intVal(req.KwStats.RelatedPostCount, 0)
	if req.KwStats.RelatedPostCount == nil {
		quality.Warnings = append(quality.Warnings, "related post count unavailable, treated as 0")
	}

	difficulty := AssessDifficulty(req.Results)
	if difficulty.Difficulty == DifficultyUnknown {
		quality.Warnings = append(quality.Warnings, "no competitor levels known, keyword difficulty unknown")
	} else if difficulty.KnownLevels < 3 {
		quality.Warnings = append(quality.Warnings, "competitor levels insufficient for reliable difficulty classification")
	}

	dims := analyzeDimensions(dimensionInput{
		stats:   req.Stats,
		keyword: req.Keyword,
		related: related,
		myLevel: myLevel,
		results: req.Results,
		now:     now,
	})
	quality.Warnings = append(quality.Warnings, dims.warnings...)

	currentRank := intVal(req.KwStats.CurrentRank, 0)
	est := estimateInput{
		weightedScore: dims.weightedScore,
		difficulty:    difficulty,
		myLevel:       myLevel,
		related:       related,
		totalPosts:    intVal(req.Stats.TotalPosts, 0),
		sourceLimited: req.Stats.SourceLimited,
		currentRank:   currentRank,
		results:       req.Results,
	}

	prob, limitations := estimateProbability(est)
	quality.Limitations = append(quality.Limitations, limitations...)
	if est.sourceLimitedRelated() && related > 0 {
		quality.Limitations = append(quality.Limitations,
			"related-post count observed through a fixed window and may undercount")
	}

	rankBest, rankWorst := estimateRank(est)
	grade, gradeLabel := positionGrade(dims.weightedScore)

	position := CompetitivePosition{
		ProbabilityLow:  int(math.Round(prob.low)),
		ProbabilityMid:  int(math.Round(prob.mid)),
		ProbabilityHigh: int(math.Round(prob.high)),
		RankBest:        rankBest,
		RankWorst:       rankWorst,
		WeightedScore:   dims.weightedScore,
		Grade:           grade,
		GradeLabel:      gradeLabel,
		Confidence:      confidence(req.Results),
	}

	dimsByID := make(map[string]DimensionResult, len(dims.dimensions))
	for _, d := range dims.dimensions {
		dimsByID[d.ID] = d
	}

	recs := recommend(recommendInput{
		alreadyRanking: currentRank > 0,
		currentRank:    currentRank,
		myLevel:        myLevel,
		levelFloor:     difficulty.LevelFloor,
		related:        related,
		dims:           dimsByID,
	})

	if quality.Warnings == nil {
		quality.Warnings = []string{}
	}
	if quality.Limitations == nil {
		quality.Limitations = []string{}
	}

	return &CompetitiveAnalysisResult{
		Keyword: req.Keyword,
		MyBlog: MyBlogSummary{
			OfficialLevel:    myLevel,
			LevelEstimated:   estimated,
			RelatedPostCount: related,
			AlreadyRanking:   currentRank > 0,
			CurrentRank:      currentRank,
		},
		Difficulty:      difficulty,
		Position:        position,
		Dimensions:      dims.dimensions,
		Recommendations: recs,
		DataQuality:     quality,
	}, nil
}

// confidence reflects how much of the competitive set is actually known.
func confidence(results []SearchResultItem) Confidence {
	if len(results) == 0 {
		return ConfidenceLow
	}
	known := 0
	for _, r := range results {
		if r.OfficialLevel != nil {
			known++
		}
	}
	frac := float64(known) / float64(len(results))
	switch {
	case frac >= 0.7:
		return ConfidenceHigh
	case frac >= 0.3:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
