package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario: a small level-1 blog attacks a keyword held by level 3-4 blogs.
func TestAnalyzeOutmatchedBlog(t *testing.T) {
	results := resultsWithLevels(3, 4, 3, 3, 4, 3, 3, 4, 0, 0)

	res, err := NewAnalyzer(nil).Analyze(AnalysisRequest{
		Keyword: "camping chairs",
		Stats: BlogStats{
			TotalPosts:    iptr(20),
			NeighborCount: iptr(30),
			OfficialLevel: iptr(1),
			DataSources:   []string{"feed", "widget"},
		},
		KwStats: KeywordStats{RelatedPostCount: iptr(5)},
		Results: results,
		Now:     testNow,
	})
	require.NoError(t, err)

	assert.Equal(t, DifficultyVeryHard, res.Difficulty.Difficulty)
	assert.Equal(t, 3, res.Difficulty.LevelFloor)
	assert.LessOrEqual(t, res.Position.ProbabilityHigh, 18,
		"level gap of 2 caps the probability")
	assert.NotEmpty(t, res.DataQuality.Limitations)

	// The critical raise-your-level recommendation must fire.
	var critical bool
	for _, r := range res.Recommendations {
		if r.Type == RecCritical {
			critical = true
		}
	}
	assert.True(t, critical)
}

// Scenario: solid blog, but nothing is known about the competitors.
func TestAnalyzeUnknownField(t *testing.T) {
	results := resultsWithLevels(0, 0, 0, 0, 0)

	res, err := NewAnalyzer(nil).Analyze(AnalysisRequest{
		Keyword: "camping chairs",
		Stats: BlogStats{
			TotalPosts:    iptr(200),
			OfficialLevel: iptr(3),
			DataSources:   []string{"feed", "widget"},
		},
		KwStats: KeywordStats{RelatedPostCount: iptr(6)},
		Results: results,
		Now:     testNow,
	})
	require.NoError(t, err)

	assert.Equal(t, DifficultyUnknown, res.Difficulty.Difficulty)
	assert.Equal(t, ConfidenceLow, res.Position.Confidence)
	assert.Len(t, res.Dimensions, 6, "dimension scoring still fully computed")
	assert.NotEmpty(t, res.DataQuality.Warnings)
}

// Scenario: the blog already holds position 4.
func TestAnalyzeAlreadyRanking(t *testing.T) {
	res, err := NewAnalyzer(nil).Analyze(AnalysisRequest{
		Keyword: "camping chairs",
		Stats: BlogStats{
			OfficialLevel: iptr(3),
			TotalPosts:    iptr(150),
			DataSources:   []string{"feed", "widget"},
		},
		KwStats: KeywordStats{
			RelatedPostCount: iptr(8),
			CurrentRank:      iptr(4),
		},
		Results: resultsWithLevels(3, 2, 3, 2, 2),
		Now:     testNow,
	})
	require.NoError(t, err)

	assert.Equal(t, 70, res.Position.ProbabilityLow)
	assert.Equal(t, 85, res.Position.ProbabilityMid)
	assert.Equal(t, 95, res.Position.ProbabilityHigh)
	assert.Equal(t, 3, res.Position.RankBest)
	assert.Equal(t, 5, res.Position.RankWorst)
	assert.True(t, res.MyBlog.AlreadyRanking)
}

func TestAnalyzeEstimatesMissingLevel(t *testing.T) {
	res, err := NewAnalyzer(nil).Analyze(AnalysisRequest{
		Keyword: "camping chairs",
		Stats:   BlogStats{DataSources: []string{"feed"}},
		Results: resultsWithLevels(2, 2, 1),
		Now:     testNow,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.MyBlog.OfficialLevel)
	assert.True(t, res.MyBlog.LevelEstimated)
	assert.Contains(t, res.DataQuality.Warnings, "official level unavailable, estimated as tier 1")
}

func TestAnalyzeValidation(t *testing.T) {
	a := NewAnalyzer(nil)

	_, err := a.Analyze(AnalysisRequest{Keyword: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = a.Analyze(AnalysisRequest{
		Keyword: "k",
		Stats:   BlogStats{OfficialLevel: iptr(7)},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = a.Analyze(AnalysisRequest{
		Keyword: "k",
		Results: make([]SearchResultItem, MaxResults+1),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = a.Analyze(AnalysisRequest{
		Keyword: "k",
		KwStats: KeywordStats{CurrentRank: iptr(0)},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnalyzeDeterministic(t *testing.T) {
	req := AnalysisRequest{
		Keyword: "camping chairs",
		Stats:   fullStats(),
		KwStats: KeywordStats{RelatedPostCount: iptr(4)},
		Results: resultsWithLevels(3, 2, 2, 1, 3),
		Now:     testNow,
	}

	a := NewAnalyzer(NewStaticWeights(nil))
	first, err := a.Analyze(req)
	require.NoError(t, err)
	second, err := a.Analyze(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAnalyzePositionInvariants(t *testing.T) {
	levels := [][]int{
		{3, 3, 3, 2, 2, 2, 1, 1, 4, 4},
		{0, 0, 0},
		{4, 4, 4, 4, 4},
		{1, 1},
	}
	for _, lv := range levels {
		for _, related := range []int{0, 2, 9} {
			res, err := NewAnalyzer(nil).Analyze(AnalysisRequest{
				Keyword: "k",
				Stats:   fullStats(),
				KwStats: KeywordStats{RelatedPostCount: iptr(related)},
				Results: resultsWithLevels(lv...),
				Now:     testNow,
			})
			require.NoError(t, err)

			p := res.Position
			assert.GreaterOrEqual(t, p.ProbabilityLow, 1)
			assert.LessOrEqual(t, p.ProbabilityLow, p.ProbabilityMid)
			assert.LessOrEqual(t, p.ProbabilityMid, p.ProbabilityHigh)
			assert.LessOrEqual(t, p.ProbabilityHigh, 95)
			assert.GreaterOrEqual(t, p.RankBest, 1)
			assert.LessOrEqual(t, p.RankBest, p.RankWorst)
			assert.LessOrEqual(t, p.RankWorst, len(lv)+1)
		}
	}
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, ConfidenceLow, confidence(nil))
	assert.Equal(t, ConfidenceLow, confidence(resultsWithLevels(0, 0, 0, 0, 3)))
	assert.Equal(t, ConfidenceMedium, confidence(resultsWithLevels(3, 2, 0, 0, 0)))
	assert.Equal(t, ConfidenceHigh, confidence(resultsWithLevels(3, 2, 1, 4, 0)))
}
