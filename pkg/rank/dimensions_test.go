package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func daysAgo(d int) *time.Time {
	t := testNow.AddDate(0, 0, -d)
	return &t
}

func TestDimensionWeightsSumToOne(t *testing.T) {
	sum := weightBlogLevel + weightTopicalAuthority + weightContentFreshness +
		weightContentQuality + weightKeywordOptimization + weightPostingConsistency
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestScoreBlogLevel(t *testing.T) {
	cases := []struct {
		name       string
		myLevel    int
		compLevels []int
		want       float64
	}{
		{"level 4 dominates", 4, []int{3, 3, 4}, 90},
		{"level 3 vs weaker field", 3, []int{2, 3, 2}, 72},
		{"level 3 vs stronger field", 3, []int{4, 4, 3, 3}, 58},
		{"level 2 vs low field", 2, []int{2, 1, 2}, 50},
		{"level 2 vs mid field", 2, []int{3, 3, 2}, 30},
		{"level 2 vs high field", 2, []int{4, 4, 3}, 18},
		{"level 1 vs bottom field", 1, []int{1, 1, 2}, 35},
		{"level 1 vs mid field", 1, []int{2, 3, 2}, 22},
		{"level 1 vs high field", 1, []int{4, 3, 4}, 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, _ := scoreBlogLevel(tc.myLevel, resultsWithLevels(tc.compLevels...))
			assert.Equal(t, tc.want, d.Score)
			assert.LessOrEqual(t, d.Score, 100.0)
		})
	}
}

func TestScoreBlogLevelCeiling(t *testing.T) {
	// A level-1 blog may never exceed 35 regardless of the field.
	d, _ := scoreBlogLevel(1, resultsWithLevels(1, 1, 1, 1))
	assert.LessOrEqual(t, d.Score, 35.0)
}

func TestScoreBlogLevelUnknownField(t *testing.T) {
	d, warn := scoreBlogLevel(2, resultsWithLevels(0, 0, 0))
	assert.NotEmpty(t, warn)
	assert.Equal(t, 2.0, d.CompetitorAvg, "falls back to platform median")
}

func TestScoreTopicalAuthority(t *testing.T) {
	cases := []struct {
		name    string
		related int
		total   *int
		want    float64
	}{
		{"none", 0, nil, 5},
		{"one", 1, nil, 25},
		{"three", 3, nil, 45},
		{"ten", 10, nil, 85},
		{"fifteen", 15, nil, 95},
		{"focused bonus", 6, iptr(15), 80},   // 65 base, 6/15 = 0.4 >= 0.30
		{"unfocused penalty", 6, iptr(500), 55}, // 65 base, 6/500 < 0.05
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, _ := scoreTopicalAuthority(tc.related, tc.total)
			assert.Equal(t, tc.want, d.Score)
		})
	}
}

func TestScoreContentFreshness(t *testing.T) {
	stale := []SearchResultItem{
		{PostDate: daysAgo(400)}, {PostDate: daysAgo(500)}, {PostDate: daysAgo(380)},
	}
	d, warn := scoreContentFreshness(stale, testNow)
	assert.Equal(t, 80.0, d.Score, "stale competitors are an opportunity")
	assert.Empty(t, warn)

	fresh := make([]SearchResultItem, 10)
	for i := range fresh {
		fresh[i] = SearchResultItem{PostDate: daysAgo(5)}
	}
	d, _ = scoreContentFreshness(fresh, testNow)
	assert.Equal(t, 5.0, d.Score, "20 base minus 15 saturation penalty")

	d, warn = scoreContentFreshness([]SearchResultItem{{}, {}}, testNow)
	assert.Equal(t, float64(neutralScore), d.Score)
	assert.NotEmpty(t, warn)
}

func TestScoreContentQuality(t *testing.T) {
	d, warn := scoreContentQuality(nil, nil)
	assert.Equal(t, float64(neutralScore), d.Score)
	assert.NotEmpty(t, warn)

	d, _ = scoreContentQuality(iptr(600), nil)
	assert.Equal(t, 85.0, d.Score)

	d, _ = scoreContentQuality(iptr(80), nil)
	assert.Equal(t, 15.0, d.Score)

	comp := []SearchResultItem{{ContentLength: iptr(400)}, {ContentLength: iptr(400)}}
	d, _ = scoreContentQuality(iptr(600), comp)
	assert.Equal(t, 95.0, d.Score, "85 plus longer-than-competitors bonus")

	d, _ = scoreContentQuality(iptr(150), comp)
	assert.Equal(t, 15.0, d.Score, "30 minus much-shorter penalty")
}

func TestScoreKeywordOptimization(t *testing.T) {
	mk := func(titles ...string) []SearchResultItem {
		items := make([]SearchResultItem, len(titles))
		for i, ti := range titles {
			items[i] = SearchResultItem{Title: ti}
		}
		return items
	}

	cases := []struct {
		name   string
		titles []string
		want   float64
	}{
		{"saturated", []string{"camping chairs review", "best camping chairs", "camping chairs 2026", "camping chairs guide", "top camping chairs"}, 50},
		{"sweet spot", []string{"camping chairs review", "best camping chairs", "camping chairs 2026", "outdoor gear", "hiking boots"}, 65},
		{"weak", []string{"camping chairs review", "camping chairs tips", "hiking boots", "tents", "sleeping bags"}, 45},
		{"poor match", []string{"outdoor gear", "hiking boots", "tents", "sleeping bags", "lanterns"}, 30},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, _ := scoreKeywordOptimization("camping chairs", mk(tc.titles...))
			assert.Equal(t, tc.want, d.Score)
		})
	}
}

func TestTitleMatchesKeyword(t *testing.T) {
	assert.True(t, titleMatchesKeyword("Best Camping Chairs of 2026", "camping chairs"))
	assert.True(t, titleMatchesKeyword("chairs you can take camping", "camping chairs"), "all significant words")
	assert.False(t, titleMatchesKeyword("best camping stoves", "camping chairs"))
	assert.False(t, titleMatchesKeyword("anything", ""))
}

func TestScorePostingConsistency(t *testing.T) {
	d, _ := scorePostingConsistency(BlogStats{
		RecentActivityDays: iptr(2),
		PostsLast30Days:    iptr(12),
		BlogAgeDays:        iptr(400),
	})
	assert.Equal(t, 95.0, d.Score, "50 recency + 30 frequency + 15 age")

	d, _ = scorePostingConsistency(BlogStats{
		RecentActivityDays: iptr(120),
	})
	assert.Equal(t, 5.0, d.Score)
}

func TestAnalyzeDimensionsInvariants(t *testing.T) {
	out := analyzeDimensions(dimensionInput{
		stats:   fullStats(),
		keyword: "camping chairs",
		related: 4,
		myLevel: 3,
		results: resultsWithLevels(3, 3, 2, 2, 1),
		now:     testNow,
	})

	require.Len(t, out.dimensions, 6)
	var weightSum float64
	for _, d := range out.dimensions {
		assert.GreaterOrEqual(t, d.Score, 0.0, d.ID)
		assert.LessOrEqual(t, d.Score, 100.0, d.ID)
		weightSum += d.Weight
	}
	assert.InDelta(t, 1.0, weightSum, 1e-6)
	assert.GreaterOrEqual(t, out.weightedScore, 5.0)
	assert.LessOrEqual(t, out.weightedScore, 100.0)
}

func TestNeglectPenalty(t *testing.T) {
	base := BlogStats{
		TotalPosts:    iptr(300),
		NeighborCount: iptr(800),
		AvgPostLength: iptr(600),
		OfficialLevel: iptr(3),
		DataSources:   []string{"feed", "widget"},
	}

	active := base
	active.RecentActivityDays = iptr(5)
	active.PostsLast30Days = iptr(6)

	quiet := base
	quiet.RecentActivityDays = iptr(120)
	quiet.PostsLast30Days = iptr(0)

	dormant := base
	dormant.RecentActivityDays = iptr(200)
	dormant.PostsLast30Days = iptr(0)

	in := func(s BlogStats) dimensionInput {
		return dimensionInput{
			stats: s, keyword: "k", related: 4, myLevel: 3,
			results: resultsWithLevels(2, 2, 2), now: testNow,
		}
	}

	activeOut := analyzeDimensions(in(active))
	quietOut := analyzeDimensions(in(quiet))
	dormantOut := analyzeDimensions(in(dormant))

	assert.Greater(t, activeOut.weightedScore, quietOut.weightedScore)
	assert.Greater(t, quietOut.weightedScore, dormantOut.weightedScore)
	assert.GreaterOrEqual(t, dormantOut.weightedScore, 5.0)
}
