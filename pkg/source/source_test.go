package source

import (
	"testing"

	"github.com/elonfeng/blogrank/pkg/rank"
)

func iptr(v int) *int { return &v }

func TestMergeStats(t *testing.T) {
	feed := rank.BlogStats{
		RecentActivityDays: iptr(3),
		AvgPostLength:      iptr(700),
		SourceLimited:      true,
		DataSources:        []string{"feed"},
	}
	widget := rank.BlogStats{
		TotalPosts:         iptr(450),
		NeighborCount:      iptr(1200),
		RecentActivityDays: iptr(99), // must not overwrite the feed value
		DataSources:        []string{"widget"},
	}

	merged := MergeStats(feed, widget)

	if got := *merged.RecentActivityDays; got != 3 {
		t.Fatalf("earlier source overwritten: recent_activity_days = %d", got)
	}
	if merged.TotalPosts == nil || *merged.TotalPosts != 450 {
		t.Fatalf("gap not filled from later source")
	}
	if !merged.SourceLimited {
		t.Fatal("source-limited flag lost in merge")
	}
	if len(merged.DataSources) != 2 {
		t.Fatalf("data sources = %v", merged.DataSources)
	}
}

func TestMergeStatsDeduplicatesSources(t *testing.T) {
	a := rank.BlogStats{DataSources: []string{"feed"}}
	b := rank.BlogStats{DataSources: []string{"feed"}}
	if got := MergeStats(a, b).DataSources; len(got) != 1 {
		t.Fatalf("data sources = %v", got)
	}
}

func TestMergeStatsCopies(t *testing.T) {
	v := 10
	in := rank.BlogStats{TotalPosts: &v}
	merged := MergeStats(in)
	v = 99
	if *merged.TotalPosts != 10 {
		t.Fatal("merge aliased the input pointer")
	}
}

func TestFindRank(t *testing.T) {
	results := []rank.SearchResultItem{
		{BlogID: "alpha"}, {BlogID: "beta"}, {BlogID: "gamma"},
	}
	if got := FindRank(results, "beta"); got != 2 {
		t.Fatalf("rank = %d, want 2", got)
	}
	if got := FindRank(results, "missing"); got != 0 {
		t.Fatalf("rank = %d, want 0", got)
	}
}

func TestMatchesKeyword(t *testing.T) {
	cases := []struct {
		text, keyword string
		want          bool
	}{
		{"review of camping chairs for summer", "camping chairs", true},
		{"chairs to bring camping", "camping chairs", true},
		{"camping stoves", "camping chairs", false},
		{"anything", "", false},
	}
	for _, tc := range cases {
		if got := matchesKeyword(tc.text, tc.keyword); got != tc.want {
			t.Errorf("matchesKeyword(%q, %q) = %v", tc.text, tc.keyword, got)
		}
	}
}
