package source

import (
	"context"

	"github.com/elonfeng/blogrank/pkg/rank"
)

// StatsSource collects raw blog signals from one upstream.
type StatsSource interface {
	Name() string
	CollectStats(ctx context.Context, blogID string) (rank.BlogStats, error)
}

// SerpSource fetches the top competing results for a keyword.
type SerpSource interface {
	Name() string
	CollectResults(ctx context.Context, keyword string) ([]rank.SearchResultItem, error)
}

// MergeStats combines partial signal sets from several sources into one
// BlogStats. Later sources fill gaps but never overwrite a signal an
// earlier source already provided; data-source names accumulate so the
// engine can apply its quality penalties.
func MergeStats(parts ...rank.BlogStats) rank.BlogStats {
	var out rank.BlogStats
	for _, p := range parts {
		fill(&out.TotalPosts, p.TotalPosts)
		fill(&out.NeighborCount, p.NeighborCount)
		fill(&out.TotalVisitors, p.TotalVisitors)
		fill(&out.CategoryCount, p.CategoryCount)
		fill(&out.AvgPostLength, p.AvgPostLength)
		fill(&out.RecentActivityDays, p.RecentActivityDays)
		fill(&out.PostsLast30Days, p.PostsLast30Days)
		fill(&out.BlogAgeDays, p.BlogAgeDays)
		fill(&out.OfficialLevel, p.OfficialLevel)
		out.SourceLimited = out.SourceLimited || p.SourceLimited
		for _, src := range p.DataSources {
			if !contains(out.DataSources, src) {
				out.DataSources = append(out.DataSources, src)
			}
		}
	}
	return out
}

// FindRank returns the 1-based position of blogID in results, or 0 when
// the blog is not ranking.
func FindRank(results []rank.SearchResultItem, blogID string) int {
	for i, r := range results {
		if r.BlogID == blogID {
			return i + 1
		}
	}
	return 0
}

func fill(dst **int, src *int) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
