// Package service wires the collectors, engine, store and cache into the
// analysis pipeline shared by the CLI, the HTTP server and the scheduler.
package service

import (
	"context"
	"fmt"
	"os"

	"github.com/elonfeng/blogrank/internal/cache"
	"github.com/elonfeng/blogrank/internal/store"
	"github.com/elonfeng/blogrank/pkg/rank"
	"github.com/elonfeng/blogrank/pkg/source"
)

// RelatedCounter counts keyword-related posts on the analyzed blog.
type RelatedCounter interface {
	CountRelated(ctx context.Context, blogID, keyword string) (count int, windowLimited bool, err error)
}

// Service runs full analyses end to end.
type Service struct {
	stats    []source.StatsSource
	serp     source.SerpSource
	related  RelatedCounter
	analyzer *rank.Analyzer
	store    store.Store
	cache    *cache.Cache
}

// New assembles the pipeline. serp, related, store and cache may be nil;
// the corresponding step degrades (no competitors, no related count, no
// persistence, no caching).
func New(stats []source.StatsSource, serp source.SerpSource, related RelatedCounter, analyzer *rank.Analyzer, st store.Store, c *cache.Cache) *Service {
	return &Service{
		stats:    stats,
		serp:     serp,
		related:  related,
		analyzer: analyzer,
		store:    st,
		cache:    c,
	}
}

// CollectStats merges signals from every configured stats source. A source
// error is logged and skipped; only all sources failing is an error.
func (s *Service) CollectStats(ctx context.Context, blogID string) (rank.BlogStats, error) {
	var parts []rank.BlogStats
	var lastErr error
	for _, src := range s.stats {
		stats, err := src.CollectStats(ctx, blogID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "source %s error for %s: %v\n", src.Name(), blogID, err)
			lastErr = err
			continue
		}
		parts = append(parts, stats)
	}
	if len(parts) == 0 {
		if lastErr != nil {
			return rank.BlogStats{}, fmt.Errorf("collect stats for %s: %w", blogID, lastErr)
		}
		return rank.BlogStats{}, fmt.Errorf("collect stats for %s: no sources configured", blogID)
	}
	return source.MergeStats(parts...), nil
}

// Score collects signals and computes the composite authority score,
// recording a history snapshot when a store is configured.
func (s *Service) Score(ctx context.Context, blogID string) (*rank.CompositeScoreResult, error) {
	stats, err := s.CollectStats(ctx, blogID)
	if err != nil {
		return nil, err
	}

	result, err := s.analyzer.Score(stats)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.AddScoreSnapshot(ctx, blogID, result); err != nil {
			fmt.Fprintf(os.Stderr, "score snapshot error for %s: %v\n", blogID, err)
		}
	}
	return &result, nil
}

// Analyze runs the full competitive analysis for one blog/keyword pair:
// collect signals, scrape the top results, count related posts, run the
// engine, then persist and cache the result.
func (s *Service) Analyze(ctx context.Context, blogID, keyword string) (*rank.CompetitiveAnalysisResult, error) {
	if cached, err := s.cache.GetAnalysis(ctx, blogID, keyword); err == nil {
		return cached, nil
	}

	stats, err := s.CollectStats(ctx, blogID)
	if err != nil {
		return nil, err
	}

	var results []rank.SearchResultItem
	if s.serp != nil {
		results, err = s.serp.CollectResults(ctx, keyword)
		if err != nil {
			return nil, fmt.Errorf("collect results for %q: %w", keyword, err)
		}
	}

	var kw rank.KeywordStats
	if s.related != nil {
		count, limited, err := s.related.CountRelated(ctx, blogID, keyword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "related count error for %s/%q: %v\n", blogID, keyword, err)
		} else {
			kw.RelatedPostCount = &count
			stats.SourceLimited = stats.SourceLimited || limited
		}
	}
	if pos := source.FindRank(results, blogID); pos > 0 {
		kw.CurrentRank = &pos
	}

	result, err := s.analyzer.Analyze(rank.AnalysisRequest{
		Keyword: keyword,
		Stats:   stats,
		KwStats: kw,
		Results: results,
	})
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if _, err := s.store.SaveAnalysis(ctx, blogID, keyword, result); err != nil {
			fmt.Fprintf(os.Stderr, "save analysis error for %s/%q: %v\n", blogID, keyword, err)
		}
	}
	if err := s.cache.SetAnalysis(ctx, blogID, keyword, result); err != nil {
		fmt.Fprintf(os.Stderr, "cache error for %s/%q: %v\n", blogID, keyword, err)
	}
	return result, nil
}
