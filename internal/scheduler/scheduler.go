package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/elonfeng/blogrank/internal/cache"
	"github.com/elonfeng/blogrank/internal/service"
	"github.com/elonfeng/blogrank/internal/store"
	"github.com/elonfeng/blogrank/pkg/alert"
	"github.com/elonfeng/blogrank/pkg/rank"
)

// Pair is one tracked blog/keyword combination.
type Pair struct {
	BlogID  string
	Keyword string
}

// Scheduler periodically re-analyzes tracked pairs, reloads trained engine
// weights from the store, and alerts on probability movement.
type Scheduler struct {
	svc        *service.Service
	store      store.Store
	weights    *rank.SwappableWeights
	cache      *cache.Cache
	alertMgr   *alert.Manager
	tracked    []Pair
	analyzeInt time.Duration
	weightsInt time.Duration
	minDelta   int
}

// New creates a new scheduler.
func New(
	svc *service.Service,
	st store.Store,
	weights *rank.SwappableWeights,
	c *cache.Cache,
	alertMgr *alert.Manager,
	tracked []Pair,
	analyzeInt, weightsInt time.Duration,
	minDelta int,
) *Scheduler {
	if analyzeInt == 0 {
		analyzeInt = 6 * time.Hour
	}
	if weightsInt == 0 {
		weightsInt = time.Hour
	}
	if minDelta <= 0 {
		minDelta = 10
	}
	return &Scheduler{
		svc:        svc,
		store:      st,
		weights:    weights,
		cache:      c,
		alertMgr:   alertMgr,
		tracked:    tracked,
		analyzeInt: analyzeInt,
		weightsInt: weightsInt,
		minDelta:   minDelta,
	}
}

// Run starts the scheduler loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	analyzeTicker := time.NewTicker(s.analyzeInt)
	weightsTicker := time.NewTicker(s.weightsInt)
	defer analyzeTicker.Stop()
	defer weightsTicker.Stop()

	// Run immediately on start.
	fmt.Fprintln(os.Stderr, "scheduler: loading weights...")
	s.reloadWeights(ctx)
	fmt.Fprintln(os.Stderr, "scheduler: initial analysis...")
	s.analyzeAll(ctx)

	fmt.Fprintf(os.Stderr, "scheduler: running (analyze every %s, weights every %s)\n",
		s.analyzeInt, s.weightsInt)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "scheduler: stopped")
			return ctx.Err()
		case <-analyzeTicker.C:
			fmt.Fprintln(os.Stderr, "scheduler: analyzing tracked pairs...")
			s.analyzeAll(ctx)
		case <-weightsTicker.C:
			s.reloadWeights(ctx)
		}
	}
}

// reloadWeights swaps in the active trained weight set, if any. Readers in
// flight keep the snapshot they started with.
func (s *Scheduler) reloadWeights(ctx context.Context) {
	if s.weights == nil || s.store == nil {
		return
	}
	ws, err := s.store.ActiveWeightSet(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "  weight reload error: %v\n", err)
		return
	}
	s.weights.Swap(ws)
	fmt.Fprintln(os.Stderr, "  weights: active trained set loaded")
}

func (s *Scheduler) analyzeAll(ctx context.Context) {
	for _, p := range s.tracked {
		prevMid, hasPrev := s.lastMid(ctx, p)

		// A cached result would hide real movement between runs.
		_ = s.cache.Invalidate(ctx, p.BlogID, p.Keyword)

		result, err := s.svc.Analyze(ctx, p.BlogID, p.Keyword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s/%q error: %v\n", p.BlogID, p.Keyword, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "  %s/%q: probability %d%%, position %d-%d\n",
			p.BlogID, p.Keyword, result.Position.ProbabilityMid,
			result.Position.RankBest, result.Position.RankWorst)

		if !hasPrev || !s.alertMgr.HasNotifiers() {
			continue
		}
		delta := result.Position.ProbabilityMid - prevMid
		if delta < s.minDelta && delta > -s.minDelta {
			continue
		}

		n := &alert.Notification{
			BlogID:         p.BlogID,
			Keyword:        p.Keyword,
			ProbabilityMid: result.Position.ProbabilityMid,
			PreviousMid:    prevMid,
			RankBest:       result.Position.RankBest,
			RankWorst:      result.Position.RankWorst,
			Difficulty:     string(result.Difficulty.Difficulty),
		}
		n.Message = alert.Summary(n)

		if err := s.alertMgr.Broadcast(ctx, n); err != nil {
			fmt.Fprintf(os.Stderr, "  alert error for %s/%q: %v\n", p.BlogID, p.Keyword, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "  alerted: %s/%q (%+d points)\n", p.BlogID, p.Keyword, delta)
	}
}

// lastMid returns the mid probability of the most recent stored analysis.
func (s *Scheduler) lastMid(ctx context.Context, p Pair) (int, bool) {
	if s.store == nil {
		return 0, false
	}
	prev, err := s.store.ListAnalyses(ctx, store.AnalysisListOpts{
		BlogID:  p.BlogID,
		Keyword: p.Keyword,
		Limit:   1,
	})
	if err != nil || len(prev) == 0 {
		return 0, false
	}
	return prev[0].Probability, true
}
