package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/elonfeng/blogrank/internal/cache"
	"github.com/elonfeng/blogrank/internal/config"
	"github.com/elonfeng/blogrank/internal/scheduler"
	"github.com/elonfeng/blogrank/internal/service"
	"github.com/elonfeng/blogrank/internal/store"
	"github.com/elonfeng/blogrank/pkg/alert"
	"github.com/elonfeng/blogrank/pkg/rank"
	"github.com/elonfeng/blogrank/pkg/server"
	"github.com/elonfeng/blogrank/pkg/source"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

// app bundles everything a command needs, built from one config.
type app struct {
	cfg     *config.Config
	db      *store.SQLiteStore
	cache   *cache.Cache
	weights *rank.SwappableWeights
	svc     *service.Service
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	c, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.ParseTTL())
	if err != nil {
		fmt.Fprintf(os.Stderr, "cache disabled: %v\n", err)
	}

	weights := rank.NewSwappableWeights(cfg.Weights)
	if ws, err := db.ActiveWeightSet(ctx); err == nil {
		weights.Swap(ws)
	}

	feed, stats, serp := buildSources(cfg)
	var related service.RelatedCounter
	if feed != nil {
		related = feed
	}

	svc := service.New(stats, serp, related, rank.NewAnalyzer(weights), db, c)
	return &app{cfg: cfg, db: db, cache: c, weights: weights, svc: svc}, nil
}

func (a *app) close() {
	a.cache.Close()
	a.db.Close()
}

func buildSources(cfg *config.Config) (*source.Feed, []source.StatsSource, source.SerpSource) {
	var feed *source.Feed
	var stats []source.StatsSource

	if cfg.Sources.Feed.Enabled && cfg.Sources.Feed.URL != "" {
		feed = source.NewFeed(cfg.Sources.Feed.URL)
		stats = append(stats, feed)
	}
	if cfg.Sources.Widget.Enabled && cfg.Sources.Widget.URL != "" {
		stats = append(stats, source.NewWidget(cfg.Sources.Widget.URL))
	}

	var serp source.SerpSource
	if cfg.Sources.Serp.URL != "" {
		serp = source.NewSerp(cfg.Sources.Serp.URL, cfg.Sources.Serp.Selectors)
	}

	return feed, stats, serp
}

func buildAlertManager(cfg *config.Config) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	return alert.NewManager(notifiers)
}

func runScore(blogID string, jsonOutput bool) error {
	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.svc.Score(ctx, blogID)
	if err != nil {
		return fmt.Errorf("score %s: %w", blogID, err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "blog\t%s\n", blogID)
	fmt.Fprintf(w, "score\t%.1f / 100\n", result.TotalScore)
	fmt.Fprintf(w, "level\t%d (%s, %s)\n", result.Level, result.Grade, result.LevelCategory)
	fmt.Fprintf(w, "percentile\ttop %.0f%%\n", result.Percentile)
	fmt.Fprintf(w, "axis1\t%.1f\taxis2\t%.1f\tbonus\t%.1f\n", result.Axis1, result.Axis2, result.ExtraBonus)
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "warning\t%s\n", warn)
	}
	return w.Flush()
}

func runAnalyze(blogID, keyword string, jsonOutput bool) error {
	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.svc.Analyze(ctx, blogID, keyword)
	if err != nil {
		return fmt.Errorf("analyze %s/%q: %w", blogID, keyword, err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printAnalysis(blogID, result)
	return nil
}

func printAnalysis(blogID string, r *rank.CompetitiveAnalysisResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "blog\t%s\tkeyword\t%s\n", blogID, r.Keyword)
	if r.MyBlog.AlreadyRanking {
		fmt.Fprintf(w, "current rank\t#%d\n", r.MyBlog.CurrentRank)
	}
	fmt.Fprintf(w, "difficulty\t%s (%.0f/100, floor tier %d)\n",
		r.Difficulty.Difficulty, r.Difficulty.Score, r.Difficulty.LevelFloor)
	fmt.Fprintf(w, "probability\t%d-%d%% (mid %d%%)\n",
		r.Position.ProbabilityLow, r.Position.ProbabilityHigh, r.Position.ProbabilityMid)
	fmt.Fprintf(w, "expected position\t%d-%d\n", r.Position.RankBest, r.Position.RankWorst)
	fmt.Fprintf(w, "grade\t%s (%s)\tconfidence\t%s\n",
		r.Position.Grade, r.Position.GradeLabel, r.Position.Confidence)
	w.Flush()

	fmt.Println("\ndimensions:")
	dw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(dw, "  DIMENSION\tSCORE\tWEIGHT\tDETAIL")
	for _, d := range r.Dimensions {
		fmt.Fprintf(dw, "  %s\t%.0f\t%.0f%%\t%s\n", d.Label, d.Score, d.Weight*100, d.Detail)
	}
	dw.Flush()

	if len(r.Recommendations) > 0 {
		fmt.Println("\nrecommendations:")
		for _, rec := range r.Recommendations {
			fmt.Printf("  [%s] %s\n", rec.Priority, rec.Message)
		}
	}
	for _, warn := range r.DataQuality.Warnings {
		fmt.Printf("warning: %s\n", warn)
	}
	for _, lim := range r.DataQuality.Limitations {
		fmt.Printf("limitation: %s\n", lim)
	}
}

func runHistory(blogID string, days int, jsonOutput bool) error {
	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	since := time.Now().UTC().AddDate(0, 0, -days)
	snaps, err := a.db.GetScoreHistory(ctx, blogID, since)
	if err != nil {
		return fmt.Errorf("history %s: %w", blogID, err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	}

	if len(snaps) == 0 {
		fmt.Printf("no history for %s (run: blogrank score %s)\n", blogID, blogID)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHECKED\tSCORE\tLEVEL\tGRADE")
	for _, s := range snaps {
		fmt.Fprintf(w, "%s\t%.1f\t%d\t%s\n",
			s.CheckedAt.Format(time.RFC3339), s.TotalScore, s.Level, s.Grade)
	}
	return w.Flush()
}

func runServe(port int) error {
	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if port == 0 {
		port = a.cfg.Server.Port
	}

	srv := server.New(a.svc, a.db, port)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if port == 0 {
		port = a.cfg.Server.Port
	}

	tracked := make([]scheduler.Pair, 0, len(a.cfg.Tracking))
	for _, p := range a.cfg.Tracking {
		if p.BlogID == "" || p.Keyword == "" {
			continue
		}
		tracked = append(tracked, scheduler.Pair{
			BlogID:  strings.TrimSpace(p.BlogID),
			Keyword: strings.TrimSpace(p.Keyword),
		})
	}

	sched := scheduler.New(a.svc, a.db, a.weights, a.cache, buildAlertManager(a.cfg),
		tracked,
		a.cfg.Schedule.ParseAnalyzeInterval(),
		a.cfg.Schedule.ParseWeightsInterval(),
		a.cfg.Alerts.MinProbabilityDelta,
	)

	// Start scheduler in background.
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "scheduler error: %v\n", err)
		}
	}()

	srv := server.New(a.svc, a.db, port)
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	return srv.ListenAndServe()
}
