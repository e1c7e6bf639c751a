package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./blogrank.db", cfg.Database.Path)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Alerts.MinProbabilityDelta)
	assert.Equal(t, 6*time.Hour, cfg.Schedule.ParseAnalyzeInterval())
	assert.Equal(t, time.Hour, cfg.Schedule.ParseWeightsInterval())
	assert.Equal(t, 15*time.Minute, cfg.Redis.ParseTTL())
	assert.Nil(t, cfg.Weights)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/override.db
redis:
  addr: localhost:6379
  ttl: 5m
schedule:
  analyze_interval: 30m
tracking:
  - blog_id: gearhead
    keyword: camping chairs
sources:
  serp:
    selectors:
      item: li.custom
weights:
  axis1_subweights: {context: 0.4, content: 0.35, chain: 0.25}
  axis2_subweights: {depth: 0.33, information: 0.34, accuracy: 0.33}
  axis_weights: {axis1: 0.5, axis2: 0.5}
  extra_factor_weights: {post_count: 0.35, neighbor_count: 0.35, visitor_count: 0.30}
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.ParseTTL())
	assert.Equal(t, 30*time.Minute, cfg.Schedule.ParseAnalyzeInterval())
	require.Len(t, cfg.Tracking, 1)
	assert.Equal(t, "gearhead", cfg.Tracking[0].BlogID)
	assert.Equal(t, "li.custom", cfg.Sources.Serp.Selectors.Item)

	require.NotNil(t, cfg.Weights)
	assert.InDelta(t, 0.4, cfg.Weights.Axis1.Context, 1e-9)

	// Defaults not mentioned in the file survive.
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BLOGRANK_DB_PATH", "/data/env.db")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/data/env.db", cfg.Database.Path)
	assert.True(t, cfg.Alerts.Slack.Enabled)
}

func TestInvalidIntervalFallsBack(t *testing.T) {
	s := ScheduleConfig{AnalyzeInterval: "not-a-duration"}
	assert.Equal(t, 6*time.Hour, s.ParseAnalyzeInterval())
}
