package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elonfeng/blogrank/pkg/rank"
	"github.com/elonfeng/blogrank/pkg/source"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Sources  SourcesConfig  `yaml:"sources"`
	Tracking []TrackedPair  `yaml:"tracking"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Server   ServerConfig   `yaml:"server"`

	// Weights overrides the built-in engine defaults when set.
	Weights *rank.WeightSet `yaml:"weights"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig configures the optional analysis cache. Empty addr disables it.
type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
	TTL  string `yaml:"ttl"`
}

// ParseTTL returns the cache TTL as time.Duration.
func (r RedisConfig) ParseTTL() time.Duration {
	d, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// ScheduleConfig configures the tracking and weight-reload intervals.
type ScheduleConfig struct {
	AnalyzeInterval string `yaml:"analyze_interval"`
	WeightsInterval string `yaml:"weights_interval"`
}

// ParseAnalyzeInterval returns the tracked-pair re-analysis interval.
func (s ScheduleConfig) ParseAnalyzeInterval() time.Duration {
	d, err := time.ParseDuration(s.AnalyzeInterval)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

// ParseWeightsInterval returns the active weight set reload interval.
func (s ScheduleConfig) ParseWeightsInterval() time.Duration {
	d, err := time.ParseDuration(s.WeightsInterval)
	if err != nil {
		return time.Hour
	}
	return d
}

// SourcesConfig holds configuration for all signal collectors.
type SourcesConfig struct {
	Feed   FeedConfig   `yaml:"feed"`
	Widget WidgetConfig `yaml:"widget"`
	Serp   SerpConfig   `yaml:"serp"`
}

// FeedConfig for the RSS feed collector. URL is a template with one %s for
// the blog ID.
type FeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// WidgetConfig for the counter-widget collector.
type WidgetConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// SerpConfig for the search-result collector. Selector overrides are
// optional; unset fields keep the defaults.
type SerpConfig struct {
	URL       string           `yaml:"url"`
	Selectors source.Selectors `yaml:"selectors"`
}

// TrackedPair is one blog/keyword pair the scheduler re-analyzes.
type TrackedPair struct {
	BlogID  string `yaml:"blog_id"`
	Keyword string `yaml:"keyword"`
}

// AlertsConfig configures alert destinations.
type AlertsConfig struct {
	// MinProbabilityDelta is the mid-probability movement, in points,
	// that triggers an alert for a tracked pair.
	MinProbabilityDelta int `yaml:"min_probability_delta"`

	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// SlackConfig for Slack webhook alerts.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook alerts.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic webhook alerts.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./blogrank.db"},
		Redis:    RedisConfig{TTL: "15m"},
		Schedule: ScheduleConfig{
			AnalyzeInterval: "6h",
			WeightsInterval: "1h",
		},
		Sources: SourcesConfig{
			Feed:   FeedConfig{Enabled: true, URL: "https://rss.blog.naver.com/%s.xml"},
			Widget: WidgetConfig{Enabled: true, URL: "https://blog.naver.com/WidgetListAsync.naver?blogId=%s"},
			Serp:   SerpConfig{URL: "https://search.naver.com/search.naver?ssc=tab.blog.all&query=%s"},
		},
		Alerts: AlertsConfig{MinProbabilityDelta: 10},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BLOGRANK_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("BLOGRANK_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Slack.WebhookURL = v
		cfg.Alerts.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Alerts.Discord.WebhookURL = v
		cfg.Alerts.Discord.Enabled = true
	}
}
