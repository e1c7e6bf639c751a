package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"

	"github.com/elonfeng/blogrank/pkg/rank"
)

// feedWindow is the entry cap most blog platforms apply to their RSS
// feeds. A full page means the feed truncated the blog's real history.
const feedWindow = 30

// Feed derives blog signals from the blog's RSS/Atom feed.
type Feed struct {
	client      *http.Client
	parser      *gofeed.Parser
	urlTemplate string // e.g. "https://rss.blog.example.com/%s.xml"
}

// NewFeed creates a feed collector. urlTemplate must contain one %s for
// the blog ID.
func NewFeed(urlTemplate string) *Feed {
	return &Feed{
		client:      &http.Client{Timeout: 30 * time.Second},
		parser:      gofeed.NewParser(),
		urlTemplate: urlTemplate,
	}
}

func (f *Feed) Name() string { return "feed" }

// CollectStats fetches the blog's feed and derives every signal the feed
// window allows. When the feed is full (>= feedWindow entries) total-post
// and blog-age signals are withheld and the stats are marked
// source-limited instead of reporting truncated counts as truth.
func (f *Feed) CollectStats(ctx context.Context, blogID string) (rank.BlogStats, error) {
	feed, err := f.fetch(ctx, blogID)
	if err != nil {
		return rank.BlogStats{}, err
	}

	stats := rank.BlogStats{DataSources: []string{f.Name()}}
	if len(feed.Items) == 0 {
		return stats, nil
	}

	now := time.Now().UTC()
	var newest, oldest time.Time
	var last30, lengthSum, lengthCount int
	categories := make(map[string]struct{})

	for _, item := range feed.Items {
		if item.PublishedParsed != nil {
			ts := item.PublishedParsed.UTC()
			if newest.IsZero() || ts.After(newest) {
				newest = ts
			}
			if oldest.IsZero() || ts.Before(oldest) {
				oldest = ts
			}
			if now.Sub(ts) <= 30*24*time.Hour {
				last30++
			}
		}
		if text := strings.TrimSpace(item.Description); text != "" {
			lengthSum += utf8.RuneCountInString(text)
			lengthCount++
		}
		for _, c := range item.Categories {
			if c = strings.TrimSpace(c); c != "" {
				categories[c] = struct{}{}
			}
		}
	}

	if !newest.IsZero() {
		days := int(now.Sub(newest).Hours() / 24)
		stats.RecentActivityDays = &days
	}
	stats.PostsLast30Days = &last30
	if lengthCount > 0 {
		avg := lengthSum / lengthCount
		stats.AvgPostLength = &avg
	}
	if len(categories) > 0 {
		n := len(categories)
		stats.CategoryCount = &n
	}

	if len(feed.Items) >= feedWindow {
		// The window truncated the history: the real post count and
		// blog age are unknowable from here.
		stats.SourceLimited = true
	} else {
		total := len(feed.Items)
		stats.TotalPosts = &total
		if !oldest.IsZero() {
			age := int(now.Sub(oldest).Hours() / 24)
			stats.BlogAgeDays = &age
		}
	}

	return stats, nil
}

// CountRelated counts feed entries related to the keyword. The second
// return value reports whether the count came through a truncated window.
func (f *Feed) CountRelated(ctx context.Context, blogID, keyword string) (int, bool, error) {
	feed, err := f.fetch(ctx, blogID)
	if err != nil {
		return 0, false, err
	}

	kw := strings.ToLower(strings.TrimSpace(keyword))
	count := 0
	for _, item := range feed.Items {
		text := strings.ToLower(item.Title + " " + item.Description)
		if matchesKeyword(text, kw) {
			count++
		}
	}
	return count, len(feed.Items) >= feedWindow, nil
}

func (f *Feed) fetch(ctx context.Context, blogID string) (*gofeed.Feed, error) {
	url := fmt.Sprintf(f.urlTemplate, blogID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request %s: %w", blogID, err)
	}
	req.Header.Set("User-Agent", "blogrank/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", blogID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s status %d", blogID, resp.StatusCode)
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", blogID, err)
	}
	return feed, nil
}

// matchesKeyword accepts an exact phrase match or all words present.
func matchesKeyword(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	if strings.Contains(text, keyword) {
		return true
	}
	words := strings.Fields(keyword)
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}
