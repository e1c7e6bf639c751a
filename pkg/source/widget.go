package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elonfeng/blogrank/pkg/rank"
)

// Widget reads the public stats-widget JSON endpoint a blog platform
// exposes for visitor counters and profile data.
type Widget struct {
	client      *http.Client
	urlTemplate string // one %s for the blog ID
}

// NewWidget creates a widget collector.
func NewWidget(urlTemplate string) *Widget {
	return &Widget{
		client:      &http.Client{Timeout: 15 * time.Second},
		urlTemplate: urlTemplate,
	}
}

func (w *Widget) Name() string { return "widget" }

type widgetPayload struct {
	TotalVisitors *int `json:"total_visitors"`
	NeighborCount *int `json:"neighbor_count"`
	TotalPosts    *int `json:"total_posts"`
	OfficialLevel *int `json:"official_level"`
}

// CollectStats fetches the widget payload. Fields absent from the payload
// stay nil; the engine treats them as missing signals, not zeros.
func (w *Widget) CollectStats(ctx context.Context, blogID string) (rank.BlogStats, error) {
	url := fmt.Sprintf(w.urlTemplate, blogID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return rank.BlogStats{}, fmt.Errorf("create widget request %s: %w", blogID, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "blogrank/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return rank.BlogStats{}, fmt.Errorf("fetch widget %s: %w", blogID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rank.BlogStats{}, fmt.Errorf("widget %s status %d", blogID, resp.StatusCode)
	}

	var payload widgetPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return rank.BlogStats{}, fmt.Errorf("decode widget %s: %w", blogID, err)
	}

	stats := rank.BlogStats{DataSources: []string{w.Name()}}
	stats.TotalVisitors = payload.TotalVisitors
	stats.NeighborCount = payload.NeighborCount
	stats.TotalPosts = payload.TotalPosts
	if lv := payload.OfficialLevel; lv != nil && *lv >= 1 && *lv <= 4 {
		stats.OfficialLevel = lv
	}
	return stats, nil
}
