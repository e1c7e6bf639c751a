package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/elonfeng/blogrank/pkg/rank"
)

// Selectors names the CSS selectors used to pull fields out of a search
// result page. Platforms rearrange their markup regularly, so these live
// in config rather than code.
type Selectors struct {
	Item        string `yaml:"item"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	BlogLink    string `yaml:"blog_link"`
	LevelBadge  string `yaml:"level_badge"`
	PostDate    string `yaml:"post_date"`
}

// DefaultSelectors matches the current blog-tab markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Item:        "li.bx",
		Title:       "a.title_link",
		Description: "div.dsc_area",
		BlogLink:    "a.user_info",
		LevelBadge:  "span.grade_area",
		PostDate:    "span.sub_time",
	}
}

// Serp scrapes the top blog results for a keyword from the search page.
type Serp struct {
	client      *http.Client
	urlTemplate string // one %s for the URL-escaped keyword
	selectors   Selectors
}

// NewSerp creates a search-page collector.
func NewSerp(urlTemplate string, sel Selectors) *Serp {
	if sel == (Selectors{}) {
		sel = DefaultSelectors()
	}
	return &Serp{
		client:      &http.Client{Timeout: 30 * time.Second},
		urlTemplate: urlTemplate,
		selectors:   sel,
	}
}

func (s *Serp) Name() string { return "serp" }

// CollectResults fetches and parses the result page, returning at most
// rank.MaxResults items. Fields that fail to parse stay nil; the engine
// degrades them into data-quality warnings.
func (s *Serp) CollectResults(ctx context.Context, keyword string) ([]rank.SearchResultItem, error) {
	pageURL := fmt.Sprintf(s.urlTemplate, url.QueryEscape(keyword))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create serp request: %w", err)
	}
	req.Header.Set("User-Agent", "blogrank/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch serp %q: %w", keyword, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serp %q status %d", keyword, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse serp %q: %w", keyword, err)
	}

	var results []rank.SearchResultItem
	now := time.Now().UTC()

	doc.Find(s.selectors.Item).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(results) >= rank.MaxResults {
			return false
		}

		item := rank.SearchResultItem{
			Title:       strings.TrimSpace(sel.Find(s.selectors.Title).Text()),
			Description: strings.TrimSpace(sel.Find(s.selectors.Description).Text()),
		}
		if item.Title == "" {
			return true // ad block or unrelated list entry
		}

		if href, ok := sel.Find(s.selectors.BlogLink).Attr("href"); ok {
			item.BlogID = blogIDFromURL(href)
		}
		if lv, ok := parseLevelBadge(sel.Find(s.selectors.LevelBadge).Text()); ok {
			item.OfficialLevel = &lv
		}
		if ts, ok := parsePostDate(sel.Find(s.selectors.PostDate).Text(), now); ok {
			item.PostDate = &ts
		}

		results = append(results, item)
		return true
	})

	return results, nil
}

// blogIDFromURL pulls the blog identifier out of a profile or post link:
// the first path segment.
func blogIDFromURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 {
		return ""
	}
	return segs[0]
}

// parseLevelBadge reads an official tier out of badge text like "Lv.3".
func parseLevelBadge(text string) (int, bool) {
	text = strings.TrimSpace(strings.ToLower(text))
	idx := strings.Index(text, "lv.")
	if idx < 0 {
		return 0, false
	}
	rest := text[idx+3:]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	lv, err := strconv.Atoi(rest[:end])
	if err != nil || lv < 1 || lv > 4 {
		return 0, false
	}
	return lv, true
}

// postDateLayouts are the absolute formats the result page uses.
var postDateLayouts = []string{
	"2006.1.2.",
	"2006.01.02.",
	"2006-01-02",
}

// parsePostDate handles both absolute dates and the page's relative forms
// ("3 days ago", "2 weeks ago", "yesterday").
func parsePostDate(text string, now time.Time) (time.Time, bool) {
	text = strings.TrimSpace(strings.ToLower(text))
	if text == "" {
		return time.Time{}, false
	}

	compact := strings.ReplaceAll(text, " ", "")
	for _, layout := range postDateLayouts {
		if ts, err := time.Parse(layout, compact); err == nil {
			return ts.UTC(), true
		}
	}

	switch {
	case strings.HasPrefix(text, "today"):
		return now, true
	case strings.HasPrefix(text, "yesterday"):
		return now.AddDate(0, 0, -1), true
	}

	fields := strings.Fields(text)
	if len(fields) >= 2 && fields[len(fields)-1] == "ago" {
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return time.Time{}, false
		}
		switch {
		case strings.HasPrefix(fields[1], "day"):
			return now.AddDate(0, 0, -n), true
		case strings.HasPrefix(fields[1], "week"):
			return now.AddDate(0, 0, -7*n), true
		case strings.HasPrefix(fields[1], "month"):
			return now.AddDate(0, -n, 0), true
		case strings.HasPrefix(fields[1], "hour"), strings.HasPrefix(fields[1], "minute"):
			return now, true
		}
	}
	return time.Time{}, false
}
