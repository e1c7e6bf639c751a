package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func rssFixture(n int, newestDaysAgo int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>gearhead</title>`)
	for i := 0; i < n; i++ {
		pub := time.Now().UTC().AddDate(0, 0, -(newestDaysAgo + i*10))
		fmt.Fprintf(&b, `<item>
<title>Post %d about camping chairs</title>
<description>%s</description>
<category>outdoor</category>
<pubDate>%s</pubDate>
</item>`, i, strings.Repeat("word ", 120), pub.Format(time.RFC1123Z))
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
}

func TestFeedCollectStats(t *testing.T) {
	srv := feedServer(t, rssFixture(5, 2))
	defer srv.Close()

	feed := NewFeed(srv.URL + "/%s.xml")
	stats, err := feed.CollectStats(context.Background(), "gearhead")
	if err != nil {
		t.Fatal(err)
	}

	if stats.SourceLimited {
		t.Error("small feed flagged as source-limited")
	}
	if stats.TotalPosts == nil || *stats.TotalPosts != 5 {
		t.Fatalf("total posts = %v", stats.TotalPosts)
	}
	if stats.RecentActivityDays == nil || *stats.RecentActivityDays != 2 {
		t.Fatalf("recent activity = %v", stats.RecentActivityDays)
	}
	if stats.PostsLast30Days == nil || *stats.PostsLast30Days != 3 {
		t.Fatalf("posts last 30 days = %v (newest at 2, 12, 22 days)", stats.PostsLast30Days)
	}
	if stats.AvgPostLength == nil || *stats.AvgPostLength == 0 {
		t.Fatal("average post length missing")
	}
	if stats.CategoryCount == nil || *stats.CategoryCount != 1 {
		t.Fatalf("category count = %v", stats.CategoryCount)
	}
	if stats.BlogAgeDays == nil || *stats.BlogAgeDays < 40 {
		t.Fatalf("blog age = %v", stats.BlogAgeDays)
	}
	if len(stats.DataSources) != 1 || stats.DataSources[0] != "feed" {
		t.Fatalf("data sources = %v", stats.DataSources)
	}
}

func TestFeedFullWindowIsSourceLimited(t *testing.T) {
	srv := feedServer(t, rssFixture(feedWindow, 1))
	defer srv.Close()

	feed := NewFeed(srv.URL + "/%s.xml")
	stats, err := feed.CollectStats(context.Background(), "gearhead")
	if err != nil {
		t.Fatal(err)
	}

	if !stats.SourceLimited {
		t.Error("full feed window not flagged source-limited")
	}
	if stats.TotalPosts != nil {
		t.Error("truncated post count reported as a real total")
	}
	if stats.BlogAgeDays != nil {
		t.Error("blog age reported despite a truncated window")
	}
}

func TestFeedCountRelated(t *testing.T) {
	srv := feedServer(t, rssFixture(5, 2))
	defer srv.Close()

	feed := NewFeed(srv.URL + "/%s.xml")
	count, limited, err := feed.CountRelated(context.Background(), "gearhead", "camping chairs")
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Fatalf("related count = %d", count)
	}
	if limited {
		t.Error("small feed reported as window-limited")
	}

	none, _, err := feed.CountRelated(context.Background(), "gearhead", "sourdough starter")
	if err != nil {
		t.Fatal(err)
	}
	if none != 0 {
		t.Fatalf("unrelated keyword matched %d posts", none)
	}
}

func TestFeedHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	feed := NewFeed(srv.URL + "/%s.xml")
	if _, err := feed.CollectStats(context.Background(), "missing"); err == nil {
		t.Fatal("expected error on 404")
	}
}
