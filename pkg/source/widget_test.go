package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func widgetServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestWidgetCollectStats(t *testing.T) {
	srv := widgetServer(t, `{"total_visitors": 52000, "neighbor_count": 1200, "total_posts": 480, "official_level": 3}`)
	defer srv.Close()

	w := NewWidget(srv.URL + "?blogId=%s")
	stats, err := w.CollectStats(context.Background(), "gearhead")
	if err != nil {
		t.Fatal(err)
	}

	if stats.TotalVisitors == nil || *stats.TotalVisitors != 52000 {
		t.Fatalf("total visitors = %v", stats.TotalVisitors)
	}
	if stats.NeighborCount == nil || *stats.NeighborCount != 1200 {
		t.Fatalf("neighbor count = %v", stats.NeighborCount)
	}
	if stats.TotalPosts == nil || *stats.TotalPosts != 480 {
		t.Fatalf("total posts = %v", stats.TotalPosts)
	}
	if stats.OfficialLevel == nil || *stats.OfficialLevel != 3 {
		t.Fatalf("official level = %v", stats.OfficialLevel)
	}
	if len(stats.DataSources) != 1 || stats.DataSources[0] != "widget" {
		t.Fatalf("data sources = %v", stats.DataSources)
	}
}

func TestWidgetPartialPayload(t *testing.T) {
	srv := widgetServer(t, `{"neighbor_count": 300}`)
	defer srv.Close()

	w := NewWidget(srv.URL + "?blogId=%s")
	stats, err := w.CollectStats(context.Background(), "gearhead")
	if err != nil {
		t.Fatal(err)
	}

	if stats.TotalPosts != nil {
		t.Error("absent field reported as a value")
	}
	if stats.NeighborCount == nil || *stats.NeighborCount != 300 {
		t.Fatalf("neighbor count = %v", stats.NeighborCount)
	}
}

func TestWidgetRejectsOutOfRangeLevel(t *testing.T) {
	srv := widgetServer(t, `{"official_level": 9}`)
	defer srv.Close()

	w := NewWidget(srv.URL + "?blogId=%s")
	stats, err := w.CollectStats(context.Background(), "gearhead")
	if err != nil {
		t.Fatal(err)
	}
	if stats.OfficialLevel != nil {
		t.Fatalf("out-of-range level accepted: %v", stats.OfficialLevel)
	}
}

func TestWidgetHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	w := NewWidget(srv.URL + "?blogId=%s")
	if _, err := w.CollectStats(context.Background(), "missing"); err == nil {
		t.Fatal("expected error on 403")
	}
}
