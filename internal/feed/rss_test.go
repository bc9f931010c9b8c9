package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>http://example.com</link>
    <item>
      <title>First headline</title>
      <link>http://example.com/articles/1</link>
      <description>&lt;p&gt;First &lt;b&gt;description&lt;/b&gt;&lt;/p&gt;</description>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title>Second headline</title>
      <link>http://example.com/articles/2</link>
      <description>Second description</description>
    </item>
  </channel>
</rss>`

func TestRSSSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	src := NewRSSSource([]string{srv.URL})

	items, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	first := items[0]
	if first.Title != "First headline" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Link != "http://example.com/articles/1" {
		t.Errorf("Link = %q", first.Link)
	}
	if first.Source != srv.URL {
		t.Errorf("Source = %q, want feed URL %q", first.Source, srv.URL)
	}
	if first.Description != "First description" {
		t.Errorf("Description = %q, want markup stripped", first.Description)
	}
	want := time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC)
	if !first.Published.Equal(want) {
		t.Errorf("Published = %v, want %v", first.Published, want)
	}

	// Missing pubDate falls back to a recent fetch time.
	second := items[1]
	if time.Since(second.Published) > time.Minute {
		t.Errorf("Published fallback = %v, want near now", second.Published)
	}
}

func TestRSSSource_BrokenFeedSkipped(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleRSS))
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer bad.Close()

	src := NewRSSSource([]string{bad.URL, good.URL})

	items, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("got %d items, want 2 from the surviving feed", len(items))
	}
}

func TestRSSSource_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewRSSSource([]string{"http://127.0.0.1:1/feed"})
	if _, err := src.Fetch(ctx); err == nil {
		t.Error("expected context error")
	}
}
