package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matheuskafuri/headlines/internal/config"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Example</title>
  <item>
    <title>First post</title>
    <link>https://example.com/first</link>
    <description>&lt;p&gt;Hello &lt;b&gt;world&lt;/b&gt;&lt;/p&gt;</description>
    <pubDate>Mon, 01 Jan 2024 00:00:00 GMT</pubDate>
  </item>
  <item>
    <title>[remove]</title>
    <link>https://example.com/gone</link>
  </item>
  <item>
    <title>Undated</title>
    <link>https://example.com/undated</link>
  </item>
</channel>
</rss>`

func TestRSSFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	got, err := NewRSSFetcher().Fetch(context.Background(), config.Source{Name: "Example", Type: "rss", URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 articles (sentinel dropped), got %d", len(got))
	}

	first := got[0]
	if first.Title != "First post" || first.URL != "https://example.com/first" {
		t.Errorf("unexpected first article: %+v", first)
	}
	if first.Source.Name != "Example" {
		t.Errorf("expected source name Example, got %q", first.Source.Name)
	}
	if first.Description != "Hello world" {
		t.Errorf("expected stripped description, got %q", first.Description)
	}
	if first.PublishedAt != "2024-01-01T00:00:00Z" {
		t.Errorf("expected RFC 3339 publish time, got %q", first.PublishedAt)
	}
	if got[1].PublishedAt != "" {
		t.Errorf("undated item should have empty publishedAt, got %q", got[1].PublishedAt)
	}
}

func TestRSSFetcherError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewRSSFetcher().Fetch(context.Background(), config.Source{Name: "Broken", URL: srv.URL}); err == nil {
		t.Error("expected error for failing feed")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a long string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		got := truncate(tt.input, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
		}
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<p>Hello</p>", "Hello"},
		{"<b>Bold</b> and <i>italic</i>", "Bold and italic"},
		{"No tags here", "No tags here"},
		{"<div>  Multiple   spaces  </div>", "Multiple spaces"},
		{"", ""},
	}
	for _, tt := range tests {
		got := stripHTML(tt.input)
		if got != tt.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
