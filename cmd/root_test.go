package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/matheuskafuri/headlines/internal/article"
)

const apiBody = `{"status":"ok","totalResults":3,"articles":[
{"source":{"id":null,"name":"Wire"},"title":"First story","url":"https://example.com/1","publishedAt":"2024-01-01T00:00:00Z"},
{"source":{"id":null,"name":"Wire"},"title":"Second story","url":"https://example.com/2","publishedAt":"2024-01-02T00:00:00Z"},
{"source":{"id":null,"name":null},"title":"[remove]","url":"https://removed.com","publishedAt":"1970-01-01T00:00:00Z"}
]}`

type apiServer struct {
	mu      sync.Mutex
	queries []string
}

func newAPIServer(t *testing.T) (*apiServer, string) {
	t.Helper()
	s := &apiServer{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.queries = append(s.queries, r.URL.Path+"?"+r.URL.RawQuery)
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(apiBody))
	}))
	t.Cleanup(srv.Close)
	return s, srv.URL
}

// writeConfig points the CLI at baseURL with sqlite storage in a temp dir.
func writeConfig(t *testing.T, baseURL, apiKey string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "newsapi:\n" +
		"  base_url: " + baseURL + "\n" +
		"  api_key: \"" + apiKey + "\"\n" +
		"storage:\n" +
		"  backend: sqlite\n" +
		"  path: " + filepath.Join(dir, "headlines.db") + "\n"
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	flagJSON, flagEphemeral, flagLogStderr, flagCheck = false, false, false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", cfgPath, "--log-file", filepath.Join(t.TempDir(), "test.log")))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBreakingCachesPrintedArticles(t *testing.T) {
	_, baseURL := newAPIServer(t)
	cfgPath := writeConfig(t, baseURL, "test-key")

	out, err := execute(t, cfgPath, "breaking")
	if err != nil {
		t.Fatalf("breaking: %v", err)
	}
	if strings.Contains(out, "[remove]") {
		t.Errorf("sentinel article printed:\n%s", out)
	}

	first := article.Article{URL: "https://example.com/1", PublishedAt: "2024-01-01T00:00:00Z"}
	id := article.ID(first)
	if !strings.Contains(out, id) {
		t.Fatalf("output should carry the article id %s:\n%s", id, out)
	}

	if out, err = execute(t, cfgPath, "save", id); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.Contains(out, "First story") {
		t.Errorf("save output = %q", out)
	}

	out, err = execute(t, cfgPath, "saved")
	if err != nil {
		t.Fatalf("saved: %v", err)
	}
	if !strings.Contains(out, "First story") || strings.Contains(out, "Second story") {
		t.Errorf("saved should list only the bookmark:\n%s", out)
	}

	out, err = execute(t, cfgPath, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, want := range []string{"Cached articles: 2", "Saved articles: 1", "Keys: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats missing %q:\n%s", want, out)
		}
	}

	if _, err = execute(t, cfgPath, "unsave", id); err != nil {
		t.Fatalf("unsave: %v", err)
	}
	out, _ = execute(t, cfgPath, "saved")
	if !strings.Contains(out, "No articles.") {
		t.Errorf("expected no saved articles after unsave:\n%s", out)
	}
}

func TestSearchJoinsArgsAndPrintsJSON(t *testing.T) {
	srv, baseURL := newAPIServer(t)
	cfgPath := writeConfig(t, baseURL, "test-key")

	out, err := execute(t, cfgPath, "search", "go", "lang", "--json")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	var articles []article.Article
	if err := json.Unmarshal([]byte(out), &articles); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(articles) != 2 {
		t.Errorf("expected 2 articles, got %d", len(articles))
	}

	if len(srv.queries) != 1 || !strings.Contains(srv.queries[0], "/everything?") || !strings.Contains(srv.queries[0], "q=go+lang") {
		t.Errorf("unexpected request: %v", srv.queries)
	}
}

func TestDiscoverSendsCategory(t *testing.T) {
	srv, baseURL := newAPIServer(t)
	cfgPath := writeConfig(t, baseURL, "test-key")

	if _, err := execute(t, cfgPath, "discover", "Science"); err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(srv.queries) != 1 || !strings.Contains(srv.queries[0], "category=science") {
		t.Errorf("unexpected request: %v", srv.queries)
	}
}

func TestMissingAPIKey(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "")
	srv, baseURL := newAPIServer(t)
	cfgPath := writeConfig(t, baseURL, "")

	_, err := execute(t, cfgPath, "breaking")
	if err == nil || !strings.Contains(err.Error(), "no API key") {
		t.Fatalf("expected missing key error, got %v", err)
	}
	if len(srv.queries) != 0 {
		t.Errorf("no request should be sent without a key, got %v", srv.queries)
	}
}

func TestOpenArticle(t *testing.T) {
	_, baseURL := newAPIServer(t)
	cfgPath := writeConfig(t, baseURL, "test-key")

	var opened string
	prev := openURL
	openURL = func(u string) error {
		opened = u
		return nil
	}
	t.Cleanup(func() { openURL = prev })

	if _, err := execute(t, cfgPath, "open", "123_456"); err == nil || !strings.Contains(err.Error(), "not found or expired") {
		t.Fatalf("expected not-found error, got %v", err)
	}

	if _, err := execute(t, cfgPath, "recommended"); err != nil {
		t.Fatalf("recommended: %v", err)
	}
	id := article.ID(article.Article{URL: "https://example.com/2", PublishedAt: "2024-01-02T00:00:00Z"})
	if _, err := execute(t, cfgPath, "open", id); err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened != "https://example.com/2" {
		t.Errorf("opened %q", opened)
	}
}

func TestClear(t *testing.T) {
	_, baseURL := newAPIServer(t)
	cfgPath := writeConfig(t, baseURL, "test-key")

	if _, err := execute(t, cfgPath, "breaking"); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, cfgPath, "clear")
	if err != nil || !strings.Contains(out, "Cache cleared.") {
		t.Fatalf("clear: %q, %v", out, err)
	}
	out, _ = execute(t, cfgPath, "stats")
	if !strings.Contains(out, "Cached articles: 0") {
		t.Errorf("cache should be empty after clear:\n%s", out)
	}
}

func TestEphemeralDoesNotPersist(t *testing.T) {
	_, baseURL := newAPIServer(t)
	cfgPath := writeConfig(t, baseURL, "test-key")

	if _, err := execute(t, cfgPath, "breaking", "--ephemeral"); err != nil {
		t.Fatal(err)
	}
	out, _ := execute(t, cfgPath, "stats")
	if !strings.Contains(out, "Cached articles: 0") {
		t.Errorf("--ephemeral run should leave the database untouched:\n%s", out)
	}
}

func TestVersionCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name":"v9.9.9"}`))
	}))
	t.Cleanup(srv.Close)

	prev := releasesURL
	releasesURL = srv.URL
	t.Cleanup(func() { releasesURL = prev })

	cfgPath := writeConfig(t, "https://newsapi.org/v2", "")
	out, err := execute(t, cfgPath, "version", "--check")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "9.9.9") {
		t.Errorf("expected newer version in output:\n%s", out)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
