package article

import (
	"fmt"
	"testing"
	"time"
)

func TestIDKnownHashes(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"a", "97_1704067200000"},
		{"ab", "3105_1704067200000"},
		{"hello", "99162322_1704067200000"},
		// wraps to math.MinInt32; the absolute value must not overflow
		{"polygenelubricants", "2147483648_1704067200000"},
	}
	for _, tt := range tests {
		got := ID(Article{URL: tt.url, PublishedAt: "2024-01-01T00:00:00Z"})
		if got != tt.want {
			t.Errorf("ID(url=%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestIDStable(t *testing.T) {
	a := Article{URL: "https://x/1", Title: "One", PublishedAt: "2024-01-01T00:00:00Z"}
	first := ID(a)
	for i := 0; i < 5; i++ {
		if got := ID(a); got != first {
			t.Fatalf("ID changed between calls: %q then %q", first, got)
		}
	}

	retitled := a
	retitled.Title = "Different title"
	if ID(retitled) != first {
		t.Error("title must not affect the id when url is set")
	}

	later := a
	later.PublishedAt = "2024-01-02T00:00:00Z"
	if ID(later) == first {
		t.Error("publish time must be part of the id")
	}
}

func TestIDFallsBackToTitle(t *testing.T) {
	a := Article{Title: "hello", PublishedAt: "2024-01-01T00:00:00Z"}
	if got, want := ID(a), "99162322_1704067200000"; got != want {
		t.Errorf("ID(title only) = %q, want %q", got, want)
	}
}

func TestIDUTF16(t *testing.T) {
	// U+1F600 is a surrogate pair in UTF-16: 0xD83D 0xDE00
	a := Article{URL: "\U0001F600", PublishedAt: "2024-01-01T00:00:00Z"}
	want := fmt.Sprintf("%d_1704067200000", 0xD83D*31+0xDE00)
	if got := ID(a); got != want {
		t.Errorf("ID(emoji) = %q, want %q", got, want)
	}
}

func TestIDBadTimestamp(t *testing.T) {
	a := Article{URL: "a", PublishedAt: "not a date"}
	if got := ID(a); got != "97_NaN" {
		t.Errorf("ID with bad date = %q, want 97_NaN", got)
	}
}

func TestIDNullTimestamp(t *testing.T) {
	a := Article{URL: "a"}
	if got := ID(a); got != "97_0" {
		t.Errorf("ID with null date = %q, want 97_0", got)
	}
}

func TestIDZonelessTimestamps(t *testing.T) {
	prev := time.Local
	time.Local = time.FixedZone("UTC+2", 2*60*60)
	t.Cleanup(func() { time.Local = prev })

	local := Article{URL: "a", PublishedAt: "2024-01-01T00:00:00"}
	want := fmt.Sprintf("97_%d", time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local).UnixMilli())
	if got := ID(local); got != want {
		t.Errorf("ID(zoneless date-time) = %q, want %q", got, want)
	}

	dateOnly := Article{URL: "a", PublishedAt: "2024-01-01"}
	if got := ID(dateOnly); got != "97_1704067200000" {
		t.Errorf("ID(date only) = %q, want 97_1704067200000", got)
	}
}

func TestLegacyID(t *testing.T) {
	tests := []struct {
		a    Article
		want string
	}{
		{Article{URL: "https://x/1"}, "https%3A%2F%2Fx%2F1"},
		{Article{Title: "a b"}, "a%20b"},
		{Article{Title: "café"}, "caf%C3%A9"},
		{Article{URL: "keep-_.!~*'()"}, "keep-_.!~*'()"},
		{Article{URL: "q?x=1&y=2"}, "q%3Fx%3D1%26y%3D2"},
	}
	for _, tt := range tests {
		if got := LegacyID(tt.a); got != tt.want {
			t.Errorf("LegacyID(%+v) = %q, want %q", tt.a, got, tt.want)
		}
	}
}

func TestWithoutRemoved(t *testing.T) {
	in := []Article{
		{Title: "Real"},
		{Title: RemovedTitle},
		{Title: "Also real"},
	}
	got := WithoutRemoved(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(got))
	}
	for _, a := range got {
		if IsRemoved(a) {
			t.Errorf("sentinel article survived filtering")
		}
	}
	if len(in) != 3 {
		t.Error("input slice should not be modified")
	}
}

func TestPublished(t *testing.T) {
	a := Article{PublishedAt: "2024-01-01T12:30:00Z"}
	want := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)
	if !a.Published().Equal(want) {
		t.Errorf("Published() = %v, want %v", a.Published(), want)
	}
	if !(Article{PublishedAt: "garbage"}).Published().IsZero() {
		t.Error("expected zero time for unparseable date")
	}
}
