package article

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
)

// RemovedTitle marks placeholder entries the upstream API returns for
// withdrawn articles.
const RemovedTitle = "[remove]"

type Source struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Article mirrors the NewsAPI article shape so the persisted cache is the
// wire format.
type Article struct {
	Source      Source `json:"source"`
	Author      string `json:"author,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content,omitempty"`
}

// Published parses PublishedAt. The zero time is returned when it is not a
// valid RFC 3339 timestamp.
func (a Article) Published() time.Time {
	t, ok := parsePublished(a.PublishedAt)
	if !ok {
		return time.Time{}
	}
	return t
}

func (a Article) key() string {
	if a.URL != "" {
		return a.URL
	}
	return a.Title
}

// ID derives the identifier used to address cache and bookmark entries:
// a 31-multiplier rolling hash of the URL (or title) wrapped to 32 bits,
// joined with the publish time in epoch milliseconds.
func ID(a Article) string {
	var h int32
	for _, c := range utf16.Encode([]rune(a.key())) {
		h = h*31 + int32(c)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}

	// A null publishedAt counts as the epoch, an unparseable one as NaN
	ts := "NaN"
	if a.PublishedAt == "" {
		ts = "0"
	} else if t, ok := parsePublished(a.PublishedAt); ok {
		ts = strconv.FormatInt(t.UnixMilli(), 10)
	}
	return strconv.FormatInt(abs, 10) + "_" + ts
}

// LegacyID is the percent-encoded URL (or title) older builds used as the
// identifier. Lookups still accept it.
func LegacyID(a Article) string {
	return encodeURIComponent(a.key())
}

func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

func parsePublished(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	// Date-time without a zone is local time; a bare date is UTC
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func IsRemoved(a Article) bool {
	return a.Title == RemovedTitle
}

// WithoutRemoved returns the articles that are not removal placeholders.
// The input slice is left untouched.
func WithoutRemoved(articles []Article) []Article {
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if IsRemoved(a) {
			continue
		}
		out = append(out, a)
	}
	return out
}
