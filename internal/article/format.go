package article

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const wordsPerMinute = 200

// RelativeDate renders a publish time the way the feed lists show it.
func RelativeDate(published, now time.Time) string {
	if published.IsZero() {
		return ""
	}
	hours := int(math.Floor(now.Sub(published).Hours()))
	switch {
	case hours < 1:
		return "Just now"
	case hours < 24:
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case hours < 48:
		return "Yesterday"
	case published.Year() != now.Year():
		return published.Format("Jan 2, 2006")
	default:
		return published.Format("Jan 2")
	}
}

func DetailedDate(published time.Time) string {
	if published.IsZero() {
		return ""
	}
	return published.Format("January 2, 2006 at 03:04 PM")
}

// ReadingTime estimates minutes to read content at 200 words per minute.
func ReadingTime(content string) string {
	words := len(strings.Split(content, " "))
	minutes := int(math.Ceil(float64(words) / wordsPerMinute))
	return fmt.Sprintf("%d min read", minutes)
}

func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}
