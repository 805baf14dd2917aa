package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/headlines/internal/article"
)

type loadState int

const (
	stateIdle loadState = iota
	stateLoading
	stateList
	stateEmpty
	stateError
)

// articleList is one screen list and its load state machine:
// loading -> list | empty | error, re-entered on refresh or retry.
type articleList struct {
	title    string
	state    loadState
	articles []article.Article
	cursor   int
	err      error
}

func (l *articleList) begin() {
	l.state = stateLoading
	l.err = nil
}

func (l *articleList) finish(articles []article.Article, err error) {
	if err != nil {
		l.state = stateError
		l.err = err
		l.articles = nil
		l.cursor = 0
		return
	}
	l.articles = articles
	l.err = nil
	if len(articles) == 0 {
		l.state = stateEmpty
	} else {
		l.state = stateList
	}
	if l.cursor >= len(l.articles) {
		l.cursor = max(0, len(l.articles)-1)
	}
}

func (l *articleList) reset() {
	*l = articleList{title: l.title}
}

func (l *articleList) selected() (article.Article, bool) {
	if l.state != stateList || l.cursor >= len(l.articles) {
		return article.Article{}, false
	}
	return l.articles[l.cursor], true
}

func (l *articleList) down() {
	if l.cursor < len(l.articles)-1 {
		l.cursor++
	}
}

func (l *articleList) up() {
	if l.cursor > 0 {
		l.cursor--
	}
}

func (l *articleList) remove(id string) {
	out := l.articles[:0]
	for _, a := range l.articles {
		if article.ID(a) != id {
			out = append(out, a)
		}
	}
	l.finish(out, nil)
}

func renderListItem(a article.Article, selected bool, width int, now time.Time) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(a.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(a.Title, width-4))
	}

	meta := "  " + itemSourceStyle.Render(a.Source.Name)
	if when := article.RelativeDate(a.Published(), now); when != "" {
		meta += " " + itemTimeStyle.Render("· "+when)
	}

	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// renderList draws l according to its state. emptyText is shown for a
// successful load with no results.
func renderList(l *articleList, height, width int, emptyText, spin string, now time.Time) string {
	switch l.state {
	case stateIdle:
		return ""
	case stateLoading:
		return lipglossCenter(spin+" Loading...", width, height)
	case stateError:
		msg := "Failed to load articles"
		if l.err != nil {
			msg = fmt.Sprintf("%s: %v", msg, l.err)
		}
		return errorStyle.Render(lipglossCenter(truncateStr(msg, width), width, height)) +
			"\n" + lipglossCenter(retryHint, width, 1)
	case stateEmpty:
		return lipglossCenter(emptyText, width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if l.cursor >= visible {
		start = l.cursor - visible + 1
	}
	end := start + visible
	if end > len(l.articles) {
		end = len(l.articles)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(l.articles[i], i == l.cursor, width, now))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

const retryHint = "press r to retry"

func lipglossCenter(s string, width, height int) string {
	pad := (width - len([]rune(s))) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
