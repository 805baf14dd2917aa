package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/headlines/internal/article"
)

// detailView is the article route. It knows only the identifier until the
// store resolves it.
type detailView struct {
	id      string
	article article.Article
	loaded  bool
	saved   bool
	scroll  int
}

func renderDetail(d *detailView, width, height int, spin string) string {
	if !d.loaded {
		return lipglossCenter(spin+" Loading article...", width, height)
	}
	a := d.article

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := detailTitleStyle.Width(contentWidth).Render(a.Title)
	if d.saved {
		title = bookmarkStyle.Render("★ ") + title
	}

	source := detailSourceStyle.Render(a.Source.Name)
	if a.Author != "" {
		source += detailMetaStyle.Render(" · " + a.Author)
	}

	var meta []string
	if when := article.DetailedDate(a.Published()); when != "" {
		meta = append(meta, when)
	}
	meta = append(meta, article.ReadingTime(a.Content))
	metaLine := detailMetaStyle.Render(strings.Join(meta, " · "))

	desc := a.Description
	if desc == "" {
		desc = "(No description available)"
	}
	body := detailBodyStyle.Width(contentWidth).Render(wrapText(desc, contentWidth))

	parts := []string{title, source, metaLine, body}
	if a.Content != "" && a.Content != a.Description {
		parts = append(parts, "", detailBodyStyle.Width(contentWidth).Render(wrapText(a.Content, contentWidth)))
	}
	parts = append(parts, detailLinkStyle.Width(contentWidth).Render("Read more: "+a.URL))

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	// Apply scroll offset
	lines := strings.Split(content, "\n")
	if d.scroll > 0 && d.scroll < len(lines) {
		lines = lines[d.scroll:]
	}

	// Pad to fill height
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len([]rune(line))+1+len([]rune(w)) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
