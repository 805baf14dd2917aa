package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/headlines/internal/config"
)

type tab int

const (
	tabHeadlines tab = iota
	tabDiscover
	tabSearch
	tabSaved
	tabCount
)

func (t tab) String() string {
	switch t {
	case tabHeadlines:
		return "Headlines"
	case tabDiscover:
		return "Discover"
	case tabSearch:
		return "Search"
	case tabSaved:
		return "Saved"
	}
	return ""
}

// category is one entry of the Discover bar: either a news API category
// or a configured RSS source.
type category struct {
	label  string
	name   string
	source *config.Source
}

func (c category) key() string {
	if c.source != nil {
		return "rss:" + c.source.Name
	}
	return "discover:" + c.name
}

type categoryBar struct {
	items  []category
	cursor int
}

func newCategoryBar(categories []string, sources []config.Source) categoryBar {
	var items []category
	for _, c := range categories {
		items = append(items, category{label: c, name: c})
	}
	for i := range sources {
		src := sources[i]
		items = append(items, category{label: src.Name, source: &src})
	}
	return categoryBar{items: items}
}

func (b *categoryBar) current() (category, bool) {
	if b.cursor >= len(b.items) {
		return category{}, false
	}
	return b.items[b.cursor], true
}

func (b *categoryBar) next() bool {
	if b.cursor < len(b.items)-1 {
		b.cursor++
		return true
	}
	return false
}

func (b *categoryBar) prev() bool {
	if b.cursor > 0 {
		b.cursor--
		return true
	}
	return false
}

func renderTabs(active tab, width int) string {
	sep := tabSeparatorStyle.Render(" ")
	var row string
	for t := tab(0); t < tabCount; t++ {
		style := tabInactiveStyle
		if t == active {
			style = tabActiveStyle
		}
		if t > 0 {
			row += sep
		}
		row += style.Render(t.String())
	}
	return lipgloss.NewStyle().Width(width).PaddingLeft(1).Render(row)
}

func (b *categoryBar) row(start, end int) string {
	sep := tabSeparatorStyle.Render(" · ")
	var row string
	for i := start; i <= end && i < len(b.items); i++ {
		style := tabInactiveStyle
		if i == b.cursor {
			style = tabActiveStyle
		}
		if i > start {
			row += sep
		}
		row += style.Render(b.items[i].label)
	}
	return row
}

func (b *categoryBar) render(width int) string {
	// Scroll right far enough that the selected category is visible
	start := 0
	for start < b.cursor && lipgloss.Width(b.row(start, b.cursor)) > width-2 {
		start++
	}

	var row string
	for end := start; end < len(b.items); end++ {
		candidate := b.row(start, end)
		if lipgloss.Width(candidate) > width-2 && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
