package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/matheuskafuri/headlines/internal/article"
	"github.com/matheuskafuri/headlines/internal/browser"
	"github.com/matheuskafuri/headlines/internal/config"
	"github.com/matheuskafuri/headlines/internal/feed"
	"github.com/matheuskafuri/headlines/internal/logging"
	"github.com/matheuskafuri/headlines/internal/newsapi"
	"github.com/matheuskafuri/headlines/internal/store"
)

const (
	keyBreaking    = "breaking"
	keyRecommended = "recommended"
	keySaved       = "saved"

	notFoundAlert = "Article not found or expired"
	fetchTimeout  = 30 * time.Second
)

// NewsSource is the remote side of the screens. *newsapi.Client satisfies it.
type NewsSource interface {
	Breaking(ctx context.Context) (*newsapi.Response, error)
	Recommended(ctx context.Context) (*newsapi.Response, error)
	Discover(ctx context.Context, category string) (*newsapi.Response, error)
	Search(ctx context.Context, query string) (*newsapi.Response, error)
}

type section int

const (
	sectionBreaking section = iota
	sectionRecommended
)

type App struct {
	cfg     *config.Config
	news    NewsSource
	feeds   feed.Fetcher
	store   *store.Store
	logger  *log.Logger
	openURL func(string) error
	now     func() time.Time

	tab     tab
	section section

	breaking    articleList
	recommended articleList
	discover    articleList
	search      articleList
	saved       articleList

	categories categoryBar

	searchInput  textinput.Model
	searchSeq    int // bumped on every edit
	searchIssued int // seq of the latest request sent
	searchQuery  string
	debounce     time.Duration

	detail *detailView

	spinner spinner.Model
	width   int
	height  int
	alert   string
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Cfg    *config.Config
	News   NewsSource
	Feeds  feed.Fetcher
	Store  *store.Store
	Logger *log.Logger

	// OpenURL defaults to the system browser.
	OpenURL func(string) error
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search news..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	openURL := opts.OpenURL
	if openURL == nil {
		openURL = browser.Open
	}
	feeds := opts.Feeds
	if feeds == nil {
		feeds = feed.NewRSSFetcher()
	}

	return &App{
		cfg:         opts.Cfg,
		news:        opts.News,
		feeds:       feeds,
		store:       opts.Store,
		logger:      logging.OrDiscard(opts.Logger).WithPrefix("tui"),
		openURL:     openURL,
		now:         time.Now,
		breaking:    articleList{title: "Breaking News"},
		recommended: articleList{title: "Recommended"},
		discover:    articleList{title: "Discover"},
		search:      articleList{title: "Search"},
		saved:       articleList{title: "Saved"},
		categories:  newCategoryBar(opts.Cfg.Categories, opts.Cfg.EnabledSources()),
		searchInput: ti,
		debounce:    opts.Cfg.DebounceDuration(),
		spinner:     sp,
	}
}

func (a *App) Init() tea.Cmd {
	a.breaking.begin()
	a.recommended.begin()
	return tea.Batch(a.breakingCmd(), a.recommendedCmd(), a.spinner.Tick)
}

// fetchCmd runs fetch off the update loop. Sentinel articles never reach
// a list, so they are never rendered or cached.
func (a *App) fetchCmd(key string, fetch func(ctx context.Context) ([]article.Article, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		articles, err := fetch(ctx)
		return listLoadedMsg{key: key, articles: article.WithoutRemoved(articles), err: err}
	}
}

func fromResponse(resp *newsapi.Response, err error) ([]article.Article, error) {
	if err != nil {
		return nil, err
	}
	return resp.Articles, nil
}

func (a *App) breakingCmd() tea.Cmd {
	news := a.news
	return a.fetchCmd(keyBreaking, func(ctx context.Context) ([]article.Article, error) {
		return fromResponse(news.Breaking(ctx))
	})
}

func (a *App) recommendedCmd() tea.Cmd {
	news := a.news
	return a.fetchCmd(keyRecommended, func(ctx context.Context) ([]article.Article, error) {
		return fromResponse(news.Recommended(ctx))
	})
}

func (a *App) discoverCmd() tea.Cmd {
	c, ok := a.categories.current()
	if !ok {
		return nil
	}
	if c.source != nil {
		feeds := a.feeds
		src := *c.source
		return a.fetchCmd(c.key(), func(ctx context.Context) ([]article.Article, error) {
			return feeds.Fetch(ctx, src)
		})
	}
	news := a.news
	return a.fetchCmd(c.key(), func(ctx context.Context) ([]article.Article, error) {
		return fromResponse(news.Discover(ctx, c.name))
	})
}

func (a *App) savedCmd() tea.Cmd {
	st := a.store
	return a.fetchCmd(keySaved, st.SavedArticles)
}

func (a *App) searchCmd(seq int, query string) tea.Cmd {
	news := a.news
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		articles, err := fromResponse(news.Search(ctx, query))
		return searchResultMsg{seq: seq, query: query, articles: article.WithoutRemoved(articles), err: err}
	}
}

func (a *App) searchTick(seq int) tea.Cmd {
	return tea.Tick(a.debounce, func(time.Time) tea.Msg {
		return searchTickMsg{seq: seq}
	})
}

// openArticleCmd caches a, then routes to the detail view by identifier.
// A failed cache write is logged; the detail view reports the miss.
func (a *App) openArticleCmd(art article.Article) tea.Cmd {
	st := a.store
	logger := a.logger
	return func() tea.Msg {
		id := article.ID(art)
		if err := st.CacheArticle(context.Background(), art); err != nil {
			logger.Warn("cache article", "id", id, "err", err)
		}
		return openDetailMsg{id: id}
	}
}

func (a *App) loadDetailCmd(id string) tea.Cmd {
	st := a.store
	logger := a.logger
	return func() tea.Msg {
		ctx := context.Background()
		found, err := st.FindCachedArticle(ctx, id)
		if err != nil {
			return detailLoadedMsg{id: id, err: err}
		}
		saved, err := st.IsArticleSaved(ctx, article.ID(found))
		if err != nil {
			logger.Warn("bookmark lookup", "id", id, "err", err)
		}
		return detailLoadedMsg{id: id, article: found, saved: saved}
	}
}

func (a *App) bookmarkCmd(id string, save bool) tea.Cmd {
	st := a.store
	return func() tea.Msg {
		var err error
		if save {
			err = st.SaveArticle(context.Background(), id)
		} else {
			err = st.UnsaveArticle(context.Background(), id)
		}
		return bookmarkMsg{id: id, saved: save, err: err}
	}
}

func (a *App) unsaveCmd(id string) tea.Cmd {
	st := a.store
	return func() tea.Msg {
		return unsavedMsg{id: id, err: st.UnsaveArticle(context.Background(), id)}
	}
}

func (a *App) openBrowserCmd(url string) tea.Cmd {
	open := a.openURL
	return func() tea.Msg {
		if err := open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// listFor maps a load key to the list it fills. A discover result for a
// category the user has already left maps to nothing.
func (a *App) listFor(key string) *articleList {
	switch key {
	case keyBreaking:
		return &a.breaking
	case keyRecommended:
		return &a.recommended
	case keySaved:
		return &a.saved
	}
	if c, ok := a.categories.current(); ok && c.key() == key {
		return &a.discover
	}
	return nil
}

func (a *App) loading() bool {
	for _, l := range []*articleList{&a.breaking, &a.recommended, &a.discover, &a.search, &a.saved} {
		if l.state == stateLoading {
			return true
		}
	}
	return false
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky alert on any keypress
		a.alert = ""
		return a.handleKey(msg)

	case listLoadedMsg:
		l := a.listFor(msg.key)
		if l == nil {
			a.logger.Debug("dropping stale list", "key", msg.key)
			return a, nil
		}
		if msg.err != nil {
			a.logger.Warn("load failed", "key", msg.key, "err", msg.err)
		}
		l.finish(msg.articles, msg.err)
		return a, nil

	case searchTickMsg:
		if msg.seq != a.searchSeq {
			return a, nil
		}
		query := strings.TrimSpace(a.searchInput.Value())
		if query == "" {
			a.searchIssued = msg.seq
			a.search.reset()
			return a, nil
		}
		return a, a.issueSearch(msg.seq, query)

	case searchResultMsg:
		if msg.seq != a.searchIssued {
			a.logger.Debug("dropping stale search", "query", msg.query, "seq", msg.seq, "latest", a.searchIssued)
			return a, nil
		}
		if msg.err != nil {
			a.logger.Warn("search failed", "query", msg.query, "err", msg.err)
		}
		a.search.finish(msg.articles, msg.err)
		return a, nil

	case openDetailMsg:
		a.detail = &detailView{id: msg.id}
		return a, a.loadDetailCmd(msg.id)

	case detailLoadedMsg:
		if a.detail == nil || a.detail.id != msg.id {
			return a, nil
		}
		if msg.err != nil {
			if errors.Is(msg.err, store.ErrNotFound) {
				a.alert = notFoundAlert
			} else {
				a.logger.Error("load article", "id", msg.id, "err", msg.err)
				a.alert = "Failed to load article"
			}
			return a, a.back()
		}
		a.detail.id = article.ID(msg.article)
		a.detail.article = msg.article
		a.detail.saved = msg.saved
		a.detail.loaded = true
		return a, nil

	case bookmarkMsg:
		if msg.err != nil {
			a.logger.Error("update bookmark", "id", msg.id, "err", msg.err)
			a.alert = "Failed to update bookmark"
			return a, nil
		}
		if a.detail != nil && a.detail.id == msg.id {
			a.detail.saved = msg.saved
		}
		return a, nil

	case unsavedMsg:
		if msg.err != nil {
			a.logger.Error("remove bookmark", "id", msg.id, "err", msg.err)
			a.alert = "Failed to remove bookmark"
			return a, nil
		}
		a.saved.remove(msg.id)
		return a, nil

	case errMsg:
		a.alert = msg.err.Error()
		return a, nil

	case spinner.TickMsg:
		if a.loading() || (a.detail != nil && !a.detail.loaded) {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) issueSearch(seq int, query string) tea.Cmd {
	a.searchIssued = seq
	a.searchQuery = query
	a.search.begin()
	return tea.Batch(a.searchCmd(seq, query), a.spinner.Tick)
}

// back leaves the detail route. The saved list may have changed there.
func (a *App) back() tea.Cmd {
	a.detail = nil
	if a.tab == tabSaved {
		return a.reloadSaved()
	}
	return nil
}

func (a *App) reloadSaved() tea.Cmd {
	a.saved.begin()
	return tea.Batch(a.savedCmd(), a.spinner.Tick)
}

func (a *App) setTab(t tab) tea.Cmd {
	a.tab = t
	if t != tabSearch {
		a.searchInput.Blur()
	}
	switch t {
	case tabDiscover:
		if a.discover.state == stateIdle {
			return a.loadDiscover()
		}
	case tabSearch:
		a.searchInput.Focus()
		return textinput.Blink
	case tabSaved:
		return a.reloadSaved()
	}
	return nil
}

// activeList is the list the cursor keys act on.
func (a *App) activeList() *articleList {
	switch a.tab {
	case tabHeadlines:
		if a.section == sectionRecommended {
			return &a.recommended
		}
		return &a.breaking
	case tabDiscover:
		return &a.discover
	case tabSearch:
		return &a.search
	case tabSaved:
		return &a.saved
	}
	return nil
}

func (a *App) refresh() tea.Cmd {
	var cmd tea.Cmd
	switch a.tab {
	case tabHeadlines:
		if a.section == sectionRecommended {
			a.recommended.begin()
			cmd = a.recommendedCmd()
		} else {
			a.breaking.begin()
			cmd = a.breakingCmd()
		}
	case tabDiscover:
		return a.loadDiscover()
	case tabSaved:
		return a.reloadSaved()
	}
	return tea.Batch(cmd, a.spinner.Tick)
}

// loadDiscover fetches the current category. With no categories configured
// there is nothing to fetch and the list settles on empty.
func (a *App) loadDiscover() tea.Cmd {
	cmd := a.discoverCmd()
	if cmd == nil {
		a.discover.finish(nil, nil)
		return nil
	}
	a.discover.begin()
	return tea.Batch(cmd, a.spinner.Tick)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	if a.detail != nil {
		return a.handleDetailKey(msg)
	}

	switch msg.String() {
	case "tab":
		return a, a.setTab((a.tab + 1) % tabCount)
	case "shift+tab":
		return a, a.setTab((a.tab + tabCount - 1) % tabCount)
	}

	if a.tab == tabSearch {
		return a.handleSearchKey(msg)
	}

	l := a.activeList()
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "1", "2", "3", "4":
		return a, a.setTab(tab(msg.String()[0] - '1'))
	case "j", "down":
		l.down()
		return a, nil
	case "k", "up":
		l.up()
		return a, nil
	case "enter":
		if art, ok := l.selected(); ok {
			return a, a.openArticleCmd(art)
		}
		return a, nil
	case "r":
		return a, a.refresh()
	case "h", "left":
		return a, a.moveSideways(-1)
	case "l", "right":
		return a, a.moveSideways(1)
	case "x":
		if a.tab == tabSaved {
			if art, ok := a.saved.selected(); ok {
				return a, a.unsaveCmd(article.ID(art))
			}
		}
		return a, nil
	}

	return a, nil
}

// moveSideways switches the headlines section or the discover category.
func (a *App) moveSideways(dir int) tea.Cmd {
	switch a.tab {
	case tabHeadlines:
		if dir < 0 {
			a.section = sectionBreaking
		} else {
			a.section = sectionRecommended
		}
	case tabDiscover:
		moved := a.categories.next
		if dir < 0 {
			moved = a.categories.prev
		}
		if moved() {
			a.discover.reset()
			a.discover.begin()
			return tea.Batch(a.discoverCmd(), a.spinner.Tick)
		}
	}
	return nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.searchInput.SetValue("")
		a.searchSeq++
		// Nothing in flight may land after a clear
		a.searchIssued = a.searchSeq
		a.searchQuery = ""
		a.search.reset()
		return a, nil
	case "enter":
		if a.search.state == stateError && a.searchQuery != "" {
			a.searchSeq++
			return a, a.issueSearch(a.searchSeq, a.searchQuery)
		}
		if art, ok := a.search.selected(); ok {
			return a, a.openArticleCmd(art)
		}
		return a, nil
	case "down", "ctrl+n":
		a.search.down()
		return a, nil
	case "up", "ctrl+p":
		a.search.up()
		return a, nil
	}

	before := a.searchInput.Value()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	// Only re-query on actual value changes, not cursor moves etc.
	if a.searchInput.Value() == before {
		return a, cmd
	}
	a.searchSeq++
	return a, tea.Batch(cmd, a.searchTick(a.searchSeq))
}

func (a *App) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := a.detail
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "esc", "backspace":
		return a, a.back()
	}
	if !d.loaded {
		return a, nil
	}
	switch msg.String() {
	case "j", "down":
		d.scroll++
	case "k", "up":
		if d.scroll > 0 {
			d.scroll--
		}
	case "o", "enter":
		return a, a.openBrowserCmd(d.article.URL)
	case "b":
		return a, a.bookmarkCmd(d.id, !d.saved)
	}
	return a, nil
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  headlines")
	}

	// Header
	headerLeft := headerStyle.Render("headlines")
	headerRight := headerDateStyle.Render(a.now().Format("Jan 2"))
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	// header, tabs, sub-bar, status bar and pane borders
	contentHeight := a.height - 4 - 2
	if contentHeight < 3 {
		contentHeight = 3
	}
	innerW := a.width - 4

	if a.detail != nil {
		body := renderDetail(a.detail, innerW, contentHeight+1, a.spinner.View())
		pane := listPaneActiveStyle.Width(a.width - 2).Height(contentHeight + 1).Render(body)
		hints := "o open  b bookmark  esc back  q quit"
		if a.detail.saved {
			hints = "o open  b unbookmark  esc back  q quit"
		}
		status := renderStatusBar("", a.alert, hints, a.width)
		return lipgloss.JoinVertical(lipgloss.Left, header, pane, status)
	}

	tabs := renderTabs(a.tab, a.width)
	spin := a.spinner.View()
	now := a.now()

	var sub, content, hints string
	switch a.tab {
	case tabHeadlines:
		half := (contentHeight - 2) / 2
		if half < 3 {
			half = 3
		}
		top := a.renderSection(&a.breaking, a.section == sectionBreaking, half, innerW, "No breaking news right now", spin, now)
		bottom := a.renderSection(&a.recommended, a.section == sectionRecommended, half, innerW, "No recommendations right now", spin, now)
		content = lipgloss.JoinVertical(lipgloss.Left, top, bottom)
		hints = "tab switch  h/l section  enter read  r refresh  q quit"
	case tabDiscover:
		sub = a.categories.render(a.width)
		empty := "No articles in this category"
		content = listPaneActiveStyle.Width(a.width - 2).Height(contentHeight).
			Render(renderList(&a.discover, contentHeight, innerW, empty, spin, now))
		hints = "tab switch  h/l category  enter read  r refresh  q quit"
	case tabSearch:
		sub = a.searchInput.View()
		var body string
		if a.search.state == stateIdle {
			body = lipglossCenter("Type to search news", innerW, contentHeight)
		} else {
			empty := fmt.Sprintf("No results for %q", a.searchQuery)
			body = renderList(&a.search, contentHeight, innerW, empty, spin, now)
			if a.search.state == stateError {
				body = strings.Replace(body, retryHint, "press enter to retry", 1)
			}
		}
		content = listPaneActiveStyle.Width(a.width - 2).Height(contentHeight).Render(body)
		hints = "tab switch  ↑/↓ move  enter read  esc clear"
	case tabSaved:
		empty := "No saved articles yet"
		content = listPaneActiveStyle.Width(a.width - 2).Height(contentHeight).
			Render(renderList(&a.saved, contentHeight, innerW, empty, spin, now))
		hints = "tab switch  enter read  x remove  r refresh  q quit"
	}

	left := ""
	if l := a.activeList(); l != nil && l.state == stateList {
		left = fmt.Sprintf(" %d articles", len(l.articles))
	}
	status := renderStatusBar(left, a.alert, hints, a.width)

	return lipgloss.JoinVertical(lipgloss.Left, header, tabs, sub, content, status)
}

func (a *App) renderSection(l *articleList, active bool, height, width int, empty, spin string, now time.Time) string {
	style := listPaneStyle
	if active {
		style = listPaneActiveStyle
	}
	title := sectionTitleStyle.Render(l.title)
	body := renderList(l, height-1, width, empty, spin, now)
	return style.Width(a.width - 2).Height(height).Render(title + "\n" + body)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
