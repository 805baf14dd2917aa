package tui

import (
	"github.com/matheuskafuri/headlines/internal/article"
)

// listLoadedMsg carries the outcome of loading one list. key identifies
// which list (and for discover, which category) the request was for.
type listLoadedMsg struct {
	key      string
	articles []article.Article
	err      error
}

type searchTickMsg struct {
	seq int
}

type searchResultMsg struct {
	seq      int
	query    string
	articles []article.Article
	err      error
}

// openDetailMsg navigates to the detail route. It carries only the
// identifier; the article is resolved from the store.
type openDetailMsg struct {
	id string
}

type detailLoadedMsg struct {
	id      string
	article article.Article
	saved   bool
	err     error
}

type bookmarkMsg struct {
	id    string
	saved bool
	err   error
}

type unsavedMsg struct {
	id  string
	err error
}

type errMsg struct {
	err error
}
