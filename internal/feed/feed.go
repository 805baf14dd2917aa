// Package feed reads configured RSS/Atom sources into the same article
// shape the news API returns.
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matheuskafuri/headlines/internal/article"
	"github.com/matheuskafuri/headlines/internal/config"
	"github.com/mmcdole/gofeed"
)

type Fetcher interface {
	Fetch(ctx context.Context, source config.Source) ([]article.Article, error)
}

type RSSFetcher struct {
	parser *gofeed.Parser
}

func NewRSSFetcher() *RSSFetcher {
	return &RSSFetcher{parser: gofeed.NewParser()}
}

func (f *RSSFetcher) Fetch(ctx context.Context, source config.Source) ([]article.Article, error) {
	feed, err := f.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}
	return convert(feed, source.Name), nil
}

func convert(feed *gofeed.Feed, sourceName string) []article.Article {
	articles := make([]article.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		var pub string
		if item.PublishedParsed != nil {
			pub = item.PublishedParsed.UTC().Format(time.RFC3339)
		} else if item.UpdatedParsed != nil {
			pub = item.UpdatedParsed.UTC().Format(time.RFC3339)
		}

		desc := item.Description
		if desc == "" {
			desc = item.Content
		}

		var image string
		if item.Image != nil {
			image = item.Image.URL
		}

		var author string
		if item.Author != nil {
			author = item.Author.Name
		}

		a := article.Article{
			Source:      article.Source{Name: sourceName},
			Author:      author,
			Title:       item.Title,
			Description: truncate(stripHTML(desc), 300),
			URL:         item.Link,
			URLToImage:  image,
			PublishedAt: pub,
			Content:     stripHTML(item.Content),
		}
		if article.IsRemoved(a) {
			continue
		}
		articles = append(articles, a)
	}
	return articles
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
