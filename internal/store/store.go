// Package store persists viewed articles and the user's bookmarks on top of
// a kv.Backend. Both collections are JSON blobs under fixed keys.
//
// Every method returns a safe default alongside any error (an empty list,
// false), so callers that only log can keep going.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/matheuskafuri/headlines/internal/article"
	"github.com/matheuskafuri/headlines/internal/kv"
	"github.com/matheuskafuri/headlines/internal/logging"
)

const (
	CachedArticlesKey = "cached_articles"
	SavedArticlesKey  = "saved_articles"
)

type Store struct {
	backend kv.Backend
	logger  *log.Logger

	// Serializes read-modify-write cycles so concurrent writers never drop
	// each other's updates.
	mu sync.Mutex
}

func New(backend kv.Backend, logger *log.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logging.OrDiscard(logger).WithPrefix("store"),
	}
}

// CacheArticle inserts a, replacing any entry with the same identifier.
func (s *Store) CacheArticle(ctx context.Context, a article.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cacheLocked(ctx, a)
}

func (s *Store) cacheLocked(ctx context.Context, a article.Article) error {
	// A corrupt blob reads as empty and is overwritten below
	cached, err := s.cachedLocked(ctx)
	if err != nil && !errors.Is(err, errCorrupt) {
		return err
	}

	id := article.ID(a)
	out := make([]article.Article, 0, len(cached)+1)
	for _, c := range cached {
		if article.ID(c) != id {
			out = append(out, c)
		}
	}
	out = append(out, a)

	if err := s.write(ctx, "cache", CachedArticlesKey, out); err != nil {
		return err
	}
	s.logger.Debug("cached article", "id", id, "total", len(out))
	return nil
}

// CachedArticles returns every cached article. An absent key yields an
// empty list; a malformed blob yields an empty list and a StorageError.
func (s *Store) CachedArticles(ctx context.Context) ([]article.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cachedLocked(ctx)
}

func (s *Store) cachedLocked(ctx context.Context) ([]article.Article, error) {
	var cached []article.Article
	if err := s.read(ctx, "get cached", CachedArticlesKey, &cached); err != nil {
		return []article.Article{}, err
	}
	if cached == nil {
		cached = []article.Article{}
	}
	return cached, nil
}

// FindCachedArticle resolves id against the cache. Identifiers in the older
// percent-encoded form are still accepted; a hit that way re-caches the
// article so it stays reachable under its current identifier.
func (s *Store) FindCachedArticle(ctx context.Context, id string) (article.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cached, err := s.cachedLocked(ctx)
	if err != nil {
		return article.Article{}, err
	}

	for _, a := range cached {
		if article.ID(a) == id {
			return a, nil
		}
	}

	for _, a := range cached {
		if article.LegacyID(a) == id {
			s.logger.Info("migrating legacy article id", "legacy", id, "id", article.ID(a))
			if err := s.cacheLocked(ctx, a); err != nil {
				s.logger.Warn("re-caching legacy article failed", "id", id, "err", err)
			}
			return a, nil
		}
	}

	return article.Article{}, ErrNotFound
}

// SaveArticle bookmarks id. Saving an id twice is a no-op.
func (s *Store) SaveArticle(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.savedIDsLocked(ctx)
	if err != nil && !errors.Is(err, errCorrupt) {
		return err
	}
	if slices.Contains(saved, id) {
		return nil
	}
	return s.write(ctx, "save", SavedArticlesKey, append(saved, id))
}

// UnsaveArticle removes id from the bookmarks. The cached article stays.
func (s *Store) UnsaveArticle(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.savedIDsLocked(ctx)
	if err != nil && !errors.Is(err, errCorrupt) {
		return err
	}
	filtered := slices.DeleteFunc(saved, func(v string) bool { return v == id })
	return s.write(ctx, "unsave", SavedArticlesKey, filtered)
}

func (s *Store) IsArticleSaved(ctx context.Context, id string) (bool, error) {
	saved, err := s.SavedArticleIDs(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(saved, id), nil
}

// SavedArticleIDs returns bookmarked identifiers in the order they were saved.
func (s *Store) SavedArticleIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savedIDsLocked(ctx)
}

func (s *Store) savedIDsLocked(ctx context.Context) ([]string, error) {
	var saved []string
	if err := s.read(ctx, "get saved", SavedArticlesKey, &saved); err != nil {
		return []string{}, err
	}
	if saved == nil {
		saved = []string{}
	}
	return saved, nil
}

// SavedArticles returns cached articles whose identifier is bookmarked, in
// cache order. A bookmark whose article is no longer cached is skipped.
func (s *Store) SavedArticles(ctx context.Context) ([]article.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.savedIDsLocked(ctx)
	if err != nil {
		return []article.Article{}, err
	}
	cached, err := s.cachedLocked(ctx)
	if err != nil {
		return []article.Article{}, err
	}

	want := make(map[string]bool, len(saved))
	for _, id := range saved {
		want[id] = true
	}
	out := []article.Article{}
	for _, a := range cached {
		if want[article.ID(a)] {
			out = append(out, a)
		}
	}
	return out, nil
}

// ClearCache drops both the cached articles and the bookmarks.
func (s *Store) ClearCache(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, key := range []string{CachedArticlesKey, SavedArticlesKey} {
		if err := s.backend.Remove(ctx, key); err != nil {
			errs = append(errs, &StorageError{Op: "clear", Key: key, Err: err})
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Error("clearing cache failed", "err", err)
		return err
	}
	s.logger.Info("cache cleared")
	return nil
}

func (s *Store) read(ctx context.Context, op, key string, v any) error {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return s.fail(op, key, err)
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return s.fail(op, key, fmt.Errorf("%w: %v", errCorrupt, err))
	}
	return nil
}

func (s *Store) write(ctx context.Context, op, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return s.fail(op, key, err)
	}
	if err := s.backend.Set(ctx, key, string(data)); err != nil {
		return s.fail(op, key, err)
	}
	return nil
}

func (s *Store) fail(op, key string, err error) error {
	serr := &StorageError{Op: op, Key: key, Err: err}
	s.logger.Error("storage operation failed", "op", op, "key", key, "err", err)
	return serr
}
