package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/matheuskafuri/headlines/internal/article"
	"github.com/matheuskafuri/headlines/internal/browser"
	"github.com/matheuskafuri/headlines/internal/kv"
	"github.com/matheuskafuri/headlines/internal/store"
	"github.com/spf13/cobra"
)

// openURL is swapped out in tests.
var openURL = browser.Open

var openCmd = &cobra.Command{
	Use:   "open <id>",
	Short: "Open a cached article in the browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		a, err := findArticle(cmd, e, args[0])
		if err != nil {
			return err
		}
		if err := openURL(a.URL); err != nil {
			return fmt.Errorf("opening browser: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", a.URL)
		return nil
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <id>",
	Short: "Bookmark a cached article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		a, err := findArticle(cmd, e, args[0])
		if err != nil {
			return err
		}
		if err := e.store.SaveArticle(cmd.Context(), article.ID(a)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved: %s\n", a.Title)
		return nil
	},
}

var unsaveCmd = &cobra.Command{
	Use:   "unsave <id>",
	Short: "Remove a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.store.UnsaveArticle(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed bookmark %s\n", args[0])
		return nil
	},
}

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "List bookmarked articles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		saved, err := e.store.SavedArticles(cmd.Context())
		if err != nil {
			return err
		}
		return printArticles(cmd.OutOrStdout(), saved, flagJSON, time.Now())
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete cached articles and bookmarks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.store.ClearCache(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show storage statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		cached, err := e.store.CachedArticles(ctx)
		if err != nil {
			return fmt.Errorf("reading cache: %w", err)
		}
		saved, err := e.store.SavedArticleIDs(ctx)
		if err != nil {
			return fmt.Errorf("reading bookmarks: %w", err)
		}

		out := cmd.OutOrStdout()
		if db, ok := e.backend.(*kv.SQLite); ok {
			keys, size, err := db.Stats(ctx)
			if err != nil {
				return fmt.Errorf("reading stats: %w", err)
			}
			fmt.Fprintf(out, "Storage: %s\n", db.Path())
			fmt.Fprintf(out, "Keys: %d\n", keys)
			fmt.Fprintf(out, "Size: %s\n", formatBytes(size))
		} else {
			fmt.Fprintf(out, "Storage: %s\n", e.backendName)
		}
		fmt.Fprintf(out, "Cached articles: %d\n", len(cached))
		fmt.Fprintf(out, "Saved articles: %d\n", len(saved))
		return nil
	},
}

func findArticle(cmd *cobra.Command, e *env, id string) (article.Article, error) {
	a, err := e.store.FindCachedArticle(cmd.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return article.Article{}, fmt.Errorf("article %s not found or expired", id)
	}
	return a, err
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
