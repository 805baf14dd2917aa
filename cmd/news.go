package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/matheuskafuri/headlines/internal/article"
	"github.com/matheuskafuri/headlines/internal/newsapi"
	"github.com/spf13/cobra"
)

var flagJSON bool

var breakingCmd = &cobra.Command{
	Use:   "breaking",
	Short: "Print top headlines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetchAndPrint(cmd, func(ctx context.Context, c *newsapi.Client) (*newsapi.Response, error) {
			return c.Breaking(ctx)
		})
	},
}

var recommendedCmd = &cobra.Command{
	Use:   "recommended",
	Short: "Print headlines from the recommended category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetchAndPrint(cmd, func(ctx context.Context, c *newsapi.Client) (*newsapi.Response, error) {
			return c.Recommended(ctx)
		})
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover <category>",
	Short: "Print headlines for a category",
	Long: `Print headlines for one category, e.g. business, entertainment, general,
health, science, sports or technology.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category := strings.ToLower(args[0])
		return fetchAndPrint(cmd, func(ctx context.Context, c *newsapi.Client) (*newsapi.Response, error) {
			return c.Discover(ctx, category)
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search all articles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return fetchAndPrint(cmd, func(ctx context.Context, c *newsapi.Client) (*newsapi.Response, error) {
			return c.Search(ctx, query)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{breakingCmd, recommendedCmd, discoverCmd, searchCmd, savedCmd} {
		c.Flags().BoolVar(&flagJSON, "json", false, "print raw articles as JSON")
	}
}

// fetchAndPrint runs one API call, caches every article it prints so the
// printed ids resolve later, and writes the list to stdout.
func fetchAndPrint(cmd *cobra.Command, fetch func(context.Context, *newsapi.Client) (*newsapi.Response, error)) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.requireAPIKey(); err != nil {
		return err
	}

	resp, err := fetch(ctx, e.newsClient())
	if err != nil {
		return err
	}
	articles := article.WithoutRemoved(resp.Articles)

	for _, a := range articles {
		if err := e.store.CacheArticle(ctx, a); err != nil {
			e.logger.Warn("cache article", "id", article.ID(a), "err", err)
		}
	}

	return printArticles(cmd.OutOrStdout(), articles, flagJSON, time.Now())
}

func printArticles(w io.Writer, articles []article.Article, asJSON bool, now time.Time) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(articles)
	}

	if len(articles) == 0 {
		fmt.Fprintln(w, "No articles.")
		return nil
	}
	for _, a := range articles {
		fmt.Fprintf(w, "%s  %s\n", article.ID(a), a.Title)
		meta := a.Source.Name
		if when := article.RelativeDate(a.Published(), now); when != "" {
			meta += " · " + when
		}
		fmt.Fprintf(w, "    %s\n", meta)
		if a.URL != "" {
			fmt.Fprintf(w, "    %s\n", a.URL)
		}
	}
	return nil
}
