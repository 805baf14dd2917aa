package cmd

import (
	"github.com/matheuskafuri/headlines/internal/feed"
	"github.com/matheuskafuri/headlines/internal/tui"
	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	if e.cfg.APIKey() == "" {
		// Lists will show the API's auth error; saved articles still work
		e.logger.Warn("no API key configured")
	}

	return tui.Run(tui.RunOpts{
		Cfg:    e.cfg,
		News:   e.newsClient(),
		Feeds:  feed.NewRSSFetcher(),
		Store:  e.store,
		Logger: e.logger,
	})
}
