package cmd

import (
	"fmt"
	"os"

	"github.com/matheuskafuri/headlines/internal/update"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig    string
	flagEphemeral bool
	flagLogStderr bool
	flagLogFile   string
	flagCheck     bool
)

// releasesURL is where version --check looks for newer builds.
var releasesURL = update.ReleasesURL

var rootCmd = &cobra.Command{
	Use:          "headlines",
	Short:        "Terminal news reader",
	Long:         "headlines shows breaking news, category feeds and search results from NewsAPI, and keeps the articles you read and bookmark on this device.",
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "keep articles and bookmarks in memory only")
	rootCmd.PersistentFlags().BoolVar(&flagLogStderr, "log-stderr", false, "log to stderr instead of the log file")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "path to log file")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "check for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(breakingCmd, recommendedCmd, discoverCmd, searchCmd)
	rootCmd.AddCommand(openCmd, saveCmd, unsaveCmd, savedCmd, clearCmd, statsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "headlines %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheck {
			return
		}
		if res := update.Check(cmd.Context(), releasesURL, version); res != nil {
			fmt.Fprintf(out, "A newer version is available: %s\n", res.LatestVersion)
			if res.URL != "" {
				fmt.Fprintln(out, res.URL)
			}
		} else {
			fmt.Fprintln(out, "You are up to date.")
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
