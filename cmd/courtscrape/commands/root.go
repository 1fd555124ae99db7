package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath *string

var rootCmd = &cobra.Command{
	Use:   "courtscrape",
	Short: "courtscrape scrapes the court records portal into the tracking spreadsheet.",
}

func init() {
	configPath = rootCmd.PersistentFlags().String(
		"config", "config.json5", "Path to the configuration file.",
	)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
