package commands

import (
	"context"
	"log/slog"

	"courtrecords-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Establishes a portal session and persists it for later runs.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		stack := loadStack(ctx)
		defer stack.close(context.Background())

		err := stack.scraper.EnsureSession(ctx)
		if err != nil {
			serviceutil.Fatal("failed to establish session", err)
		}
		slog.Info("session established and persisted")
	},
}
