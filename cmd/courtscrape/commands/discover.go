package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"courtrecords-backend/internal/scrapers/courtportal"
	"courtrecords-backend/lib/serviceutil"
	"courtrecords-backend/services/courtrecords"

	"github.com/spf13/cobra"
)

var (
	discoverCaseType *string
	discoverFrom     *string
	discoverTo       *string
)

func init() {
	discoverCaseType = discoverCmd.Flags().String(
		"case-type", courtportal.CaseTypes[0],
		"Case type to search for. One of: "+strings.Join(courtportal.CaseTypes, ", "),
	)
	discoverFrom = discoverCmd.Flags().String(
		"from", "", "Start of the filed date range, mm/dd/yyyy.",
	)
	discoverTo = discoverCmd.Flags().String(
		"to", "", "End of the filed date range, mm/dd/yyyy.",
	)
	discoverCmd.MarkFlagRequired("from")
	discoverCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(discoverCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover --from <mm/dd/yyyy> --to <mm/dd/yyyy> [--case-type <type>]",
	Short: "Searches the portal for new cases and appends them as ready input rows.",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, date := range []string{*discoverFrom, *discoverTo} {
			_, err := courtportal.ParsePortalDate(date)
			if err != nil {
				return fmt.Errorf("invalid date %q, want mm/dd/yyyy", date)
			}
		}

		ctx := cmd.Context()
		stack := loadStack(ctx)
		defer stack.close(context.Background())

		appended, err := courtrecords.Discover(
			ctx, stack.scraper, stack.sheet, stack.cfg.Sheets.InputSheet,
			courtrecords.DiscoverParams{
				CaseType: *discoverCaseType,
				FromDate: *discoverFrom,
				ToDate:   *discoverTo,
			},
		)
		if err != nil {
			serviceutil.Fatal("discovery failed", err)
		}

		slog.Info("discovery finished", "appended", appended)
		return nil
	},
}
