package commands

import (
	"context"
	"os"

	"courtrecords-backend/lib/serviceutil"
	"courtrecords-backend/services/courtrecords"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes every ready case from the input sheet into the output sheet.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		stack := loadStack(ctx)
		defer stack.close(context.Background())

		service := courtrecords.NewService(
			stack.scraper, stack.sheet, stack.database, stack.serviceConfig(),
		)
		summary, err := service.Run(ctx)
		if err != nil {
			serviceutil.Fatal("batch run failed", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Run", "Total", "Scraped", "No Data", "Errored"})
		t.AppendRow(table.Row{
			summary.RunId, summary.Total, summary.Scraped, summary.NoData, summary.Errored,
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
