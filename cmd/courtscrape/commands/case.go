package commands

import (
	"context"
	"os"
	"strings"

	"courtrecords-backend/internal/scrapers/courtportal"
	"courtrecords-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(caseCmd)
}

var caseCmd = &cobra.Command{
	Use:   "case <case number> <filed date mm/dd/yyyy>",
	Short: "Scrapes a single case and prints its facts without touching the sheet.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		stack := loadStack(ctx)
		defer stack.close(context.Background())

		err := stack.scraper.EnsureSession(ctx)
		if err != nil {
			serviceutil.Fatal("failed to establish session", err)
		}

		facts, err := stack.scraper.GetCaseData(ctx, courtportal.CaseQuery{
			Number:    args[0],
			FiledDate: args[1],
		})
		if err != nil {
			serviceutil.Fatal("failed to scrape case", err)
		}

		status := ""
		if facts.Status != nil {
			status = *facts.Status
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRows([]table.Row{
			{"Defendants", strings.Join(facts.Defendants, "\n")},
			{"Defendants' Attorneys", strings.Join(facts.DefendantAttorneys, "\n")},
			{"Plaintiffs' Attorneys", strings.Join(facts.PlaintiffAttorneys, "\n")},
			{"Last Filings", strings.Join(facts.Filings, "\n")},
			{"Nonsuit/Dismissal", facts.NonsuitDismissal},
			{"Disposition", facts.Disposition},
			{"Ad Litem", facts.AdLitem},
			{"Judgment", facts.Judgment},
			{"Trial", facts.Trial},
			{"Sale", facts.Sale},
			{"Status", status},
			{"Ambiguous Match", facts.Ambiguous},
		})
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
