package courtrecords

import (
	"context"
	"fmt"
	"strings"
)

// Sheet is the tracking spreadsheet collaborator. lib/sheets implements
// it against the Google Sheets values API; tests use an in-memory fake.
type Sheet interface {
	ReadRows(ctx context.Context, sheet string) ([][]string, error)
	AppendRow(ctx context.Context, sheet string, row []string) error
	// UpdateCell writes a single cell, 1-based coordinates.
	UpdateCell(ctx context.Context, sheet string, row, col int, value string) error
}

// InputRow is one tracked case from the input sheet.
type InputRow struct {
	// 1-based spreadsheet row, used to write the status back
	Index      int
	CaseNumber string
	FiledDate  string
	Status     string
}

const StatusReady = "ready"

// statusColumn falls back to the input sheet's historical layout when
// the header is missing a Status column.
const fallbackStatusColumn = 6

// ReadInput reads the input sheet and returns the rows whose status is
// "ready", plus the 1-based status column index for writebacks. Columns
// are located by header name so the sheet can gain columns without
// breaking the feed.
func ReadInput(ctx context.Context, sheet Sheet, name string) ([]InputRow, int, error) {
	rows, err := sheet.ReadRows(ctx, name)
	if err != nil {
		return nil, 0, fmt.Errorf("read input sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, fallbackStatusColumn, nil
	}

	header := map[string]int{}
	for i, cell := range rows[0] {
		header[strings.TrimSpace(cell)] = i
	}
	numberCol, ok := header["Case Number"]
	if !ok {
		return nil, 0, fmt.Errorf("input sheet has no %q column", "Case Number")
	}
	dateCol, ok := header["Case Filed Date"]
	if !ok {
		return nil, 0, fmt.Errorf("input sheet has no %q column", "Case Filed Date")
	}
	statusCol, ok := header["Status"]
	if !ok {
		statusCol = fallbackStatusColumn - 1
	}

	var ready []InputRow
	for i, row := range rows[1:] {
		r := InputRow{
			// +2: 1-based rows plus the header row
			Index:      i + 2,
			CaseNumber: cellAt(row, numberCol),
			FiledDate:  cellAt(row, dateCol),
			Status:     cellAt(row, statusCol),
		}
		if r.CaseNumber == "" || r.Status != StatusReady {
			continue
		}
		ready = append(ready, r)
	}
	return ready, statusCol + 1, nil
}

// TrackedCases returns every non-empty case number in the input sheet,
// regardless of status, plus the non-empty descriptions on file.
// Discovery uses the numbers to skip already-tracked cases and the
// descriptions to spot likely refilings under a new number.
func TrackedCases(ctx context.Context, sheet Sheet, name string) (map[string]bool, []string, error) {
	rows, err := sheet.ReadRows(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("read input sheet: %w", err)
	}
	if len(rows) == 0 {
		return map[string]bool{}, nil, nil
	}

	numberCol := 0
	descriptionCol := -1
	for i, cell := range rows[0] {
		switch strings.TrimSpace(cell) {
		case "Case Number":
			numberCol = i
		case "Description":
			descriptionCol = i
		}
	}

	numbers := map[string]bool{}
	var descriptions []string
	for _, row := range rows[1:] {
		n := cellAt(row, numberCol)
		if n == "" {
			continue
		}
		numbers[n] = true
		if d := cellAt(row, descriptionCol); d != "" {
			descriptions = append(descriptions, d)
		}
	}
	return numbers, descriptions, nil
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
