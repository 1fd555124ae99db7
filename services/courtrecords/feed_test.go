package courtrecords

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// fakeSheet is an in-memory Sheet with scriptable write failures.
type fakeSheet struct {
	rows    map[string][][]string
	updates map[string]string
	// number of writes that should fail before writes start succeeding
	failWrites int
	writeCalls int
}

func newFakeSheet() *fakeSheet {
	return &fakeSheet{
		rows:    map[string][][]string{},
		updates: map[string]string{},
	}
}

func (s *fakeSheet) ReadRows(ctx context.Context, sheet string) ([][]string, error) {
	return s.rows[sheet], nil
}

func (s *fakeSheet) write() error {
	s.writeCalls++
	if s.failWrites > 0 {
		s.failWrites--
		return fmt.Errorf("quota exceeded")
	}
	return nil
}

func (s *fakeSheet) AppendRow(ctx context.Context, sheet string, row []string) error {
	err := s.write()
	if err != nil {
		return err
	}
	s.rows[sheet] = append(s.rows[sheet], row)
	return nil
}

func (s *fakeSheet) UpdateCell(ctx context.Context, sheet string, row, col int, value string) error {
	err := s.write()
	if err != nil {
		return err
	}
	s.updates[fmt.Sprintf("%s!%d:%d", sheet, row, col)] = value
	return nil
}

func TestReadInput(t *testing.T) {
	sheet := newFakeSheet()
	sheet.rows["Input"] = [][]string{
		{"Case Number", "Case Filed Date", "Description", "Location", "Case Type", "Status"},
		{"CV-1", "01/01/2024", "d1", "l1", "t1", "ready"},
		{"CV-2", "02/02/2024", "d2", "l2", "t2", "scraped"},
		{"CV-3", "03/03/2024", "d3", "l3", "t3", " ready "},
		{"", "04/04/2024", "", "", "", "ready"},
		{"CV-5", "05/05/2024"},
	}

	ready, statusCol, err := ReadInput(context.Background(), sheet, "Input")
	require.NoError(t, err)
	require.Equal(t, 6, statusCol)

	expected := []InputRow{
		{Index: 2, CaseNumber: "CV-1", FiledDate: "01/01/2024", Status: "ready"},
		{Index: 4, CaseNumber: "CV-3", FiledDate: "03/03/2024", Status: "ready"},
	}
	if diff := cmp.Diff(expected, ready); diff != "" {
		t.Fatal(diff)
	}
}

func TestReadInputMissingColumns(t *testing.T) {
	sheet := newFakeSheet()
	sheet.rows["Input"] = [][]string{{"Something", "Else"}}

	_, _, err := ReadInput(context.Background(), sheet, "Input")
	require.Error(t, err)
}

func TestReadInputEmptySheet(t *testing.T) {
	sheet := newFakeSheet()
	ready, statusCol, err := ReadInput(context.Background(), sheet, "Input")
	require.NoError(t, err)
	require.Empty(t, ready)
	require.Equal(t, fallbackStatusColumn, statusCol)
}

func TestTrackedCases(t *testing.T) {
	sheet := newFakeSheet()
	sheet.rows["Input"] = [][]string{
		{"Case Number", "Case Filed Date", "Description", "Status"},
		{"CV-1", "01/01/2024", "COUNTY vs. DOE, JOHN", "ready"},
		{"CV-2", "02/02/2024", "", "scraped"},
		{"", "03/03/2024", "orphan row", "ready"},
	}

	tracked, descriptions, err := TrackedCases(context.Background(), sheet, "Input")
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"CV-1": true, "CV-2": true}, tracked)
	require.Equal(t, []string{"COUNTY vs. DOE, JOHN"}, descriptions)
}

func TestTrackedCasesNoDescriptionColumn(t *testing.T) {
	sheet := newFakeSheet()
	sheet.rows["Input"] = [][]string{
		{"Case Number", "Case Filed Date", "Status"},
		{"CV-1", "01/01/2024", "ready"},
	}

	tracked, descriptions, err := TrackedCases(context.Background(), sheet, "Input")
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"CV-1": true}, tracked)
	require.Empty(t, descriptions)
}
