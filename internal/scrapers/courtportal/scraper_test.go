package courtportal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const singleResultPage = `
<table id="searchResultsTable"><tbody>
	<tr>
		<td><a href="#!/case/900">CV-2024-900</a></td>
		<td>CV-2024-900</td><td>District Court</td><td>TAX DELINQUENCY</td>
		<td>Active</td><td>01/05/2024</td>
	</tr>
</tbody></table>`

const fullCasePage = `
<div><span ng-bind="::case.status">Disposed</span></div>
<table id="partiesTable"><tbody>
	<tr>
		<td data-title="Type">DEFENDANT</td>
		<td data-title="Name">DOE, JOHN</td>
		<td data-title="Attorneys">SMITH, ALICE</td>
	</tr>
	<tr>
		<td data-title="Type">DEFENDANT</td>
		<td data-title="Name">DOE, JOHN</td>
		<td data-title="Attorneys">SMITH, ALICE</td>
	</tr>
	<tr>
		<td data-title="Type">PLAINTIFF</td>
		<td data-title="Name">COUNTY OF TRAVIS</td>
		<td data-title="Attorneys">JONES, BOB</td>
	</tr>
</tbody></table>
<table id="caseDetailsFilingsTable">
	<tr>
		<td>01/05/2024</td><td></td><td>Original Petition</td>
		<td></td><td class="documentsCell"><a>Petition.pdf</a></td>
	</tr>
	<tr>
		<td>02/01/2024</td><td></td><td>Order Appointing Ad Litem</td>
		<td></td><td class="documentsCell"></td>
	</tr>
	<tr>
		<td>03/01/2024</td><td></td><td>Default Judgment</td>
		<td>granted</td><td class="documentsCell"><a>Judgment.pdf</a></td>
	</tr>
	<tr>
		<td>04/01/2024</td><td></td><td>Order of Sale</td>
		<td></td><td class="documentsCell"></td>
	</tr>
</table>
<ul>
	<li class="page-item disabled"><a ng-click="selectPage(page + 1, $event)">Next</a></li>
</ul>`

func TestGetCaseData(t *testing.T) {
	driver := newFakeDriver(map[string]string{
		`https://portal/search?q=%22CV-2024-900%22`: singleResultPage,
		"#!/case/900": fullCasePage,
	})
	s := New(driver, nil, fastConfig("https://portal", t.TempDir()))

	facts, err := s.GetCaseData(context.Background(), CaseQuery{
		Number:    "CV-2024-900",
		FiledDate: "01/05/2024",
	})
	require.NoError(t, err)

	status := "Disposed"
	expected := &CaseFacts{
		Defendants:         []string{"DOE, JOHN"},
		DefendantAttorneys: []string{"SMITH, ALICE"},
		PlaintiffAttorneys: []string{"JONES, BOB"},
		Filings: []string{
			"2024-04-01 - Order of Sale------",
			"2024-03-01 - Default Judgment---granted---Judgment.pdf",
			"2024-02-01 - Order Appointing Ad Litem------",
		},
		NonsuitDismissal: false,
		Disposition:      true,
		AdLitem:          true,
		Judgment:         true,
		Trial:            false,
		Sale:             true,
		Status:           &status,
	}
	if diff := cmp.Diff(expected, facts); diff != "" {
		t.Fatal(diff)
	}
}

func TestGetCaseDataNotFound(t *testing.T) {
	driver := newFakeDriver(map[string]string{
		`https://portal/search?q=%22CV-1%22`: `<table id="searchResultsTable"><tbody></tbody></table>`,
	})
	diagDir := t.TempDir()
	s := New(driver, nil, fastConfig("https://portal", diagDir))

	_, err := s.GetCaseData(context.Background(), CaseQuery{Number: "CV-1"})
	require.ErrorIs(t, err, ErrCaseNotFound)

	// not-found is an expected outcome, no diagnostics are captured
	entries, err := os.ReadDir(diagDir)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Zero(t, driver.screenshots)
}

func TestGetCaseDataCapturesDiagnostics(t *testing.T) {
	driver := newFakeDriver(map[string]string{
		`https://portal/search?q=%22CV-2%22`: singleResultPage,
		"#!/case/900": `
			<table id="caseDetailsFilingsTable">
				<tr>
					<td>garbage</td><td></td><td>Order</td>
					<td></td><td class="documentsCell"></td>
				</tr>
			</table>`,
	})
	diagDir := t.TempDir()
	s := New(driver, nil, fastConfig("https://portal", diagDir))

	_, err := s.GetCaseData(context.Background(), CaseQuery{
		Number:    "CV-2",
		FiledDate: "01/05/2024",
	})
	require.Error(t, err)
	require.Equal(t, 1, driver.screenshots)

	var captured []string
	err = filepath.WalkDir(diagDir, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			captured = append(captured, filepath.Ext(path))
		}
		return err
	})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{".txt", ".png"}, captured)
}

func TestSettleRechecksIndicators(t *testing.T) {
	driver := newFakeDriver(map[string]string{"https://portal": "<div></div>"})
	cfg := fastConfig("https://portal", t.TempDir())
	cfg.SettleChecks = 3
	s := New(driver, nil, cfg)

	err := s.settle(context.Background())
	require.NoError(t, err)

	// both indicators are re-checked on every pass, since a spinner can
	// flicker back before the final render
	expected := []string{
		selSpinner, selLoading,
		selSpinner, selLoading,
		selSpinner, selLoading,
	}
	require.Equal(t, expected, driver.waited)
}

func TestPartiesByRole(t *testing.T) {
	parties := []Party{
		{Role: "defendant", Name: "B", Attorney: "X"},
		{Role: "defendant", Name: "A", Attorney: "X"},
		{Role: "counter-defendant", Name: "C"},
		{Role: "plaintiff", Name: "P", Attorney: "Y"},
	}

	names, attorneys := partiesByRole(parties, "defendant")
	require.Equal(t, []string{"A", "B", "C"}, names)
	require.Equal(t, []string{"X"}, attorneys)
}
