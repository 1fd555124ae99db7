package courtportal

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const casePageOne = `
<div><span ng-bind="::case.status">Active</span></div>
<table id="partiesTable"><tbody>
	<tr>
		<td data-title="Type">DEFENDANT</td>
		<td data-title="Name">DOE, JOHN</td>
		<td data-title="Attorneys">SMITH, ALICE</td>
	</tr>
	<tr>
		<td data-title="Type">Defendant</td>
		<td data-title="Name">DOE, JANE</td>
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
		<td>filed by plaintiff</td>
		<td class="documentsCell"><a>Petition.pdf</a><a>Exhibit A.pdf</a></td>
	</tr>
	<tr>
		<td></td><td></td><td></td><td>spacer row</td><td class="documentsCell"></td>
	</tr>
	<tr>
		<td>02/10/2024</td><td></td><td>Citation</td>
		<td>issued</td>
		<td class="documentsCell">Citation (served)</td>
	</tr>
</table>
<ul>
	<li class="page-item"><a ng-click="selectPage(page + 1, $event)">Next</a></li>
</ul>`

const casePageTwo = `
<div><span ng-bind="::case.status">Active</span></div>
<table id="caseDetailsFilingsTable">
	<tr>
		<td>03/15/2024</td><td></td><td>Default Judgment</td>
		<td>granted</td>
		<td class="documentsCell"><a>Judgment.pdf</a></td>
	</tr>
</table>
<ul>
	<li class="page-item disabled"><a ng-click="selectPage(page + 1, $event)">Next</a></li>
</ul>`

func TestHarvest(t *testing.T) {
	driver := newFakeDriver(map[string]string{
		"#!/case/111": casePageOne,
		"case-page-2": casePageTwo,
	})
	driver.clicks[selNextPage] = func(d *fakeDriver) {
		d.url = "case-page-2"
	}
	s := New(driver, nil, fastConfig("https://portal", t.TempDir()))

	parties, events, status, err := s.Harvest(context.Background(), "#!/case/111")
	require.NoError(t, err)

	expectedParties := []Party{
		{Role: "defendant", Name: "DOE, JOHN", Attorney: "SMITH, ALICE"},
		{Role: "defendant", Name: "DOE, JANE", Attorney: "SMITH, ALICE"},
		{Role: "plaintiff", Name: "COUNTY OF TRAVIS", Attorney: "JONES, BOB"},
	}
	if diff := cmp.Diff(expectedParties, parties); diff != "" {
		t.Fatal(diff)
	}

	expectedEvents := []Event{
		{
			Date:      day("2024-01-05"),
			Type:      "Original Petition",
			Comment:   "filed by plaintiff",
			Documents: "Petition.pdf, Exhibit A.pdf",
		},
		{
			Date:      day("2024-02-10"),
			Type:      "Citation",
			Comment:   "issued",
			Documents: "Citation (served)",
		},
		{
			Date:      day("2024-03-15"),
			Type:      "Default Judgment",
			Comment:   "granted",
			Documents: "Judgment.pdf",
		},
	}
	if diff := cmp.Diff(expectedEvents, events); diff != "" {
		t.Fatal(diff)
	}

	require.NotNil(t, status)
	require.Equal(t, "Active", *status)
}

func TestHarvestMissingStatus(t *testing.T) {
	driver := newFakeDriver(map[string]string{
		"#!/case/1": `<table id="caseDetailsFilingsTable"></table>`,
	})
	s := New(driver, nil, fastConfig("https://portal", t.TempDir()))

	_, events, status, err := s.Harvest(context.Background(), "#!/case/1")
	require.NoError(t, err)
	require.Nil(t, status)
	require.Empty(t, events)
}

func TestHarvestBadDate(t *testing.T) {
	driver := newFakeDriver(map[string]string{
		"#!/case/1": `
			<table id="caseDetailsFilingsTable">
				<tr>
					<td>not a date</td><td></td><td>Order</td>
					<td></td><td class="documentsCell"></td>
				</tr>
			</table>`,
	})
	s := New(driver, nil, fastConfig("https://portal", t.TempDir()))

	_, _, _, err := s.Harvest(context.Background(), "#!/case/1")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "date", parseErr.Field)
	require.Equal(t, "not a date", parseErr.Value)
}
