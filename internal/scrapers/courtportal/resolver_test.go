package courtportal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectCandidate(t *testing.T) {
	a := Candidate{Href: "#!/case/a", FiledDate: "01/02/2024"}
	b := Candidate{Href: "#!/case/b", FiledDate: "05/06/2024"}
	c := Candidate{Href: "#!/case/c", FiledDate: "05/06/2024"}

	testCases := []struct {
		name       string
		candidates []Candidate
		filedDate  string
		expected   Candidate
		ambiguous  bool
		err        error
	}{
		{
			name: "no candidates",
			err:  ErrCaseNotFound,
		},
		{
			name:       "single hit wins regardless of date",
			candidates: []Candidate{a},
			filedDate:  "12/31/1999",
			expected:   a,
		},
		{
			name:       "date filter picks among homonyms",
			candidates: []Candidate{a, b},
			filedDate:  "05/06/2024",
			expected:   b,
		},
		{
			name:       "no homonym matches the date",
			candidates: []Candidate{a, b},
			filedDate:  "12/31/1999",
			err:        ErrCaseNotFound,
		},
		{
			name:       "tie resolves to first in document order",
			candidates: []Candidate{a, b, c},
			filedDate:  "05/06/2024",
			expected:   b,
			ambiguous:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ambiguous, err := selectCandidate(tc.candidates, tc.filedDate)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
			require.Equal(t, tc.ambiguous, ambiguous)
		})
	}
}

const searchResultsPage = `
<table id="searchResultsTable"><tbody>
	<tr>
		<td><a href="#!/case/111">CV-2024-111</a></td>
		<td>CV-2024-111</td><td>District Court</td><td>TAX DELINQUENCY</td>
		<td>Active</td><td> 01/15/2024 </td>
	</tr>
	<tr>
		<td><a href="#!/case/222">CV-2024-111</a></td>
		<td>CV-2024-111</td><td>County Court</td><td>TAX DELINQUENCY</td>
		<td>Active</td><td>03/20/2024</td>
	</tr>
	<tr><td colspan="6">no link in this row</td></tr>
</tbody></table>`

func TestResolve(t *testing.T) {
	driver := newFakeDriver(map[string]string{
		`https://portal/search?q=%22CV-2024-111%22`: searchResultsPage,
		`https://portal/search?q=%22CV-0000-000%22`: `<table id="searchResultsTable"><tbody></tbody></table>`,
	})
	s := New(driver, nil, fastConfig("https://portal", t.TempDir()))

	t.Run("homonyms disambiguated by filed date", func(t *testing.T) {
		res, err := s.Resolve(context.Background(), CaseQuery{
			Number:    "CV-2024-111",
			FiledDate: "03/20/2024",
		})
		require.NoError(t, err)
		require.Equal(t, Resolution{Href: "#!/case/222"}, res)
	})

	t.Run("whitespace around the date cell is ignored", func(t *testing.T) {
		res, err := s.Resolve(context.Background(), CaseQuery{
			Number:    "CV-2024-111",
			FiledDate: "01/15/2024",
		})
		require.NoError(t, err)
		require.Equal(t, Resolution{Href: "#!/case/111"}, res)
	})

	t.Run("empty results", func(t *testing.T) {
		_, err := s.Resolve(context.Background(), CaseQuery{
			Number:    "CV-0000-000",
			FiledDate: "01/01/2024",
		})
		require.ErrorIs(t, err, ErrCaseNotFound)
	})
}
