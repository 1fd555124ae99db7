package courtrecords

import (
	"strconv"
	"time"

	"courtrecords-backend/internal/scrapers/courtportal"
	"courtrecords-backend/lib/textutil"
)

// Header is the output sheet's fixed column order. ProjectRow must
// produce cells in exactly this order.
// number of fixed-width "Filing N" columns in Header
const filingColumns = 3

var Header = []string{
	"Case Number",
	"Case Filed Date",
	"Run Date",
	"Defendants",
	"Defendant Count",
	"Filing 1",
	"Filing 2",
	"Filing 3",
	"Is Judgment",
	"Is Trial",
	"Is Sale",
	"Nonsuit/Dismissal",
	"Judgment/Trial/Sale/Foreclosure",
	"Ad Litem",
	"Case Status",
	"Defendants' Attorneys",
	"Plaintiffs' Attorneys",
}

// ProjectRow flattens one case into an output sheet row. A nil facts
// produces a degraded row: identifying columns only, every case-fact
// column blank, so not-found cases still leave a dated trace.
func ProjectRow(query courtportal.CaseQuery, facts *courtportal.CaseFacts, runDate time.Time) []string {
	row := []string{
		query.Number,
		query.FiledDate,
		runDate.Format("01/02/2006"),
	}
	if facts == nil {
		for len(row) < len(Header) {
			row = append(row, "")
		}
		return row
	}

	status := ""
	if facts.Status != nil {
		status = *facts.Status
	}

	row = append(row,
		textutil.JoinLines(facts.Defendants),
		strconv.Itoa(len(facts.Defendants)),
	)
	// exactly filingColumns cells, or every later column shifts
	filings := facts.Filings
	if len(filings) > filingColumns {
		filings = filings[:filingColumns]
	}
	row = append(row, filings...)
	for i := len(filings); i < filingColumns; i++ {
		row = append(row, "")
	}
	row = append(row,
		yesNo(facts.Judgment),
		yesNo(facts.Trial),
		yesNo(facts.Sale),
		yesNo(facts.NonsuitDismissal),
		yesNo(facts.Disposition),
		yesNo(facts.AdLitem),
		status,
		textutil.JoinLines(facts.DefendantAttorneys),
		textutil.JoinLines(facts.PlaintiffAttorneys),
	)
	return row
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
