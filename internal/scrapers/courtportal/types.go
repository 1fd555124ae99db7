package courtportal

import (
	"errors"
	"fmt"
	"time"
)

// ErrCaseNotFound means the search produced no usable hit for the
// query. Recoverable: the batch records a degraded row and moves on.
var ErrCaseNotFound = errors.New("case not found")

// ErrSessionFatal means login could not be verified even after
// submitting credentials. Scraping under a dead session silently yields
// garbage, so the whole run has to stop.
var ErrSessionFatal = errors.New("could not establish an authenticated session")

// ParseError marks a harvested row whose required field didn't parse.
// It is never swallowed: a corrupt event date would corrupt every
// "most recent" computation downstream.
type ParseError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: parse %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CaseQuery identifies one case to extract. The case number is not
// unique in the portal's search index; the filed date disambiguates.
type CaseQuery struct {
	Number    string
	FiledDate string // mm/dd/yyyy, as displayed by the portal
}

type Party struct {
	Role     string // lower-cased party type, e.g. "defendant"
	Name     string
	Attorney string
}

type Event struct {
	Date      time.Time
	Type      string
	Comment   string
	Documents string // document labels, comma-joined
}

// CaseFacts is the harvested and derived result for one case. All
// per-case state lives here; nothing is carried between cases except
// the session.
type CaseFacts struct {
	Defendants         []string
	DefendantAttorneys []string
	PlaintiffAttorneys []string
	// the most recent filings formatted for the tracking sheet,
	// most recent first, padded with "" to a fixed width
	Filings []string

	NonsuitDismissal bool
	Disposition      bool // judgment/trial/sale/foreclosure family
	AdLitem          bool
	Judgment         bool
	Trial            bool
	Sale             bool

	// nil when the portal shows no status element at all, as opposed to
	// an element that renders blank
	Status *string

	// more than one search hit survived date filtering; the first in
	// document order was taken
	Ambiguous bool
}
