package courtportal

import "time"

// Order declares which way the portal's filings table is sorted, so
// "most recent" slices read from the right end instead of assuming a
// direction.
type Order int

const (
	// OrderOldestFirst means page traversal yields ascending dates:
	// the most recent event is the last one harvested. This is the
	// portal's default sort.
	OrderOldestFirst Order = iota
	OrderNewestFirst
)

// Keywords holds the synonym families the classifier folds into
// composite flags. They are configuration, not code, so a new synonym
// doesn't touch harvesting logic.
type Keywords struct {
	Dismissal   []string `json:"dismissal"`
	Disposition []string `json:"disposition"`
	AdLitem     []string `json:"ad_litem"`
}

func DefaultKeywords() Keywords {
	return Keywords{
		Dismissal:   []string{"nonsuit", "non-suit", "non_suit", "dismissal", "dismiss"},
		Disposition: []string{"judgment", "trial", "sale", "foreclosure"},
		AdLitem:     []string{"ad litem", "ad-litem", "litem"},
	}
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Config struct {
	// portal home, e.g. https://research.txcourts.gov/CourtRecordsSearch/#!
	BaseUrl     string
	Credentials Credentials

	// ceiling for a single wait-until-absent poll
	WaitTimeout time.Duration
	// how many times a loading indicator has to stay gone before a page
	// counts as settled (it can flicker back mid-render)
	SettleChecks int
	SettlePause  time.Duration

	EventOrder Order
	Keywords   Keywords

	// directory failure notes and screenshots are written to
	DiagnosticsDir string
}

func (c Config) withDefaults() Config {
	if c.WaitTimeout == 0 {
		c.WaitTimeout = time.Second * 60
	}
	if c.SettleChecks == 0 {
		c.SettleChecks = 3
	}
	if c.SettlePause == 0 {
		c.SettlePause = time.Second
	}
	if len(c.Keywords.Dismissal) == 0 && len(c.Keywords.Disposition) == 0 &&
		len(c.Keywords.AdLitem) == 0 {
		c.Keywords = DefaultKeywords()
	}
	if c.DiagnosticsDir == "" {
		c.DiagnosticsDir = "diagnostics"
	}
	return c
}
