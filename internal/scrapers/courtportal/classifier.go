package courtportal

import (
	"fmt"
	"strings"
)

// Flags are the per-case keyword hits derived from the full timeline.
// NonsuitDismissal, Disposition and AdLitem each fold a whole synonym
// family; Judgment, Trial and Sale track their single keyword so the
// sheet can break the disposition family apart.
type Flags struct {
	NonsuitDismissal bool
	Disposition      bool
	AdLitem          bool
	Judgment         bool
	Trial            bool
	Sale             bool
}

// Classify scans every event once per keyword family. Matching is
// case-insensitive substring over both the type and comment fields, so
// "Order of Non-Suit" and "nonsuited by plaintiff" both count.
func Classify(events []Event, kw Keywords) Flags {
	return Flags{
		NonsuitDismissal: ContainsKeyword(events, kw.Dismissal...),
		Disposition:      ContainsKeyword(events, kw.Disposition...),
		AdLitem:          ContainsKeyword(events, kw.AdLitem...),
		Judgment:         ContainsKeyword(events, "judgment"),
		Trial:            ContainsKeyword(events, "trial"),
		Sale:             ContainsKeyword(events, "sale"),
	}
}

// ContainsKeyword reports whether any event's type or comment contains
// any of the keywords, ignoring case.
func ContainsKeyword(events []Event, keywords ...string) bool {
	for _, e := range events {
		if containsAny(e.Type, keywords) || containsAny(e.Comment, keywords) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	s = strings.ToLower(s)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(s, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// FormatEvent renders one timeline entry the way the tracking sheet
// expects a filing cell.
func FormatEvent(e Event) string {
	return fmt.Sprintf(
		"%s - %s---%s---%s",
		e.Date.Format("2006-01-02"), e.Type, e.Comment, e.Documents,
	)
}

// LastFilings formats the n most recent events, most recent first,
// padding with empty strings so the result always has exactly n cells.
func LastFilings(events []Event, order Order, n int) []string {
	out := make([]string, 0, n)

	switch order {
	case OrderNewestFirst:
		for i := 0; i < len(events) && len(out) < n; i++ {
			out = append(out, FormatEvent(events[i]))
		}
	default:
		for i := len(events) - 1; i >= 0 && len(out) < n; i-- {
			out = append(out, FormatEvent(events[i]))
		}
	}

	for len(out) < n {
		out = append(out, "")
	}
	return out
}
