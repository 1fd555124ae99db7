package courtportal

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"courtrecords-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	selSearchRows = `#searchResultsTable tbody tr`
	// the filed date is the sixth column of a search result row
	selCandidateDate = `td:nth-child(6)`
)

// Candidate is one search-result row possibly referring to the case.
type Candidate struct {
	Href      string
	FiledDate string
}

type Resolution struct {
	Href string
	// more than one candidate survived date filtering; the first in
	// document order was selected
	Ambiguous bool
}

// Resolve turns a case query into the single case-detail location,
// disambiguating homonymous case numbers by exact filed-date match.
func (s *Scraper) Resolve(ctx context.Context, query CaseQuery) (Resolution, error) {
	ctx, span := tracer.Start(ctx, "scraper:Resolve")
	span.SetAttributes(attribute.String("case_number", query.Number))
	defer span.End()

	searchUrl := fmt.Sprintf(
		"%s/search?q=%%22%s%%22",
		strings.TrimRight(s.cfg.BaseUrl, "/"),
		url.QueryEscape(query.Number),
	)
	err := s.driver.Navigate(ctx, searchUrl)
	if err != nil {
		span.SetStatus(codes.Error, "search navigation failed")
		return Resolution{}, fmt.Errorf("load search results: %w", err)
	}
	err = s.settle(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "search results never settled")
		return Resolution{}, err
	}

	doc, err := s.pageDocument(ctx)
	if err != nil {
		return Resolution{}, err
	}

	candidates := parseCandidates(doc)
	span.SetAttributes(attribute.Int("candidates", len(candidates)))

	chosen, ambiguous, err := selectCandidate(candidates, query.FiledDate)
	if err != nil {
		return Resolution{}, err
	}
	if ambiguous {
		slog.WarnContext(
			ctx, "multiple candidates share the filed date, taking the first",
			"case_number", query.Number,
			"filed_date", query.FiledDate,
		)
	}

	return Resolution{Href: chosen.Href, Ambiguous: ambiguous}, nil
}

func parseCandidates(doc *goquery.Document) []Candidate {
	var out []Candidate
	doc.Find(selSearchRows).Each(func(_ int, row *goquery.Selection) {
		href := row.Find("a").First().AttrOr("href", "")
		if href == "" {
			return
		}
		out = append(out, Candidate{
			Href:      href,
			FiledDate: textutil.CleanCell(row.Find(selCandidateDate).First().Text()),
		})
	})
	return out
}

// selectCandidate applies the disambiguation rules: a lone hit is
// authoritative regardless of date; multiple hits are filtered by exact
// filed-date equality; several date-matched survivors resolve to the
// first in document order and are reported as ambiguous.
func selectCandidate(candidates []Candidate, filedDate string) (Candidate, bool, error) {
	switch len(candidates) {
	case 0:
		return Candidate{}, false, ErrCaseNotFound
	case 1:
		return candidates[0], false, nil
	}

	var matched []Candidate
	for _, c := range candidates {
		if c.FiledDate == filedDate {
			matched = append(matched, c)
		}
	}

	if len(matched) == 0 {
		return Candidate{}, false, ErrCaseNotFound
	}
	return matched[0], len(matched) > 1, nil
}
