package courtportal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"courtrecords-backend/lib/htmlutil"
	"courtrecords-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	selCaseStatus   = `[ng-bind="::case.status"]`
	selPartyRows    = `#partiesTable tbody tr`
	selPartyRole    = `[data-title="Type"]`
	selPartyName    = `[data-title="Name"]`
	selPartyCounsel = `[data-title="Attorneys"]`
	selEventRows    = `#caseDetailsFilingsTable tr`
	selEventDate    = `td:nth-child(1)`
	selEventType    = `td:nth-child(3)`
	selEventComment = `td:nth-child(4)`
	selDocumentCell = `.documentsCell`
)

const eventDateFormat = "01/02/2006"

// Harvest loads a case-detail page and accumulates its party records
// and the full paginated event timeline, in page-traversal order. The
// case status element is read while the page is loaded; nil means the
// element is absent (distinct from present-but-blank).
func (s *Scraper) Harvest(ctx context.Context, href string) ([]Party, []Event, *string, error) {
	ctx, span := tracer.Start(ctx, "scraper:Harvest")
	defer span.End()

	err := s.driver.Navigate(ctx, href)
	if err != nil {
		span.SetStatus(codes.Error, "case page navigation failed")
		return nil, nil, nil, fmt.Errorf("load case page: %w", err)
	}
	err = s.settle(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "case page never settled")
		return nil, nil, nil, err
	}

	status, err := s.caseStatus(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	doc, err := s.pageDocument(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	parties := parseParties(doc)

	var events []Event
	for page := 1; ; page++ {
		if page > 1 {
			doc, err = s.pageDocument(ctx)
			if err != nil {
				return nil, nil, nil, err
			}
		}

		pageEvents, err := parseEvents(doc)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "event row parse failed")
			return nil, nil, nil, fmt.Errorf("events page %d: %w", page, err)
		}
		events = append(events, pageEvents...)

		n, err := s.driver.Count(ctx, selNextPage)
		if err != nil {
			return nil, nil, nil, err
		}
		if n == 0 {
			break
		}
		err = s.driver.Click(ctx, selNextPage)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("advance to events page %d: %w", page+1, err)
		}
		err = s.settle(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	span.SetAttributes(
		attribute.Int("parties", len(parties)),
		attribute.Int("events", len(events)),
	)
	return parties, events, status, nil
}

func (s *Scraper) caseStatus(ctx context.Context) (*string, error) {
	n, err := s.driver.Count(ctx, selCaseStatus)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	text, err := s.driver.Text(ctx, selCaseStatus)
	if err != nil {
		return nil, err
	}
	text = textutil.CleanCell(text)
	return &text, nil
}

// parseParties reads the party table. It is not paginated, and every
// row is kept - callers filter by role later.
func parseParties(doc *goquery.Document) []Party {
	var out []Party
	doc.Find(selPartyRows).Each(func(_ int, row *goquery.Selection) {
		role := strings.ToLower(textutil.CleanCell(row.Find(selPartyRole).Text()))
		name := textutil.CleanCell(row.Find(selPartyName).Text())
		if role == "" && name == "" {
			return
		}
		out = append(out, Party{
			Role:     role,
			Name:     name,
			Attorney: textutil.CleanCell(row.Find(selPartyCounsel).Text()),
		})
	})
	return out
}

// parseEvents reads one page of the filings table. Rows with an empty
// type cell are spacer rows and are skipped; a row whose date cell
// doesn't parse fails the whole case.
func parseEvents(doc *goquery.Document) ([]Event, error) {
	var out []Event
	var parseErr error

	doc.Find(selEventRows).EachWithBreak(func(i int, row *goquery.Selection) bool {
		eventType := textutil.CleanCell(row.Find(selEventType).Text())
		if eventType == "" {
			return true
		}

		dateText := textutil.CleanCell(row.Find(selEventDate).Text())
		date, err := time.Parse(eventDateFormat, dateText)
		if err != nil {
			parseErr = &ParseError{Row: i + 1, Field: "date", Value: dateText, Err: err}
			return false
		}

		out = append(out, Event{
			Date:      date,
			Type:      eventType,
			Comment:   textutil.CleanCell(row.Find(selEventComment).Text()),
			Documents: documentLabels(row.Find(selDocumentCell)),
		})
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return out, nil
}

// documentLabels flattens the documents cell into one comma-joined
// string. The cell usually holds one anchor per document.
func documentLabels(cell *goquery.Selection) string {
	anchors := cell.Find("a")
	if anchors.Length() == 0 {
		return textutil.FoldLines(cell.Text(), ", ")
	}

	var labels []string
	for _, node := range anchors.Nodes {
		label := textutil.CleanCell(htmlutil.GetText(node))
		if label != "" {
			labels = append(labels, label)
		}
	}
	return strings.Join(labels, ", ")
}
