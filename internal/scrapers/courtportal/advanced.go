package courtportal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"courtrecords-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	selAdvancedSearch  = `#btnAdvancedSearch`
	selAddCondition    = `#btnAddCondition`
	selConditionField  = `select[ng-model="condition.fieldOption"]`
	selCaseTypeSelect  = `#selectionButton_0`
	selCaseTypeSearch  = `#searchText`
	selCaseTypeSubmit  = `#searchSelectionButton`
	selCaseTypeOption  = `#selectAllResults + div label`
	selCaseTypeDone    = `#doneSelectionButton`
	selConditionFrom   = `input[ng-model="condition.fromValue"]`
	selConditionTo     = `input[ng-model="condition.toValue"]`
	selSearchSubmit    = `#btnSearch`
	selResultCards     = `.list-group > div`
	selCardDescription = `.card-title`
	selCardNumber      = `.card-sub-header`
	selCardLocation    = `.row:last-child .col-md-2:first-child span`
	selCardFiledDate   = `.row:last-child .col-md-2:last-child > [ng-bind]`
)

// CaseTypes are the portal case-type filter values relevant to the
// tracked docket.
var CaseTypes = []string{
	"TAX DELINQUENCY",
	"QUIET TITLE",
	"FORECLOSURE - OTHER",
	"FORECLOSURE - HOME EQUITY-EXPEDITED",
	"DEBT/CONTRACT - OTHER",
	"OTHER CIVIL",
	"OTHER PROPERTY",
}

// DiscoveredCase is one advanced-search result card.
type DiscoveredCase struct {
	Description string
	Number      string
	Location    string
	FiledDate   string
}

// AdvancedSearch filters the portal by case type and filed-date range,
// then walks every results page collecting the case cards. Dates use
// the portal's mm/dd/yyyy format.
func (s *Scraper) AdvancedSearch(ctx context.Context, caseType, fromDate, toDate string) ([]DiscoveredCase, error) {
	ctx, span := tracer.Start(ctx, "scraper:AdvancedSearch")
	span.SetAttributes(
		attribute.String("case_type", caseType),
		attribute.String("from", fromDate),
		attribute.String("to", toDate),
	)
	defer span.End()

	err := s.goHome(ctx)
	if err != nil {
		return nil, err
	}
	err = s.clickAndSettle(ctx, selAdvancedSearch, "open advanced search")
	if err != nil {
		span.SetStatus(codes.Error, "advanced search did not open")
		return nil, err
	}

	err = s.filterByCaseType(ctx, caseType)
	if err != nil {
		span.SetStatus(codes.Error, "case type filter failed")
		return nil, err
	}
	err = s.filterByFiledDates(ctx, fromDate, toDate)
	if err != nil {
		span.SetStatus(codes.Error, "filed date filter failed")
		return nil, err
	}

	err = s.clickAndSettle(ctx, selSearchSubmit, "submit search")
	if err != nil {
		return nil, err
	}

	var cases []DiscoveredCase
	for page := 1; ; page++ {
		doc, err := s.pageDocument(ctx)
		if err != nil {
			return nil, err
		}

		pageCases := parseResultCards(doc)
		if page == 1 && len(pageCases) == 0 {
			slog.InfoContext(ctx, "advanced search produced no results",
				"case_type", caseType)
			break
		}
		cases = append(cases, pageCases...)
		slog.InfoContext(ctx, "collected results page",
			"page", page, "cases", len(pageCases))

		n, err := s.driver.Count(ctx, selNextPage)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		err = s.clickAndSettle(ctx, selNextPage, fmt.Sprintf("go to results page %d", page+1))
		if err != nil {
			return nil, err
		}
	}

	span.SetAttributes(attribute.Int("cases", len(cases)))
	return cases, nil
}

// filterByCaseType adds a "Case Type" condition and picks the given
// type through the portal's searchable selection dialog.
func (s *Scraper) filterByCaseType(ctx context.Context, caseType string) error {
	err := s.addFilterCondition(ctx, 1, "Case Type")
	if err != nil {
		return err
	}

	err = s.clickAndSettle(ctx, selCaseTypeSelect, "open case type selection")
	if err != nil {
		return err
	}
	err = s.driver.Type(ctx, selCaseTypeSearch, caseType)
	if err != nil {
		return fmt.Errorf("fill case type search: %w", err)
	}
	err = s.clickAndSettle(ctx, selCaseTypeSubmit, "search case types")
	if err != nil {
		return err
	}
	err = s.clickAndSettle(ctx, selCaseTypeOption, "pick case type")
	if err != nil {
		return err
	}
	return s.clickAndSettle(ctx, selCaseTypeDone, "accept case type")
}

func (s *Scraper) filterByFiledDates(ctx context.Context, fromDate, toDate string) error {
	err := s.addFilterCondition(ctx, 2, "Case Filed Date")
	if err != nil {
		return err
	}

	err = s.driver.Type(ctx, selConditionFrom, fromDate)
	if err != nil {
		return fmt.Errorf("fill start date: %w", err)
	}
	err = s.driver.Type(ctx, selConditionTo, toDate)
	if err != nil {
		return fmt.Errorf("fill end date: %w", err)
	}
	return s.settle(ctx)
}

// addFilterCondition sets the nth search condition's field. The first
// condition row exists already; later ones need the add button first.
func (s *Scraper) addFilterCondition(ctx context.Context, index int, field string) error {
	if index > 1 {
		err := s.clickAndSettle(ctx, selAddCondition, "add search condition")
		if err != nil {
			return err
		}
	}

	fieldSel := fmt.Sprintf(
		"#conditions [ng-repeat]:nth-child(%d) %s", index+1, selConditionField,
	)
	err := s.driver.Type(ctx, fieldSel, field)
	if err != nil {
		return fmt.Errorf("select condition field %q: %w", field, err)
	}
	return s.settle(ctx)
}

func (s *Scraper) clickAndSettle(ctx context.Context, selector, what string) error {
	err := s.driver.Click(ctx, selector)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return s.settle(ctx)
}

func parseResultCards(doc *goquery.Document) []DiscoveredCase {
	var out []DiscoveredCase
	doc.Find(selResultCards).Each(func(_ int, card *goquery.Selection) {
		c := DiscoveredCase{
			Description: textutil.CleanCell(card.Find(selCardDescription).First().Text()),
			Number:      textutil.CleanCell(card.Find(selCardNumber).First().Text()),
			Location:    textutil.CleanCell(card.Find(selCardLocation).First().Text()),
			FiledDate:   textutil.CleanCell(card.Find(selCardFiledDate).First().Text()),
		}
		if c.Number == "" {
			return
		}
		out = append(out, c)
	})
	return out
}

// ParsePortalDate parses the portal's mm/dd/yyyy display format.
func ParsePortalDate(s string) (time.Time, error) {
	return time.Parse(eventDateFormat, strings.TrimSpace(s))
}
