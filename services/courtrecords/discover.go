package courtrecords

import (
	"context"
	"log/slog"

	"courtrecords-backend/internal/scrapers/courtportal"
	"courtrecords-backend/lib/linker"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Discoverer is the advanced-search side of the scraping engine.
// courtportal.Scraper implements it.
type Discoverer interface {
	EnsureSession(ctx context.Context) error
	AdvancedSearch(ctx context.Context, caseType, fromDate, toDate string) ([]courtportal.DiscoveredCase, error)
}

type DiscoverParams struct {
	CaseType string
	// portal display format, mm/dd/yyyy
	FromDate string
	ToDate   string
}

// descriptions this similar under different case numbers are probably
// the same matter refiled, worth a human look before scraping both
const nearDuplicateThreshold = 0.93

// Discover runs an advanced search and appends every case not already
// tracked as a fresh "ready" input row. It returns the number of rows
// appended.
func Discover(ctx context.Context, d Discoverer, sheet Sheet, inputSheet string, params DiscoverParams) (int, error) {
	ctx, span := tracer.Start(ctx, "service:Discover")
	span.SetAttributes(attribute.String("case_type", params.CaseType))
	defer span.End()

	err := d.EnsureSession(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "session setup failed")
		return 0, err
	}

	cases, err := d.AdvancedSearch(ctx, params.CaseType, params.FromDate, params.ToDate)
	if err != nil {
		span.SetStatus(codes.Error, "advanced search failed")
		return 0, err
	}

	tracked, trackedDescriptions, err := TrackedCases(ctx, sheet, inputSheet)
	if err != nil {
		return 0, err
	}

	var fresh []courtportal.DiscoveredCase
	var freshDescriptions []string
	for _, c := range cases {
		if tracked[c.Number] {
			continue
		}
		fresh = append(fresh, c)
		freshDescriptions = append(freshDescriptions, c.Description)
	}
	warnNearDuplicates(ctx, fresh, freshDescriptions)
	for _, link := range likelyRefilings(freshDescriptions, trackedDescriptions) {
		slog.WarnContext(ctx, "discovered case looks like a refiling",
			"description", link.Left,
			"tracked_description", link.Right,
			"correlation", link.Correlation,
		)
	}

	appended := 0
	for _, c := range fresh {
		err = sheet.AppendRow(ctx, inputSheet, []string{
			c.Number,
			c.FiledDate,
			c.Description,
			c.Location,
			params.CaseType,
			StatusReady,
		})
		if err != nil {
			span.SetStatus(codes.Error, "append failed")
			return appended, err
		}
		appended++
	}

	slog.InfoContext(ctx, "discovery finished",
		"found", len(cases),
		"already_tracked", len(cases)-len(fresh),
		"appended", appended,
	)
	span.SetAttributes(attribute.Int("appended", appended))
	return appended, nil
}

// likelyRefilings pairs each discovered description with its closest
// already-tracked one and keeps the strong pairings. A near-identical
// description appearing under an untracked number usually means the
// same matter was refiled.
func likelyRefilings(descriptions, tracked []string) []linker.Link {
	var left []string
	for _, d := range descriptions {
		if d != "" {
			left = append(left, d)
		}
	}

	var flagged []linker.Link
	for _, link := range linker.Pair(left, tracked) {
		if link.Correlation >= nearDuplicateThreshold {
			flagged = append(flagged, link)
		}
	}
	return flagged
}

// warnNearDuplicates flags discovered cases whose descriptions are
// nearly identical to another discovered case's under a different
// number. They are still appended, the warning is for the operator.
func warnNearDuplicates(ctx context.Context, cases []courtportal.DiscoveredCase, descriptions []string) {
	for i, c := range cases {
		pool := make([]string, 0, len(descriptions)-1)
		pool = append(pool, descriptions[:i]...)
		pool = append(pool, descriptions[i+1:]...)

		match, score := linker.MostSimilar(c.Description, pool)
		if score >= nearDuplicateThreshold {
			slog.WarnContext(ctx, "discovered case looks like a duplicate",
				"case_number", c.Number,
				"description", c.Description,
				"similar_to", match,
				"correlation", score,
			)
		}
	}
}
