// Package courtportal extracts structured case records from the court
// records search portal: session management, case resolution, timeline
// harvesting and keyword classification.
package courtportal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/courtportal")

// selectors shared across the whole portal
const (
	selSpinner    = `[mdb-progress-spinner]`
	selLoading    = `[ng-if="IsLoading"]`
	selSignInLink = `#signInLink`
	selNextPage   = `.page-item:not(.disabled) [ng-click="selectPage(page + 1, $event)"]`
)

type Scraper struct {
	driver Driver
	store  SessionStore
	cfg    Config
	diag   *Diagnostics
}

// New builds a Scraper around a browser driver. store may be nil, in
// which case sessions are not persisted across runs.
func New(driver Driver, store SessionStore, cfg Config) *Scraper {
	cfg = cfg.withDefaults()
	return &Scraper{
		driver: driver,
		store:  store,
		cfg:    cfg,
		diag:   NewDiagnostics(cfg.DiagnosticsDir),
	}
}

// GetCaseData runs the full extraction for one case: resolve the case
// among homonyms, harvest its parties and timeline, classify. A
// diagnostics capture happens on every failure path except not-found.
func (s *Scraper) GetCaseData(ctx context.Context, query CaseQuery) (*CaseFacts, error) {
	ctx, span := tracer.Start(ctx, "scraper:GetCaseData")
	span.SetAttributes(attribute.String("case_number", query.Number))
	defer span.End()

	res, err := s.Resolve(ctx, query)
	if errors.Is(err, ErrCaseNotFound) {
		slog.InfoContext(ctx, "case not found", "case_number", query.Number)
		return nil, err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve failed")
		s.diag.Capture(ctx, s.driver, query.Number, err)
		return nil, fmt.Errorf("resolve case %s: %w", query.Number, err)
	}

	parties, events, status, err := s.Harvest(ctx, res.Href)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "harvest failed")
		s.diag.Capture(ctx, s.driver, query.Number, err)
		return nil, fmt.Errorf("harvest case %s: %w", query.Number, err)
	}

	facts := s.assembleFacts(parties, events, status)
	facts.Ambiguous = res.Ambiguous
	return facts, nil
}

func (s *Scraper) assembleFacts(parties []Party, events []Event, status *string) *CaseFacts {
	defendants, defendantAttorneys := partiesByRole(parties, "defendant")
	_, plaintiffAttorneys := partiesByRole(parties, "plaintiff")
	flags := Classify(events, s.cfg.Keywords)

	return &CaseFacts{
		Defendants:         defendants,
		DefendantAttorneys: defendantAttorneys,
		PlaintiffAttorneys: plaintiffAttorneys,
		Filings:            LastFilings(events, s.cfg.EventOrder, 3),
		NonsuitDismissal:   flags.NonsuitDismissal,
		Disposition:        flags.Disposition,
		AdLitem:            flags.AdLitem,
		Judgment:           flags.Judgment,
		Trial:              flags.Trial,
		Sale:               flags.Sale,
		Status:             status,
	}
}

// partiesByRole returns the deduplicated names and attorneys of parties
// whose role contains the given fragment. Sorted so identical input
// always produces identical output.
func partiesByRole(parties []Party, role string) (names, attorneys []string) {
	nameSet := map[string]struct{}{}
	attorneySet := map[string]struct{}{}
	for _, p := range parties {
		if !strings.Contains(p.Role, role) {
			continue
		}
		if p.Name != "" {
			nameSet[p.Name] = struct{}{}
		}
		if p.Attorney != "" {
			attorneySet[p.Attorney] = struct{}{}
		}
	}

	for n := range nameSet {
		names = append(names, n)
	}
	for a := range attorneySet {
		attorneys = append(attorneys, a)
	}
	sort.Strings(names)
	sort.Strings(attorneys)
	return names, attorneys
}

// settle waits for the loading indicators to stay gone, re-checking a
// few times since the spinner can flicker back before the final render.
func (s *Scraper) settle(ctx context.Context) error {
	for i := 0; i < s.cfg.SettleChecks; i++ {
		err := s.driver.WaitGone(ctx, selSpinner, s.cfg.WaitTimeout)
		if err != nil {
			return fmt.Errorf("wait for spinner: %w", err)
		}
		err = s.driver.WaitGone(ctx, selLoading, s.cfg.WaitTimeout)
		if err != nil {
			return fmt.Errorf("wait for loading indicator: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.SettlePause):
		}
	}
	return nil
}

// pageDocument snapshots the current page for structured parsing.
func (s *Scraper) pageDocument(ctx context.Context) (*goquery.Document, error) {
	src, err := s.driver.Source(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page source: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse page source: %w", err)
	}
	return doc, nil
}
