// Package courtrecords runs the tracking batch: it reads "ready" cases
// from the input sheet, drives the portal scraper one case at a time,
// appends output rows and writes terminal statuses back.
package courtrecords

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"courtrecords-backend/internal/scrapers/courtportal"
	"courtrecords-backend/services/courtrecords/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("services/courtrecords")

// terminal statuses written back to the input sheet
const (
	StatusScraped = "scraped"
	StatusNoData  = "no data"
	StatusError   = "error"
)

// Extractor is the per-case scraping engine the batch drives.
// courtportal.Scraper implements it.
type Extractor interface {
	EnsureSession(ctx context.Context) error
	GetCaseData(ctx context.Context, query courtportal.CaseQuery) (*courtportal.CaseFacts, error)
}

type Config struct {
	InputSheet  string `json:"input_sheet"`
	OutputSheet string `json:"output_sheet"`

	// fixed pause between completed cases, deliberate backpressure
	// against the portal
	InterCaseDelay time.Duration `json:"inter_case_delay"`

	// bounded retry for sheet writes
	WriteRetries int           `json:"write_retries"`
	WriteBackoff time.Duration `json:"write_backoff"`
}

func (c Config) withDefaults() Config {
	if c.InputSheet == "" {
		c.InputSheet = "Input"
	}
	if c.OutputSheet == "" {
		c.OutputSheet = "Output"
	}
	if c.InterCaseDelay == 0 {
		c.InterCaseDelay = time.Second * 10
	}
	if c.WriteRetries == 0 {
		c.WriteRetries = 3
	}
	if c.WriteBackoff == 0 {
		c.WriteBackoff = time.Second * 60
	}
	return c
}

type Service struct {
	extractor Extractor
	sheet     Sheet
	qry       *db.Queries
	cfg       Config
	limiter   *rate.Limiter
}

func NewService(extractor Extractor, sheet Sheet, database *sql.DB, cfg Config) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		extractor: extractor,
		sheet:     sheet,
		qry:       db.New(database),
		cfg:       cfg,
		limiter:   rate.NewLimiter(rate.Every(cfg.InterCaseDelay), 1),
	}
}

// Summary is the outcome tally of one batch run.
type Summary struct {
	RunId   int64
	Total   int
	Scraped int
	NoData  int
	Errored int
}

// Run executes the whole batch sequentially: one browser session, one
// case at a time. Only a fatal session failure aborts the run; per-case
// failures become degraded rows plus a non-"scraped" status.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	ctx, span := tracer.Start(ctx, "service:Run")
	defer span.End()

	err := s.extractor.EnsureSession(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "session setup failed")
		return Summary{}, err
	}

	ready, statusCol, err := ReadInput(ctx, s.sheet, s.cfg.InputSheet)
	if err != nil {
		span.SetStatus(codes.Error, "input feed failed")
		return Summary{}, err
	}
	slog.InfoContext(ctx, "starting batch", "ready_cases", len(ready))

	runId, err := s.qry.CreateRun(ctx, time.Now().Unix())
	if err != nil {
		return Summary{}, fmt.Errorf("record run start: %w", err)
	}

	summary := Summary{RunId: runId, Total: len(ready)}
	for _, input := range ready {
		err = s.limiter.Wait(ctx)
		if err != nil {
			return summary, err
		}

		status, err := s.scrapeOne(ctx, input, statusCol)
		if errors.Is(err, courtportal.ErrSessionFatal) {
			span.SetStatus(codes.Error, "session died mid-run")
			return summary, err
		}

		switch status {
		case StatusScraped:
			summary.Scraped++
		case StatusNoData:
			summary.NoData++
		default:
			summary.Errored++
		}
		if err != nil {
			slog.ErrorContext(ctx, "case failed",
				"case_number", input.CaseNumber, "status", status, "err", err)
		}
		s.recordAttempt(ctx, runId, input.CaseNumber, status, err)
	}

	err = s.qry.FinishRun(ctx, db.FinishRunParams{
		ID:         runId,
		FinishedAt: time.Now().Unix(),
		Scraped:    int64(summary.Scraped),
		NoData:     int64(summary.NoData),
		Errored:    int64(summary.Errored),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to record run finish", "err", err)
	}

	slog.InfoContext(ctx, "batch finished",
		"total", summary.Total,
		"scraped", summary.Scraped,
		"no_data", summary.NoData,
		"errored", summary.Errored,
	)
	return summary, nil
}

// recordAttempt appends one case outcome to the run ledger. Ledger
// writes are best-effort, a failed insert never fails the batch.
func (s *Service) recordAttempt(ctx context.Context, runId int64, caseNumber, status string, caseErr error) {
	errText := ""
	if caseErr != nil {
		errText = caseErr.Error()
	}
	err := s.qry.RecordCaseAttempt(ctx, db.RecordCaseAttemptParams{
		RunID:      runId,
		CaseNumber: caseNumber,
		Status:     status,
		Error:      errText,
		RecordedAt: time.Now().Unix(),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to record case attempt",
			"case_number", caseNumber, "err", err)
	}
}

// scrapeOne extracts one case and writes its results. The returned
// status is what was written back to the input sheet; the error, if
// any, is the per-case failure behind a degraded status.
func (s *Service) scrapeOne(ctx context.Context, input InputRow, statusCol int) (string, error) {
	ctx, span := tracer.Start(ctx, "service:scrapeOne")
	span.SetAttributes(attribute.String("case_number", input.CaseNumber))
	defer span.End()

	query := courtportal.CaseQuery{
		Number:    input.CaseNumber,
		FiledDate: input.FiledDate,
	}

	facts, caseErr := s.extractor.GetCaseData(ctx, query)
	if errors.Is(caseErr, courtportal.ErrSessionFatal) {
		return StatusError, caseErr
	}

	status := StatusScraped
	switch {
	case errors.Is(caseErr, courtportal.ErrCaseNotFound):
		status = StatusNoData
	case caseErr != nil:
		status = StatusError
		facts = nil
	}

	err := s.withRetry(ctx, "append output row", func() error {
		return s.sheet.AppendRow(ctx, s.cfg.OutputSheet, ProjectRow(query, facts, time.Now()))
	})
	if err != nil {
		return StatusError, err
	}

	err = s.withRetry(ctx, "update input status", func() error {
		return s.sheet.UpdateCell(ctx, s.cfg.InputSheet, input.Index, statusCol, status)
	})
	if err != nil {
		return StatusError, err
	}

	return status, caseErr
}

// withRetry runs a sheet write up to cfg.WriteRetries times with a
// fixed pause, since the sheets API rejects bursts now and then.
func (s *Service) withRetry(ctx context.Context, what string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= s.cfg.WriteRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		slog.WarnContext(ctx, "sheet write failed",
			"op", what, "attempt", attempt, "err", err)

		if attempt == s.cfg.WriteRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.WriteBackoff):
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}
