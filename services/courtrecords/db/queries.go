package db

import (
	"context"
	"database/sql"
)

const getSession = `
SELECT host, cookies, updated_at FROM sessions WHERE host = ?
`

type Session struct {
	Host      string
	Cookies   string
	UpdatedAt int64
}

func (q *Queries) GetSession(ctx context.Context, host string) (Session, error) {
	row := q.db.QueryRowContext(ctx, getSession, host)
	var i Session
	err := row.Scan(&i.Host, &i.Cookies, &i.UpdatedAt)
	return i, err
}

const upsertSession = `
INSERT INTO sessions (host, cookies, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (host) DO UPDATE SET
    cookies = excluded.cookies,
    updated_at = excluded.updated_at
`

type UpsertSessionParams struct {
	Host      string
	Cookies   string
	UpdatedAt int64
}

func (q *Queries) UpsertSession(ctx context.Context, arg UpsertSessionParams) error {
	_, err := q.db.ExecContext(ctx, upsertSession, arg.Host, arg.Cookies, arg.UpdatedAt)
	return err
}

const createRun = `
INSERT INTO runs (started_at) VALUES (?)
`

func (q *Queries) CreateRun(ctx context.Context, startedAt int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, createRun, startedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const finishRun = `
UPDATE runs SET
    finished_at = ?,
    scraped = ?,
    no_data = ?,
    errored = ?
WHERE id = ?
`

type FinishRunParams struct {
	ID         int64
	FinishedAt int64
	Scraped    int64
	NoData     int64
	Errored    int64
}

func (q *Queries) FinishRun(ctx context.Context, arg FinishRunParams) error {
	_, err := q.db.ExecContext(
		ctx, finishRun,
		arg.FinishedAt, arg.Scraped, arg.NoData, arg.Errored, arg.ID,
	)
	return err
}

const recordCaseAttempt = `
INSERT INTO run_cases (run_id, case_number, status, error, recorded_at)
VALUES (?, ?, ?, ?, ?)
`

type RecordCaseAttemptParams struct {
	RunID      int64
	CaseNumber string
	Status     string
	Error      string
	RecordedAt int64
}

func (q *Queries) RecordCaseAttempt(ctx context.Context, arg RecordCaseAttemptParams) error {
	_, err := q.db.ExecContext(
		ctx, recordCaseAttempt,
		arg.RunID, arg.CaseNumber, arg.Status, arg.Error, arg.RecordedAt,
	)
	return err
}

const listRunCases = `
SELECT id, run_id, case_number, status, error, recorded_at
FROM run_cases WHERE run_id = ? ORDER BY id
`

type RunCase struct {
	ID         int64
	RunID      int64
	CaseNumber string
	Status     string
	Error      string
	RecordedAt int64
}

func (q *Queries) ListRunCases(ctx context.Context, runId int64) ([]RunCase, error) {
	rows, err := q.db.QueryContext(ctx, listRunCases, runId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RunCase
	for rows.Next() {
		var i RunCase
		err = rows.Scan(&i.ID, &i.RunID, &i.CaseNumber, &i.Status, &i.Error, &i.RecordedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getRun = `
SELECT id, started_at, finished_at, scraped, no_data, errored FROM runs WHERE id = ?
`

type Run struct {
	ID         int64
	StartedAt  int64
	FinishedAt sql.NullInt64
	Scraped    int64
	NoData     int64
	Errored    int64
}

func (q *Queries) GetRun(ctx context.Context, id int64) (Run, error) {
	row := q.db.QueryRowContext(ctx, getRun, id)
	var i Run
	err := row.Scan(&i.ID, &i.StartedAt, &i.FinishedAt, &i.Scraped, &i.NoData, &i.Errored)
	return i, err
}
