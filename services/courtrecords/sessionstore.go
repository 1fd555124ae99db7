package courtrecords

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"courtrecords-backend/internal/scrapers/courtportal"
	"courtrecords-backend/services/courtrecords/db"
)

// SessionStore persists portal cookies in the service database, keyed
// by portal host, so a run can pick up the previous run's session.
type SessionStore struct {
	qry  *db.Queries
	host string
}

func NewSessionStore(database *sql.DB, host string) SessionStore {
	return SessionStore{
		qry:  db.New(database),
		host: host,
	}
}

func (s SessionStore) Load(ctx context.Context) ([]courtportal.Cookie, error) {
	row, err := s.qry.GetSession(ctx, s.host)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var cookies []courtportal.Cookie
	err = json.Unmarshal([]byte(row.Cookies), &cookies)
	if err != nil {
		return nil, fmt.Errorf("decode session cookies: %w", err)
	}
	return cookies, nil
}

func (s SessionStore) Save(ctx context.Context, cookies []courtportal.Cookie) error {
	encoded, err := json.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("encode session cookies: %w", err)
	}
	err = s.qry.UpsertSession(ctx, db.UpsertSessionParams{
		Host:      s.host,
		Cookies:   string(encoded),
		UpdatedAt: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
