package commands

import (
	"context"
	"database/sql"
	"time"

	"courtrecords-backend/internal/scrapers/courtportal"
	"courtrecords-backend/lib/configutil"
	"courtrecords-backend/lib/serviceutil"
	"courtrecords-backend/lib/sheets"
	"courtrecords-backend/lib/sqliteutil"
	"courtrecords-backend/lib/webdriver"
	"courtrecords-backend/services/courtrecords"
	"courtrecords-backend/services/courtrecords/db"
)

type PortalConfig struct {
	BaseUrl  string `json:"base_url"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// portal sort order of the filings table: "oldest_first" (default)
	// or "newest_first"
	EventOrder     string `json:"event_order"`
	DiagnosticsDir string `json:"diagnostics_dir"`
}

type WebdriverConfig struct {
	// chromedriver endpoint, e.g. http://localhost:9515
	Url      string `json:"url"`
	Headless bool   `json:"headless"`
}

type SheetsConfig struct {
	SpreadsheetId string `json:"spreadsheet_id"`
	AccessToken   string `json:"access_token"`
	InputSheet    string `json:"input_sheet"`
	OutputSheet   string `json:"output_sheet"`
}

type Config struct {
	Portal    PortalConfig    `json:"portal"`
	Webdriver WebdriverConfig `json:"webdriver"`
	Sheets    SheetsConfig    `json:"sheets"`
	// sqlite file path or libsql:// url
	Db string `json:"db"`

	InterCaseDelaySeconds int `json:"inter_case_delay_seconds"`
	WriteRetries          int `json:"write_retries"`
	WriteBackoffSeconds   int `json:"write_backoff_seconds"`
}

// portalDriver adapts a webdriver session to the scraper's Driver
// interface, translating the cookie types at the boundary.
type portalDriver struct {
	*webdriver.Session
}

func (d portalDriver) Cookies(ctx context.Context) ([]courtportal.Cookie, error) {
	raw, err := d.Session.Cookies(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]courtportal.Cookie, len(raw))
	for i, c := range raw {
		out[i] = courtportal.Cookie(c)
	}
	return out, nil
}

func (d portalDriver) SetCookies(ctx context.Context, cookies []courtportal.Cookie) error {
	raw := make([]webdriver.Cookie, len(cookies))
	for i, c := range cookies {
		raw[i] = webdriver.Cookie(c)
	}
	return d.Session.SetCookies(ctx, raw)
}

// stack is everything a command needs wired together.
type stack struct {
	cfg      Config
	scraper  *courtportal.Scraper
	session  *webdriver.Session
	sheet    *sheets.Client
	database *sql.DB
}

func (s *stack) close(ctx context.Context) {
	if s.session != nil {
		s.session.Close(ctx)
	}
	if s.database != nil {
		s.database.Close()
	}
}

func loadStack(ctx context.Context) *stack {
	cfg, err := configutil.ReadConfig[Config](*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	database, err := sqliteutil.OpenDB(db.Schema, cfg.Db)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}

	session, err := webdriver.New(ctx, webdriver.Options{
		BaseUrl:  cfg.Webdriver.Url,
		Headless: cfg.Webdriver.Headless,
	})
	if err != nil {
		database.Close()
		serviceutil.Fatal("failed to start browser session", err)
	}

	order := courtportal.OrderOldestFirst
	if cfg.Portal.EventOrder == "newest_first" {
		order = courtportal.OrderNewestFirst
	}

	scraper := courtportal.New(
		portalDriver{session},
		courtrecords.NewSessionStore(database, cfg.Portal.BaseUrl),
		courtportal.Config{
			BaseUrl: cfg.Portal.BaseUrl,
			Credentials: courtportal.Credentials{
				Email:    cfg.Portal.Email,
				Password: cfg.Portal.Password,
			},
			EventOrder:     order,
			DiagnosticsDir: cfg.Portal.DiagnosticsDir,
		},
	)

	sheet := sheets.NewClient(sheets.Options{
		SpreadsheetId: cfg.Sheets.SpreadsheetId,
		AccessToken:   cfg.Sheets.AccessToken,
	})

	return &stack{
		cfg:      cfg,
		scraper:  scraper,
		session:  session,
		sheet:    sheet,
		database: database,
	}
}

func (s *stack) serviceConfig() courtrecords.Config {
	return courtrecords.Config{
		InputSheet:     s.cfg.Sheets.InputSheet,
		OutputSheet:    s.cfg.Sheets.OutputSheet,
		InterCaseDelay: time.Duration(s.cfg.InterCaseDelaySeconds) * time.Second,
		WriteRetries:   s.cfg.WriteRetries,
		WriteBackoff:   time.Duration(s.cfg.WriteBackoffSeconds) * time.Second,
	}
}
