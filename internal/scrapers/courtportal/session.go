package courtportal

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
)

const (
	selLoginEmail       = `#UserName`
	selLoginPassword    = `#Password`
	selLoginSubmit      = `#sign-in-btn`
	selEndOtherSessions = `[ng-click="endOtherSessions()"]`
)

// EnsureSession makes the driver authenticated: persisted cookies are
// reused when still alive, otherwise an interactive login happens and
// the fresh cookies are persisted. A login that still fails validation
// is ErrSessionFatal - nothing downstream works without a session.
func (s *Scraper) EnsureSession(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "scraper:EnsureSession")
	defer span.End()

	s.installPersistedCookies(ctx)

	err := s.dismissEndOtherSessions(ctx)
	if err != nil {
		return err
	}

	loggedIn, err := s.validateLogin(ctx)
	if err != nil {
		return err
	}
	if loggedIn {
		slog.InfoContext(ctx, "reusing persisted session")
		return nil
	}

	err = s.login(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return err
	}
	return nil
}

// installPersistedCookies best-effort loads a previously saved session
// into the browser. Liveness is checked separately by validateLogin.
func (s *Scraper) installPersistedCookies(ctx context.Context) {
	if s.store == nil {
		return
	}
	cookies, err := s.store.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to load persisted session", "err", err)
		return
	}
	if len(cookies) == 0 {
		return
	}

	// cookies can only be set for the domain currently loaded
	err = s.goHome(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to load portal home for cookie install", "err", err)
		return
	}
	err = s.driver.SetCookies(ctx, cookies)
	if err != nil {
		slog.WarnContext(ctx, "failed to install persisted session", "err", err)
		return
	}
	err = s.driver.Refresh(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to refresh after cookie install", "err", err)
	}
}

func (s *Scraper) goHome(ctx context.Context) error {
	err := s.driver.Navigate(ctx, s.cfg.BaseUrl)
	if err != nil {
		return fmt.Errorf("load portal home: %w", err)
	}
	return s.settle(ctx)
}

// validateLogin loads the portal home and checks for the sign-in
// affordance: its presence means the session is not live.
func (s *Scraper) validateLogin(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "scraper:validateLogin")
	defer span.End()

	err := s.goHome(ctx)
	if err != nil {
		return false, err
	}

	n, err := s.driver.Count(ctx, selSignInLink)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

func (s *Scraper) login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "scraper:login")
	defer span.End()

	slog.InfoContext(ctx, "logging in", "email", s.cfg.Credentials.Email)

	err := s.driver.Click(ctx, selSignInLink)
	if err != nil {
		return fmt.Errorf("open login form: %w", err)
	}
	err = s.settle(ctx)
	if err != nil {
		return err
	}

	err = s.driver.Type(ctx, selLoginEmail, s.cfg.Credentials.Email)
	if err != nil {
		return fmt.Errorf("fill email: %w", err)
	}
	err = s.driver.Type(ctx, selLoginPassword, s.cfg.Credentials.Password)
	if err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	err = s.driver.Click(ctx, selLoginSubmit)
	if err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	err = s.settle(ctx)
	if err != nil {
		return err
	}

	err = s.dismissEndOtherSessions(ctx)
	if err != nil {
		return err
	}

	loggedIn, err := s.validateLogin(ctx)
	if err != nil {
		return err
	}
	if !loggedIn {
		span.SetStatus(codes.Error, ErrSessionFatal.Error())
		return fmt.Errorf("%w: check credentials", ErrSessionFatal)
	}

	s.persistCookies(ctx)
	return nil
}

func (s *Scraper) persistCookies(ctx context.Context) {
	if s.store == nil {
		return
	}
	cookies, err := s.driver.Cookies(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to read session cookies", "err", err)
		return
	}
	err = s.store.Save(ctx, cookies)
	if err != nil {
		slog.WarnContext(ctx, "failed to persist session", "err", err)
		return
	}
	slog.InfoContext(ctx, "persisted fresh session", "cookies", len(cookies))
}

// dismissEndOtherSessions acknowledges the "end other sessions" prompt
// when the portal shows one. Safe to call when absent.
func (s *Scraper) dismissEndOtherSessions(ctx context.Context) error {
	n, err := s.driver.Count(ctx, selEndOtherSessions)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	slog.InfoContext(ctx, "dismissing end-other-sessions prompt")
	err = s.driver.Click(ctx, selEndOtherSessions)
	if err != nil {
		return fmt.Errorf("dismiss session prompt: %w", err)
	}
	return s.settle(ctx)
}
