package courtportal

import (
	"context"
	"time"
)

// Driver is the capability set the extraction engine needs from a
// browser. The portal renders client-side, so everything is expressed
// in terms of CSS selectors against the live page rather than raw HTTP.
// lib/webdriver implements it against a chromedriver endpoint; tests
// use a scripted fake.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Refresh(ctx context.Context) error
	// Source returns the current page HTML for structured parsing.
	Source(ctx context.Context) (string, error)
	Count(ctx context.Context, selector string) (int, error)
	// Text and Attr return "" when nothing matches the selector.
	Text(ctx context.Context, selector string) (string, error)
	Attr(ctx context.Context, selector, name string) (string, error)
	Click(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, text string) error
	// WaitGone blocks until no element matches the selector, polling up
	// to the timeout.
	WaitGone(ctx context.Context, selector string, timeout time.Duration) error
	Screenshot(ctx context.Context) ([]byte, error)
	Cookies(ctx context.Context) ([]Cookie, error)
	SetCookies(ctx context.Context, cookies []Cookie) error
}

// Cookie is the portable shape of a browser cookie, the opaque tokens
// that make up a portal session.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Path     string `json:"path,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HttpOnly bool   `json:"httpOnly,omitempty"`
	Expiry   int64  `json:"expiry,omitempty"`
}

// SessionStore persists session cookies across runs so a fresh login
// isn't needed every time.
type SessionStore interface {
	// Load returns the persisted cookies, or an empty slice when no
	// session has been saved yet. It does not validate liveness.
	Load(ctx context.Context) ([]Cookie, error)
	Save(ctx context.Context, cookies []Cookie) error
}
