// Package webdriver is a minimal W3C WebDriver wire-protocol client,
// just enough surface to drive a browser session against a local
// chromedriver/geckodriver endpoint.
package webdriver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"courtrecords-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/webdriver")

var ErrWaitTimeout = fmt.Errorf("timed out waiting for element to disappear")

const elementKey = "element-6066-11e4-a52e-4f735466cecf"

type Options struct {
	// the webdriver endpoint, e.g. http://localhost:9515
	BaseUrl  string
	Headless bool
	Timeout  time.Duration
}

type Session struct {
	Http *resty.Client
	Id   string
}

type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Path     string `json:"path,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HttpOnly bool   `json:"httpOnly,omitempty"`
	Expiry   int64  `json:"expiry,omitempty"`
}

func New(ctx context.Context, opts Options) (*Session, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetTimeout(timeout)
	client.SetHeader("content-type", "application/json")
	telemetry.InstrumentResty(client, "webdriver/http")

	args := []string{"--window-size=1920,1080"}
	if opts.Headless {
		args = append(args, "--headless=new", "--disable-gpu")
	}

	s := &Session{Http: client}
	var created struct {
		SessionId string `json:"sessionId"`
	}
	err := s.do(ctx, "POST", "/session", map[string]any{
		"capabilities": map[string]any{
			"alwaysMatch": map[string]any{
				"goog:chromeOptions": map[string]any{
					"args": args,
				},
			},
		},
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if created.SessionId == "" {
		return nil, fmt.Errorf("create session: no session id in response")
	}

	s.Id = created.SessionId
	return s, nil
}

// do performs a wire-protocol request and unmarshals the "value" field
// of the response into out (when out is non-nil).
func (s *Session) do(ctx context.Context, method, path string, body, out any) error {
	req := s.Http.R().SetContext(ctx)
	if method == "POST" {
		if body == nil {
			body = map[string]any{}
		}
		req.SetBody(body)
	}

	res, err := req.Execute(method, path)
	if err != nil {
		return err
	}

	var wire struct {
		Value json.RawMessage `json:"value"`
	}
	err = json.Unmarshal(res.Body(), &wire)
	if err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	if res.IsError() {
		var wireErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		json.Unmarshal(wire.Value, &wireErr)
		return fmt.Errorf(
			"%s %s: %s: %s",
			method, path, wireErr.Error, wireErr.Message,
		)
	}

	if out != nil && len(wire.Value) > 0 {
		err = json.Unmarshal(wire.Value, out)
		if err != nil {
			return fmt.Errorf("parse response value: %w", err)
		}
	}
	return nil
}

func (s *Session) session(path string) string {
	return fmt.Sprintf("/session/%s%s", s.Id, path)
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	ctx, span := tracer.Start(ctx, "session:Navigate")
	defer span.End()

	err := s.do(ctx, "POST", s.session("/url"), map[string]any{"url": url}, nil)
	if err != nil {
		span.SetStatus(codes.Error, "navigate failed")
		return err
	}
	return nil
}

func (s *Session) Refresh(ctx context.Context) error {
	return s.do(ctx, "POST", s.session("/refresh"), nil, nil)
}

func (s *Session) Source(ctx context.Context) (string, error) {
	var source string
	err := s.do(ctx, "GET", s.session("/source"), nil, &source)
	return source, err
}

func (s *Session) elements(ctx context.Context, selector string) ([]string, error) {
	var found []map[string]string
	err := s.do(ctx, "POST", s.session("/elements"), map[string]any{
		"using": "css selector",
		"value": selector,
	}, &found)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(found))
	for _, el := range found {
		if id := el[elementKey]; id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Session) Count(ctx context.Context, selector string) (int, error) {
	ids, err := s.elements(ctx, selector)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Text returns the rendered text of the first element matching the
// selector, or "" when nothing matches.
func (s *Session) Text(ctx context.Context, selector string) (string, error) {
	ids, err := s.elements(ctx, selector)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}

	var text string
	err = s.do(ctx, "GET", s.session("/element/"+ids[0]+"/text"), nil, &text)
	return text, err
}

// Attr returns the named attribute of the first element matching the
// selector, or "" when nothing matches.
func (s *Session) Attr(ctx context.Context, selector, name string) (string, error) {
	ids, err := s.elements(ctx, selector)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", nil
	}

	var value *string
	err = s.do(ctx, "GET", s.session("/element/"+ids[0]+"/attribute/"+name), nil, &value)
	if err != nil {
		return "", err
	}
	if value == nil {
		return "", nil
	}
	return *value, nil
}

func (s *Session) Click(ctx context.Context, selector string) error {
	ctx, span := tracer.Start(ctx, "session:Click")
	defer span.End()

	ids, err := s.elements(ctx, selector)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		err := fmt.Errorf("click: no element matches %q", selector)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return s.do(ctx, "POST", s.session("/element/"+ids[0]+"/click"), nil, nil)
}

func (s *Session) Type(ctx context.Context, selector, text string) error {
	ctx, span := tracer.Start(ctx, "session:Type")
	defer span.End()

	ids, err := s.elements(ctx, selector)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		err := fmt.Errorf("type: no element matches %q", selector)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	err = s.do(ctx, "POST", s.session("/element/"+ids[0]+"/clear"), nil, nil)
	if err != nil {
		return err
	}
	return s.do(ctx, "POST", s.session("/element/"+ids[0]+"/value"), map[string]any{
		"text": text,
	}, nil)
}

// WaitGone polls until no element matches the selector. The portal
// gives no completion callback, so polling is the only option.
func (s *Session) WaitGone(ctx context.Context, selector string, timeout time.Duration) error {
	ctx, span := tracer.Start(ctx, "session:WaitGone")
	defer span.End()

	deadline := time.Now().Add(timeout)
	for {
		n, err := s.Count(ctx, selector)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			span.SetStatus(codes.Error, "wait timed out")
			return fmt.Errorf("%w: %q after %s", ErrWaitTimeout, selector, timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond * 500):
		}
	}
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var encoded string
	err := s.do(ctx, "GET", s.session("/screenshot"), nil, &encoded)
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func (s *Session) Cookies(ctx context.Context) ([]Cookie, error) {
	var cookies []Cookie
	err := s.do(ctx, "GET", s.session("/cookie"), nil, &cookies)
	return cookies, err
}

func (s *Session) SetCookies(ctx context.Context, cookies []Cookie) error {
	for _, c := range cookies {
		err := s.do(ctx, "POST", s.session("/cookie"), map[string]any{
			"cookie": c,
		}, nil)
		if err != nil {
			return fmt.Errorf("set cookie %q: %w", c.Name, err)
		}
	}
	return nil
}

func (s *Session) Close(ctx context.Context) error {
	return s.do(ctx, "DELETE", s.session(""), nil, nil)
}
