package courtportal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// fakeDriver scripts the portal as a set of pages keyed by url plus a
// table of click actions that mutate driver state, so engine flows can
// be tested without a browser.
type fakeDriver struct {
	pages  map[string]string
	clicks map[string]func(d *fakeDriver)

	url         string
	navigations []string
	typed       map[string]string
	waited      []string
	cookies     []Cookie
	screenshots int
}

func newFakeDriver(pages map[string]string) *fakeDriver {
	return &fakeDriver{
		pages:  pages,
		clicks: map[string]func(d *fakeDriver){},
		typed:  map[string]string{},
	}
}

func (d *fakeDriver) doc() *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(d.pages[d.url]))
	if err != nil {
		panic(err)
	}
	return doc
}

func (d *fakeDriver) Navigate(ctx context.Context, url string) error {
	d.url = url
	d.navigations = append(d.navigations, url)
	return nil
}

func (d *fakeDriver) Refresh(ctx context.Context) error {
	return nil
}

func (d *fakeDriver) Source(ctx context.Context) (string, error) {
	return d.pages[d.url], nil
}

func (d *fakeDriver) Count(ctx context.Context, selector string) (int, error) {
	return d.doc().Find(selector).Length(), nil
}

func (d *fakeDriver) Text(ctx context.Context, selector string) (string, error) {
	return strings.TrimSpace(d.doc().Find(selector).First().Text()), nil
}

func (d *fakeDriver) Attr(ctx context.Context, selector, name string) (string, error) {
	return d.doc().Find(selector).First().AttrOr(name, ""), nil
}

func (d *fakeDriver) Click(ctx context.Context, selector string) error {
	if action, ok := d.clicks[selector]; ok {
		action(d)
		return nil
	}
	if d.doc().Find(selector).Length() == 0 {
		return fmt.Errorf("no element matches %q", selector)
	}
	return nil
}

func (d *fakeDriver) Type(ctx context.Context, selector, text string) error {
	if d.doc().Find(selector).Length() == 0 {
		return fmt.Errorf("no element matches %q", selector)
	}
	d.typed[selector] = text
	return nil
}

func (d *fakeDriver) WaitGone(ctx context.Context, selector string, timeout time.Duration) error {
	d.waited = append(d.waited, selector)
	return nil
}

func (d *fakeDriver) Screenshot(ctx context.Context) ([]byte, error) {
	d.screenshots++
	return []byte("png"), nil
}

func (d *fakeDriver) Cookies(ctx context.Context) ([]Cookie, error) {
	return d.cookies, nil
}

func (d *fakeDriver) SetCookies(ctx context.Context, cookies []Cookie) error {
	d.cookies = append(d.cookies, cookies...)
	return nil
}

type memoryStore struct {
	cookies []Cookie
	saves   int
}

func (s *memoryStore) Load(ctx context.Context) ([]Cookie, error) {
	return s.cookies, nil
}

func (s *memoryStore) Save(ctx context.Context, cookies []Cookie) error {
	s.cookies = cookies
	s.saves++
	return nil
}

func fastConfig(baseUrl string, diagDir string) Config {
	return Config{
		BaseUrl:        baseUrl,
		Credentials:    Credentials{Email: "clerk@example.com", Password: "hunter2"},
		WaitTimeout:    time.Second,
		SettleChecks:   1,
		SettlePause:    time.Millisecond,
		DiagnosticsDir: diagDir,
	}
}
