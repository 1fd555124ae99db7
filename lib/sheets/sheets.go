// Package sheets is a client for the Google Sheets values API, covering
// the three operations the tracking spreadsheet needs: reading rows,
// appending a row and updating a single cell.
package sheets

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"courtrecords-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/sheets")

const defaultBaseUrl = "https://sheets.googleapis.com"

type Options struct {
	SpreadsheetId string
	AccessToken   string
	// defaults to the public Google endpoint, overridable for tests
	BaseUrl string
	Timeout time.Duration
}

type Client struct {
	Http          *resty.Client
	SpreadsheetId string
}

func NewClient(opts Options) *Client {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = defaultBaseUrl
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(timeout)
	client.SetAuthToken(opts.AccessToken)
	telemetry.InstrumentResty(client, "sheets/http")

	return &Client{
		Http:          client,
		SpreadsheetId: opts.SpreadsheetId,
	}
}

func (c *Client) valuesPath(a1Range string) string {
	return fmt.Sprintf(
		"/v4/spreadsheets/%s/values/%s",
		c.SpreadsheetId,
		url.PathEscape(a1Range),
	)
}

func (c *Client) checkStatus(res *resty.Response) error {
	if res.IsError() {
		return fmt.Errorf("sheets api: %s: %s", res.Status(), res.String())
	}
	return nil
}

// ReadRows returns every used row of the named sheet. The first row is
// expected to be the header.
func (c *Client) ReadRows(ctx context.Context, sheet string) ([][]string, error) {
	ctx, span := tracer.Start(ctx, "client:ReadRows")
	defer span.End()

	var out struct {
		Values [][]string `json:"values"`
	}
	res, err := c.Http.R().
		SetContext(ctx).
		SetResult(&out).
		// decode as JSON even when the response content type is missing
		// or misdeclared, otherwise resty silently skips SetResult and
		// an empty sheet is indistinguishable from a bad response
		ForceContentType("application/json").
		Get(c.valuesPath(sheet))
	if err != nil {
		span.SetStatus(codes.Error, "read failed")
		return nil, err
	}
	err = c.checkStatus(res)
	if err != nil {
		span.SetStatus(codes.Error, "read failed")
		return nil, err
	}

	return out.Values, nil
}

func (c *Client) AppendRow(ctx context.Context, sheet string, row []string) error {
	ctx, span := tracer.Start(ctx, "client:AppendRow")
	defer span.End()

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParam("valueInputOption", "RAW").
		SetBody(map[string]any{
			"values": [][]string{row},
		}).
		Post(c.valuesPath(sheet) + ":append")
	if err != nil {
		span.SetStatus(codes.Error, "append failed")
		return err
	}
	return c.checkStatus(res)
}

// UpdateCell writes a single cell. Row and column are 1-based, matching
// how spreadsheet coordinates are usually quoted.
func (c *Client) UpdateCell(ctx context.Context, sheet string, row, col int, value string) error {
	ctx, span := tracer.Start(ctx, "client:UpdateCell")
	defer span.End()

	cell := fmt.Sprintf("%s!%s%d", sheet, columnName(col), row)
	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParam("valueInputOption", "RAW").
		SetBody(map[string]any{
			"values": [][]string{{value}},
		}).
		Put(c.valuesPath(cell))
	if err != nil {
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	return c.checkStatus(res)
}

// columnName converts a 1-based column index to its A1 letter form.
func columnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}
