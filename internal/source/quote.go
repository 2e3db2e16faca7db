package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aias00/gold-price-monitor/internal/model"
)

// ErrInvalidQuote means the live price field could not be decoded. No
// sensible series can be built without it, so it aborts the fetch attempt.
var ErrInvalidQuote = errors.New("invalid quote")

// nominalClose is the exchange's nominal closing time, used when the quote
// carries no usable timestamp.
const nominalClose = "15:00:00"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=source_test -destination=mock_http_client_test.go -source=quote.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// QuoteClient fetches the live gold quote from a push-quote endpoint that
// returns fixed-point integer prices (price*100) under single-letter field
// codes.
type QuoteClient struct {
	// baseURL is the quote endpoint.
	baseURL string
	// secID selects the instrument, e.g. "118.Au99.99".
	secID string
	// httpClient performs the requests.
	httpClient HTTPClient
	// header contains additional headers sent with each request.
	header http.Header
	// loc is the exchange timezone used to render timestamps.
	loc *time.Location
	// now supplies the current time; injected for deterministic tests.
	now func() time.Time
}

// QuoteClientOption is a configuration option for the quote client.
type QuoteClientOption func(*QuoteClient)

// WithBaseURL sets the quote endpoint URL.
func WithBaseURL(baseURL string) QuoteClientOption {
	return func(c *QuoteClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPClient) QuoteClientOption {
	return func(c *QuoteClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) QuoteClientOption {
	return func(c *QuoteClient) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithLocation sets the exchange timezone.
func WithLocation(loc *time.Location) QuoteClientOption {
	return func(c *QuoteClient) {
		c.loc = loc
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) QuoteClientOption {
	return func(c *QuoteClient) {
		c.now = now
	}
}

// NewQuoteClient creates a quote client for the given instrument.
func NewQuoteClient(secID string, options ...QuoteClientOption) (*QuoteClient, error) {
	if secID == "" {
		return nil, fmt.Errorf("secID is required")
	}
	c := &QuoteClient{
		baseURL:    "https://push2.eastmoney.com/api/qt/stock/get",
		secID:      secID,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		loc:        time.FixedZone("CST", 8*3600),
		now:        time.Now,
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

// RawQuote is the wire shape of the quote payload. Field values may arrive
// as JSON numbers or strings depending on upstream mood, so they are kept
// raw until normalization.
type RawQuote struct {
	Name      string          `json:"f58"`
	Price     json.RawMessage `json:"f43"`
	PrevClose json.RawMessage `json:"f60"`
	Unix      json.RawMessage `json:"f86"`
}

type quoteEnvelope struct {
	Data *RawQuote `json:"data"`
}

// Fetch retrieves and normalizes the live quote.
func (c *QuoteClient) Fetch(ctx context.Context) (model.Quote, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return model.Quote{}, fmt.Errorf("quote url: %w", err)
	}
	q := u.Query()
	q.Set("secid", c.secID)
	q.Set("fields", "f43,f44,f45,f46,f58,f60,f86")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return model.Quote{}, err
	}
	for key, values := range c.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Quote{}, fmt.Errorf("quote fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return model.Quote{}, fmt.Errorf("quote: status %d, body: %s", resp.StatusCode, string(b))
	}

	var env quoteEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return model.Quote{}, fmt.Errorf("quote decode: %w", err)
	}
	if env.Data == nil {
		return model.Quote{}, fmt.Errorf("%w: empty payload", ErrInvalidQuote)
	}
	return Normalize(*env.Data, c.loc, c.now())
}

// Normalize converts a raw quote payload into a canonical quote.
// The price field is a fixed-point integer (price*100); a price that cannot
// be decoded is ErrInvalidQuote. A bad prev close is treated as absent, and
// a bad timestamp falls back to today's date at the nominal close time.
func Normalize(raw RawQuote, loc *time.Location, now time.Time) (model.Quote, error) {
	price, ok := fixedPoint(raw.Price)
	if !ok || price <= 0 {
		return model.Quote{}, fmt.Errorf("%w: price field %q", ErrInvalidQuote, string(raw.Price))
	}

	q := model.Quote{
		Name:         raw.Name,
		CurrentPrice: price,
	}
	if prev, ok := fixedPoint(raw.PrevClose); ok {
		q.PrevClose = prev
		q.HasPrevClose = true
	}

	if sec, ok := rawInt(raw.Unix); ok && sec > 0 {
		q.Timestamp = time.Unix(sec, 0).In(loc).Format("2006-01-02 15:04:05")
	} else {
		q.Timestamp = now.In(loc).Format("2006-01-02") + " " + nominalClose
	}
	q.Date = q.Timestamp[:10]
	return q, nil
}

// fixedPoint decodes an integer-encoded price*100 field, tolerating string
// or numeric JSON and thousands separators.
func fixedPoint(raw json.RawMessage) (float64, bool) {
	s := rawString(raw)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.Div(decimal.NewFromInt(100)).InexactFloat64(), true
}

func rawInt(raw json.RawMessage) (int64, bool) {
	s := rawString(raw)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.IntPart(), true
}

// rawString unwraps a JSON number or string to its text, stripping quotes
// and thousands separators. Returns "" for null/absent values.
func rawString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	if len(s) >= 2 && s[0] == '"' {
		var unq string
		if err := json.Unmarshal(raw, &unq); err != nil {
			return ""
		}
		s = unq
	}
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}
