// Package fetcher retrieves the bookable screening dates from the booking API.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"screening_notifier/internal/model"
	"screening_notifier/internal/signer"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Query identifies the movie and venue being watched.
type Query struct {
	CoCd   string
	SiteNo string
	MovNo  string
	Div    string
	AttrCd string
}

// Values encodes q as URL query parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("coCd", q.CoCd)
	v.Set("siteNo", q.SiteNo)
	v.Set("movNo", q.MovNo)
	v.Set("div", q.Div)
	v.Set("attrCd", q.AttrCd)
	return v
}

// browserHeaders are sent with every request; the API rejects bare clients.
var browserHeaders = map[string]string{
	"accept":             "application/json",
	"accept-language":    "ko-KR",
	"cache-control":      "no-cache",
	"origin":             "https://cgv.co.kr",
	"pragma":             "no-cache",
	"priority":           "u=1, i",
	"referer":            "https://cgv.co.kr/",
	"sec-ch-ua":          `"Not;A=Brand";v="99", "Google Chrome";v="139", "Chromium";v="139"`,
	"sec-ch-ua-mobile":   "?0",
	"sec-ch-ua-platform": `"Windows"`,
	"sec-fetch-dest":     "empty",
	"sec-fetch-mode":     "cors",
	"sec-fetch-site":     "same-site",
	"user-agent":         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/139.0.0.0 Safari/537.36",
}

type scheduleResponse struct {
	Data []json.RawMessage `json:"data"`
}

// screening is decoded per element so one bad item cannot fail the batch.
type screening struct {
	ScnYmd json.RawMessage `json:"scnYmd"`
}

// Result is the outcome of one fetch. Err is set when the API could not be
// read; Dates is then empty and must not be taken as "no dates".
type Result struct {
	Dates   model.DateSet
	Skipped int
	Err     error
}

// OK reports whether the fetch succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Fetcher downloads the screening schedule.
type Fetcher struct {
	client   HTTPClient
	signer   *signer.Signer
	endpoint string
	query    Query
	timeout  time.Duration
	log      *slog.Logger
}

// New creates a Fetcher for the API at endpoint.
func New(client HTTPClient, s *signer.Signer, endpoint string, q Query, log *slog.Logger) *Fetcher {
	return &Fetcher{
		client:   client,
		signer:   s,
		endpoint: endpoint,
		query:    q,
		timeout:  10 * time.Second,
		log:      log,
	}
}

// SetTimeout overrides the default 10-second request timeout.
func (f *Fetcher) SetTimeout(d time.Duration) {
	f.timeout = d
}

// Fetch returns the screening dates currently offered. It never fails
// outright: problems are logged and reported through Result.Err.
func (f *Fetcher) Fetch(ctx context.Context) Result {
	dates, skipped, err := f.fetch(ctx)
	if err != nil {
		f.log.Error("fetch screening dates", "endpoint", f.endpoint, "error", err)
		return Result{Dates: make(model.DateSet), Err: err}
	}
	f.log.Debug("fetched screening dates", "count", dates.Len(), "skipped", skipped)
	return Result{Dates: dates, Skipped: skipped}
}

func (f *Fetcher) fetch(ctx context.Context) (model.DateSet, int, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	u, err := url.Parse(f.endpoint)
	if err != nil {
		return nil, 0, fmt.Errorf("parse endpoint: %w", err)
	}
	u.RawQuery = f.query.Values().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	if err := f.signer.Apply(req, nil); err != nil {
		return nil, 0, fmt.Errorf("sign request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, 0, fmt.Errorf("read body: %w", err)
	}

	var parsed scheduleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}

	dates := make(model.DateSet, len(parsed.Data))
	skipped := 0
	for _, raw := range parsed.Data {
		id, err := parseScreening(raw)
		if err != nil {
			f.log.Warn("skip screening date", "value", string(raw), "error", err)
			skipped++
			continue
		}
		dates.Add(id)
	}
	return dates, skipped, nil
}

func parseScreening(raw json.RawMessage) (model.DateID, error) {
	var item screening
	if err := json.Unmarshal(raw, &item); err != nil {
		return "", fmt.Errorf("decode item: %w", err)
	}
	var value string
	if err := json.Unmarshal(item.ScnYmd, &value); err != nil {
		return "", fmt.Errorf("decode scnYmd: %w", err)
	}
	return model.ParseDateID(value)
}
