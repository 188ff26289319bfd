// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package nasa

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/agrisat/internal/config"
	"github.com/tomtom215/agrisat/internal/logging"
	"github.com/tomtom215/agrisat/internal/metrics"
)

// API names used in metrics and errors.
const (
	APIPower = "power"
	APIEarth = "earth"
	APIAPOD  = "apod"
)

const (
	maxErrorBodySize    = 4 * 1024
	maxResponseBodySize = 4 * 1024 * 1024
	userAgent           = "agrisat/1.0 (+https://github.com/tomtom215/agrisat)"

	// powerFillValue marks missing values in NASA POWER responses.
	powerFillValue = -999.0
)

// PowerParameters are requested from NASA POWER for every daily point query.
var PowerParameters = []string{
	"T2M", "T2M_MAX", "T2M_MIN", "PRECTOTCORR", "RH2M",
	"ALLSKY_SFC_SW_DWN", "WS2M", "GWETROOT",
}

// Upstream is the subset of NASA APIs the service depends on.
type Upstream interface {
	Ping(ctx context.Context) (*APOD, error)
	PowerDaily(ctx context.Context, p Point, start, end time.Time) (*PowerSeries, error)
	EarthAssets(ctx context.Context, p Point, date time.Time) (*EarthAsset, error)
	BreakerState() string
}

// APOD is the part of the Astronomy Picture of the Day response used as a
// connectivity check.
type APOD struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

// EarthAsset is the Earth imagery assets response.
type EarthAsset struct {
	Date     string `json:"date"`
	ID       string `json:"id"`
	URL      string `json:"url"`
	Resource struct {
		Dataset string `json:"dataset"`
		Planet  string `json:"planet"`
	} `json:"resource"`
}

// PowerSeries is a NASA POWER daily point response: parameter -> YYYYMMDD -> value.
type PowerSeries struct {
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
}

// Days returns the sorted dates present for any parameter.
func (ps *PowerSeries) Days() []string {
	seen := make(map[string]struct{})
	for _, series := range ps.Properties.Parameter {
		for day := range series {
			seen[day] = struct{}{}
		}
	}
	days := make([]string, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}

// Value returns param on day, false for absent or fill values.
func (ps *PowerSeries) Value(param, day string) (float64, bool) {
	v, ok := ps.Properties.Parameter[param][day]
	if !ok || v <= powerFillValue {
		return 0, false
	}
	return v, true
}

// Latest returns the most recent valid value of param.
func (ps *PowerSeries) Latest(param string) (float64, bool) {
	days := ps.Days()
	for i := len(days) - 1; i >= 0; i-- {
		if v, ok := ps.Value(param, days[i]); ok {
			return v, true
		}
	}
	return 0, false
}

// Client calls NASA APIs with rate limiting, a circuit breaker, retries
// and a per-call timeout. It is safe for concurrent use.
type Client struct {
	http     *retryablehttp.Client
	breaker  *gobreaker.CircuitBreaker[any]
	limiter  *rate.Limiter
	apiKey   string
	powerURL string
	earthURL string
	apodURL  string
	timeout  time.Duration
}

// NewClient builds a client from configuration. The API key travels in the
// X-Api-Key header so it never appears in URLs or error messages.
func NewClient(cfg config.NASAConfig) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.Retries
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = logging.NewLeveledLogger("nasa-http")
	// Hand the final response back so non-200 statuses surface as UpstreamError.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	limit := rate.Inf
	burst := 1
	if cfg.RatePerHour > 0 {
		limit = rate.Limit(float64(cfg.RatePerHour) / 3600)
		burst = max(1, cfg.RatePerHour/60)
	}

	return &Client{
		http:     rc,
		breaker:  newBreaker(cfg),
		limiter:  rate.NewLimiter(limit, burst),
		apiKey:   cfg.APIKey,
		powerURL: cfg.PowerURL,
		earthURL: cfg.EarthURL,
		apodURL:  cfg.APODURL,
		timeout:  cfg.Timeout,
	}
}

// BreakerState reports the circuit breaker state.
func (c *Client) BreakerState() string {
	return stateToString(c.breaker.State())
}

// Ping fetches today's APOD as a key and connectivity check.
func (c *Client) Ping(ctx context.Context) (*APOD, error) {
	if c.apiKey == "" {
		return nil, ErrRealDataDisabled
	}
	return getJSON[APOD](ctx, c, APIAPOD, c.apodURL, url.Values{})
}

// PowerDaily fetches NASA POWER daily values for p between start and end
// inclusive.
func (c *Client) PowerDaily(ctx context.Context, p Point, start, end time.Time) (*PowerSeries, error) {
	params := url.Values{
		"parameters": {strings.Join(PowerParameters, ",")},
		"community":  {"AG"},
		"latitude":   {strconv.FormatFloat(p.Lat, 'f', 4, 64)},
		"longitude":  {strconv.FormatFloat(p.Lng, 'f', 4, 64)},
		"start":      {start.Format("20060102")},
		"end":        {end.Format("20060102")},
		"format":     {"JSON"},
	}
	series, err := getJSON[PowerSeries](ctx, c, APIPower, c.powerURL, params)
	if err != nil {
		return nil, err
	}
	if len(series.Properties.Parameter) == 0 {
		return nil, fmt.Errorf("nasa %s: %w", APIPower, ErrNoData)
	}
	return series, nil
}

// EarthAssets looks up the Landsat asset closest to date for p.
func (c *Client) EarthAssets(ctx context.Context, p Point, date time.Time) (*EarthAsset, error) {
	if c.apiKey == "" {
		return nil, ErrRealDataDisabled
	}
	params := url.Values{
		"lat":  {strconv.FormatFloat(p.Lat, 'f', 4, 64)},
		"lon":  {strconv.FormatFloat(p.Lng, 'f', 4, 64)},
		"date": {date.Format(time.DateOnly)},
		"dim":  {"0.10"},
	}
	asset, err := getJSON[EarthAsset](ctx, c, APIEarth, c.earthURL, params)
	if err != nil {
		return nil, err
	}
	if asset.URL == "" && asset.ID == "" {
		return nil, fmt.Errorf("nasa %s: %w", APIEarth, ErrNoData)
	}
	return asset, nil
}

// getJSON performs one rate-limited, breaker-protected GET and decodes the
// body into a fresh T.
func getJSON[T any](ctx context.Context, c *Client, api, endpoint string, params url.Values) (*T, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("nasa %s: rate limit: %w", api, err)
	}

	start := time.Now()
	v, err := castResult[T](c.execute(func() (any, error) {
		var dst T
		if err := c.fetch(ctx, api, endpoint, params, &dst); err != nil {
			return nil, err
		}
		return &dst, nil
	}))
	metrics.RecordNASARequest(api, time.Since(start), err)
	return v, err
}

func (c *Client) fetch(ctx context.Context, api, endpoint string, params url.Values, dst any) error {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("nasa %s: create request: %w", api, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return fmt.Errorf("nasa %s: %w", api, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{API: api, StatusCode: resp.StatusCode, Body: string(readBodyForError(resp.Body))}
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize)).Decode(dst); err != nil {
		return fmt.Errorf("nasa %s: decode response: %w", api, err)
	}
	return nil
}

func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}
