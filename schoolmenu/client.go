package schoolmenu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the School Nutrition and Fitness GraphQL API host.
	DefaultBaseURL = "https://api.isitesoftware.com"

	graphqlEndpoint     = "/graphql"
	userAgentProduct    = "inkyframe-schoolmenu"
	userAgentVersion    = "1.0"
	defaultHTTPTimeout  = 15 * time.Second
	maxResponseBodySize = 4 << 20 // 4 MiB guard
)

// Client fetches lunch menus from the School Nutrition GraphQL API and
// shapes them into per-day item lists with a fallback policy. The zero
// options configuration is ready for production use.
type Client struct {
	baseURL   string
	http      *http.Client
	limiter   RateLimiter
	userAgent string
	logger    *log.Logger
	now       func() time.Time
	fallback  FallbackProvider
	denylist  []string
}

// Option mutates the client during construction.
type Option func(*Client)

// NewClient builds a menu client. The API needs no authentication; options
// customize transport, clock, and fallback behavior.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		http:      &http.Client{Timeout: defaultHTTPTimeout},
		limiter:   NewMinIntervalLimiter(time.Second),
		userAgent: buildDefaultUserAgent(),
		now:       time.Now,
		fallback:  FallbackFunc(unavailableFallback),
		denylist:  standardItems,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.fallback == nil {
		c.fallback = FallbackFunc(unavailableFallback)
	}
	c.baseURL = sanitizeBaseURL(c.baseURL)
	return c
}

// WithBaseURL overrides the API host (useful for staging/tests). No trailing
// slash required.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient installs a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimiter replaces the default limiter. Pass nil to disable.
func WithRateLimiter(l RateLimiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithUserAgent sets a custom User-Agent string.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger installs a logger for recovered fetch/parse failures. A nil
// logger keeps the client silent.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock replaces the wall clock used to anchor the school-day window.
// Tests use this for deterministic date math.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithFallback replaces the provider consulted when no remote source is
// configured or the remote fetch fails.
func WithFallback(p FallbackProvider) Option {
	return func(c *Client) { c.fallback = p }
}

// WithDenylist replaces the standard-accompaniment denylist. Matching is
// case-insensitive by substring.
func WithDenylist(items []string) Option {
	return func(c *Client) { c.denylist = items }
}

func sanitizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(baseURL, "/")
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

type graphqlRequest struct {
	Query string `json:"query"`
}

func buildMenuQuery(menuID string) graphqlRequest {
	return graphqlRequest{Query: fmt.Sprintf(`query {
	menu(id: %q) {
		name
		month
		year
		items {
			day
			month
			year
			date
			product {
				name
			}
		}
	}
}`, menuID)}
}

// FetchMenu issues the single GraphQL request covering the source's whole
// menu period. Transport errors, non-2xx statuses, response-level error
// lists, and missing payloads are all returned as errors; MenuForDays turns
// any of them into the fallback policy.
func (c *Client) FetchMenu(ctx context.Context, src Source) (*Menu, error) {
	menuID := strings.TrimSpace(src.MenuID)
	if menuID == "" {
		return nil, ErrMenuIDMissing
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(buildMenuQuery(menuID))
	if err != nil {
		return nil, fmt.Errorf("schoolmenu: encode request: %w", err)
	}

	endpoint := c.baseURL + graphqlEndpoint
	if sc := strings.TrimSpace(src.SiteCode); sc != "" {
		endpoint += "?siteCode=" + url.QueryEscape(sc)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("schoolmenu: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.userAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("schoolmenu: execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("schoolmenu: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, buildAPIError(resp.StatusCode, raw)
	}

	var envelope menuEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("schoolmenu: decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return nil, graphqlError(resp.StatusCode, envelope.Errors, raw)
	}
	menu := envelope.Data.Menu
	if menu == nil {
		return nil, ErrNoMenuData
	}
	if menu.Month < 1 || menu.Month > 12 || menu.Year == 0 {
		return nil, fmt.Errorf("%w: missing month or year", ErrNoMenuData)
	}
	return menu, nil
}

func buildDefaultUserAgent() string {
	goVer := strings.TrimPrefix(runtime.Version(), "go")
	if goVer == "" {
		goVer = runtime.Version()
	}
	return fmt.Sprintf("%s/%s (+https://github.com/arkottke/inkyframe; Go%s; %s/%s)",
		userAgentProduct, userAgentVersion, goVer, runtime.GOOS, runtime.GOARCH)
}
