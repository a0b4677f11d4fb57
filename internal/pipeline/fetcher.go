package pipeline

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ppiankov/phonespec/internal/cache"
	"github.com/ppiankov/phonespec/internal/model"
	"github.com/ppiankov/phonespec/internal/util"
)

// ErrDisallowed is returned when robots.txt forbids a page
var ErrDisallowed = errors.New("disallowed by robots.txt")

// RobotsPolicy answers robots.txt questions
type RobotsPolicy interface {
	CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error)
}

// Fetcher retrieves pages. It never retries: a failed fetch is reported and the run moves on.
type Fetcher struct {
	httpClient   *http.Client
	userAgent    string
	maxBytes     int64
	pages        *cache.PageCache
	robots       RobotsPolicy
	onCrawlDelay func(host string, delay time.Duration)
	logger       *slog.Logger
	now          func() time.Time
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithPageCache serves repeated fetches from pages
func WithPageCache(pages *cache.PageCache) FetcherOption {
	return func(f *Fetcher) { f.pages = pages }
}

// WithRobots checks robots before every network fetch and reports crawl delays to onDelay
func WithRobots(robots RobotsPolicy, onDelay func(host string, delay time.Duration)) FetcherOption {
	return func(f *Fetcher) {
		f.robots = robots
		f.onCrawlDelay = onDelay
	}
}

// WithHTTPClient replaces the default client
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) { f.httpClient = client }
}

// WithFetchLogger sets the logger
func WithFetchLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = logger }
}

// NewFetcher creates a Fetcher with the given configuration
func NewFetcher(cfg model.HTTPConfig, opts ...FetcherOption) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	f := &Fetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchResult is a fetched page
type FetchResult struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        string
	FetchedAt   time.Time
	FromCache   bool
}

// Cached reports whether rawURL would be served without a network request
func (f *Fetcher) Cached(rawURL string) bool {
	if f.pages == nil {
		return false
	}
	_, ok := f.pages.Get(rawURL)
	return ok
}

// Fetch retrieves a page. Every failure is a *model.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.pages != nil {
		if page, ok := f.pages.Get(rawURL); ok {
			return &FetchResult{
				URL:         page.URL,
				FinalURL:    page.FinalURL,
				StatusCode:  page.StatusCode,
				ContentType: page.ContentType,
				Body:        string(page.Body),
				FetchedAt:   page.FetchedAt,
				FromCache:   true,
			}, nil
		}
	}

	if err := f.checkRobots(ctx, rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &model.FetchError{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,text/markdown;q=0.8,*/*;q=0.7")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &model.FetchError{URL: rawURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &model.FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, &model.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	result := &FetchResult{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        string(body),
		FetchedAt:   f.now().UTC(),
	}

	if f.pages != nil {
		if err := f.pages.Put(&cache.Page{
			URL:         result.URL,
			FinalURL:    result.FinalURL,
			StatusCode:  result.StatusCode,
			ContentType: result.ContentType,
			Body:        body,
			FetchedAt:   result.FetchedAt,
		}); err != nil {
			f.logger.Warn("page cache write failed", slog.String("url", rawURL), slog.String("error", err.Error()))
		}
	}

	return result, nil
}

func (f *Fetcher) checkRobots(ctx context.Context, rawURL string) error {
	if f.robots == nil {
		return nil
	}

	allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
	if err != nil {
		if !allowed {
			return &model.FetchError{URL: rawURL, Err: err}
		}
		f.logger.Warn("robots.txt unavailable, fetching anyway", slog.String("url", rawURL), slog.String("error", err.Error()))
	}
	if !allowed {
		return &model.FetchError{URL: rawURL, Err: ErrDisallowed}
	}
	if delay > 0 && f.onCrawlDelay != nil {
		if u, perr := url.Parse(rawURL); perr == nil {
			f.onCrawlDelay(u.Host, delay)
		}
	}
	return nil
}
