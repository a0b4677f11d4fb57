package imageres

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const probeMaxRetries = 3

// probeSleepFunc is the sleep function used between retries (injectable for tests)
var probeSleepFunc = time.Sleep

// Pacer paces requests per host
type Pacer interface {
	Wait(ctx context.Context, rawURL string) error
}

// ProbeResult is the outcome of a HEAD check
type ProbeResult struct {
	URL        string
	StatusCode int
	Exists     bool
	Err        error
}

// Prober checks whether image URLs exist with HEAD requests
type Prober struct {
	client      *http.Client
	pacer       Pacer
	userAgent   string
	concurrency int
	logger      *slog.Logger
}

// NewProber creates a prober. A nil pacer disables pacing.
func NewProber(client *http.Client, pacer Pacer, userAgent string, concurrency int, logger *slog.Logger) *Prober {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if concurrency <= 0 {
		concurrency = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		client:      client,
		pacer:       pacer,
		userAgent:   userAgent,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Probe checks one URL, retrying transient failures
func (p *Prober) Probe(ctx context.Context, rawURL string) ProbeResult {
	var res ProbeResult
	for attempt := 0; attempt < probeMaxRetries; attempt++ {
		res = p.probeOnce(ctx, rawURL)
		if !isRetryable(res) || ctx.Err() != nil {
			return res
		}
		if attempt < probeMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			probeSleepFunc(backoff)
		}
	}
	return res
}

func (p *Prober) probeOnce(ctx context.Context, rawURL string) ProbeResult {
	res := ProbeResult{URL: rawURL}

	if p.pacer != nil {
		if err := p.pacer.Wait(ctx, rawURL); err != nil {
			res.Err = err
			return res
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		res.Err = fmt.Errorf("create request: %w", err)
		return res
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("request failed: %w", err)
		return res
	}
	defer func() { _ = resp.Body.Close() }()

	res.StatusCode = resp.StatusCode
	res.Exists = resp.StatusCode >= 200 && resp.StatusCode < 300
	return res
}

// isRetryable returns true for 5xx, 429 and network failures
func isRetryable(res ProbeResult) bool {
	if res.StatusCode >= 500 && res.StatusCode < 600 {
		return true
	}
	if res.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return res.Err != nil && res.StatusCode == 0
}

// FirstExisting probes urls concurrently and returns the first one in input
// order that exists, or "" when none does. Errors are only returned for cancellation.
func (p *Prober) FirstExisting(ctx context.Context, urls []string) (string, error) {
	results, err := p.ProbeAll(ctx, urls)
	if err != nil {
		return "", err
	}
	for _, res := range results {
		if res.Exists {
			return res.URL, nil
		}
		if res.Err != nil {
			p.logger.Debug("image probe failed", slog.String("url", res.URL), slog.String("error", res.Err.Error()))
		}
	}
	return "", nil
}

// ProbeAll checks every URL with bounded concurrency. Results keep input order.
func (p *Prober) ProbeAll(ctx context.Context, urls []string) ([]ProbeResult, error) {
	results := make([]ProbeResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			results[i] = p.Probe(gctx, u)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
