package worker

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum interval between requests to the same host.
// One Limiter is shared by every component that talks to external hosts.
type Limiter struct {
	limiters        map[string]*rate.Limiter
	mu              sync.RWMutex
	defaultInterval time.Duration
}

// NewLimiter creates a limiter allowing one request per interval per host
func NewLimiter(interval time.Duration) *Limiter {
	return &Limiter{
		limiters:        make(map[string]*rate.Limiter),
		defaultInterval: interval,
	}
}

// Wait blocks until a request to the URL's host is allowed
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	host, err := extractHost(rawURL)
	if err != nil {
		return err
	}

	return l.getLimiter(host).Wait(ctx)
}

// Interval returns the interval in effect for the URL's host
func (l *Limiter) Interval(rawURL string) time.Duration {
	host, err := extractHost(rawURL)
	if err != nil {
		return l.defaultInterval
	}
	lim := l.getLimiter(host)
	if lim.Limit() == rate.Inf || lim.Limit() == 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(lim.Limit()))
}

func (l *Limiter) getLimiter(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[host]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(every(l.defaultInterval), 1)
	l.limiters[host] = limiter

	return limiter
}

// RaiseHostInterval lengthens the interval for a host, e.g. from a robots.txt
// crawl delay. A shorter interval than the current one is ignored.
func (l *Limiter) RaiseHostInterval(host string, interval time.Duration) {
	if interval <= l.defaultInterval {
		return
	}
	lim := l.getLimiter(host)
	if next := every(interval); next < lim.Limit() {
		lim.SetLimit(next)
	}
}

func every(interval time.Duration) rate.Limit {
	if interval <= 0 {
		return rate.Inf
	}
	return rate.Every(interval)
}

func extractHost(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return parsed.Host, nil
}
