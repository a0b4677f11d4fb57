package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// Cache is a byte store with per-entry expiry
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// keyPrefix is bumped whenever the cached page encoding changes
const keyPrefix = "phonespec:page:v1:"

// PageKey generates a cache key from a page URL. Fragments never change the fetched body.
func PageKey(url string) string {
	if i := strings.IndexByte(url, '#'); i >= 0 {
		url = url[:i]
	}
	hash := sha256.Sum256([]byte(url))
	return keyPrefix + hex.EncodeToString(hash[:])
}

// Page is a successful fetch kept for re-runs
type Page struct {
	URL         string    `json:"url"`
	FinalURL    string    `json:"final_url"`
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// PageCache stores fetched pages by URL on top of a Cache
type PageCache struct {
	store Cache
	ttl   time.Duration
}

// NewPageCache wraps store; ttl 0 uses the store's default
func NewPageCache(store Cache, ttl time.Duration) *PageCache {
	return &PageCache{store: store, ttl: ttl}
}

// Get returns the cached page for url
func (c *PageCache) Get(url string) (*Page, bool) {
	data, ok := c.store.Get(PageKey(url))
	if !ok {
		return nil, false
	}
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		_ = c.store.Delete(PageKey(url))
		return nil, false
	}
	return &page, true
}

// Put stores a page under its request URL
func (c *PageCache) Put(page *Page) error {
	data, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.store.Set(PageKey(page.URL), data, c.ttl)
}

// Clear drops every cached page
func (c *PageCache) Clear() error {
	return c.store.Clear()
}
