package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPageKey(t *testing.T) {
	a := PageKey("https://www.gsmarena.com/x-1.php")
	b := PageKey("https://www.gsmarena.com/x-1.php#specs")
	c := PageKey("https://www.gsmarena.com/x-2.php")

	if a != b {
		t.Error("fragment should not change the key")
	}
	if a == c {
		t.Error("different URLs must have different keys")
	}
	if !strings.HasPrefix(a, "phonespec:page:v1:") {
		t.Errorf("unexpected key prefix: %s", a)
	}
}

func TestMemoryCache_CopiesValues(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	value := []byte("hello")
	_ = c.Set("k", value, 0)
	value[0] = 'j'

	got, ok := c.Get("k")
	if !ok || string(got) != "hello" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
	got[0] = 'y'
	again, _ := c.Get("k")
	if string(again) != "hello" {
		t.Error("cached value mutated through returned slice")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestDiskCache_RoundTripAndExpiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	key := PageKey("https://example.com/a")
	if err := c.Set(key, []byte("body"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := c.Get(key)
	if !ok || string(got) != "body" {
		t.Fatalf("Get = %q, %v", got, ok)
	}

	now = now.Add(2 * time.Hour)
	if _, ok := c.Get(key); ok {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path(key)); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	key := PageKey("https://example.com/a")

	_ = c.Set(key, []byte("body"), 0)
	if err := os.WriteFile(c.path(key), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get(key); ok {
		t.Error("corrupt entry returned")
	}
}

func TestDiskCache_Prune(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	now := time.Now()
	c.now = func() time.Time { return now }

	_ = c.Set(PageKey("https://example.com/short"), []byte("a"), time.Minute)
	_ = c.Set(PageKey("https://example.com/long"), []byte("b"), 24*time.Hour)

	now = now.Add(time.Hour)
	removed, err := c.Prune()
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := c.Get(PageKey("https://example.com/long")); !ok {
		t.Error("live entry pruned")
	}
}

func TestDiskCache_PruneMissingDir(t *testing.T) {
	c := NewDiskCache(filepath.Join(t.TempDir(), "nope"), time.Hour)
	if n, err := c.Prune(); err != nil || n != 0 {
		t.Errorf("Prune on missing dir = %d, %v", n, err)
	}
	if err := c.Delete("missing"); err != nil {
		t.Errorf("Delete missing = %v", err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)

	key := PageKey("https://example.com/a")
	if err := c.disk.Set(key, []byte("from disk"), 0); err != nil {
		t.Fatal(err)
	}

	got, ok := c.Get(key)
	if !ok || string(got) != "from disk" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
	if _, ok := c.memory.Get(key); !ok {
		t.Error("disk hit not promoted to memory")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("entry survived Clear")
	}
}

func TestPageCache(t *testing.T) {
	pc := NewPageCache(NewMemoryCache(time.Minute, time.Minute), 0)

	page := &Page{
		URL:         "https://www.gsmarena.com/x-1.php",
		FinalURL:    "https://www.gsmarena.com/x-1.php",
		StatusCode:  200,
		ContentType: "text/html",
		Body:        []byte("<html></html>"),
		FetchedAt:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := pc.Put(page); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := pc.Get(page.URL + "#top")
	if !ok {
		t.Fatal("page not found")
	}
	if string(got.Body) != "<html></html>" || got.ContentType != "text/html" || !got.FetchedAt.Equal(page.FetchedAt) {
		t.Errorf("page mismatch: %+v", got)
	}

	if _, ok := pc.Get("https://www.gsmarena.com/x-2.php"); ok {
		t.Error("unexpected hit")
	}
}
