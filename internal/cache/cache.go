// Package cache keeps recently fetched price quotes so that repeated
// commands within a short window reuse one lookup.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ethpkg/donate/internal/quote"
)

// QuoteCache maps a currency pair to its last quote.
type QuoteCache struct {
	mu      sync.RWMutex
	Entries map[string]Entry `json:"entries"`
}

// Entry is one cached quote.
type Entry struct {
	Quote    quote.Quote `json:"quote"`
	StoredAt time.Time   `json:"stored_at"`
}

// NewQuoteCache returns an empty cache.
func NewQuoteCache() *QuoteCache {
	return &QuoteCache{Entries: make(map[string]Entry)}
}

func key(pair string) string {
	return strings.ToUpper(strings.TrimSpace(pair))
}

// Get returns the quote for pair and its age.
func (c *QuoteCache) Get(pair string) (*quote.Quote, time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.Entries[key(pair)]
	if !ok {
		return nil, 0, false
	}
	q := e.Quote
	return &q, time.Since(e.StoredAt), true
}

// Set stores q for pair.
func (c *QuoteCache) Set(pair string, q quote.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Entries[key(pair)] = Entry{Quote: q, StoredAt: time.Now()}
}

// Prune drops entries older than maxAge and returns how many were removed.
func (c *QuoteCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for k, e := range c.Entries {
		if e.StoredAt.Before(cutoff) {
			delete(c.Entries, k)
			removed++
		}
	}
	return removed
}

// Size returns the number of entries.
func (c *QuoteCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Entries)
}

// Fetcher fetches a fresh quote.
type Fetcher interface {
	BuyPrice(ctx context.Context, pair string) (*quote.Quote, error)
}

// Logger is the logging surface of Source.
type Logger interface {
	Debug(format string, args ...any)
}

// Source is a Fetcher that answers from the cache while entries are younger
// than maxAge. Failures to persist the cache are logged, never returned.
type Source struct {
	next    Fetcher
	storage *FileStorage
	maxAge  time.Duration
	log     Logger
}

// NewSource wraps next. A non-positive maxAge disables caching.
func NewSource(next Fetcher, storage *FileStorage, maxAge time.Duration, log Logger) *Source {
	return &Source{next: next, storage: storage, maxAge: maxAge, log: log}
}

// BuyPrice returns a cached quote when fresh enough, otherwise fetches and stores one.
func (s *Source) BuyPrice(ctx context.Context, pair string) (*quote.Quote, error) {
	if s.maxAge <= 0 {
		return s.next.BuyPrice(ctx, pair)
	}

	c, err := s.storage.Load()
	if err != nil {
		s.debug("price cache unreadable, starting empty: %v", err)
	}
	if q, age, ok := c.Get(pair); ok && age <= s.maxAge {
		s.debug("using cached %s price from %s ago", pair, age.Round(time.Second))
		return q, nil
	}

	q, err := s.next.BuyPrice(ctx, pair)
	if err != nil {
		return nil, err
	}

	c.Prune(s.maxAge)
	c.Set(pair, *q)
	if err := s.storage.Save(c); err != nil {
		s.debug("saving price cache: %v", err)
	}
	return q, nil
}

func (s *Source) debug(format string, args ...any) {
	if s.log != nil {
		s.log.Debug(format, args...)
	}
}
