// Package geo resolves postal codes to commune names and coordinates for
// the dashboard map, using the public French communes API. Lookups run in
// bounded concurrent batches with a pause in between so the upstream is
// never hammered, and resolved communes are memoized: a commune does not
// move, so entries are only ever evicted by the size bound.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pakafest/dashboard/pkg/metrics"
)

// Default lookup configuration constants.
const (
	defaultBaseURL      = "https://geo.api.gouv.fr"
	defaultTimeout      = 10 * time.Second
	defaultBatchSize    = 10
	defaultBatchPause   = 100 * time.Millisecond
	defaultCacheEntries = 10_000
)

// Commune is one map marker: a resolved postal code with its commune name
// and coordinates.
type Commune struct {
	Name       string  `json:"name"`
	PostalCode string  `json:"postal_code"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

// apiCommune mirrors the upstream response shape. Coordinates arrive as
// [lon, lat].
type apiCommune struct {
	Name   string `json:"nom"`
	Centre *struct {
		Type        string     `json:"type"`
		Coordinates [2]float64 `json:"coordinates"`
	} `json:"centre"`
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the communes API base URL, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBatchSize bounds how many lookups run concurrently.
func WithBatchSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithBatchPause sets the delay between lookup batches.
func WithBatchPause(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.batchPause = d
		}
	}
}

// WithCacheSize bounds the memo cache. Zero or negative disables caching.
func WithCacheSize(n int) Option {
	return func(c *Client) {
		c.cacheMax = n
	}
}

// Client resolves postal codes against the communes API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	batchSize  int
	batchPause time.Duration

	mu       sync.RWMutex
	cache    map[string]Commune
	cacheMax int
}

// NewClient creates a communes client with configuration options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		batchSize:  defaultBatchSize,
		batchPause: defaultBatchPause,
		cache:      make(map[string]Commune),
		cacheMax:   defaultCacheEntries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup resolves the given postal codes to communes. Codes are deduplicated
// first; codes that fail to resolve (network error, unknown code, commune
// without coordinates) are silently skipped, so the result may be shorter
// than the input. Result order follows the deduplicated input order.
func (c *Client) Lookup(ctx context.Context, postalCodes []string) []Commune {
	codes := dedupe(postalCodes)
	results := make(map[string]Commune, len(codes))

	// Serve what we already know, collect the rest.
	missing := make([]string, 0, len(codes))
	c.mu.RLock()
	for _, code := range codes {
		if commune, ok := c.cache[code]; ok {
			results[code] = commune
			metrics.RecordGeoCacheHit()
			continue
		}
		missing = append(missing, code)
	}
	c.mu.RUnlock()

	for start := 0; start < len(missing); start += c.batchSize {
		end := start + c.batchSize
		if end > len(missing) {
			end = len(missing)
		}
		c.lookupBatch(ctx, missing[start:end], results)

		if end < len(missing) && c.batchPause > 0 {
			select {
			case <-ctx.Done():
				return collect(codes, results)
			case <-time.After(c.batchPause):
			}
		}
	}

	return collect(codes, results)
}

// lookupBatch resolves one batch concurrently, one goroutine per code.
func (c *Client) lookupBatch(ctx context.Context, batch []string, results map[string]Commune) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, code := range batch {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			commune, err := c.fetchCommune(ctx, code)
			if err != nil {
				metrics.RecordGeoLookupError()
				return
			}
			metrics.RecordGeoLookup()
			c.remember(code, commune)
			mu.Lock()
			results[code] = commune
			mu.Unlock()
		}(code)
	}
	wg.Wait()
}

// fetchCommune resolves a single postal code.
func (c *Client) fetchCommune(ctx context.Context, code string) (Commune, error) {
	q := url.Values{}
	q.Set("codePostal", code)
	q.Set("fields", "nom,codesPostaux,centre")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/communes?"+q.Encode(), nil)
	if err != nil {
		return Commune{}, fmt.Errorf("build commune request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Commune{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Commune{}, fmt.Errorf("%w: status %d", ErrLookupFailed, resp.StatusCode)
	}

	var communes []apiCommune
	if err := json.NewDecoder(resp.Body).Decode(&communes); err != nil {
		return Commune{}, fmt.Errorf("%w: decode: %w", ErrLookupFailed, err)
	}
	if len(communes) == 0 || communes[0].Centre == nil {
		return Commune{}, fmt.Errorf("%w: no located commune for %s", ErrLookupFailed, code)
	}

	first := communes[0]
	return Commune{
		Name:       first.Name,
		PostalCode: code,
		Lon:        first.Centre.Coordinates[0],
		Lat:        first.Centre.Coordinates[1],
	}, nil
}

// remember memoizes a resolved commune, unless the cache is full or
// disabled.
func (c *Client) remember(code string, commune Commune) {
	if c.cacheMax <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.cache) >= c.cacheMax {
		return
	}
	c.cache[code] = commune
}

// CacheLen returns the number of memoized communes.
func (c *Client) CacheLen() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func dedupe(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

func collect(codes []string, results map[string]Commune) []Commune {
	out := make([]Commune, 0, len(results))
	for _, code := range codes {
		if commune, ok := results[code]; ok {
			out = append(out, commune)
		}
	}
	return out
}
