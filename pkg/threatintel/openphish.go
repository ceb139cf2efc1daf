package threatintel

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// OpenPhishResult is the sub-record for the phishing-URL feed
type OpenPhishResult struct {
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	IsPhishing  bool   `json:"is_phishing"`
	FeedSize    int    `json:"feed_size"`
	LastUpdated string `json:"last_updated,omitempty"`
}

// Feed holds the phishing-URL feed in memory and refreshes it lazily.
// Exactly one refresh runs at a time; readers see the previous set until
// the new one is published whole.
type Feed struct {
	feedURL         string
	refreshInterval time.Duration
	httpClient      *http.Client
	logger          zerolog.Logger

	// refreshMu serializes refresh attempts so a stale window never
	// multiplies the fetch; mu guards the published set.
	refreshMu   sync.Mutex
	mu          sync.RWMutex
	urls        map[string]struct{}
	lastRefresh time.Time
}

// NewFeed creates a feed reader. fetchTimeout bounds each refresh fetch.
func NewFeed(feedURL string, refreshInterval, fetchTimeout time.Duration, logger zerolog.Logger) *Feed {
	return &Feed{
		feedURL:         feedURL,
		refreshInterval: refreshInterval,
		httpClient:      &http.Client{Timeout: fetchTimeout},
		logger:          logger.With().Str("component", "openphish").Logger(),
		urls:            make(map[string]struct{}),
	}
}

// Check reports whether the URL appears in the feed, refreshing first when
// the set is stale.
func (f *Feed) Check(ctx context.Context, rawURL string) *OpenPhishResult {
	f.refreshIfStale(ctx)

	normalized := strings.ToLower(strings.TrimSpace(rawURL))

	f.mu.RLock()
	_, listed := f.urls[normalized]
	size := len(f.urls)
	f.mu.RUnlock()

	result := &OpenPhishResult{
		Success:    true,
		IsPhishing: listed,
		FeedSize:   size,
	}
	if last := f.LastRefresh(); !last.IsZero() {
		result.LastUpdated = last.Format(time.RFC3339)
	}
	return result
}

// Size returns the number of URLs currently held
func (f *Feed) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.urls)
}

// LastRefresh returns the time of the last successful refresh
func (f *Feed) LastRefresh() time.Time {
	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()
	return f.lastRefresh
}

// Refresh forces a feed fetch regardless of staleness
func (f *Feed) Refresh(ctx context.Context) error {
	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()
	return f.refreshLocked(ctx)
}

func (f *Feed) refreshIfStale(ctx context.Context) {
	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()

	if time.Since(f.lastRefresh) < f.refreshInterval {
		return
	}
	if err := f.refreshLocked(ctx); err != nil {
		f.logger.Error().Err(err).Msg("feed refresh failed")
	}
}

// refreshLocked fetches the feed and publishes the new set. Callers hold
// refreshMu.
func (f *Feed) refreshLocked(ctx context.Context) error {
	f.logger.Info().Str("url", f.feedURL).Msg("refreshing phishing feed")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.feedURL, nil)
	if err != nil {
		return err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed fetch returned HTTP %d", resp.StatusCode)
	}

	urls := make(map[string]struct{})
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line != "" {
			urls[line] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	f.urls = urls
	f.mu.Unlock()
	f.lastRefresh = time.Now()

	f.logger.Info().Int("urls", len(urls)).Msg("phishing feed updated")
	return nil
}
