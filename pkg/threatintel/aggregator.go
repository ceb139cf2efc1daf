package threatintel

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// SourceCache stores per-source sub-records so repeated lookups within the
// TTL skip the external call. Implemented by the threat cache.
type SourceCache interface {
	GetSource(ctx context.Context, source, identifier string, out any) bool
	SetSource(ctx context.Context, source, identifier string, value any, ttl time.Duration)
}

// Result aggregates every source's sub-record with the fused score
type Result struct {
	ThreatIntelScore int               `json:"threat_intel_score"`
	VirusTotal       *VirusTotalResult `json:"virustotal,omitempty"`
	AbuseIPDB        *AbuseIPDBResult  `json:"abuseipdb,omitempty"`
	OpenPhish        *OpenPhishResult  `json:"openphish,omitempty"`
	Hits             int               `json:"hits"`
	Reasons          []string          `json:"reasons"`
}

// Aggregator orchestrates the reputation sources. Every source is
// best-effort: a failed or rate-limited source contributes nothing.
type Aggregator struct {
	virusTotal *VirusTotalClient
	abuseIPDB  *AbuseIPDBClient
	feed       *Feed
	cache      SourceCache
	cacheTTL   time.Duration
	logger     zerolog.Logger
}

// NewAggregator creates an aggregator. virusTotal and abuseIPDB may be nil
// when no API key is configured; cache may be nil to disable per-source
// caching.
func NewAggregator(virusTotal *VirusTotalClient, abuseIPDB *AbuseIPDBClient, feed *Feed,
	cache SourceCache, cacheTTL time.Duration, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		virusTotal: virusTotal,
		abuseIPDB:  abuseIPDB,
		feed:       feed,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger.With().Str("component", "threatintel").Logger(),
	}
}

// CheckAll runs the URL through every configured source and fuses the
// outcome into one score with hit counting and reasons.
func (a *Aggregator) CheckAll(ctx context.Context, rawURL string) *Result {
	result := &Result{Reasons: []string{}}

	// Feed membership first: fastest, needs no API key
	feedResult := a.feed.Check(ctx, rawURL)
	result.OpenPhish = feedResult
	if feedResult.IsPhishing {
		result.Hits++
		result.ThreatIntelScore += 40
		result.Reasons = append(result.Reasons, "Listed in phishing feed (confirmed phishing)")
	}

	if a.virusTotal != nil {
		vt := a.checkVirusTotal(ctx, rawURL)
		result.VirusTotal = vt
		if vt.Success {
			switch {
			case vt.Detections >= 5:
				result.Hits++
				result.ThreatIntelScore += 35
				result.Reasons = append(result.Reasons,
					fmt.Sprintf("VirusTotal: %d vendors flagged as malicious", vt.Detections))
			case vt.Detections >= 2:
				result.ThreatIntelScore += 20
				result.Reasons = append(result.Reasons,
					fmt.Sprintf("VirusTotal: %d vendors flagged (suspicious)", vt.Detections))
			}
		}
	}

	if a.abuseIPDB != nil {
		abuse := a.checkAbuseIPDB(ctx, rawURL)
		result.AbuseIPDB = abuse
		if abuse.Success {
			switch {
			case abuse.AbuseConfidenceScore >= 75:
				result.Hits++
				result.ThreatIntelScore += 25
				result.Reasons = append(result.Reasons,
					fmt.Sprintf("AbuseIPDB: %d%% abuse confidence", abuse.AbuseConfidenceScore))
			case abuse.AbuseConfidenceScore >= 50:
				result.ThreatIntelScore += 15
				result.Reasons = append(result.Reasons,
					fmt.Sprintf("AbuseIPDB: Moderate risk (%d%%)", abuse.AbuseConfidenceScore))
			}
		}
	}

	if result.ThreatIntelScore > 100 {
		result.ThreatIntelScore = 100
	}

	return result
}

// FeedStatus exposes the feed state for the status command and health
// endpoint.
func (a *Aggregator) FeedStatus() (size int, lastRefresh time.Time) {
	return a.feed.Size(), a.feed.LastRefresh()
}

func (a *Aggregator) checkVirusTotal(ctx context.Context, rawURL string) *VirusTotalResult {
	if a.cache != nil {
		var cached VirusTotalResult
		if a.cache.GetSource(ctx, "virustotal", rawURL, &cached) {
			return &cached
		}
	}

	result := a.virusTotal.Check(ctx, rawURL)
	if a.cache != nil && result.Success {
		a.cache.SetSource(ctx, "virustotal", rawURL, result, a.cacheTTL)
	}
	return result
}

func (a *Aggregator) checkAbuseIPDB(ctx context.Context, rawURL string) *AbuseIPDBResult {
	host := extractHost(rawURL)
	if host == "" {
		return &AbuseIPDBResult{Error: "could not extract host"}
	}

	if a.cache != nil {
		var cached AbuseIPDBResult
		if a.cache.GetSource(ctx, "abuseipdb", host, &cached) {
			return &cached
		}
	}

	result := a.abuseIPDB.Check(ctx, host)
	if a.cache != nil && result.Success {
		a.cache.SetSource(ctx, "abuseipdb", host, result, a.cacheTTL)
	}
	return result
}

func extractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}
