package threatintel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestFeed(t *testing.T, lines ...string) (*Feed, *int) {
	t.Helper()
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		fmt.Fprint(w, strings.Join(lines, "\n"))
	}))
	t.Cleanup(server.Close)
	return NewFeed(server.URL, 15*time.Minute, 10*time.Second, zerolog.Nop()), &fetches
}

func newTestVirusTotal(t *testing.T, malicious int) *VirusTotalClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/urls":
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"id": "analysis-1"},
			})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/analyses/"):
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"attributes": map[string]any{
						"stats": map[string]int{
							"malicious": malicious, "suspicious": 1,
							"harmless": 50, "undetected": 10,
						},
					},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	client := NewVirusTotalClient("test-key", 10, time.Second, zerolog.Nop())
	client.baseURL = server.URL
	return client
}

func newTestAbuseIPDB(t *testing.T, confidence int) *AbuseIPDBClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"abuseConfidenceScore": confidence,
				"totalReports":         12,
				"countryCode":          "US",
			},
		})
	}))
	t.Cleanup(server.Close)

	client := NewAbuseIPDBClient("test-key", 1000, time.Second, zerolog.Nop())
	client.baseURL = server.URL
	return client
}

func TestCheckAllFusesAllSources(t *testing.T) {
	feed, _ := newTestFeed(t, "https://evil.test/login", "https://other.test/")
	agg := NewAggregator(
		newTestVirusTotal(t, 7),
		newTestAbuseIPDB(t, 80),
		feed, nil, 0, zerolog.Nop())

	result := agg.CheckAll(context.Background(), "https://evil.test/login")

	// feed 40 + virustotal 35 + abuseipdb 25, clamped at 100
	if result.ThreatIntelScore != 100 {
		t.Errorf("ThreatIntelScore = %d, want 100", result.ThreatIntelScore)
	}
	if result.Hits != 3 {
		t.Errorf("Hits = %d, want 3", result.Hits)
	}
	if len(result.Reasons) != 3 {
		t.Fatalf("Reasons = %v, want 3 entries", result.Reasons)
	}
	if !strings.Contains(result.Reasons[0], "phishing feed") {
		t.Errorf("leading reason = %q, want feed listing", result.Reasons[0])
	}
}

func TestCheckAllFeedOnly(t *testing.T) {
	feed, _ := newTestFeed(t, "https://evil.test/login")
	agg := NewAggregator(nil, nil, feed, nil, 0, zerolog.Nop())

	result := agg.CheckAll(context.Background(), "https://clean.test/")
	if result.ThreatIntelScore != 0 {
		t.Errorf("ThreatIntelScore = %d, want 0", result.ThreatIntelScore)
	}
	if result.Hits != 0 {
		t.Errorf("Hits = %d, want 0", result.Hits)
	}
	if result.VirusTotal != nil || result.AbuseIPDB != nil {
		t.Error("unconfigured sources must produce no sub-records")
	}
}

func TestCheckAllModerateSignals(t *testing.T) {
	feed, _ := newTestFeed(t)
	agg := NewAggregator(
		newTestVirusTotal(t, 3),
		newTestAbuseIPDB(t, 55),
		feed, nil, 0, zerolog.Nop())

	result := agg.CheckAll(context.Background(), "https://shady.test/")

	// virustotal suspicious band 20 + abuseipdb moderate band 15, no hits
	if result.ThreatIntelScore != 35 {
		t.Errorf("ThreatIntelScore = %d, want 35", result.ThreatIntelScore)
	}
	if result.Hits != 0 {
		t.Errorf("Hits = %d, want 0", result.Hits)
	}
}

func TestFeedMembershipNormalised(t *testing.T) {
	feed, _ := newTestFeed(t, "https://evil.test/login")
	result := feed.Check(context.Background(), "  HTTPS://EVIL.TEST/login  ")
	if !result.IsPhishing {
		t.Error("membership check must lowercase and trim the URL")
	}
}

func TestFeedRefreshSingleFetchWhileFresh(t *testing.T) {
	feed, fetches := newTestFeed(t, "https://evil.test/")
	ctx := context.Background()

	feed.Check(ctx, "https://a.test/")
	feed.Check(ctx, "https://b.test/")
	feed.Check(ctx, "https://c.test/")

	if *fetches != 1 {
		t.Errorf("feed fetched %d times within the refresh interval, want 1", *fetches)
	}
	if feed.Size() != 1 {
		t.Errorf("Size = %d, want 1", feed.Size())
	}
}

func TestRateLimitedSourceContributesNothing(t *testing.T) {
	feed, _ := newTestFeed(t)
	vt := newTestVirusTotal(t, 9)
	vt.limiter = NewRateLimiter(0, time.Minute) // exhausted budget

	agg := NewAggregator(vt, nil, feed, nil, 0, zerolog.Nop())
	result := agg.CheckAll(context.Background(), "https://shady.test/")

	if result.ThreatIntelScore != 0 {
		t.Errorf("ThreatIntelScore = %d, want 0", result.ThreatIntelScore)
	}
	if result.VirusTotal == nil || result.VirusTotal.Error != "rate_limited" {
		t.Errorf("VirusTotal sub-record = %+v, want rate_limited", result.VirusTotal)
	}
}

type fakeSourceCache struct {
	records map[string][]byte
}

func (f *fakeSourceCache) GetSource(ctx context.Context, source, id string, out any) bool {
	data, ok := f.records[source+":"+id]
	if !ok {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (f *fakeSourceCache) SetSource(ctx context.Context, source, id string, value any, ttl time.Duration) {
	data, _ := json.Marshal(value)
	f.records[source+":"+id] = data
}

func TestSourceResultsCached(t *testing.T) {
	feed, _ := newTestFeed(t)
	cache := &fakeSourceCache{records: make(map[string][]byte)}
	agg := NewAggregator(newTestVirusTotal(t, 7), nil, feed, cache, time.Hour, zerolog.Nop())

	ctx := context.Background()
	first := agg.CheckAll(ctx, "https://shady.test/")
	second := agg.CheckAll(ctx, "https://shady.test/")

	if len(cache.records) != 1 {
		t.Fatalf("cached records = %d, want 1", len(cache.records))
	}
	if first.VirusTotal.Detections != second.VirusTotal.Detections {
		t.Error("cached sub-record differs from the original")
	}
}
