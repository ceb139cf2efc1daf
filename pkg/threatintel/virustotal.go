package threatintel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const virusTotalBaseURL = "https://www.virustotal.com/api/v3"

// VirusTotalResult is the sub-record for the multi-vendor URL reputation
// source.
type VirusTotalResult struct {
	Success      bool    `json:"success"`
	Error        string  `json:"error,omitempty"`
	WaitTime     float64 `json:"wait_time,omitempty"`
	Detections   int     `json:"detections,omitempty"`
	Suspicious   int     `json:"suspicious,omitempty"`
	Harmless     int     `json:"harmless,omitempty"`
	Undetected   int     `json:"undetected,omitempty"`
	TotalVendors int     `json:"total_vendors,omitempty"`
	Timestamp    string  `json:"timestamp,omitempty"`
}

// VirusTotalClient submits URLs and retrieves vendor verdict tallies
type VirusTotalClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *RateLimiter
	logger     zerolog.Logger
}

// NewVirusTotalClient creates a client. callsPerMinute bounds the request
// rate against the free-tier quota.
func NewVirusTotalClient(apiKey string, callsPerMinute int, timeout time.Duration, logger zerolog.Logger) *VirusTotalClient {
	return &VirusTotalClient{
		apiKey:     apiKey,
		baseURL:    virusTotalBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    NewRateLimiter(callsPerMinute, time.Minute),
		logger:     logger.With().Str("component", "virustotal").Logger(),
	}
}

// Check submits the URL for analysis and fetches the vendor stats. All
// failures come back as unsuccessful records, never as errors.
func (c *VirusTotalClient) Check(ctx context.Context, targetURL string) *VirusTotalResult {
	ok, wait := c.limiter.Reserve()
	if !ok {
		c.logger.Warn().Float64("wait_sec", wait.Seconds()).Msg("rate limit hit")
		return &VirusTotalResult{Error: "rate_limited", WaitTime: wait.Seconds()}
	}

	analysisID, err := c.submit(ctx, targetURL)
	if err != nil {
		c.logger.Error().Err(err).Msg("URL submission failed")
		return &VirusTotalResult{Error: err.Error()}
	}

	stats, err := c.fetchAnalysis(ctx, analysisID)
	if err != nil {
		c.logger.Error().Err(err).Msg("analysis fetch failed")
		return &VirusTotalResult{Error: err.Error()}
	}

	return &VirusTotalResult{
		Success:      true,
		Detections:   stats.Malicious,
		Suspicious:   stats.Suspicious,
		Harmless:     stats.Harmless,
		Undetected:   stats.Undetected,
		TotalVendors: stats.Malicious + stats.Suspicious + stats.Harmless + stats.Undetected,
		Timestamp:    time.Now().Format(time.RFC3339),
	}
}

type vendorStats struct {
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Harmless   int `json:"harmless"`
	Undetected int `json:"undetected"`
}

func (c *VirusTotalClient) submit(ctx context.Context, targetURL string) (string, error) {
	form := url.Values{"url": {targetURL}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/urls", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode submission response: %w", err)
	}
	return body.Data.ID, nil
}

func (c *VirusTotalClient) fetchAnalysis(ctx context.Context, analysisID string) (*vendorStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/analyses/"+analysisID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Attributes struct {
				Stats vendorStats `json:"stats"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	return &body.Data.Attributes.Stats, nil
}
