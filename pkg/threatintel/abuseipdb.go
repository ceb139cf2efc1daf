package threatintel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const abuseIPDBBaseURL = "https://api.abuseipdb.com/api/v2"

// AbuseIPDBResult is the sub-record for the host reputation source
type AbuseIPDBResult struct {
	Success              bool    `json:"success"`
	Error                string  `json:"error,omitempty"`
	WaitTime             float64 `json:"wait_time,omitempty"`
	AbuseConfidenceScore int     `json:"abuse_confidence_score,omitempty"`
	TotalReports         int     `json:"total_reports,omitempty"`
	IsWhitelisted        bool    `json:"is_whitelisted,omitempty"`
	Country              string  `json:"country,omitempty"`
	Timestamp            string  `json:"timestamp,omitempty"`
}

// AbuseIPDBClient fetches abuse-confidence scores for hosts
type AbuseIPDBClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *RateLimiter
	logger     zerolog.Logger
}

// NewAbuseIPDBClient creates a client. callsPerDay bounds the request rate
// against the free-tier daily quota.
func NewAbuseIPDBClient(apiKey string, callsPerDay int, timeout time.Duration, logger zerolog.Logger) *AbuseIPDBClient {
	return &AbuseIPDBClient{
		apiKey:     apiKey,
		baseURL:    abuseIPDBBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    NewRateLimiter(callsPerDay, 24*time.Hour),
		logger:     logger.With().Str("component", "abuseipdb").Logger(),
	}
}

// Check fetches the abuse-confidence record for the host. All failures
// come back as unsuccessful records, never as errors.
func (c *AbuseIPDBClient) Check(ctx context.Context, host string) *AbuseIPDBResult {
	if host == "" {
		return &AbuseIPDBResult{Error: "could not extract host"}
	}

	ok, wait := c.limiter.Reserve()
	if !ok {
		c.logger.Warn().Float64("wait_sec", wait.Seconds()).Msg("rate limit hit")
		return &AbuseIPDBResult{Error: "rate_limited", WaitTime: wait.Seconds()}
	}

	params := url.Values{
		"ipAddress":    {host},
		"maxAgeInDays": {"90"},
		"verbose":      {""},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/check?"+params.Encode(), nil)
	if err != nil {
		return &AbuseIPDBResult{Error: err.Error()}
	}
	req.Header.Set("Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("host", host).Msg("request failed")
		return &AbuseIPDBResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &AbuseIPDBResult{Error: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	var body struct {
		Data struct {
			AbuseConfidenceScore int    `json:"abuseConfidenceScore"`
			TotalReports         int    `json:"totalReports"`
			IsWhitelisted        bool   `json:"isWhitelisted"`
			CountryCode          string `json:"countryCode"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return &AbuseIPDBResult{Error: "failed to decode response: " + err.Error()}
	}

	return &AbuseIPDBResult{
		Success:              true,
		AbuseConfidenceScore: body.Data.AbuseConfidenceScore,
		TotalReports:         body.Data.TotalReports,
		IsWhitelisted:        body.Data.IsWhitelisted,
		Country:              body.Data.CountryCode,
		Timestamp:            time.Now().Format(time.RFC3339),
	}
}
