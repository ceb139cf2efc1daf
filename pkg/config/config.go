package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents PhishGuard configuration
type Config struct {
	// HTTP API server settings
	Server ServerConfig `yaml:"server"`

	// Threat intelligence sources
	ThreatIntel ThreatIntelConfig `yaml:"threat_intel"`

	// Cache backend settings
	Cache CacheConfig `yaml:"cache"`

	// Scoring weights and thresholds
	Scoring ScoringConfig `yaml:"scoring"`

	// Network probe settings (SSL, WHOIS)
	Probes ProbesConfig `yaml:"probes"`

	// ML collaborator settings
	ML MLConfig `yaml:"ml"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	RequestsPerMin  int    `yaml:"requests_per_min"`  // per-IP throttle
	TargetLatencyMs int    `yaml:"target_latency_ms"` // log requests slower than this
	ShutdownGraceMs int    `yaml:"shutdown_grace_ms"`
}

// ThreatIntelConfig contains external reputation source settings
type ThreatIntelConfig struct {
	VirusTotalAPIKey   string `yaml:"virustotal_api_key"`
	AbuseIPDBAPIKey    string `yaml:"abuseipdb_api_key"`
	OpenPhishFeedURL   string `yaml:"openphish_feed_url"`
	RequestTimeoutMs   int    `yaml:"request_timeout_ms"`
	FeedTimeoutMs      int    `yaml:"feed_timeout_ms"`
	FeedRefreshSec     int    `yaml:"feed_refresh_sec"`
	VirusTotalRate     int    `yaml:"virustotal_rate"`      // calls per minute
	AbuseIPDBDailyRate int    `yaml:"abuseipdb_daily_rate"` // calls per day
	SourceCacheTTLSec  int    `yaml:"source_cache_ttl_sec"` // per-source result cache
}

// CacheConfig contains Redis connection and TTL settings
type CacheConfig struct {
	RedisHost     string `yaml:"redis_host"`
	RedisPort     int    `yaml:"redis_port"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPassword string `yaml:"redis_password"`

	// Verdict TTLs in seconds. Critical verdicts never expire.
	TTLPositiveSec int `yaml:"ttl_positive_sec"`
	TTLNegativeSec int `yaml:"ttl_negative_sec"`

	// In-memory fallback limits
	MemoryMaxEntries int `yaml:"memory_max_entries"`
}

// ScoringConfig contains fusion weights and risk thresholds
type ScoringConfig struct {
	Weights    Weights    `yaml:"weights"`
	Thresholds Thresholds `yaml:"thresholds"`
}

// Weights defines the composite fusion weights
type Weights struct {
	ML          float64 `yaml:"ml"`
	Heuristic   float64 `yaml:"heuristic"`
	ThreatIntel float64 `yaml:"threat_intel"`
	Lookalike   float64 `yaml:"lookalike"`
}

// Thresholds defines the risk level boundaries
type Thresholds struct {
	Safe       int `yaml:"safe"`
	Suspicious int `yaml:"suspicious"`
	Dangerous  int `yaml:"dangerous"`
}

// ProbesConfig contains network probe timeouts
type ProbesConfig struct {
	Enabled        bool `yaml:"enabled"`
	SSLTimeoutMs   int  `yaml:"ssl_timeout_ms"`
	WhoisTimeoutMs int  `yaml:"whois_timeout_ms"`
}

// MLConfig contains ML collaborator settings
type MLConfig struct {
	ModelPath         string `yaml:"model_path"`
	InferenceBudgetMs int    `yaml:"inference_budget_ms"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns PhishGuard default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			RequestsPerMin:  120,
			TargetLatencyMs: 200,
			ShutdownGraceMs: 10000,
		},
		ThreatIntel: ThreatIntelConfig{
			OpenPhishFeedURL:   "https://openphish.com/feed.txt",
			RequestTimeoutMs:   3000,
			FeedTimeoutMs:      10000,
			FeedRefreshSec:     900,
			VirusTotalRate:     4,
			AbuseIPDBDailyRate: 1000,
			SourceCacheTTLSec:  3600,
		},
		Cache: CacheConfig{
			RedisHost:        "localhost",
			RedisPort:        6379,
			RedisDB:          0,
			TTLPositiveSec:   604800, // 7 days
			TTLNegativeSec:   86400,  // 24 hours
			MemoryMaxEntries: 10000,
		},
		Scoring: ScoringConfig{
			Weights: Weights{
				ML:          0.40,
				Heuristic:   0.25,
				ThreatIntel: 0.30,
				Lookalike:   0.05,
			},
			Thresholds: Thresholds{
				Safe:       30,
				Suspicious: 60,
				Dangerous:  85,
			},
		},
		Probes: ProbesConfig{
			Enabled:        true,
			SSLTimeoutMs:   2000,
			WhoisTimeoutMs: 3000,
		},
		ML: MLConfig{
			ModelPath:         "phishguard-model.json",
			InferenceBudgetMs: 50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from file, applying environment overrides
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}

		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %v", err)
		}
	}

	config.applyEnvOverrides()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}

	return config, nil
}

// applyEnvOverrides lets secrets come from the environment instead of the file
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PHISHGUARD_VIRUSTOTAL_API_KEY"); v != "" {
		c.ThreatIntel.VirusTotalAPIKey = v
	}
	if v := os.Getenv("PHISHGUARD_ABUSEIPDB_API_KEY"); v != "" {
		c.ThreatIntel.AbuseIPDBAPIKey = v
	}
	if v := os.Getenv("PHISHGUARD_REDIS_PASSWORD"); v != "" {
		c.Cache.RedisPassword = v
	}
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	w := c.Scoring.Weights
	total := w.ML + w.Heuristic + w.ThreatIntel + w.Lookalike
	if total < 0.99 || total > 1.01 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.2f", total)
	}

	t := c.Scoring.Thresholds
	if !(0 < t.Safe && t.Safe < t.Suspicious && t.Suspicious < t.Dangerous && t.Dangerous < 100) {
		return fmt.Errorf("thresholds must satisfy 0 < safe < suspicious < dangerous < 100")
	}

	if c.ThreatIntel.FeedRefreshSec < 60 {
		return fmt.Errorf("feed_refresh_sec must be >= 60")
	}

	if c.ThreatIntel.RequestTimeoutMs < 100 {
		return fmt.Errorf("request_timeout_ms must be >= 100")
	}

	if c.Cache.MemoryMaxEntries < 100 {
		return fmt.Errorf("memory_max_entries must be >= 100")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console'")
	}

	return nil
}

// RequestTimeout returns the threat-intel HTTP timeout as a duration
func (c *ThreatIntelConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// FeedTimeout returns the feed fetch timeout as a duration
func (c *ThreatIntelConfig) FeedTimeout() time.Duration {
	return time.Duration(c.FeedTimeoutMs) * time.Millisecond
}

// FeedRefresh returns the feed refresh interval as a duration
func (c *ThreatIntelConfig) FeedRefresh() time.Duration {
	return time.Duration(c.FeedRefreshSec) * time.Second
}

// SourceCacheTTL returns the per-source threat-intel cache TTL
func (c *ThreatIntelConfig) SourceCacheTTL() time.Duration {
	return time.Duration(c.SourceCacheTTLSec) * time.Second
}

// SSLTimeout returns the TLS probe timeout as a duration
func (c *ProbesConfig) SSLTimeout() time.Duration {
	return time.Duration(c.SSLTimeoutMs) * time.Millisecond
}

// WhoisTimeout returns the WHOIS probe timeout as a duration
func (c *ProbesConfig) WhoisTimeout() time.Duration {
	return time.Duration(c.WhoisTimeoutMs) * time.Millisecond
}

// InferenceBudget returns the ML inference deadline as a duration
func (c *MLConfig) InferenceBudget() time.Duration {
	return time.Duration(c.InferenceBudgetMs) * time.Millisecond
}
