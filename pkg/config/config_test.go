package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"weights not summing to 1", func(c *Config) { c.Scoring.Weights.ML = 0.9 }},
		{"thresholds out of order", func(c *Config) { c.Scoring.Thresholds.Suspicious = 20 }},
		{"feed refresh too short", func(c *Config) { c.ThreatIntel.FeedRefreshSec = 5 }},
		{"request timeout too short", func(c *Config) { c.ThreatIntel.RequestTimeoutMs = 10 }},
		{"cache too small", func(c *Config) { c.Cache.MemoryMaxEntries = 10 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/phishguard.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phishguard.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":9999"
	cfg.Scoring.Thresholds.Safe = 25
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Addr != ":9999" {
		t.Errorf("Addr = %q, want :9999", loaded.Server.Addr)
	}
	if loaded.Scoring.Thresholds.Safe != 25 {
		t.Errorf("ThresholdSafe = %d, want 25", loaded.Scoring.Thresholds.Safe)
	}
}

func TestEnvOverridesApplyToSecrets(t *testing.T) {
	t.Setenv("PHISHGUARD_VIRUSTOTAL_API_KEY", "vt-secret")
	t.Setenv("PHISHGUARD_REDIS_PASSWORD", "redis-secret")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ThreatIntel.VirusTotalAPIKey != "vt-secret" {
		t.Errorf("VirusTotalAPIKey = %q, want env override", cfg.ThreatIntel.VirusTotalAPIKey)
	}
	if cfg.Cache.RedisPassword != "redis-secret" {
		t.Errorf("RedisPassword = %q, want env override", cfg.Cache.RedisPassword)
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ThreatIntel.RequestTimeout().Milliseconds() != 3000 {
		t.Errorf("RequestTimeout = %v, want 3s", cfg.ThreatIntel.RequestTimeout())
	}
	if cfg.ThreatIntel.FeedRefresh().Seconds() != 900 {
		t.Errorf("FeedRefresh = %v, want 15m", cfg.ThreatIntel.FeedRefresh())
	}
	if cfg.Probes.SSLTimeout().Milliseconds() != 2000 {
		t.Errorf("SSLTimeout = %v, want 2s", cfg.Probes.SSLTimeout())
	}
}
