package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/phishguard/phishguard/pkg/config"
)

// VerdictTTL maps a verdict to its cache lifetime. Critical verdicts are
// kept until manual review; other positives for the positive TTL; safe
// results for the negative TTL. Pure function of the verdict.
func VerdictTTL(riskLevel string, threatScore int, positive, negative time.Duration) time.Duration {
	if riskLevel == "critical" || threatScore >= 90 {
		return NoExpiry
	}
	if threatScore >= 60 {
		return positive
	}
	return negative
}

// ThreatCache stores analysis verdicts and per-source threat intel records
// as JSON. Backend failures are silent: reads degrade to misses, writes
// are best-effort.
type ThreatCache struct {
	store       Store
	ttlPositive time.Duration
	ttlNegative time.Duration
	logger      zerolog.Logger
}

// NewThreatCache wraps a store with the verdict key schema and TTL policy
func NewThreatCache(store Store, cfg config.CacheConfig, logger zerolog.Logger) *ThreatCache {
	return &ThreatCache{
		store:       store,
		ttlPositive: time.Duration(cfg.TTLPositiveSec) * time.Second,
		ttlNegative: time.Duration(cfg.TTLNegativeSec) * time.Second,
		logger:      logger.With().Str("component", "threatcache").Logger(),
	}
}

// GetURLAnalysis loads a cached verdict into out, reporting whether a
// usable entry was found.
func (t *ThreatCache) GetURLAnalysis(ctx context.Context, rawURL string, out any) bool {
	return t.getJSON(ctx, URLKey(rawURL), out)
}

// SetURLAnalysis stores a verdict under the TTL dictated by its risk
// level and score.
func (t *ThreatCache) SetURLAnalysis(ctx context.Context, rawURL string, result any, riskLevel string, threatScore int) {
	ttl := VerdictTTL(riskLevel, threatScore, t.ttlPositive, t.ttlNegative)
	if ttl == NoExpiry {
		t.logger.Info().Str("url", rawURL).Msg("caching critical threat permanently")
	}
	t.setJSON(ctx, URLKey(rawURL), result, ttl)
}

// GetSource loads a cached per-source threat intel record into out
func (t *ThreatCache) GetSource(ctx context.Context, source, identifier string, out any) bool {
	return t.getJSON(ctx, SourceKey(source, identifier), out)
}

// SetSource caches a per-source threat intel record. ttl NoExpiry falls
// back to the negative TTL; sub-results never outlive a safe verdict.
func (t *ThreatCache) SetSource(ctx context.Context, source, identifier string, value any, ttl time.Duration) {
	if ttl == NoExpiry {
		ttl = t.ttlNegative
	}
	t.setJSON(ctx, SourceKey(source, identifier), value, ttl)
}

// Stats exposes the backend stats for health reporting
func (t *ThreatCache) Stats(ctx context.Context) Stats {
	return t.store.Stats(ctx)
}

func (t *ThreatCache) getJSON(ctx context.Context, key string, out any) bool {
	data, found, err := t.store.Get(ctx, key)
	if err != nil {
		t.logger.Error().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		t.logger.Error().Err(err).Str("key", key).Msg("cached value unreadable")
		return false
	}
	return true
}

func (t *ThreatCache) setJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		t.logger.Error().Err(err).Str("key", key).Msg("cache value not serialisable")
		return
	}
	if err := t.store.Set(ctx, key, data, ttl); err != nil {
		t.logger.Error().Err(err).Str("key", key).Msg("cache write failed")
	}
}
