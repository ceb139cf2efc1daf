// Package pipeline orchestrates one URL analysis: cache probe, feature
// extraction, parallel analyzer dispatch, fusion, and cache store.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/phishguard/phishguard/pkg/brands"
	"github.com/phishguard/phishguard/pkg/cache"
	"github.com/phishguard/phishguard/pkg/config"
	"github.com/phishguard/phishguard/pkg/features"
	"github.com/phishguard/phishguard/pkg/heuristics"
	"github.com/phishguard/phishguard/pkg/impersonation"
	"github.com/phishguard/phishguard/pkg/lookalike"
	"github.com/phishguard/phishguard/pkg/ml"
	"github.com/phishguard/phishguard/pkg/scoring"
	"github.com/phishguard/phishguard/pkg/threatintel"
)

// Request is one URL analysis submission. Page may be nil when the caller
// has no rendered page context.
type Request struct {
	URL  string
	Page *impersonation.PageContext
}

// Reputation is the domain-reputation lookup result
type Reputation struct {
	Domain      string              `json:"domain"`
	IsMalicious bool                `json:"is_malicious"`
	ThreatScore int                 `json:"threat_score"`
	Sources     *threatintel.Result `json:"sources"`
	Timestamp   string              `json:"timestamp"`
}

// Deps holds the explicitly constructed components the analyzer runs
type Deps struct {
	Extractor     *features.Extractor
	Heuristics    *heuristics.Scorer
	Lookalike     *lookalike.Detector
	Impersonation *impersonation.Detector
	ThreatIntel   *threatintel.Aggregator
	Predictor     ml.Scorer
	Composite     *scoring.Scorer
	Cache         *cache.ThreatCache

	InferenceBudget     time.Duration
	SuspiciousThreshold int

	Logger zerolog.Logger
}

// Analyzer runs the analysis pipeline. All components are read-only after
// construction; the analyzer is safe for concurrent requests.
type Analyzer struct {
	deps   Deps
	logger zerolog.Logger
}

// NewAnalyzer wires an analyzer from pre-built components
func NewAnalyzer(deps Deps) *Analyzer {
	if deps.SuspiciousThreshold == 0 {
		deps.SuspiciousThreshold = 60
	}
	return &Analyzer{
		deps:   deps,
		logger: deps.Logger.With().Str("component", "pipeline").Logger(),
	}
}

// Build constructs the full component graph from configuration. The cache
// backend prefers Redis and falls back to the in-process store when Redis
// is unreachable at startup.
func Build(cfg *config.Config, logger zerolog.Logger) *Analyzer {
	var store cache.Store
	redisStore, err := cache.NewRedisStore(cfg.Cache, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, using in-memory cache")
		store = cache.NewMemoryStore(cfg.Cache.MemoryMaxEntries)
	} else {
		store = redisStore
	}
	threatCache := cache.NewThreatCache(store, cfg.Cache, logger)

	feed := threatintel.NewFeed(cfg.ThreatIntel.OpenPhishFeedURL,
		cfg.ThreatIntel.FeedRefresh(), cfg.ThreatIntel.FeedTimeout(), logger)

	var virusTotal *threatintel.VirusTotalClient
	if cfg.ThreatIntel.VirusTotalAPIKey != "" {
		virusTotal = threatintel.NewVirusTotalClient(cfg.ThreatIntel.VirusTotalAPIKey,
			cfg.ThreatIntel.VirusTotalRate, cfg.ThreatIntel.RequestTimeout(), logger)
	}
	var abuseIPDB *threatintel.AbuseIPDBClient
	if cfg.ThreatIntel.AbuseIPDBAPIKey != "" {
		abuseIPDB = threatintel.NewAbuseIPDBClient(cfg.ThreatIntel.AbuseIPDBAPIKey,
			cfg.ThreatIntel.AbuseIPDBDailyRate, cfg.ThreatIntel.RequestTimeout(), logger)
	}

	return NewAnalyzer(Deps{
		Extractor:     features.NewExtractor(cfg.Probes, logger),
		Heuristics:    heuristics.NewScorer(logger),
		Lookalike:     lookalike.NewDetector(brands.NewIndex()),
		Impersonation: impersonation.NewDetector(),
		ThreatIntel: threatintel.NewAggregator(virusTotal, abuseIPDB, feed,
			threatCache, cfg.ThreatIntel.SourceCacheTTL(), logger),
		Predictor:           ml.NewLogisticScorer(cfg.ML.ModelPath, logger),
		Composite:           scoring.NewScorer(cfg.Scoring, logger),
		Cache:               threatCache,
		InferenceBudget:     cfg.ML.InferenceBudget(),
		SuspiciousThreshold: cfg.Scoring.Thresholds.Suspicious,
		Logger:              logger,
	})
}

// AnalyzeURL runs the full pipeline for one URL. Analyzer failures fold to
// zero contributions; only feature extraction and fusion failures fail the
// request.
func (a *Analyzer) AnalyzeURL(ctx context.Context, req Request) (*scoring.Result, error) {
	var cached scoring.Result
	if a.deps.Cache.GetURLAnalysis(ctx, req.URL, &cached) {
		a.logger.Debug().Str("url", req.URL).Msg("cache hit")
		return &cached, nil
	}

	feats, err := a.deps.Extractor.Extract(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("feature extraction failed: %w", err)
	}

	var (
		heurResult *heuristics.Result
		lookResult *lookalike.Result
		intel      *threatintel.Result
		prediction *ml.Prediction
	)

	// Analyzers run in parallel over the read-only feature record. Each
	// failure leaves its result nil; fusion treats nil as zero.
	dispatch(a.logger, map[string]func(){
		"heuristics": func() { heurResult = a.deps.Heuristics.Score(feats) },
		"lookalike":  func() { lookResult = a.deps.Lookalike.Detect(feats.DomainLabel) },
		"threatintel": func() {
			intel = a.deps.ThreatIntel.CheckAll(ctx, req.URL)
		},
		"ml": func() {
			predictCtx := ctx
			if a.deps.InferenceBudget > 0 {
				var cancel context.CancelFunc
				predictCtx, cancel = context.WithTimeout(ctx, a.deps.InferenceBudget)
				defer cancel()
			}
			p, err := a.deps.Predictor.Predict(predictCtx, feats)
			if err == nil {
				prediction = p
			}
		},
	})

	var imp *impersonation.Result
	if req.Page != nil && !req.Page.Empty() {
		imp = a.deps.Impersonation.Detect(req.URL, feats.DomainLabel, feats.Domain, req.Page)
	}

	result, err := a.deps.Composite.Fuse(prediction, heurResult, intel, lookResult, imp)
	if err != nil {
		return nil, fmt.Errorf("score fusion failed: %w", err)
	}

	a.deps.Cache.SetURLAnalysis(ctx, req.URL, result, result.RiskLevel, result.ThreatScore)

	a.logger.Info().
		Str("url", req.URL).
		Int("threat_score", result.ThreatScore).
		Str("risk_level", result.RiskLevel).
		Bool("is_phishing", result.IsPhishing).
		Msg("analysis complete")

	return result, nil
}

// reputationTTL bounds how long a domain-reputation lookup is reused
const reputationTTL = time.Hour

// DomainReputation checks a bare domain against the reputation sources.
// Results are cached for an hour.
func (a *Analyzer) DomainReputation(ctx context.Context, domain string) *Reputation {
	var cached Reputation
	if a.deps.Cache.GetSource(ctx, "reputation", domain, &cached) {
		return &cached
	}

	intel := a.deps.ThreatIntel.CheckAll(ctx, "https://"+domain)
	rep := &Reputation{
		Domain:      domain,
		IsMalicious: intel.ThreatIntelScore >= a.deps.SuspiciousThreshold,
		ThreatScore: intel.ThreatIntelScore,
		Sources:     intel,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	a.deps.Cache.SetSource(ctx, "reputation", domain, rep, reputationTTL)
	return rep
}

// CacheStats exposes the cache backend state for the health endpoint
func (a *Analyzer) CacheStats(ctx context.Context) cache.Stats {
	return a.deps.Cache.Stats(ctx)
}

// FeedStatus exposes the reputation feed state
func (a *Analyzer) FeedStatus() (size int, lastRefresh time.Time) {
	return a.deps.ThreatIntel.FeedStatus()
}

// dispatch runs the analyzers concurrently, containing panics so one
// misbehaving analyzer cannot take down the request.
func dispatch(logger zerolog.Logger, analyzers map[string]func()) {
	var wg sync.WaitGroup
	for name, run := range analyzers {
		wg.Add(1)
		go func(name string, run func()) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error().Str("analyzer", name).Interface("panic", r).Msg("analyzer panicked")
				}
			}()
			run()
		}(name, run)
	}
	wg.Wait()
}
