package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
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

type stubPredictor struct {
	prediction *ml.Prediction
	err        error
	panics     bool
}

func (s *stubPredictor) Predict(ctx context.Context, f *features.Features) (*ml.Prediction, error) {
	if s.panics {
		panic("predictor blew up")
	}
	return s.prediction, s.err
}

func newTestAnalyzer(t *testing.T, predictor ml.Scorer, feedLines ...string) (*Analyzer, *int) {
	t.Helper()
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		fmt.Fprint(w, strings.Join(feedLines, "\n"))
	}))
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.Probes.Enabled = false

	logger := zerolog.Nop()
	threatCache := cache.NewThreatCache(cache.NewMemoryStore(1000), cfg.Cache, logger)
	feed := threatintel.NewFeed(server.URL, 15*time.Minute, 10*time.Second, logger)

	analyzer := NewAnalyzer(Deps{
		Extractor:     features.NewExtractor(cfg.Probes, logger),
		Heuristics:    heuristics.NewScorer(logger),
		Lookalike:     lookalike.NewDetector(brands.NewIndex()),
		Impersonation: impersonation.NewDetector(),
		ThreatIntel:   threatintel.NewAggregator(nil, nil, feed, nil, 0, logger),
		Predictor:     predictor,
		Composite:     scoring.NewScorer(cfg.Scoring, logger),
		Cache:         threatCache,
		Logger:        logger,
	})
	return analyzer, &fetches
}

func TestAnalyzeCleanURL(t *testing.T) {
	predictor := &stubPredictor{prediction: &ml.Prediction{
		MLPrediction: 0.05, Confidence: 0.9, ModelUsed: "fallback",
	}}
	analyzer, _ := newTestAnalyzer(t, predictor)

	result, err := analyzer.AnalyzeURL(context.Background(), Request{URL: "https://google.com/"})
	if err != nil {
		t.Fatal(err)
	}

	if result.RiskLevel != "safe" {
		t.Errorf("RiskLevel = %q, want safe", result.RiskLevel)
	}
	if result.IsPhishing {
		t.Error("clean URL flagged as phishing")
	}
	if result.Recommendation != "allow" {
		t.Errorf("Recommendation = %q, want allow", result.Recommendation)
	}
	if result.Analysis.LookalikeDetected {
		t.Error("brand's own domain reported as lookalike")
	}
}

func TestAnalyzeFeedListedURL(t *testing.T) {
	target := "https://zqwvkrtpnm.com/verify-account"
	predictor := &stubPredictor{prediction: &ml.Prediction{
		MLPrediction: 0.9, Confidence: 0.8, ModelUsed: "primary",
	}}
	analyzer, _ := newTestAnalyzer(t, predictor, target)

	result, err := analyzer.AnalyzeURL(context.Background(), Request{URL: target})
	if err != nil {
		t.Fatal(err)
	}

	// ml 36 + heuristic 50*0.25 + feed 40*0.30 = 60.5
	if result.ThreatScore != 60 {
		t.Errorf("ThreatScore = %d, want 60", result.ThreatScore)
	}
	if !result.IsPhishing {
		t.Error("feed-listed URL not flagged")
	}
	if result.Analysis.ThreatIntelHits != 1 {
		t.Errorf("ThreatIntelHits = %d, want 1", result.Analysis.ThreatIntelHits)
	}

	found := false
	for _, reason := range result.Analysis.Reasons {
		if strings.Contains(reason.Factor, "phishing feed") {
			found = true
		}
	}
	if !found {
		t.Errorf("no feed reason in %+v", result.Analysis.Reasons)
	}
}

func TestAnalyzeSecondCallServedFromCache(t *testing.T) {
	target := "https://zqwvkrtpnm.com/verify-account"
	predictor := &stubPredictor{prediction: &ml.Prediction{
		MLPrediction: 0.9, Confidence: 0.8, ModelUsed: "primary",
	}}
	analyzer, fetches := newTestAnalyzer(t, predictor, target)

	ctx := context.Background()
	first, err := analyzer.AnalyzeURL(ctx, Request{URL: target})
	if err != nil {
		t.Fatal(err)
	}
	second, err := analyzer.AnalyzeURL(ctx, Request{URL: target})
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached result differs:\n%+v\n%+v", first, second)
	}
	if *fetches != 1 {
		t.Errorf("feed fetched %d times, want 1 (second call must hit the cache)", *fetches)
	}
}

func TestAnalyzePredictorFailureFoldsToDefaults(t *testing.T) {
	predictor := &stubPredictor{err: errors.New("model unavailable")}
	analyzer, _ := newTestAnalyzer(t, predictor)

	result, err := analyzer.AnalyzeURL(context.Background(), Request{URL: "https://google.com/"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Analysis.MLPrediction != 0 {
		t.Errorf("MLPrediction = %v, want 0 after predictor failure", result.Analysis.MLPrediction)
	}
	if result.RiskLevel != "safe" {
		t.Errorf("RiskLevel = %q, want safe", result.RiskLevel)
	}
}

func TestAnalyzePredictorPanicContained(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t, &stubPredictor{panics: true})

	result, err := analyzer.AnalyzeURL(context.Background(), Request{URL: "https://google.com/"})
	if err != nil {
		t.Fatal(err)
	}
	if result == nil {
		t.Fatal("panicking analyzer must not fail the request")
	}
}

func TestAnalyzeInvalidURLFails(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t, &stubPredictor{prediction: &ml.Prediction{}})

	if _, err := analyzer.AnalyzeURL(context.Background(), Request{URL: "not a url"}); err == nil {
		t.Error("expected error for URL without host")
	}
}

func TestAnalyzeWithPageContext(t *testing.T) {
	predictor := &stubPredictor{prediction: &ml.Prediction{
		MLPrediction: 0.2, Confidence: 0.5, ModelUsed: "fallback",
	}}
	analyzer, _ := newTestAnalyzer(t, predictor)

	result, err := analyzer.AnalyzeURL(context.Background(), Request{
		URL: "https://zqwvkrtpnm.com/",
		Page: &impersonation.PageContext{
			Title:     "PayPal Login - Verify Your Account",
			Text:      "Enter your PayPal account details to log in and send money securely.",
			CSSColors: []string{"#003087", "#009cde", "#ffffff"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !result.Analysis.BrandImpersonation {
		t.Fatal("page context did not trigger impersonation analysis")
	}
	if result.Analysis.ImpersonatedBrand != "paypal" {
		t.Errorf("ImpersonatedBrand = %q, want paypal", result.Analysis.ImpersonatedBrand)
	}
	if len(result.Analysis.Reasons) == 0 ||
		result.Analysis.Reasons[0].Source != "brand_impersonation" {
		t.Errorf("leading reason = %+v, want brand_impersonation", result.Analysis.Reasons)
	}
}

func TestDomainReputation(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t, &stubPredictor{prediction: &ml.Prediction{}},
		"https://bad.test")

	rep := analyzer.DomainReputation(context.Background(), "bad.test")
	if rep.ThreatScore != 40 {
		t.Errorf("ThreatScore = %d, want 40", rep.ThreatScore)
	}
	if rep.IsMalicious {
		t.Error("feed-only evidence (40) must stay below the malicious threshold")
	}
	if rep.Sources == nil || rep.Sources.OpenPhish == nil || !rep.Sources.OpenPhish.IsPhishing {
		t.Error("feed sub-record missing or not flagged")
	}

	clean := analyzer.DomainReputation(context.Background(), "harmless.test")
	if clean.ThreatScore != 0 || clean.IsMalicious {
		t.Errorf("clean domain = %d/%v, want 0/false", clean.ThreatScore, clean.IsMalicious)
	}
}

func TestDomainReputationCachedForRepeatLookups(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t, &stubPredictor{prediction: &ml.Prediction{}},
		"https://bad.test")

	ctx := context.Background()
	first := analyzer.DomainReputation(ctx, "bad.test")
	second := analyzer.DomainReputation(ctx, "bad.test")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeat lookup differs:\n%+v\n%+v", first, second)
	}
}
