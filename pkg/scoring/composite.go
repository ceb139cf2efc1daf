// Package scoring fuses the per-analyzer scores into the final verdict:
// weighted composite, risk level, override rules, confidence, and the
// ranked reason list.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/phishguard/phishguard/pkg/config"
	"github.com/phishguard/phishguard/pkg/heuristics"
	"github.com/phishguard/phishguard/pkg/impersonation"
	"github.com/phishguard/phishguard/pkg/lookalike"
	"github.com/phishguard/phishguard/pkg/ml"
	"github.com/phishguard/phishguard/pkg/threatintel"
)

// Reason is one ranked explanation entry in the verdict
type Reason struct {
	Factor   string `json:"factor"`
	Severity string `json:"severity"`
	Weight   int    `json:"weight"`
	Source   string `json:"source"`
}

// Analysis carries the per-source breakdown behind the verdict
type Analysis struct {
	MLPrediction            float64  `json:"ml_prediction"`
	MLContribution          float64  `json:"ml_contribution"`
	HeuristicScore          int      `json:"heuristic_score"`
	HeuristicContribution   float64  `json:"heuristic_contribution"`
	ThreatIntelScore        int      `json:"threat_intel_score"`
	ThreatIntelContribution float64  `json:"threat_intel_contribution"`
	ThreatIntelHits         int      `json:"threat_intel_hits"`
	LookalikeDetected       bool     `json:"lookalike_detected"`
	LookalikeScore          int      `json:"lookalike_score"`
	LookalikeContribution   float64  `json:"lookalike_contribution"`
	LookalikeBrand          string   `json:"lookalike_brand,omitempty"`
	BrandImpersonation      bool     `json:"brand_impersonation"`
	ImpersonatedBrand       string   `json:"impersonated_brand,omitempty"`
	Reasons                 []Reason `json:"reasons"`
	ModelUsed               string   `json:"model_used"`
	InferenceTimeMS         float64  `json:"inference_time_ms"`
}

// Result is the complete verdict returned to callers
type Result struct {
	ThreatScore    int      `json:"threat_score"`
	RiskLevel      string   `json:"risk_level"`
	IsPhishing     bool     `json:"is_phishing"`
	Confidence     float64  `json:"confidence"`
	Recommendation string   `json:"recommendation"`
	Analysis       Analysis `json:"analysis"`
	Timestamp      string   `json:"timestamp"`
}

// Scorer computes the weighted composite verdict
type Scorer struct {
	weightML          float64
	weightHeuristic   float64
	weightThreatIntel float64
	weightLookalike   float64

	thresholdSafe       int
	thresholdSuspicious int
	thresholdDangerous  int

	logger zerolog.Logger
	now    func() time.Time
}

// NewScorer creates a composite scorer from the configured weights and
// thresholds.
func NewScorer(cfg config.ScoringConfig, logger zerolog.Logger) *Scorer {
	return &Scorer{
		weightML:            cfg.Weights.ML,
		weightHeuristic:     cfg.Weights.Heuristic,
		weightThreatIntel:   cfg.Weights.ThreatIntel,
		weightLookalike:     cfg.Weights.Lookalike,
		thresholdSafe:       cfg.Thresholds.Safe,
		thresholdSuspicious: cfg.Thresholds.Suspicious,
		thresholdDangerous:  cfg.Thresholds.Dangerous,
		logger:              logger.With().Str("component", "scoring").Logger(),
		now:                 time.Now,
	}
}

// Fuse combines the analyzer outputs into one verdict. Any nil input is
// treated as that analyzer's zero contribution; imp may be nil when no
// page context was submitted.
func (s *Scorer) Fuse(prediction *ml.Prediction, heur *heuristics.Result, intel *threatintel.Result,
	look *lookalike.Result, imp *impersonation.Result) (*Result, error) {
	if prediction == nil {
		prediction = &ml.Prediction{ModelUsed: "fallback"}
	}
	if heur == nil {
		heur = &heuristics.Result{}
	}
	if intel == nil {
		intel = &threatintel.Result{}
	}
	if look == nil {
		look = &lookalike.Result{}
	}

	mlNormalized := prediction.MLPrediction * 100

	// Adaptive reweighting: a high-confidence lookalike shifts weight off
	// the model and onto the lookalike signal.
	weightML := s.weightML
	weightHeuristic := s.weightHeuristic
	weightThreatIntel := s.weightThreatIntel
	weightLookalike := s.weightLookalike
	if look.IsLookalike && look.LookalikeScore >= 90 {
		weightML = 0.20
		weightHeuristic = 0.25
		weightThreatIntel = 0.20
		weightLookalike = 0.35
	}

	composite := int(mlNormalized*weightML +
		float64(heur.Score)*weightHeuristic +
		float64(intel.ThreatIntelScore)*weightThreatIntel +
		float64(look.LookalikeScore)*weightLookalike)
	if composite < 0 {
		composite = 0
	}
	if composite > 100 {
		composite = 100
	}

	riskLevel := s.riskLevel(composite)
	isPhishing := composite >= s.thresholdSuspicious

	// Override: strong lookalike evidence outranks the weighted fusion.
	// The boost only ever raises the score.
	if look.IsLookalike &&
		((look.LookalikeScore >= 90 && heur.Score >= 60) ||
			(look.LookalikeScore >= 80 && heur.Score >= 50) ||
			(look.LookalikeScore >= 75 && look.HomoglyphDetected)) {
		isPhishing = true
		if boosted := s.thresholdSuspicious + 10; composite < boosted {
			composite = boosted
		}
		riskLevel = s.riskLevel(composite)
	}

	confidence := s.confidence(prediction.Confidence, intel.Hits, look.IsLookalike)
	reasons := s.generateReasons(composite, prediction.MLPrediction, heur, intel, look, imp)

	result := &Result{
		ThreatScore:    composite,
		RiskLevel:      riskLevel,
		IsPhishing:     isPhishing,
		Confidence:     confidence,
		Recommendation: recommendation(riskLevel),
		Analysis: Analysis{
			MLPrediction:            round(prediction.MLPrediction, 4),
			MLContribution:          round(mlNormalized*weightML, 2),
			HeuristicScore:          heur.Score,
			HeuristicContribution:   round(float64(heur.Score)*weightHeuristic, 2),
			ThreatIntelScore:        intel.ThreatIntelScore,
			ThreatIntelContribution: round(float64(intel.ThreatIntelScore)*weightThreatIntel, 2),
			ThreatIntelHits:         intel.Hits,
			LookalikeDetected:       look.IsLookalike,
			LookalikeScore:          look.LookalikeScore,
			LookalikeContribution:   round(float64(look.LookalikeScore)*weightLookalike, 2),
			LookalikeBrand:          look.MatchedBrand,
			BrandImpersonation:      imp != nil && imp.IsImpersonating,
			ImpersonatedBrand:       impersonatedBrand(imp),
			Reasons:                 reasons,
			ModelUsed:               prediction.ModelUsed,
			InferenceTimeMS:         prediction.InferenceTimeMS,
		},
		Timestamp: s.now().Format(time.RFC3339),
	}

	return result, nil
}

func (s *Scorer) riskLevel(score int) string {
	switch {
	case score <= s.thresholdSafe:
		return "safe"
	case score <= s.thresholdSuspicious:
		return "suspicious"
	case score <= s.thresholdDangerous:
		return "dangerous"
	default:
		return "critical"
	}
}

func (s *Scorer) confidence(mlConfidence float64, intelHits int, lookalikeDetected bool) float64 {
	confidence := mlConfidence * 0.6
	if intelHits > 0 {
		confidence += math.Min(float64(intelHits)*0.15, 0.3)
	}
	if lookalikeDetected {
		confidence += 0.1
	}
	return round(math.Min(confidence, 0.99), 2)
}

// generateReasons ranks explanations by how much each source moved the
// verdict. Sources contributing less than 5 points are dropped as noise.
func (s *Scorer) generateReasons(composite int, mlScore float64, heur *heuristics.Result,
	intel *threatintel.Result, look *lookalike.Result, imp *impersonation.Result) []Reason {
	reasons := []Reason{}

	type contribution struct {
		source string
		value  float64
	}
	contributions := []contribution{
		{"ml", mlScore * 100 * s.weightML},
		{"heuristic", float64(heur.Score) * s.weightHeuristic},
		{"threat_intel", float64(intel.ThreatIntelScore) * s.weightThreatIntel},
		{"lookalike", float64(look.LookalikeScore) * s.weightLookalike},
	}
	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].value > contributions[j].value
	})

	for _, c := range contributions {
		if c.value < 5 {
			continue
		}

		weightPercent := 0
		if composite > 0 {
			weightPercent = int(c.value / float64(composite) * 100)
		}
		severity := severityFromContribution(weightPercent)

		switch {
		case c.source == "threat_intel" && len(intel.Reasons) > 0:
			for _, text := range intel.Reasons[:minInt(3, len(intel.Reasons))] {
				reasonSeverity := "high"
				if strings.Contains(text, "phishing feed") {
					reasonSeverity = "critical"
				}
				reasons = append(reasons, Reason{
					Factor:   text,
					Severity: reasonSeverity,
					Weight:   weightPercent,
					Source:   "threat_intelligence",
				})
			}

		case c.source == "lookalike" && look.IsLookalike:
			brand := look.MatchedBrand
			if brand == "" {
				brand = "unknown brand"
			}
			text := fmt.Sprintf("Lookalike domain detected: similar to %s", brand)
			if look.HomoglyphDetails != "" {
				text = fmt.Sprintf("Lookalike domain: %s (impersonating %s)",
					look.HomoglyphDetails, brand)
			}
			reasons = append(reasons, Reason{
				Factor:   text,
				Severity: "critical",
				Weight:   weightPercent,
				Source:   "lookalike_detection",
			})

		case c.source == "heuristic" && len(heur.MatchedRules) > 0:
			for _, rule := range heur.MatchedRules[:minInt(3, len(heur.MatchedRules))] {
				ruleWeight := 0
				if heur.Score > 0 {
					ruleWeight = int(float64(rule.Score) / float64(heur.Score) * float64(weightPercent))
				}
				reasons = append(reasons, Reason{
					Factor:   rule.Explanation,
					Severity: rule.Severity,
					Weight:   ruleWeight,
					Source:   "heuristic_analysis",
				})
			}

		case c.source == "ml":
			reasons = append(reasons, Reason{
				Factor:   fmt.Sprintf("ML model predicts %d%% probability of phishing", int(mlScore*100)),
				Severity: severity,
				Weight:   weightPercent,
				Source:   "machine_learning",
			})
		}
	}

	if imp != nil && imp.IsImpersonating {
		brand := imp.SuspectedBrand
		if brand == "" {
			brand = "unknown brand"
		}
		reasons = append([]Reason{{
			Factor:   fmt.Sprintf("Page is impersonating %s", titleCase(brand)),
			Severity: "critical",
			Weight:   imp.ImpersonationScore,
			Source:   "brand_impersonation",
		}}, reasons...)
	}

	sort.SliceStable(reasons, func(i, j int) bool {
		return reasons[i].Weight > reasons[j].Weight
	})
	if len(reasons) > 10 {
		reasons = reasons[:10]
	}
	return reasons
}

func severityFromContribution(weightPercent int) string {
	switch {
	case weightPercent >= 30:
		return "critical"
	case weightPercent >= 20:
		return "high"
	case weightPercent >= 10:
		return "medium"
	default:
		return "low"
	}
}

func recommendation(riskLevel string) string {
	switch riskLevel {
	case "safe":
		return "allow"
	case "suspicious":
		return "warn"
	case "dangerous", "critical":
		return "block"
	default:
		return "warn"
	}
}

func impersonatedBrand(imp *impersonation.Result) string {
	if imp == nil || !imp.IsImpersonating {
		return ""
	}
	return imp.SuspectedBrand
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
