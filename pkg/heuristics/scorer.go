package heuristics

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/phishguard/phishguard/pkg/features"
)

// maxScore caps the heuristic total; heavily malicious URLs saturate
const maxScore = 100

// MatchedRule records one rule hit
type MatchedRule struct {
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Severity    string `json:"severity"`
	Explanation string `json:"explanation"`
}

// Result is the outcome of one scoring pass
type Result struct {
	Score        int           `json:"score"`
	MatchedRules []MatchedRule `json:"matched_rules"`
	RuleCount    int           `json:"rule_count"`
}

// Scorer evaluates the rule table against a feature record
type Scorer struct {
	rules  []Rule
	logger zerolog.Logger
}

// NewScorer creates a scorer with the built-in rule table
func NewScorer(logger zerolog.Logger) *Scorer {
	return NewScorerWithRules(DefaultRules(), logger)
}

// NewScorerWithRules creates a scorer over a custom rule table
func NewScorerWithRules(rules []Rule, logger zerolog.Logger) *Scorer {
	return &Scorer{
		rules:  rules,
		logger: logger.With().Str("component", "heuristics").Logger(),
	}
}

// Score evaluates every rule independently and returns the clamped total
// with the matched rules sorted by weight, heaviest first. A rule that
// references an unknown feature is skipped; the rest proceed.
func (s *Scorer) Score(f *features.Features) *Result {
	result := &Result{MatchedRules: []MatchedRule{}}
	total := 0

	for _, rule := range s.rules {
		matched, err := evaluate(rule, f)
		if err != nil {
			s.logger.Error().Err(err).Str("rule", rule.Name).Msg("rule evaluation failed")
			continue
		}
		if !matched {
			continue
		}

		explanation := rule.Explain
		if rule.ExplainFeature != "" {
			if v, ok := f.Value(rule.ExplainFeature); ok {
				explanation = fmt.Sprintf(rule.Explain, int(v))
			}
		}

		result.MatchedRules = append(result.MatchedRules, MatchedRule{
			Name:        rule.Name,
			Score:       rule.Score,
			Severity:    rule.Severity,
			Explanation: explanation,
		})
		total += rule.Score
	}

	if total > maxScore {
		total = maxScore
	}
	result.Score = total
	result.RuleCount = len(result.MatchedRules)

	// Heaviest rules first; ties keep table order
	sort.SliceStable(result.MatchedRules, func(i, j int) bool {
		return result.MatchedRules[i].Score > result.MatchedRules[j].Score
	})

	return result
}

func evaluate(rule Rule, f *features.Features) (bool, error) {
	for _, check := range rule.Checks {
		value, ok := f.Value(check.Feature)
		if !ok {
			return false, fmt.Errorf("unknown feature %q", check.Feature)
		}

		var pass bool
		switch check.Op {
		case GreaterThan:
			pass = value > check.Operand
		case AtLeast:
			pass = value >= check.Operand
		case Equals:
			pass = value == check.Operand
		case InRange:
			pass = value >= check.Operand && value < check.Operand2
		default:
			return false, fmt.Errorf("unknown comparator %q", check.Op)
		}
		if !pass {
			return false, nil
		}
	}
	return true, nil
}
