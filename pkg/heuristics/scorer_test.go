package heuristics

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/phishguard/phishguard/pkg/features"
)

func cleanFeatures() *features.Features {
	return &features.Features{
		IsHTTPS:           1,
		HasValidSSL:       1,
		SSLCertificateAge: 400,
		SSLIssuerTrusted:  1,
		DomainAgeDays:     5000,
	}
}

func TestScoreCleanURL(t *testing.T) {
	s := NewScorer(zerolog.Nop())
	result := s.Score(cleanFeatures())
	if result.Score != 0 {
		t.Errorf("Score = %d, want 0", result.Score)
	}
	if result.RuleCount != 0 {
		t.Errorf("RuleCount = %d, want 0", result.RuleCount)
	}
}

func TestScoreIPHost(t *testing.T) {
	f := &features.Features{
		HasIPAddress:           1,
		UsesNonStandardPort:    1,
		SuspiciousKeywordCount: 2,
		SSLCertificateAge:      -1,
		DomainAgeDays:          -1,
	}

	s := NewScorer(zerolog.Nop())
	result := s.Score(f)

	// IP (30) + keywords (25) + port (12) + no HTTPS (10)
	if result.Score != 77 {
		t.Errorf("Score = %d, want 77", result.Score)
	}
	if result.RuleCount != 4 {
		t.Errorf("RuleCount = %d, want 4", result.RuleCount)
	}
	if result.MatchedRules[0].Name != "IP address instead of domain" {
		t.Errorf("heaviest rule = %q", result.MatchedRules[0].Name)
	}
}

func TestScoreClampsAt100(t *testing.T) {
	f := &features.Features{
		URLLength:                 200,
		DomainLength:              40,
		SubdomainCount:            4,
		PathDepth:                 8,
		DigitRatio:                0.5,
		SpecialCharRatio:          0.5,
		HyphenCount:               6,
		URLEntropy:                5.0,
		DomainEntropy:             4.5,
		HasIPAddress:              1,
		HasSuspiciousTLD:          1,
		SuspiciousKeywordCount:    5,
		AtSymbol:                  1,
		HasDoubleSlashRedirecting: 1,
		PrefixSuffixInDomain:      1,
		UsesNonStandardPort:       1,
		SSLCertificateAge:         -1,
		DomainAgeDays:             10,
		DomainRegisteredRecently:  1,
	}

	s := NewScorer(zerolog.Nop())
	result := s.Score(f)
	if result.Score != 100 {
		t.Errorf("Score = %d, want 100", result.Score)
	}
}

func TestMatchedRulesSortedByWeight(t *testing.T) {
	f := &features.Features{
		HasIPAddress:      1,
		HasSuspiciousTLD:  1,
		SSLCertificateAge: -1,
		DomainAgeDays:     -1,
	}

	s := NewScorer(zerolog.Nop())
	result := s.Score(f)
	for i := 1; i < len(result.MatchedRules); i++ {
		if result.MatchedRules[i].Score > result.MatchedRules[i-1].Score {
			t.Fatalf("matched rules not sorted by weight: %v", result.MatchedRules)
		}
	}
}

func TestKeywordExplanationTemplated(t *testing.T) {
	f := cleanFeatures()
	f.SuspiciousKeywordCount = 4

	s := NewScorer(zerolog.Nop())
	result := s.Score(f)
	if result.RuleCount != 1 {
		t.Fatalf("RuleCount = %d, want 1", result.RuleCount)
	}
	if !strings.Contains(result.MatchedRules[0].Explanation, "4 phishing-related keywords") {
		t.Errorf("explanation = %q", result.MatchedRules[0].Explanation)
	}
}

func TestUnknownFeatureRuleSkipped(t *testing.T) {
	rules := []Rule{
		{
			Name:     "Broken rule",
			Checks:   []Check{{Feature: "no_such_feature", Op: Equals, Operand: 1}},
			Score:    50,
			Severity: "high",
			Explain:  "never fires",
		},
		{
			Name:     "Working rule",
			Checks:   []Check{{Feature: "has_ip_address", Op: Equals, Operand: 1}},
			Score:    30,
			Severity: "critical",
			Explain:  "fires",
		},
	}

	f := cleanFeatures()
	f.HasIPAddress = 1

	s := NewScorerWithRules(rules, zerolog.Nop())
	result := s.Score(f)
	if result.Score != 30 {
		t.Errorf("Score = %d, want 30 (broken rule skipped)", result.Score)
	}
}
