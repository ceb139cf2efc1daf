// Package heuristics scores URLs against a fixed table of rules over the
// extracted feature record. Rules are plain data interpreted by a single
// evaluator; each rule carries its own weight, severity, and explanation.
package heuristics

// Comparator selects how a check compares a feature value to its operands
type Comparator string

const (
	// GreaterThan passes when value > Operand
	GreaterThan Comparator = "gt"
	// AtLeast passes when value >= Operand
	AtLeast Comparator = "ge"
	// Equals passes when value == Operand
	Equals Comparator = "eq"
	// InRange passes when Operand <= value < Operand2
	InRange Comparator = "range"
)

// Check is one feature comparison. All checks of a rule must pass for the
// rule to match.
type Check struct {
	Feature  string
	Op       Comparator
	Operand  float64
	Operand2 float64 // upper bound, InRange only
}

// Rule is one scoring rule
type Rule struct {
	Name     string
	Checks   []Check
	Score    int
	Severity string
	Explain  string
	// ExplainFeature, when set, names a feature whose integer value is
	// substituted for %d in Explain.
	ExplainFeature string
}

// DefaultRules returns the built-in rule table
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "Extremely long URL",
			Checks:   []Check{{Feature: "url_length", Op: GreaterThan, Operand: 75}},
			Score:    15,
			Severity: "medium",
			Explain:  "URL length exceeds 75 characters (common in phishing)",
		},
		{
			Name:     "Very long domain",
			Checks:   []Check{{Feature: "domain_length", Op: GreaterThan, Operand: 30}},
			Score:    10,
			Severity: "low",
			Explain:  "Domain name is unusually long",
		},
		{
			Name:     "Multiple subdomains",
			Checks:   []Check{{Feature: "subdomain_count", Op: AtLeast, Operand: 3}},
			Score:    20,
			Severity: "high",
			Explain:  "Contains 3+ subdomains (obfuscation technique)",
		},
		{
			Name:     "Deep path structure",
			Checks:   []Check{{Feature: "path_depth", Op: GreaterThan, Operand: 5}},
			Score:    12,
			Severity: "medium",
			Explain:  "Path depth exceeds 5 levels (suspicious structure)",
		},
		{
			Name:     "Many query parameters",
			Checks:   []Check{{Feature: "query_param_count", Op: GreaterThan, Operand: 10}},
			Score:    8,
			Severity: "low",
			Explain:  "Contains excessive query parameters",
		},
		{
			Name:     "High digit ratio",
			Checks:   []Check{{Feature: "digit_ratio", Op: GreaterThan, Operand: 0.2}},
			Score:    15,
			Severity: "medium",
			Explain:  "Unusually high number of digits in URL",
		},
		{
			Name:     "High special character ratio",
			Checks:   []Check{{Feature: "special_char_ratio", Op: GreaterThan, Operand: 0.3}},
			Score:    12,
			Severity: "medium",
			Explain:  "Excessive special characters detected",
		},
		{
			Name:     "Multiple hyphens in domain",
			Checks:   []Check{{Feature: "hyphen_count", Op: GreaterThan, Operand: 3}},
			Score:    15,
			Severity: "medium",
			Explain:  "Domain contains multiple hyphens (typosquatting indicator)",
		},
		{
			Name:     "High URL entropy",
			Checks:   []Check{{Feature: "url_entropy", Op: GreaterThan, Operand: 4.5}},
			Score:    18,
			Severity: "high",
			Explain:  "High entropy suggests randomly generated or obfuscated URL",
		},
		{
			Name:     "High domain entropy",
			Checks:   []Check{{Feature: "domain_entropy", Op: GreaterThan, Operand: 4.0}},
			Score:    15,
			Severity: "medium",
			Explain:  "Domain has high entropy (possibly DGA-generated)",
		},
		{
			Name:     "IP address instead of domain",
			Checks:   []Check{{Feature: "has_ip_address", Op: Equals, Operand: 1}},
			Score:    30,
			Severity: "critical",
			Explain:  "Uses IP address instead of domain name",
		},
		{
			Name:     "Suspicious TLD",
			Checks:   []Check{{Feature: "has_suspicious_tld", Op: Equals, Operand: 1}},
			Score:    20,
			Severity: "high",
			Explain:  "Uses commonly abused TLD (.tk, .ml, .xyz, etc.)",
		},
		{
			Name:           "Multiple suspicious keywords",
			Checks:         []Check{{Feature: "suspicious_keyword_count", Op: AtLeast, Operand: 2}},
			Score:          25,
			Severity:       "high",
			Explain:        "Contains %d phishing-related keywords",
			ExplainFeature: "suspicious_keyword_count",
		},
		{
			Name:     "At symbol in URL",
			Checks:   []Check{{Feature: "at_symbol", Op: Equals, Operand: 1}},
			Score:    20,
			Severity: "high",
			Explain:  "@ symbol used for URL manipulation",
		},
		{
			Name:     "Double slash redirecting",
			Checks:   []Check{{Feature: "has_double_slash_redirecting", Op: Equals, Operand: 1}},
			Score:    18,
			Severity: "medium",
			Explain:  "Multiple // detected (redirect obfuscation)",
		},
		{
			Name:     "Prefix/suffix in domain",
			Checks:   []Check{{Feature: "prefix_suffix_in_domain", Op: Equals, Operand: 1}},
			Score:    15,
			Severity: "medium",
			Explain:  "Domain contains hyphens (brand imitation technique)",
		},
		{
			Name:     "Non-standard port",
			Checks:   []Check{{Feature: "uses_non_standard_port", Op: Equals, Operand: 1}},
			Score:    12,
			Severity: "medium",
			Explain:  "Uses non-standard port number",
		},
		{
			Name:     "No HTTPS",
			Checks:   []Check{{Feature: "is_https", Op: Equals, Operand: 0}},
			Score:    10,
			Severity: "low",
			Explain:  "Not using secure HTTPS protocol",
		},
		{
			Name: "Invalid or missing SSL",
			Checks: []Check{
				{Feature: "has_valid_ssl", Op: Equals, Operand: 0},
				{Feature: "is_https", Op: Equals, Operand: 1},
			},
			Score:    25,
			Severity: "high",
			Explain:  "HTTPS but invalid/missing SSL certificate",
		},
		{
			Name:     "Very new SSL certificate",
			Checks:   []Check{{Feature: "ssl_certificate_age_days", Op: InRange, Operand: 0, Operand2: 30}},
			Score:    15,
			Severity: "medium",
			Explain:  "SSL certificate issued less than 30 days ago",
		},
		{
			Name:     "Recently registered domain",
			Checks:   []Check{{Feature: "domain_registered_recently", Op: Equals, Operand: 1}},
			Score:    20,
			Severity: "high",
			Explain:  "Domain registered less than 6 months ago",
		},
		{
			Name:     "Very new domain",
			Checks:   []Check{{Feature: "domain_age_days", Op: InRange, Operand: 0, Operand2: 30}},
			Score:    30,
			Severity: "critical",
			Explain:  "Domain registered less than 30 days ago",
		},
	}
}
