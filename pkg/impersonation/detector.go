// Package impersonation detects pages that present a trusted brand's
// identity (keywords, title, color palette) from a domain the brand does
// not own.
package impersonation

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/phishguard/phishguard/pkg/brands"
)

// scoreThreshold is the minimum total for a brand to be reported
const scoreThreshold = 40

// PageContext is the optional page content supplied with an analysis
// request.
type PageContext struct {
	Title     string
	Text      string
	CSSColors []string
}

// Empty reports whether no page content was supplied
func (p *PageContext) Empty() bool {
	return p == nil || (p.Title == "" && p.Text == "")
}

// Result is the impersonation verdict for one page
type Result struct {
	IsImpersonating    bool     `json:"is_impersonating"`
	ImpersonationScore int      `json:"impersonation_score"`
	SuspectedBrand     string   `json:"suspected_brand,omitempty"`
	Confidence         float64  `json:"confidence"`
	Indicators         []string `json:"indicators"`
	BrandInTitle       bool     `json:"brand_in_title"`
}

// Detector scans page content against the brand signature set
type Detector struct {
	signatures []brands.Signature
}

// NewDetector creates a detector with the built-in signatures
func NewDetector() *Detector {
	return &Detector{signatures: brands.Signatures()}
}

// Detect scores the page against every brand signature and reports the
// best-scoring brand at or above the threshold. domainLabel and domain
// identify the page's own site; a brand whose label appears in the domain
// label is treated as legitimate and skipped.
func (d *Detector) Detect(rawURL, domainLabel, domain string, page *PageContext) *Result {
	result := &Result{Indicators: []string{}}
	if page.Empty() {
		return result
	}

	combined := strings.ToLower(strings.TrimSpace(
		page.Title + " " + page.Text + " " + rawURL))
	titleLower := strings.ToLower(page.Title)

	normalizedColors := make(map[string]bool, len(page.CSSColors))
	for _, c := range page.CSSColors {
		normalizedColors[strings.ToUpper(c)] = true
	}

	maxScore := 0
	var suspected string
	var indicators []string

	for _, sig := range d.signatures {
		if strings.Contains(domainLabel, sig.Brand) {
			// The brand's own site
			continue
		}

		score := 0
		var hits []string

		keywordMatches := 0
		for _, kw := range sig.Keywords {
			if strings.Contains(combined, kw) {
				keywordMatches++
				hits = append(hits, fmt.Sprintf("Contains '%s' keyword", kw))
			}
		}
		if keywordMatches >= 2 {
			score += 30
		}

		patternMatches := 0
		for _, p := range sig.Patterns {
			if p.MatchString(combined) {
				patternMatches++
				hits = append(hits, fmt.Sprintf("Matches %s pattern", sig.Brand))
			}
		}
		if patternMatches >= 1 {
			score += 25
		}

		if len(normalizedColors) > 0 {
			colorMatches := 0
			for _, c := range sig.Colors {
				if normalizedColors[strings.ToUpper(c)] {
					colorMatches++
				}
			}
			if colorMatches >= 2 {
				score += 20
				hits = append(hits, fmt.Sprintf("Uses %s's color scheme (%d colors matched)", sig.Brand, colorMatches))
			}
		}

		if titleLower != "" {
			for _, kw := range firstN(sig.Keywords, 3) {
				if strings.Contains(titleLower, kw) {
					score += 15
					hits = append(hits, fmt.Sprintf("Page title references %s", sig.Brand))
					break
				}
			}
		}

		if dist := levenshtein.ComputeDistance(domainLabel, sig.Brand); dist > 3 {
			score += 10
			hits = append(hits, fmt.Sprintf("Domain doesn't match %s (distance: %d)", sig.Brand, dist))
		}

		if score > maxScore && score >= scoreThreshold {
			maxScore = score
			suspected = sig.Brand
			indicators = hits
		}
	}

	if maxScore > 100 {
		maxScore = 100
	}
	result.ImpersonationScore = maxScore
	result.Confidence = round2(minFloat(float64(maxScore)/100, 0.95))
	result.Indicators = firstN(indicators, 5)
	result.IsImpersonating = suspected != "" &&
		maxScore >= scoreThreshold &&
		!strings.Contains(domain, suspected)
	if result.IsImpersonating || suspected != "" {
		result.SuspectedBrand = suspected
	}
	result.BrandInTitle = suspected != "" && titleLower != "" && strings.Contains(titleLower, suspected)

	return result
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
