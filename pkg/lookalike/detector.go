// Package lookalike flags domains that imitate known brands through
// typosquatting, embedded brand names, homoglyph substitution, or
// mixed-script tricks.
package lookalike

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/phishguard/phishguard/pkg/brands"
)

// similarityThreshold is the edit-distance ratio above which a domain
// counts as a lookalike
const similarityThreshold = 0.85

// homoglyphs maps each Latin letter to characters commonly substituted
// for it in spoofed domains (Cyrillic, Greek, digits, punctuation).
var homoglyphs = map[rune][]rune{
	'a': {'а', 'ạ', 'ă', 'ą'},
	'e': {'е', 'ė', 'ę', 'ế'},
	'i': {'і', 'ı', 'l', '1', '!'},
	'o': {'о', 'ο', '0', 'ö', 'ø'},
	'p': {'р', 'ρ'},
	'c': {'с', 'ϲ'},
	'y': {'у', 'ỳ', 'ý'},
	'x': {'х', 'χ'},
	'b': {'ь', 'ḃ'},
	'h': {'һ', 'ḣ'},
	'n': {'п', 'ո'},
	'm': {'т', 'ṁ'},
	's': {'ѕ', 'ṡ'},
	'g': {'ɡ', 'ġ'},
	'l': {'1', 'I', 'і', '|'},
}

// Result is the lookalike verdict for one domain
type Result struct {
	IsLookalike         bool    `json:"is_lookalike"`
	LookalikeScore      int     `json:"lookalike_score"`
	MatchedBrand        string  `json:"matched_brand,omitempty"`
	BrandCategory       string  `json:"brand_category,omitempty"`
	SimilarityScore     float64 `json:"similarity_score"`
	LevenshteinDistance int     `json:"levenshtein_distance"`
	HomoglyphDetected   bool    `json:"homoglyph_detected"`
	HomoglyphDetails    string  `json:"homoglyph_details,omitempty"`
}

// Detector compares domain labels against the brand index
type Detector struct {
	index *brands.Index
}

// NewDetector creates a detector over the given brand index
func NewDetector(index *brands.Index) *Detector {
	return &Detector{index: index}
}

// Detect checks whether the registrable-domain label imitates any brand.
// The label must already be lowercased.
func (d *Detector) Detect(label string) *Result {
	result := &Result{LevenshteinDistance: 999}
	if label == "" {
		return result
	}

	var best brands.Entry
	bestSimilarity := 0.0
	bestDistance := 999

	for _, entry := range d.index.Entries() {
		var similarity float64
		var distance int

		if strings.Contains(label, entry.Label) && entry.Label != label {
			// Brand embedded in a longer label, e.g. paypal-secure-verify
			similarity = 0.95
			distance = len(label) - len(entry.Label)
		} else {
			distance = levenshtein.ComputeDistance(label, entry.Label)
			similarity = similarityRatio(label, entry.Label, distance)
		}

		if similarity > bestSimilarity {
			bestSimilarity = similarity
			bestDistance = distance
			best = entry
		}
	}

	homoglyphHit, homoglyphDetails := checkHomoglyphs(label, best.Label)

	result.SimilarityScore = round4(bestSimilarity)
	result.LevenshteinDistance = bestDistance
	result.HomoglyphDetected = homoglyphHit
	result.HomoglyphDetails = homoglyphDetails

	isLookalike := (bestSimilarity >= similarityThreshold && best.Label != "" && label != best.Label) ||
		homoglyphHit
	if !isLookalike {
		return result
	}

	result.IsLookalike = true
	result.MatchedBrand = best.Domain
	result.BrandCategory = best.Category

	score := int(bestSimilarity * 100)
	if homoglyphHit {
		// Homoglyph substitution is the more deliberate attack
		score += 15
	}
	if bestSimilarity > 0.95 {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	result.LookalikeScore = score

	return result
}

// checkHomoglyphs flags confusable-character substitutions between the
// candidate label and the best-matching brand label, and mixed-script
// labels regardless of brand.
func checkHomoglyphs(label, brandLabel string) (bool, string) {
	if brandLabel != "" {
		labelRunes := []rune(label)
		brandRunes := []rune(brandLabel)
		n := len(labelRunes)
		if len(brandRunes) < n {
			n = len(brandRunes)
		}
		for i := 0; i < n; i++ {
			cd, cb := labelRunes[i], brandRunes[i]
			if cd == cb {
				continue
			}
			if confusable(cb, cd) || confusable(cd, cb) {
				return true, fmt.Sprintf("Uses %q instead of %q at position %d", cd, cb, i+1)
			}
		}
	}

	scripts := labelScripts(label)
	if len(scripts) > 1 {
		return true, "Mixed scripts detected: " + strings.Join(scripts, ", ")
	}

	return false, ""
}

func confusable(base, candidate rune) bool {
	for _, c := range homoglyphs[base] {
		if c == candidate {
			return true
		}
	}
	return false
}

// labelScripts lists which of Latin, Cyrillic, Greek appear in the label
func labelScripts(label string) []string {
	var latin, cyrillic, greek bool
	for _, c := range label {
		switch {
		case unicode.Is(unicode.Cyrillic, c):
			cyrillic = true
		case unicode.Is(unicode.Greek, c):
			greek = true
		case unicode.IsLetter(c):
			latin = true
		}
	}
	var scripts []string
	if latin {
		scripts = append(scripts, "latin")
	}
	if cyrillic {
		scripts = append(scripts, "cyrillic")
	}
	if greek {
		scripts = append(scripts, "greek")
	}
	return scripts
}

func similarityRatio(a, b string, distance int) float64 {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	return float64(maxLen-distance) / float64(maxLen)
}

func round4(v float64) float64 {
	return float64(int(v*10000+0.5)) / 10000
}
