package features

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"

	"github.com/phishguard/phishguard/pkg/config"
)

// suspiciousTLDs are TLDs disproportionately used for phishing
var suspiciousTLDs = map[string]bool{
	"tk": true, "ml": true, "ga": true, "cf": true, "gq": true,
	"xyz": true, "top": true, "work": true, "click": true, "link": true,
	"stream": true, "download": true, "loan": true, "win": true,
}

// suspiciousKeywords are terms common in credential-harvesting URLs
var suspiciousKeywords = []string{
	"verify", "account", "update", "secure", "banking", "confirm",
	"login", "signin", "password", "urgent", "suspended", "locked",
	"validate", "restore", "limited", "unusual", "activity",
}

// Strict dotted quad, each octet 0-255
var ipv4Pattern = regexp.MustCompile(
	`(([0-9]|[1-9][0-9]|1[0-9]{2}|2[0-4][0-9]|25[0-5])\.){3}` +
		`([0-9]|[1-9][0-9]|1[0-9]{2}|2[0-4][0-9]|25[0-5])`)

// Extractor computes the feature record for a URL. Lexical features are
// pure string functions; the TLS and WHOIS probes do network I/O and
// degrade to sentinel values on any failure.
type Extractor struct {
	probes config.ProbesConfig
	logger zerolog.Logger
}

// NewExtractor creates a feature extractor
func NewExtractor(probes config.ProbesConfig, logger zerolog.Logger) *Extractor {
	return &Extractor{
		probes: probes,
		logger: logger.With().Str("component", "features").Logger(),
	}
}

// Extract computes the full feature record, including network probes when
// enabled. Probe failures never surface as errors.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Features, error) {
	f, err := ExtractLexical(rawURL)
	if err != nil {
		return nil, err
	}

	if !e.probes.Enabled {
		return f, nil
	}

	// Both probes are best-effort and independent of each other
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		e.probeTLS(ctx, f)
	}()
	go func() {
		defer wg.Done()
		e.probeWhois(ctx, f)
	}()
	wg.Wait()

	return f, nil
}

// ExtractLexical computes the probe-free features. Probe fields are left at
// their sentinel values.
func ExtractLexical(rawURL string) (*Features, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("url has no host: %s", rawURL)
	}

	host := strings.ToLower(parsed.Hostname())
	label, suffix, subdomain := splitDomain(host)

	f := &Features{
		URL:       rawURL,
		Protocol:  parsed.Scheme,
		Domain:    joinDomain(label, suffix),
		Subdomain: subdomain,
		Path:      parsed.Path,
		Query:     parsed.RawQuery,

		URLLength:       len(rawURL),
		DomainLength:    len(label),
		PathLength:      len(parsed.Path),
		SubdomainLength: len(subdomain),

		SubdomainCount:  countLabels(subdomain),
		PathDepth:       pathDepth(parsed.Path),
		QueryParamCount: len(parsed.Query()),

		HyphenCount:     strings.Count(rawURL, "-"),
		UnderscoreCount: strings.Count(rawURL, "_"),
		DotCount:        strings.Count(rawURL, "."),
		SlashCount:      strings.Count(rawURL, "/"),

		URLEntropy:    Entropy(rawURL),
		DomainEntropy: Entropy(label),

		DomainLabel: label,

		// Sentinels until the probes run
		SSLCertificateAge: -1,
		DomainAgeDays:     -1,
	}

	for _, c := range rawURL {
		switch {
		case unicode.IsDigit(c):
			f.DigitCount++
		case unicode.IsLetter(c):
			f.LetterCount++
		}
		if !unicode.IsDigit(c) && !unicode.IsLetter(c) {
			f.SpecialCharCount++
		}
	}
	f.DigitRatio = ratio(f.DigitCount, len(rawURL))
	f.SpecialCharRatio = ratio(f.SpecialCharCount, len(rawURL))

	if strings.Contains(rawURL, "@") {
		f.AtSymbol = 1
	}
	if ipv4Pattern.MatchString(rawURL) {
		f.HasIPAddress = 1
	}
	if suspiciousTLDs[suffix] {
		f.HasSuspiciousTLD = 1
	}
	lower := strings.ToLower(rawURL)
	for _, kw := range suspiciousKeywords {
		if strings.Contains(lower, kw) {
			f.SuspiciousKeywordCount++
		}
	}
	if strings.Count(rawURL, "//") > 1 {
		f.HasDoubleSlashRedirecting = 1
	}
	if strings.Contains(label, "-") {
		f.PrefixSuffixInDomain = 1
	}

	if parsed.Scheme == "https" {
		f.IsHTTPS = 1
	}
	f.Port = effectivePort(parsed)
	if p := parsed.Port(); p != "" {
		if f.Port != 80 && f.Port != 443 && f.Port != 8080 {
			f.UsesNonStandardPort = 1
		}
	}

	return f, nil
}

// splitDomain separates a hostname into registrable label, public suffix,
// and subdomain. IP literals have no suffix.
func splitDomain(host string) (label, suffix, subdomain string) {
	if ipv4Pattern.MatchString(host) {
		return host, "", ""
	}

	suffix, _ = publicsuffix.PublicSuffix(host)
	if suffix == "" || suffix == host {
		return host, "", ""
	}

	rest := strings.TrimSuffix(strings.TrimSuffix(host, suffix), ".")
	if rest == "" {
		return host, "", ""
	}

	if i := strings.LastIndex(rest, "."); i >= 0 {
		return rest[i+1:], suffix, rest[:i]
	}
	return rest, suffix, ""
}

func joinDomain(label, suffix string) string {
	if suffix == "" {
		return label
	}
	return label + "." + suffix
}

func countLabels(s string) int {
	if s == "" {
		return 0
	}
	return len(strings.Split(s, "."))
}

func pathDepth(path string) int {
	depth := 0
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			depth++
		}
	}
	return depth
}

func effectivePort(u *url.URL) int {
	if p := u.Port(); p != "" {
		port := 0
		fmt.Sscanf(p, "%d", &port)
		return port
	}
	if u.Scheme == "https" {
		return 443
	}
	return 80
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return round4(float64(n) / float64(d))
}

// Entropy returns the base-2 Shannon entropy of s, rounded to 4 decimals
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	total := 0
	for _, c := range s {
		freq[c]++
		total++
	}
	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return round4(entropy)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
