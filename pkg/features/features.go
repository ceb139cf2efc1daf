// Package features extracts the fixed URL feature set consumed by the
// heuristic scorer and the ML collaborator.
package features

// Features is the typed record of everything we can derive from a URL
// without fetching the page. Numeric fields form the model input vector;
// see Vector and Names for the stable ordering.
type Features struct {
	URL       string `json:"url"`
	Protocol  string `json:"protocol"`
	Domain    string `json:"domain"` // registrable domain, e.g. "paypal.com"
	Subdomain string `json:"subdomain"`
	Path      string `json:"path"`
	Query     string `json:"query"`

	URLLength       int `json:"url_length"`
	DomainLength    int `json:"domain_length"`
	PathLength      int `json:"path_length"`
	SubdomainLength int `json:"subdomain_length"`

	SubdomainCount  int `json:"subdomain_count"`
	PathDepth       int `json:"path_depth"`
	QueryParamCount int `json:"query_param_count"`

	DigitCount       int `json:"digit_count"`
	LetterCount      int `json:"letter_count"`
	SpecialCharCount int `json:"special_char_count"`
	HyphenCount      int `json:"hyphen_count"`
	UnderscoreCount  int `json:"underscore_count"`
	DotCount         int `json:"dot_count"`
	SlashCount       int `json:"slash_count"`
	AtSymbol         int `json:"at_symbol"`

	DigitRatio       float64 `json:"digit_ratio"`
	SpecialCharRatio float64 `json:"special_char_ratio"`

	URLEntropy    float64 `json:"url_entropy"`
	DomainEntropy float64 `json:"domain_entropy"`

	HasIPAddress              int `json:"has_ip_address"`
	HasSuspiciousTLD          int `json:"has_suspicious_tld"`
	SuspiciousKeywordCount    int `json:"suspicious_keyword_count"`
	HasDoubleSlashRedirecting int `json:"has_double_slash_redirecting"`
	PrefixSuffixInDomain      int `json:"prefix_suffix_in_domain"`

	UsesNonStandardPort int `json:"uses_non_standard_port"`
	Port                int `json:"port"`
	IsHTTPS             int `json:"is_https"`

	// TLS probe results. Sentinels when the probe fails or is skipped.
	HasValidSSL       int `json:"has_valid_ssl"`
	SSLCertificateAge int `json:"ssl_certificate_age_days"` // -1 when unknown
	SSLIssuerTrusted  int `json:"ssl_issuer_trusted"`

	// WHOIS probe results. Sentinels when the probe fails or is skipped.
	DomainAgeDays            int `json:"domain_age_days"` // -1 when unknown
	DomainRegisteredRecently int `json:"domain_registered_recently"`

	// DomainLabel is the registrable label without its suffix, used by the
	// lookalike and impersonation detectors. Not part of the model vector.
	DomainLabel string `json:"-"`
}

// featureNames lists the numeric features in vector order. The order is
// frozen; the model coefficients are indexed against it.
var featureNames = []string{
	"url_length",
	"domain_length",
	"path_length",
	"subdomain_length",
	"subdomain_count",
	"path_depth",
	"query_param_count",
	"digit_count",
	"letter_count",
	"special_char_count",
	"hyphen_count",
	"underscore_count",
	"dot_count",
	"slash_count",
	"at_symbol",
	"digit_ratio",
	"special_char_ratio",
	"url_entropy",
	"domain_entropy",
	"has_ip_address",
	"has_suspicious_tld",
	"suspicious_keyword_count",
	"has_double_slash_redirecting",
	"prefix_suffix_in_domain",
	"uses_non_standard_port",
	"is_https",
	"has_valid_ssl",
	"ssl_certificate_age_days",
	"ssl_issuer_trusted",
	"domain_age_days",
	"domain_registered_recently",
}

var featureIndex = func() map[string]int {
	m := make(map[string]int, len(featureNames))
	for i, name := range featureNames {
		m[name] = i
	}
	return m
}()

// Value returns a numeric feature by name. The second return is false for
// unknown names.
func (f *Features) Value(name string) (float64, bool) {
	i, ok := featureIndex[name]
	if !ok {
		return 0, false
	}
	return f.Vector()[i], true
}

// Names returns the feature names in vector order
func Names() []string {
	out := make([]string, len(featureNames))
	copy(out, featureNames)
	return out
}

// Vector returns the numeric features in the order given by Names
func (f *Features) Vector() []float64 {
	return []float64{
		float64(f.URLLength),
		float64(f.DomainLength),
		float64(f.PathLength),
		float64(f.SubdomainLength),
		float64(f.SubdomainCount),
		float64(f.PathDepth),
		float64(f.QueryParamCount),
		float64(f.DigitCount),
		float64(f.LetterCount),
		float64(f.SpecialCharCount),
		float64(f.HyphenCount),
		float64(f.UnderscoreCount),
		float64(f.DotCount),
		float64(f.SlashCount),
		float64(f.AtSymbol),
		f.DigitRatio,
		f.SpecialCharRatio,
		f.URLEntropy,
		f.DomainEntropy,
		float64(f.HasIPAddress),
		float64(f.HasSuspiciousTLD),
		float64(f.SuspiciousKeywordCount),
		float64(f.HasDoubleSlashRedirecting),
		float64(f.PrefixSuffixInDomain),
		float64(f.UsesNonStandardPort),
		float64(f.IsHTTPS),
		float64(f.HasValidSSL),
		float64(f.SSLCertificateAge),
		float64(f.SSLIssuerTrusted),
		float64(f.DomainAgeDays),
		float64(f.DomainRegisteredRecently),
	}
}
