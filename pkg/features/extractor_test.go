package features

import (
	"math"
	"testing"
)

func TestExtractLexical(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		check func(t *testing.T, f *Features)
	}{
		{
			name: "embedded brand with keywords",
			url:  "https://paypa1-verify-login.com/account",
			check: func(t *testing.T, f *Features) {
				if f.DomainLabel != "paypa1-verify-login" {
					t.Errorf("DomainLabel = %q, want paypa1-verify-login", f.DomainLabel)
				}
				if f.Domain != "paypa1-verify-login.com" {
					t.Errorf("Domain = %q", f.Domain)
				}
				if f.PrefixSuffixInDomain != 1 {
					t.Error("expected PrefixSuffixInDomain = 1")
				}
				if f.SuspiciousKeywordCount != 3 {
					t.Errorf("SuspiciousKeywordCount = %d, want 3", f.SuspiciousKeywordCount)
				}
				if f.IsHTTPS != 1 {
					t.Error("expected IsHTTPS = 1")
				}
				if f.HasIPAddress != 0 {
					t.Error("expected HasIPAddress = 0")
				}
			},
		},
		{
			name: "clean well-known domain",
			url:  "https://google.com/",
			check: func(t *testing.T, f *Features) {
				if f.DomainLabel != "google" {
					t.Errorf("DomainLabel = %q, want google", f.DomainLabel)
				}
				if f.Subdomain != "" {
					t.Errorf("Subdomain = %q, want empty", f.Subdomain)
				}
				if f.SuspiciousKeywordCount != 0 {
					t.Errorf("SuspiciousKeywordCount = %d, want 0", f.SuspiciousKeywordCount)
				}
				if f.HasSuspiciousTLD != 0 {
					t.Error("expected HasSuspiciousTLD = 0")
				}
				if f.Port != 443 {
					t.Errorf("Port = %d, want 443", f.Port)
				}
			},
		},
		{
			name: "IP host on a non-standard port",
			url:  "http://192.168.14.22:8081/login?user=admin",
			check: func(t *testing.T, f *Features) {
				if f.HasIPAddress != 1 {
					t.Error("expected HasIPAddress = 1")
				}
				if f.UsesNonStandardPort != 1 {
					t.Error("expected UsesNonStandardPort = 1")
				}
				if f.Port != 8081 {
					t.Errorf("Port = %d, want 8081", f.Port)
				}
				if f.IsHTTPS != 0 {
					t.Error("expected IsHTTPS = 0")
				}
				if f.SuspiciousKeywordCount != 1 {
					t.Errorf("SuspiciousKeywordCount = %d, want 1", f.SuspiciousKeywordCount)
				}
				if f.QueryParamCount != 1 {
					t.Errorf("QueryParamCount = %d, want 1", f.QueryParamCount)
				}
			},
		},
		{
			name: "suspicious TLD with many keywords",
			url:  "https://microsoft-account-verify-update.tk/signin",
			check: func(t *testing.T, f *Features) {
				if f.HasSuspiciousTLD != 1 {
					t.Error("expected HasSuspiciousTLD = 1")
				}
				if f.SuspiciousKeywordCount != 4 {
					t.Errorf("SuspiciousKeywordCount = %d, want 4", f.SuspiciousKeywordCount)
				}
				if f.PrefixSuffixInDomain != 1 {
					t.Error("expected PrefixSuffixInDomain = 1")
				}
			},
		},
		{
			name: "subdomains counted",
			url:  "https://login.secure.mail.example.com/",
			check: func(t *testing.T, f *Features) {
				if f.DomainLabel != "example" {
					t.Errorf("DomainLabel = %q, want example", f.DomainLabel)
				}
				if f.Subdomain != "login.secure.mail" {
					t.Errorf("Subdomain = %q", f.Subdomain)
				}
				if f.SubdomainCount != 3 {
					t.Errorf("SubdomainCount = %d, want 3", f.SubdomainCount)
				}
			},
		},
		{
			name: "at symbol flagged",
			url:  "https://user@evil.example.com/path",
			check: func(t *testing.T, f *Features) {
				if f.AtSymbol != 1 {
					t.Error("expected AtSymbol = 1")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ExtractLexical(tt.url)
			if err != nil {
				t.Fatalf("ExtractLexical(%q) error: %v", tt.url, err)
			}
			tt.check(t, f)
		})
	}
}

func TestExtractLexicalRejectsHostless(t *testing.T) {
	if _, err := ExtractLexical("not a url"); err == nil {
		t.Error("expected error for hostless input")
	}
}

func TestProbeSentinels(t *testing.T) {
	f, err := ExtractLexical("https://example.com/")
	if err != nil {
		t.Fatal(err)
	}
	if f.SSLCertificateAge != -1 {
		t.Errorf("SSLCertificateAge = %d, want -1", f.SSLCertificateAge)
	}
	if f.DomainAgeDays != -1 {
		t.Errorf("DomainAgeDays = %d, want -1", f.DomainAgeDays)
	}
	if f.HasValidSSL != 0 || f.DomainRegisteredRecently != 0 {
		t.Error("probe flags should default to 0")
	}
}

func TestEntropy(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"", 0},
		{"aaaa", 0},
		{"ab", 1},
		{"abcd", 2},
	}
	for _, tt := range tests {
		if got := Entropy(tt.input); math.Abs(got-tt.want) > 0.0001 {
			t.Errorf("Entropy(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestVectorMatchesNames(t *testing.T) {
	f, err := ExtractLexical("https://example.com/a/b?c=d")
	if err != nil {
		t.Fatal(err)
	}
	names := Names()
	vec := f.Vector()
	if len(names) != len(vec) {
		t.Fatalf("Names() has %d entries, Vector() has %d", len(names), len(vec))
	}
}
