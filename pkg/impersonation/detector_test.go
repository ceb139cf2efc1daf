package impersonation

import (
	"testing"
)

func TestDetectNoPageContext(t *testing.T) {
	d := NewDetector()
	result := d.Detect("https://example.test/", "example", "example.test", nil)
	if result.IsImpersonating {
		t.Error("no page content must never report impersonation")
	}
	if result.ImpersonationScore != 0 {
		t.Errorf("ImpersonationScore = %d, want 0", result.ImpersonationScore)
	}
}

func TestDetectPayPalPhishPage(t *testing.T) {
	d := NewDetector()
	page := &PageContext{
		Title:     "PayPal Login - Verify Your Account",
		Text:      "Enter your PayPal account details to log in and send money securely.",
		CSSColors: []string{"#003087", "#009cde", "#ffffff"},
	}
	result := d.Detect("https://secure-pay-portal.test/login", "secure-pay-portal", "secure-pay-portal.test", page)

	if !result.IsImpersonating {
		t.Fatal("expected impersonation verdict")
	}
	if result.SuspectedBrand != "paypal" {
		t.Errorf("SuspectedBrand = %q, want paypal", result.SuspectedBrand)
	}
	// keywords (30) + pattern (25) + colors (20) + title (15) + distance (10)
	if result.ImpersonationScore != 100 {
		t.Errorf("ImpersonationScore = %d, want 100", result.ImpersonationScore)
	}
	if result.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want capped 0.95", result.Confidence)
	}
	if len(result.Indicators) > 5 {
		t.Errorf("Indicators length = %d, want <= 5", len(result.Indicators))
	}
	if !result.BrandInTitle {
		t.Error("expected BrandInTitle")
	}
}

func TestDetectLegitimateBrandSiteSkipped(t *testing.T) {
	d := NewDetector()
	page := &PageContext{
		Title: "PayPal Login - Verify Your Account",
		Text:  "Enter your PayPal account details to log in.",
	}
	result := d.Detect("https://paypal.com/signin", "paypal", "paypal.com", page)

	if result.SuspectedBrand == "paypal" {
		t.Error("the brand's own domain must not be reported as impersonation")
	}
}

func TestDetectBelowThreshold(t *testing.T) {
	d := NewDetector()
	page := &PageContext{
		Title: "Weather forecast for tomorrow",
		Text:  "Sunny with a light breeze.",
	}
	result := d.Detect("https://weather-site.test/", "weather-site", "weather-site.test", page)

	if result.IsImpersonating {
		t.Errorf("weak signals reported as impersonation of %q", result.SuspectedBrand)
	}
}
