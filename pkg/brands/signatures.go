package brands

import "regexp"

// Signature holds the visual and textual fingerprint of one brand, used to
// spot pages that present a brand they do not own.
type Signature struct {
	Brand    string
	Colors   []string // canonical hex colors, uppercase
	Keywords []string
	Patterns []*regexp.Regexp
}

// Signatures returns the built-in brand signature set
func Signatures() []Signature {
	sigs := []Signature{
		{
			Brand:    "google",
			Colors:   []string{"#4285F4", "#EA4335", "#FBBC04", "#34A853"},
			Keywords: []string{"google", "gmail", "sign in", "account"},
			Patterns: compile(`google\s+account`, `gmail\s+sign`, `@gmail\.com`),
		},
		{
			Brand:    "microsoft",
			Colors:   []string{"#00A4EF", "#7FBA00", "#FFB900", "#F25022"},
			Keywords: []string{"microsoft", "office", "outlook", "onedrive", "microsoft 365"},
			Patterns: compile(`microsoft\s+account`, `office\s+365`, `outlook\s+sign`),
		},
		{
			Brand:    "apple",
			Colors:   []string{"#000000", "#FFFFFF", "#555555"},
			Keywords: []string{"apple", "icloud", "apple id", "app store"},
			Patterns: compile(`apple\s+id`, `icloud\s+sign`, `@icloud\.com`),
		},
		{
			Brand:    "amazon",
			Colors:   []string{"#FF9900", "#146EB4", "#232F3E"},
			Keywords: []string{"amazon", "prime", "aws", "sign in"},
			Patterns: compile(`amazon\s+account`, `amazon\s+prime`, `aws\s+console`),
		},
		{
			Brand:    "facebook",
			Colors:   []string{"#1877F2", "#4267B2", "#385898"},
			Keywords: []string{"facebook", "meta", "log in", "sign up"},
			Patterns: compile(`facebook\s+log`, `@facebook\.com`, `meta\s+account`),
		},
		{
			Brand:    "meta",
			Colors:   []string{"#0081FB", "#0668E1"},
			Keywords: []string{"meta", "facebook", "instagram", "whatsapp"},
			Patterns: compile(`meta\s+account`, `meta\s+quest`),
		},
		{
			Brand:    "paypal",
			Colors:   []string{"#003087", "#009CDE", "#012169"},
			Keywords: []string{"paypal", "payment", "send money", "log in"},
			Patterns: compile(`paypal\s+account`, `paypal\s+log`, `@paypal\.com`),
		},
		{
			Brand:    "chase",
			Colors:   []string{"#117ACA", "#005CB9"},
			Keywords: []string{"chase", "jpmorgan", "bank", "sign in"},
			Patterns: compile(`chase\s+bank`, `chase\s+online`, `jpmorgan\s+chase`),
		},
		{
			Brand:    "bankofamerica",
			Colors:   []string{"#012169", "#E31837"},
			Keywords: []string{"bank of america", "bofa", "online banking"},
			Patterns: compile(`bank\s+of\s+america`, `bofa\s+online`),
		},
		{
			Brand:    "wellsfargo",
			Colors:   []string{"#D71E28", "#FFCD41"},
			Keywords: []string{"wells fargo", "banking", "sign on"},
			Patterns: compile(`wells\s+fargo`, `wellsfargo\s+online`),
		},
		{
			Brand:    "outlook",
			Colors:   []string{"#0078D4", "#106EBE"},
			Keywords: []string{"outlook", "hotmail", "live", "sign in"},
			Patterns: compile(`outlook\s+sign`, `@outlook\.com`, `@hotmail\.com`),
		},
		{
			Brand:    "yahoo",
			Colors:   []string{"#5F01D1", "#720E9E"},
			Keywords: []string{"yahoo", "mail", "sign in"},
			Patterns: compile(`yahoo\s+mail`, `@yahoo\.com`, `yahoo\s+account`),
		},
		{
			Brand:    "linkedin",
			Colors:   []string{"#0A66C2", "#0077B5"},
			Keywords: []string{"linkedin", "professional network", "sign in"},
			Patterns: compile(`linkedin\s+sign`, `@linkedin\.com`),
		},
		{
			Brand:    "twitter",
			Colors:   []string{"#1DA1F2", "#14171A"},
			Keywords: []string{"twitter", "tweet", "log in"},
			Patterns: compile(`twitter\s+log`, `@twitter\.com`),
		},
		{
			Brand:    "instagram",
			Colors:   []string{"#E4405F", "#833AB4", "#FD1D1D", "#F77737"},
			Keywords: []string{"instagram", "insta", "log in"},
			Patterns: compile(`instagram\s+log`, `@instagram\.com`),
		},
		{
			Brand:    "ebay",
			Colors:   []string{"#E53238", "#F5AF02", "#86B817", "#0064D2"},
			Keywords: []string{"ebay", "buy", "sell", "sign in"},
			Patterns: compile(`ebay\s+sign`, `@ebay\.com`),
		},
		{
			Brand:    "walmart",
			Colors:   []string{"#0071CE", "#FFC220"},
			Keywords: []string{"walmart", "shop", "sign in"},
			Patterns: compile(`walmart\s+account`, `walmart\s+online`),
		},
		{
			Brand:    "coinbase",
			Colors:   []string{"#0052FF", "#1652F0"},
			Keywords: []string{"coinbase", "crypto", "bitcoin", "sign in"},
			Patterns: compile(`coinbase\s+sign`, `coinbase\s+wallet`),
		},
		{
			Brand:    "binance",
			Colors:   []string{"#F3BA2F", "#FCD535"},
			Keywords: []string{"binance", "crypto", "trading", "log in"},
			Patterns: compile(`binance\s+log`, `binance\s+account`),
		},
	}
	return sigs
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(`(?i)`+e))
	}
	return out
}
