// Package brands holds the curated brand index used by the lookalike and
// impersonation detectors. The index is built once at startup and read-only
// afterwards.
package brands

import "strings"

// Entry is one protected brand domain
type Entry struct {
	Domain   string // canonical domain, e.g. "paypal.com"
	Label    string // registrable label, e.g. "paypal"
	Category string
}

// Index is the loaded brand index
type Index struct {
	entries []Entry
	labels  map[string]bool
}

// NewIndex loads the built-in brand index. Entry order is fixed so that
// similarity ties resolve the same way on every run.
func NewIndex() *Index {
	idx := &Index{labels: make(map[string]bool)}
	for _, group := range brandDomains() {
		category := group.category
		for _, domain := range group.domains {
			label := strings.ToLower(strings.SplitN(domain, ".", 2)[0])
			idx.entries = append(idx.entries, Entry{
				Domain:   strings.ToLower(domain),
				Label:    label,
				Category: category,
			})
			idx.labels[label] = true
		}
	}
	return idx
}

// Entries returns all brand entries
func (idx *Index) Entries() []Entry {
	return idx.entries
}

// HasLabel reports whether a registrable label belongs to a known brand
func (idx *Index) HasLabel(label string) bool {
	return idx.labels[strings.ToLower(label)]
}

// Count returns the number of protected brand domains
func (idx *Index) Count() int {
	return len(idx.entries)
}

type brandGroup struct {
	category string
	domains  []string
}

// brandDomains returns the protected brand domains grouped by category
func brandDomains() []brandGroup {
	return []brandGroup{
		{"financial", []string{
			"paypal.com", "chase.com", "bankofamerica.com", "wellsfargo.com",
			"capitalone.com", "citi.com", "usbank.com", "barclays.com",
			"hsbc.com", "americanexpress.com", "discover.com", "ally.com",
			"goldmansachs.com", "morganstanley.com", "schwab.com", "fidelity.com",
			"vanguard.com", "etrade.com", "tdameritrade.com", "robinhood.com",
			"coinbase.com", "binance.com", "kraken.com", "gemini.com",
			"stripe.com", "square.com", "venmo.com", "cashapp.com",
			"transferwise.com", "revolut.com", "monzo.com", "n26.com",
			"santander.com", "bbva.com", "bnpparibas.com", "dbs.com",
			"standardchartered.com", "rbs.com", "lloydsbank.com", "nationwide.com",
			"pnc.com", "truist.com", "regions.com", "suntrust.com",
			"navyfederal.com", "usaa.com", "keybank.com", "bbt.com",
			"fifth-third.com", "citizensbank.com",
		}},
		{"tech", []string{
			"google.com", "microsoft.com", "apple.com", "amazon.com",
			"facebook.com", "meta.com", "instagram.com", "whatsapp.com",
			"twitter.com", "x.com", "linkedin.com", "youtube.com",
			"netflix.com", "spotify.com", "adobe.com", "salesforce.com",
			"oracle.com", "ibm.com", "sap.com", "cisco.com",
			"intel.com", "nvidia.com", "amd.com", "dell.com",
			"hp.com", "lenovo.com", "asus.com", "samsung.com",
			"sony.com", "lg.com", "panasonic.com", "toshiba.com",
			"alibaba.com", "tencent.com", "baidu.com", "jd.com",
			"zoom.com", "slack.com", "dropbox.com", "box.com",
			"github.com", "gitlab.com", "bitbucket.com", "atlassian.com",
			"asana.com", "trello.com", "notion.com", "monday.com",
			"shopify.com", "squarespace.com", "wix.com", "wordpress.com",
		}},
		{"email", []string{
			"gmail.com", "outlook.com", "yahoo.com", "protonmail.com",
			"icloud.com", "aol.com", "hotmail.com", "live.com",
			"mail.com", "zoho.com", "yandex.com", "gmx.com",
			"tutanota.com", "fastmail.com", "hushmail.com", "runbox.com",
			"mailbox.org", "posteo.de", "mailfence.com", "startmail.com",
			"telegram.com", "signal.org", "discord.com", "skype.com",
			"viber.com", "line.me", "wechat.com", "kakao.com",
			"messenger.com", "snapchat.com",
		}},
		{"ecommerce", []string{
			"ebay.com", "walmart.com", "target.com",
			"bestbuy.com", "homedepot.com", "lowes.com", "costco.com",
			"macys.com", "nordstrom.com", "kohls.com", "jcpenney.com",
			"aliexpress.com", "etsy.com", "wayfair.com",
			"overstock.com", "newegg.com", "zappos.com", "chewy.com",
			"instacart.com", "doordash.com", "ubereats.com", "grubhub.com",
			"postmates.com", "seamless.com", "deliveroo.com", "just-eat.com",
			"booking.com", "expedia.com", "airbnb.com", "hotels.com",
			"trivago.com", "kayak.com", "priceline.com", "orbitz.com",
			"travelocity.com", "hotwire.com", "tripadvisor.com", "vrbo.com",
		}},
		{"social", []string{
			"tiktok.com", "pinterest.com", "reddit.com",
			"tumblr.com", "flickr.com", "medium.com", "quora.com",
			"stackoverflow.com", "behance.net", "dribbble.com", "vimeo.com",
			"twitch.tv", "dailymotion.com", "soundcloud.com", "mixcloud.com",
			"mastodon.social", "threads.net", "bluesky.social", "truthsocial.com",
			"parler.com",
		}},
		{"enterprise", []string{
			"office365.com", "office.com", "azure.com",
			"servicenow.com", "workday.com", "adp.com", "paychex.com",
			"zendesk.com", "freshworks.com", "hubspot.com", "mailchimp.com",
			"constantcontact.com", "sendgrid.com", "twilio.com", "vonage.com",
			"ringcentral.com", "goto.com", "webex.com",
			"docusign.com", "adobesign.com", "hellosign.com", "pandadoc.com",
			"basecamp.com", "smartsheet.com", "airtable.com", "clickup.com",
		}},
		{"government", []string{
			"usa.gov", "irs.gov", "usps.com",
			"ssa.gov", "fbi.gov", "dhs.gov", "state.gov",
			"nasa.gov", "cdc.gov", "nih.gov", "fda.gov",
			"epa.gov", "sec.gov", "ftc.gov", "dol.gov",
			"va.gov", "medicare.gov", "socialsecurity.gov", "dmv.org",
			"gov.uk", "nhs.uk", "gov.au", "gov.ca",
			"europa.eu", "un.org", "who.int", "worldbank.org",
			"imf.org", "nato.int",
		}},
		{"education", []string{
			"harvard.edu", "mit.edu", "stanford.edu",
			"berkeley.edu", "yale.edu", "princeton.edu", "columbia.edu",
			"upenn.edu", "cornell.edu", "caltech.edu", "northwestern.edu",
			"duke.edu", "brown.edu", "dartmouth.edu", "vanderbilt.edu",
			"rice.edu", "notredame.edu", "georgetown.edu", "cmu.edu",
			"usc.edu", "ucla.edu", "ucsd.edu", "ucsb.edu",
			"ox.ac.uk", "cam.ac.uk", "imperial.ac.uk", "ucl.ac.uk",
			"coursera.org", "udemy.com", "khanacademy.org", "edx.org",
		}},
		{"streaming", []string{
			"hulu.com", "disneyplus.com", "hbomax.com",
			"primevideo.com", "pandora.com",
			"tidal.com", "deezer.com", "amazonmusic.com", "youtubemusic.com",
			"peacocktv.com", "paramountplus.com", "showtime.com", "starz.com",
			"espn.com", "nfl.com", "nba.com", "mlb.com", "sling.com",
		}},
		{"gaming", []string{
			"steam.com", "epicgames.com", "origin.com", "ubisoft.com",
			"ea.com", "activision.com", "blizzard.com", "riotgames.com",
			"playstation.com", "xbox.com", "nintendo.com",
			"roblox.com", "minecraft.net",
			"fortnite.com", "leagueoflegends.com", "valorant.com", "overwatch.com",
			"callofduty.com", "battlefield.com", "gog.com", "humblebundle.com",
			"itch.io",
		}},
		{"storage", []string{
			"onedrive.com", "mega.nz", "sync.com", "pcloud.com",
			"icedrive.net", "tresorit.com", "nextcloud.com", "owncloud.com",
			"backblaze.com", "carbonite.com", "idrive.com", "crashplan.com",
			"digitalocean.com",
		}},
		{"security", []string{
			"nordvpn.com", "expressvpn.com", "surfshark.com", "cyberghost.com",
			"privatevpn.com", "purevpn.com", "ipvanish.com", "tunnelbear.com",
			"protonvpn.com", "mullvad.net", "windscribe.com", "vypr.com",
			"lastpass.com", "1password.com", "dashlane.com", "bitwarden.com",
			"keeper.com", "roboform.com", "nortonlifelock.com", "mcafee.com",
			"avg.com", "avast.com", "kaspersky.com", "bitdefender.com",
			"malwarebytes.com",
		}},
	}
}
