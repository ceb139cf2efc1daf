package features

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
)

// probeTLS connects to hostname:443 and reads the leaf certificate age.
// Only meaningful for HTTPS URLs; any failure leaves the sentinel values.
func (e *Extractor) probeTLS(ctx context.Context, f *Features) {
	if f.IsHTTPS != 1 {
		return
	}

	host := f.Domain
	if f.Subdomain != "" {
		host = f.Subdomain + "." + f.Domain
	}

	dialer := &net.Dialer{Timeout: e.probes.SSLTimeout()}
	conn, err := tls.DialWithDialer(dialer, "tcp", net.JoinHostPort(host, "443"), &tls.Config{
		ServerName: host,
	})
	if err != nil {
		e.logger.Debug().Err(err).Str("host", host).Msg("TLS probe failed")
		return
	}
	defer conn.Close()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return
	}

	f.HasValidSSL = 1
	ageDays := int(time.Since(certs[0].NotBefore).Hours() / 24)
	f.SSLCertificateAge = ageDays
	if ageDays > 30 {
		f.SSLIssuerTrusted = 1
	}
}

// probeWhois looks up the registration date of the registrable domain.
// Failures and unparseable records leave the sentinel values.
func (e *Extractor) probeWhois(ctx context.Context, f *Features) {
	if f.HasIPAddress == 1 || f.Domain == "" {
		return
	}

	client := whois.NewClient()
	client.SetTimeout(e.probes.WhoisTimeout())

	raw, err := client.Whois(f.Domain)
	if err != nil {
		e.logger.Debug().Err(err).Str("domain", f.Domain).Msg("WHOIS query failed")
		return
	}

	parsed, err := whoisparser.Parse(raw)
	if err != nil {
		e.logger.Debug().Err(err).Str("domain", f.Domain).Msg("WHOIS parse failed")
		return
	}
	if parsed.Domain == nil || parsed.Domain.CreatedDateInTime == nil {
		return
	}

	ageDays := int(time.Since(*parsed.Domain.CreatedDateInTime).Hours() / 24)
	f.DomainAgeDays = ageDays
	if ageDays < 180 {
		f.DomainRegisteredRecently = 1
	}
}
