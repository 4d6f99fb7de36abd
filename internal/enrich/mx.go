package enrich

import (
	"strings"

	"github.com/miekg/dns"
)

var mxResolvers = []string{"8.8.8.8:53", "1.1.1.1:53"}

// HasMX reports whether the email's domain publishes MX records. Used to
// flag likely-undeliverable addresses in the upload preview; it never blocks
// a send.
func HasMX(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	domain := strings.TrimSpace(parts[1])
	if domain == "" {
		return false
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeMX)
	msg.RecursionDesired = true

	client := new(dns.Client)
	for _, server := range mxResolvers {
		if resp, _, err := client.Exchange(msg, server); err == nil {
			if resp != nil && resp.Rcode == dns.RcodeSuccess && len(resp.Answer) > 0 {
				return true
			}
		}
	}
	return false
}
