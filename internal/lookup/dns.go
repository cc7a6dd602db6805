package lookup

import (
	"context"
	"errors"
	"net"
	"regexp"
	"sort"
	"strings"
	"time"

	"mailproof/internal/models"
)

// Resolver is the subset of *net.Resolver the checks need. Tests
// substitute an in-memory fake.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

// DKIM selectors probed in order. Absence at one selector just means
// "try the next".
var DKIMSelectors = []string{"default", "google", "selector1", "selector2", "k1", "mail", "dkim"}

var dmarcPolicyPattern = regexp.MustCompile(`p=([^;]+)`)

// NewResolver builds the production resolver. We can't wait 30 seconds
// for a bad DNS server, so a custom dialer enforces a strict timeout.
func NewResolver() *net.Resolver {
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			d := net.Dialer{
				Timeout: 3 * time.Second, // Fail fast if DNS is slow
			}
			return d.DialContext(ctx, network, address)
		},
	}
}

// DNSChecker performs the four independent mail-infrastructure lookups.
// Every check is best effort: lookup failures populate the Error field
// of their own sub-result and never affect the others.
type DNSChecker struct {
	Resolver Resolver
}

func NewDNSChecker() *DNSChecker {
	return &DNSChecker{Resolver: NewResolver()}
}

// CheckMX looks up the domain's mail exchangers, sorted by ascending
// priority. "No records" is distinguished from other lookup errors.
func (c *DNSChecker) CheckMX(ctx context.Context, domain string) models.MXResult {
	result := models.MXResult{Records: []models.MXRecord{}}

	records, err := c.Resolver.LookupMX(ctx, domain)
	if err != nil {
		if isNotFound(err) {
			result.Error = "No MX records found"
		} else {
			result.Error = err.Error()
		}
		return result
	}

	// A successful answer with zero records leaves HasMX false without
	// an error; only a not-found response carries the message.
	if len(records) == 0 {
		return result
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Pref < records[j].Pref })
	for _, mx := range records {
		result.Records = append(result.Records, models.MXRecord{
			Host:     strings.TrimSuffix(mx.Host, "."),
			Priority: mx.Pref,
		})
	}
	result.HasMX = true
	return result
}

// CheckSPF scans the domain's TXT records for a v=spf1 policy.
func (c *DNSChecker) CheckSPF(ctx context.Context, domain string) models.SPFResult {
	var result models.SPFResult

	records, err := c.Resolver.LookupTXT(ctx, domain)
	if err != nil {
		if !isNotFound(err) {
			result.Error = err.Error()
		}
		return result
	}

	for _, txt := range records {
		if strings.HasPrefix(txt, "v=spf1") {
			result.HasSPF = true
			result.Record = txt
			break
		}
	}
	return result
}

// CheckDKIM probes {selector}._domainkey.{domain} for each common
// selector and stops at the first record carrying a DKIM key.
func (c *DNSChecker) CheckDKIM(ctx context.Context, domain string) models.DKIMResult {
	var result models.DKIMResult

	for _, selector := range DKIMSelectors {
		records, err := c.Resolver.LookupTXT(ctx, selector+"._domainkey."+domain)
		if err != nil || len(records) == 0 {
			continue
		}
		txt := records[0]
		if strings.Contains(txt, "v=DKIM1") || strings.Contains(txt, "p=") {
			result.HasDKIM = true
			result.Selector = selector
			break
		}
	}
	return result
}

// CheckDMARC looks up _dmarc.{domain} and extracts the p= policy token.
func (c *DNSChecker) CheckDMARC(ctx context.Context, domain string) models.DMARCResult {
	var result models.DMARCResult

	records, err := c.Resolver.LookupTXT(ctx, "_dmarc."+domain)
	if err != nil {
		if !isNotFound(err) {
			result.Error = err.Error()
		}
		return result
	}

	for _, txt := range records {
		if strings.HasPrefix(txt, "v=DMARC1") {
			result.HasDMARC = true
			result.Record = txt
			if m := dmarcPolicyPattern.FindStringSubmatch(txt); m != nil {
				result.Policy = strings.TrimSpace(m[1])
			}
			break
		}
	}
	return result
}

// isNotFound reports whether the lookup failed because the name or
// record simply does not exist, as opposed to a resolver fault.
func isNotFound(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsNotFound
	}
	return false
}
