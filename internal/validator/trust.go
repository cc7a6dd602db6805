package validator

import (
	"context"

	"mailproof/internal/models"
)

// AgeProvider reports how many days ago a domain was registered.
// known=false means the lookup produced no data, which is never an
// error condition for the assessment.
type AgeProvider interface {
	DomainAgeDays(ctx context.Context, domain string) (days int, known bool)
}

// UnknownAgeProvider is the default registration-age source. Live
// WHOIS/RDAP is deliberately not wired; every domain reports unknown.
type UnknownAgeProvider struct{}

func (UnknownAgeProvider) DomainAgeDays(ctx context.Context, domain string) (int, bool) {
	return 0, false
}

// TrustAssessor grades a domain's standing from the membership tables
// and its registration age. Assessment never fails: an unavailable age
// lookup is treated as unknown and skipped.
type TrustAssessor struct {
	Lists *Lists
	Age   AgeProvider
}

func NewTrustAssessor(lists *Lists, age AgeProvider) *TrustAssessor {
	if age == nil {
		age = UnknownAgeProvider{}
	}
	return &TrustAssessor{Lists: lists, Age: age}
}

// Assess starts at a trust score of 100 and deducts for each issue.
// The three membership checks are non-exclusive.
func (t *TrustAssessor) Assess(ctx context.Context, domain string) models.TrustResult {
	result := models.TrustResult{
		TrustScore: 100,
		Issues:     []string{},
	}

	if t.Lists.IsDisposable(domain) {
		result.IsDisposable = true
		result.TrustScore -= 80
		result.Issues = append(result.Issues, "Disposable email domain detected")
	}

	if t.Lists.IsFree(domain) {
		result.IsFreeEmail = true
		result.TrustScore -= 10
		result.Issues = append(result.Issues, "Free email provider")
	}

	if t.Lists.IsTrusted(domain) {
		result.IsTrusted = true
		result.TrustScore += 20
	}

	if days, known := t.Age.DomainAgeDays(ctx, domain); known {
		result.DomainAgeDays = &days
		if days < 30 {
			result.TrustScore -= 25
			result.Issues = append(result.Issues, "Newly registered domain (< 30 days)")
		}
	}

	return result
}
