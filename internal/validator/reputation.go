package validator

import (
	"context"

	"mailproof/internal/models"
)

// BreachProvider reports how many known data breaches contain the
// address. Implementations must be swappable without touching the
// scorer; the default is a stub that always reports clean.
type BreachProvider interface {
	BreachCount(ctx context.Context, email string) (int, error)
}

// SpamProvider reports a 0-100 spam association score for a domain.
type SpamProvider interface {
	SpamScore(ctx context.Context, domain string) (int, error)
}

type cleanBreachProvider struct{}

func (cleanBreachProvider) BreachCount(ctx context.Context, email string) (int, error) {
	return 0, nil
}

type cleanSpamProvider struct{}

func (cleanSpamProvider) SpamScore(ctx context.Context, domain string) (int, error) {
	return 0, nil
}

// ReputationAnalyzer combines breach and spam signals. A failing
// provider is treated as "clean", never as a pipeline error.
type ReputationAnalyzer struct {
	Breach BreachProvider
	Spam   SpamProvider
}

func NewReputationAnalyzer(breach BreachProvider, spam SpamProvider) *ReputationAnalyzer {
	if breach == nil {
		breach = cleanBreachProvider{}
	}
	if spam == nil {
		spam = cleanSpamProvider{}
	}
	return &ReputationAnalyzer{Breach: breach, Spam: spam}
}

func (r *ReputationAnalyzer) Analyze(ctx context.Context, email, domain string) models.ReputationResult {
	result := models.ReputationResult{
		ReputationScore: 100,
		RiskFactors:     []string{},
	}

	count, err := r.Breach.BreachCount(ctx, email)
	if err == nil && count > 0 {
		result.BreachDetected = true
		result.BreachCount = count
		result.ReputationScore -= 40
		result.RiskFactors = append(result.RiskFactors, "Email found in data breach")
	}

	spam, err := r.Spam.SpamScore(ctx, domain)
	if err == nil {
		result.SpamScore = spam
		if spam > 50 {
			result.ReputationScore -= 30
			result.RiskFactors = append(result.RiskFactors, "Domain has high spam association")
		}
	}

	return result
}
