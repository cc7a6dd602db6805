package validator

import (
	"context"
	"errors"
	"testing"
)

type fixedBreach struct {
	count int
	err   error
}

func (f fixedBreach) BreachCount(ctx context.Context, email string) (int, error) {
	return f.count, f.err
}

type fixedSpam struct {
	score int
	err   error
}

func (f fixedSpam) SpamScore(ctx context.Context, domain string) (int, error) {
	return f.score, f.err
}

func TestAnalyzeReputation(t *testing.T) {
	tests := []struct {
		name           string
		breach         BreachProvider
		spam           SpamProvider
		expectedScore  int
		expectedBreach bool
		expectedFactor string
	}{
		{
			name:          "Clean Defaults",
			expectedScore: 100,
		},
		{
			name:           "Breached Address",
			breach:         fixedBreach{count: 2},
			expectedScore:  60,
			expectedBreach: true,
			expectedFactor: "Email found in data breach",
		},
		{
			name:           "Spammy Domain",
			spam:           fixedSpam{score: 80},
			expectedScore:  70,
			expectedFactor: "Domain has high spam association",
		},
		{
			name:          "Provider Failure Reads As Clean",
			breach:        fixedBreach{err: errors.New("rate limited")},
			spam:          fixedSpam{err: errors.New("unavailable")},
			expectedScore: 100,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			analyzer := NewReputationAnalyzer(tc.breach, tc.spam)
			result := analyzer.Analyze(context.Background(), "user@somecompany.io", "somecompany.io")

			if result.ReputationScore != tc.expectedScore {
				t.Errorf("ReputationScore = %d, want %d", result.ReputationScore, tc.expectedScore)
			}
			if result.BreachDetected != tc.expectedBreach {
				t.Errorf("BreachDetected = %v, want %v", result.BreachDetected, tc.expectedBreach)
			}
			if tc.expectedFactor != "" && !contains(result.RiskFactors, tc.expectedFactor) {
				t.Errorf("expected factor %q, got %v", tc.expectedFactor, result.RiskFactors)
			}
		})
	}
}
