package validator

import (
	"context"
	"testing"
)

type fixedAge struct {
	days  int
	known bool
}

func (f fixedAge) DomainAgeDays(ctx context.Context, domain string) (int, bool) {
	return f.days, f.known
}

func TestAssessDomainTrust(t *testing.T) {
	lists := DefaultLists()

	tests := []struct {
		name          string
		domain        string
		age           AgeProvider
		expectedScore int
		expectedIssue string
	}{
		{
			name:          "Neutral Unknown Domain",
			domain:        "somecompany.io",
			expectedScore: 100,
		},
		{
			name:          "Disposable",
			domain:        "mailinator.com",
			expectedScore: 20,
			expectedIssue: "Disposable email domain detected",
		},
		{
			name:          "Free Provider",
			domain:        "gmail.com",
			expectedScore: 90,
			expectedIssue: "Free email provider",
		},
		{
			// aol.com sits in both the free and the disposable tables, so
			// both deductions apply here even though the syntax classifier
			// treats it as a known provider.
			name:          "Free Provider Also Listed Disposable",
			domain:        "aol.com",
			expectedScore: 10,
			expectedIssue: "Disposable email domain detected",
		},
		{
			name:          "Trusted Corporate",
			domain:        "google.com",
			expectedScore: 120,
		},
		{
			name:          "Newly Registered",
			domain:        "brandnew.io",
			age:           fixedAge{days: 5, known: true},
			expectedScore: 75,
			expectedIssue: "Newly registered domain (< 30 days)",
		},
		{
			name:          "Old Enough",
			domain:        "established.io",
			age:           fixedAge{days: 400, known: true},
			expectedScore: 100,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assessor := NewTrustAssessor(lists, tc.age)
			result := assessor.Assess(context.Background(), tc.domain)

			if result.TrustScore != tc.expectedScore {
				t.Errorf("TrustScore = %d, want %d (issues: %v)", result.TrustScore, tc.expectedScore, result.Issues)
			}
			if tc.expectedIssue != "" && !contains(result.Issues, tc.expectedIssue) {
				t.Errorf("expected issue %q, got %v", tc.expectedIssue, result.Issues)
			}
		})
	}
}

func TestAssessUnknownAgeLeavesNoTrace(t *testing.T) {
	assessor := NewTrustAssessor(DefaultLists(), nil)
	result := assessor.Assess(context.Background(), "somecompany.io")

	if result.DomainAgeDays != nil {
		t.Errorf("DomainAgeDays = %v, want nil when age is unknown", *result.DomainAgeDays)
	}
}
