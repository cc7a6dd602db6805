package validator

import (
	"mailproof/internal/models"
)

// Weights are the per-condition penalties the scorer adds up. They are
// configuration, not hard constraints: tune per deployment.
type Weights struct {
	InvalidSyntax     int
	InvalidDomain     int
	DisposableDomain  int
	UnknownDomain     int
	RoleBased         int
	SuspiciousPattern int
	NoMXRecord        int
	SMTPFail          int
	FreeEmail         int
	NoSPF             int
	NoDKIM            int
	NoDMARC           int
	BreachDetected    int
}

func DefaultWeights() Weights {
	return Weights{
		InvalidSyntax:     100,
		InvalidDomain:     25,
		DisposableDomain:  80,
		UnknownDomain:     10,
		RoleBased:         15,
		SuspiciousPattern: 20,
		NoMXRecord:        50,
		SMTPFail:          30,
		FreeEmail:         10,
		NoSPF:             15,
		NoDKIM:            10,
		NoDMARC:           10,
		BreachDetected:    40,
	}
}

// Thresholds map the clamped score onto risk tiers: score <= Low is
// LOW/ACCEPT, score <= Medium is MEDIUM/CHALLENGE, above is HIGH/REJECT.
type Thresholds struct {
	Low    int
	Medium int
}

func DefaultThresholds() Thresholds {
	return Thresholds{Low: 30, Medium: 60}
}

var recommendations = map[models.Outcome]string{
	models.OutcomeAccept:    "Email appears legitimate. Proceed with standard verification.",
	models.OutcomeChallenge: "Email has some risk factors. Consider additional verification (e.g., phone verification, CAPTCHA).",
	models.OutcomeReject:    "Email has high risk indicators. Block or require manual review.",
}

// RiskScorer aggregates every stage output into one weighted score,
// risk tier and recommended action. It is a pure function of its input.
type RiskScorer struct {
	Weights    Weights
	Thresholds Thresholds
}

func NewRiskScorer(weights Weights, thresholds Thresholds) *RiskScorer {
	return &RiskScorer{Weights: weights, Thresholds: thresholds}
}

// Calculate walks the triggered conditions in a fixed order, recording
// each factor with its weight for explainability, then clamps the total
// to [0,100] and maps it to a tier.
func (s *RiskScorer) Calculate(steps models.Steps) models.RiskAssessment {
	score := 0
	factors := []models.RiskFactor{}

	add := func(label string, weight int) {
		score += weight
		factors = append(factors, models.RiskFactor{Factor: label, Weight: weight})
	}

	syntax := steps.Syntax

	if !syntax.IsValid {
		add("Invalid syntax", s.Weights.InvalidSyntax)
	}

	if syntax.IsInvalidDomain {
		add("Invalid domain", s.Weights.InvalidDomain)
	}

	if syntax.IsDisposable {
		add("Disposable domain", s.Weights.DisposableDomain)
	}

	if syntax.IsValid && !syntax.IsKnownProvider && !syntax.IsFreeEmail {
		add("Unknown email domain", s.Weights.UnknownDomain)
	}

	if syntax.IsRoleBased {
		add("Role-based email", s.Weights.RoleBased)
	}

	if syntax.HasSuspiciousPattern {
		add("Suspicious pattern", s.Weights.SuspiciousPattern)
	}

	if steps.MX != nil && !steps.MX.HasMX {
		add("No MX records", s.Weights.NoMXRecord)
	}

	if steps.SMTP != nil && !steps.SMTP.Skipped && !steps.SMTP.IsValid {
		add("SMTP validation failed", s.Weights.SMTPFail)
	}

	if steps.DomainTrust != nil {
		// The disposable penalty may already have been charged by the
		// syntax classifier; never count it twice.
		if steps.DomainTrust.IsDisposable && !syntax.IsDisposable {
			add("Disposable domain", s.Weights.DisposableDomain)
		}
		if steps.DomainTrust.IsFreeEmail {
			add("Free email provider", s.Weights.FreeEmail)
		}
	}

	if steps.SPF != nil && !steps.SPF.HasSPF {
		add("No SPF record", s.Weights.NoSPF)
	}

	if steps.DKIM != nil && !steps.DKIM.HasDKIM {
		add("No DKIM record", s.Weights.NoDKIM)
	}

	if steps.DMARC != nil && !steps.DMARC.HasDMARC {
		add("No DMARC record", s.Weights.NoDMARC)
	}

	if steps.Reputation != nil && steps.Reputation.BreachDetected {
		add("Found in breach database", s.Weights.BreachDetected)
	}

	var level models.RiskLevel
	var outcome models.Outcome
	switch {
	case score <= s.Thresholds.Low:
		level, outcome = models.RiskLow, models.OutcomeAccept
	case score <= s.Thresholds.Medium:
		level, outcome = models.RiskMedium, models.OutcomeChallenge
	default:
		level, outcome = models.RiskHigh, models.OutcomeReject
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return models.RiskAssessment{
		Score:          score,
		Level:          level,
		Outcome:        outcome,
		Factors:        factors,
		Recommendation: recommendations[outcome],
	}
}
