package validator

import (
	"context"
	"strings"
	"testing"

	"mailproof/internal/models"
)

// fakeDNS serves canned findings for every domain.
type fakeDNS struct {
	mx    models.MXResult
	spf   models.SPFResult
	dkim  models.DKIMResult
	dmarc models.DMARCResult
}

func (f fakeDNS) CheckMX(ctx context.Context, domain string) models.MXResult       { return f.mx }
func (f fakeDNS) CheckSPF(ctx context.Context, domain string) models.SPFResult     { return f.spf }
func (f fakeDNS) CheckDKIM(ctx context.Context, domain string) models.DKIMResult   { return f.dkim }
func (f fakeDNS) CheckDMARC(ctx context.Context, domain string) models.DMARCResult { return f.dmarc }

type fakeProber struct {
	result models.SMTPResult
	calls  int
	lastMX string
}

func (f *fakeProber) Probe(ctx context.Context, email, mxHost string) models.SMTPResult {
	f.calls++
	f.lastMX = mxHost
	return f.result
}

func bareDNS() fakeDNS {
	return fakeDNS{
		mx: models.MXResult{HasMX: true, Records: []models.MXRecord{{Host: "mx1.test.example", Priority: 10}}},
	}
}

func TestVerifySyntaxShortCircuit(t *testing.T) {
	engine := NewEngine(DefaultLists(), bareDNS(), nil)

	report := engine.Verify(context.Background(), "not-an-email", Options{})

	if report.Summary.Outcome != models.OutcomeReject {
		t.Errorf("Outcome = %s, want REJECT", report.Summary.Outcome)
	}
	if report.Summary.RiskLevel != models.RiskHigh {
		t.Errorf("RiskLevel = %s, want HIGH", report.Summary.RiskLevel)
	}
	if report.Summary.RiskScore != DefaultWeights().InvalidSyntax {
		t.Errorf("RiskScore = %d, want %d", report.Summary.RiskScore, DefaultWeights().InvalidSyntax)
	}
	if report.Summary.Reason != "Email must contain @ symbol" {
		t.Errorf("Reason = %q", report.Summary.Reason)
	}
	// No network stages run after a syntax reject.
	if report.Steps.MX != nil || report.Steps.SMTP != nil {
		t.Errorf("expected no DNS/SMTP steps, got MX=%+v SMTP=%+v", report.Steps.MX, report.Steps.SMTP)
	}
	if !strings.HasPrefix(report.VerificationID, "ev_") {
		t.Errorf("VerificationID = %q, want ev_ prefix", report.VerificationID)
	}
	if report.ProcessingTimeMs < 0 {
		t.Errorf("ProcessingTimeMs = %d", report.ProcessingTimeMs)
	}
}

func TestVerifyNormalizesAndChallengesFreeProvider(t *testing.T) {
	// MX present but no SPF/DKIM/DMARC published.
	engine := NewEngine(DefaultLists(), bareDNS(), nil)

	report := engine.Verify(context.Background(), "  USER@GMAIL.COM  ", Options{})

	if report.Email != "user@gmail.com" {
		t.Errorf("Email = %q, want normalized form", report.Email)
	}
	if report.RiskAssessment == nil {
		t.Fatal("RiskAssessment missing")
	}
	if report.RiskAssessment.Score != 45 {
		t.Errorf("Score = %d, want 45 (factors: %+v)", report.RiskAssessment.Score, report.RiskAssessment.Factors)
	}
	if report.Summary.Outcome != models.OutcomeChallenge {
		t.Errorf("Outcome = %s, want CHALLENGE", report.Summary.Outcome)
	}
	if report.Summary.RiskLevel != models.RiskMedium {
		t.Errorf("RiskLevel = %s, want MEDIUM", report.Summary.RiskLevel)
	}
	if !report.Summary.IsValid {
		t.Error("CHALLENGE outcome should still report IsValid")
	}
	if len(report.Summary.TopRiskFactors) == 0 || len(report.Summary.TopRiskFactors) > 3 {
		t.Errorf("TopRiskFactors = %v", report.Summary.TopRiskFactors)
	}
}

func TestVerifyRejectsDisposable(t *testing.T) {
	engine := NewEngine(DefaultLists(), bareDNS(), nil)

	report := engine.Verify(context.Background(), "a@mailinator.com", Options{})

	if report.Summary.Outcome != models.OutcomeReject {
		t.Errorf("Outcome = %s, want REJECT", report.Summary.Outcome)
	}
	if report.Summary.Reason != "Disposable email addresses are not allowed" {
		t.Errorf("Reason = %q", report.Summary.Reason)
	}
	if !report.Steps.Syntax.IsDisposable {
		t.Error("syntax step should flag disposable")
	}
}

func TestVerifySMTPGating(t *testing.T) {
	t.Run("Disabled By Default", func(t *testing.T) {
		prober := &fakeProber{}
		engine := NewEngine(DefaultLists(), bareDNS(), prober)

		report := engine.Verify(context.Background(), "user@gmail.com", Options{})

		if prober.calls != 0 {
			t.Errorf("prober called %d times, want 0", prober.calls)
		}
		if report.Steps.SMTP == nil || !report.Steps.SMTP.Skipped {
			t.Fatalf("SMTP step = %+v, want skipped", report.Steps.SMTP)
		}
		if report.Steps.SMTP.SkipReason != "SMTP check disabled or no MX records" {
			t.Errorf("SkipReason = %q", report.Steps.SMTP.SkipReason)
		}
	})

	t.Run("Skipped Without MX", func(t *testing.T) {
		prober := &fakeProber{}
		dns := fakeDNS{mx: models.MXResult{Error: "No MX records found"}}
		engine := NewEngine(DefaultLists(), dns, prober)

		report := engine.Verify(context.Background(), "user@gmail.com", Options{PerformSMTPCheck: true})

		if prober.calls != 0 {
			t.Errorf("prober called %d times, want 0", prober.calls)
		}
		if report.Steps.SMTP == nil || !report.Steps.SMTP.Skipped {
			t.Fatalf("SMTP step = %+v, want skipped", report.Steps.SMTP)
		}
	})

	t.Run("Probes Lowest Priority MX", func(t *testing.T) {
		prober := &fakeProber{result: models.SMTPResult{IsValid: true, CanConnect: true, AcceptsRecipient: true}}
		engine := NewEngine(DefaultLists(), bareDNS(), prober)

		report := engine.Verify(context.Background(), "user@gmail.com", Options{PerformSMTPCheck: true})

		if prober.calls != 1 {
			t.Fatalf("prober called %d times, want 1", prober.calls)
		}
		if prober.lastMX != "mx1.test.example" {
			t.Errorf("probed %q, want mx1.test.example", prober.lastMX)
		}
		if !report.Steps.SMTP.AcceptsRecipient {
			t.Errorf("SMTP step = %+v", report.Steps.SMTP)
		}
	})
}

func TestVerifyIsDeterministicPerInput(t *testing.T) {
	engine := NewEngine(DefaultLists(), bareDNS(), nil)

	first := engine.Verify(context.Background(), "user@gmail.com", Options{})
	second := engine.Verify(context.Background(), "user@gmail.com", Options{})

	if first.RiskAssessment.Score != second.RiskAssessment.Score {
		t.Errorf("scores differ across identical calls: %d vs %d", first.RiskAssessment.Score, second.RiskAssessment.Score)
	}
	if first.VerificationID == second.VerificationID {
		t.Error("verification IDs must be unique per call")
	}
}
