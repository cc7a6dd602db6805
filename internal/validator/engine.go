package validator

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mailproof/internal/cache"
	"mailproof/internal/models"
)

// DNSChecks is the DNS stage contract. The production implementation
// lives in internal/lookup; tests substitute a fake.
type DNSChecks interface {
	CheckMX(ctx context.Context, domain string) models.MXResult
	CheckSPF(ctx context.Context, domain string) models.SPFResult
	CheckDKIM(ctx context.Context, domain string) models.DKIMResult
	CheckDMARC(ctx context.Context, domain string) models.DMARCResult
}

// SMTPProber drives one handshake probe against a mail exchanger.
type SMTPProber interface {
	Probe(ctx context.Context, email, mxHost string) models.SMTPResult
}

// Options are the caller-controlled knobs for a single verification.
type Options struct {
	PerformSMTPCheck bool `json:"performSmtpCheck"`
}

// Engine sequences the verification stages and assembles the report.
// It holds no per-call state; concurrent Verify calls are independent.
type Engine struct {
	Syntax     *SyntaxValidator
	DNS        DNSChecks
	Prober     SMTPProber
	Trust      *TrustAssessor
	Reputation *ReputationAnalyzer
	Scorer     *RiskScorer

	// Cache holds per-domain DNS findings for the bulk worker path.
	// CacheTTL <= 0 (the default) disables it: single calls always do
	// fresh network work.
	Cache    *cache.Store
	CacheTTL time.Duration
}

func NewEngine(lists *Lists, dns DNSChecks, prober SMTPProber) *Engine {
	return &Engine{
		Syntax:     NewSyntaxValidator(lists),
		DNS:        dns,
		Prober:     prober,
		Trust:      NewTrustAssessor(lists, nil),
		Reputation: NewReputationAnalyzer(nil, nil),
		Scorer:     NewRiskScorer(DefaultWeights(), DefaultThresholds()),
	}
}

// Verify runs the full pipeline for one address. It always returns a
// well-formed report: stage faults degrade the report, they never
// propagate. The address is not retained after the call returns.
func (e *Engine) Verify(ctx context.Context, email string, opts Options) (report models.VerificationReport) {
	start := time.Now()

	report = models.VerificationReport{
		VerificationID: "ev_" + uuid.NewString(),
		Email:          strings.ToLower(strings.TrimSpace(email)),
		Timestamp:      time.Now().UTC(),
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Verification %s panicked: %v", report.VerificationID, r)
			report.Error = "Verification process encountered an error"
			report.Summary = models.Summary{
				IsValid:   false,
				RiskLevel: models.RiskUnknown,
				Outcome:   models.OutcomeError,
				Reason:    "Verification process encountered an error",
			}
		}
		report.ProcessingTimeMs = time.Since(start).Milliseconds()
	}()

	// Stage 1: syntax. A hard reject short-circuits everything else.
	report.Steps.Syntax = e.Syntax.Validate(email)
	if !report.Steps.Syntax.IsValid {
		report.Summary = models.Summary{
			IsValid:   false,
			RiskLevel: models.RiskHigh,
			RiskScore: e.Scorer.Weights.InvalidSyntax,
			Outcome:   models.OutcomeReject,
			Reason:    strings.Join(report.Steps.Syntax.Errors, "; "),
		}
		return report
	}

	domain := report.Steps.Syntax.Domain

	// Stage 2: the four DNS lookups, concurrently.
	findings := e.lookupDNS(ctx, domain)
	report.Steps.MX = &findings.MX
	report.Steps.SPF = &findings.SPF
	report.Steps.DKIM = &findings.DKIM
	report.Steps.DMARC = &findings.DMARC

	// Stage 3: domain trust.
	trust := e.Trust.Assess(ctx, domain)
	report.Steps.DomainTrust = &trust

	// Stage 4: SMTP probe, only when opted in and an MX exists.
	if opts.PerformSMTPCheck && e.Prober != nil && findings.MX.HasMX {
		probe := e.Prober.Probe(ctx, report.Email, findings.MX.Records[0].Host)
		report.Steps.SMTP = &probe
	} else {
		report.Steps.SMTP = &models.SMTPResult{
			Skipped:    true,
			SkipReason: "SMTP check disabled or no MX records",
		}
	}

	// Stage 5: reputation.
	reputation := e.Reputation.Analyze(ctx, report.Email, domain)
	report.Steps.Reputation = &reputation

	// Stage 6: scoring and summary.
	risk := e.Scorer.Calculate(report.Steps)
	report.RiskAssessment = &risk

	top := make([]string, 0, 3)
	for _, f := range risk.Factors {
		if len(top) == 3 {
			break
		}
		top = append(top, f.Factor)
	}

	report.Summary = models.Summary{
		IsValid:        risk.Outcome != models.OutcomeReject,
		RiskLevel:      risk.Level,
		RiskScore:      risk.Score,
		Outcome:        risk.Outcome,
		Recommendation: risk.Recommendation,
		TopRiskFactors: top,
	}

	return report
}

// lookupDNS fans out the MX, SPF, DKIM and DMARC lookups and joins the
// results. Each lookup fails independently; none of them can abort a
// sibling. Findings are cached per domain only when CacheTTL is set.
func (e *Engine) lookupDNS(ctx context.Context, domain string) models.DNSFindings {
	cacheKey := "dns:" + domain
	if e.Cache != nil && e.CacheTTL > 0 {
		if cached, ok := e.Cache.Get(cacheKey); ok {
			return cached.(models.DNSFindings)
		}
	}

	var findings models.DNSFindings
	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(4)
	go func() {
		defer wg.Done()
		r := e.DNS.CheckMX(ctx, domain)
		mu.Lock()
		findings.MX = r
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		r := e.DNS.CheckSPF(ctx, domain)
		mu.Lock()
		findings.SPF = r
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		r := e.DNS.CheckDKIM(ctx, domain)
		mu.Lock()
		findings.DKIM = r
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		r := e.DNS.CheckDMARC(ctx, domain)
		mu.Lock()
		findings.DMARC = r
		mu.Unlock()
	}()
	wg.Wait()

	if e.Cache != nil && e.CacheTTL > 0 {
		e.Cache.Set(cacheKey, findings, e.CacheTTL)
	}

	return findings
}
