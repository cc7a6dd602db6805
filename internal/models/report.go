package models

import "time"

type RiskLevel string
type Outcome string

const (
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
	RiskUnknown RiskLevel = "UNKNOWN"

	OutcomeAccept    Outcome = "ACCEPT"
	OutcomeChallenge Outcome = "CHALLENGE"
	OutcomeReject    Outcome = "REJECT"
	OutcomeError     Outcome = "ERROR"
)

// SyntaxResult is the outcome of the structural validation stage.
// Errors are hard rejects; warnings only raise the risk score later.
type SyntaxResult struct {
	IsValid              bool     `json:"isValid"`
	LocalPart            string   `json:"localPart"`
	Domain               string   `json:"domain"`
	Errors               []string `json:"errors"`
	Warnings             []string `json:"warnings"`
	IsRoleBased          bool     `json:"isRoleBased"`
	HasSuspiciousPattern bool     `json:"hasSuspiciousPattern"`
	IsKnownProvider      bool     `json:"isKnownProvider"`
	IsInvalidDomain      bool     `json:"isInvalidDomain"`
	IsFreeEmail          bool     `json:"isFreeEmail"`
	IsDisposable         bool     `json:"isDisposable"`
}

// MXRecord holds the simplified result of an MX lookup.
type MXRecord struct {
	Host     string `json:"host"`
	Priority uint16 `json:"priority"`
}

type MXResult struct {
	HasMX   bool       `json:"hasMx"`
	Records []MXRecord `json:"mxRecords"`
	Error   string     `json:"error,omitempty"`
}

type SPFResult struct {
	HasSPF bool   `json:"hasSpf"`
	Record string `json:"spfRecord,omitempty"`
	Error  string `json:"error,omitempty"`
}

type DKIMResult struct {
	HasDKIM  bool   `json:"hasDkim"`
	Selector string `json:"selector,omitempty"`
	Error    string `json:"error,omitempty"`
}

type DMARCResult struct {
	HasDMARC bool   `json:"hasDmarc"`
	Record   string `json:"dmarcRecord,omitempty"`
	Policy   string `json:"policy,omitempty"`
	Error    string `json:"error,omitempty"`
}

// DNSFindings groups the four independent DNS sub-results. Each one is
// best effort: a failed lookup records its error and leaves the boolean
// false, it never aborts the siblings.
type DNSFindings struct {
	MX    MXResult    `json:"mx"`
	SPF   SPFResult   `json:"spf"`
	DKIM  DKIMResult  `json:"dkim"`
	DMARC DMARCResult `json:"dmarc"`
}

// SMTPResult captures one transient probe dialogue against a mail
// exchanger. It is never a record of a delivered message.
type SMTPResult struct {
	Skipped          bool   `json:"skipped,omitempty"`
	SkipReason       string `json:"reason,omitempty"`
	IsValid          bool   `json:"isValid"`
	CanConnect       bool   `json:"canConnect"`
	AcceptsRecipient bool   `json:"acceptsRecipient"`
	Error            string `json:"error,omitempty"`
	Response         string `json:"smtpResponse,omitempty"`
}

type TrustResult struct {
	IsDisposable  bool     `json:"isDisposable"`
	IsFreeEmail   bool     `json:"isFreeEmail"`
	IsTrusted     bool     `json:"isTrusted"`
	DomainAgeDays *int     `json:"domainAge"`
	TrustScore    int      `json:"trustScore"`
	Issues        []string `json:"issues"`
}

type ReputationResult struct {
	BreachDetected  bool     `json:"breachDetected"`
	BreachCount     int      `json:"breachCount"`
	SpamScore       int      `json:"spamScore"`
	ReputationScore int      `json:"reputationScore"`
	RiskFactors     []string `json:"riskFactors"`
}

// RiskFactor records one triggered scoring condition, in evaluation
// order, so callers can explain the final score.
type RiskFactor struct {
	Factor string `json:"factor"`
	Weight int    `json:"weight"`
}

type RiskAssessment struct {
	Score          int          `json:"score"`
	Level          RiskLevel    `json:"level"`
	Outcome        Outcome      `json:"outcome"`
	Factors        []RiskFactor `json:"factors"`
	Recommendation string       `json:"recommendation"`
}

// Steps collects every stage output for one verification call.
type Steps struct {
	Syntax      SyntaxResult      `json:"syntax"`
	MX          *MXResult         `json:"mx,omitempty"`
	SPF         *SPFResult        `json:"spf,omitempty"`
	DKIM        *DKIMResult       `json:"dkim,omitempty"`
	DMARC       *DMARCResult      `json:"dmarc,omitempty"`
	DomainTrust *TrustResult      `json:"domainTrust,omitempty"`
	SMTP        *SMTPResult       `json:"smtp,omitempty"`
	Reputation  *ReputationResult `json:"reputation,omitempty"`
}

type Summary struct {
	IsValid        bool      `json:"isValid"`
	RiskLevel      RiskLevel `json:"riskLevel"`
	RiskScore      int       `json:"riskScore"`
	Outcome        Outcome   `json:"outcome"`
	Recommendation string    `json:"recommendation,omitempty"`
	TopRiskFactors []string  `json:"topRiskFactors,omitempty"`
	Reason         string    `json:"reason,omitempty"`
}

// VerificationReport is the root aggregate of one Verify call. It is
// assembled in memory, returned, and discarded: the address is not
// retained anywhere after the call completes.
type VerificationReport struct {
	VerificationID   string          `json:"verificationId"`
	Email            string          `json:"email"`
	Timestamp        time.Time       `json:"timestamp"`
	Steps            Steps           `json:"steps"`
	RiskAssessment   *RiskAssessment `json:"riskAssessment"`
	Summary          Summary         `json:"summary"`
	ProcessingTimeMs int64           `json:"processingTime"`
	Error            string          `json:"error,omitempty"`
}
