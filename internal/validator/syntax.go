package validator

import (
	"regexp"
	"strings"

	"mailproof/internal/models"
)

// RFC 5322 address pattern, including quoted local parts and IP-literal
// domains. The input is normalized to lowercase before matching.
var emailPattern = regexp.MustCompile("^(?:[a-z0-9!#$%&'*+/=?^_`{|}~-]+(?:\\.[a-z0-9!#$%&'*+/=?^_`{|}~-]+)*|\"(?:[\\x01-\\x08\\x0b\\x0c\\x0e-\\x1f\\x21\\x23-\\x5b\\x5d-\\x7f]|\\\\[\\x01-\\x09\\x0b\\x0c\\x0e-\\x7f])*\")@(?:(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?|\\[(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?|[a-z0-9-]*[a-z0-9]:(?:[\\x01-\\x08\\x0b\\x0c\\x0e-\\x1f\\x21-\\x5a\\x53-\\x7f]|\\\\[\\x01-\\x09\\x0b\\x0c\\x0e-\\x7f])+)\\])$")

var domainLabelPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// Local parts that signal throwaway or machine-generated addresses.
var suspiciousPrefixes = []string{"test", "temp", "fake", "xxx", "aaa", "abc", "asdf", "qwerty"}

var allDigitsPattern = regexp.MustCompile(`^[0-9]+$`)

// SyntaxValidator grades an address string structurally and classifies
// its domain against the membership tables. It does no network I/O.
type SyntaxValidator struct {
	Lists *Lists
}

func NewSyntaxValidator(lists *Lists) *SyntaxValidator {
	return &SyntaxValidator{Lists: lists}
}

// Validate normalizes the input and returns the graded result. A
// populated Errors slice means a hard reject; Warnings are advisory.
func (v *SyntaxValidator) Validate(raw string) models.SyntaxResult {
	result := models.SyntaxResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	email := strings.ToLower(strings.TrimSpace(raw))

	if email == "" {
		result.Errors = append(result.Errors, "Email address is required")
		return result
	}

	if len(email) > 254 {
		result.Errors = append(result.Errors, "Email address exceeds maximum length (254 characters)")
		return result
	}

	atIndex := strings.Index(email, "@")
	if atIndex == -1 {
		result.Errors = append(result.Errors, "Email must contain @ symbol")
		return result
	}

	result.LocalPart = email[:atIndex]
	result.Domain = email[atIndex+1:]

	if len(result.LocalPart) > 64 {
		result.Errors = append(result.Errors, "Local part exceeds maximum length (64 characters)")
		return result
	}

	if result.Domain == "" || len(result.Domain) < 3 || !strings.Contains(result.Domain, ".") {
		result.Errors = append(result.Errors, "Invalid domain")
		return result
	}

	if !emailPattern.MatchString(email) {
		result.Errors = append(result.Errors, "Email format does not comply with RFC 5322")
		return result
	}

	check := v.classifyDomain(result.Domain)
	if !check.valid {
		result.IsInvalidDomain = true
		switch check.reason {
		case "blacklisted":
			result.Errors = append(result.Errors, "This domain does not accept emails")
		case "disposable":
			result.IsDisposable = true
			result.Errors = append(result.Errors, "Disposable email addresses are not allowed")
		case "too_short":
			result.Errors = append(result.Errors, "Invalid domain name (too short)")
		case "invalid_structure":
			result.Errors = append(result.Errors, "Invalid domain structure")
		default:
			result.Errors = append(result.Errors, "Unrecognized or invalid email domain")
		}
		return result
	}

	result.IsKnownProvider = check.isKnown
	result.IsFreeEmail = v.Lists.IsFree(result.Domain)

	result.IsRoleBased = v.isRoleBased(result.LocalPart)
	if result.IsRoleBased {
		result.Warnings = append(result.Warnings, "Role-based email addresses are less reliable")
	}

	result.HasSuspiciousPattern = hasSuspiciousPattern(result.LocalPart)
	if result.HasSuspiciousPattern {
		result.Warnings = append(result.Warnings, "Email contains suspicious patterns")
	}

	if !result.IsKnownProvider {
		result.Warnings = append(result.Warnings, "Unknown email domain - requires MX verification")
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// classifyDomain applies the membership tables and the structural check
// in order: recognized providers win, blocklists reject, and unknown
// domains must look plausible (common TLD, second-level label >= 3).
func (v *SyntaxValidator) classifyDomain(domain string) domainCheck {
	if v.Lists.IsKnownProvider(domain) {
		return domainCheck{class: DomainKnownProvider, valid: true, isKnown: true}
	}

	if _, blocked := v.Lists.Invalid[domain]; blocked {
		return domainCheck{class: DomainBlacklisted, reason: "blacklisted"}
	}

	if v.Lists.IsDisposable(domain) {
		return domainCheck{class: DomainDisposable, reason: "disposable"}
	}

	if !hasValidDomainStructure(domain) {
		return domainCheck{class: DomainImplausible, reason: "invalid_structure"}
	}

	parts := strings.Split(domain, ".")
	tld := parts[len(parts)-1]
	tldCombo := ""
	if len(parts) > 2 {
		tldCombo = strings.Join(parts[len(parts)-2:], ".")
	}

	_, tldOK := v.Lists.CommonTLDs[tld]
	_, comboOK := v.Lists.CommonTLDs[tldCombo]
	if tldOK || comboOK {
		// Reject single-letter vanity names like a.com; legitimate mail
		// domains are longer.
		if len(parts[len(parts)-2]) < 3 {
			return domainCheck{class: DomainImplausible, reason: "too_short"}
		}
		return domainCheck{class: DomainPlausible, valid: true}
	}

	return domainCheck{class: DomainImplausible, reason: "unknown_tld"}
}

func hasValidDomainStructure(domain string) bool {
	if !strings.Contains(domain, ".") {
		return false
	}

	parts := strings.Split(domain, ".")
	if len(parts) < 2 {
		return false
	}

	for _, part := range parts {
		if part == "" || !domainLabelPattern.MatchString(part) {
			return false
		}
	}

	if len(parts[len(parts)-1]) < 2 {
		return false
	}
	if len(parts[len(parts)-2]) < 2 {
		return false
	}

	return true
}

func (v *SyntaxValidator) isRoleBased(localPart string) bool {
	for _, prefix := range v.Lists.RolePrefixes {
		if localPart == prefix || strings.HasPrefix(localPart, prefix+".") {
			return true
		}
	}
	return false
}

func hasSuspiciousPattern(localPart string) bool {
	if allDigitsPattern.MatchString(localPart) {
		return true
	}
	for _, prefix := range suspiciousPrefixes {
		if strings.HasPrefix(localPart, prefix) {
			return true
		}
	}
	return hasRepeatedRun(localPart, 5)
}

// hasRepeatedRun reports whether the string contains n or more identical
// consecutive runes. The original pattern used a backreference, which
// RE2 does not support, so the run is counted directly.
func hasRepeatedRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}
