package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mailproof/internal/config"
	"mailproof/internal/models"
	"mailproof/internal/validator"
)

type stubDNS struct{}

func (stubDNS) CheckMX(ctx context.Context, domain string) models.MXResult {
	return models.MXResult{HasMX: true, Records: []models.MXRecord{{Host: "mx.stub.example", Priority: 10}}}
}
func (stubDNS) CheckSPF(ctx context.Context, domain string) models.SPFResult     { return models.SPFResult{} }
func (stubDNS) CheckDKIM(ctx context.Context, domain string) models.DKIMResult   { return models.DKIMResult{} }
func (stubDNS) CheckDMARC(ctx context.Context, domain string) models.DMARCResult { return models.DMARCResult{} }

func setupTestGlobals(t *testing.T) {
	t.Helper()
	engine = validator.NewEngine(validator.DefaultLists(), stubDNS{}, nil)
	cfg = &config.Config{APISecretKey: "test-secret"}
}

func TestVerifyHandler(t *testing.T) {
	setupTestGlobals(t)

	t.Run("Rejects Non-POST", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/verify-email", nil)
		rec := httptest.NewRecorder()

		verifyHandler(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("Missing Email", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/verify-email", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		verifyHandler(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp verifyResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Success || resp.Error != "Email is required" {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("Full Verification", func(t *testing.T) {
		body := `{"email": "USER@GMAIL.COM", "options": {"performSmtpCheck": false}}`
		req := httptest.NewRequest(http.MethodPost, "/api/verify-email", strings.NewReader(body))
		rec := httptest.NewRecorder()

		verifyHandler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
		}
		var resp verifyResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !resp.Success || resp.Verification == nil {
			t.Fatalf("response = %+v", resp)
		}
		if !strings.HasPrefix(resp.Verification.ID, "ev_") {
			t.Errorf("id = %q, want ev_ prefix", resp.Verification.ID)
		}
		if resp.Verification.Summary.Outcome != models.OutcomeChallenge {
			t.Errorf("outcome = %s, want CHALLENGE", resp.Verification.Summary.Outcome)
		}
	})

	t.Run("Sanitized Envelope", func(t *testing.T) {
		body := `{"email": "user@gmail.com"}`
		req := httptest.NewRequest(http.MethodPost, "/api/verify-email", strings.NewReader(body))
		rec := httptest.NewRecorder()

		verifyHandler(rec, req)

		var raw struct {
			Verification map[string]json.RawMessage `json:"verification"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
			t.Fatalf("decode: %v", err)
		}

		for _, key := range []string{"id", "timestamp", "summary", "riskAssessment", "processingTime"} {
			if _, ok := raw.Verification[key]; !ok {
				t.Errorf("envelope missing %q (keys: %v)", key, envelopeKeys(raw.Verification))
			}
		}
		// The address and the raw step outputs stay out of the response.
		for _, key := range []string{"email", "steps", "verificationId"} {
			if _, ok := raw.Verification[key]; ok {
				t.Errorf("envelope must not carry %q", key)
			}
		}
	})
}

func envelopeKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func TestQuickHandler(t *testing.T) {
	setupTestGlobals(t)

	t.Run("Missing Parameter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/verify-email/quick", nil)
		rec := httptest.NewRecorder()

		quickHandler(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp quickResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Error != "Email parameter is required" {
			t.Errorf("error = %q", resp.Error)
		}
	})

	t.Run("Syntax Only", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/verify-email/quick?email=admin@company.com", nil)
		rec := httptest.NewRecorder()

		quickHandler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp quickResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !resp.Success || !resp.IsValid {
			t.Errorf("response = %+v", resp)
		}
		if len(resp.Warnings) == 0 {
			t.Error("role-based address should carry a warning")
		}
	})

	t.Run("Invalid Address", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/verify-email/quick?email=not-an-email", nil)
		rec := httptest.NewRecorder()

		quickHandler(rec, req)

		var resp quickResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.IsValid {
			t.Error("IsValid = true for malformed address")
		}
		if len(resp.Errors) == 0 {
			t.Error("expected syntax errors")
		}
	})
}

func TestRequireAPIKey(t *testing.T) {
	setupTestGlobals(t)

	protected := requireAPIKey(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("Valid Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer test-secret")
		rec := httptest.NewRecorder()

		protected(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("Wrong Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		rec := httptest.NewRecorder()

		protected(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("Missing Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		protected(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("Unset Key Locks Down", func(t *testing.T) {
		cfg = &config.Config{}
		defer setupTestGlobals(t)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer anything")
		rec := httptest.NewRecorder()

		protected(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d", rec.Code)
		}
	})
}
