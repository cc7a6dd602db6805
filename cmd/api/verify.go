package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"mailproof/internal/models"
	"mailproof/internal/validator"
)

type verifyRequest struct {
	Email   string            `json:"email"`
	Options validator.Options `json:"options"`
}

type verifyResponse struct {
	Success      bool                  `json:"success"`
	Verification *verificationEnvelope `json:"verification,omitempty"`
	Error        string                `json:"error,omitempty"`
}

// verificationEnvelope is the sanitized slice of the report exposed to
// clients: no address echo and no raw step outputs.
type verificationEnvelope struct {
	ID               string                 `json:"id"`
	Timestamp        time.Time              `json:"timestamp"`
	Summary          models.Summary         `json:"summary"`
	RiskAssessment   *models.RiskAssessment `json:"riskAssessment"`
	ProcessingTimeMs int64                  `json:"processingTime"`
}

func verifyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, verifyResponse{Error: "Invalid JSON body"})
		return
	}

	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, verifyResponse{Error: "Email is required"})
		return
	}

	report := engine.Verify(r.Context(), req.Email, req.Options)
	writeJSON(w, http.StatusOK, verifyResponse{
		Success: true,
		Verification: &verificationEnvelope{
			ID:               report.VerificationID,
			Timestamp:        report.Timestamp,
			Summary:          report.Summary,
			RiskAssessment:   report.RiskAssessment,
			ProcessingTimeMs: report.ProcessingTimeMs,
		},
	})
}

type quickResponse struct {
	Success  bool     `json:"success"`
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Error    string   `json:"error,omitempty"`
}

// quickHandler runs the syntax stage only. No network work happens, so
// it is safe to call on every keystroke of a signup form.
func quickHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSON(w, http.StatusBadRequest, quickResponse{Error: "Email parameter is required"})
		return
	}

	syntax := engine.Syntax.Validate(email)
	writeJSON(w, http.StatusOK, quickResponse{
		Success:  true,
		IsValid:  syntax.IsValid,
		Errors:   syntax.Errors,
		Warnings: syntax.Warnings,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("❌ Error encoding response: %v", err)
	}
}
