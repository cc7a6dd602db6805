package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"mailproof/internal/queue"
	"mailproof/internal/store"
)

type bulkResponse struct {
	JobID     string `json:"job_id"`
	TotalRows int    `json:"total_rows"`
	Message   string `json:"message"`
}

// bulkHandler accepts a CSV of addresses (one per row, first column)
// and fans them out as queue tasks. The addresses live only in Redis
// until a worker consumes them.
func bulkHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !bulkEnabled {
		http.Error(w, "Bulk verification is not configured on this server", http.StatusServiceUnavailable)
		return
	}

	// Max 10MB
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "File too large or malformed", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing 'file' parameter in form data", http.StatusBadRequest)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	var emails []string

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			http.Error(w, "Invalid CSV format", http.StatusBadRequest)
			return
		}

		if len(record) > 0 && record[0] != "" {
			emails = append(emails, record[0])
		}
	}

	if len(emails) == 0 {
		http.Error(w, "CSV is empty", http.StatusBadRequest)
		return
	}

	jobID := uuid.New().String()
	ctx := r.Context()

	if err := store.CreateJob(ctx, jobID, len(emails)); err != nil {
		log.Printf("❌ Failed to create job: %v", err)
		http.Error(w, "Failed to create job", http.StatusInternalServerError)
		return
	}

	enqueued := 0
	for _, email := range emails {
		if err := queue.Enqueue(ctx, queue.Task{JobID: jobID, Email: email}); err != nil {
			log.Printf("❌ Failed to enqueue task for job %s: %v", jobID, err)
			continue
		}
		enqueued++
	}

	w.Header().Set("Content-Type", "application/json")
	resp := bulkResponse{
		JobID:     jobID,
		TotalRows: enqueued,
		Message:   "Job created successfully. Processing started.",
	}
	json.NewEncoder(w).Encode(resp)
}
