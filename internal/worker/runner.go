package worker

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"mailproof/internal/models"
	"mailproof/internal/queue"
	"mailproof/internal/store"
	"mailproof/internal/validator"
)

// Runner consumes bulk verification tasks from the queue, runs the
// engine with SMTP probing enabled, and folds each outcome into the
// job's aggregate counters. The address and its report are dropped as
// soon as the counters are updated.
type Runner struct {
	Engine  *validator.Engine
	Limiter *RateLimiterManager
}

func NewRunner(engine *validator.Engine) *Runner {
	return &Runner{
		Engine:  engine,
		Limiter: NewRateLimiterManager(),
	}
}

// Start blocks, processing tasks until ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	log.Println("👷 Worker started. Waiting for tasks...")

	for {
		task, err := queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("❌ Queue error: %v", err)
			select {
			case <-time.After(1 * time.Second): // Backoff on error
			case <-ctx.Done():
				return
			}
			continue
		}

		r.process(ctx, task)
	}
}

func (r *Runner) process(ctx context.Context, task queue.Task) {
	if err := r.Limiter.Wait(ctx, domainOf(task.Email)); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("❌ Rate limiter error: %v", err)
		}
		return
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	report := r.Engine.Verify(verifyCtx, task.Email, validator.Options{PerformSMTPCheck: true})
	cancel()

	outcome := models.OutcomeError
	score := 0
	if report.RiskAssessment != nil {
		outcome = report.RiskAssessment.Outcome
		score = report.RiskAssessment.Score
	} else if report.Summary.Outcome != "" {
		outcome = report.Summary.Outcome
		score = report.Summary.RiskScore
	}

	if err := store.RecordOutcome(ctx, task.JobID, outcome, score); err != nil {
		log.Printf("❌ Failed to update job %s: %v", task.JobID, err)
		return
	}

	log.Printf("✅ Processed task for job %s (outcome: %s, score: %d)", task.JobID, outcome, score)
}

func domainOf(email string) string {
	if at := strings.LastIndex(email, "@"); at != -1 {
		return email[at+1:]
	}
	return ""
}
