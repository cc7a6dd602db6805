package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mailproof/internal/models"
)

var DB *pgxpool.Pool

// Job tracks the progress of one bulk verification batch. Only
// aggregate counters are stored: no addresses and no per-address
// results ever touch the database.
type Job struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	TotalCount      int        `json:"total_count"`
	ProcessedCount  int        `json:"processed_count"`
	AcceptedCount   int        `json:"accepted_count"`
	ChallengedCount int        `json:"challenged_count"`
	RejectedCount   int        `json:"rejected_count"`
	ScoreSum        int64      `json:"-"`
	AverageScore    float64    `json:"average_score"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// Init connects to Postgres and runs migrations.
func Init(connString string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	DB, err = pgxpool.New(ctx, connString)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := DB.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return runMigrations(ctx)
}

func runMigrations(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		total_count INT DEFAULT 0,
		processed_count INT DEFAULT 0,
		accepted_count INT DEFAULT 0,
		challenged_count INT DEFAULT 0,
		rejected_count INT DEFAULT 0,
		score_sum BIGINT DEFAULT 0,
		created_at TIMESTAMP DEFAULT NOW(),
		completed_at TIMESTAMP
	);`

	if _, err := DB.Exec(ctx, query); err != nil {
		return fmt.Errorf("migration failed (jobs): %w", err)
	}
	return nil
}

// CreateJob inserts a pending job with its expected task count.
func CreateJob(ctx context.Context, id string, total int) error {
	query := `INSERT INTO jobs (id, status, total_count, created_at) VALUES ($1, 'pending', $2, $3)`
	if _, err := DB.Exec(ctx, query, id, total, time.Now()); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// RecordOutcome folds one verification outcome into the job's
// aggregate counters and marks the job completed when the last task
// lands.
func RecordOutcome(ctx context.Context, jobID string, outcome models.Outcome, score int) error {
	query := `
		UPDATE jobs
		SET processed_count = processed_count + 1,
		    accepted_count = accepted_count + CASE WHEN $2 = 'ACCEPT' THEN 1 ELSE 0 END,
		    challenged_count = challenged_count + CASE WHEN $2 = 'CHALLENGE' THEN 1 ELSE 0 END,
		    rejected_count = rejected_count + CASE WHEN $2 = 'REJECT' THEN 1 ELSE 0 END,
		    score_sum = score_sum + $3,
		    status = CASE
		        WHEN processed_count + 1 >= total_count THEN 'completed'
		        ELSE 'processing'
		    END,
		    completed_at = CASE
		        WHEN processed_count + 1 >= total_count THEN NOW()
		        ELSE completed_at
		    END
		WHERE id = $1
	`
	if _, err := DB.Exec(ctx, query, jobID, string(outcome), score); err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// GetJob loads one job's progress and aggregate counters.
func GetJob(ctx context.Context, id string) (Job, error) {
	var job Job

	query := `
		SELECT id, status, total_count, processed_count,
		       accepted_count, challenged_count, rejected_count,
		       score_sum, created_at, completed_at
		FROM jobs
		WHERE id = $1
	`
	err := DB.QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.Status,
		&job.TotalCount,
		&job.ProcessedCount,
		&job.AcceptedCount,
		&job.ChallengedCount,
		&job.RejectedCount,
		&job.ScoreSum,
		&job.CreatedAt,
		&job.CompletedAt,
	)
	if err != nil {
		return job, err
	}

	if job.ProcessedCount > 0 {
		job.AverageScore = float64(job.ScoreSum) / float64(job.ProcessedCount)
	}
	return job, nil
}
