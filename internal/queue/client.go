package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueueName is the Redis list the bulk pipeline runs on.
const QueueName = "mailproof:verify_queue"

// Task is one address to verify on behalf of a bulk job. It lives in
// Redis only until a worker pops it; nothing about it is kept after
// the verification completes.
type Task struct {
	JobID string `json:"jobId"`
	Email string `json:"email"`
}

var Client *redis.Client

// Init connects to Redis and pings it to ensure it's alive.
func Init(addr string) error {
	Client = redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

// Enqueue pushes one task onto the queue.
func Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := Client.RPush(ctx, QueueName, payload).Err(); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

// Dequeue blocks until a task arrives.
func Dequeue(ctx context.Context) (Task, error) {
	var task Task

	result, err := Client.BLPop(ctx, 0*time.Second, QueueName).Result()
	if err != nil {
		return task, err
	}

	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return task, fmt.Errorf("malformed task %q: %w", result[1], err)
	}
	return task, nil
}
