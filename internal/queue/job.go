package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// KindTelegramUpdate is the kind of jobs carrying a raw Telegram update
const KindTelegramUpdate = "telegram_update"

// Job is one unit of work handed from the webhook to the worker pool
type Job struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	UpdateID   int             `json:"update_id"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	Attempts   int             `json:"attempts"`
}

// NewJob creates a job with a fresh id. The payload is copied.
func NewJob(kind string, updateID int, payload []byte) *Job {
	body := make(json.RawMessage, len(payload))
	copy(body, payload)

	return &Job{
		ID:         uuid.New().String(),
		Kind:       kind,
		UpdateID:   updateID,
		Payload:    body,
		EnqueuedAt: time.Now(),
	}
}
