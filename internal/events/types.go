package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics
const (
	TopicMessageReceived  = "message.received"
	TopicQuestionAnswered = "question.answered"
	TopicAIDelegated      = "ai.delegated"
	TopicJobFailed        = "job.failed"
)

// Event represents the base event structure with common fields
type Event struct {
	CorrelationID string    `json:"correlation_id" validate:"required"`
	Timestamp     time.Time `json:"timestamp" validate:"required"`
}

// NewEvent creates a new base event with generated correlation ID
func NewEvent() Event {
	return Event{
		CorrelationID: uuid.New().String(),
		Timestamp:     time.Now(),
	}
}

// Update types carried by MessageReceived
const (
	UpdateText     = "text"
	UpdateCallback = "callback"
	UpdateStart    = "start"
)

// MessageReceived is published for every inbound update accepted by the bot
type MessageReceived struct {
	Event
	ChatID     int64  `json:"chat_id" validate:"required"`
	UserID     int64  `json:"user_id"`
	UpdateType string `json:"update_type" validate:"required"`
	Text       string `json:"text,omitempty"`
}

// QuestionAnswered is published once a reply has been chosen for a text
// message or a menu selection
type QuestionAnswered struct {
	Event
	ChatID  int64    `json:"chat_id" validate:"required"`
	Outcome string   `json:"outcome" validate:"required"` // region, answer, menu, no_match, selection, unknown_selection
	FaqIDs  []string `json:"faq_ids,omitempty"`
	Region  string   `json:"region,omitempty"`
	Score   int      `json:"score"`
}

// AIDelegated is published after every delegation attempt
type AIDelegated struct {
	Event
	ChatID   int64         `json:"chat_id" validate:"required"`
	Provider string        `json:"provider"`
	Model    string        `json:"model"`
	Success  bool          `json:"success"`
	Latency  time.Duration `json:"latency"`
	Error    string        `json:"error,omitempty"`
}

// JobFailed is published when a queued job fails an attempt
type JobFailed struct {
	Event
	JobID    string `json:"job_id" validate:"required"`
	Kind     string `json:"kind" validate:"required"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error"`
	Dropped  bool   `json:"dropped"` // true when no retry will follow
}
