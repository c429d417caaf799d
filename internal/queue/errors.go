package queue

import (
	"errors"
	"fmt"
)

// QueueError defines the interface for queue and worker pool errors
type QueueError interface {
	error
	Code() string
	Message() string
	Temporary() bool
}

type queueError struct {
	code      string
	message   string
	temporary bool
}

func (e *queueError) Error() string {
	return fmt.Sprintf("queue error [%s]: %s", e.code, e.message)
}

func (e *queueError) Code() string {
	return e.code
}

func (e *queueError) Message() string {
	return e.message
}

func (e *queueError) Temporary() bool {
	return e.temporary
}

// Error codes
const (
	ErrCodeQueueClosed          = "queue_closed"
	ErrCodeQueueFull            = "queue_full"
	ErrCodeJobDecodeFailed      = "job_decode_failed"
	ErrCodePoolNotRunning       = "pool_not_running"
	ErrCodePoolAlreadyRunning   = "pool_already_running"
	ErrCodeInvalidConfiguration = "invalid_configuration"
	ErrCodeShutdownTimeout      = "shutdown_timeout"
	ErrCodeWorkerPanic          = "worker_panic"
)

// ErrClosed is returned by queues after Close
var ErrClosed error = &queueError{code: ErrCodeQueueClosed, message: "queue is closed"}

type FullError struct {
	queueError
	Capacity int
}

type DecodeError struct {
	queueError
	Cause error
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

type WorkerError struct {
	queueError
	WorkerID int
	JobID    string
}

type ShutdownError struct {
	queueError
	TimeoutSeconds int
}

type ConfigurationError struct {
	queueError
	Field string
	Value interface{}
}

func NewPoolError(code, message string) error {
	return &queueError{code: code, message: message}
}

func NewFullError(capacity int) error {
	return &FullError{
		queueError: queueError{
			code:      ErrCodeQueueFull,
			message:   fmt.Sprintf("queue is full (capacity %d)", capacity),
			temporary: true,
		},
		Capacity: capacity,
	}
}

func NewDecodeError(err error) error {
	return &DecodeError{
		queueError: queueError{
			code:    ErrCodeJobDecodeFailed,
			message: fmt.Sprintf("failed to decode job: %v", err),
		},
		Cause: err,
	}
}

func NewWorkerPanicError(workerID int, jobID string, recovered interface{}) error {
	return &WorkerError{
		queueError: queueError{
			code:    ErrCodeWorkerPanic,
			message: fmt.Sprintf("worker %d panicked on job %s: %v", workerID, jobID, recovered),
		},
		WorkerID: workerID,
		JobID:    jobID,
	}
}

func NewShutdownError(timeoutSeconds int) error {
	return &ShutdownError{
		queueError: queueError{
			code:      ErrCodeShutdownTimeout,
			message:   fmt.Sprintf("workers did not stop within %ds", timeoutSeconds),
			temporary: true,
		},
		TimeoutSeconds: timeoutSeconds,
	}
}

func NewConfigurationError(field string, value interface{}, message string) error {
	return &ConfigurationError{
		queueError: queueError{
			code:    ErrCodeInvalidConfiguration,
			message: fmt.Sprintf("invalid configuration for %s (%v): %s", field, value, message),
		},
		Field: field,
		Value: value,
	}
}

// IsClosed reports whether err signals a closed queue
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

// IsFull reports whether err signals a full queue
func IsFull(err error) bool {
	var full *FullError
	return errors.As(err, &full)
}

// IsConfigurationError reports whether err is a configuration error
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// IsRetryable reports whether a handler error should put the job back on
// the queue. Any error in the chain exposing Temporary() is consulted.
func IsRetryable(err error) bool {
	var temp interface{ Temporary() bool }
	if errors.As(err, &temp) {
		return temp.Temporary()
	}
	return false
}
