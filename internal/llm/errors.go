package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// LLMError defines the interface for LLM-specific errors
type LLMError interface {
	error
	Code() string    // Error code for categorization
	Message() string // Human-readable error message
	Temporary() bool // Whether the error is temporary and retryable
}

// ErrEmptyCompletion is returned when the model produced no text
var ErrEmptyCompletion = errors.New("llm returned an empty completion")

// ErrDisabled is returned by Ask when delegation is switched off
var ErrDisabled = errors.New("llm delegation is disabled")

// APIError represents an error status returned by the completion API
type APIError struct {
	HTTPStatus int    `json:"http_status"`
	ErrorCode  string `json:"error_code"`
	ErrorMsg   string `json:"error_message"`
	Details    string `json:"details"`
	Retryable  bool   `json:"retryable"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s - %s", e.HTTPStatus, e.ErrorCode, e.ErrorMsg)
}

func (e APIError) Code() string {
	return e.ErrorCode
}

func (e APIError) Message() string {
	return e.ErrorMsg
}

func (e APIError) Temporary() bool {
	return e.Retryable
}

// NetworkError represents connection and timeout issues
type NetworkError struct {
	Operation string `json:"operation"`
	ErrorMsg  string `json:"error_message"`
	Wrapped   error  `json:"-"`
}

func (e NetworkError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("network error during %s: %s (wrapped: %v)", e.Operation, e.ErrorMsg, e.Wrapped)
	}
	return fmt.Sprintf("network error during %s: %s", e.Operation, e.ErrorMsg)
}

func (e NetworkError) Code() string {
	return "NETWORK_ERROR"
}

func (e NetworkError) Message() string {
	return e.ErrorMsg
}

func (e NetworkError) Temporary() bool {
	return true
}

func (e NetworkError) Unwrap() error {
	return e.Wrapped
}

// ResponseError represents a reply body the provider could not interpret
type ResponseError struct {
	ErrorMsg string `json:"error_message"`
	Details  string `json:"details"`
	Wrapped  error  `json:"-"`
}

func (e ResponseError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("invalid completion response: %s (%s)", e.ErrorMsg, e.Details)
	}
	return fmt.Sprintf("invalid completion response: %s", e.ErrorMsg)
}

func (e ResponseError) Code() string {
	return ErrorCodeInvalidResponse
}

func (e ResponseError) Message() string {
	return e.ErrorMsg
}

func (e ResponseError) Temporary() bool {
	return false
}

func (e ResponseError) Unwrap() error {
	return e.Wrapped
}

// ConfigurationError represents invalid configuration
type ConfigurationError struct {
	Field    string `json:"field"`
	ErrorMsg string `json:"error_message"`
	Details  string `json:"details"`
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for field '%s': %s", e.Field, e.ErrorMsg)
}

func (e ConfigurationError) Code() string {
	return "CONFIGURATION_ERROR"
}

func (e ConfigurationError) Message() string {
	return e.ErrorMsg
}

func (e ConfigurationError) Temporary() bool {
	return false
}

// RateLimitError represents rate limiting, either by the API or by the
// per-chat limiter in front of it
type RateLimitError struct {
	RetryAfter int    `json:"retry_after_seconds"`
	ErrorMsg   string `json:"error_message"`
	Local      bool   `json:"local"`
}

func (e RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %s (retry after %d seconds)", e.ErrorMsg, e.RetryAfter)
}

func (e RateLimitError) Code() string {
	return "RATE_LIMIT_EXCEEDED"
}

func (e RateLimitError) Message() string {
	return e.ErrorMsg
}

// Temporary reports whether waiting and retrying can help. Local limits
// are never retried: the chat simply gets the fallback reply.
func (e RateLimitError) Temporary() bool {
	return !e.Local
}

// NewAPIError creates a new API error with appropriate retry logic
func NewAPIError(httpStatus int, errorCode, message, details string) APIError {
	return APIError{
		HTTPStatus: httpStatus,
		ErrorCode:  errorCode,
		ErrorMsg:   message,
		Details:    details,
		Retryable:  isRetryableHTTPStatus(httpStatus),
	}
}

// NewNetworkError creates a new network error
func NewNetworkError(operation, message string, wrapped error) NetworkError {
	return NetworkError{
		Operation: operation,
		ErrorMsg:  message,
		Wrapped:   wrapped,
	}
}

// NewResponseError creates a new response error
func NewResponseError(message, details string, wrapped error) ResponseError {
	return ResponseError{
		ErrorMsg: message,
		Details:  details,
		Wrapped:  wrapped,
	}
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(field, message, details string) ConfigurationError {
	return ConfigurationError{
		Field:    field,
		ErrorMsg: message,
		Details:  details,
	}
}

// NewRateLimitError creates a new rate limit error
func NewRateLimitError(retryAfter int, message string) RateLimitError {
	return RateLimitError{
		RetryAfter: retryAfter,
		ErrorMsg:   message,
	}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var llmErr LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Temporary()
	}
	return false
}

// IsTemporary is an alias for IsRetryable for consistency with standard library
func IsTemporary(err error) bool {
	return IsRetryable(err)
}

// IsRateLimited reports whether err is a RateLimitError
func IsRateLimited(err error) bool {
	var target RateLimitError
	return errors.As(err, &target)
}

// isRetryableHTTPStatus determines if an HTTP status code indicates a retryable error
func isRetryableHTTPStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, // 429
		http.StatusInternalServerError, // 500
		http.StatusBadGateway,          // 502
		http.StatusServiceUnavailable,  // 503
		http.StatusGatewayTimeout:      // 504
		return true
	default:
		return false
	}
}

// errorForStatus maps an HTTP status from any provider to a typed error
func errorForStatus(statusCode int, errorCode, detail string) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return NewAPIError(statusCode, ErrorCodeInvalidAPIKey, "Invalid API key", detail)
	case http.StatusPaymentRequired, http.StatusForbidden:
		return NewAPIError(statusCode, ErrorCodeInsufficientQuota, "Insufficient quota or permissions", detail)
	case http.StatusNotFound:
		return NewAPIError(statusCode, ErrorCodeModelNotFound, "Model not found", detail)
	case http.StatusRequestEntityTooLarge:
		return NewAPIError(statusCode, ErrorCodeRequestTooLarge, "Request too large", detail)
	case http.StatusTooManyRequests:
		return NewRateLimitError(60, detail)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return NewAPIError(statusCode, ErrorCodeServiceUnavailable, "Service unavailable", detail)
	default:
		if errorCode == "" {
			errorCode = ErrorCodeUnknown
		}
		return NewAPIError(statusCode, errorCode, detail, detail)
	}
}

// Error constants for common scenarios
const (
	ErrorCodeInvalidAPIKey      = "INVALID_API_KEY"
	ErrorCodeModelNotFound      = "MODEL_NOT_FOUND"
	ErrorCodeInsufficientQuota  = "INSUFFICIENT_QUOTA"
	ErrorCodeRequestTooLarge    = "REQUEST_TOO_LARGE"
	ErrorCodeInvalidResponse    = "INVALID_RESPONSE"
	ErrorCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrorCodeUnknown            = "UNKNOWN_ERROR"
)
