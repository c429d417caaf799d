package chatbot

import (
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChatbotError defines the interface for chatbot-specific errors
type ChatbotError interface {
	error
	Code() string
	Message() string
	Temporary() bool
}

// TelegramAPIError represents errors from Telegram Bot API
type TelegramAPIError struct {
	Operation   string
	StatusCode  int
	APIError    string
	Description string
	RetryAfter  int
	Cause       error
}

func (e TelegramAPIError) Error() string {
	return fmt.Sprintf("telegram API error during %s: %s (status: %d)", e.Operation, e.Description, e.StatusCode)
}

func (e TelegramAPIError) Code() string {
	return "TELEGRAM_API_ERROR"
}

func (e TelegramAPIError) Message() string {
	return e.Description
}

func (e TelegramAPIError) Temporary() bool {
	// Rate limiting and server errors are temporary
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError ||
		e.RetryAfter > 0
}

func (e TelegramAPIError) Unwrap() error {
	return e.Cause
}

// WebhookParsingError represents errors when parsing webhook data
type WebhookParsingError struct {
	UpdateType string
	Details    string
	Cause      error
}

func (e WebhookParsingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("webhook parsing error for %s: %s (caused by: %v)", e.UpdateType, e.Details, e.Cause)
	}
	return fmt.Sprintf("webhook parsing error for %s: %s", e.UpdateType, e.Details)
}

func (e WebhookParsingError) Code() string {
	return "WEBHOOK_PARSING_ERROR"
}

func (e WebhookParsingError) Message() string {
	return e.Details
}

func (e WebhookParsingError) Temporary() bool {
	return false // Parsing errors are typically not temporary
}

func (e WebhookParsingError) Unwrap() error {
	return e.Cause
}

// ConfigurationError represents invalid bot configuration
type ConfigurationError struct {
	Field  string
	Reason string
	Value  string
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for field %s: %s (value: %s)", e.Field, e.Reason, e.Value)
}

func (e ConfigurationError) Code() string {
	return "CONFIGURATION_ERROR"
}

func (e ConfigurationError) Message() string {
	return e.Reason
}

func (e ConfigurationError) Temporary() bool {
	return false // Configuration errors are not temporary
}

// UndeliveredReplyError reports an assistant reply Telegram did not accept.
// It is never temporary: retrying the job would ask the assistant again.
type UndeliveredReplyError struct {
	ChatID int64
	Cause  error
}

func (e UndeliveredReplyError) Error() string {
	return fmt.Sprintf("assistant reply for chat %d not delivered: %v", e.ChatID, e.Cause)
}

func (e UndeliveredReplyError) Code() string {
	return "REPLY_NOT_DELIVERED"
}

func (e UndeliveredReplyError) Message() string {
	return "assistant reply could not be delivered"
}

func (e UndeliveredReplyError) Temporary() bool {
	return false
}

func (e UndeliveredReplyError) Unwrap() error {
	return e.Cause
}

// Error wrapping utilities

// WrapTelegramError converts a telegram-bot-api error into a
// TelegramAPIError. Errors without an API response are transport failures
// and reported as temporary.
func WrapTelegramError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return TelegramAPIError{
			Operation:   operation,
			StatusCode:  apiErr.Code,
			APIError:    GetTelegramErrorCode(apiErr.Code),
			Description: apiErr.Message,
			RetryAfter:  apiErr.RetryAfter,
			Cause:       err,
		}
	}

	return TelegramAPIError{
		Operation:   operation,
		StatusCode:  http.StatusInternalServerError,
		APIError:    "UNKNOWN_ERROR",
		Description: err.Error(),
		Cause:       err,
	}
}

// WrapParsingError wraps an error as a WebhookParsingError
func WrapParsingError(err error, updateType string) error {
	if err == nil {
		return nil
	}

	return WebhookParsingError{
		UpdateType: updateType,
		Details:    "failed to parse webhook data",
		Cause:      err,
	}
}

// NewParsingError creates a WebhookParsingError without an underlying cause
func NewParsingError(updateType, details string) error {
	return WebhookParsingError{
		UpdateType: updateType,
		Details:    details,
	}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(field, reason, value string) error {
	return ConfigurationError{
		Field:  field,
		Reason: reason,
		Value:  value,
	}
}

// Error classification helpers

// IsRetryableError determines if an error should be retried
func IsRetryableError(err error) bool {
	var chatbotErr ChatbotError
	if errors.As(err, &chatbotErr) {
		return chatbotErr.Temporary()
	}
	return false
}

// IsConfigurationError determines if an error is configuration-related
func IsConfigurationError(err error) bool {
	var cfgErr ConfigurationError
	return errors.As(err, &cfgErr)
}

// IsTelegramAPIError determines if an error is from Telegram API
func IsTelegramAPIError(err error) bool {
	var apiErr TelegramAPIError
	return errors.As(err, &apiErr)
}

// IsWebhookParsingError determines if an error is from webhook parsing
func IsWebhookParsingError(err error) bool {
	var parseErr WebhookParsingError
	return errors.As(err, &parseErr)
}

// HTTP status code mapping for Telegram API errors
var telegramErrorCodes = map[int]string{
	400: "BAD_REQUEST",
	401: "UNAUTHORIZED",
	403: "FORBIDDEN",
	404: "NOT_FOUND",
	409: "CONFLICT",
	429: "TOO_MANY_REQUESTS",
	500: "INTERNAL_SERVER_ERROR",
	502: "BAD_GATEWAY",
	503: "SERVICE_UNAVAILABLE",
	504: "GATEWAY_TIMEOUT",
}

// GetTelegramErrorCode returns error code for HTTP status
func GetTelegramErrorCode(statusCode int) string {
	if code, exists := telegramErrorCodes[statusCode]; exists {
		return code
	}
	return "UNKNOWN_ERROR"
}
