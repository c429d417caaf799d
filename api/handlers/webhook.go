package handlers

import (
	"context"
	"crypto/subtle"
	"io"
	"net/http"
	"time"

	"github.com/OperacionalChopp/botchopp/internal/chatbot"
	"github.com/OperacionalChopp/botchopp/internal/metrics"
	"github.com/OperacionalChopp/botchopp/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SecretTokenHeader carries the secret registered with setWebhook
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// maxWebhookBody bounds the size of one update
const maxWebhookBody = 1 << 20

// WebhookHandler handles Telegram webhook requests
type WebhookHandler struct {
	chatbotService chatbot.ChatbotService
	secretToken    string
	metrics        *metrics.Metrics
	logger         *logger.Logger
}

// NewWebhookHandler creates a new WebhookHandler instance. An empty
// secretToken disables the header check; m may be nil.
func NewWebhookHandler(chatbotService chatbot.ChatbotService, secretToken string, m *metrics.Metrics, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		chatbotService: chatbotService,
		secretToken:    secretToken,
		metrics:        m,
		logger:         logger,
	}
}

// HandleTelegramWebhook processes incoming Telegram webhook updates. Any
// authenticated request is answered with 200 so Telegram does not redeliver
// updates the bot cannot handle.
func (h *WebhookHandler) HandleTelegramWebhook(c *gin.Context) {
	start := time.Now()
	log := requestLogger(c, h.logger)

	if !h.authorized(c.GetHeader(SecretTokenHeader)) {
		log.Warnw("Rejected webhook with invalid secret token", "client_ip", c.ClientIP())
		h.record(metrics.StatusUnauthorized, start)
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		log.Errorw("Failed to read webhook body", "error", err)
		h.record(metrics.StatusRejected, start)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	// Inline processing must outlive a client that hangs up early
	ctx := context.WithoutCancel(c.Request.Context())
	if err := h.chatbotService.HandleWebhook(ctx, body); err != nil {
		log.Warnw("Webhook update not handled",
			"error", err,
			"body_size", len(body),
			"retryable", chatbot.IsRetryableError(err))
		h.record(metrics.StatusRejected, start)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	log.Debugw("Webhook processed successfully", "body_size", len(body))
	h.record(metrics.StatusAccepted, start)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// SetupWebhook registers the configured public URL with Telegram
func (h *WebhookHandler) SetupWebhook(c *gin.Context) {
	log := requestLogger(c, h.logger)

	webhookURL, err := h.chatbotService.SetupWebhook()
	if err != nil {
		log.Errorw("Failed to set webhook", "error", err)
		c.JSON(statusForError(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	log.Infow("Webhook registered", "webhook_url", webhookURL)
	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"webhook_url": webhookURL,
	})
}

// GetWebhookInfo returns the webhook status reported by Telegram
func (h *WebhookHandler) GetWebhookInfo(c *gin.Context) {
	info, err := h.chatbotService.WebhookInfo()
	if err != nil {
		requestLogger(c, h.logger).Errorw("Failed to get webhook info", "error", err)
		c.JSON(statusForError(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"result": info,
	})
}

// DeleteWebhook removes the webhook registration
func (h *WebhookHandler) DeleteWebhook(c *gin.Context) {
	if err := h.chatbotService.RemoveWebhook(); err != nil {
		requestLogger(c, h.logger).Errorw("Failed to delete webhook", "error", err)
		c.JSON(statusForError(err), gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *WebhookHandler) authorized(token string) bool {
	if h.secretToken == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secretToken)) == 1
}

func (h *WebhookHandler) record(status string, start time.Time) {
	if h.metrics != nil {
		h.metrics.RecordWebhook(status, time.Since(start).Seconds())
	}
}

// statusForError maps chatbot errors to HTTP statuses for the admin endpoints
func statusForError(err error) int {
	switch {
	case chatbot.IsConfigurationError(err):
		return http.StatusBadRequest
	case chatbot.IsTelegramAPIError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// requestLogger returns the request scoped logger set by the logging
// middleware, or fallback when the middleware is not installed
func requestLogger(c *gin.Context, fallback *logger.Logger) *logger.Logger {
	if v, ok := c.Get("logger"); ok {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return fallback
}
