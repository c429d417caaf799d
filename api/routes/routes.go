package routes

import (
	"strings"

	"github.com/OperacionalChopp/botchopp/api/handlers"
	"github.com/OperacionalChopp/botchopp/api/middleware"
	"github.com/OperacionalChopp/botchopp/internal/chatbot"
	"github.com/OperacionalChopp/botchopp/internal/config"
	"github.com/OperacionalChopp/botchopp/internal/metrics"
	"github.com/OperacionalChopp/botchopp/pkg/logger"

	"github.com/gin-gonic/gin"
)

// V1WebhookPath is always served in addition to chatbot.webhook_path
const V1WebhookPath = "/api/v1/telegram/webhook"

// Dependencies groups everything the HTTP surface needs
type Dependencies struct {
	ChatbotService chatbot.ChatbotService
	Health         handlers.HealthDependencies
	Metrics        *metrics.Metrics
	Chatbot        config.ChatbotConfig
	RateLimit      config.RateLimitConfig
	Logger         *logger.Logger
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	// Add middleware
	router.Use(middleware.RequestLogging(deps.Logger))
	router.Use(gin.Recovery())

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.Health, deps.Logger)
	webhookHandler := handlers.NewWebhookHandler(deps.ChatbotService, deps.Chatbot.SecretToken, deps.Metrics, deps.Logger)

	webhookChain := []gin.HandlerFunc{webhookHandler.HandleTelegramWebhook}
	if deps.RateLimit.Enabled && deps.RateLimit.WebhookRPS > 0 {
		limiter := middleware.NewRateLimiter(deps.RateLimit.WebhookRPS, deps.RateLimit.WebhookBurst, func(c *gin.Context) {
			if deps.Metrics != nil {
				deps.Metrics.RecordWebhook(metrics.StatusRateLimited, 0)
			}
		})
		webhookChain = append([]gin.HandlerFunc{limiter.PerClientIP()}, webhookChain...)
	}

	// Setup routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Check)

		// Telegram webhook endpoints
		v1.POST("/telegram/webhook", webhookChain...)
		v1.DELETE("/telegram/webhook", webhookHandler.DeleteWebhook)
		v1.POST("/telegram/setup-webhook", webhookHandler.SetupWebhook)
		v1.GET("/telegram/webhook-info", webhookHandler.GetWebhookInfo)
	}

	// The path registered with Telegram
	if path := WebhookPath(deps.Chatbot); path != V1WebhookPath {
		router.POST(path, webhookChain...)
	}

	// Root health check
	router.GET("/health", healthHandler.Check)

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
}

// WebhookPath returns the configured webhook route with a leading slash
func WebhookPath(cfg config.ChatbotConfig) string {
	path := strings.TrimSpace(cfg.WebhookPath)
	if path == "" {
		return V1WebhookPath
	}
	return "/" + strings.TrimLeft(path, "/")
}
