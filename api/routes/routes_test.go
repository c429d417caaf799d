package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/OperacionalChopp/botchopp/api/handlers"
	"github.com/OperacionalChopp/botchopp/internal/config"
	"github.com/OperacionalChopp/botchopp/internal/metrics"
	"github.com/OperacionalChopp/botchopp/internal/mocks"
	"github.com/OperacionalChopp/botchopp/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func createTestRouter(t *testing.T, chatbotCfg config.ChatbotConfig, rateLimit config.RateLimitConfig) (*gin.Engine, *mocks.MockChatbotService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service := mocks.NewMockChatbotService(gomock.NewController(t))
	router := gin.New()
	SetupRoutes(router, Dependencies{
		ChatbotService: service,
		Health:         handlers.HealthDependencies{},
		Metrics:        metrics.New(prometheus.NewRegistry()),
		Chatbot:        chatbotCfg,
		RateLimit:      rateLimit,
		Logger:         &logger.Logger{SugaredLogger: zap.NewNop().Sugar()},
	})
	return router, service
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "198.51.100.10:5000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSetupRoutes(t *testing.T) {
	router, service := createTestRouter(t, config.ChatbotConfig{WebhookPath: "/api/telegram/webhook"}, config.RateLimitConfig{})
	service.EXPECT().HandleWebhook(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodPost, "/api/telegram/webhook", http.StatusOK},
		{http.MethodPost, "/api/v1/telegram/webhook", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := serve(router, tt.method, tt.path, `{"update_id":1}`)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestSetupRoutes_WebhookRateLimit(t *testing.T) {
	router, service := createTestRouter(t,
		config.ChatbotConfig{WebhookPath: "/api/telegram/webhook"},
		config.RateLimitConfig{Enabled: true, WebhookRPS: 0.001, WebhookBurst: 1})
	service.EXPECT().HandleWebhook(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/api/telegram/webhook", `{}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(router, http.MethodPost, "/api/telegram/webhook", `{}`).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "").Code, "only webhook routes are limited")
}

func TestWebhookPath(t *testing.T) {
	tests := []struct {
		configured string
		expected   string
	}{
		{"", V1WebhookPath},
		{"/api/telegram/webhook", "/api/telegram/webhook"},
		{"hook/abc", "/hook/abc"},
		{V1WebhookPath, V1WebhookPath},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, WebhookPath(config.ChatbotConfig{WebhookPath: tt.configured}))
	}
}

func TestSetupRoutes_DefaultPathRegisteredOnce(t *testing.T) {
	assert.NotPanics(t, func() {
		createTestRouter(t, config.ChatbotConfig{WebhookPath: V1WebhookPath}, config.RateLimitConfig{})
	})
}
