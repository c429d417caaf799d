//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/OperacionalChopp/botchopp/api/handlers"
	"github.com/OperacionalChopp/botchopp/api/routes"
	"github.com/OperacionalChopp/botchopp/internal/chatbot"
	"github.com/OperacionalChopp/botchopp/internal/config"
	"github.com/OperacionalChopp/botchopp/internal/events"
	"github.com/OperacionalChopp/botchopp/internal/knowledge"
	"github.com/OperacionalChopp/botchopp/internal/matcher"
	"github.com/OperacionalChopp/botchopp/internal/metrics"
	"github.com/OperacionalChopp/botchopp/internal/queue"
	"github.com/OperacionalChopp/botchopp/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSecret = "integration-secret"

// BotAPICall is one request received by the fake Bot API
type BotAPICall struct {
	Method string
	Params map[string]string
}

// FakeBotAPI stands in for api.telegram.org
type FakeBotAPI struct {
	mu     sync.Mutex
	calls  []BotAPICall
	server *httptest.Server
}

func NewFakeBotAPI(t *testing.T) *FakeBotAPI {
	t.Helper()
	f := &FakeBotAPI{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		method := path.Base(r.URL.Path)

		params := make(map[string]string, len(r.PostForm))
		for k := range r.PostForm {
			params[k] = r.PostForm.Get(k)
		}

		f.mu.Lock()
		f.calls = append(f.calls, BotAPICall{Method: method, Params: params})
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch method {
		case "getMe":
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"BotChopp","username":"botchopp"}}`))
		case "sendMessage":
			_, _ = fmt.Fprintf(w, `{"ok":true,"result":{"message_id":%d,"date":0,"chat":{"id":%s,"type":"private"}}}`, len(f.Calls("sendMessage"))+100, params["chat_id"])
		default:
			_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

// Endpoint is the format string accepted by the telegram provider
func (f *FakeBotAPI) Endpoint() string {
	return f.server.URL + "/bot%s/%s"
}

// Calls returns the calls made to method in order
func (f *FakeBotAPI) Calls(method string) []BotAPICall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []BotAPICall
	for _, call := range f.calls {
		if call.Method == method {
			out = append(out, call)
		}
	}
	return out
}

// SentTexts returns the text of every sendMessage call
func (f *FakeBotAPI) SentTexts() []string {
	var texts []string
	for _, call := range f.Calls("sendMessage") {
		texts = append(texts, call.Params["text"])
	}
	return texts
}

// TestApp is the HTTP surface wired to real services
type TestApp struct {
	Router   *gin.Engine
	Telegram *FakeBotAPI
	Bus      events.EventBus
	Recorder *events.Recorder
	Pool     queue.WorkerPool
}

func fixtureBase(t *testing.T) *knowledge.Base {
	t.Helper()
	base, err := knowledge.NewBase([]knowledge.Entry{
		{ID: "1", Question: "Horário de funcionamento", Answer: "Funcionamos de terça a domingo, das 10h às 22h.", Keywords: []string{"horário", "funcionamento", "abre"}},
		{ID: "2", Question: "Horário de retirada", Answer: "A retirada do barril é feita a partir das 9h.", Keywords: []string{"horário", "retirada", "barril"}},
		{ID: "3", Question: "Formas de pagamento", Answer: "Aceitamos Pix, cartão e dinheiro.", Keywords: []string{"pix", "pagamento", "cartão"}},
	}, []string{"Gama", "Riacho Fundo", "Riacho Fundo II"})
	require.NoError(t, err)
	return base
}

// NewTestApp builds the application around a fake Bot API. A nil q processes
// webhooks inline; otherwise a worker pool consumes q until the test ends.
func NewTestApp(t *testing.T, q queue.Queue) *TestApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	zapLogger := zaptest.NewLogger(t)
	telegram := NewFakeBotAPI(t)
	recorder := events.NewRecorder()

	chatbotCfg := config.ChatbotConfig{
		Token:       "123:integration",
		WebhookPath: "/api/telegram/webhook",
		SecretToken: testSecret,
		Timeout:     5,
	}

	provider, err := chatbot.NewTelegramProviderWithEndpoint(chatbotCfg, telegram.Endpoint(), zapLogger)
	require.NoError(t, err)

	service := chatbot.NewChatbotServiceWithProvider(recorder, zapLogger, chatbotCfg, provider, matcher.New(fixtureBase(t), matcher.RuleTokens), nil, q)

	app := &TestApp{Telegram: telegram, Bus: recorder, Recorder: recorder}

	if q != nil {
		pool, err := queue.NewWorkerPool(config.QueueConfig{WorkerCount: 2, MaxAttempts: 3, ShutdownTimeout: 5}, q, service.HandleJob, recorder, zapLogger)
		require.NoError(t, err)
		require.NoError(t, pool.Start(context.Background()))
		t.Cleanup(func() { _ = pool.Stop() })
		app.Pool = pool
	}

	appMetrics := metrics.New(prometheus.NewRegistry())
	require.NoError(t, appMetrics.Subscribe(recorder))

	router := gin.New()
	routes.SetupRoutes(router, routes.Dependencies{
		ChatbotService: service,
		Health:         handlers.HealthDependencies{Knowledge: fixtureBase(t), Queue: q},
		Metrics:        appMetrics,
		Chatbot:        chatbotCfg,
		Logger:         &logger.Logger{SugaredLogger: zapLogger.Sugar()},
	})
	app.Router = router

	return app
}

// PostUpdate delivers a raw update the way Telegram does
func (a *TestApp) PostUpdate(t *testing.T, update string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/telegram/webhook", strings.NewReader(update))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(handlers.SecretTokenHeader, testSecret)
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

// TextUpdate builds a private chat text message update
func TextUpdate(updateID int, chatID int64, text string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"update_id": updateID,
		"message": map[string]interface{}{
			"message_id": updateID,
			"date":       0,
			"from":       map[string]interface{}{"id": chatID, "is_bot": false, "first_name": "Cliente"},
			"chat":       map[string]interface{}{"id": chatID, "type": "private"},
			"text":       text,
		},
	})
	return string(body)
}

// StartUpdate builds a /start command update
func StartUpdate(updateID int, chatID int64) string {
	body, _ := json.Marshal(map[string]interface{}{
		"update_id": updateID,
		"message": map[string]interface{}{
			"message_id": updateID,
			"date":       0,
			"chat":       map[string]interface{}{"id": chatID, "type": "private"},
			"text":       "/start",
			"entities":   []map[string]interface{}{{"type": "bot_command", "offset": 0, "length": 6}},
		},
	})
	return string(body)
}

// CallbackUpdate builds a menu button press on messageID
func CallbackUpdate(updateID int, chatID int64, messageID int, data string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"update_id": updateID,
		"callback_query": map[string]interface{}{
			"id":            fmt.Sprintf("cb-%d", updateID),
			"from":          map[string]interface{}{"id": chatID, "is_bot": false, "first_name": "Cliente"},
			"chat_instance": "ci",
			"data":          data,
			"message": map[string]interface{}{
				"message_id": messageID,
				"date":       0,
				"chat":       map[string]interface{}{"id": chatID, "type": "private"},
			},
		},
	})
	return string(body)
}
