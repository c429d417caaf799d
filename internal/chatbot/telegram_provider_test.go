package chatbot

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"sync"
	"testing"

	"github.com/OperacionalChopp/botchopp/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const getMeResponse = `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"BotChopp","username":"botchopp"}}`

type botAPICall struct {
	Method string
	Params url.Values
}

// fakeBotAPI records every Bot API call and replies with canned bodies
type fakeBotAPI struct {
	mu        sync.Mutex
	calls     []botAPICall
	responses map[string]fakeResponse
	server    *httptest.Server
}

type fakeResponse struct {
	status int
	body   string
}

func newFakeBotAPI(t *testing.T) *fakeBotAPI {
	t.Helper()
	f := &fakeBotAPI{responses: map[string]fakeResponse{
		"getMe":       {http.StatusOK, getMeResponse},
		"sendMessage": {http.StatusOK, `{"ok":true,"result":{"message_id":100,"date":0,"chat":{"id":42,"type":"private"}}}`},
	}}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		method := path.Base(r.URL.Path)

		f.mu.Lock()
		f.calls = append(f.calls, botAPICall{Method: method, Params: r.PostForm})
		resp, ok := f.responses[method]
		f.mu.Unlock()

		if !ok {
			resp = fakeResponse{http.StatusOK, `{"ok":true,"result":true}`}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeBotAPI) endpoint() string {
	return f.server.URL + "/bot%s/%s"
}

func (f *fakeBotAPI) respond(method string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method] = fakeResponse{status, body}
}

func (f *fakeBotAPI) last(method string) (botAPICall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Method == method {
			return f.calls[i], true
		}
	}
	return botAPICall{}, false
}

func newTestProvider(t *testing.T, api *fakeBotAPI) TelegramProvider {
	t.Helper()
	provider, err := NewTelegramProviderWithEndpoint(config.ChatbotConfig{Token: "test-token", Timeout: 5}, api.endpoint(), zap.NewNop())
	require.NoError(t, err)
	return provider
}

func TestNewTelegramProvider_Validation(t *testing.T) {
	_, err := NewTelegramProviderWithEndpoint(config.ChatbotConfig{}, "http://unused/bot%s/%s", zap.NewNop())
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))

	api := newFakeBotAPI(t)
	api.respond("getMe", http.StatusUnauthorized, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
	_, err = NewTelegramProviderWithEndpoint(config.ChatbotConfig{Token: "bad"}, api.endpoint(), zap.NewNop())
	require.Error(t, err)
	assert.True(t, IsTelegramAPIError(err))
	assert.False(t, IsRetryableError(err))
}

func TestTelegramProvider_SendMessage(t *testing.T) {
	api := newFakeBotAPI(t)
	provider := newTestProvider(t, api)

	require.NoError(t, provider.SendMessage(42, "Aceitamos Pix & cartão <3"))

	call, ok := api.last("sendMessage")
	require.True(t, ok)
	assert.Equal(t, "42", call.Params.Get("chat_id"))
	assert.Equal(t, "Aceitamos Pix & cartão <3", call.Params.Get("text"))
	assert.Empty(t, call.Params.Get("parse_mode"), "answers are sent verbatim")
	assert.Empty(t, call.Params.Get("reply_markup"))
}

func TestTelegramProvider_SendMessageWithKeyboard(t *testing.T) {
	api := newFakeBotAPI(t)
	provider := newTestProvider(t, api)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Horário", "faq_id_3")),
	)
	require.NoError(t, provider.SendMessageWithKeyboard(42, "Qual delas?", keyboard))

	call, ok := api.last("sendMessage")
	require.True(t, ok)
	assert.JSONEq(t, `{"inline_keyboard":[[{"text":"Horário","callback_data":"faq_id_3"}]]}`, call.Params.Get("reply_markup"))
}

func TestTelegramProvider_CallbackAndKeyboard(t *testing.T) {
	api := newFakeBotAPI(t)
	provider := newTestProvider(t, api)

	require.NoError(t, provider.AnswerCallback("cb-1", ""))
	call, ok := api.last("answerCallbackQuery")
	require.True(t, ok)
	assert.Equal(t, "cb-1", call.Params.Get("callback_query_id"))

	require.NoError(t, provider.ClearKeyboard(42, 99))
	call, ok = api.last("editMessageReplyMarkup")
	require.True(t, ok)
	assert.Equal(t, "42", call.Params.Get("chat_id"))
	assert.Equal(t, "99", call.Params.Get("message_id"))
	assert.JSONEq(t, `{"inline_keyboard":[]}`, call.Params.Get("reply_markup"))
}

func TestTelegramProvider_Webhook(t *testing.T) {
	api := newFakeBotAPI(t)
	provider := newTestProvider(t, api)

	require.NoError(t, provider.SetWebhook("https://bot.example.com/api/telegram/webhook", "s3cret"))
	call, ok := api.last("setWebhook")
	require.True(t, ok)
	assert.Equal(t, "https://bot.example.com/api/telegram/webhook", call.Params.Get("url"))
	assert.Equal(t, "s3cret", call.Params.Get("secret_token"))

	var updates []string
	require.NoError(t, json.Unmarshal([]byte(call.Params.Get("allowed_updates")), &updates))
	assert.Equal(t, []string{"message", "callback_query"}, updates)

	require.NoError(t, provider.SetWebhook("https://bot.example.com/hook", ""))
	call, _ = api.last("setWebhook")
	_, hasSecret := call.Params["secret_token"]
	assert.False(t, hasSecret)

	err := provider.SetWebhook("://bad url", "")
	assert.True(t, IsConfigurationError(err))

	require.NoError(t, provider.DeleteWebhook())
	_, ok = api.last("deleteWebhook")
	assert.True(t, ok)

	api.respond("getWebhookInfo", http.StatusOK, `{"ok":true,"result":{"url":"https://bot.example.com/hook","has_custom_certificate":false,"pending_update_count":3}}`)
	info, err := provider.GetWebhookInfo()
	require.NoError(t, err)
	assert.Equal(t, "https://bot.example.com/hook", info.URL)
	assert.Equal(t, 3, info.PendingUpdateCount)

	me, err := provider.GetMe()
	require.NoError(t, err)
	assert.Equal(t, "botchopp", me.UserName)
}

func TestTelegramProvider_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		statusCode int
		apiError   string
		retryAfter int
		retryable  bool
	}{
		{
			name:       "rate limited",
			status:     http.StatusTooManyRequests,
			body:       `{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 5","parameters":{"retry_after":5}}`,
			statusCode: 429,
			apiError:   "TOO_MANY_REQUESTS",
			retryAfter: 5,
			retryable:  true,
		},
		{
			name:       "bad request",
			status:     http.StatusBadRequest,
			body:       `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`,
			statusCode: 400,
			apiError:   "BAD_REQUEST",
		},
		{
			name:       "bot blocked",
			status:     http.StatusForbidden,
			body:       `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`,
			statusCode: 403,
			apiError:   "FORBIDDEN",
		},
		{
			name:       "server error",
			status:     http.StatusBadGateway,
			body:       `{"ok":false,"error_code":502,"description":"Bad Gateway"}`,
			statusCode: 502,
			apiError:   "BAD_GATEWAY",
			retryable:  true,
		},
		{
			name:       "garbage response",
			status:     http.StatusBadGateway,
			body:       `<html>nginx</html>`,
			statusCode: http.StatusInternalServerError,
			apiError:   "UNKNOWN_ERROR",
			retryable:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeBotAPI(t)
			provider := newTestProvider(t, api)
			api.respond("sendMessage", tt.status, tt.body)

			err := provider.SendMessage(42, "oi")
			require.Error(t, err)

			var apiErr TelegramAPIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "sendMessage", apiErr.Operation)
			assert.Equal(t, tt.statusCode, apiErr.StatusCode)
			assert.Equal(t, tt.retryAfter, apiErr.RetryAfter)
			assert.Equal(t, tt.retryable, IsRetryableError(err))
			assert.Equal(t, tt.apiError, apiErr.APIError)
		})
	}
}
