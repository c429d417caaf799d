//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/OperacionalChopp/botchopp/api/handlers"
	"github.com/OperacionalChopp/botchopp/internal/chatbot"
	"github.com/OperacionalChopp/botchopp/internal/events"
	"github.com/OperacionalChopp/botchopp/internal/matcher"
	"github.com/OperacionalChopp/botchopp/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatID int64 = 4242

func TestMessageFlow_Inline(t *testing.T) {
	tests := []struct {
		name     string
		update   string
		wantText string
		outcome  string
	}{
		{
			name:     "start command",
			update:   StartUpdate(1, chatID),
			wantText: chatbot.WelcomeText,
		},
		{
			name:     "single answer",
			update:   TextUpdate(2, chatID, "Vocês aceitam pix"),
			wantText: "Aceitamos Pix, cartão e dinheiro.",
			outcome:  matcher.KindAnswer.String(),
		},
		{
			name:     "region coverage",
			update:   TextUpdate(3, chatID, "Vocês entregam no Riacho Fundo II?"),
			wantText: matcher.RegionText("riacho fundo ii"),
			outcome:  matcher.KindRegion.String(),
		},
		{
			name:     "no match",
			update:   TextUpdate(4, chatID, "quero falar sobre futebol"),
			wantText: matcher.FallbackText,
			outcome:  matcher.KindNoMatch.String(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := NewTestApp(t, nil)

			rec := app.PostUpdate(t, tt.update)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

			assert.Equal(t, []string{tt.wantText}, app.Telegram.SentTexts())
			assert.Equal(t, 1, app.Recorder.Count(events.TopicMessageReceived))

			if tt.outcome == "" {
				assert.Zero(t, app.Recorder.Count(events.TopicQuestionAnswered))
				return
			}
			answered := app.Recorder.Published(events.TopicQuestionAnswered)
			require.Len(t, answered, 1)
			assert.Equal(t, tt.outcome, answered[0].(events.QuestionAnswered).Outcome)
		})
	}
}

func TestMessageFlow_Queued(t *testing.T) {
	q := queue.NewMemoryQueue(16)
	t.Cleanup(func() { _ = q.Close() })
	app := NewTestApp(t, q)

	for i, text := range []string{"aceita pix", "vocês atendem no gama?"} {
		rec := app.PostUpdate(t, TextUpdate(30+i, chatID, text))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Eventually(t, func() bool {
		return len(app.Telegram.Calls("sendMessage")) == 2
	}, 5*time.Second, 20*time.Millisecond)

	assert.ElementsMatch(t, []string{
		"Aceitamos Pix, cartão e dinheiro.",
		matcher.RegionText("gama"),
	}, app.Telegram.SentTexts())
	assert.Equal(t, 2, app.Recorder.Count(events.TopicQuestionAnswered))
}

func TestMessageFlow_Rejections(t *testing.T) {
	app := NewTestApp(t, nil)

	t.Run("wrong secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/telegram/webhook", strings.NewReader(TextUpdate(40, chatID, "pix")))
		req.Header.Set(handlers.SecretTokenHeader, "nope")
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed update", func(t *testing.T) {
		rec := app.PostUpdate(t, `{"update_id":`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	assert.Empty(t, app.Telegram.Calls("sendMessage"))
	assert.Zero(t, app.Recorder.Count(events.TopicMessageReceived))
}

func TestHealth(t *testing.T) {
	app := NewTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 3, body["knowledge_entries"])
}

func TestMessageFlow_EventBusClosed(t *testing.T) {
	app := NewTestApp(t, nil)
	require.NoError(t, app.Bus.Close())

	rec := app.PostUpdate(t, TextUpdate(50, chatID, "aceita pix"))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"Aceitamos Pix, cartão e dinheiro."}, app.Telegram.SentTexts())
	assert.Zero(t, app.Recorder.Count(events.TopicQuestionAnswered))
}
