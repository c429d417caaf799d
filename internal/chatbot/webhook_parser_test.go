package chatbot

import (
	"testing"

	"github.com/OperacionalChopp/botchopp/internal/knowledge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookParser_Parse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected Update
	}{
		{
			name: "text message",
			body: `{"update_id":1,"message":{"message_id":10,"date":0,"from":{"id":7,"is_bot":false,"first_name":"Ana"},"chat":{"id":42,"type":"private"},"text":"qual o horário?"}}`,
			expected: TextMessage{
				ChatID:    42,
				UserID:    7,
				FirstName: "Ana",
				Text:      "qual o horário?",
			},
		},
		{
			name: "start command",
			body: `{"update_id":2,"message":{"message_id":11,"date":0,"from":{"id":7,"is_bot":false,"first_name":"Ana"},"chat":{"id":42,"type":"private"},"text":"/start","entities":[{"type":"bot_command","offset":0,"length":6}]}}`,
			expected: StartCommand{
				ChatID:    42,
				UserID:    7,
				FirstName: "Ana",
			},
		},
		{
			name:     "start command addressed to the bot",
			body:     `{"update_id":3,"message":{"message_id":12,"date":0,"chat":{"id":-100,"type":"group"},"text":"/start@botchopp","entities":[{"type":"bot_command","offset":0,"length":15}]}}`,
			expected: StartCommand{ChatID: -100},
		},
		{
			name: "menu selection",
			body: `{"update_id":4,"callback_query":{"id":"cb-1","from":{"id":7,"is_bot":false,"first_name":"Ana"},"message":{"message_id":99,"date":0,"chat":{"id":42,"type":"private"}},"chat_instance":"x","data":"faq_id_3"}}`,
			expected: CallbackSelection{
				ChatID:     42,
				UserID:     7,
				CallbackID: "cb-1",
				MessageID:  99,
				FaqID:      knowledge.EntryID("3"),
			},
		},
		{
			name:     "message without sender",
			body:     `{"update_id":5,"message":{"message_id":13,"date":0,"chat":{"id":42,"type":"private"},"text":"pix"}}`,
			expected: TextMessage{ChatID: 42, Text: "pix"},
		},
	}

	parser := NewWebhookParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, update, err := parser.Parse([]byte(tt.body))
			require.NoError(t, err)
			require.NotNil(t, raw)
			assert.Equal(t, tt.expected, update)
		})
	}
}

func TestWebhookParser_ParseRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"invalid json", `{"update_id":`},
		{"not an object", `[1,2,3]`},
		{"missing update id", `{"message":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"oi"}}`},
		{"unsupported update", `{"update_id":1,"edited_message":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"oi"}}`},
		{"message without chat", `{"update_id":1,"message":{"message_id":1,"date":0,"text":"oi"}}`},
		{"message without text", `{"update_id":1,"message":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"caption":"foto"}}`},
		{"unsupported command", `{"update_id":1,"message":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"/help","entities":[{"type":"bot_command","offset":0,"length":5}]}}`},
		{"unknown callback data", `{"update_id":1,"callback_query":{"id":"cb","from":{"id":7,"is_bot":false,"first_name":"Ana"},"message":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}},"chat_instance":"x","data":"human"}}`},
		{"callback without entry id", `{"update_id":1,"callback_query":{"id":"cb","from":{"id":7,"is_bot":false,"first_name":"Ana"},"message":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}},"chat_instance":"x","data":"faq_id_"}}`},
		{"inline callback without message", `{"update_id":1,"callback_query":{"id":"cb","from":{"id":7,"is_bot":false,"first_name":"Ana"},"inline_message_id":"abc","chat_instance":"x","data":"faq_id_1"}}`},
	}

	parser := NewWebhookParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, update, err := parser.Parse([]byte(tt.body))
			require.Error(t, err)
			assert.Nil(t, update)
			assert.True(t, IsWebhookParsingError(err))
			assert.False(t, IsRetryableError(err))
		})
	}
}

func TestWebhookParser_BuildCorrelationID(t *testing.T) {
	parser := NewWebhookParser()

	raw, _, err := parser.Parse([]byte(`{"update_id":5,"message":{"message_id":13,"date":0,"chat":{"id":42,"type":"private"},"text":"pix"}}`))
	require.NoError(t, err)
	assert.Regexp(t, `^msg_5_13_\d+$`, parser.BuildCorrelationID(raw))

	raw, _, err = parser.Parse([]byte(`{"update_id":6,"callback_query":{"id":"cb-9","message":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}},"chat_instance":"x","data":"faq_id_1"}}`))
	require.NoError(t, err)
	assert.Regexp(t, `^cb_6_cb-9_\d+$`, parser.BuildCorrelationID(raw))

	assert.Regexp(t, `^corr_\d+$`, parser.BuildCorrelationID(nil))
}

func TestUpdateVariants(t *testing.T) {
	updates := []Update{
		TextMessage{ChatID: 1, UserID: 2},
		CallbackSelection{ChatID: 1, UserID: 2},
		StartCommand{ChatID: 1, UserID: 2},
	}
	types := []MessageType{MessageTypeText, MessageTypeCallback, MessageTypeStart}

	for i, u := range updates {
		assert.Equal(t, types[i], u.Type())
		assert.True(t, u.Type().IsValid())
		assert.Equal(t, int64(1), u.Chat())
		assert.Equal(t, int64(2), u.Sender())
	}
	assert.False(t, MessageType("command").IsValid())
}
