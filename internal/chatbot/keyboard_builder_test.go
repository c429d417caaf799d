package chatbot

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/OperacionalChopp/botchopp/internal/knowledge"
	"github.com/OperacionalChopp/botchopp/internal/matcher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyboardBuilder_BuildMenuKeyboard(t *testing.T) {
	kb := NewKeyboardBuilder()
	long := strings.Repeat("é", 80)

	markup := kb.BuildMenuKeyboard([]matcher.Option{
		{ID: knowledge.EntryID("3"), Label: "Qual o horário de atendimento?"},
		{ID: knowledge.EntryID("19"), Label: long},
		{ID: knowledge.EntryID("x")},
	})

	require.Len(t, markup.InlineKeyboard, 3)
	for _, row := range markup.InlineKeyboard {
		require.Len(t, row, 1, "one entry per row")
	}

	first := markup.InlineKeyboard[0][0]
	assert.Equal(t, "Qual o horário de atendimento?", first.Text)
	require.NotNil(t, first.CallbackData)
	assert.Equal(t, "faq_id_3", *first.CallbackData)

	second := markup.InlineKeyboard[1][0]
	assert.Equal(t, maxButtonLabel, utf8.RuneCountInString(second.Text))
	assert.True(t, strings.HasSuffix(second.Text, "..."))
	assert.Equal(t, "faq_id_19", *second.CallbackData)

	assert.Equal(t, "x", markup.InlineKeyboard[2][0].Text, "label falls back to the id")
}

func TestKeyboardBuilder_BuildHumanContactKeyboard(t *testing.T) {
	markup := NewKeyboardBuilder().BuildHumanContactKeyboard("https://wa.me/5561999999999")

	require.Len(t, markup.InlineKeyboard, 1)
	button := markup.InlineKeyboard[0][0]
	assert.Equal(t, HumanContactLabel, button.Text)
	require.NotNil(t, button.URL)
	assert.Equal(t, "https://wa.me/5561999999999", *button.URL)
	assert.Nil(t, button.CallbackData)
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		text     string
		max      int
		expected string
	}{
		{"curto", 10, "curto"},
		{"exatamente", 10, "exatamente"},
		{"horário de atendimento", 10, "horário..."},
		{"ção", 2, "çã"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, truncateText(tt.text, tt.max))
	}
}
