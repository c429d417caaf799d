package chatbot

import (
	"unicode/utf8"

	"github.com/OperacionalChopp/botchopp/internal/matcher"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxButtonLabel bounds menu labels; long FAQ questions are cut for display
const maxButtonLabel = 64

// KeyboardBuilder provides utilities for creating inline keyboards
type KeyboardBuilder struct{}

// NewKeyboardBuilder creates a new KeyboardBuilder instance
func NewKeyboardBuilder() *KeyboardBuilder {
	return &KeyboardBuilder{}
}

// BuildMenuKeyboard creates one row per tied FAQ entry, labelled with the
// entry's question and carrying its callback reference
func (kb *KeyboardBuilder) BuildMenuKeyboard(options []matcher.Option) tgbotapi.InlineKeyboardMarkup {
	keyboard := InlineKeyboard{Buttons: make([][]InlineKeyboardButton, 0, len(options))}
	for _, opt := range options {
		label := opt.Label
		if label == "" {
			label = opt.ID.String()
		}
		keyboard.Buttons = append(keyboard.Buttons, []InlineKeyboardButton{{
			Text:         truncateText(label, maxButtonLabel),
			CallbackData: opt.CallbackData(),
		}})
	}
	return kb.ConvertDomainKeyboard(keyboard)
}

// BuildHumanContactKeyboard creates the single URL button offered with the
// fallback reply
func (kb *KeyboardBuilder) BuildHumanContactKeyboard(contactURL string) tgbotapi.InlineKeyboardMarkup {
	return kb.ConvertDomainKeyboard(InlineKeyboard{
		Buttons: [][]InlineKeyboardButton{{{Text: HumanContactLabel, URL: contactURL}}},
	})
}

// ConvertDomainKeyboard converts domain InlineKeyboard to Telegram format
func (kb *KeyboardBuilder) ConvertDomainKeyboard(domainKeyboard InlineKeyboard) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, buttonRow := range domainKeyboard.Buttons {
		var tgButtonRow []tgbotapi.InlineKeyboardButton

		for _, button := range buttonRow {
			var tgButton tgbotapi.InlineKeyboardButton

			if button.URL != "" {
				tgButton = tgbotapi.NewInlineKeyboardButtonURL(button.Text, button.URL)
			} else {
				tgButton = tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData)
			}

			tgButtonRow = append(tgButtonRow, tgButton)
		}

		rows = append(rows, tgButtonRow)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// truncateText truncates text to maxLength runes with an ellipsis
func truncateText(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}

	runes := []rune(text)
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	return string(runes[:maxLength-3]) + "..."
}
