package chatbot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramProvider defines the contract for Telegram API operations
type TelegramProvider interface {
	// SendMessage sends a plain text message to the specified chat
	SendMessage(chatID int64, text string) error

	// SendMessageWithKeyboard sends a message with an inline keyboard
	SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error

	// AnswerCallback acknowledges a button press so the client stops its spinner
	AnswerCallback(callbackID, text string) error

	// ClearKeyboard removes the inline keyboard from a sent message
	ClearKeyboard(chatID int64, messageID int) error

	// SetWebhook configures the webhook URL for receiving updates
	SetWebhook(webhookURL, secretToken string) error

	// DeleteWebhook removes the configured webhook
	DeleteWebhook() error

	// GetWebhookInfo returns the webhook status reported by Telegram
	GetWebhookInfo() (*tgbotapi.WebhookInfo, error)

	// GetMe returns information about the bot
	GetMe() (*tgbotapi.User, error)
}

// allowedUpdates are the update types requested when registering the webhook
var allowedUpdates = []string{"message", "callback_query"}
