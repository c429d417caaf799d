package chatbot

import (
	"fmt"
	"net/http"
	"time"

	"github.com/OperacionalChopp/botchopp/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// telegramProvider implements the TelegramProvider interface using the telegram-bot-api library
type telegramProvider struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
	config config.ChatbotConfig
}

// NewTelegramProvider creates a new TelegramProvider instance
func NewTelegramProvider(cfg config.ChatbotConfig, logger *zap.Logger) (TelegramProvider, error) {
	return NewTelegramProviderWithEndpoint(cfg, tgbotapi.APIEndpoint, logger)
}

// NewTelegramProviderWithEndpoint creates a provider talking to a custom
// Bot API server. The endpoint is a format string taking token and method.
func NewTelegramProviderWithEndpoint(cfg config.ChatbotConfig, endpoint string, logger *zap.Logger) (TelegramProvider, error) {
	if cfg.Token == "" {
		return nil, NewConfigurationError("token", "telegram bot token is required", "")
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// NewBotAPIWithClient validates the token with getMe
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", WrapTelegramError(err, "getMe"))
	}

	logger.Info("Telegram bot initialized successfully", zap.String("username", bot.Self.UserName))

	return &telegramProvider{
		bot:    bot,
		logger: logger,
		config: cfg,
	}, nil
}

// SendMessage sends a plain text message to the specified chat. Answers
// are sent verbatim, so no parse mode is set.
func (p *telegramProvider) SendMessage(chatID int64, text string) error {
	p.logger.Debug("Sending message",
		zap.Int64("chat_id", chatID),
		zap.Int("text_length", len(text)))

	msg := tgbotapi.NewMessage(chatID, text)

	if _, err := p.bot.Send(msg); err != nil {
		p.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return WrapTelegramError(err, "sendMessage")
	}

	p.logger.Debug("Message sent successfully", zap.Int64("chat_id", chatID))
	return nil
}

// SendMessageWithKeyboard sends a message with an inline keyboard
func (p *telegramProvider) SendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	p.logger.Debug("Sending message with keyboard",
		zap.Int64("chat_id", chatID),
		zap.Int("text_length", len(text)),
		zap.Int("keyboard_rows", len(keyboard.InlineKeyboard)))

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard

	if _, err := p.bot.Send(msg); err != nil {
		p.logger.Error("Failed to send message with keyboard",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return WrapTelegramError(err, "sendMessage")
	}

	p.logger.Debug("Message with keyboard sent successfully", zap.Int64("chat_id", chatID))
	return nil
}

// AnswerCallback acknowledges a callback query
func (p *telegramProvider) AnswerCallback(callbackID, text string) error {
	if _, err := p.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		p.logger.Warn("Failed to answer callback query",
			zap.String("callback_id", callbackID),
			zap.Error(err))
		return WrapTelegramError(err, "answerCallbackQuery")
	}
	return nil
}

// ClearKeyboard replaces the message's inline keyboard with an empty one
func (p *telegramProvider) ClearKeyboard(chatID int64, messageID int) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})

	if _, err := p.bot.Request(edit); err != nil {
		p.logger.Warn("Failed to clear keyboard",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err))
		return WrapTelegramError(err, "editMessageReplyMarkup")
	}
	return nil
}

// SetWebhook configures the webhook URL for receiving updates. The secret
// token is echoed by Telegram in the X-Telegram-Bot-Api-Secret-Token header.
func (p *telegramProvider) SetWebhook(webhookURL, secretToken string) error {
	p.logger.Info("Setting webhook", zap.String("webhook_url", webhookURL))

	// validates the URL the same way the library's WebhookConfig does
	if _, err := tgbotapi.NewWebhook(webhookURL); err != nil {
		return NewConfigurationError("webhook_url", err.Error(), webhookURL)
	}

	params := tgbotapi.Params{"url": webhookURL}
	params.AddNonEmpty("secret_token", secretToken)
	if err := params.AddInterface("allowed_updates", allowedUpdates); err != nil {
		return fmt.Errorf("failed to encode allowed updates: %w", err)
	}

	if _, err := p.bot.MakeRequest("setWebhook", params); err != nil {
		p.logger.Error("Failed to set webhook",
			zap.String("webhook_url", webhookURL),
			zap.Error(err))
		return WrapTelegramError(err, "setWebhook")
	}

	p.logger.Info("Webhook set successfully", zap.String("webhook_url", webhookURL))
	return nil
}

// DeleteWebhook removes the configured webhook
func (p *telegramProvider) DeleteWebhook() error {
	p.logger.Info("Deleting webhook")

	if _, err := p.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		p.logger.Error("Failed to delete webhook", zap.Error(err))
		return WrapTelegramError(err, "deleteWebhook")
	}

	p.logger.Info("Webhook deleted successfully")
	return nil
}

// GetWebhookInfo returns the current webhook status
func (p *telegramProvider) GetWebhookInfo() (*tgbotapi.WebhookInfo, error) {
	info, err := p.bot.GetWebhookInfo()
	if err != nil {
		p.logger.Error("Failed to get webhook info", zap.Error(err))
		return nil, WrapTelegramError(err, "getWebhookInfo")
	}
	return &info, nil
}

// GetMe returns information about the bot
func (p *telegramProvider) GetMe() (*tgbotapi.User, error) {
	p.logger.Debug("Getting bot information")

	me, err := p.bot.GetMe()
	if err != nil {
		p.logger.Error("Failed to get bot information", zap.Error(err))
		return nil, WrapTelegramError(err, "getMe")
	}

	p.logger.Debug("Bot information retrieved successfully",
		zap.String("username", me.UserName),
		zap.String("first_name", me.FirstName))

	return &me, nil
}
