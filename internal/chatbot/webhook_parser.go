package chatbot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/OperacionalChopp/botchopp/internal/knowledge"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// WebhookParser provides utilities for parsing Telegram webhook updates
type WebhookParser struct{}

// NewWebhookParser creates a new WebhookParser instance
func NewWebhookParser() *WebhookParser {
	return &WebhookParser{}
}

// ParseUpdate unmarshals webhook data into a Telegram Update struct
func (p *WebhookParser) ParseUpdate(updateData []byte) (*tgbotapi.Update, error) {
	if len(updateData) == 0 {
		return nil, fmt.Errorf("empty update data")
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(updateData, &update); err != nil {
		return nil, fmt.Errorf("failed to unmarshal update data: %w", err)
	}

	// Basic validation
	if update.UpdateID == 0 {
		return nil, fmt.Errorf("invalid update: missing update ID")
	}

	return &update, nil
}

// Parse decodes webhook data into the tagged Update the service dispatches
// on. The raw update is returned as well for logging and queueing.
func (p *WebhookParser) Parse(updateData []byte) (*tgbotapi.Update, Update, error) {
	raw, err := p.ParseUpdate(updateData)
	if err != nil {
		return nil, nil, WrapParsingError(err, "telegram_update")
	}

	update, err := p.Classify(raw)
	if err != nil {
		return raw, nil, err
	}
	return raw, update, nil
}

// Classify converts a Telegram update into a TextMessage, CallbackSelection
// or StartCommand. Anything else is a WebhookParsingError.
func (p *WebhookParser) Classify(update *tgbotapi.Update) (Update, error) {
	if update == nil {
		return nil, NewParsingError("telegram_update", "update is nil")
	}

	switch {
	case update.CallbackQuery != nil:
		return p.extractSelection(update.CallbackQuery)
	case update.Message != nil:
		return p.extractMessage(update.Message)
	default:
		return nil, NewParsingError("telegram_update", "update carries neither a message nor a callback query")
	}
}

func (p *WebhookParser) extractMessage(msg *tgbotapi.Message) (Update, error) {
	if msg.Chat == nil {
		return nil, NewParsingError(string(MessageTypeText), "message does not contain chat information")
	}

	var userID int64
	var firstName string
	if msg.From != nil {
		userID = msg.From.ID
		firstName = msg.From.FirstName
	}

	if msg.IsCommand() {
		if "/"+msg.Command() != string(CommandStart) {
			return nil, NewParsingError(string(MessageTypeStart), fmt.Sprintf("unsupported command /%s", msg.Command()))
		}
		return StartCommand{
			ChatID:    msg.Chat.ID,
			UserID:    userID,
			FirstName: firstName,
		}, nil
	}

	if msg.Text == "" {
		return nil, NewParsingError(string(MessageTypeText), "message does not contain text")
	}

	return TextMessage{
		ChatID:    msg.Chat.ID,
		UserID:    userID,
		FirstName: firstName,
		Text:      msg.Text,
	}, nil
}

func (p *WebhookParser) extractSelection(query *tgbotapi.CallbackQuery) (Update, error) {
	if query.Message == nil || query.Message.Chat == nil {
		return nil, NewParsingError(string(MessageTypeCallback), "callback query does not reference a chat message")
	}

	id, ok := knowledge.ParseCallbackData(query.Data)
	if !ok {
		return nil, NewParsingError(string(MessageTypeCallback), fmt.Sprintf("unknown callback data %q", query.Data))
	}

	var userID int64
	if query.From != nil {
		userID = query.From.ID
	}

	return CallbackSelection{
		ChatID:     query.Message.Chat.ID,
		UserID:     userID,
		CallbackID: query.ID,
		MessageID:  query.Message.MessageID,
		FaqID:      id,
	}, nil
}

// BuildCorrelationID generates a unique correlation ID for tracking
func (p *WebhookParser) BuildCorrelationID(update *tgbotapi.Update) string {
	if update == nil {
		return fmt.Sprintf("corr_%d", time.Now().UnixNano())
	}

	updateID := update.UpdateID
	timestamp := time.Now().Unix()

	if update.Message != nil {
		return fmt.Sprintf("msg_%d_%d_%d", updateID, update.Message.MessageID, timestamp)
	}

	if update.CallbackQuery != nil {
		return fmt.Sprintf("cb_%d_%s_%d", updateID, update.CallbackQuery.ID, timestamp)
	}

	return fmt.Sprintf("upd_%d_%d", updateID, timestamp)
}
