package chatbot

import (
	"github.com/OperacionalChopp/botchopp/internal/events"
	"github.com/OperacionalChopp/botchopp/internal/knowledge"
)

// MessageType represents the type of update received
type MessageType string

const (
	MessageTypeText     MessageType = events.UpdateText
	MessageTypeCallback MessageType = events.UpdateCallback
	MessageTypeStart    MessageType = events.UpdateStart
)

// IsValid checks if the message type is valid
func (mt MessageType) IsValid() bool {
	switch mt {
	case MessageTypeText, MessageTypeCallback, MessageTypeStart:
		return true
	default:
		return false
	}
}

// Command represents supported bot commands
type Command string

const (
	CommandStart Command = "/start"
)

// Update is an inbound Telegram update the bot acts on. It is one of
// TextMessage, CallbackSelection or StartCommand.
type Update interface {
	Type() MessageType
	Chat() int64
	Sender() int64
	isUpdate()
}

// TextMessage is free text typed by the user
type TextMessage struct {
	ChatID    int64  `json:"chat_id"`
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name,omitempty"`
	Text      string `json:"text"`
}

// CallbackSelection is a press on a FAQ menu button
type CallbackSelection struct {
	ChatID     int64             `json:"chat_id"`
	UserID     int64             `json:"user_id"`
	CallbackID string            `json:"callback_id"`
	MessageID  int               `json:"message_id"`
	FaqID      knowledge.EntryID `json:"faq_id"`
}

// StartCommand is the /start command
type StartCommand struct {
	ChatID    int64  `json:"chat_id"`
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name,omitempty"`
}

func (TextMessage) Type() MessageType { return MessageTypeText }
func (m TextMessage) Chat() int64 { return m.ChatID }
func (m TextMessage) Sender() int64 { return m.UserID }
func (TextMessage) isUpdate() {}

func (CallbackSelection) Type() MessageType { return MessageTypeCallback }
func (s CallbackSelection) Chat() int64 { return s.ChatID }
func (s CallbackSelection) Sender() int64 { return s.UserID }
func (CallbackSelection) isUpdate() {}

func (StartCommand) Type() MessageType { return MessageTypeStart }
func (c StartCommand) Chat() int64 { return c.ChatID }
func (c StartCommand) Sender() int64 { return c.UserID }
func (StartCommand) isUpdate() {}

// InlineKeyboard represents a Telegram inline keyboard
type InlineKeyboard struct {
	Buttons [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton represents a single button in an inline keyboard
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}
