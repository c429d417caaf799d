package chatbot

import (
	"context"
	"fmt"

	"github.com/OperacionalChopp/botchopp/internal/config"
	"github.com/OperacionalChopp/botchopp/internal/events"
	"github.com/OperacionalChopp/botchopp/internal/knowledge"
	"github.com/OperacionalChopp/botchopp/internal/llm"
	"github.com/OperacionalChopp/botchopp/internal/matcher"
	"github.com/OperacionalChopp/botchopp/internal/queue"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Outcomes reported in QuestionAnswered besides the matcher kinds
const (
	OutcomeAI               = "ai"
	OutcomeSelection        = "selection"
	OutcomeUnknownSelection = "unknown_selection"
)

// ChatbotService defines the interface for chatbot operations
type ChatbotService interface {
	// HandleWebhook validates a raw webhook body and either queues it or
	// processes it inline
	HandleWebhook(ctx context.Context, webhookData []byte) error
	// HandleJob processes an update previously queued by HandleWebhook
	HandleJob(ctx context.Context, job *queue.Job) error
	// HandleUpdate replies to one parsed update
	HandleUpdate(ctx context.Context, update Update) error
	SetupWebhook() (string, error)
	RemoveWebhook() error
	WebhookInfo() (*tgbotapi.WebhookInfo, error)
	BotInfo() (*tgbotapi.User, error)
}

// chatbotService implements the ChatbotService interface
type chatbotService struct {
	eventBus        events.EventBus
	logger          *zap.Logger
	provider        TelegramProvider
	parser          *WebhookParser
	keyboardBuilder *KeyboardBuilder
	matcher         *matcher.Matcher
	assistant       llm.LLMService
	queue           queue.Queue
	config          config.ChatbotConfig
}

// NewChatbotService creates a new instance of ChatbotService backed by the
// Telegram Bot API. assistant and q may be nil.
func NewChatbotService(eventBus events.EventBus, logger *zap.Logger, cfg config.ChatbotConfig, m *matcher.Matcher, assistant llm.LLMService, q queue.Queue) (ChatbotService, error) {
	provider, err := NewTelegramProvider(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram provider: %w", err)
	}

	return NewChatbotServiceWithProvider(eventBus, logger, cfg, provider, m, assistant, q), nil
}

// NewChatbotServiceWithProvider creates a ChatbotService with a custom provider
func NewChatbotServiceWithProvider(eventBus events.EventBus, logger *zap.Logger, cfg config.ChatbotConfig, provider TelegramProvider, m *matcher.Matcher, assistant llm.LLMService, q queue.Queue) ChatbotService {
	if m == nil {
		m = matcher.New(nil, matcher.RuleTokens)
	}

	return &chatbotService{
		eventBus:        eventBus,
		logger:          logger,
		provider:        provider,
		parser:          NewWebhookParser(),
		keyboardBuilder: NewKeyboardBuilder(),
		matcher:         m,
		assistant:       assistant,
		queue:           q,
		config:          cfg,
	}
}

// HandleWebhook processes incoming webhook data from Telegram. Malformed or
// unsupported updates are rejected before anything is queued or sent.
func (s *chatbotService) HandleWebhook(ctx context.Context, webhookData []byte) error {
	raw, update, err := s.parser.Parse(webhookData)
	if err != nil {
		s.logger.Warn("Ignoring webhook update",
			zap.Int("data_size", len(webhookData)),
			zap.Error(err))
		return err
	}

	correlationID := s.parser.BuildCorrelationID(raw)

	if s.queue != nil {
		job := queue.NewJob(queue.KindTelegramUpdate, raw.UpdateID, webhookData)
		err := s.queue.Enqueue(ctx, job)
		if err == nil {
			s.logger.Debug("Update queued",
				zap.String("correlation_id", correlationID),
				zap.String("job_id", job.ID))
			return nil
		}
		s.logger.Warn("Failed to queue update, processing inline",
			zap.String("correlation_id", correlationID),
			zap.Error(err))
	}

	return s.handle(ctx, update, correlationID)
}

// HandleJob is the worker pool handler for queued updates
func (s *chatbotService) HandleJob(ctx context.Context, job *queue.Job) error {
	if job.Kind != queue.KindTelegramUpdate {
		return NewParsingError(job.Kind, "unsupported job kind")
	}

	raw, update, err := s.parser.Parse(job.Payload)
	if err != nil {
		return err
	}

	return s.handle(ctx, update, s.parser.BuildCorrelationID(raw))
}

// HandleUpdate dispatches one update to the matching flow
func (s *chatbotService) HandleUpdate(ctx context.Context, update Update) error {
	return s.handle(ctx, update, "")
}

func (s *chatbotService) handle(ctx context.Context, update Update, correlationID string) error {
	logger := s.logger.With(
		zap.String("correlation_id", correlationID),
		zap.String("update_type", string(update.Type())),
		zap.Int64("chat_id", update.Chat()))

	received := events.MessageReceived{
		Event:      events.NewEvent(),
		ChatID:     update.Chat(),
		UserID:     update.Sender(),
		UpdateType: string(update.Type()),
	}

	switch u := update.(type) {
	case StartCommand:
		s.publish(events.TopicMessageReceived, received)
		logger.Info("Processing start command")
		return s.provider.SendMessage(u.ChatID, WelcomeText)
	case TextMessage:
		received.Text = u.Text
		s.publish(events.TopicMessageReceived, received)
		logger.Info("Processing text message", zap.Int("text_length", len(u.Text)))
		return s.handleTextMessage(ctx, u, logger)
	case CallbackSelection:
		s.publish(events.TopicMessageReceived, received)
		logger.Info("Processing menu selection", zap.String("faq_id", u.FaqID.String()))
		return s.handleSelection(u, logger)
	default:
		logger.Warn("Unknown update type")
		return NewParsingError(string(update.Type()), "unsupported update")
	}
}

// handleTextMessage matches free text and sends the resulting reply
func (s *chatbotService) handleTextMessage(ctx context.Context, msg TextMessage, logger *zap.Logger) error {
	outcome := s.matcher.Match(msg.Text)
	answered := events.QuestionAnswered{
		Event:   events.NewEvent(),
		ChatID:  msg.ChatID,
		Outcome: outcome.Kind.String(),
		FaqIDs:  entryIDStrings(outcome.EntryIDs()),
		Region:  outcome.Region,
		Score:   outcome.Score,
	}

	var err error
	switch outcome.Kind {
	case matcher.KindMenu:
		err = s.provider.SendMessageWithKeyboard(msg.ChatID, outcome.Text, s.keyboardBuilder.BuildMenuKeyboard(outcome.Options))
	case matcher.KindNoMatch:
		var delegated bool
		delegated, err = s.sendFallback(ctx, msg, outcome.Text, logger)
		if delegated {
			answered.Outcome = OutcomeAI
		}
	default:
		err = s.provider.SendMessage(msg.ChatID, outcome.Text)
	}

	if err != nil {
		logger.Error("Failed to send reply", zap.String("outcome", answered.Outcome), zap.Error(err))
		return err
	}

	s.publish(events.TopicQuestionAnswered, answered)
	return nil
}

// sendFallback asks the assistant when it is enabled and falls back to the
// canned text when the assistant fails. The boolean reports whether the
// assistant produced the reply.
func (s *chatbotService) sendFallback(ctx context.Context, msg TextMessage, fallback string, logger *zap.Logger) (bool, error) {
	if s.assistant != nil && s.assistant.Enabled() {
		reply, err := s.assistant.Ask(ctx, msg.ChatID, msg.FirstName, msg.Text)
		if err == nil {
			if err := s.provider.SendMessage(msg.ChatID, reply); err != nil {
				return true, UndeliveredReplyError{ChatID: msg.ChatID, Cause: err}
			}
			return true, nil
		}
		logger.Warn("Assistant failed, sending fallback", zap.Error(err))
	}

	if s.config.HumanContactURL != "" {
		return false, s.provider.SendMessageWithKeyboard(msg.ChatID, fallback, s.keyboardBuilder.BuildHumanContactKeyboard(s.config.HumanContactURL))
	}
	return false, s.provider.SendMessage(msg.ChatID, fallback)
}

// handleSelection answers a menu button press with the selected entry
func (s *chatbotService) handleSelection(sel CallbackSelection, logger *zap.Logger) error {
	// A stale or already answered callback must not block the reply
	if err := s.provider.AnswerCallback(sel.CallbackID, ""); err != nil {
		logger.Warn("Failed to acknowledge callback", zap.Error(err))
	}

	answered := events.QuestionAnswered{
		Event:   events.NewEvent(),
		ChatID:  sel.ChatID,
		Outcome: OutcomeSelection,
		FaqIDs:  []string{sel.FaqID.String()},
	}

	outcome, err := s.matcher.Resolve(sel.FaqID)
	if err != nil {
		logger.Warn("Menu selection not found", zap.Error(err))
		answered.Outcome = OutcomeUnknownSelection
		if err := s.provider.SendMessage(sel.ChatID, matcher.UnknownSelectionText); err != nil {
			return err
		}
		s.publish(events.TopicQuestionAnswered, answered)
		return nil
	}

	if err := s.provider.SendMessage(sel.ChatID, outcome.Text); err != nil {
		logger.Error("Failed to send selected answer", zap.Error(err))
		return err
	}

	if err := s.provider.ClearKeyboard(sel.ChatID, sel.MessageID); err != nil {
		logger.Warn("Failed to remove menu keyboard", zap.Error(err))
	}

	s.publish(events.TopicQuestionAnswered, answered)
	return nil
}

// SetupWebhook registers the configured webhook URL with Telegram
func (s *chatbotService) SetupWebhook() (string, error) {
	webhookURL := s.config.WebhookURL()
	if webhookURL == "" {
		return "", NewConfigurationError("webhook_base_url", "webhook base URL or host is required", "")
	}

	if err := s.provider.SetWebhook(webhookURL, s.config.SecretToken); err != nil {
		return "", err
	}
	return webhookURL, nil
}

// RemoveWebhook deletes the webhook registration
func (s *chatbotService) RemoveWebhook() error {
	return s.provider.DeleteWebhook()
}

// WebhookInfo returns the webhook status reported by Telegram
func (s *chatbotService) WebhookInfo() (*tgbotapi.WebhookInfo, error) {
	return s.provider.GetWebhookInfo()
}

// BotInfo returns the bot account
func (s *chatbotService) BotInfo() (*tgbotapi.User, error) {
	return s.provider.GetMe()
}

func (s *chatbotService) publish(topic string, event interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(topic, event); err != nil {
		s.logger.Warn("Failed to publish event", zap.String("topic", topic), zap.Error(err))
	}
}

func entryIDStrings(ids []knowledge.EntryID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
