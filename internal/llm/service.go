package llm

import (
	"context"
	"strings"
	"time"

	"github.com/OperacionalChopp/botchopp/internal/config"
	"github.com/OperacionalChopp/botchopp/internal/events"

	"go.uber.org/zap"
)

// LLMService answers free-text questions the FAQ could not match
type LLMService interface {
	// Ask forwards text to the model together with the chat's recent
	// turns and records the exchange on success. userName may be empty.
	Ask(ctx context.Context, chatID int64, userName, text string) (string, error)
	Enabled() bool
	ModelInfo() ModelInfo
}

// llmService implements the LLMService interface
type llmService struct {
	config   config.LLMConfig
	eventBus events.EventBus
	logger   *zap.Logger
	provider Provider
	history  HistoryStore
	limiter  *ChatLimiter
	prompt   string
}

// NewProvider builds the provider named by cfg.Provider
func NewProvider(cfg config.LLMConfig, logger *zap.Logger) Provider {
	if cfg.Provider == config.ProviderGemini {
		return NewGemmaProvider(cfg, logger)
	}
	return NewOpenRouterProvider(cfg, logger)
}

// NewLLMService creates a new instance of LLMService. A nil history keeps
// turns in memory.
func NewLLMService(eventBus events.EventBus, logger *zap.Logger, cfg config.LLMConfig, history HistoryStore) LLMService {
	return NewLLMServiceWithProvider(eventBus, logger, cfg, NewProvider(cfg, logger), history)
}

// NewLLMServiceWithProvider creates an LLMService around an existing provider
func NewLLMServiceWithProvider(eventBus events.EventBus, logger *zap.Logger, cfg config.LLMConfig, provider Provider, history HistoryStore) LLMService {
	if history == nil {
		history = NewMemoryHistory(cfg.HistorySize)
	}

	prompt := strings.TrimSpace(cfg.SystemPrompt)
	if prompt == "" {
		prompt = DefaultSystemPrompt
	}

	return &llmService{
		config:   cfg,
		eventBus: eventBus,
		logger:   logger,
		provider: provider,
		history:  history,
		limiter:  NewChatLimiter(cfg.RatePerMin, cfg.Burst),
		prompt:   prompt,
	}
}

func (s *llmService) Enabled() bool {
	return s.config.Enabled && s.provider != nil
}

func (s *llmService) ModelInfo() ModelInfo {
	if s.provider == nil {
		return ModelInfo{}
	}
	return s.provider.GetModelInfo()
}

func (s *llmService) Ask(ctx context.Context, chatID int64, userName, text string) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyCompletion
	}

	if !s.limiter.Allow(chatID) {
		err := RateLimitError{ErrorMsg: "too many AI requests for this chat", Local: true}
		s.publish(chatID, 0, err)
		return "", err
	}

	history, err := s.history.Get(ctx, chatID)
	if err != nil {
		// degrade to a context-free question rather than failing
		s.logger.Warn("Failed to read conversation history",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		history = nil
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.config.Timeout)*time.Second)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.provider.Complete(ctx, CompletionRequest{
		ChatID:       chatID,
		SystemPrompt: s.systemPrompt(userName),
		History:      history,
		Prompt:       text,
	})
	latency := time.Since(start)
	if err == nil && (resp == nil || strings.TrimSpace(resp.Text) == "") {
		err = ErrEmptyCompletion
	}
	if err != nil {
		s.logger.Error("AI delegation failed",
			zap.Int64("chat_id", chatID),
			zap.Duration("latency", latency),
			zap.Error(err))
		s.publish(chatID, latency, err)
		return "", err
	}

	reply := strings.TrimSpace(resp.Text)
	if err := s.history.Append(ctx, chatID,
		Message{Role: RoleUser, Content: text},
		Message{Role: RoleAssistant, Content: reply},
	); err != nil {
		s.logger.Warn("Failed to store conversation history",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	s.logger.Info("AI delegation succeeded",
		zap.Int64("chat_id", chatID),
		zap.String("model", resp.Model),
		zap.Duration("latency", latency))
	s.publish(chatID, latency, nil)

	return reply, nil
}

// systemPrompt addresses the customer by first name when Telegram sent one
func (s *llmService) systemPrompt(userName string) string {
	name := strings.TrimSpace(userName)
	if name == "" {
		return s.prompt
	}
	return s.prompt + "\nO cliente se chama " + name + "."
}

func (s *llmService) publish(chatID int64, latency time.Duration, err error) {
	if s.eventBus == nil {
		return
	}

	info := s.provider.GetModelInfo()
	event := events.AIDelegated{
		Event:    events.NewEvent(),
		ChatID:   chatID,
		Provider: info.Provider,
		Model:    info.Name,
		Success:  err == nil,
		Latency:  latency,
	}
	if err != nil {
		event.Error = err.Error()
	}

	if pubErr := s.eventBus.Publish(events.TopicAIDelegated, event); pubErr != nil {
		s.logger.Error("Failed to publish AIDelegated event", zap.Error(pubErr))
	}
}
