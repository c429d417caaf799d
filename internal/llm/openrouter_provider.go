package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/OperacionalChopp/botchopp/internal/config"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

const defaultOpenRouterEndpoint = "https://openrouter.ai/api/v1"

// OpenRouterProvider implements Provider for OpenAI-compatible chat
// completion APIs, OpenRouter by default
type OpenRouterProvider struct {
	config  config.LLMConfig
	client  openai.Client
	logger  *zap.Logger
	backoff backoffFactory
}

// NewOpenRouterProvider creates a new OpenRouterProvider instance. The
// client's own retries are disabled so retry policy stays in one place.
func NewOpenRouterProvider(cfg config.LLMConfig, logger *zap.Logger) *OpenRouterProvider {
	baseURL := cfg.APIEndpoint
	if baseURL == "" {
		baseURL = defaultOpenRouterEndpoint
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second}),
		option.WithHeader("X-Title", "BotChopp"),
	)

	return &OpenRouterProvider{
		config:  cfg,
		client:  client,
		logger:  logger,
		backoff: newBackoffFactory(cfg),
	}
}

// Complete implements the Provider interface
func (p *OpenRouterProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if p.config.APIKey == "" {
		return nil, NewConfigurationError("api_key", "API key is required", "OpenRouter API key must be configured")
	}

	params := p.buildParams(req)

	var response *CompletionResponse
	err := retry(ctx, p.backoff(), p.logger, func() error {
		start := time.Now()
		resp, callErr := p.client.Chat.Completions.New(ctx, params)
		if callErr != nil {
			return p.classify(callErr)
		}

		response, callErr = p.parseResponse(resp)
		if callErr != nil {
			return callErr
		}

		p.logger.Debug("Completion received",
			zap.String("model", response.Model),
			zap.Int64("prompt_tokens", response.PromptTokens),
			zap.Int64("completion_tokens", response.CompletionTokens),
			zap.Duration("duration", time.Since(start)))
		return nil
	})
	if err != nil {
		p.logger.Error("OpenRouter completion failed after retries",
			zap.Int64("chat_id", req.ChatID),
			zap.String("model", p.config.Model),
			zap.Error(err))
		return nil, err
	}

	return response, nil
}

// ValidateConnection implements the Provider interface
func (p *OpenRouterProvider) ValidateConnection(ctx context.Context) error {
	_, err := p.Complete(ctx, CompletionRequest{Prompt: "ping", MaxTokens: 5})
	if err != nil {
		return fmt.Errorf("connection validation failed: %w", err)
	}
	return nil
}

// GetModelInfo implements the Provider interface
func (p *OpenRouterProvider) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:         p.config.Model,
		Provider:     "OpenRouter",
		Capabilities: []string{"text_generation", "chat"},
		MaxTokens:    defaultMaxTokens,
	}
}

func (p *OpenRouterProvider) buildParams(req CompletionRequest) openai.ChatCompletionNewParams {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, msg := range req.Messages() {
		switch msg.Role {
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	return openai.ChatCompletionNewParams{
		Model:       p.config.Model,
		Messages:    messages,
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(int64(maxTokens)),
	}
}

func (p *OpenRouterProvider) parseResponse(resp *openai.ChatCompletion) (*CompletionResponse, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, ErrEmptyCompletion
	}

	model := resp.Model
	if model == "" {
		model = p.config.Model
	}

	return &CompletionResponse{
		Text:             text,
		Model:            model,
		FinishReason:     string(resp.Choices[0].FinishReason),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// classify converts client errors into the package's typed errors
func (p *OpenRouterProvider) classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return errorForStatus(apiErr.StatusCode, "", apiErr.Error())
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return NewNetworkError("chat_completion", "Failed to reach completion API", err)
}
