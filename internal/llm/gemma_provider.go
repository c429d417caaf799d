package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/OperacionalChopp/botchopp/internal/config"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GemmaProvider implements Provider for the Gemini generateContent API,
// which also serves the Gemma model family
type GemmaProvider struct {
	config    config.LLMConfig
	client    *genai.Client
	clientErr error
	logger    *zap.Logger
	backoff   backoffFactory
}

// NewGemmaProvider creates a new GemmaProvider instance. A client that
// cannot be built is reported by Complete, not here.
func NewGemmaProvider(cfg config.LLMConfig, logger *zap.Logger) *GemmaProvider {
	p := &GemmaProvider{
		config:  cfg,
		logger:  logger,
		backoff: newBackoffFactory(cfg),
	}

	if cfg.APIKey != "" {
		p.client, p.clientErr = genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:      cfg.APIKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPClient:  &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
			HTTPOptions: genai.HTTPOptions{BaseURL: geminiBaseURL(cfg.APIEndpoint)},
		})
	}
	return p
}

// geminiBaseURL keeps the SDK default unless an endpoint other than the
// OpenRouter default is configured
func geminiBaseURL(endpoint string) string {
	if endpoint == "" || strings.TrimRight(endpoint, "/") == defaultOpenRouterEndpoint {
		return ""
	}
	return strings.TrimRight(endpoint, "/") + "/"
}

// Complete implements the Provider interface
func (p *GemmaProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if p.config.APIKey == "" {
		return nil, NewConfigurationError("api_key", "API key is required", "Gemini API key must be configured")
	}
	if p.clientErr != nil {
		return nil, NewConfigurationError("api_endpoint", "failed to create Gemini client", p.clientErr.Error())
	}

	contents, genConfig := p.buildRequest(req)

	var response *CompletionResponse
	err := retry(ctx, p.backoff(), p.logger, func() error {
		resp, callErr := p.client.Models.GenerateContent(ctx, p.config.Model, contents, genConfig)
		if callErr != nil {
			return p.classify(callErr)
		}
		response, callErr = p.parseResponse(resp)
		return callErr
	})
	if err != nil {
		p.logger.Error("Gemini completion failed after retries",
			zap.Int64("chat_id", req.ChatID),
			zap.Error(err))
		return nil, err
	}

	return response, nil
}

// ValidateConnection implements the Provider interface
func (p *GemmaProvider) ValidateConnection(ctx context.Context) error {
	_, err := p.Complete(ctx, CompletionRequest{Prompt: "ping", MaxTokens: 5})
	if err != nil {
		return fmt.Errorf("connection validation failed: %w", err)
	}
	return nil
}

// GetModelInfo implements the Provider interface
func (p *GemmaProvider) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:         p.config.Model,
		Provider:     "Google",
		Capabilities: []string{"text_generation", "chat"},
		MaxTokens:    8192,
	}
}

func (p *GemmaProvider) buildRequest(req CompletionRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(temperature)),
		TopK:            genai.Ptr[float32](40),
		TopP:            genai.Ptr[float32](0.95),
		MaxOutputTokens: int32(maxTokens),
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		},
	}
	if req.SystemPrompt != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	messages := req.Messages()
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := genai.Role(genai.RoleUser)
		if msg.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	return contents, genConfig
}

func (p *GemmaProvider) parseResponse(resp *genai.GenerateContentResponse) (*CompletionResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, ErrEmptyCompletion
	}

	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		return nil, ErrEmptyCompletion
	}

	response := &CompletionResponse{
		Text:         reply,
		Model:        p.config.Model,
		FinishReason: string(resp.Candidates[0].FinishReason),
	}
	if resp.UsageMetadata != nil {
		response.PromptTokens = int64(resp.UsageMetadata.PromptTokenCount)
		response.CompletionTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
	}
	return response, nil
}

// classify converts SDK errors into the package's typed errors
func (p *GemmaProvider) classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return errorForStatus(apiErr.Code, apiErr.Status, apiErr.Message)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return NewNetworkError("generate_content", "Failed to reach Gemini API", err)
}
