package llm

import (
	"context"
)

// Provider defines the interface for text completion backends
type Provider interface {
	// Complete sends the conversation to the model and returns its reply
	// ctx: context for timeout and cancellation control
	// req: system prompt, prior turns and the new user message
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// ValidateConnection checks if the provider is reachable and healthy
	ValidateConnection(ctx context.Context) error

	// GetModelInfo returns metadata about the model being used
	GetModelInfo() ModelInfo
}

// ModelInfo contains metadata about the LLM model
type ModelInfo struct {
	Name         string   `json:"name"`     // Model name (e.g., "meta-llama/llama-4-maverick:free")
	Provider     string   `json:"provider"` // Provider name (e.g., "OpenRouter")
	Capabilities []string `json:"capabilities"`
	MaxTokens    int      `json:"max_tokens"`
}
