package chat

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// Provider is the chat completion backend. *openai.Client implements it.
type Provider interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewOpenAIProvider creates a provider for the OpenAI API or any
// compatible endpoint when baseURL is set.
func NewOpenAIProvider(apiKey, baseURL string) Provider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}
