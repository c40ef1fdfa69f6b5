// Package ai holds the chat-completion runtimes used to generate market summaries.
package ai

import "context"

// Runtime is a chat-completion backend such as an OpenAI-compatible API or a
// local Ollama server.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers used across the CLI for selection.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// Default base URLs of the hosted providers.
const (
	OpenAIBaseURL     = "https://api.openai.com/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	OllamaHost        = "http://127.0.0.1:11434"
)

// NeedsAPIKey reports whether the provider authenticates with an API key.
func NeedsAPIKey(provider string) bool {
	return provider != ProviderOllama
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest is a chat completion request. A nil Temperature is left to
// the provider; a zero Temperature is sent.
type GenerateRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Choice struct {
	Message Message `json:"message"`
}

type GenerateResponse struct {
	ID        string   `json:"id"`
	Choices   []Choice `json:"choices"`
	Usage     Usage    `json:"usage"`
	RequestID string   `json:"-"`
}

// Text returns the first choice's content, or "" when there are no choices.
func (r *GenerateResponse) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}
