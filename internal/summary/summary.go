// Package summary turns a rendered market prompt into persisted summary text
// using a chat-completion runtime.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/housing-cli/internal/ai"
	"github.com/KaramelBytes/housing-cli/internal/utils"
)

// Defaults applied to zero-valued Params and Config fields.
const (
	DefaultRole        = "data analyst"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 300
	DefaultModel       = "gpt-3.5-turbo"
)

var (
	// ErrService matches every failure of the text-generation service.
	ErrService = errors.New("summary service failed")
	// ErrMissingCredential is returned when a hosted provider has no API key.
	ErrMissingCredential = errors.New("missing API credential")
)

// ServiceError wraps a runtime failure with the provider that produced it.
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func (e *ServiceError) Is(target error) bool { return target == ErrService }

// Params tunes a single generation. A nil Temperature takes the default;
// a set zero is sent unchanged.
type Params struct {
	Role        string
	Temperature *float64
	MaxTokens   int
}

// Temperature returns a pointer to v for Params.Temperature.
func Temperature(v float64) *float64 { return &v }

func (p Params) withDefaults() Params {
	if strings.TrimSpace(p.Role) == "" {
		p.Role = DefaultRole
	}
	if p.Temperature == nil {
		p.Temperature = Temperature(DefaultTemperature)
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = DefaultMaxTokens
	}
	return p
}

// Config selects and configures the runtime behind a Generator.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	OllamaHost  string
	HTTPTimeout time.Duration
	RetryMax    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Generator produces summaries through an ai.Runtime.
type Generator struct {
	rt       ai.Runtime
	provider string
	model    string
}

// NewGenerator resolves the runtime for cfg.Provider.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Provider == "" {
		cfg.Provider = ai.ProviderOpenAI
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if ai.NeedsAPIKey(cfg.Provider) && strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: set OPENAI_API_KEY (or api_key in config) for provider %q", ErrMissingCredential, cfg.Provider)
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 1
	}
	rt, ok := ai.GetRuntime(cfg.Provider, ai.RuntimeConfig{
		HTTPTimeout: cfg.HTTPTimeout,
		RetryMax:    cfg.RetryMax,
		BaseDelay:   cfg.BaseDelay,
		MaxDelay:    cfg.MaxDelay,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Host:        cfg.OllamaHost,
	})
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
	return NewWithRuntime(rt, cfg.Provider, cfg.Model), nil
}

// NewWithRuntime wraps an existing runtime.
func NewWithRuntime(rt ai.Runtime, provider, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{rt: rt, provider: provider, model: model}
}

// Model reports the model name requests are sent with.
func (g *Generator) Model() string { return g.model }

// Generate sends prompt as the user message, with the role as the system
// message, and returns the trimmed reply.
func (g *Generator) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	p = p.withDefaults()
	req := ai.GenerateRequest{
		Model: g.model,
		Messages: []ai.Message{
			{Role: "system", Content: fmt.Sprintf("You are a %s.", p.Role)},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
	}
	resp, err := g.rt.Generate(ctx, req)
	if err != nil {
		return "", &ServiceError{Provider: g.provider, Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", &ServiceError{Provider: g.provider, Err: errors.New("response contained no choices")}
	}
	return strings.TrimSpace(resp.Text()), nil
}

// Write persists text at path atomically.
func Write(path, text string) error {
	if err := utils.SafeWriteFile(path, []byte(text)); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
