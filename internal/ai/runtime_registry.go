package ai

import "time"

// RuntimeFactory builds a Runtime from the generic config below.
type RuntimeFactory func(RuntimeConfig) Runtime

// RuntimeConfig carries common knobs used by runtimes.
type RuntimeConfig struct {
	HTTPTimeout time.Duration
	RetryMax    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Hosted providers
	APIKey  string
	BaseURL string
	// Ollama
	Host string
}

var registry = map[string]RuntimeFactory{}

// RegisterRuntime registers a provider name with its factory.
func RegisterRuntime(name string, f RuntimeFactory) { registry[name] = f }

// GetRuntime creates a Runtime for the given provider if registered.
func GetRuntime(name string, cfg RuntimeConfig) (Runtime, bool) {
	if f, ok := registry[name]; ok {
		return f(cfg), true
	}
	return nil, false
}

func hosted(defaultBase string) RuntimeFactory {
	return func(c RuntimeConfig) Runtime {
		base := c.BaseURL
		if base == "" {
			base = defaultBase
		}
		return NewClient(ClientOptions{
			APIKey:      c.APIKey,
			BaseURL:     base,
			HTTPTimeout: c.HTTPTimeout,
			RetryMax:    c.RetryMax,
			BaseDelay:   c.BaseDelay,
			MaxDelay:    c.MaxDelay,
		})
	}
}

func init() {
	RegisterRuntime(ProviderOpenAI, hosted(OpenAIBaseURL))
	RegisterRuntime(ProviderOpenRouter, hosted(OpenRouterBaseURL))
	RegisterRuntime(ProviderOllama, func(c RuntimeConfig) Runtime {
		if c.BaseDelay <= 0 {
			c.BaseDelay = 200 * time.Millisecond
		}
		if c.MaxDelay <= 0 {
			c.MaxDelay = 1 * time.Second
		}
		return NewOllamaClient(c.Host, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay)
	})
}
