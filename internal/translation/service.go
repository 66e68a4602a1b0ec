package translation

import (
	"context"
	"fmt"
	"time"
)

// Service translates one piece of text. Implementations may fail for any
// reason and callers must not assume success.
type Service interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// ServiceFunc adapts a function to the Service interface
type ServiceFunc func(ctx context.Context, text, sourceLang, targetLang string) (string, error)

// Translate calls f
func (f ServiceFunc) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return f(ctx, text, sourceLang, targetLang)
}

// Provider names
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNoop   = "noop"
)

// Config selects a backend and the decorators wrapped around it
type Config struct {
	Provider string // "openai", "gemini" or "noop"

	// OpenAI settings
	OpenAIKey   string
	OpenAIModel string

	// Gemini settings
	GeminiKey   string
	GeminiModel string

	// Decorators
	EnableCache       bool
	BreakerFailures   uint32        // consecutive failures that open the breaker, 0 disables
	BreakerTimeout    time.Duration // how long the breaker stays open
	RequestsPerSecond int           // 0 disables
	RequestsPerMinute int           // 0 disables
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:        ProviderOpenAI,
		OpenAIModel:     DefaultOpenAIModel,
		GeminiModel:     DefaultGeminiModel,
		EnableCache:     true,
		BreakerFailures: 10,
		BreakerTimeout:  30 * time.Second,
	}
}

// NewService creates the configured backend and wraps it with the enabled
// decorators. Cache lookups happen first so hits never consume rate budget,
// and an open breaker fails before waiting on the rate limiter.
func NewService(ctx context.Context, config *Config) (Service, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var svc Service
	switch config.Provider {
	case ProviderOpenAI:
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		svc = NewOpenAIService(config.OpenAIKey, config.OpenAIModel)

	case ProviderGemini:
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		gemini, err := NewGeminiService(ctx, config.GeminiKey, config.GeminiModel)
		if err != nil {
			return nil, err
		}
		svc = gemini

	case ProviderNoop:
		svc = NoopService{}

	default:
		return nil, fmt.Errorf("unknown translation provider: %s", config.Provider)
	}

	if config.RequestsPerSecond > 0 || config.RequestsPerMinute > 0 {
		limited, err := NewRateLimitedService(svc, config.Provider, config.RequestsPerSecond, config.RequestsPerMinute)
		if err != nil {
			return nil, err
		}
		svc = limited
	}

	if config.BreakerFailures > 0 {
		svc = NewBreakerService(svc, config.Provider, config.BreakerFailures, config.BreakerTimeout)
	}

	if config.EnableCache {
		svc = NewCachingService(svc)
	}

	return svc, nil
}
