package translation

import (
	"context"
	"os"
	"testing"
)

func TestNewOpenAIService(t *testing.T) {
	svc := NewOpenAIService("test-api-key", "")

	if svc == nil {
		t.Fatal("NewOpenAIService returned nil")
	}

	if svc.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", svc.apiKey)
	}

	if svc.model != DefaultOpenAIModel {
		t.Errorf("Expected default model %s, got %s", DefaultOpenAIModel, svc.model)
	}

	if svc.client == nil {
		t.Error("OpenAI client not initialized")
	}
}

func TestOpenAITranslate_NoAPIKey(t *testing.T) {
	svc := NewOpenAIService("", "")

	_, err := svc.Translate(context.Background(), "hello", "en", "es")
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}

	if err.Error() != "OpenAI API key not found" {
		t.Errorf("Expected 'OpenAI API key not found' error, got: %v", err)
	}
}

func TestOpenAITranslate_Integration(t *testing.T) {
	// Skip if no API key
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	svc := NewOpenAIService(apiKey, "")

	translation, err := svc.Translate(context.Background(), "apple", "en", "es")
	if err != nil {
		t.Errorf("Translate failed: %v", err)
	}

	if translation == "" {
		t.Error("Got empty translation")
	}

	t.Logf("Translation of 'apple': %s", translation)
}

func TestGeminiTranslate_Integration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: GEMINI_API_KEY not set")
	}

	svc, err := NewGeminiService(context.Background(), apiKey, "")
	if err != nil {
		t.Fatalf("NewGeminiService failed: %v", err)
	}

	translation, err := svc.Translate(context.Background(), "apple", "en", "es")
	if err != nil {
		t.Errorf("Translate failed: %v", err)
	}
	t.Logf("Translation of 'apple': %s", translation)
}

func TestNewGeminiService_NoAPIKey(t *testing.T) {
	if _, err := NewGeminiService(context.Background(), "", ""); err == nil {
		t.Error("Expected error for missing API key")
	}
}

func TestNoopService(t *testing.T) {
	got, err := NoopService{}.Translate(context.Background(), "hello", "en", "es")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "hello" {
		t.Errorf("Expected input unchanged, got %q", got)
	}
}

func TestNewService(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		check   func(t *testing.T, svc Service)
	}{
		{
			name:   "noop without decorators",
			config: &Config{Provider: ProviderNoop},
			check: func(t *testing.T, svc Service) {
				if _, ok := svc.(NoopService); !ok {
					t.Errorf("Expected NoopService, got %T", svc)
				}
			},
		},
		{
			name:   "cache is outermost",
			config: &Config{Provider: ProviderNoop, EnableCache: true, BreakerFailures: 3, RequestsPerSecond: 5},
			check: func(t *testing.T, svc Service) {
				caching, ok := svc.(*CachingService)
				if !ok {
					t.Fatalf("Expected *CachingService, got %T", svc)
				}
				breaker, ok := caching.next.(*BreakerService)
				if !ok {
					t.Fatalf("Expected *BreakerService inside cache, got %T", caching.next)
				}
				if _, ok := breaker.next.(*RateLimitedService); !ok {
					t.Errorf("Expected *RateLimitedService inside breaker, got %T", breaker.next)
				}
			},
		},
		{
			name:   "openai with key",
			config: &Config{Provider: ProviderOpenAI, OpenAIKey: "test-key"},
			check: func(t *testing.T, svc Service) {
				if _, ok := svc.(*OpenAIService); !ok {
					t.Errorf("Expected *OpenAIService, got %T", svc)
				}
			},
		},
		{
			name:    "openai without key",
			config:  &Config{Provider: ProviderOpenAI},
			wantErr: true,
		},
		{
			name:    "gemini without key",
			config:  &Config{Provider: ProviderGemini},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			config:  &Config{Provider: "babelfish"},
			wantErr: true,
		},
		{
			name:    "invalid rate limits",
			config:  &Config{Provider: ProviderNoop, RequestsPerSecond: 10, RequestsPerMinute: 5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewService(context.Background(), tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewService() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, svc)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Provider != ProviderOpenAI {
		t.Errorf("Expected provider %s, got %s", ProviderOpenAI, config.Provider)
	}
	if !config.EnableCache {
		t.Error("Expected cache to be enabled by default")
	}
	if config.BreakerFailures == 0 {
		t.Error("Expected circuit breaker to be enabled by default")
	}
}
