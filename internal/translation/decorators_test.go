package translation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/coltrans/internal/testutil"
)

func TestTranslationCache(t *testing.T) {
	cache := NewTranslationCache()

	// Test empty cache
	if _, found := cache.Get("apple", "en", "es"); found {
		t.Error("Expected not found in empty cache")
	}

	cache.Add("apple", "en", "es", "manzana")
	cache.Add("apple", "en", "de", "Apfel")

	translation, found := cache.Get("apple", "en", "es")
	if !found || translation != "manzana" {
		t.Errorf("Expected 'manzana', got '%s' (found=%v)", translation, found)
	}

	translation, found = cache.Get("apple", "en", "de")
	if !found || translation != "Apfel" {
		t.Errorf("Expected 'Apfel', got '%s' (found=%v)", translation, found)
	}

	if cache.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", cache.Len())
	}
}

func TestCachingService(t *testing.T) {
	mock := &testutil.MockTranslator{
		Translations: map[string]string{"apple": "manzana"},
		Errors:       map[string]error{"broken": testutil.ErrServiceDown},
	}
	svc := NewCachingService(mock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := svc.Translate(ctx, "apple", "en", "es")
		if err != nil || got != "manzana" {
			t.Fatalf("Translate() = %q, %v", got, err)
		}
	}
	if mock.CallCount() != 1 {
		t.Errorf("Expected 1 backend call for repeated text, got %d", mock.CallCount())
	}

	// failures are not cached
	for i := 0; i < 2; i++ {
		if _, err := svc.Translate(ctx, "broken", "en", "es"); err == nil {
			t.Error("Expected error from backend")
		}
	}
	if mock.CallCount() != 3 {
		t.Errorf("Expected failed text to be retried, got %d calls", mock.CallCount())
	}
	if svc.Cache().Len() != 1 {
		t.Errorf("Expected only the success to be cached, got %d entries", svc.Cache().Len())
	}
}

func TestBreakerService_OpensAfterConsecutiveFailures(t *testing.T) {
	mock := &testutil.MockTranslator{
		Errors: map[string]error{"bad": testutil.ErrServiceDown},
	}
	svc := NewBreakerService(mock, "test", 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Translate(ctx, "bad", "en", "es")
		if !errors.Is(err, testutil.ErrServiceDown) {
			t.Fatalf("call %d: expected backend error, got %v", i, err)
		}
	}

	if svc.State() != gobreaker.StateOpen {
		t.Fatalf("Expected breaker to be open, got %s", svc.State())
	}

	_, err := svc.Translate(ctx, "good", "en", "es")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected ErrOpenState while open, got %v", err)
	}
	if mock.Called("good") {
		t.Error("Backend should not be called while the breaker is open")
	}
}

func TestBreakerService_Success(t *testing.T) {
	mock := &testutil.MockTranslator{Translations: map[string]string{"cat": "gato"}}
	svc := NewBreakerService(mock, "test", 3, time.Minute)

	got, err := svc.Translate(context.Background(), "cat", "en", "es")
	if err != nil || got != "gato" {
		t.Errorf("Translate() = %q, %v", got, err)
	}
	if svc.State() != gobreaker.StateClosed {
		t.Errorf("Expected closed breaker, got %s", svc.State())
	}
}

func TestNewRateLimitedService_Validation(t *testing.T) {
	tests := []struct {
		name      string
		perSecond int
		perMinute int
		wantErr   bool
	}{
		{"per second only", 5, 0, false},
		{"per minute only", 0, 100, false},
		{"both valid", 5, 100, false},
		{"none", 0, 0, true},
		{"minute not above second", 10, 10, true},
		{"minute at sixty times second", 1, 60, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRateLimitedService(NoopService{}, "test", tt.perSecond, tt.perMinute)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRateLimitedService() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRateLimitedService_WaitsForSlot(t *testing.T) {
	mock := &testutil.MockTranslator{}
	svc, err := NewRateLimitedService(mock, "test", 1, 0)
	if err != nil {
		t.Fatalf("NewRateLimitedService() error = %v", err)
	}

	if _, err := svc.Translate(context.Background(), "first", "en", "es"); err != nil {
		t.Fatalf("First call should pass: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = svc.Translate(ctx, "second", "en", "es")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected the second call to wait past the deadline, got %v", err)
	}
	if mock.Called("second") {
		t.Error("Backend should not be called before a slot is free")
	}
}
