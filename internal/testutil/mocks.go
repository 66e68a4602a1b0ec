package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MockTranslator mocks the translation service. It is safe for concurrent use.
type MockTranslator struct {
	Translations map[string]string
	Errors       map[string]error
	// Panics lists texts that make Translate panic, simulating a crashing worker
	Panics map[string]bool
	// Delay returns an artificial latency per text, e.g. to shuffle completion order
	Delay func(text string) time.Duration

	mu    sync.Mutex
	calls []string
}

// Translate mocks translating text
func (m *MockTranslator) Translate(ctx context.Context, text, fromLang, toLang string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.Delay != nil {
		if d := m.Delay(text); d > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(d):
			}
		}
	}

	if m.Panics[text] {
		panic(fmt.Sprintf("mock translator crashed on %q", text))
	}

	if err, ok := m.Errors[text]; ok {
		return "", err
	}

	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}

	// Default mock translation
	return fmt.Sprintf("%s [%s->%s]", text, fromLang, toLang), nil
}

// Calls returns the texts passed to Translate, sorted
func (m *MockTranslator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]string, len(m.calls))
	copy(calls, m.calls)
	sort.Strings(calls)
	return calls
}

// CallCount returns how often Translate was called
func (m *MockTranslator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Called reports whether Translate was called with text
func (m *MockTranslator) Called(text string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c == text {
			return true
		}
	}
	return false
}
