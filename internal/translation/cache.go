package translation

import (
	"context"
	"sync"
)

// NoopService returns its input unchanged. Useful for dry runs.
type NoopService struct{}

// Translate returns text as is
func (NoopService) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}

type cacheKey struct {
	text, source, target string
}

// TranslationCache stores translations in memory. It is safe for concurrent use.
type TranslationCache struct {
	mu           sync.RWMutex
	translations map[cacheKey]string
}

// NewTranslationCache creates a new translation cache
func NewTranslationCache() *TranslationCache {
	return &TranslationCache{
		translations: make(map[cacheKey]string),
	}
}

// Add adds a translation to the cache
func (tc *TranslationCache) Add(text, sourceLang, targetLang, translation string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.translations[cacheKey{text, sourceLang, targetLang}] = translation
}

// Get retrieves a translation from the cache
func (tc *TranslationCache) Get(text, sourceLang, targetLang string) (string, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	translation, ok := tc.translations[cacheKey{text, sourceLang, targetLang}]
	return translation, ok
}

// Len returns the number of cached translations
func (tc *TranslationCache) Len() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.translations)
}

// CachingService answers repeated texts from a TranslationCache. Only
// successful translations are cached so a failed item is retried when it
// shows up again in a later row.
type CachingService struct {
	next  Service
	cache *TranslationCache
}

// NewCachingService wraps next with an in-memory cache
func NewCachingService(next Service) *CachingService {
	return &CachingService{next: next, cache: NewTranslationCache()}
}

// Translate returns a cached translation or delegates to the wrapped service
func (s *CachingService) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if translation, ok := s.cache.Get(text, sourceLang, targetLang); ok {
		return translation, nil
	}

	translation, err := s.next.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		return "", err
	}

	s.cache.Add(text, sourceLang, targetLang, translation)
	return translation, nil
}

// Cache exposes the underlying cache
func (s *CachingService) Cache() *TranslationCache {
	return s.cache
}
