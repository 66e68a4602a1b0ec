package translation

import (
	"context"
	"fmt"
	"time"

	catrate "github.com/joeycumines/go-catrate"
)

// RateLimitedService delays calls so the wrapped backend sees at most the
// configured number of requests per second and per minute.
type RateLimitedService struct {
	next     Service
	limiter  *catrate.Limiter
	category string
}

// NewRateLimitedService wraps next with a sliding window rate limiter. Zero
// disables a window. When both windows are set the per-minute budget must be
// larger than the per-second one and smaller than 60 times it.
func NewRateLimitedService(next Service, category string, perSecond, perMinute int) (*RateLimitedService, error) {
	rates := make(map[time.Duration]int)
	if perSecond > 0 {
		rates[time.Second] = perSecond
	}
	if perMinute > 0 {
		rates[time.Minute] = perMinute
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("no rate limit configured")
	}
	if perSecond > 0 && perMinute > 0 && (perMinute <= perSecond || perMinute >= perSecond*60) {
		return nil, fmt.Errorf("invalid rate limits: %d/s and %d/min", perSecond, perMinute)
	}

	return &RateLimitedService{
		next:     next,
		limiter:  catrate.NewLimiter(rates),
		category: category,
	}, nil
}

// Translate waits for a free slot then delegates to the wrapped service
func (s *RateLimitedService) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	return s.next.Translate(ctx, text, sourceLang, targetLang)
}

func (s *RateLimitedService) wait(ctx context.Context) error {
	for {
		next, ok := s.limiter.Allow(s.category)
		if ok {
			return nil
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
