package translation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// BreakerService stops calling a failing backend for a while once it has
// failed maxFailures times in a row. While open, calls fail immediately with
// gobreaker.ErrOpenState, which the ItemTranslator treats as an ordinary
// translation failure.
type BreakerService struct {
	next Service
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerService wraps next with a circuit breaker
func NewBreakerService(next Service, name string, maxFailures uint32, openTimeout time.Duration) *BreakerService {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().Str("service", name).Stringer("from", from).Stringer("to", to).Msg("Translation circuit breaker changed state")
		},
		// a cancelled run is not the backend's fault
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &BreakerService{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Translate delegates to the wrapped service unless the breaker is open
func (s *BreakerService) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.Translate(ctx, text, sourceLang, targetLang)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State returns the current breaker state
func (s *BreakerService) State() gobreaker.State {
	return s.cb.State()
}
