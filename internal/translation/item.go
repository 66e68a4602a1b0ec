package translation

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/snonux/coltrans/internal/table"
)

// DefaultTimeout bounds a single service call
const DefaultTimeout = 60 * time.Second

// Outcome describes what happened to one cell
type Outcome int

const (
	// OutcomeSkipped means the value was missing or not text
	OutcomeSkipped Outcome = iota
	// OutcomeTranslated means the service returned a translation
	OutcomeTranslated
	// OutcomeFailed means the service failed and the original was kept
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeTranslated:
		return "translated"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stats counts cell outcomes
type Stats struct {
	Translated int
	Skipped    int
	Failed     int
}

// Record counts one outcome
func (s *Stats) Record(o Outcome) {
	switch o {
	case OutcomeTranslated:
		s.Translated++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

// Add merges other into s
func (s *Stats) Add(other Stats) {
	s.Translated += other.Translated
	s.Skipped += other.Skipped
	s.Failed += other.Failed
}

// Total returns the number of cells counted
func (s Stats) Total() int {
	return s.Translated + s.Skipped + s.Failed
}

// ItemTranslator translates single cell values and never fails: any service
// error leaves the original value in place.
type ItemTranslator struct {
	service    Service
	sourceLang string
	targetLang string
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewItemTranslator creates a translator for one language pair. A timeout of
// zero uses DefaultTimeout.
func NewItemTranslator(service Service, sourceLang, targetLang string, timeout time.Duration) *ItemTranslator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ItemTranslator{
		service:    service,
		sourceLang: sourceLang,
		targetLang: targetLang,
		timeout:    timeout,
		logger:     log.With().Str("source", sourceLang).Str("target", targetLang).Logger(),
	}
}

// Translate returns the translated value and what happened. Missing and
// non-text values are returned unchanged without calling the service.
func (it *ItemTranslator) Translate(ctx context.Context, v table.Value) (table.Value, Outcome) {
	if table.IsMissing(v) {
		return v, OutcomeSkipped
	}
	text, ok := table.Text(v)
	if !ok {
		return v, OutcomeSkipped
	}

	callCtx, cancel := context.WithTimeout(ctx, it.timeout)
	defer cancel()

	translated, err := it.service.Translate(callCtx, text, it.sourceLang, it.targetLang)
	if err != nil {
		if ctx.Err() != nil {
			// the run was cancelled; the caller drops the whole chunk
			return v, OutcomeFailed
		}
		it.logger.Warn().Err(err).Str("text", truncate(text, 60)).Msg("Translation failed, keeping original")
		return v, OutcomeFailed
	}
	return translated, OutcomeTranslated
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
