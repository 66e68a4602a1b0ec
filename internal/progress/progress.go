package progress

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"codeberg.org/snonux/coltrans/internal/worker"
)

// Reporter counts completed chunks out of a known total
type Reporter struct {
	total     int64
	completed atomic.Int64
	start     time.Time
	w         io.Writer
	now       func() time.Time
}

// New creates a reporter for total chunks. A nil writer disables rendering.
func New(total int, w io.Writer) *Reporter {
	return &Reporter{
		total: int64(total),
		start: time.Now(),
		w:     w,
		now:   time.Now,
	}
}

// Observe records one finished chunk, failed or not
func (r *Reporter) Observe(result worker.Result) {
	r.completed.Add(1)
	if r.w != nil {
		fmt.Fprintf(r.w, "\r%s", r.String())
	}
}

// Finish terminates the status line
func (r *Reporter) Finish() {
	if r.w != nil {
		fmt.Fprintln(r.w)
	}
}

// Completed returns the number of observed chunks
func (r *Reporter) Completed() int {
	return int(r.completed.Load())
}

// Total returns the expected number of chunks
func (r *Reporter) Total() int {
	return int(r.total)
}

// Elapsed returns the time since the reporter was created
func (r *Reporter) Elapsed() time.Duration {
	return r.now().Sub(r.start)
}

// Percent returns completion in percent. An empty run is 100% done.
func (r *Reporter) Percent() float64 {
	if r.total == 0 {
		return 100
	}
	return float64(r.completed.Load()) / float64(r.total) * 100
}

func (r *Reporter) String() string {
	return fmt.Sprintf("Processing chunks: %d/%d (%.1f%%), elapsed %s",
		r.Completed(), r.Total(), r.Percent(), r.Elapsed().Round(time.Second))
}
