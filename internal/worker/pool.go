package worker

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"

	"codeberg.org/snonux/coltrans/internal/chunk"
)

// WorkFunc runs one job
type WorkFunc func(ctx context.Context, job chunk.Job) Result

// CrashError reports a job that panicked. Its chunk produced no rows.
type CrashError struct {
	ChunkID int
	Cause   any
	Stack   []byte
}

func (e *CrashError) Error() string {
	return fmt.Sprintf("worker crashed on chunk %d: %v", e.ChunkID, e.Cause)
}

// DefaultSize returns the available parallelism minus one, at least one
func DefaultSize() int {
	if n := runtime.GOMAXPROCS(0) - 1; n > 0 {
		return n
	}
	return 1
}

// Pool runs jobs with at most Size of them in flight
type Pool struct {
	size int
}

// NewPool creates a pool. A size below one uses DefaultSize.
func NewPool(size int) *Pool {
	if size < 1 {
		size = DefaultSize()
	}
	return &Pool{size: size}
}

// Size returns the concurrency limit
func (p *Pool) Size() int {
	return p.size
}

// Run starts all jobs and returns a channel yielding exactly one Result per
// job in completion order. The channel is closed after the last result.
// A panicking job yields a Result with a *CrashError; jobs that had not
// started when ctx was cancelled yield a Result carrying ctx.Err().
func (p *Pool) Run(ctx context.Context, jobs []chunk.Job, fn WorkFunc) <-chan Result {
	results := make(chan Result, len(jobs))

	go func() {
		defer close(results)

		workers := pool.New().WithMaxGoroutines(p.size)
		for _, job := range jobs {
			workers.Go(func() {
				results <- p.runJob(ctx, job, fn)
			})
		}
		workers.Wait()
	}()

	return results
}

func (p *Pool) runJob(ctx context.Context, job chunk.Job, fn WorkFunc) Result {
	if err := ctx.Err(); err != nil {
		return Result{ChunkID: job.ChunkID, Err: err}
	}

	var result Result
	var catcher panics.Catcher
	catcher.Try(func() {
		result = fn(ctx, job)
	})

	if recovered := catcher.Recovered(); recovered != nil {
		log.Error().Int("chunk", job.ChunkID).Interface("panic", recovered.Value).
			Bytes("stack", recovered.Stack).Msg("Worker crashed")
		return Result{
			ChunkID: job.ChunkID,
			Err:     &CrashError{ChunkID: job.ChunkID, Cause: recovered.Value, Stack: recovered.Stack},
		}
	}

	result.ChunkID = job.ChunkID
	return result
}
