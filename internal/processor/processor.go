package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeberg.org/snonux/coltrans/internal"
	"codeberg.org/snonux/coltrans/internal/batch"
	"codeberg.org/snonux/coltrans/internal/checkpoint"
	"codeberg.org/snonux/coltrans/internal/chunk"
	"codeberg.org/snonux/coltrans/internal/cli"
	"codeberg.org/snonux/coltrans/internal/progress"
	"codeberg.org/snonux/coltrans/internal/reassemble"
	"codeberg.org/snonux/coltrans/internal/table"
	"codeberg.org/snonux/coltrans/internal/translation"
	"codeberg.org/snonux/coltrans/internal/worker"
)

// FailedChunksError is returned when chunks still crashed after all retries.
// No output is written in that case.
type FailedChunksError struct {
	ChunkIDs []int
	Causes   []error
}

func (e *FailedChunksError) Error() string {
	return fmt.Sprintf("%d chunk(s) failed: %v", len(e.ChunkIDs), e.ChunkIDs)
}

// Unwrap exposes the per-chunk causes to errors.Is and errors.As
func (e *FailedChunksError) Unwrap() []error {
	return e.Causes
}

// Report summarizes one translated dataset
type Report struct {
	Input   string
	Output  string
	RunID   string
	Rows    int
	Chunks  int
	Resumed int // chunks restored from the checkpoint store
	Retried int // crashed chunks that were submitted again
	Stats   translation.Stats
	Elapsed time.Duration

	runKey string
}

// Processor handles the main dataset processing logic
type Processor struct {
	flags   *cli.Flags
	service translation.Service
	store   *checkpoint.Store

	out         io.Writer // summaries
	progressOut io.Writer // progress line, nil disables
}

// NewProcessor creates a processor around an existing translation service.
// A nil store disables checkpointing.
func NewProcessor(flags *cli.Flags, service translation.Service, store *checkpoint.Store) *Processor {
	p := &Processor{
		flags:   flags,
		service: service,
		store:   store,
		out:     os.Stdout,
	}
	if !flags.NoProgress {
		p.progressOut = os.Stderr
	}
	return p
}

// NewFromFlags builds the translation service and, when configured, opens the
// checkpoint store. Close releases the store.
func NewFromFlags(ctx context.Context, flags *cli.Flags) (*Processor, error) {
	service, err := translation.NewService(ctx, serviceConfig(flags))
	if err != nil {
		return nil, fmt.Errorf("failed to create translation service: %w", err)
	}

	var store *checkpoint.Store
	if flags.Checkpoint != "" {
		store, err = checkpoint.Open(flags.Checkpoint)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("path", flags.Checkpoint).Msg("Checkpointing enabled")
	}

	return NewProcessor(flags, service, store), nil
}

// serviceConfig maps flags onto the translation service configuration
func serviceConfig(flags *cli.Flags) *translation.Config {
	config := translation.DefaultConfig()
	config.Provider = flags.Provider
	config.OpenAIKey = cli.GetOpenAIKey()
	config.GeminiKey = cli.GetGeminiKey()
	config.EnableCache = !flags.NoCache
	config.BreakerFailures = uint32(flags.BreakerFailures)
	config.RequestsPerSecond = flags.RequestsPerSecond
	config.RequestsPerMinute = flags.RequestsPerMinute

	if flags.Model != "" {
		switch flags.Provider {
		case translation.ProviderOpenAI:
			config.OpenAIModel = flags.Model
		case translation.ProviderGemini:
			config.GeminiModel = flags.Model
		}
	}
	return config
}

// Close closes the checkpoint store if one is open
func (p *Processor) Close() error {
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}

// ProcessBatch translates every dataset listed in the batch file one after
// another. A failing dataset is reported and the rest continue.
func (p *Processor) ProcessBatch(ctx context.Context) error {
	entries, err := batch.ReadBatchFile(p.flags.BatchFile, p.flags.TargetLang)
	if err != nil {
		return err
	}

	// Track statistics
	var total translation.Stats
	processedCount := 0
	errorCount := 0
	start := time.Now()

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(p.out, "\nProcessing %d/%d: %s\n", i+1, len(entries), entry.Input)

		report, err := p.ProcessFile(ctx, entry.Input, entry.Output)
		if err != nil {
			log.Error().Err(err).Str("input", entry.Input).Msg("Dataset failed")
			errorCount++
			continue
		}
		processedCount++
		total.Add(report.Stats)
	}

	// Print summary
	fmt.Fprintf(p.out, "\n=== Batch Translation Summary ===\n")
	fmt.Fprintf(p.out, "Total datasets: %d\n", len(entries))
	fmt.Fprintf(p.out, "Processed: %d\n", processedCount)
	fmt.Fprintf(p.out, "Values translated: %d\n", total.Translated)
	fmt.Fprintf(p.out, "Values skipped: %d\n", total.Skipped)
	fmt.Fprintf(p.out, "Values kept after failure: %d\n", total.Failed)
	if errorCount > 0 {
		fmt.Fprintf(p.out, "Errors: %d\n", errorCount)
	}
	fmt.Fprintf(p.out, "Elapsed: %s\n", time.Since(start).Round(time.Second))
	fmt.Fprintf(p.out, "=================================\n")

	if errorCount > 0 {
		return fmt.Errorf("%d of %d datasets failed", errorCount, len(entries))
	}
	return nil
}

// ProcessFile reads one dataset, translates it and writes the result. An empty
// output path derives <name>_<target-lang><ext> next to the input.
func (p *Processor) ProcessFile(ctx context.Context, input, output string) (*Report, error) {
	if output == "" {
		output = internal.DeriveOutputPath(input, p.flags.TargetLang)
	}
	if output == input {
		return nil, fmt.Errorf("output would overwrite input %s", input)
	}
	// fail on unsupported formats before any translation work
	if _, err := table.DetectFormat(output); err != nil {
		return nil, err
	}

	src, err := table.ReadFile(input)
	if err != nil {
		return nil, err
	}

	translated, report, err := p.Translate(ctx, src, input)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := table.WriteFile(output, translated); err != nil {
		return nil, err
	}

	// the output now holds every chunk
	if p.store != nil {
		if err := p.store.Forget(context.WithoutCancel(ctx), report.runKey); err != nil {
			log.Warn().Err(err).Str("checkpoint", p.store.Path()).Msg("Failed to clear finished run from checkpoint")
		}
	}

	report.Output = output
	printReport(p.out, report)
	log.Info().Str("output", output).Dur("elapsed", report.Elapsed).
		Msgf("Translation completed in %.1f minutes", report.Elapsed.Minutes())
	return report, nil
}

// Translate translates the configured columns of tbl and returns a new table
// with the same schema and row order. input names the dataset for logging
// and checkpoint keys. Item failures keep the original value; crashed chunks
// are retried and reported through *FailedChunksError if they keep failing.
func (p *Processor) Translate(ctx context.Context, tbl *table.Table, input string) (*table.Table, *Report, error) {
	start := time.Now()
	columns := p.flags.Columns

	// Job level validation happens before any worker starts
	if tbl == nil {
		return nil, nil, chunk.ErrNilTable
	}
	if len(columns) == 0 {
		return nil, nil, chunk.ErrNoColumns
	}
	if err := tbl.RequireColumns(columns); err != nil {
		return nil, nil, err
	}

	work := tbl
	if len(p.flags.ExcludeRows) > 0 {
		work = chunk.Exclude(tbl, p.flags.ExcludeRows)
		log.Info().Int("excluded", tbl.Len()-work.Len()).Msg("Dropped excluded rows")
	}

	chunks, err := chunk.Split(work, p.flags.ChunkSize)
	if err != nil {
		return nil, nil, err
	}
	jobs, err := chunk.NewJobs(chunks, columns)
	if err != nil {
		return nil, nil, err
	}

	report := &Report{Input: input, Rows: work.Len(), Chunks: len(jobs)}
	rs := reassemble.New(work.Columns, len(jobs))
	prog := progress.New(len(jobs), p.progressOut)
	defer prog.Finish()

	var key string
	if p.store != nil {
		key = checkpoint.RunKey(input, columns, p.flags.SourceLang, p.flags.TargetLang, p.flags.ChunkSize, work)
		report.runKey = key
		if report.RunID, err = p.store.Begin(ctx, key, input); err != nil {
			return nil, nil, err
		}
		jobs, err = p.restore(ctx, key, jobs, rs, prog)
		if err != nil {
			return nil, nil, err
		}
		report.Resumed = report.Chunks - len(jobs)
	}

	pool := worker.NewPool(p.flags.Workers)
	cw := worker.NewChunkWorker(translation.NewItemTranslator(p.service, p.flags.SourceLang, p.flags.TargetLang, p.flags.Timeout))

	log.Info().Str("input", input).Int("rows", work.Len()).Int("chunks", len(chunks)).
		Int("pending", len(jobs)).Int("workers", pool.Size()).Str("run", report.RunID).
		Msg("Translating dataset")

	for attempt := 0; len(jobs) > 0; attempt++ {
		failed, err := p.run(ctx, pool, cw, jobs, rs, prog, key, &report.Stats)
		if err != nil {
			return nil, nil, err
		}
		if len(failed) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			observeAll(prog, failed)
			return nil, nil, fmt.Errorf("translation interrupted with %d chunk(s) left: %w", len(failed), err)
		}
		if attempt >= p.flags.RetryCrashed {
			observeAll(prog, failed)
			return nil, nil, newFailedChunksError(failed)
		}

		jobs = make([]chunk.Job, 0, len(failed))
		for _, res := range failed {
			jobs = append(jobs, freshJob(work, chunks[res.ChunkID], columns))
		}
		report.Retried += len(jobs)
		log.Warn().Int("chunks", len(jobs)).Int("attempt", attempt+1).Msg("Retrying crashed chunks")
	}

	out, err := rs.Table()
	if err != nil {
		return nil, nil, err
	}
	report.Elapsed = time.Since(start)
	return out, report, nil
}

// restore feeds chunks completed by an earlier run into the reassembler and
// returns the jobs still to do
func (p *Processor) restore(ctx context.Context, key string, jobs []chunk.Job, rs *reassemble.Reassembler, prog *progress.Reporter) ([]chunk.Job, error) {
	done, err := p.store.Completed(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(done) == 0 {
		return jobs, nil
	}

	pending := jobs[:0:0]
	for _, job := range jobs {
		rows, ok := done[job.ChunkID]
		if !ok {
			pending = append(pending, job)
			continue
		}
		res := worker.Result{ChunkID: job.ChunkID, Rows: rows}
		if err := rs.Add(res); err != nil {
			return nil, fmt.Errorf("failed to restore checkpointed chunk: %w", err)
		}
		prog.Observe(res)
	}

	log.Info().Int("restored", len(jobs)-len(pending)).Msg("Restored chunks from checkpoint")
	return pending, nil
}

// run executes one round of jobs. The collector goroutine is the only writer
// of the reassembler, the progress reporter and the checkpoint store. It
// returns the results of jobs that did not complete.
func (p *Processor) run(ctx context.Context, pool *worker.Pool, cw *worker.ChunkWorker, jobs []chunk.Job,
	rs *reassemble.Reassembler, prog *progress.Reporter, key string, stats *translation.Stats) ([]worker.Result, error) {

	g, gctx := errgroup.WithContext(ctx)
	results := pool.Run(gctx, jobs, cw.Process)

	var failed []worker.Result
	g.Go(func() error {
		for res := range results {
			// failed chunks may be retried, so they are only counted once final
			if res.Failed() {
				failed = append(failed, res)
				continue
			}
			if err := rs.Add(res); err != nil {
				return err
			}
			prog.Observe(res)
			stats.Add(res.Stats)

			if p.store != nil {
				// completed chunks are kept even when the run is being cancelled
				if err := p.store.Save(context.WithoutCancel(gctx), key, res); err != nil {
					return err
				}
			}
		}
		return nil
	})

	err := g.Wait()
	// drain so no worker outlives the round
	for range results {
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(failed, func(i, j int) bool { return failed[i].ChunkID < failed[j].ChunkID })
	return failed, nil
}

// freshJob rebuilds a job from the untouched source rows, since a crashed
// worker may have modified its chunk half way
func freshJob(work *table.Table, c chunk.Chunk, columns []string) chunk.Job {
	rows := make([]table.Row, c.Len())
	for i := range rows {
		rows[i] = work.Rows[c.Offset+i].Clone()
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return chunk.Job{ChunkID: c.ID, Chunk: chunk.Chunk{ID: c.ID, Offset: c.Offset, Rows: rows}, Columns: cols}
}

func observeAll(prog *progress.Reporter, results []worker.Result) {
	for _, res := range results {
		prog.Observe(res)
	}
}

func newFailedChunksError(failed []worker.Result) *FailedChunksError {
	e := &FailedChunksError{}
	for _, res := range failed {
		e.ChunkIDs = append(e.ChunkIDs, res.ChunkID)
		e.Causes = append(e.Causes, res.Err)
		var crash *worker.CrashError
		if errors.As(res.Err, &crash) {
			log.Error().Int("chunk", crash.ChunkID).Interface("cause", crash.Cause).Msg("Chunk failed after retries")
		}
	}
	return e
}

func printReport(w io.Writer, r *Report) {
	fmt.Fprintf(w, "\n=== Translation Summary ===\n")
	fmt.Fprintf(w, "Input: %s\n", r.Input)
	fmt.Fprintf(w, "Output: %s\n", r.Output)
	fmt.Fprintf(w, "Rows: %d in %d chunks\n", r.Rows, r.Chunks)
	if r.Resumed > 0 {
		fmt.Fprintf(w, "Resumed from checkpoint: %d chunks\n", r.Resumed)
	}
	if r.Retried > 0 {
		fmt.Fprintf(w, "Retried after crash: %d chunks\n", r.Retried)
	}
	fmt.Fprintf(w, "Translated: %d\n", r.Stats.Translated)
	fmt.Fprintf(w, "Skipped: %d\n", r.Stats.Skipped)
	if r.Stats.Failed > 0 {
		fmt.Fprintf(w, "Kept original after failure: %d\n", r.Stats.Failed)
	}
	fmt.Fprintf(w, "Elapsed: %s\n", r.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "===========================\n")
}
