package worker

import (
	"context"

	"codeberg.org/snonux/coltrans/internal/chunk"
	"codeberg.org/snonux/coltrans/internal/table"
	"codeberg.org/snonux/coltrans/internal/translation"
)

// Result is the outcome of one job. Err is set only when the job could not
// run to completion; item level translation failures are absorbed into Stats.
type Result struct {
	ChunkID int
	Rows    []table.Row
	Stats   translation.Stats
	Err     error
}

// Failed reports whether the job did not complete
func (r Result) Failed() bool {
	return r.Err != nil
}

// ChunkWorker applies an ItemTranslator to the designated columns of a chunk
type ChunkWorker struct {
	translator *translation.ItemTranslator
}

// NewChunkWorker creates a new chunk worker
func NewChunkWorker(translator *translation.ItemTranslator) *ChunkWorker {
	return &ChunkWorker{translator: translator}
}

// Process translates every designated column of the job's chunk in row order,
// replacing values in place. The chunk belongs to this call alone. A per-call
// timeout only fails the item, but a cancelled ctx fails the whole chunk so
// untranslated rows are never reported as completed.
func (w *ChunkWorker) Process(ctx context.Context, job chunk.Job) Result {
	rows := job.Chunk.Rows
	var stats translation.Stats

	for _, column := range job.Columns {
		for _, row := range rows {
			if err := ctx.Err(); err != nil {
				return Result{ChunkID: job.ChunkID, Err: err}
			}
			v, ok := row[column]
			if !ok {
				continue
			}
			translated, outcome := w.translator.Translate(ctx, v)
			row[column] = translated
			stats.Record(outcome)
		}
	}

	if err := ctx.Err(); err != nil {
		return Result{ChunkID: job.ChunkID, Err: err}
	}
	return Result{ChunkID: job.ChunkID, Rows: rows, Stats: stats}
}
