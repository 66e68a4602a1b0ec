package chunk

import (
	"errors"
)

// ErrNoColumns is returned when a job list is built without target columns
var ErrNoColumns = errors.New("no columns to translate")

// Job is one unit of work for the pool: a chunk and the columns to translate
// in it. Jobs are not modified after NewJobs returns them.
type Job struct {
	ChunkID int
	Chunk   Chunk
	Columns []string
}

// NewJobs builds one job per chunk, in chunk order
func NewJobs(chunks []Chunk, columns []string) ([]Job, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}

	jobs := make([]Job, len(chunks))
	for i, c := range chunks {
		cols := make([]string, len(columns))
		copy(cols, columns)
		jobs[i] = Job{ChunkID: c.ID, Chunk: c, Columns: cols}
	}
	return jobs, nil
}
