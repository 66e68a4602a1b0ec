package reassemble

import (
	"errors"
	"fmt"
	"sort"

	"codeberg.org/snonux/coltrans/internal/table"
	"codeberg.org/snonux/coltrans/internal/worker"
)

var (
	// ErrDuplicateChunk is returned when a chunk id arrives twice
	ErrDuplicateChunk = errors.New("duplicate chunk")
	// ErrUnknownChunk is returned for chunk ids outside the expected range
	ErrUnknownChunk = errors.New("unknown chunk")
	// ErrFailedChunk is returned when a failed result is added
	ErrFailedChunk = errors.New("chunk failed")
	// ErrIncomplete is returned when the table is requested before all chunks arrived
	ErrIncomplete = errors.New("not all chunks have arrived")
)

// Reassembler buffers results by chunk id. It is not safe for concurrent
// use; a single collector feeds it.
type Reassembler struct {
	columns []string
	total   int
	chunks  map[int][]table.Row
}

// New creates a reassembler expecting chunk ids 0..total-1
func New(columns []string, total int) *Reassembler {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Reassembler{
		columns: cols,
		total:   total,
		chunks:  make(map[int][]table.Row, total),
	}
}

// Add buffers one result
func (r *Reassembler) Add(result worker.Result) error {
	if result.Err != nil {
		return fmt.Errorf("%w: chunk %d: %v", ErrFailedChunk, result.ChunkID, result.Err)
	}
	if result.ChunkID < 0 || result.ChunkID >= r.total {
		return fmt.Errorf("%w: %d (expected 0..%d)", ErrUnknownChunk, result.ChunkID, r.total-1)
	}
	if _, ok := r.chunks[result.ChunkID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateChunk, result.ChunkID)
	}

	r.chunks[result.ChunkID] = result.Rows
	return nil
}

// Received returns how many chunks have been buffered
func (r *Reassembler) Received() int {
	return len(r.chunks)
}

// Complete reports whether every expected chunk has arrived
func (r *Reassembler) Complete() bool {
	return len(r.chunks) == r.total
}

// Missing returns the chunk ids not yet received, ascending
func (r *Reassembler) Missing() []int {
	var missing []int
	for id := 0; id < r.total; id++ {
		if _, ok := r.chunks[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// Table concatenates all chunks in ascending chunk id order, never in
// arrival order.
func (r *Reassembler) Table() (*table.Table, error) {
	if !r.Complete() {
		return nil, fmt.Errorf("%w: missing %v", ErrIncomplete, r.Missing())
	}

	ids := make([]int, 0, len(r.chunks))
	size := 0
	for id, rows := range r.chunks {
		ids = append(ids, id)
		size += len(rows)
	}
	sort.Ints(ids)

	out := table.New(r.columns...)
	out.Rows = make([]table.Row, 0, size)
	for _, id := range ids {
		out.Rows = append(out.Rows, r.chunks[id]...)
	}
	return out, nil
}
