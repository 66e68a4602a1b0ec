package chunk

import (
	"errors"
	"fmt"

	"codeberg.org/snonux/coltrans/internal/table"
)

var (
	// ErrInvalidChunkSize is returned when the requested chunk size is below one
	ErrInvalidChunkSize = errors.New("chunk size must be at least 1")
	// ErrNilTable is returned when no table is given
	ErrNilTable = errors.New("table is nil")
)

// Chunk is a contiguous run of rows. ID is the chunk's position among all
// chunks of the table and is the only key used to restore row order.
type Chunk struct {
	ID     int
	Offset int // index of the first row in the source table
	Rows   []table.Row
}

// Len returns the number of rows in the chunk
func (c Chunk) Len() int {
	return len(c.Rows)
}

// Count returns how many chunks Split produces for n rows
func Count(n, chunkSize int) int {
	if n <= 0 || chunkSize <= 0 {
		return 0
	}
	return (n + chunkSize - 1) / chunkSize
}

// Split partitions the table into ceil(N/chunkSize) chunks of near-equal
// size. The first N mod k chunks carry one extra row. Rows are copied so
// every chunk owns its memory.
func Split(t *table.Table, chunkSize int) ([]Chunk, error) {
	if t == nil {
		return nil, ErrNilTable
	}
	if chunkSize < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, chunkSize)
	}

	n := t.Len()
	k := Count(n, chunkSize)
	if k == 0 {
		return []Chunk{}, nil
	}

	base, extra := n/k, n%k
	chunks := make([]Chunk, 0, k)
	offset := 0
	for id := 0; id < k; id++ {
		size := base
		if id < extra {
			size++
		}

		rows := make([]table.Row, size)
		for i := range rows {
			rows[i] = t.Rows[offset+i].Clone()
		}

		chunks = append(chunks, Chunk{ID: id, Offset: offset, Rows: rows})
		offset += size
	}

	return chunks, nil
}

// Exclude returns a new table without the rows at the given indices.
// Indices outside the table are ignored.
func Exclude(t *table.Table, indices []int) *table.Table {
	out := table.New(t.Columns...)
	if len(indices) == 0 {
		out.Rows = append(out.Rows, t.Rows...)
		return out
	}

	drop := make(map[int]bool, len(indices))
	for _, idx := range indices {
		drop[idx] = true
	}

	for i, row := range t.Rows {
		if !drop[i] {
			out.Append(row)
		}
	}
	return out
}
