package checkpoint

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"codeberg.org/snonux/coltrans/internal/table"
	"codeberg.org/snonux/coltrans/internal/worker"
)

// Store is a SQLite backed checkpoint store
type Store struct {
	db   *sql.DB
	path string
}

// RunKey identifies a run by everything that affects its chunks: the input
// name, the translated columns, the language pair, the chunk size and the
// content of every row left after exclusion. A change in any of them yields
// a different key, so stale chunks are never reused.
func RunKey(input string, columns []string, sourceLang, targetLang string, chunkSize int, data *table.Table) string {
	h := sha256.New()
	for _, part := range []string{
		input,
		strings.Join(columns, "\x1f"),
		sourceLang,
		targetLang,
		strconv.Itoa(chunkSize),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	writeContent(h, data)
	return hex.EncodeToString(h.Sum(nil))
}

// writeContent feeds the schema and every cell into h. Absent keys, missing
// values and typed values all hash differently.
func writeContent(h io.Writer, data *table.Table) {
	if data == nil {
		return
	}
	fmt.Fprintf(h, "%d\x1e", len(data.Rows))
	for _, col := range data.Columns {
		fmt.Fprintf(h, "%q\x1f", col)
	}
	for _, row := range data.Rows {
		h.Write([]byte{0x1e})
		for _, col := range data.Columns {
			v, ok := row[col]
			switch {
			case !ok:
				h.Write([]byte{0x01})
			case table.IsMissing(v):
				h.Write([]byte{0x02})
			default:
				fmt.Fprintf(h, "%T:%q", v, table.Format(v))
			}
			h.Write([]byte{0x1f})
		}
	}
}

// Open opens or creates the checkpoint database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint database: %w", err)
	}
	// the collector goroutine is the only writer
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			key text PRIMARY KEY,
			run_id text NOT NULL,
			input text NOT NULL,
			started_at integer NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			run_key text NOT NULL,
			chunk_id integer NOT NULL,
			rows_json text NOT NULL,
			translated integer NOT NULL,
			skipped integer NOT NULL,
			failed integer NOT NULL,
			completed_at integer NOT NULL,
			PRIMARY KEY (run_key, chunk_id)
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Begin registers a run and returns its id. Resuming a known key returns the
// id of the earlier run.
func (s *Store) Begin(ctx context.Context, key, input string) (string, error) {
	var runID string
	err := s.db.QueryRowContext(ctx, `SELECT run_id FROM runs WHERE key = ?`, key).Scan(&runID)
	switch {
	case err == nil:
		log.Info().Str("run", runID).Str("input", input).Msg("Resuming checkpointed run")
		return runID, nil
	case err != sql.ErrNoRows:
		return "", fmt.Errorf("failed to look up run: %w", err)
	}

	runID = uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (key, run_id, input, started_at) VALUES (?, ?, ?, ?)`,
		key, runID, input, time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	log.Debug().Str("run", runID).Str("input", input).Msg("Started checkpointed run")
	return runID, nil
}

// Completed returns the stored rows of every completed chunk of a run
func (s *Store) Completed(ctx context.Context, key string) (map[int][]table.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chunk_id, rows_json FROM chunks WHERE run_key = ?`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	completed := make(map[int][]table.Row)
	for rows.Next() {
		var id int
		var data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		decoded, err := decodeRows(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode chunk %d: %w", id, err)
		}
		completed[id] = decoded
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunks: %w", err)
	}

	return completed, nil
}

// Save stores a completed chunk. Failed results are never stored.
func (s *Store) Save(ctx context.Context, key string, result worker.Result) error {
	if result.Failed() {
		return fmt.Errorf("refusing to checkpoint failed chunk %d", result.ChunkID)
	}

	data, err := encodeRows(result.Rows)
	if err != nil {
		return fmt.Errorf("failed to encode chunk %d: %w", result.ChunkID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO chunks
			(run_key, chunk_id, rows_json, translated, skipped, failed, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key, result.ChunkID, data,
		result.Stats.Translated, result.Stats.Skipped, result.Stats.Failed,
		time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save chunk %d: %w", result.ChunkID, err)
	}
	return nil
}

// Forget removes a run and its chunks
func (s *Store) Forget(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE run_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// encodeRows stores missing values as JSON null
func encodeRows(rows []table.Row) (string, error) {
	clean := make([]table.Row, len(rows))
	for i, row := range rows {
		c := make(table.Row, len(row))
		for k, v := range row {
			if table.IsMissing(v) {
				v = nil
			}
			c[k] = v
		}
		clean[i] = c
	}

	data, err := json.Marshal(clean)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeRows(data string) ([]table.Row, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()

	var rows []table.Row
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}
