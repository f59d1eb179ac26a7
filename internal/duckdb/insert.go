package duckdb

import (
	"context"
	"fmt"
	"log"

	"github.com/tinytelemetry/respfilter/internal/model"
)

// DefaultMatchBatchSize is the number of matches buffered before a flush.
const DefaultMatchBatchSize = 2000

// MatchBuffer batches the matches of one run and writes them to the store.
// It is a model.MatchSink and is not safe for concurrent use; each run owns one.
type MatchBuffer struct {
	writer   model.RunWriter
	runID    string
	pending  []model.Match
	maxBatch int
	written  int
	err      error
}

// MatchBufferConfig holds tunable parameters for the match buffer.
type MatchBufferConfig struct {
	BatchSize int
}

// NewMatchBuffer creates a buffer that flushes matches for runID to writer.
func NewMatchBuffer(writer model.RunWriter, runID string, conf ...MatchBufferConfig) *MatchBuffer {
	batchSize := DefaultMatchBatchSize
	if len(conf) > 0 && conf[0].BatchSize > 0 {
		batchSize = conf[0].BatchSize
	}
	return &MatchBuffer{
		writer:   writer,
		runID:    runID,
		pending:  make([]model.Match, 0, batchSize),
		maxBatch: batchSize,
	}
}

// Add buffers one match, flushing when the batch is full. After the first
// write error further matches are dropped; Flush reports the error.
func (b *MatchBuffer) Add(m model.Match) {
	if b.err != nil {
		return
	}
	b.pending = append(b.pending, m)
	if len(b.pending) >= b.maxBatch {
		b.flush()
	}
}

// Flush writes any buffered matches and returns the first write error seen.
func (b *MatchBuffer) Flush() error {
	if b.err == nil {
		b.flush()
	}
	return b.err
}

// Written returns the number of matches persisted so far.
func (b *MatchBuffer) Written() int {
	return b.written
}

func (b *MatchBuffer) flush() {
	if len(b.pending) == 0 {
		return
	}
	if err := b.writer.InsertMatches(b.runID, b.pending); err != nil {
		b.err = err
		log.Printf("duckdb: match flush failed for run %s, dropping remaining matches: %v", b.runID, err)
		return
	}
	b.written += len(b.pending)
	b.pending = b.pending[:0]
}

// InsertRun records one finished run.
func (s *Store) InsertRun(run model.RunSummary) error {
	ctx, cancel := s.queryCtx()
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO runs
		(id, source, output, extension, response_code, lines, matched, skipped, distinct_lines, deduped, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Output, run.Extension, run.ResponseCode,
		run.Lines, run.Matched, run.Skipped, run.Distinct, run.Deduped,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("duckdb: insert run %s: %w", run.ID, err)
	}
	return nil
}

// InsertMatches appends the matches of a run in a single transaction.
func (s *Store) InsertMatches(runID string, matches []model.Match) error {
	if len(matches) == 0 {
		return nil
	}

	ctx, cancel := s.queryCtx()
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.insertMatchesTx(ctx, runID, matches); err != nil {
		return fmt.Errorf("duckdb: insert matches for run %s: %w", runID, err)
	}
	return nil
}

func (s *Store) insertMatchesTx(ctx context.Context, runID string, matches []model.Match) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO matches (run_id, line_no, segment, code) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range matches {
		if _, err := stmt.ExecContext(ctx, runID, m.LineNo, m.Segment, m.Code); err != nil {
			return fmt.Errorf("match insert (line %d): %w", m.LineNo, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
