package duckdb

import (
	"fmt"

	"github.com/tinytelemetry/respfilter/internal/model"
)

// TopSegments returns the most frequently matched path segments across all runs.
func (s *Store) TopSegments(limit int) ([]model.SegmentCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT segment, COUNT(*) AS count
		FROM matches
		GROUP BY segment
		ORDER BY count DESC, segment ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("duckdb: top segments: %w", err)
	}
	defer rows.Close()

	var out []model.SegmentCount
	for rows.Next() {
		var sc model.SegmentCount
		if err := rows.Scan(&sc.Segment, &sc.Count); err != nil {
			return nil, fmt.Errorf("duckdb: scan top segments: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// RecentRuns returns the latest runs, newest first.
func (s *Store) RecentRuns(limit int) ([]model.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, output, extension, response_code, lines, matched, skipped,
		       distinct_lines, deduped, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("duckdb: recent runs: %w", err)
	}
	defer rows.Close()

	var out []model.RunSummary
	for rows.Next() {
		var r model.RunSummary
		if err := rows.Scan(
			&r.ID, &r.Source, &r.Output, &r.Extension, &r.ResponseCode,
			&r.Lines, &r.Matched, &r.Skipped, &r.Distinct, &r.Deduped,
			&r.StartedAt, &r.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("duckdb: scan recent runs: %w", err)
		}
		r.Elapsed = r.FinishedAt.Sub(r.StartedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

var (
	_ model.RunWriter = (*Store)(nil)
	_ model.RunReader = (*Store)(nil)
)
