package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/respfilter/internal/dedup"
	"github.com/tinytelemetry/respfilter/internal/duckdb"
	"github.com/tinytelemetry/respfilter/internal/model"
	"github.com/tinytelemetry/respfilter/internal/respfilter"
)

// runPipelines filters and deduplicates every input file. At most cfg.Jobs
// files are processed at once; the first failure cancels the rest. Summaries
// are returned in input order for the files that completed.
func runPipelines(ctx context.Context, cfg appConfig, files []string, store *duckdb.Store) ([]model.RunSummary, error) {
	summaries := make([]model.RunSummary, len(files))
	done := make([]bool, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Jobs)

	for i, file := range files {
		g.Go(func() error {
			summary, err := runPipeline(gctx, cfg, file, store)
			if err != nil {
				return err
			}
			summaries[i] = summary
			done[i] = true
			return nil
		})
	}
	err := g.Wait()

	completed := make([]model.RunSummary, 0, len(files))
	for i := range summaries {
		if done[i] {
			completed = append(completed, summaries[i])
		}
	}
	return completed, err
}

// runPipeline runs the filter pass and then the dedup pass on its output.
func runPipeline(ctx context.Context, cfg appConfig, file string, store *duckdb.Store) (model.RunSummary, error) {
	summary := model.RunSummary{
		ID:           uuid.NewString(),
		Source:       file,
		Extension:    cfg.Extension,
		ResponseCode: cfg.ResponseCode,
		StartedAt:    time.Now(),
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	var sink model.MatchSink
	var matches *duckdb.MatchBuffer
	if store != nil {
		matches = duckdb.NewMatchBuffer(store, summary.ID)
		sink = matches
	}

	filter, err := respfilter.New(respfilter.Config{
		Filename:     file,
		Extension:    cfg.Extension,
		ResponseCode: cfg.ResponseCode,
		OutputPrefix: cfg.OutputPrefix,
		Malformed:    cfg.Malformed,
		MaxLineSize:  cfg.MaxLineSize,
		Sink:         sink,
	})
	if err != nil {
		return summary, err
	}

	res, err := filter.Run(ctx)
	summary.Output = res.Output
	if err != nil {
		return summary, err
	}
	summary.Lines = res.Lines
	summary.Matched = res.Matched
	summary.Skipped = res.Skipped

	if cfg.Dedup {
		stats, err := dedup.RemoveDuplicates(res.Output)
		if err != nil {
			return summary, err
		}
		summary.Deduped = true
		summary.Distinct = stats.After
	}

	summary.FinishedAt = time.Now()
	summary.Elapsed = summary.FinishedAt.Sub(summary.StartedAt)

	if store != nil {
		recordRun(store, matches, summary)
	}
	return summary, nil
}

// recordRun persists a finished run. The run history is auxiliary, so
// failures are logged and do not fail the pipeline.
func recordRun(store *duckdb.Store, matches *duckdb.MatchBuffer, summary model.RunSummary) {
	if err := matches.Flush(); err != nil {
		log.Printf("Warning: run %s: %v", summary.ID, err)
	}
	if err := store.InsertRun(summary); err != nil {
		log.Printf("Warning: %v", err)
		return
	}
	log.Printf("duckdb: recorded run %s with %d/%d matches", summary.ID, matches.Written(), summary.Matched)
}

func describeRun(s model.RunSummary) string {
	return fmt.Sprintf("%s: %d lines, %d matched, %d distinct -> %s", s.Source, s.Lines, s.Matched, s.Distinct, s.Output)
}
