package model

// MatchSink receives accepted matches in input order.
type MatchSink interface {
	Add(m Match)
}

// RunWriter persists finished runs and their matches.
type RunWriter interface {
	InsertRun(run RunSummary) error
	InsertMatches(runID string, matches []Match) error
}

// RunReader provides read-only queries over the run history.
type RunReader interface {
	TopSegments(limit int) ([]SegmentCount, error)
	RecentRuns(limit int) ([]RunSummary, error)
}
