package model

import "time"

// Match is one path segment that passed both filters.
type Match struct {
	LineNo  int
	Segment string
	Code    string
}

// RunSummary describes one filter+dedup pass over a single input file.
// It is the canonical type for reports and the run history store.
type RunSummary struct {
	ID           string        `yaml:"id"`
	Source       string        `yaml:"source"`
	Output       string        `yaml:"output"`
	Extension    string        `yaml:"extension"`
	ResponseCode string        `yaml:"response_code"`
	Lines        int           `yaml:"lines"`
	Matched      int           `yaml:"matched"`
	Skipped      int           `yaml:"skipped"`
	Distinct     int           `yaml:"distinct"` // 0 when dedup is disabled
	Deduped      bool          `yaml:"deduped"`
	StartedAt    time.Time     `yaml:"started_at"`
	FinishedAt   time.Time     `yaml:"finished_at"`
	Elapsed      time.Duration `yaml:"elapsed"`
}

// SegmentCount is a path segment and the number of times it matched.
type SegmentCount struct {
	Segment string
	Count   int64
}
