package model

import "time"

// RunSummary captures metrics from a single reconciliation run.
type RunSummary struct {
	RunID      string
	Profile    string
	RosterPath string
	OutputPath string

	RowsFetched    int64
	RowsSkipped    int64 // malformed encounter rows dropped during indexing
	NamesIndexed   int64 // distinct (last, first) keys in the encounter index
	RowsClassified int64
	RowsErrored    int64 // roster rows that hit a per-row processing failure
	StatusCounts   map[string]int64

	DurationFetch    time.Duration
	DurationIndex    time.Duration
	DurationClassify time.Duration
	DurationWrite    time.Duration
	DurationTotal    time.Duration
}
