package domain

// HistoryRecord is one measured duration from a previous run.
// Several records may share a ClassName (one per test case).
type HistoryRecord struct {
	SuiteFile  string `json:"suite_file"`
	ClassName  string `json:"class_name"`
	DurationMs int64  `json:"duration_ms"`
}

// History is the report of the previous run.
type History struct {
	Source  string // Where the records came from, for diagnostics
	Success bool   // Only successful runs are used for balancing
	Records []HistoryRecord
}
