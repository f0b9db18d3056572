package domain

import "time"

// LaneResult represents the result of executing one lane
type LaneResult struct {
	Lane     int           // Lane index
	Filter   FilterDescriptor
	Success  bool          // Whether the lane command exited cleanly
	Skipped  bool          // Lane had nothing to run
	Output   string        // Combined output of the lane command
	Error    error         // Error if execution failed
	Duration time.Duration // Time taken to execute
}

// LaneSummary is the persisted view of a LaneResult
type LaneSummary struct {
	Lane            int     `json:"lane"`
	Mode            string  `json:"mode"`
	Units           int     `json:"units"`
	PlannedMs       int64   `json:"planned_ms"`
	Success         bool    `json:"success"`
	Skipped         bool    `json:"skipped,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// RunMeta contains metadata about a run
type RunMeta struct {
	Success         bool    `json:"success"`
	Lanes           int     `json:"lanes"`
	FailedLanes     int     `json:"failed_lanes"`
	FailedTestCases int     `json:"failed_test_cases"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Timestamp       string  `json:"timestamp"`
}

// RunReport is the complete output of a run. Its Units feed the next split.
type RunReport struct {
	Meta    RunMeta         `json:"meta"`
	Lanes   []LaneSummary   `json:"lanes"`
	Units   []HistoryRecord `json:"units"`
	Details []TestFailure   `json:"details"`
}
