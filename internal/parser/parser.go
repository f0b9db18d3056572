package parser

import "pts/internal/domain"

// Parser reads test reports into per-class durations and failures
type Parser interface {
	ParseFile(path string) (*Report, error)
}

// Report is what a single report file contributes to a run
type Report struct {
	Records  []domain.HistoryRecord
	Failures []domain.TestFailure
	Tests    int
	Failed   int
}
