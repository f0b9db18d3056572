package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pts/internal/domain"
)

// NewReport builds a report from lane results, the planned lanes and the
// durations collected from the lanes' test reports.
func NewReport(results []domain.LaneResult, lanes []domain.Lane, units []domain.HistoryRecord, failures []domain.TestFailure, duration time.Duration) *domain.RunReport {
	report := &domain.RunReport{
		Lanes:   make([]domain.LaneSummary, 0, len(results)),
		Units:   units,
		Details: failures,
	}

	failed := 0
	for _, r := range results {
		if !r.Success && !r.Skipped {
			failed++
		}
		s := domain.LaneSummary{
			Lane:            r.Lane,
			Mode:            r.Filter.Mode(),
			Success:         r.Success,
			Skipped:         r.Skipped,
			DurationSeconds: r.Duration.Seconds(),
		}
		if r.Lane >= 0 && r.Lane < len(lanes) {
			s.Units = len(lanes[r.Lane].Units)
			s.PlannedMs = lanes[r.Lane].TotalMs
		}
		report.Lanes = append(report.Lanes, s)
	}

	report.Meta = domain.RunMeta{
		Success:         failed == 0 && len(failures) == 0,
		Lanes:           len(results),
		FailedLanes:     failed,
		FailedTestCases: len(failures),
		Duration:        duration.String(),
		DurationSeconds: duration.Seconds(),
		Timestamp:       time.Now().Format(time.RFC3339),
	}
	return report
}

// Save writes the report to the configured JSON output file.
func (s *JSONStorage) Save(report *domain.RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// Load reads the last report from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.RunReport, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var report domain.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &report, nil
}
