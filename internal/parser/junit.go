package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pts/internal/domain"
)

// JUnitParser parses JUnit XML reports (Surefire, PHPUnit --log-junit, go-junit-report)
type JUnitParser struct{}

// NewJUnitParser creates a new JUnitParser
func NewJUnitParser() *JUnitParser {
	return &JUnitParser{}
}

var _ Parser = (*JUnitParser)(nil)

type junitSuites struct {
	XMLName xml.Name     `xml:"testsuites"`
	Suites  []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name   string       `xml:"name,attr"`
	File   string       `xml:"file,attr"`
	Time   string       `xml:"time,attr"`
	Cases  []junitCase  `xml:"testcase"`
	Suites []junitSuite `xml:"testsuite"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Class     string        `xml:"class,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitProblem `xml:"failure"`
	Error     *junitProblem `xml:"error"`
	Skipped   *struct{}     `xml:"skipped"`
}

type junitProblem struct {
	Type    string `xml:"type,attr"`
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

// ParseFile parses one report file. The file path is recorded as the suite
// file of every record it yields.
func (p *JUnitParser) ParseFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report %s: %w", path, err)
	}
	defer f.Close()

	report, err := p.Parse(f, path)
	if err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return report, nil
}

// Parse reads a report with either a <testsuites> or a <testsuite> root.
func (p *JUnitParser) Parse(r io.Reader, suiteFile string) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var suites []junitSuite
	var root junitSuites
	if err := xml.Unmarshal(data, &root); err == nil {
		suites = root.Suites
	} else {
		var single junitSuite
		if err2 := xml.Unmarshal(data, &single); err2 != nil {
			return nil, err2
		}
		suites = []junitSuite{single}
	}

	report := &Report{}
	for _, s := range suites {
		p.collect(s, suiteFile, report)
	}
	return report, nil
}

func (p *JUnitParser) collect(s junitSuite, suiteFile string, report *Report) {
	for _, nested := range s.Suites {
		p.collect(nested, suiteFile, report)
	}

	for _, c := range s.Cases {
		class := c.ClassName
		if class == "" {
			class = c.Class
		}
		if class == "" {
			class = s.Name
		}
		if class == "" {
			continue
		}

		report.Tests++
		report.Records = append(report.Records, domain.HistoryRecord{
			SuiteFile:  suiteFile,
			ClassName:  class,
			DurationMs: secondsToMillis(c.Time),
		})

		problem := c.Failure
		if problem == nil {
			problem = c.Error
		}
		if problem != nil {
			report.Failed++
			report.Failures = append(report.Failures, domain.TestFailure{
				ClassName: class,
				TestName:  c.Name,
				Type:      problem.Type,
				Message:   strings.TrimSpace(problem.Message),
				Details:   strings.TrimSpace(problem.Body),
			})
		}
	}
}

// secondsToMillis converts a JUnit time attribute; unparsable values count as 0.
func secondsToMillis(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	var secs float64
	if _, err := fmt.Sscanf(s, "%g", &secs); err != nil || secs < 0 || math.IsNaN(secs) {
		return 0
	}
	return int64(math.Round(secs * 1000))
}

// ParseGlob parses every file matching pattern and merges the reports.
// Files are visited in sorted order so the merged records are stable.
func (p *JUnitParser) ParseGlob(pattern string) (*Report, int, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, 0, fmt.Errorf("bad report glob %q: %w", pattern, err)
	}
	sort.Strings(files)

	merged, err := p.ParseFiles(files)
	if err != nil {
		return nil, 0, err
	}
	return merged, len(files), nil
}

// ParseFiles parses files in the given order and merges the reports.
func (p *JUnitParser) ParseFiles(files []string) (*Report, error) {
	merged := &Report{}
	for _, file := range files {
		r, err := p.ParseFile(file)
		if err != nil {
			return nil, err
		}
		merged.Records = append(merged.Records, r.Records...)
		merged.Failures = append(merged.Failures, r.Failures...)
		merged.Tests += r.Tests
		merged.Failed += r.Failed
	}
	return merged, nil
}
