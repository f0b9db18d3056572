package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"pts/internal/balance"
	"pts/internal/config"
	"pts/internal/domain"
	"pts/internal/pattern"
	"pts/internal/split"
)

func init() {
	color.NoColor = true
}

func newTestFormatter() (*Formatter, *bytes.Buffer) {
	var buf bytes.Buffer
	f := NewFormatter(config.New())
	f.SetOutput(&buf)
	return f, &buf
}

func sampleResult() *split.Result {
	lanes := []domain.Lane{
		{Index: 0, Units: []domain.TestUnit{{ID: "a.SlowTest", DurationMs: 9000, Measured: true}}, TotalMs: 9000},
		{Index: 1, Units: []domain.TestUnit{{ID: "a.FastTest", DurationMs: 4000, Measured: true}, {ID: "a.NewTest", DurationMs: 4000}}, TotalMs: 8000},
	}
	return &split.Result{
		Lanes:       lanes,
		Descriptors: pattern.Encode(lanes, pattern.ModeInclusions),
		Excluded:    []domain.TestUnit{{ID: "a.LoginBddTest", Category: "bdd"}},
		Stats:       balance.Summarize(lanes),
		Fallback:    4000,
		HistoryUsed: true,
		Source:      "storage/test-results.json",
	}
}

func TestFormatMs(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0s"},
		{250, "250ms"},
		{1500, "1.5s"},
		{90000, "1m30s"},
		{1234, "1.2s"},
	}
	for _, tt := range tests {
		if got := FormatMs(tt.ms); got != tt.want {
			t.Errorf("FormatMs(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestFormatter_PrintPlan(t *testing.T) {
	f, buf := newTestFormatter()
	f.PrintPlan(sampleResult())
	out := buf.String()

	for _, want := range []string{
		"Lane Plan",
		"exclude",
		"include",
		"9s",
		"8s",
		"storage/test-results.json",
		"Excluded 1 unit(s)",
		"a.LoginBddTest [bdd]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("PrintPlan output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatter_PrintPlan_NoHistory(t *testing.T) {
	f, buf := newTestFormatter()
	res := sampleResult()
	res.HistoryUsed = false
	res.Excluded = nil
	f.PrintPlan(res)

	out := buf.String()
	if !strings.Contains(out, "none") {
		t.Errorf("expected history 'none' in output:\n%s", out)
	}
	if strings.Contains(out, "Excluded") {
		t.Errorf("did not expect excluded section:\n%s", out)
	}
}

func TestFormatter_PrintUnits(t *testing.T) {
	f, buf := newTestFormatter()
	f.PrintUnits([]domain.TestUnit{
		{ID: "a.OneTest", DurationMs: 1500, Measured: true},
		{ID: "a.TwoTest", DurationMs: 1500},
	})
	out := buf.String()

	if !strings.Contains(out, "Found 2 test unit(s)") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "├── a.OneTest 1.5s\n") {
		t.Errorf("missing measured unit:\n%s", out)
	}
	if !strings.Contains(out, "└── a.TwoTest 1.5s [fallback]") {
		t.Errorf("missing fallback marker:\n%s", out)
	}
}

func TestFormatter_PrintUnits_Empty(t *testing.T) {
	f, buf := newTestFormatter()
	f.PrintUnits(nil)
	if !strings.Contains(buf.String(), "No test units found") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestFormatter_PrintRunStats(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f, buf := newTestFormatter()
		f.PrintRunStats(&domain.RunReport{
			Meta:  domain.RunMeta{Success: true, Lanes: 2, DurationSeconds: 3.5},
			Lanes: []domain.LaneSummary{{Lane: 0, Mode: "exclude", Success: true}, {Lane: 1, Mode: "include", Skipped: true, Success: true}},
		})
		out := buf.String()
		if !strings.Contains(out, "All lanes passed") {
			t.Errorf("missing success line:\n%s", out)
		}
		if !strings.Contains(out, "skipped") {
			t.Errorf("missing skipped lane:\n%s", out)
		}
	})

	t.Run("failures tree", func(t *testing.T) {
		f, buf := newTestFormatter()
		f.PrintRunStats(&domain.RunReport{
			Meta: domain.RunMeta{Lanes: 2, FailedLanes: 1, FailedTestCases: 2},
			Details: []domain.TestFailure{
				{Lane: 1, ClassName: "com.acme.OrderTest", TestName: "testTotal"},
				{Lane: 1, ClassName: "com.acme.OrderTest", TestName: "testTax"},
			},
		})
		out := buf.String()
		for _, want := range []string{
			"1 lane(s) failed with 2 test case failure(s)",
			"└── com",
			"└── acme",
			"└── OrderTest",
			"testTotal (lane 1)",
			"testTax (lane 1)",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("missing %q:\n%s", want, out)
			}
		}
	})
}

func TestClassPath(t *testing.T) {
	tests := map[string][]string{
		"com.acme.FooTest":       {"com", "acme", "FooTest"},
		`Tests\Unit\FooTest`:     {"Tests", "Unit", "FooTest"},
		"tests/integration/test": {"tests", "integration", "test"},
	}
	for in, want := range tests {
		got := classPath(in)
		if strings.Join(got, "|") != strings.Join(want, "|") {
			t.Errorf("classPath(%q) = %v, want %v", in, got, want)
		}
	}
}
