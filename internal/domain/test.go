package domain

import "strings"

// TestUnit is one schedulable test class or suite.
type TestUnit struct {
	ID         string // Class or suite identifier, e.g. "org.acme.UserTest"
	SuiteFile  string // Report file the unit was recorded in, empty when unknown
	SourceFile string // Source file the unit was discovered in, empty when unknown
	DurationMs int64  // Measured or fallback duration
	Measured   bool   // Whether DurationMs came from history
	Category   string // Set when the unit matched an exclusion category
}

// TestCase represents a single test case within a unit
type TestCase struct {
	Name     string // Test method name
	FilePath string // Path to the source file containing this case
}

// OuterClass strips a nested or anonymous class suffix: "a.B$Inner" and
// "a.B$1" both belong to unit "a.B".
func OuterClass(className string) string {
	if i := strings.IndexByte(className, '$'); i >= 0 {
		return className[:i]
	}
	return className
}
