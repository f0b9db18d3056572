package domain

// TestFailure represents a failed test case reported by a lane
type TestFailure struct {
	Lane      int    `json:"lane"`
	ClassName string `json:"class_name"`
	TestName  string `json:"test_name"`
	Type      string `json:"type,omitempty"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Resolved  bool   `json:"resolved,omitempty"` // Track if test case is marked as resolved
}
