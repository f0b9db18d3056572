package domain

// Lane is one parallel partition of test units.
type Lane struct {
	Index   int
	Units   []TestUnit
	TotalMs int64
}

// IDs returns the lane's unit identifiers in assignment order.
func (l Lane) IDs() []string {
	ids := make([]string, len(l.Units))
	for i, u := range l.Units {
		ids[i] = u.ID
	}
	return ids
}

// FilterDescriptor tells a runner which units a lane executes.
//
// Include descriptors list exactly the lane's units; exclude descriptors list
// the units the lane must skip.
type FilterDescriptor struct {
	IsInclude   bool     `json:"include"`
	Identifiers []string `json:"identifiers"`
}

// Mode returns "include" or "exclude".
func (d FilterDescriptor) Mode() string {
	if d.IsInclude {
		return "include"
	}
	return "exclude"
}
