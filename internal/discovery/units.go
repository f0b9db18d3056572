package discovery

import (
	"fmt"
	"sort"
)

// Unit is a candidate test unit found on disk
type Unit struct {
	ID   string
	File string
}

// UnitScanner discovers candidate units: it scans, filters by name and
// derives each file's identifier.
type UnitScanner struct {
	scanner *Scanner
	filter  *Filter
	parser  *Parser
}

// NewUnitScanner creates a new UnitScanner
func NewUnitScanner(scanner *Scanner, filter *Filter, parser *Parser) *UnitScanner {
	return &UnitScanner{scanner: scanner, filter: filter, parser: parser}
}

// Discover returns the units under root, sorted by ID, deduplicated.
func (us *UnitScanner) Discover(root, nameFilter string) ([]Unit, error) {
	files, err := us.scanner.Scan(root)
	if err != nil {
		return nil, err
	}
	files = us.filter.FilterByName(files, nameFilter)

	seen := make(map[string]bool, len(files))
	units := make([]Unit, 0, len(files))
	for _, file := range files {
		id, err := us.parser.UnitID(root, file)
		if err != nil {
			return nil, fmt.Errorf("identify %s: %w", file, err)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		units = append(units, Unit{ID: id, File: file})
	}

	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	return units, nil
}

// IDs returns the identifiers of units
func IDs(units []Unit) []string {
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	return ids
}
