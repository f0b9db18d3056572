package pattern

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pts/internal/domain"
)

// FileName returns the filter file name for a descriptor.
func FileName(d domain.FilterDescriptor) string {
	if d.IsInclude {
		return "includes.txt"
	}
	return "excludes.txt"
}

// LaneFile returns the path of lane i's filter file under dir.
func LaneFile(dir string, i int, d domain.FilterDescriptor) string {
	return filepath.Join(dir, fmt.Sprintf("lane-%d", i), FileName(d))
}

// WriteFiles writes one filter file per lane under dir and returns the paths,
// index aligned with descriptors.
func WriteFiles(dir string, descriptors []domain.FilterDescriptor, r Renderer) ([]string, error) {
	if r == nil {
		r = Plain{}
	}
	paths := make([]string, len(descriptors))
	for i, d := range descriptors {
		path := LaneFile(dir, i, d)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create lane dir: %w", err)
		}
		content := strings.Join(r.Lines(d), "\n")
		if content != "" {
			content += "\n"
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths[i] = path
	}
	return paths, nil
}
