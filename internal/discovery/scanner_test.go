package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for file, content := range files {
		fullPath := filepath.Join(root, file)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", file, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", file, err)
		}
	}
}

func TestScanner_Scan(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"src/test/java/org/acme/UserTest.java":  "test",
		"src/test/java/org/acme/OrderTest.java": "test",
		"src/test/java/org/acme/Helper.java":    "test",
		"target/classes/CompiledTest.java":      "test",
		".git/HiddenTest.java":                  "test",
		"tests/Unit/UserTest.php":               "test",
	})

	scanner := NewScanner([]string{"target"}, "*Test.java")

	t.Run("scans test files correctly", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Should find 2 test files, not the ones in target/.git or other languages
		if len(results) != 2 {
			t.Errorf("expected 2 test files, got %d: %v", len(results), results)
		}
	})

	t.Run("glob selects other languages", func(t *testing.T) {
		results, err := NewScanner(nil, "*Test.php").Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 {
			t.Errorf("expected 1 test file, got %d", len(results))
		}
	})

	t.Run("bad glob is an error", func(t *testing.T) {
		if _, err := NewScanner(nil, "[").Scan(tmpDir); err == nil {
			t.Error("expected error for malformed glob")
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		_, err := scanner.Scan("/non/existent/path")
		if err == nil {
			t.Error("expected error for non-existent directory")
		}
	})

	t.Run("returns error for file instead of directory", func(t *testing.T) {
		testFile := filepath.Join(tmpDir, "testfile.txt")
		os.WriteFile(testFile, []byte("test"), 0644)
		_, err := scanner.Scan(testFile)
		if err == nil {
			t.Error("expected error for file path")
		}
	})
}
