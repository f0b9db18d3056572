package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	javaPackagePattern  = regexp.MustCompile(`(?m)^\s*package\s+([\w.]+)\s*;`)
	phpNamespacePattern = regexp.MustCompile(`(?m)^\s*namespace\s+([\w\\]+)\s*;`)
	classPattern        = regexp.MustCompile(`(?m)^\s*(?:(?:public|final|abstract|internal|open|data)\s+)*(?:class|object)\s+(\w+)`)
)

// Parser reads test source files to derive unit identifiers and test cases
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// UnitID returns the identifier a test report uses for the file's class:
// "org.acme.UserTest" for Java/Kotlin/Scala, `Tests\Unit\UserTest` for PHP.
// Files without a recognizable class fall back to their path without
// extension, relative to root.
func (p *Parser) UnitID(root, filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	src := string(content)

	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	class := base
	if m := classPattern.FindStringSubmatch(src); m != nil {
		class = m[1]
	}

	if m := phpNamespacePattern.FindStringSubmatch(src); m != nil && filepath.Ext(filePath) == ".php" {
		return m[1] + `\` + class, nil
	}
	if m := javaPackagePattern.FindStringSubmatch(src); m != nil {
		return m[1] + "." + class, nil
	}
	if classPattern.MatchString(src) {
		return class, nil
	}

	rel, err := filepath.Rel(root, filePath)
	if err != nil {
		rel = filePath
	}
	return filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel))), nil
}

// FindTestCases finds all test cases in a test file
func (p *Parser) FindTestCases(filePath string) ([]string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}

	fileContent := string(content)
	testCasesMap := make(map[string]bool) // Use map to avoid duplicates

	// Methods starting with "test" (PHPUnit, JUnit 3)
	testMethodPattern := regexp.MustCompile(`(?m)^\s*(?:(?:public|protected|private|static|final)\s+)*(?:function|void)\s+(test\w+)\s*\(`)
	for _, match := range testMethodPattern.FindAllStringSubmatch(fileContent, -1) {
		testCasesMap[match[1]] = true
	}

	// Annotated methods: @Test (JUnit 4/5) or @test docblocks (PHPUnit)
	annotatedPatterns := []*regexp.Regexp{
		regexp.MustCompile(`(?m)@Test\b[^\n]*\n(?:\s*@\w+[^\n]*\n)*\s*(?:(?:public|protected|private|static|final)\s+)*\w+\s+(\w+)\s*\(`),
		regexp.MustCompile(`(?m)/\*\*[^/]*?@test\b[\s\S]*?\*/\s*(?:(?:public|protected|private|static|final)\s+)*function\s+(\w+)\s*\(`),
	}
	for _, pattern := range annotatedPatterns {
		for _, match := range pattern.FindAllStringSubmatch(fileContent, -1) {
			testCasesMap[match[1]] = true
		}
	}

	// Convert map to sorted slice for consistent output
	var testCases []string
	for testCase := range testCasesMap {
		testCases = append(testCases, testCase)
	}
	sort.Strings(testCases)

	return testCases, nil
}
