package discovery

import (
	"fmt"
	"os"
	"regexp"
)

// Parser extracts test case names from JavaScript test files
type Parser struct {
	casePattern *regexp.Regexp
}

// NewParser creates a new Parser
func NewParser() *Parser {
	// Matches:
	// - it("renders", ...)
	// - test('handles click', ...)
	// - it.only(`focus`, ...)
	// - it.skip("later", ...)
	return &Parser{
		casePattern: regexp.MustCompile("(?m)(?:^|[^\\w.])(?:it|test)(?:\\.(?:only|skip))?\\s*\\(\\s*(?:\"([^\"]+)\"|'([^']+)'|`([^`]+)`)"),
	}
}

// FindTestCases lists the test cases declared in a file, in source order.
// Names that appear twice are listed once.
func (p *Parser) FindTestCases(filePath string) ([]string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}

	seen := make(map[string]bool)
	var testCases []string
	for _, match := range p.casePattern.FindAllStringSubmatch(string(content), -1) {
		name := firstNonEmpty(match[1:]...)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		testCases = append(testCases, name)
	}
	return testCases, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
