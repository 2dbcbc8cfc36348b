package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"wtp/internal/domain"
)

var (
	// "    at render (http://127.0.0.1:4321/lib/a.test.js:10:5)" or "render@http://.../a.test.js:10:5"
	frameLine = regexp.MustCompile(`^\s*(?:at\s|\S*@\S+:\d+:\d+\s*$)`)
	location  = regexp.MustCompile(`(?:[a-z]+://[^/\s)]+)?/?([^\s()@]+):(\d+):\d+\)?\s*$`)
)

// StackParser parses failures reported by the page: a message followed by
// V8 ("at ...") or Gecko/WebKit ("fn@url") stack frames.
type StackParser struct{}

// NewStackParser creates a new StackParser
func NewStackParser() *StackParser {
	return &StackParser{}
}

// ParseFailure returns one failure per reported message. A unit that failed
// without any message (launcher error, timeout) still yields one record.
func (p *StackParser) ParseFailure(result domain.UnitResult) []domain.UnitFailure {
	if result.Success {
		return nil
	}

	var failures []domain.UnitFailure
	for _, raw := range result.Failures {
		failures = append(failures, p.parseFailureMessage(result, raw))
	}

	if len(failures) == 0 {
		msg := "unit failed"
		if result.Error != nil {
			msg = result.Error.Error()
		}
		failures = append(failures, p.newFailure(result, msg))
	}
	return failures
}

func (p *StackParser) newFailure(result domain.UnitResult, message string) domain.UnitFailure {
	return domain.UnitFailure{
		Group:      result.Unit.Group,
		Browser:    string(result.Unit.Browser),
		FilePath:   result.Unit.File,
		Message:    message,
		StackTrace: []string{},
		Logs:       result.Logs,
	}
}

func (p *StackParser) parseFailureMessage(result domain.UnitResult, raw string) domain.UnitFailure {
	var messageLines, stack []string
	for _, line := range strings.Split(raw, "\n") {
		if frameLine.MatchString(line) {
			stack = append(stack, strings.TrimSpace(line))
			continue
		}
		// Frames end the message; anything after them is noise
		if len(stack) == 0 {
			messageLines = append(messageLines, line)
		}
	}

	// Trim trailing empty lines
	for len(messageLines) > 0 && strings.TrimSpace(messageLines[len(messageLines)-1]) == "" {
		messageLines = messageLines[:len(messageLines)-1]
	}

	failure := p.newFailure(result, strings.Join(messageLines, "\n"))
	failure.StackTrace = stack
	failure.File, failure.Line = pickLocation(stack, result.Unit.File)
	return failure
}

// pickLocation prefers the first frame inside the unit's own test file
func pickLocation(stack []string, testFile string) (string, int) {
	var firstFile string
	var firstLine int
	for _, frame := range stack {
		file, line, err := parseLocation(frame)
		if err != nil {
			continue
		}
		if file == testFile {
			return file, line
		}
		if firstFile == "" {
			firstFile, firstLine = file, line
		}
	}
	return firstFile, firstLine
}

func parseLocation(frame string) (string, int, error) {
	m := location.FindStringSubmatch(frame)
	if len(m) < 3 {
		return "", 0, errors.New("no location")
	}
	line, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, err
	}
	return m[1], line, nil
}
