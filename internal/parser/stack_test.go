package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wtp/internal/domain"
)

func failedResult(failures ...string) domain.UnitResult {
	return domain.UnitResult{
		Unit: domain.ExecutionUnit{
			Group:   "unit",
			File:    "lib/button/button.test.js",
			Browser: domain.Chromium,
		},
		Failures: failures,
		Logs:     []string{"warning: deprecated prop"},
	}
}

func TestStackParser_ParseFailure(t *testing.T) {
	p := NewStackParser()

	t.Run("chromium stack", func(t *testing.T) {
		raw := "AssertionError: expected 1 to equal 2\n" +
			"  + expected - actual\n" +
			"\n" +
			"    at assertEqual (http://127.0.0.1:4321/node_modules/chai/chai.js:120:11)\n" +
			"    at Context.<anonymous> (http://127.0.0.1:4321/lib/button/button.test.js:42:7)\n"

		failures := p.ParseFailure(failedResult(raw))
		require.Len(t, failures, 1)
		f := failures[0]

		assert.Equal(t, "unit", f.Group)
		assert.Equal(t, "chromium", f.Browser)
		assert.Equal(t, "lib/button/button.test.js", f.FilePath)
		assert.Equal(t, "AssertionError: expected 1 to equal 2\n  + expected - actual", f.Message)
		assert.Len(t, f.StackTrace, 2)
		assert.Equal(t, "lib/button/button.test.js", f.File)
		assert.Equal(t, 42, f.Line)
		assert.Equal(t, []string{"warning: deprecated prop"}, f.Logs)
	})

	t.Run("gecko stack", func(t *testing.T) {
		raw := "TypeError: el is null\n" +
			"render@http://127.0.0.1:4321/lib/menu/menu.js:8:3\n" +
			"@http://127.0.0.1:4321/lib/menu/menu.test.js:15:9\n"

		failures := p.ParseFailure(failedResult(raw))
		require.Len(t, failures, 1)
		assert.Equal(t, "TypeError: el is null", failures[0].Message)
		assert.Len(t, failures[0].StackTrace, 2)
		// the test file is not lib/menu/menu.test.js for this unit, so the first frame wins
		assert.Equal(t, "lib/menu/menu.js", failures[0].File)
		assert.Equal(t, 8, failures[0].Line)
	})

	t.Run("one record per reported message", func(t *testing.T) {
		failures := p.ParseFailure(failedResult("first", "second"))
		require.Len(t, failures, 2)
		assert.Equal(t, "first", failures[0].Message)
		assert.Empty(t, failures[0].File)
		assert.Equal(t, "second", failures[1].Message)
	})

	t.Run("failure without messages uses the error", func(t *testing.T) {
		r := failedResult()
		r.Error = errors.New("browser crashed")
		failures := p.ParseFailure(r)
		require.Len(t, failures, 1)
		assert.Equal(t, "browser crashed", failures[0].Message)
	})

	t.Run("successful result has no failures", func(t *testing.T) {
		r := failedResult("ignored")
		r.Success = true
		assert.Empty(t, p.ParseFailure(r))
	})
}
