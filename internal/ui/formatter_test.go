package ui

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wtp/internal/config"
	"wtp/internal/discovery"
	"wtp/internal/domain"
	"wtp/internal/plan"
)

func newTestFormatter(t *testing.T) (*Formatter, *bytes.Buffer) {
	t.Helper()
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	f := NewFormatter(cfg, discovery.NewParser())
	var buf bytes.Buffer
	f.SetOutput(&buf)
	return f, &buf
}

func TestPrintPlan(t *testing.T) {
	f, buf := newTestFormatter(t)
	noAnim := domain.Harness{Name: "no-animations"}
	units := []domain.ExecutionUnit{
		{Group: "a11y", File: "lib/a.a11y.test.js", Browser: domain.Chromium, Harness: noAnim},
		{Group: "unit", File: "lib/a.test.js", Browser: domain.Chromium, Harness: domain.Harness{Name: "default"}},
		{Group: "unit", File: "lib/b.test.js", Browser: domain.Chromium, Harness: domain.Harness{Name: "default"}},
		{Group: "unit", File: "lib/a.test.js", Browser: domain.Firefox, Harness: domain.Harness{Name: "default"}},
	}
	f.PrintPlan(units, []plan.Overlap{{File: "lib/a.test.js", Groups: []string{"unit", "smoke"}}})

	out := buf.String()
	assert.Contains(t, out, "GROUP")
	assert.Regexp(t, `a11y\s+chromium\s+no-animations\s+1`, out)
	assert.Regexp(t, `unit\s+chromium\s+default\s+2`, out)
	assert.Regexp(t, `unit\s+firefox\s+default\s+1`, out)
	assert.Contains(t, out, "4 execution unit(s) in 3 group/browser slot(s)")
	assert.Contains(t, out, "warning: ")
	assert.Contains(t, out, "lib/a.test.js")
}

func TestPrintPlan_Empty(t *testing.T) {
	f, buf := newTestFormatter(t)
	f.PrintPlan(nil, nil)
	assert.Contains(t, buf.String(), "No execution units")
}

func TestPrintPlanJSON(t *testing.T) {
	f, buf := newTestFormatter(t)
	require.NoError(t, f.PrintPlanJSON([]domain.ExecutionUnit{
		{Group: "unit", File: "lib/a.test.js", Browser: domain.WebKit, Harness: domain.Harness{Name: "default"}, Timeout: 10 * time.Second},
	}))
	assert.JSONEq(t, `[{"group":"unit","file":"lib/a.test.js","browser":"webkit","harness":"default","timeout":"10s"}]`, buf.String())

	buf.Reset()
	require.NoError(t, f.PrintPlanJSON(nil))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestPrintFileList(t *testing.T) {
	f, buf := newTestFormatter(t)
	dir := filepath.Join(f.config.ProjectPath, "lib")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.test.js"), []byte(`it("renders", () => {});
it('handles click', () => {});`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.test.js"), []byte(`// nothing`), 0644))

	files := []string{"lib/a.test.js", "lib/b.test.js"}
	f.PrintFileList(files, false, map[string]struct{}{"lib/b.test.js": {}})
	out := buf.String()
	assert.Contains(t, out, "Found 2 test file(s):")
	assert.Contains(t, out, "├── lib/a.test.js\n")
	assert.Contains(t, out, "└── lib/b.test.js [F]")

	buf.Reset()
	f.PrintFileList(files, true, nil)
	out = buf.String()
	assert.Contains(t, out, "│   ├── renders")
	assert.Contains(t, out, "│   └── handles click")
	assert.Contains(t, out, "    └── (no test cases found)")

	n, err := f.CountTestCases(files)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPrintMetaStats(t *testing.T) {
	f, buf := newTestFormatter(t)
	f.PrintMetaStats(&domain.RunOutput{Meta: domain.RunMeta{TotalUnits: 3, PassedUnits: 3, Concurrency: 2}})
	assert.Contains(t, buf.String(), "All units passed")

	buf.Reset()
	f.PrintMetaStats(&domain.RunOutput{
		Meta: domain.RunMeta{TotalUnits: 3, PassedUnits: 1, FailedUnits: 2, FailedCases: 2, DurationSeconds: 1.234},
		Details: []domain.UnitFailure{
			{Browser: "chromium", FilePath: "lib/button/button.test.js", Message: "expected true\n  at x"},
			{Browser: "firefox", FilePath: "lib/button/button.test.js", Message: "timeout"},
		},
	})
	out := buf.String()
	assert.Contains(t, out, "1.23s")
	assert.Contains(t, out, "2 unit(s) failed with 2 failure(s)")
	assert.Contains(t, out, "└── lib")
	assert.Contains(t, out, "    └── button")
	assert.Contains(t, out, "        └── button.test.js")
	assert.Contains(t, out, "├── [chromium] expected true\n")
	assert.Contains(t, out, "└── [firefox] timeout")
	assert.False(t, strings.Contains(out, "  at x"), "only the first message line is printed")
}
