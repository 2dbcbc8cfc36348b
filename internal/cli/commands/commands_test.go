package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wtp/internal/cli"
	"wtp/internal/config"
	"wtp/internal/discovery"
	"wtp/internal/domain"
	"wtp/internal/plan"
)

// newProject creates a project with the given files (relative paths) under a temp dir
func newProject(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(`it("works", () => {});`), 0644))
	}
	return dir
}

func newPlanner(cfg *config.Config) *Planner {
	return NewPlanner(cfg, discovery.NewScanner(cfg.ProjectPath, cfg.PathsToIgnore), discovery.NewFilter())
}

func TestPlanner_Build(t *testing.T) {
	dir := newProject(t,
		"lib/button/button.test.js",
		"lib/button/button.a11y.test.js",
		"lib/menu/menu.visual.test.js",
		"node_modules/dep/dep.test.js",
	)
	cfg := config.New()
	cfg.ProjectPath = dir

	p, err := newPlanner(cfg).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"lib/button/button.a11y.test.js", "lib/button/button.test.js", "lib/menu/menu.visual.test.js"}, p.Files)
	// a11y: chromium only; unit and visual: all three browsers
	require.Len(t, p.Units, 7)
	assert.Equal(t, "a11y", p.Units[0].Group)
	assert.Equal(t, domain.Chromium, p.Units[0].Browser)
	for i, u := range p.Units {
		assert.Equal(t, i, u.Index)
	}
	assert.Empty(t, p.Overlaps)
}

func TestPlanner_Build_GroupAndFilter(t *testing.T) {
	dir := newProject(t, "lib/a.test.js", "lib/b.test.js", "lib/b.visual.test.js")
	cfg := config.New()
	cfg.ProjectPath = dir
	cfg.Flags.Group = "visual"

	p, err := newPlanner(cfg).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, p.Units, 3)
	for i, u := range p.Units {
		assert.Equal(t, "visual", u.Group)
		assert.Equal(t, i, u.Index, "renumbered after group selection")
	}
	assert.Equal(t, []string{"lib/b.visual.test.js"}, p.GroupFiles())

	cfg.Flags.Group = ""
	cfg.Flags.NameFilter = "a.test.js"
	p, err = newPlanner(cfg).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/a.test.js"}, p.Files)

	cfg.Flags.Group = "nope"
	_, err = newPlanner(cfg).Build(context.Background())
	assert.ErrorContains(t, err, `unknown group "nope"`)
}

func TestPlanner_Build_Overlaps(t *testing.T) {
	dir := newProject(t, "lib/a.test.js", "lib/b.test.js")
	cfg := config.New()
	cfg.ProjectPath = dir
	cfg.Groups = []config.GroupConfig{
		{Name: "all", Files: "lib/**/*.test.js"},
		{Name: "smoke", Files: "lib/a.test.js", Browsers: []string{"chromium"}},
	}

	p, err := newPlanner(cfg).Build(context.Background())
	require.NoError(t, err)
	require.Len(t, p.Overlaps, 1)
	assert.Equal(t, "lib/a.test.js", p.Overlaps[0].File)
	assert.Len(t, p.Units, 6, "the later group does not get the overlapping file")

	cfg.Flags.Strict = true
	_, err = newPlanner(cfg).Build(context.Background())
	var cfgErr *plan.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "smoke", cfgErr.Group)
}

func newRoot(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	root := &cobra.Command{Use: "wtp", SilenceUsage: true, SilenceErrors: true}
	cfg := config.New()
	var flags cli.Flags
	NewCommands(cfg).Register(root, &flags, cfg)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	return root, &out
}

func TestPlanCommand_JSON(t *testing.T) {
	dir := newProject(t, "lib/a.a11y.test.js")
	root, out := newRoot(t)
	root.SetArgs([]string{"plan", "--json", "-C", dir})
	require.NoError(t, root.Execute())

	var units []map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &units))
	assert.Equal(t, []map[string]string{{
		"group":   "a11y",
		"file":    "lib/a.a11y.test.js",
		"browser": "chromium",
		"harness": "no-animations",
		"timeout": "10s",
	}}, units)
}

func TestPlanCommand_Table(t *testing.T) {
	dir := newProject(t, "lib/a.test.js")
	root, out := newRoot(t)
	root.SetArgs([]string{"plan", "-C", dir})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "3 execution unit(s)")
}

func TestPlanCommand_ConfigError(t *testing.T) {
	dir := newProject(t, "lib/a.test.js")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wtp.yaml"), []byte(`
groups:
  - name: unit
    files: "lib/[a.test.js"
`), 0644))

	root, _ := newRoot(t)
	root.SetArgs([]string{"plan", "-C", dir})
	err := root.Execute()
	require.Error(t, err)
	assert.True(t, plan.IsConfigurationError(err))
}

func TestListCommand(t *testing.T) {
	dir := newProject(t, "lib/a.test.js", "lib/b.visual.test.js")
	root, out := newRoot(t)
	root.SetArgs([]string{"list", "-C", dir, "--group", "visual"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Found 1 test file(s)")
	assert.Contains(t, out.String(), "└── lib/b.visual.test.js")
}

func TestLogsCommand(t *testing.T) {
	root, out := newRoot(t)
	benign := config.DefaultBenignLogs[0]
	nearMiss := benign + " "
	root.SetIn(strings.NewReader(benign + "\n" + "real problem\n" + nearMiss + "\n"))
	root.SetArgs([]string{"logs", "-C", t.TempDir()})
	require.NoError(t, root.Execute())

	assert.Equal(t, "real problem\n"+nearMiss+"\n", out.String(), "only exact matches are dropped")
}

func TestWire_LaunchersCoverDefaultBrowsers(t *testing.T) {
	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	c := NewCommands(cfg)
	require.NoError(t, c.wire(&bytes.Buffer{}))
	defer c.Run.launchers.Close()

	for _, b := range cfg.PlanDefaults().Browsers {
		l, err := c.Run.launchers.Get(b)
		if assert.NoError(t, err, "no launcher for %s", b) {
			assert.Equal(t, b, l.Name())
		}
	}
}
