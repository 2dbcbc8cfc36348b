package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wtp/internal/domain"
	"wtp/internal/plan"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultProjectPath, cfg.ProjectPath)
	assert.Equal(t, DefaultConcurrentBrowsers, cfg.ConcurrentBrowsers)
	assert.Equal(t, 10*time.Second, cfg.TestTimeout)
	assert.Equal(t, 5*time.Minute, cfg.FinishTimeout)
	assert.Equal(t, []domain.BrowserTarget{domain.Chromium, domain.Firefox, domain.WebKit}, cfg.Browsers)
	assert.Len(t, cfg.PathsToIgnore, len(DefaultPathsToIgnore))
	assert.Equal(t, DefaultBenignLogs, cfg.BenignLogs)
	assert.Equal(t, "js", cfg.MimeTypes["**/*.less"])
	assert.Equal(t, 6, cfg.Profile(domain.Firefox).Preferences["ui.allPointerCapabilities"])
	assert.Equal(t, "reduce", cfg.Profile(domain.WebKit).ReducedMotion)
	require.NoError(t, cfg.Validate())

	t.Run("defaults are copied", func(t *testing.T) {
		cfg.PathsToIgnore[0] = "changed"
		cfg.MimeTypes["x"] = "y"
		assert.NotEqual(t, "changed", DefaultPathsToIgnore[0])
		_, ok := DefaultMimeTypes["x"]
		assert.False(t, ok)
	})
}

func TestConfig_DefaultGroups(t *testing.T) {
	cfg := New()
	groups, err := cfg.TestGroups()
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, "a11y", groups[0].Name)
	assert.Equal(t, []domain.BrowserTarget{domain.Chromium}, groups[0].Browsers)
	require.NotNil(t, groups[0].Harness)
	assert.Equal(t, NoAnimationsHarnessName, groups[0].Harness.Name)

	assert.Equal(t, "unit", groups[1].Name)
	assert.Nil(t, groups[1].Browsers)
	assert.Nil(t, groups[1].Harness)

	files := []string{
		"lib/button/button.a11y.test.js",
		"lib/button/button.test.js",
		"lib/button/button.visual.test.js",
		"lib/styles/theme.less.test.js",
	}
	overlaps, err := plan.Overlaps(groups, files)
	require.NoError(t, err)
	assert.Empty(t, overlaps, "default groups must partition the suite")

	units, err := plan.ResolveGroups(groups, files, cfg.PlanDefaults())
	require.NoError(t, err)
	// a11y 1x1, unit 1x3, visual 1x3; the .less test belongs to no group
	assert.Len(t, units, 7)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wtp.yaml", `
files_root: src
concurrent_browsers: 2
test_timeout: 2500
finish_timeout: 1m
browsers: [chromium, webkit]
profiles:
  chromium:
    reduced_motion: no-preference
harnesses:
  bare: "<html>{{.Framework}}</html>"
default_harness: bare
groups:
  - name: smoke
    files: "src/**/*.smoke.js"
    browsers: [chromium]
  - name: unit
    files: "src/**/*.test.js"
    harness: no-animations
benign_logs:
  - "known noise"
mime_types:
  "**/*.css": js
`)

	cfg, err := Load(Flags{ProjectPath: dir})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "wtp.yaml"), cfg.ConfigFile)
	assert.Equal(t, filepath.Join(dir, "src"), cfg.GetFilesRoot())
	assert.Equal(t, 2, cfg.ConcurrentBrowsers)
	assert.Equal(t, 2500*time.Millisecond, cfg.TestTimeout)
	assert.Equal(t, time.Minute, cfg.FinishTimeout)
	assert.Equal(t, []domain.BrowserTarget{domain.Chromium, domain.WebKit}, cfg.Browsers)
	assert.Equal(t, "no-preference", cfg.Profile(domain.Chromium).ReducedMotion)
	assert.Equal(t, []string{"known noise"}, cfg.BenignLogs)
	assert.Equal(t, "js", cfg.MimeTypes["**/*.css"])
	assert.Equal(t, "js", cfg.MimeTypes["**/*.less"])

	defaults := cfg.PlanDefaults()
	assert.Equal(t, "bare", defaults.Harness.Name)
	assert.Equal(t, cfg.TestTimeout, defaults.Timeout)

	groups, err := cfg.TestGroups()
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "smoke", groups[0].Name)
	assert.Equal(t, NoAnimationsHarnessName, groups[1].Harness.Name)
}

func TestLoad_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "conf/wtp.json", `{"concurrent_browsers": 5, "groups": [{"name": "all", "files": "**/*.test.js"}]}`)

	cfg, err := Load(Flags{ProjectPath: dir, ConfigFile: "conf/wtp.json"})
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, 5, cfg.ConcurrentBrowsers)
	require.Len(t, cfg.Groups, 1)
	assert.Equal(t, "all", cfg.Groups[0].Name)
}

func TestLoad_HCL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wtp.hcl", `
concurrent_browsers = 4
test_timeout        = "3s"
browsers            = ["chromium", "firefox"]
benign_logs         = ["noise"]

profile "firefox" {
  reduced_motion = "reduce"
  preferences = {
    "ui.primaryPointerCapabilities" = 6
    "ui.scale"                      = 1.5
    "devtools.enabled"              = false
  }
}

harness "plain" {
  template = "<html>{{.Framework}}</html>"
}

group "a11y" {
  files    = "lib/**/*.a11y.test.js"
  browsers = ["chromium"]
  harness  = "plain"
}

group "unit" {
  files   = "lib/**/*.test.js"
  exclude = ["lib/**/*.a11y.test.js"]
}
`)

	cfg, err := Load(Flags{ProjectPath: dir, ConfigFile: "wtp.hcl"})
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.ConcurrentBrowsers)
	assert.Equal(t, 3*time.Second, cfg.TestTimeout)
	assert.Equal(t, []domain.BrowserTarget{domain.Chromium, domain.Firefox}, cfg.Browsers)
	assert.Equal(t, []string{"noise"}, cfg.BenignLogs)

	prefs := cfg.Profile(domain.Firefox).Preferences
	assert.Equal(t, 6, prefs["ui.primaryPointerCapabilities"])
	assert.Equal(t, 1.5, prefs["ui.scale"])
	assert.Equal(t, false, prefs["devtools.enabled"])

	groups, err := cfg.TestGroups()
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "plain", groups[0].Harness.Name)
	assert.Equal(t, []string{"lib/**/*.a11y.test.js"}, groups[1].Exclude)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		flags   Flags
		check   func(t *testing.T, err error)
	}{
		{
			name:  "explicit file missing",
			flags: Flags{ConfigFile: "nope.yaml"},
		},
		{
			name:    "unknown yaml field",
			file:    "wtp.yaml",
			content: "concurrency: 3\n",
		},
		{
			name:    "unsupported extension",
			file:    "wtp.toml",
			content: "x = 1\n",
			flags:   Flags{ConfigFile: "wtp.toml"},
		},
		{
			name:    "bad duration",
			file:    "wtp.yaml",
			content: "test_timeout: soon\n",
		},
		{
			name:    "unknown browser",
			file:    "wtp.yaml",
			content: "browsers: [edge]\n",
		},
		{
			name:    "unknown default harness",
			file:    "wtp.yaml",
			content: "default_harness: fancy\n",
		},
		{
			name:    "broken harness template",
			file:    "wtp.yaml",
			content: "harnesses:\n  broken: \"{{.Framework\"\n",
		},
		{
			name:    "group with unknown harness",
			file:    "wtp.yaml",
			content: "groups:\n  - name: unit\n    files: \"*.js\"\n    harness: fancy\n",
			check: func(t *testing.T, err error) {
				var ce *plan.ConfigurationError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, "unit", ce.Group)
			},
		},
		{
			name:    "hcl syntax error",
			file:    "wtp.hcl",
			content: "group \"x\" {\n",
			flags:   Flags{ConfigFile: "wtp.hcl"},
		},
		{
			name:    "negative concurrency",
			file:    "wtp.yaml",
			content: "concurrent_browsers: -1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.file != "" {
				writeFile(t, dir, tt.file, tt.content)
			}
			flags := tt.flags
			flags.ProjectPath = dir

			cfg, err := Load(flags)
			require.Error(t, err)
			assert.Nil(t, cfg)
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Run("no config file uses defaults", func(t *testing.T) {
		cfg, err := Load(Flags{ProjectPath: t.TempDir()})
		require.NoError(t, err)
		assert.Empty(t, cfg.ConfigFile)
		assert.Equal(t, DefaultConcurrentBrowsers, cfg.ConcurrentBrowsers)
	})

	t.Run("env overrides file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "wtp.yaml", "concurrent_browsers: 2\n")
		t.Setenv("WTP_CONCURRENT_BROWSERS", "7")
		t.Setenv("WTP_TEST_TIMEOUT", "15s")

		cfg, err := Load(Flags{ProjectPath: dir})
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.ConcurrentBrowsers)
		assert.Equal(t, 15*time.Second, cfg.TestTimeout)
	})

	t.Run("dotenv file is read", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".env", "WTP_RESULTS_DSN=user:pass@tcp(127.0.0.1:3306)/wtp\n")
		t.Setenv("WTP_RESULTS_DSN", "")
		os.Unsetenv("WTP_RESULTS_DSN")

		cfg, err := Load(Flags{ProjectPath: dir})
		require.NoError(t, err)
		assert.Equal(t, "user:pass@tcp(127.0.0.1:3306)/wtp", cfg.ResultsDSN)
	})

	t.Run("flag overrides env", func(t *testing.T) {
		t.Setenv("WTP_CONCURRENT_BROWSERS", "7")
		cfg, err := Load(Flags{ProjectPath: t.TempDir(), Concurrency: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.ConcurrentBrowsers)
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("WTP_CONCURRENT_BROWSERS", "many")
		_, err := Load(Flags{ProjectPath: t.TempDir()})
		assert.Error(t, err)
	})
}

func TestConfig_Paths(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name:     "relative files root",
			config:   &Config{ProjectPath: "/project", FilesRoot: "lib"},
			expected: "/project/lib",
		},
		{
			name:     "absolute files root",
			config:   &Config{ProjectPath: "/project", FilesRoot: "/elsewhere"},
			expected: "/elsewhere",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.GetFilesRoot())
		})
	}

	cfg := &Config{ProjectPath: "/project", OutputJSONDir: "storage", OutputJSONFile: "r.json"}
	assert.Equal(t, "/project/storage/r.json", cfg.GetOutputPath())
}
