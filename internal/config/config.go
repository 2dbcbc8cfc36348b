package config

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"wtp/internal/domain"
	"wtp/internal/plan"
)

// Config holds all configuration for the application.
// It is built once by Load and only read afterwards.
type Config struct {
	// Project settings
	ProjectPath string
	ConfigFile  string // file actually loaded, empty when running on defaults
	FilesRoot   string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string
	ResultsDSN     string

	// Execution settings
	ConcurrentBrowsers int
	TestTimeout        time.Duration
	FinishTimeout      time.Duration

	// Browsers and harnesses
	Browsers       []domain.BrowserTarget
	Profiles       map[domain.BrowserTarget]domain.LaunchProfile
	DefaultHarness string
	Harnesses      map[string]domain.Harness

	// Suite layout
	Groups        []GroupConfig
	BenignLogs    []string
	MimeTypes     map[string]string
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

// GroupConfig is a group as written in a config file; harness and browsers are still names
type GroupConfig struct {
	Name     string   `yaml:"name" json:"name"`
	Files    string   `yaml:"files" json:"files"`
	Exclude  []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	Browsers []string `yaml:"browsers,omitempty" json:"browsers,omitempty"`
	Harness  string   `yaml:"harness,omitempty" json:"harness,omitempty"`
}

// Flags holds command-line flags
type Flags struct {
	ProjectPath string
	ConfigFile  string
	Concurrency int
	NameFilter  string
	Group       string
	FailFast    bool
	OpenFaills  bool
	JSON        bool
	Strict      bool
	TestCases   bool
	Verbose     bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:        DefaultProjectPath,
		FilesRoot:          DefaultFilesRoot,
		OutputJSONFile:     DefaultOutputJSONFile,
		OutputJSONDir:      DefaultOutputJSONDir,
		ConcurrentBrowsers: DefaultConcurrentBrowsers,
		TestTimeout:        DefaultTestTimeout,
		FinishTimeout:      DefaultFinishTimeout,
		Browsers:           append([]domain.BrowserTarget(nil), domain.AllBrowsers...),
		Profiles:           defaultProfiles(),
		DefaultHarness:     DefaultHarnessName,
		Harnesses:          defaultHarnesses(),
		Groups:             defaultGroups(),
		MimeTypes:          make(map[string]string, len(DefaultMimeTypes)),
	}
	// Copy default slices so callers can't mutate package state
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	cfg.BenignLogs = make([]string, len(DefaultBenignLogs))
	copy(cfg.BenignLogs, DefaultBenignLogs)
	for k, v := range DefaultMimeTypes {
		cfg.MimeTypes[k] = v
	}
	return cfg
}

// Load builds the configuration: defaults, then the config file, then the
// environment (including <project>/.env), then command-line flags.
func Load(flags Flags) (*Config, error) {
	cfg := New()
	cfg.Flags = flags
	if flags.ProjectPath != "" {
		cfg.ProjectPath = flags.ProjectPath
	}

	// .env is optional; real environment variables win over it
	_ = godotenv.Load(filepath.Join(cfg.ProjectPath, ".env"))

	path, explicit := cfg.configFilePath()
	fc, err := readFile(path)
	switch {
	case err == nil:
		cfg.ConfigFile = path
		if err := cfg.apply(fc); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// running on defaults
	default:
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if flags.Concurrency > 0 {
		cfg.ConcurrentBrowsers = flags.Concurrency
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) configFilePath() (string, bool) {
	if c.Flags.ConfigFile == "" {
		return filepath.Join(c.ProjectPath, DefaultConfigFile), false
	}
	if filepath.IsAbs(c.Flags.ConfigFile) {
		return c.Flags.ConfigFile, true
	}
	return filepath.Join(c.ProjectPath, c.Flags.ConfigFile), true
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("WTP_CONCURRENT_BROWSERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("WTP_CONCURRENT_BROWSERS: %w", err)
		}
		c.ConcurrentBrowsers = n
	}
	if v := os.Getenv("WTP_TEST_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("WTP_TEST_TIMEOUT: %w", err)
		}
		c.TestTimeout = d
	}
	if v := os.Getenv("WTP_FINISH_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("WTP_FINISH_TIMEOUT: %w", err)
		}
		c.FinishTimeout = d
	}
	if v := os.Getenv("WTP_RESULTS_DSN"); v != "" {
		c.ResultsDSN = v
	}
	return nil
}

// Validate checks everything that can be checked without looking at test files
func (c *Config) Validate() error {
	if c.ConcurrentBrowsers <= 0 {
		return fmt.Errorf("concurrent_browsers must be positive, got %d", c.ConcurrentBrowsers)
	}
	if c.TestTimeout <= 0 {
		return fmt.Errorf("test_timeout must be positive, got %s", c.TestTimeout)
	}
	if c.FinishTimeout <= 0 {
		return fmt.Errorf("finish_timeout must be positive, got %s", c.FinishTimeout)
	}
	if len(c.Browsers) == 0 {
		return fmt.Errorf("at least one browser is required")
	}
	for _, b := range c.Browsers {
		if !b.Valid() {
			return fmt.Errorf("unknown browser %q", b)
		}
	}

	names := make([]string, 0, len(c.Harnesses))
	for name := range c.Harnesses {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := template.New(name).Parse(c.Harnesses[name].Template); err != nil {
			return fmt.Errorf("harness %q: %w", name, err)
		}
	}
	if _, ok := c.Harnesses[c.DefaultHarness]; !ok {
		return fmt.Errorf("default harness %q is not defined", c.DefaultHarness)
	}

	_, err := c.TestGroups()
	return err
}

// TestGroups converts the configured groups, resolving harness names
func (c *Config) TestGroups() ([]domain.TestGroup, error) {
	groups := make([]domain.TestGroup, 0, len(c.Groups))
	for _, gc := range c.Groups {
		g := domain.TestGroup{
			Name:    gc.Name,
			Files:   gc.Files,
			Exclude: append([]string(nil), gc.Exclude...),
		}
		for _, b := range gc.Browsers {
			g.Browsers = append(g.Browsers, domain.BrowserTarget(b))
		}
		if gc.Harness != "" {
			h, ok := c.Harnesses[gc.Harness]
			if !ok {
				return nil, &plan.ConfigurationError{Group: gc.Name, Reason: fmt.Sprintf("unknown harness %q", gc.Harness)}
			}
			g.Harness = &h
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// PlanDefaults returns the values applied to groups without overrides
func (c *Config) PlanDefaults() plan.Defaults {
	return plan.Defaults{
		Browsers: append([]domain.BrowserTarget(nil), c.Browsers...),
		Harness:  c.Harnesses[c.DefaultHarness],
		Timeout:  c.TestTimeout,
	}
}

// Profile returns the launch profile for a browser
func (c *Config) Profile(b domain.BrowserTarget) domain.LaunchProfile {
	return c.Profiles[b]
}

// GetFilesRoot returns the directory test discovery starts from
func (c *Config) GetFilesRoot() string {
	if filepath.IsAbs(c.FilesRoot) {
		return c.FilesRoot
	}
	return filepath.Join(c.ProjectPath, c.FilesRoot)
}

// GetOutputPath returns the full path to the output JSON file (under project so run and faills use the same file).
// Resolves to an absolute path so run and faills always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// parseDuration accepts Go durations ("10s") and bare milliseconds ("10000")
func parseDuration(s string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}
