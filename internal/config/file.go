package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"wtp/internal/domain"
)

// fileConfig is the on-disk shape shared by the YAML, JSON and HCL loaders.
// Zero values mean "keep the default".
type fileConfig struct {
	FilesRoot          string                   `yaml:"files_root"`
	ConcurrentBrowsers int                      `yaml:"concurrent_browsers"`
	TestTimeout        durationValue            `yaml:"test_timeout"`
	FinishTimeout      durationValue            `yaml:"finish_timeout"`
	Browsers           []string                 `yaml:"browsers"`
	Profiles           map[string]profileConfig `yaml:"profiles"`
	DefaultHarness     string                   `yaml:"default_harness"`
	Harnesses          map[string]string        `yaml:"harnesses"`
	Groups             []GroupConfig            `yaml:"groups"`
	BenignLogs         []string                 `yaml:"benign_logs"`
	MimeTypes          map[string]string        `yaml:"mime_types"`
	PathsToIgnore      []string                 `yaml:"paths_to_ignore"`
	ResultsDSN         string                   `yaml:"results_dsn"`
	OutputDir          string                   `yaml:"output_dir"`
}

type profileConfig struct {
	ReducedMotion string         `yaml:"reduced_motion"`
	Preferences   map[string]any `yaml:"preferences"`
}

// durationValue keeps the raw scalar so both 10000 and "10s" are accepted
type durationValue string

func (d *durationValue) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", n.Line)
	}
	*d = durationValue(n.Value)
	return nil
}

// readFile loads a config file, picking the decoder from its extension
func readFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return decodeYAML(data)
	case ".hcl":
		return decodeHCL(path, data)
	default:
		return nil, fmt.Errorf("unsupported config format %q (use .yaml, .json or .hcl)", filepath.Ext(path))
	}
}

// decodeYAML also handles JSON, which is a subset of YAML
func decodeYAML(data []byte) (*fileConfig, error) {
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return &fc, nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &fc, nil
}

// apply overlays non-zero file values on c
func (c *Config) apply(fc *fileConfig) error {
	if fc.FilesRoot != "" {
		c.FilesRoot = fc.FilesRoot
	}
	if fc.OutputDir != "" {
		c.OutputJSONDir = fc.OutputDir
	}
	if fc.ConcurrentBrowsers != 0 {
		c.ConcurrentBrowsers = fc.ConcurrentBrowsers
	}
	if fc.TestTimeout != "" {
		d, err := parseDuration(string(fc.TestTimeout))
		if err != nil {
			return fmt.Errorf("test_timeout: %w", err)
		}
		c.TestTimeout = d
	}
	if fc.FinishTimeout != "" {
		d, err := parseDuration(string(fc.FinishTimeout))
		if err != nil {
			return fmt.Errorf("finish_timeout: %w", err)
		}
		c.FinishTimeout = d
	}
	if len(fc.Browsers) > 0 {
		c.Browsers = make([]domain.BrowserTarget, 0, len(fc.Browsers))
		for _, b := range fc.Browsers {
			c.Browsers = append(c.Browsers, domain.BrowserTarget(b))
		}
	}
	for name, p := range fc.Profiles {
		b := domain.BrowserTarget(name)
		if !b.Valid() {
			return fmt.Errorf("profile for unknown browser %q", name)
		}
		c.Profiles[b] = domain.LaunchProfile{ReducedMotion: p.ReducedMotion, Preferences: p.Preferences}
	}
	for name, tmpl := range fc.Harnesses {
		c.Harnesses[name] = domain.Harness{Name: name, Template: tmpl}
	}
	if fc.DefaultHarness != "" {
		c.DefaultHarness = fc.DefaultHarness
	}
	if fc.Groups != nil {
		c.Groups = fc.Groups
	}
	if fc.BenignLogs != nil {
		c.BenignLogs = fc.BenignLogs
	}
	for pattern, kind := range fc.MimeTypes {
		c.MimeTypes[pattern] = kind
	}
	if fc.PathsToIgnore != nil {
		c.PathsToIgnore = fc.PathsToIgnore
	}
	if fc.ResultsDSN != "" {
		c.ResultsDSN = fc.ResultsDSN
	}
	return nil
}
