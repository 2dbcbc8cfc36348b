package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// hclConfigFile represents the top-level structure of a .hcl config for decoding
type hclConfigFile struct {
	FilesRoot          *string           `hcl:"files_root,optional"`
	OutputDir          *string           `hcl:"output_dir,optional"`
	ConcurrentBrowsers *int              `hcl:"concurrent_browsers,optional"`
	TestTimeout        *string           `hcl:"test_timeout,optional"`
	FinishTimeout      *string           `hcl:"finish_timeout,optional"`
	Browsers           []string          `hcl:"browsers,optional"`
	DefaultHarness     *string           `hcl:"default_harness,optional"`
	BenignLogs         []string          `hcl:"benign_logs,optional"`
	MimeTypes          map[string]string `hcl:"mime_types,optional"`
	PathsToIgnore      []string          `hcl:"paths_to_ignore,optional"`
	ResultsDSN         *string           `hcl:"results_dsn,optional"`

	Profiles  []*hclProfile `hcl:"profile,block"`
	Harnesses []*hclHarness `hcl:"harness,block"`
	Groups    []*hclGroup   `hcl:"group,block"`
}

type hclProfile struct {
	Browser       string    `hcl:"browser,label"`
	ReducedMotion *string   `hcl:"reduced_motion,optional"`
	Preferences   cty.Value `hcl:"preferences,optional"`
}

type hclHarness struct {
	Name     string `hcl:"name,label"`
	Template string `hcl:"template"`
}

type hclGroup struct {
	Name     string   `hcl:"name,label"`
	Files    string   `hcl:"files"`
	Exclude  []string `hcl:"exclude,optional"`
	Browsers []string `hcl:"browsers,optional"`
	Harness  *string  `hcl:"harness,optional"`
}

// decodeHCL parses an HCL config and maps it onto the shared file shape
func decodeHCL(filename string, data []byte) (*fileConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclConfigFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	fc := &fileConfig{
		Browsers:      parsed.Browsers,
		BenignLogs:    parsed.BenignLogs,
		MimeTypes:     parsed.MimeTypes,
		PathsToIgnore: parsed.PathsToIgnore,
	}
	if parsed.FilesRoot != nil {
		fc.FilesRoot = *parsed.FilesRoot
	}
	if parsed.OutputDir != nil {
		fc.OutputDir = *parsed.OutputDir
	}
	if parsed.ConcurrentBrowsers != nil {
		fc.ConcurrentBrowsers = *parsed.ConcurrentBrowsers
	}
	if parsed.TestTimeout != nil {
		fc.TestTimeout = durationValue(*parsed.TestTimeout)
	}
	if parsed.FinishTimeout != nil {
		fc.FinishTimeout = durationValue(*parsed.FinishTimeout)
	}
	if parsed.DefaultHarness != nil {
		fc.DefaultHarness = *parsed.DefaultHarness
	}
	if parsed.ResultsDSN != nil {
		fc.ResultsDSN = *parsed.ResultsDSN
	}

	if len(parsed.Profiles) > 0 {
		fc.Profiles = make(map[string]profileConfig, len(parsed.Profiles))
	}
	for _, p := range parsed.Profiles {
		pc := profileConfig{}
		if p.ReducedMotion != nil {
			pc.ReducedMotion = *p.ReducedMotion
		}
		prefs, err := ctyToNative(p.Preferences)
		if err != nil {
			return nil, fmt.Errorf("profile %q preferences: %w", p.Browser, err)
		}
		if prefs != nil {
			m, ok := prefs.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("profile %q preferences must be an object", p.Browser)
			}
			pc.Preferences = m
		}
		fc.Profiles[p.Browser] = pc
	}

	if len(parsed.Harnesses) > 0 {
		fc.Harnesses = make(map[string]string, len(parsed.Harnesses))
	}
	for _, h := range parsed.Harnesses {
		fc.Harnesses[h.Name] = h.Template
	}

	if len(parsed.Groups) > 0 {
		fc.Groups = make([]GroupConfig, 0, len(parsed.Groups))
	}
	for _, g := range parsed.Groups {
		gc := GroupConfig{Name: g.Name, Files: g.Files, Exclude: g.Exclude, Browsers: g.Browsers}
		if g.Harness != nil {
			gc.Harness = *g.Harness
		}
		fc.Groups = append(fc.Groups, gc)
	}

	return fc, nil
}

// ctyToNative converts a cty value to plain Go values. Whole numbers become int
// so preference values look the same as when they come from YAML.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			var i int
			if err := gocty.FromCtyValue(v, &i); err == nil {
				return i, nil
			}
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, el := it.Element()
			n, err := ctyToNative(el)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, el := it.Element()
			n, err := ctyToNative(el)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			out[key.AsString()] = n
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
