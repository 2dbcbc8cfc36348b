package config

import (
	"time"

	"wtp/internal/domain"
)

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultConfigFile is looked up in the project path when --config is not given
	DefaultConfigFile = "wtp.yaml"
	// DefaultFilesRoot is where test discovery starts, relative to the project path
	DefaultFilesRoot = "lib"
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultConcurrentBrowsers is the default number of browser pages in flight
	DefaultConcurrentBrowsers = 3
	// DefaultTestTimeout bounds a single unit
	DefaultTestTimeout = 10 * time.Second
	// DefaultFinishTimeout bounds the whole run
	DefaultFinishTimeout = 5 * time.Minute
	// DefaultHarnessName is the harness used by groups without an override
	DefaultHarnessName = "default"
	// NoAnimationsHarnessName disables CSS animations, transitions and the caret
	NoAnimationsHarnessName = "no-animations"
)

// DefaultPathsToIgnore are the directories skipped when scanning for tests
var DefaultPathsToIgnore = []string{
	"node_modules",
	"dist",
	"coverage",
	"storage",
}

// DefaultBenignLogs are browser log lines that never indicate a failure
var DefaultBenignLogs = []string{
	"Lit is in dev mode. Not recommended for production! See https://lit.dev/msg/dev-mode for more information.",
}

// DefaultMimeTypes forces the served content type for matching files
var DefaultMimeTypes = map[string]string{
	"**/*.less": "js",
}

const defaultHarnessTemplate = `<!DOCTYPE html><html>
    <body>
        <script type="module" src="{{.Framework}}"></script>
    </body>
</html>`

const noAnimationsHarnessTemplate = `<!DOCTYPE html><html>
    <body>
        <style>
            *,
            *::before,
            *::after {
                -moz-animation: none !important;
                -moz-transition: none !important;
                animation: none !important;
                caret-color: transparent !important;
                transition: none !important;
            }
        </style>
        <script type="module" src="{{.Framework}}"></script>
    </body>
</html>`

// firefoxPointerCapabilities enables coarse and fine pointer (0x02 | 0x04) on headless GTK
const firefoxPointerCapabilities = 0x02 | 0x04

func defaultHarnesses() map[string]domain.Harness {
	return map[string]domain.Harness{
		DefaultHarnessName:      {Name: DefaultHarnessName, Template: defaultHarnessTemplate},
		NoAnimationsHarnessName: {Name: NoAnimationsHarnessName, Template: noAnimationsHarnessTemplate},
	}
}

func defaultProfiles() map[domain.BrowserTarget]domain.LaunchProfile {
	return map[domain.BrowserTarget]domain.LaunchProfile{
		domain.Chromium: {ReducedMotion: "reduce"},
		domain.Firefox: {
			ReducedMotion: "reduce",
			Preferences: map[string]any{
				"ui.primaryPointerCapabilities": firefoxPointerCapabilities,
				"ui.allPointerCapabilities":     firefoxPointerCapabilities,
			},
		},
		domain.WebKit: {ReducedMotion: "reduce"},
	}
}

// defaultGroups mirrors the usual component-library layout: accessibility checks
// in chromium only, visual tests with a still page, everything else everywhere.
func defaultGroups() []GroupConfig {
	return []GroupConfig{
		{
			Name:     "a11y",
			Files:    "lib/**/*.a11y.test.js",
			Browsers: []string{string(domain.Chromium)},
			Harness:  NoAnimationsHarnessName,
		},
		{
			Name:    "unit",
			Files:   "lib/**/*.test.js",
			Exclude: []string{"lib/**/*.visual.test.js", "lib/**/*.a11y.test.js", "lib/**/*.less.test.js"},
		},
		{
			Name:    "visual",
			Files:   "lib/**/*.visual.test.js",
			Harness: NoAnimationsHarnessName,
		},
	}
}
