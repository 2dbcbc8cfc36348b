package domain

// Harness is the host document a test file executes inside.
// Template is an html/template body; it receives {{.Framework}}, the URL of the
// bootstrap module that loads the test file.
type Harness struct {
	Name     string `json:"name"`
	Template string `json:"-"`
}

// TestGroup is a named, pattern-selected partition of the suite
type TestGroup struct {
	Name     string          // unique within a configuration
	Files    string          // doublestar glob, relative to the project root
	Exclude  []string        // globs removed from Files matches
	Browsers []BrowserTarget // nil or empty means the default browser set
	Harness  *Harness        // nil means the default harness
}
