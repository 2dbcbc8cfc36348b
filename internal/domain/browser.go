package domain

// BrowserTarget identifies one browser engine tests run in
type BrowserTarget string

const (
	Chromium BrowserTarget = "chromium"
	Firefox  BrowserTarget = "firefox"
	WebKit   BrowserTarget = "webkit"
)

// AllBrowsers lists every engine wtp knows how to name, in launch order
var AllBrowsers = []BrowserTarget{Chromium, Firefox, WebKit}

// Valid reports whether b is one of the known engines
func (b BrowserTarget) Valid() bool {
	switch b {
	case Chromium, Firefox, WebKit:
		return true
	}
	return false
}

func (b BrowserTarget) String() string {
	return string(b)
}

// LaunchProfile is applied by a launcher when it creates the browser context for a unit.
// Preferences are engine specific (e.g. Firefox user prefs) and ignored by engines that
// have no such concept.
type LaunchProfile struct {
	ReducedMotion string         `json:"reduced_motion,omitempty" yaml:"reduced_motion,omitempty"`
	Preferences   map[string]any `json:"preferences,omitempty" yaml:"preferences,omitempty"`
}
