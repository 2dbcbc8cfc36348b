package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"wtp/internal/domain"
)

const (
	doneCheck     = `() => window.__wtpDone === true`
	failuresQuery = `() => (window.__wtpFailures || []).map(String)`
)

// ChromiumConfig configures the Chromium launch
type ChromiumConfig struct {
	Headless bool
	Bin      string // empty lets rod find or download a browser
}

// DefaultChromiumConfig returns headless defaults
func DefaultChromiumConfig() ChromiumConfig {
	return ChromiumConfig{Headless: true}
}

// Chromium drives a single headless Chromium through rod. The process is
// started on first use and every visit gets its own incognito context.
type Chromium struct {
	cfg ChromiumConfig

	once    sync.Once
	browser *rod.Browser
	err     error
}

// NewChromium creates a lazily started Chromium launcher
func NewChromium(cfg ChromiumConfig) *Chromium {
	return &Chromium{cfg: cfg}
}

func (c *Chromium) Name() domain.BrowserTarget {
	return domain.Chromium
}

func (c *Chromium) start() (*rod.Browser, error) {
	c.once.Do(func() {
		l := launcher.New().
			Headless(c.cfg.Headless).
			Set("no-sandbox").
			Set("disable-gpu")
		if c.cfg.Bin != "" {
			l = l.Bin(c.cfg.Bin)
		}

		url, err := l.Launch()
		if err != nil {
			c.err = fmt.Errorf("failed to launch Chromium: %w", err)
			return
		}

		b := rod.New().ControlURL(url)
		if err := b.Connect(); err != nil {
			c.err = fmt.Errorf("failed to connect to Chromium: %w", err)
			return
		}
		c.browser = b
	})
	return c.browser, c.err
}

// Run loads the visit URL in a fresh incognito context and waits for the
// test module to settle or ctx to expire.
func (c *Chromium) Run(ctx context.Context, visit Visit) (Outcome, error) {
	b, err := c.start()
	if err != nil {
		return Outcome{}, err
	}

	incognito, err := b.Incognito()
	if err != nil {
		return Outcome{}, fmt.Errorf("create browser context: %w", err)
	}
	defer incognito.Close()

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return Outcome{}, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := applyProfile(page, visit.Profile); err != nil {
		return Outcome{}, err
	}

	var mu sync.Mutex
	var out Outcome
	go page.EachEvent(func(e *proto.RuntimeConsoleAPICalled) {
		args := make([]string, 0, len(e.Args))
		for _, a := range e.Args {
			args = append(args, consoleArg(a))
		}
		mu.Lock()
		out.Logs = append(out.Logs, args)
		mu.Unlock()
	})()

	if err := page.Navigate(visit.URL); err != nil {
		return Outcome{}, fmt.Errorf("failed to navigate to %s: %w", visit.URL, err)
	}
	if err := page.Wait(rod.Eval(doneCheck)); err != nil {
		return snapshot(&mu, &out), fmt.Errorf("wait for test module: %w", err)
	}

	res, err := page.Eval(failuresQuery)
	if err != nil {
		return snapshot(&mu, &out), fmt.Errorf("read failures: %w", err)
	}
	for _, f := range res.Value.Arr() {
		out.Failures = append(out.Failures, f.Str())
	}
	return snapshot(&mu, &out), nil
}

// snapshot copies out while console events may still be arriving
func snapshot(mu *sync.Mutex, out *Outcome) Outcome {
	mu.Lock()
	defer mu.Unlock()
	return Outcome{
		Failures: append([]string(nil), out.Failures...),
		Logs:     append([][]string(nil), out.Logs...),
	}
}

// Close cleans up browser resources
func (c *Chromium) Close() error {
	if c.browser != nil {
		return c.browser.Close()
	}
	return nil
}

// applyProfile maps the launch profile onto CDP emulation. Chromium has no
// user-preference store reachable over CDP, so Preferences are not applied.
func applyProfile(page *rod.Page, profile domain.LaunchProfile) error {
	if profile.ReducedMotion == "" {
		return nil
	}
	err := proto.EmulationSetEmulatedMedia{
		Features: []*proto.EmulationMediaFeature{
			{Name: "prefers-reduced-motion", Value: profile.ReducedMotion},
		},
	}.Call(page)
	if err != nil {
		return fmt.Errorf("emulate reduced motion: %w", err)
	}
	return nil
}

func consoleArg(a *proto.RuntimeRemoteObject) string {
	if a.Type == proto.RuntimeRemoteObjectTypeString {
		return a.Value.Str()
	}
	if a.Description != "" {
		return a.Description
	}
	return a.Value.String()
}
