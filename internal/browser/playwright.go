package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"wtp/internal/domain"
)

// PlaywrightConfig configures the Firefox and WebKit launchers
type PlaywrightConfig struct {
	Headless bool
	Install  bool // install the driver and the engine on first use if missing
}

// DefaultPlaywrightConfig returns headless defaults that install the engine when needed
func DefaultPlaywrightConfig() PlaywrightConfig {
	return PlaywrightConfig{Headless: true, Install: true}
}

// Playwright drives Firefox or WebKit through playwright-go. The engine is
// launched on first use with that visit's profile; every visit gets its own
// browser context.
type Playwright struct {
	engine domain.BrowserTarget
	cfg    PlaywrightConfig

	once    sync.Once
	pw      *playwright.Playwright
	browser playwright.Browser
	err     error
}

// NewFirefox creates a lazily started Firefox launcher
func NewFirefox(cfg PlaywrightConfig) *Playwright {
	return &Playwright{engine: domain.Firefox, cfg: cfg}
}

// NewWebKit creates a lazily started WebKit launcher
func NewWebKit(cfg PlaywrightConfig) *Playwright {
	return &Playwright{engine: domain.WebKit, cfg: cfg}
}

func (p *Playwright) Name() domain.BrowserTarget {
	return p.engine
}

func (p *Playwright) start(profile domain.LaunchProfile) (playwright.Browser, error) {
	p.once.Do(func() {
		if p.cfg.Install {
			if err := playwright.Install(&playwright.RunOptions{Browsers: []string{string(p.engine)}}); err != nil {
				p.err = fmt.Errorf("failed to install %s: %w", p.engine, err)
				return
			}
		}

		pw, err := playwright.Run()
		if err != nil {
			p.err = fmt.Errorf("failed to start playwright: %w", err)
			return
		}
		p.pw = pw

		bt := pw.WebKit
		if p.engine == domain.Firefox {
			bt = pw.Firefox
		}
		b, err := bt.Launch(launchOptions(p.engine, p.cfg, profile))
		if err != nil {
			p.err = fmt.Errorf("failed to launch %s: %w", p.engine, err)
			return
		}
		p.browser = b
	})
	return p.browser, p.err
}

// Run loads the visit URL in a fresh browser context and waits for the
// test module to settle or ctx to expire.
func (p *Playwright) Run(ctx context.Context, visit Visit) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	b, err := p.start(visit.Profile)
	if err != nil {
		return Outcome{}, err
	}

	bctx, err := b.NewContext(contextOptions(visit.Profile))
	if err != nil {
		return Outcome{}, fmt.Errorf("create browser context: %w", err)
	}
	defer bctx.Close()
	// closing the context aborts whatever call is pending when ctx ends
	stop := context.AfterFunc(ctx, func() { _ = bctx.Close() })
	defer stop()

	page, err := bctx.NewPage()
	if err != nil {
		return Outcome{}, fmt.Errorf("open page: %w", err)
	}

	var mu sync.Mutex
	var out Outcome
	page.OnConsole(func(m playwright.ConsoleMessage) {
		mu.Lock()
		out.Logs = append(out.Logs, []string{m.Text()})
		mu.Unlock()
	})

	timeout := waitTimeout(ctx)
	if _, err := page.Goto(visit.URL, playwright.PageGotoOptions{Timeout: timeout}); err != nil {
		return snapshot(&mu, &out), fmt.Errorf("failed to navigate to %s: %w", visit.URL, err)
	}
	if _, err := page.WaitForFunction(doneCheck, nil, playwright.PageWaitForFunctionOptions{Timeout: timeout}); err != nil {
		return snapshot(&mu, &out), fmt.Errorf("wait for test module: %w", err)
	}

	res, err := page.Evaluate(failuresQuery)
	if err != nil {
		return snapshot(&mu, &out), fmt.Errorf("read failures: %w", err)
	}
	if list, ok := res.([]interface{}); ok {
		for _, f := range list {
			out.Failures = append(out.Failures, fmt.Sprint(f))
		}
	}
	return snapshot(&mu, &out), nil
}

// Close stops the engine and the playwright driver
func (p *Playwright) Close() error {
	var first error
	if p.browser != nil {
		first = p.browser.Close()
	}
	if p.pw != nil {
		if err := p.pw.Stop(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// launchOptions applies Preferences as Firefox user prefs; WebKit has no preference store
func launchOptions(engine domain.BrowserTarget, cfg PlaywrightConfig, profile domain.LaunchProfile) playwright.BrowserTypeLaunchOptions {
	opts := playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(cfg.Headless)}
	if engine == domain.Firefox && len(profile.Preferences) > 0 {
		prefs := make(map[string]interface{}, len(profile.Preferences))
		for k, v := range profile.Preferences {
			prefs[k] = v
		}
		opts.FirefoxUserPrefs = prefs
	}
	return opts
}

func contextOptions(profile domain.LaunchProfile) playwright.BrowserNewContextOptions {
	var opts playwright.BrowserNewContextOptions
	switch profile.ReducedMotion {
	case "reduce":
		opts.ReducedMotion = playwright.ReducedMotionReduce
	case "no-preference":
		opts.ReducedMotion = playwright.ReducedMotionNoPreference
	}
	return opts
}

// waitTimeout converts ctx's deadline to playwright milliseconds; 0 disables the timeout
func waitTimeout(ctx context.Context) *float64 {
	deadline, ok := ctx.Deadline()
	if !ok {
		return playwright.Float(0)
	}
	ms := float64(time.Until(deadline).Milliseconds())
	if ms < 1 {
		ms = 1
	}
	return playwright.Float(ms)
}
