//go:build e2e

package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wtp/internal/domain"
)

const e2ePage = `<!DOCTYPE html><html><body><script>
console.log("hello", 42);
window.__wtpFailures = ["boom"];
window.__wtpReducedMotion = matchMedia("(prefers-reduced-motion: reduce)").matches;
if (!window.__wtpReducedMotion) { window.__wtpFailures.push("motion not reduced"); }
window.__wtpDone = true;
</script></body></html>`

func TestChromium_Run(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(e2ePage))
	}))
	defer srv.Close()

	c := NewChromium(DefaultChromiumConfig())
	defer func() {
		if err := c.Close(); err != nil {
			t.Errorf("browser close error: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := c.Run(ctx, Visit{URL: srv.URL, Profile: domain.LaunchProfile{ReducedMotion: "reduce"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"boom"}, out.Failures)
	require.NotEmpty(t, out.Logs)
	assert.Equal(t, []string{"hello", "42"}, out.Logs[0])
}

func TestPlaywright_Run(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(e2ePage))
	}))
	defer srv.Close()

	for _, l := range []*Playwright{NewFirefox(DefaultPlaywrightConfig()), NewWebKit(DefaultPlaywrightConfig())} {
		t.Run(string(l.Name()), func(t *testing.T) {
			defer func() {
				if err := l.Close(); err != nil {
					t.Errorf("browser close error: %v", err)
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			out, err := l.Run(ctx, Visit{URL: srv.URL, Profile: domain.LaunchProfile{
				ReducedMotion: "reduce",
				Preferences:   map[string]any{"ui.primaryPointerCapabilities": 6},
			}})
			require.NoError(t, err)
			assert.Equal(t, []string{"boom"}, out.Failures)
			require.NotEmpty(t, out.Logs)
			assert.Equal(t, []string{"hello 42"}, out.Logs[0])
		})
	}
}
