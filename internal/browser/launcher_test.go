package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wtp/internal/domain"
)

type stubLauncher struct {
	name     domain.BrowserTarget
	closed   bool
	closeErr error
}

func (s *stubLauncher) Name() domain.BrowserTarget { return s.name }

func (s *stubLauncher) Run(ctx context.Context, visit Visit) (Outcome, error) {
	return Outcome{}, nil
}

func (s *stubLauncher) Close() error {
	s.closed = true
	return s.closeErr
}

func TestRegistry(t *testing.T) {
	chromium := &stubLauncher{name: domain.Chromium}
	webkit := &stubLauncher{name: domain.WebKit, closeErr: errors.New("already gone")}
	reg := NewRegistry(chromium, webkit)

	t.Run("returns registered launcher", func(t *testing.T) {
		l, err := reg.Get(domain.Chromium)
		require.NoError(t, err)
		assert.Same(t, chromium, l)
	})

	t.Run("unknown engine is unsupported", func(t *testing.T) {
		_, err := reg.Get(domain.Firefox)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedBrowser)
		assert.Contains(t, err.Error(), "firefox")
	})

	t.Run("close reaches every launcher", func(t *testing.T) {
		err := reg.Close()
		assert.EqualError(t, err, "already gone")
		assert.True(t, chromium.closed)
		assert.True(t, webkit.closed)
	})
}

func TestChromium_CloseBeforeStart(t *testing.T) {
	c := NewChromium(DefaultChromiumConfig())
	assert.Equal(t, domain.Chromium, c.Name())
	assert.NoError(t, c.Close())
}
