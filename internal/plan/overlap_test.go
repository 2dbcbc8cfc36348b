package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wtp/internal/domain"
)

func TestOverlaps(t *testing.T) {
	groups := []domain.TestGroup{
		{Name: "a11y", Files: "*.a11y.test"},
		{Name: "unit", Files: "*.test"},
	}

	t.Run("reports files claimed by several groups", func(t *testing.T) {
		overlaps, err := Overlaps(groups, []string{"x.a11y.test", "y.test"})
		require.NoError(t, err)
		require.Len(t, overlaps, 1)
		assert.Equal(t, "x.a11y.test", overlaps[0].File)
		assert.Equal(t, []string{"a11y", "unit"}, overlaps[0].Groups)
		assert.Equal(t, "x.a11y.test matched by a11y, unit", overlaps[0].String())

		err = OverlapError(overlaps)
		var ce *ConfigurationError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "unit", ce.Group)
	})

	t.Run("exclude makes groups disjoint", func(t *testing.T) {
		disjoint := []domain.TestGroup{
			groups[0],
			{Name: "unit", Files: "*.test", Exclude: []string{"*.a11y.test"}},
		}
		overlaps, err := Overlaps(disjoint, []string{"x.a11y.test", "y.test"})
		require.NoError(t, err)
		assert.Empty(t, overlaps)
		assert.NoError(t, OverlapError(overlaps))
	})

	t.Run("invalid group is a configuration error", func(t *testing.T) {
		_, err := Overlaps([]domain.TestGroup{{Name: "bad", Files: "[x-"}}, []string{"a"})
		assert.True(t, IsConfigurationError(err))
	})
}

func TestBaselineName(t *testing.T) {
	assert.Equal(t, "chromium/baseline/button-primary.ico", BaselineName(domain.Chromium, "button-primary"))
	assert.Equal(t, "webkit/baseline/menu/open.ico", BaselineName(domain.WebKit, "menu/open"))
}
