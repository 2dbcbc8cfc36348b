package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanner_Scan(t *testing.T) {
	tmpDir := t.TempDir()

	// Create test files
	testFiles := []string{
		"lib/menu/menu.test.js",
		"lib/button/button.test.js",
		"lib/button/button.a11y.test.js",
		"lib/node_modules/dep/index.test.js",
		"lib/.cache/stale.test.js",
		"lib/dist/bundle.js",
		"README.md",
	}
	for _, file := range testFiles {
		fullPath := filepath.Join(tmpDir, file)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, os.WriteFile(fullPath, []byte("test"), 0644))
	}

	scanner := NewScanner(tmpDir, []string{"node_modules", "dist"})

	t.Run("scans files relative to the project, sorted", func(t *testing.T) {
		results, err := scanner.Scan(filepath.Join(tmpDir, "lib"))
		require.NoError(t, err)
		assert.Equal(t, []string{
			"lib/button/button.a11y.test.js",
			"lib/button/button.test.js",
			"lib/menu/menu.test.js",
		}, results)
	})

	t.Run("project root includes top-level files", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		require.NoError(t, err)
		assert.Contains(t, results, "README.md")
		assert.Len(t, results, 4)
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		_, err := scanner.Scan("/non/existent/path")
		assert.Error(t, err)
	})

	t.Run("returns error for file instead of directory", func(t *testing.T) {
		_, err := scanner.Scan(filepath.Join(tmpDir, "README.md"))
		assert.Error(t, err)
	})
}
