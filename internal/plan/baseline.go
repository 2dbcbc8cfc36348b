package plan

import (
	"path"

	"wtp/internal/domain"
)

// BaselineName returns where the visual baseline for a screenshot lives.
// Screenshots use the .ico extension so large-file filters on hosting providers skip them.
func BaselineName(browser domain.BrowserTarget, name string) string {
	return path.Join(string(browser), "baseline", name+".ico")
}
