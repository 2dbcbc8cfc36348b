package plan

import (
	"fmt"
	"strings"

	"wtp/internal/domain"
)

// Overlap is a file selected by more than one group
type Overlap struct {
	File   string
	Groups []string // in group order; the first one owns the file
}

func (o Overlap) String() string {
	return fmt.Sprintf("%s matched by %s", o.File, strings.Join(o.Groups, ", "))
}

// Overlaps lists files whose groups are not disjoint, in file order
func Overlaps(groups []domain.TestGroup, files []string) ([]Overlap, error) {
	if err := validateGroups(groups); err != nil {
		return nil, err
	}

	owners := make(map[string][]string, len(files))
	for _, g := range groups {
		matched, err := matchGroup(g, files)
		if err != nil {
			return nil, err
		}
		for _, f := range matched {
			owners[f] = append(owners[f], g.Name)
		}
	}

	var out []Overlap
	for _, f := range files {
		if gs := owners[f]; len(gs) > 1 {
			out = append(out, Overlap{File: f, Groups: gs})
			delete(owners, f)
		}
	}
	return out, nil
}

// OverlapError turns overlaps into a ConfigurationError naming the later group
func OverlapError(overlaps []Overlap) error {
	if len(overlaps) == 0 {
		return nil
	}
	o := overlaps[0]
	return configError(o.Groups[len(o.Groups)-1], fmt.Sprintf("pattern overlaps group %q on %s (%d overlapping file(s))", o.Groups[0], o.File, len(overlaps)), nil)
}
