package audit

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/SkylineCommunications/idpcheck/internal/core"
)

// Comparison is the line diff between the same audit file of two runs.
type Comparison struct {
	From  string
	To    string
	Diff  string
	Stats core.DiffStats
}

// Changed reports whether the two files differ.
func (c Comparison) Changed() bool {
	return c.Stats.Added > 0 || c.Stats.Removed > 0
}

// DiffFiles compares two audit files. An empty path or a file that was never
// written (no fix list for a clean run) counts as empty content.
func DiffFiles(fsys core.FileSystem, from, to string) (Comparison, error) {
	a, err := readOptional(fsys, from)
	if err != nil {
		return Comparison{}, err
	}
	b, err := readOptional(fsys, to)
	if err != nil {
		return Comparison{}, err
	}
	diff, stats := core.GenerateDiff(a, b)
	return Comparison{From: from, To: to, Diff: diff, Stats: stats}, nil
}

func readOptional(fsys core.FileSystem, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := fsys.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("could not read %s: %w", path, err)
	}
	return string(data), nil
}
