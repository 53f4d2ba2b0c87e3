package core

import (
	"bytes"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffStats counts changed lines of a GenerateDiff result.
type DiffStats struct {
	Added   int
	Removed int
}

// GenerateDiff produces a line based diff between previous and current
// content. Lines are prefixed with "+ ", "- " or two spaces for context.
func GenerateDiff(previous, current string) (string, DiffStats) {
	dmp := diffmatchpatch.New()

	a, b, c := dmp.DiffLinesToChars(previous, current)
	diffs := dmp.DiffMain(a, b, false)
	result := dmp.DiffCharsToLines(diffs, c)

	var buff bytes.Buffer
	var stats DiffStats
	for _, diff := range result {
		prefix := "  "
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.Split(diff.Text, "\n") {
			line = strings.TrimSuffix(line, "\r")
			if line == "" {
				continue
			}
			switch diff.Type {
			case diffmatchpatch.DiffInsert:
				stats.Added++
			case diffmatchpatch.DiffDelete:
				stats.Removed++
			}
			buff.WriteString(prefix + line + "\n")
		}
	}
	return buff.String(), stats
}
