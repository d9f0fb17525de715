package patch

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffStats counts added and removed lines in a unified diff.
type DiffStats struct {
	Added   int // lines starting with '+' (excluding +++)
	Removed int // lines starting with '-' (excluding ---)
}

// GenerateDiff produces a GNU unified diff between old and new file content
// along with line statistics. Identical inputs yield an empty diff.
func GenerateDiff(oldContent, newContent []byte, filePath string, contextLines int) (string, DiffStats, error) {
	if contextLines <= 0 {
		contextLines = 3
	}
	if string(oldContent) == string(newContent) {
		return "", DiffStats{}, nil
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(oldContent)),
		B:        difflib.SplitLines(string(newContent)),
		FromFile: filePath + " (original)",
		ToFile:   filePath + " (modified)",
		Context:  contextLines,
	}
	patch, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", DiffStats{}, err
	}

	var stats DiffStats
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			stats.Added++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			stats.Removed++
		}
	}
	return patch, stats, nil
}
