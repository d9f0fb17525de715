package patch

import "strings"

// normalise strips whitespace so comparisons ignore indentation drift.
func normalise(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), "\t", ""), "\r", "")
}

func rebuildNorm(lines []string) []string {
	n := make([]string, len(lines))
	for i, l := range lines {
		n[i] = normalise(l)
	}
	return n
}

// findSubSlice returns the first index of needle inside haystack, both
// canonicalised, or -1 when absent.
func findSubSlice(hay, need []string) int {
Outer:
	for i := 0; i <= len(hay)-len(need); i++ {
		for j := range need {
			if hay[i+j] != need[j] {
				continue Outer
			}
		}
		return i
	}
	return -1
}

// findFirstMatch returns the first index in hay whose canonical form matches
// any element of targets, or -1 when none match.
func findFirstMatch(hay, targets []string) int {
	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[t] = struct{}{}
	}
	for i, h := range hay {
		if _, ok := set[h]; ok {
			return i
		}
	}
	return -1
}

// replaceSlice replaces lenOld lines of src starting at start with repl.
func replaceSlice(src []string, start, lenOld int, repl []string) []string {
	out := append([]string{}, src[:start]...)
	out = append(out, repl...)
	return append(out, src[start+lenOld:]...)
}

// applyUpdate applies an UpdateFile hunk to oldData and returns the new file
// as lines. Matching is whitespace-insensitive: an exact canonical match is
// preferred, otherwise the chunk is anchored on its first matching line. A
// chunk that cannot be located at all is skipped rather than guessed.
func (s *Session) applyUpdate(oldData []byte, h UpdateFile) []string {
	oldLines := strings.Split(strings.TrimRight(string(oldData), "\n"), "\n")
	normOld := rebuildNorm(oldLines)

	for _, chunk := range h.Chunks {
		normOldChunk := make([]string, len(chunk.OldLines))
		for i, l := range chunk.OldLines {
			normOldChunk[i] = normalise(l)
		}

		// exact canonical match
		if start := findSubSlice(normOld, normOldChunk); start >= 0 {
			oldLines = replaceSlice(oldLines, start, len(chunk.OldLines), chunk.NewLines)
			normOld = rebuildNorm(oldLines)
			continue
		}

		// fuzzy anchor on the first matching line
		if anchor := findFirstMatch(normOld, normOldChunk); anchor >= 0 {
			remove := make(map[string]struct{}, len(normOldChunk))
			for _, n := range normOldChunk {
				remove[n] = struct{}{}
			}

			var tmp []string
			for i, line := range oldLines {
				if _, drop := remove[normOld[i]]; drop {
					// insert the replacement once, at the anchor
					if i == anchor {
						tmp = append(tmp, chunk.NewLines...)
					}
					continue
				}
				tmp = append(tmp, line)
			}
			oldLines = tmp
			normOld = rebuildNorm(oldLines)
			continue
		}
	}

	return oldLines
}
