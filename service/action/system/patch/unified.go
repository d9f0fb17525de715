package patch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	sgdiff "github.com/sourcegraph/go-diff/diff"
)

// ApplyUnified applies a unified diff (git style, a/ b/ prefixes) through the
// session. New files, deletions, renames and in-place edits all go through
// the tracked session operations so they roll back with everything else.
func (s *Session) ApplyUnified(ctx context.Context, patchText string) error {
	fileDiffs, err := sgdiff.ParseMultiFileDiff([]byte(patchText))
	if err != nil {
		return fmt.Errorf("parse patch: %w", err)
	}
	for _, fd := range fileDiffs {
		orig := strings.TrimPrefix(fd.OrigName, "a/")
		newer := strings.TrimPrefix(fd.NewName, "b/")

		switch {
		case fd.OrigName == "/dev/null" && fd.NewName != "/dev/null":
			var buf bytes.Buffer
			if err := applyHunks(nil, fd.Hunks, &buf); err != nil {
				return err
			}
			if err := s.Add(ctx, newer, buf.Bytes()); err != nil {
				return err
			}
		case fd.NewName == "/dev/null" && fd.OrigName != "/dev/null":
			if err := s.Delete(ctx, orig); err != nil {
				return err
			}
		case orig != newer && len(fd.Hunks) == 0:
			if err := s.Move(ctx, orig, newer); err != nil {
				return err
			}
		default:
			oldData, err := s.fs.DownloadWithURL(ctx, orig)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := applyHunks(oldData, fd.Hunks, &buf); err != nil {
				return err
			}
			target := orig
			if orig != newer {
				if err := s.Move(ctx, orig, newer); err != nil {
					return err
				}
				target = newer
			}
			if err := s.Update(ctx, target, buf.Bytes()); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyHunks applies diff hunks to oldData and writes the patched content to
// w. The original lines are walked sequentially and every context and delete
// line is verified, so a stale patch aborts instead of corrupting the file.
func applyHunks(oldData []byte, hunks []*sgdiff.Hunk, w io.Writer) error {
	oldLines := strings.SplitAfter(string(oldData), "\n")
	origIdx := 0

	// SplitAfter leaves a trailing empty element where the diff encodes the
	// final newline as a "\n" context line.
	linesEqual := func(a, b string) bool {
		if a == b {
			return true
		}
		if (a == "" && b == "\n") || (a == "\n" && b == "") {
			return true
		}
		return false
	}

	for _, h := range hunks {
		// copy untouched lines before the hunk, OrigStartLine is 1-based
		targetIdx := int(h.OrigStartLine) - 1
		for origIdx < targetIdx && origIdx < len(oldLines) {
			if _, err := io.WriteString(w, oldLines[origIdx]); err != nil {
				return err
			}
			origIdx++
		}

		for _, hl := range strings.SplitAfter(string(h.Body), "\n") {
			if hl == "" {
				continue
			}
			tag := hl[0]
			line := hl[1:]

			switch tag {
			case ' ': // context, must match and copy through
				if origIdx >= len(oldLines) || !linesEqual(oldLines[origIdx], line) {
					return fmt.Errorf("patch failed: context mismatch at original line %d", origIdx+1)
				}
				// the implicit newline terminating the file was already
				// emitted with the previous line
				if !(oldLines[origIdx] == "" && line == "\n") {
					if _, err := io.WriteString(w, line); err != nil {
						return err
					}
				}
				origIdx++

			case '-': // deletion, must match, not copied
				if origIdx >= len(oldLines) || !linesEqual(oldLines[origIdx], line) {
					return fmt.Errorf("patch failed: delete mismatch at original line %d", origIdx+1)
				}
				origIdx++

			case '+': // addition, written without advancing the original
				if _, err := io.WriteString(w, line); err != nil {
					return err
				}

			case '\\': // "\ No newline at end of file"
				continue

			default:
				return fmt.Errorf("patch failed: unexpected hunk tag %q", tag)
			}
		}
	}

	for origIdx < len(oldLines) {
		if _, err := io.WriteString(w, oldLines[origIdx]); err != nil {
			return err
		}
		origIdx++
	}
	return nil
}
