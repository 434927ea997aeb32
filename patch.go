package commitstack

import (
	"sort"
	"strings"
)

// BuildCommitPatch reconstructs a standalone unified diff containing only
// the hunks assigned to the given commit. Files appear in their original
// parse order and hunks within a file are sorted by OldStart, regardless of
// the order the plan listed them. The file header is emitted every time any
// of that file's hunks appear, so headers legitimately repeat across the
// per-commit patches of one plan.
func BuildCommitPatch(commit PlannedCommit, inv *Inventory, fileDiffs []FileDiff) string {
	hunksByFile := make(map[string][]Hunk)
	for _, hunkID := range commit.Hunks {
		h, ok := inv.ByID[hunkID]
		if !ok {
			continue
		}
		hunksByFile[h.FilePath] = append(hunksByFile[h.FilePath], h)
	}

	var patchLines []string
	for _, fd := range fileDiffs {
		hunks, ok := hunksByFile[fd.FilePath]
		if !ok {
			continue
		}

		patchLines = append(patchLines, fd.DiffHeaderLines...)

		sort.Slice(hunks, func(i, j int) bool {
			return hunks[i].OldStart < hunks[j].OldStart
		})
		for _, h := range hunks {
			patchLines = append(patchLines, h.Lines...)
		}
	}

	// The final hunk of a diff carries a trailing empty line from the
	// diff's own terminating newline; drop it so the patch ends with
	// exactly one newline, which git apply requires.
	for len(patchLines) > 0 && patchLines[len(patchLines)-1] == "" {
		patchLines = patchLines[:len(patchLines)-1]
	}
	return strings.Join(patchLines, "\n") + "\n"
}
