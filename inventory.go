package commitstack

import (
	"fmt"
	"strings"
)

// Inventory maps hunk IDs to hunks. It is the ground truth a proposed plan
// is validated against. Order holds the IDs in assignment order, since map
// iteration would discard it.
type Inventory struct {
	ByID  map[string]Hunk
	Order []string
}

// BuildInventory flattens all non-binary file diffs into an ID-keyed table.
func BuildInventory(fileDiffs []FileDiff) *Inventory {
	inv := &Inventory{ByID: make(map[string]Hunk)}
	for _, fd := range fileDiffs {
		for _, h := range fd.Hunks {
			if _, ok := inv.ByID[h.ID]; !ok {
				inv.Order = append(inv.Order, h.ID)
			}
			inv.ByID[h.ID] = h
		}
	}
	return inv
}

// Len returns the number of hunks in the inventory.
func (inv *Inventory) Len() int { return len(inv.ByID) }

// Snippet returns up to maxLines changed (added/removed) lines of the hunk,
// with a trailing count of omitted lines when truncated. Content is never
// paraphrased or reordered; this is the model's only view of the change.
func (h Hunk) Snippet(maxLines int) string {
	var content []string
	for _, ln := range h.Lines {
		if strings.HasPrefix(ln, "+++") || strings.HasPrefix(ln, "---") {
			continue
		}
		if strings.HasPrefix(ln, "+") || strings.HasPrefix(ln, "-") {
			content = append(content, ln)
		}
	}
	if len(content) <= maxLines {
		return strings.Join(content, "\n")
	}
	return strings.Join(content[:maxLines], "\n") +
		fmt.Sprintf("\n... (%d more lines)", len(content)-maxLines)
}

// FormatForPrompt renders every non-binary file and its hunks as the
// inventory section of the compose prompt: path, new/deleted/renamed
// annotation, then each hunk's ID, header and snippet.
func FormatForPrompt(fileDiffs []FileDiff, maxSnippetLines int) string {
	var sb strings.Builder
	sb.WriteString("[HUNK INVENTORY]")

	for _, fd := range fileDiffs {
		if fd.IsBinary {
			continue
		}

		fmt.Fprintf(&sb, "\n\nFile: %s", fd.FilePath)
		switch {
		case fd.IsNewFile:
			sb.WriteString("\n  (new file)")
		case fd.IsDeletedFile:
			sb.WriteString("\n  (deleted file)")
		case fd.IsRenamed:
			fmt.Fprintf(&sb, "\n  (renamed from %s)", fd.OldPath)
		}

		for _, h := range fd.Hunks {
			fmt.Fprintf(&sb, "\n\n  Hunk %s:\n    %s", h.ID, h.Header)
			for _, ln := range strings.Split(h.Snippet(maxSnippetLines), "\n") {
				sb.WriteString("\n    ")
				sb.WriteString(ln)
			}
		}
	}

	return sb.String()
}
