// Package unidiff parses unified diff output into hunks with stable,
// content-derived identities.
//
// The parser keeps every header and hunk line byte-for-byte, because the
// patch builder later reassembles per-commit patches from these pieces and
// git apply accepts nothing less than verbatim text. This rules out
// structured diff libraries, which normalize extended headers away.
package unidiff

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strconv"
	"strings"

	"commitstack"
)

// Compile-time interface verification.
var _ commitstack.Parser = (*Parser)(nil)

var (
	fileMarkerRe = regexp.MustCompile(`^diff --git a/(.*) b/(.*)$`)
	hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)
)

// Parser parses raw unified diff text.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse splits diff text into per-file diffs with identified hunks.
// Binary files and malformed hunk headers are absorbed into warnings so
// planning can proceed over whatever parsed cleanly.
func (p *Parser) Parse(diffText string) ([]commitstack.FileDiff, []string) {
	var files []commitstack.FileDiff
	var warnings []string

	if strings.TrimSpace(diffText) == "" {
		return files, warnings
	}

	hunkCounter := 0
	for _, block := range splitFileBlocks(diffText) {
		fd, ok := parseFileBlock(block, hunkCounter, &warnings)
		if !ok {
			continue
		}
		hunkCounter += len(fd.Hunks)
		files = append(files, fd)
	}

	return files, warnings
}

// splitFileBlocks splits the diff before each "diff --git" line so every
// block holds exactly one file's material.
func splitFileBlocks(diffText string) [][]string {
	var blocks [][]string
	var current []string

	for _, line := range strings.Split(diffText, "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			if current != nil {
				blocks = append(blocks, current)
			}
			current = []string{line}
			continue
		}
		if current != nil {
			current = append(current, line)
		}
	}
	if current != nil {
		blocks = append(blocks, current)
	}
	return blocks
}

func parseFileBlock(lines []string, hunkStartID int, warnings *[]string) (commitstack.FileDiff, bool) {
	m := fileMarkerRe.FindStringSubmatch(lines[0])
	if m == nil {
		return commitstack.FileDiff{}, false
	}
	oldPath, newPath := m[1], m[2]

	fd := commitstack.FileDiff{
		FilePath:  newPath,
		IsRenamed: oldPath != newPath,
	}
	if fd.IsRenamed {
		fd.OldPath = oldPath
	}

	hunkStartIdx := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "@@") {
			hunkStartIdx = i
			break
		}
		fd.DiffHeaderLines = append(fd.DiffHeaderLines, line)

		if strings.Contains(line, "GIT binary patch") || strings.Contains(line, "Binary files") {
			fd.IsBinary = true
			*warnings = append(*warnings, "binary file skipped: "+fd.FilePath)
			return fd, true
		}
		if strings.HasPrefix(line, "new file mode") {
			fd.IsNewFile = true
		}
		if strings.HasPrefix(line, "deleted file mode") {
			fd.IsDeletedFile = true
		}
	}

	// No hunks at all, e.g. a pure mode change.
	if hunkStartIdx == -1 {
		return fd, true
	}

	fd.Hunks = parseHunks(lines[hunkStartIdx:], fd.FilePath, hunkStartID)
	return fd, true
}

// parseHunks accumulates lines into hunks, starting a new accumulator at
// every @@ header. Headers that fail the unified-diff grammar drop their
// hunk silently; its content cannot be faithfully reassembled anyway.
func parseHunks(lines []string, filePath string, startID int) []commitstack.Hunk {
	var hunks []commitstack.Hunk
	var current []string
	header := ""
	nextID := startID

	flush := func() {
		if header == "" {
			return
		}
		if h, ok := newHunk(nextID, filePath, header, current); ok {
			hunks = append(hunks, h)
			nextID++
		}
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "@@") {
			flush()
			header = line
			current = []string{line}
		} else if header != "" {
			current = append(current, line)
		}
	}
	flush()

	return hunks
}

func newHunk(seq int, filePath, header string, lines []string) (commitstack.Hunk, bool) {
	m := hunkHeaderRe.FindStringSubmatch(header)
	if m == nil {
		return commitstack.Hunk{}, false
	}

	// Lengths default to 1 when omitted, per unified-diff convention.
	atoiOr1 := func(s string) int {
		if s == "" {
			return 1
		}
		n, _ := strconv.Atoi(s)
		return n
	}

	owned := make([]string, len(lines))
	copy(owned, lines)

	return commitstack.Hunk{
		ID:       hunkID(seq, owned),
		FilePath: filePath,
		Header:   header,
		OldStart: atoi(m[1]),
		OldLen:   atoiOr1(m[2]),
		NewStart: atoi(m[3]),
		NewLen:   atoiOr1(m[4]),
		Lines:    owned,
	}, true
}

// hunkID derives a stable identifier from the hunk's position and content:
// a 1-based counter across the whole diff plus a short FNV-1a hash of the
// raw lines. Re-parsing the same diff yields identical IDs; differing
// content cannot collide on the same counter.
func hunkID(seq int, lines []string) string {
	h := fnv.New32a()
	for _, line := range lines {
		h.Write([]byte(line))
	}
	sum := fmt.Sprintf("%08x", h.Sum32())
	return fmt.Sprintf("H%d_%s", seq+1, sum[:6])
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
