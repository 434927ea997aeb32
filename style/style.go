// Package style renders structured commit data into textual message styles.
package style

import (
	"fmt"
	"regexp"
	"strings"

	"commitstack"
)

// Profile selects a commit message style.
type Profile string

// Available style profiles.
const (
	Default      Profile = "default"
	Blueprint    Profile = "blueprint"
	Conventional Profile = "conventional"
	Ticket       Profile = "ticket"
	Kernel       Profile = "kernel"
)

// ParseProfile returns the profile named by s, or Default for anything
// unrecognized.
func ParseProfile(s string) Profile {
	switch Profile(s) {
	case Blueprint, Conventional, Ticket, Kernel:
		return Profile(s)
	default:
		return Default
	}
}

// conventionalTypes are the commit types the conventional renderer accepts.
var conventionalTypes = map[string]bool{
	"feat": true, "fix": true, "docs": true, "refactor": true, "perf": true,
	"test": true, "build": true, "ci": true, "chore": true, "style": true,
	"revert": true,
}

// Config controls rendering across all profiles.
type Config struct {
	Profile         Profile
	IncludeBody     bool
	MaxBullets      int
	WrapWidth       int
	TicketPlacement string // "prefix" or "suffix"
}

// DefaultConfig returns the standard rendering configuration.
func DefaultConfig() Config {
	return Config{
		Profile:         Default,
		IncludeBody:     true,
		MaxBullets:      6,
		WrapWidth:       72,
		TicketPlacement: "prefix",
	}
}

// Render formats a planned commit as a complete commit message using the
// configured profile.
func Render(c commitstack.PlannedCommit, cfg Config) string {
	switch cfg.Profile {
	case Conventional:
		return renderConventional(c, cfg)
	case Ticket:
		return renderTicket(c, cfg)
	case Kernel:
		return renderKernel(c, cfg)
	case Blueprint:
		return renderBlueprint(c, cfg)
	default:
		return renderDefault(c, cfg)
	}
}

func renderDefault(c commitstack.PlannedCommit, cfg Config) string {
	subject := SanitizeSubject(c.Title, cfg.WrapWidth)
	bullets := cappedBullets(c.Bullets, cfg)
	if len(bullets) == 0 {
		return subject
	}
	return subject + "\n\n" + strings.Join(renderBullets(bullets, cfg.WrapWidth), "\n")
}

func renderConventional(c commitstack.PlannedCommit, cfg Config) string {
	commitType := c.Type
	if commitType == "" {
		commitType = "feat"
	}
	if !conventionalTypes[commitType] {
		commitType = "chore"
	}

	prefixLen := len(commitType) + 2 // "type: "
	if c.Scope != "" {
		prefixLen += len(c.Scope) + 2 // "(scope)"
	}
	subject := SanitizeSubject(c.Title, cfg.WrapWidth-prefixLen)

	var header string
	if c.Scope != "" {
		header = fmt.Sprintf("%s(%s): %s", commitType, c.Scope, subject)
	} else {
		header = fmt.Sprintf("%s: %s", commitType, subject)
	}

	parts := []string{header}
	if bullets := cappedBullets(c.Bullets, cfg); len(bullets) > 0 {
		parts = append(parts, "")
		parts = append(parts, renderBullets(bullets, cfg.WrapWidth)...)
	}
	if c.Ticket != "" {
		parts = append(parts, "", "Refs: "+c.Ticket)
	}
	return strings.Join(parts, "\n")
}

func renderTicket(c commitstack.PlannedCommit, cfg Config) string {
	var header string
	switch {
	case c.Ticket == "":
		header = SanitizeSubject(c.Title, cfg.WrapWidth)
	case cfg.TicketPlacement == "suffix":
		suffix := fmt.Sprintf(" (%s)", c.Ticket)
		header = SanitizeSubject(c.Title, cfg.WrapWidth-len(suffix)) + suffix
	default:
		prefix := c.Ticket + " "
		if c.Scope != "" {
			prefix = fmt.Sprintf("%s (%s) ", c.Ticket, c.Scope)
		}
		header = prefix + SanitizeSubject(c.Title, cfg.WrapWidth-len(prefix))
	}

	parts := []string{header}
	if bullets := cappedBullets(c.Bullets, cfg); len(bullets) > 0 {
		parts = append(parts, "")
		parts = append(parts, renderBullets(bullets, cfg.WrapWidth)...)
	}
	return strings.Join(parts, "\n")
}

func renderKernel(c commitstack.PlannedCommit, cfg Config) string {
	var header string
	if c.Scope != "" {
		prefix := c.Scope + ": "
		header = prefix + SanitizeSubject(c.Title, cfg.WrapWidth-len(prefix))
	} else {
		header = SanitizeSubject(c.Title, cfg.WrapWidth)
	}

	parts := []string{header}
	if bullets := cappedBullets(c.Bullets, cfg); len(bullets) > 0 {
		parts = append(parts, "")
		parts = append(parts, renderBullets(bullets, cfg.WrapWidth)...)
	}
	return strings.Join(parts, "\n")
}

func renderBlueprint(c commitstack.PlannedCommit, cfg Config) string {
	convCfg := cfg
	convCfg.IncludeBody = false
	parts := []string{renderConventional(commitstack.PlannedCommit{
		Type: c.Type, Scope: c.Scope, Title: c.Title,
	}, convCfg)}

	if c.Summary != "" {
		parts = append(parts, "", WrapText(c.Summary, cfg.WrapWidth, "", ""))
	}

	rendered := false
	for _, section := range c.Sections {
		if len(section.Bullets) == 0 {
			continue
		}
		rendered = true
		parts = append(parts, "", section.Title+":")
		parts = append(parts, renderBullets(section.Bullets, cfg.WrapWidth)...)
	}

	// No sections: fall back to a single Changes section from the bullets.
	if !rendered {
		if bullets := cappedBullets(c.Bullets, cfg); len(bullets) > 0 {
			parts = append(parts, "", "Changes:")
			parts = append(parts, renderBullets(bullets, cfg.WrapWidth)...)
		}
	}

	return strings.Join(parts, "\n")
}

func cappedBullets(bullets []string, cfg Config) []string {
	if !cfg.IncludeBody {
		return nil
	}
	if cfg.MaxBullets > 0 && len(bullets) > cfg.MaxBullets {
		return bullets[:cfg.MaxBullets]
	}
	return bullets
}

func renderBullets(bullets []string, width int) []string {
	lines := make([]string, 0, len(bullets))
	for _, b := range bullets {
		lines = append(lines, WrapText(b, width, "- ", "  "))
	}
	return lines
}

// SanitizeSubject reduces a subject to a single trimmed line with no
// trailing period, truncating with an ellipsis when it exceeds maxLength.
func SanitizeSubject(subject string, maxLength int) string {
	subject = strings.TrimSpace(strings.SplitN(strings.TrimSpace(subject), "\n", 2)[0])
	if strings.HasSuffix(subject, ".") && !strings.HasSuffix(subject, "...") {
		subject = strings.TrimRight(subject, ".")
	}
	if maxLength > 3 && len(subject) > maxLength {
		subject = strings.TrimRight(subject[:maxLength-3], " ") + "..."
	}
	return subject
}

// WrapText greedily wraps text to the given width with separate first-line
// and continuation indents. Words longer than the width are left unbroken.
func WrapText(text string, width int, initialIndent, subsequentIndent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return initialIndent
	}

	var sb strings.Builder
	line := initialIndent + words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			sb.WriteString(line)
			sb.WriteString("\n")
			line = subsequentIndent + word
			continue
		}
		line += " " + word
	}
	sb.WriteString(line)
	return sb.String()
}

var ticketRe = regexp.MustCompile(`([A-Z][A-Z0-9]+-\d+)`)

// TicketFromBranch extracts a ticket key like PROJ-123 from a branch name.
// Returns an empty string when the branch carries none.
func TicketFromBranch(branch string) string {
	return ticketRe.FindString(branch)
}

// InferType guesses a conventional commit type from the staged file set:
// all-docs, all-tests, all-CI, or all-build files map to their type, and
// anything mixed returns empty.
func InferType(stagedFiles []string) string {
	if len(stagedFiles) == 0 {
		return ""
	}

	docExts := []string{".md", ".rst", ".txt", ".adoc"}
	docDirs := []string{"docs/", "doc/", "documentation/"}
	testMarks := []string{"test_", "_test.", ".test.", "tests/", "test/", "spec/", "__tests__/"}
	ciMarks := []string{".github/workflows", ".gitlab-ci", "jenkinsfile", ".circleci", ".travis"}
	buildMarks := []string{
		"package.json", "package-lock.json", "yarn.lock", "pnpm-lock.yaml",
		"pyproject.toml", "poetry.lock", "setup.py", "setup.cfg", "requirements.txt",
		"makefile", "cmakelists.txt", "cargo.toml", "cargo.lock",
		"go.mod", "go.sum", "gemfile", "dockerfile", "docker-compose",
	}

	all := func(pred func(string) bool) bool {
		for _, f := range stagedFiles {
			if !pred(strings.ToLower(f)) {
				return false
			}
		}
		return true
	}
	containsAny := func(s string, marks []string) bool {
		for _, m := range marks {
			if strings.Contains(s, m) {
				return true
			}
		}
		return false
	}

	if all(func(f string) bool {
		for _, ext := range docExts {
			if strings.HasSuffix(f, ext) {
				return true
			}
		}
		return containsAny(f, docDirs)
	}) {
		return "docs"
	}
	if all(func(f string) bool { return containsAny(f, testMarks) }) {
		return "test"
	}
	// CI before build: workflow files often match build patterns too.
	if all(func(f string) bool { return containsAny(f, ciMarks) }) {
		return "ci"
	}
	if all(func(f string) bool { return containsAny(f, buildMarks) }) {
		return "build"
	}
	return ""
}
