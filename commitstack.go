// Package commitstack provides domain types for splitting staged changes
// into a planned stack of atomic git commits.
package commitstack

import "context"

// Hunk is a single @@ region of a file diff. Hunks are created once during
// parsing and never mutated; downstream components reference them by ID.
type Hunk struct {
	ID       string   // Stable identifier, e.g. "H3_1a2b3c"
	FilePath string   // Destination path of the owning file
	Header   string   // The @@ -a,b +c,d @@ line
	OldStart int
	OldLen   int
	NewStart int
	NewLen   int
	Lines    []string // Raw hunk lines including the header, kept verbatim
}

// FileDiff represents one file's worth of changes within a diff.
type FileDiff struct {
	FilePath        string   // Destination path
	OldPath         string   // Only set for renames
	DiffHeaderLines []string // From the "diff --git" line up to the first hunk
	Hunks           []Hunk   // In source order
	IsBinary        bool
	IsNewFile       bool
	IsDeletedFile   bool
	IsRenamed       bool
}

// Parser parses raw unified diff text into file diffs.
// Non-fatal anomalies (binary files, malformed hunk headers) are reported
// as warnings rather than errors.
type Parser interface {
	Parse(diffText string) (files []FileDiff, warnings []string)
}

// GitRunner provides access to the git operations the compose core needs.
// Every method maps to a single synchronous git invocation; non-zero exit
// surfaces as an error carrying the command's stderr.
type GitRunner interface {
	// RepoRoot returns the absolute path of the repository root.
	RepoRoot(ctx context.Context) (string, error)
	// Head returns the current HEAD commit hash.
	Head(ctx context.Context) (string, error)
	// Branch returns the current branch name.
	Branch(ctx context.Context) (string, error)
	// StagedDiff returns the output of git diff --cached --patch.
	StagedDiff(ctx context.Context) (string, error)
	// StagedFiles returns the paths currently staged.
	StagedFiles(ctx context.Context) ([]string, error)
	// RecentSubjects returns the subjects of the last n commits.
	RecentSubjects(ctx context.Context, n int) ([]string, error)
	// ResetIndex resets the index to HEAD, leaving the working tree alone.
	ResetIndex(ctx context.Context) error
	// ApplyCached applies the patch at path to the index only.
	ApplyCached(ctx context.Context, patchPath string) error
	// Commit commits the index using the message stored at msgPath.
	Commit(ctx context.Context, msgPath string) error
}

// Planner produces a compose plan proposal from prompts. The returned text
// is raw model output; callers parse it with ParsePlan.
type Planner interface {
	Plan(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// PatchVerifier checks that reconstructed patch text is a syntactically
// valid unified diff before it is handed to git.
type PatchVerifier interface {
	Verify(patchText string) error
}
