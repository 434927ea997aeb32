package commitstack

import (
	"fmt"
	"strings"
)

// ComposeSystemPrompt instructs the model to partition hunks into atomic
// commits and to answer with bare JSON.
const ComposeSystemPrompt = `You are an expert software engineer creating a clean commit stack from a set of changes.

Your task is to split the given changes (hunks) into logical, atomic commits following best practices:
- Each commit should be cohesive and focused on one logical change
- Separate features, refactors, tests, docs, and config changes
- Order commits logically (infrastructure before features, etc.)
- Do not split hunks from the same new file across commits
- Reference ONLY the hunk IDs provided in the inventory

Output ONLY valid JSON matching the required schema. No markdown fences or commentary.`

// MessageSystemPrompt instructs the model to describe the staged diff as a
// single commit.
const MessageSystemPrompt = `You are an expert software engineer writing a commit message for the staged changes.

Summarize the change accurately and concretely. Use the imperative mood for the title.

Output ONLY valid JSON matching the required schema. No markdown fences or commentary.`

// DefaultSnippetLines bounds how many changed lines of each hunk the prompt
// includes.
const DefaultSnippetLines = 5

// maxDiffChars bounds how much raw diff a single-message prompt includes.
const maxDiffChars = 50000

// BuildMessagePrompt formats repository context and the staged diff into
// the user prompt for single-message generation.
func BuildMessagePrompt(branch string, recentCommits []string, stagedDiff string) string {
	if len(stagedDiff) > maxDiffChars {
		stagedDiff = stagedDiff[:maxDiffChars] + "\n... (diff truncated)"
	}

	recent := "None"
	if len(recentCommits) > 0 {
		if len(recentCommits) > 5 {
			recentCommits = recentCommits[:5]
		}
		recent = strings.Join(recentCommits, ", ")
	}

	var sb strings.Builder
	sb.WriteString("Write a commit message for the following staged changes.\n\n")
	sb.WriteString("[CONTEXT]\n")
	fmt.Fprintf(&sb, "Branch: %s\n", branch)
	fmt.Fprintf(&sb, "Recent commits: %s\n\n", recent)
	sb.WriteString("[STAGED DIFF]\n")
	sb.WriteString(stagedDiff)
	sb.WriteString("\n\n[OUTPUT SCHEMA]\n")
	sb.WriteString(`Return a JSON object with this exact structure:
{
  "type": "<feat|fix|docs|refactor|test|chore|build|ci|perf|style>",
  "scope": "<optional scope>",
  "title": "<short description in imperative mood, max 72 chars, WITHOUT type/scope prefix>",
  "bullets": ["<change 1>", "<change 2>"]
}

`)
	sb.WriteString("Output ONLY the JSON object:")
	return sb.String()
}

// BuildComposePrompt formats the hunk inventory plus repository metadata
// into the user prompt for compose planning. All context arrives as
// explicit arguments so prompt construction stays deterministic.
func BuildComposePrompt(fileDiffs []FileDiff, branch string, recentCommits []string, style string, maxCommits int) string {
	inventoryText := FormatForPrompt(fileDiffs, DefaultSnippetLines)

	totalFiles := 0
	totalHunks := 0
	for _, fd := range fileDiffs {
		if !fd.IsBinary {
			totalFiles++
		}
		totalHunks += len(fd.Hunks)
	}

	recent := "None"
	if len(recentCommits) > 0 {
		if len(recentCommits) > 5 {
			recentCommits = recentCommits[:5]
		}
		recent = strings.Join(recentCommits, ", ")
	}

	var sb strings.Builder
	sb.WriteString("Split the following changes into a clean commit stack.\n\n")
	sb.WriteString("[CONTEXT]\n")
	fmt.Fprintf(&sb, "Branch: %s\n", branch)
	fmt.Fprintf(&sb, "Recent commits: %s\n", recent)
	fmt.Fprintf(&sb, "Style: %s\n", style)
	fmt.Fprintf(&sb, "Max commits: %d\n\n", maxCommits)
	sb.WriteString("[STATS]\n")
	fmt.Fprintf(&sb, "Files with changes: %d\n", totalFiles)
	fmt.Fprintf(&sb, "Total hunks: %d\n\n", totalHunks)
	sb.WriteString(inventoryText)
	sb.WriteString("\n\n[OUTPUT SCHEMA]\n")
	sb.WriteString(`Return a JSON object with this exact structure:
{
  "version": "1",
  "warnings": [],
  "commits": [
    {
      "id": "C1",
      "type": "<feat|fix|docs|refactor|test|chore|build|ci|perf|style>",
      "scope": "<optional scope>",
      "ticket": null,
      "title": "<short description in imperative mood, max 72 chars, WITHOUT type/scope prefix>",
      "bullets": ["<change 1>", "<change 2>"],
      "summary": null,
      "sections": null,
      "hunks": ["<hunk_id_1>", "<hunk_id_2>"]
    }
  ]
}

IMPORTANT: The "title" field must contain ONLY the description, NOT the conventional commit prefix.
The type and scope are already separate JSON fields, so do NOT repeat them inside the title.
  Correct:   "type": "feat", "scope": "api", "title": "Add pagination support to list endpoints"
  WRONG:     "type": "feat", "scope": "api", "title": "feat(api): Add pagination support to list endpoints"

`)
	sb.WriteString("[RULES]\n")
	sb.WriteString("1. Reference ONLY hunk IDs from the inventory above\n")
	sb.WriteString("2. Each hunk must appear in exactly ONE commit\n")
	fmt.Fprintf(&sb, "3. Maximum %d commits\n", maxCommits)
	sb.WriteString("4. Keep new file hunks together in one commit\n")
	sb.WriteString("5. Order: infrastructure -> features -> tests -> docs\n")
	sb.WriteString("6. Use appropriate commit type based on changes\n\n")
	sb.WriteString("Output ONLY the JSON object:")

	return sb.String()
}
