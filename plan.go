package commitstack

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// BlueprintSection is a titled bullet group in a blueprint-style message.
type BlueprintSection struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// PlannedCommit is a single commit in a compose plan. Only ID, Title and
// Hunks are required; the remaining fields feed the message renderers.
type PlannedCommit struct {
	ID       string             `json:"id"`
	Type     string             `json:"type,omitempty"`
	Scope    string             `json:"scope,omitempty"`
	Ticket   string             `json:"ticket,omitempty"`
	Title    string             `json:"title"`
	Bullets  []string           `json:"bullets"`
	Summary  string             `json:"summary,omitempty"`
	Sections []BlueprintSection `json:"sections"`
	Hunks    []string           `json:"hunks"`
}

// ComposePlan is the full proposal for a commit stack. Commits are listed
// in application order.
type ComposePlan struct {
	Version  string          `json:"version"`
	Warnings []string        `json:"warnings"`
	Commits  []PlannedCommit `json:"commits"`
}

// conventionalPrefixRe matches a "type(scope): " or "type: " title prefix.
var conventionalPrefixRe = regexp.MustCompile(`^([a-zA-Z]+)(?:\(([^)]*)\))?:\s*`)

// JSONParseError reports a failure to interpret model output as plan JSON.
type JSONParseError struct {
	Raw string
	Err error
}

func (e *JSONParseError) Error() string {
	return fmt.Sprintf("failed to parse LLM response as JSON: %v\nraw response:\n%s", e.Err, e.Raw)
}

func (e *JSONParseError) Unwrap() error { return e.Err }

// ExtractJSONObject strips markdown code fences from raw model output and
// returns the outermost {...} span. Models sometimes wrap their JSON in
// fences or commentary despite instructions.
func ExtractJSONObject(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```") {
		lines := strings.Split(cleaned, "\n")
		lines = lines[1:]
		if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
			lines = lines[:len(lines)-1]
		}
		cleaned = strings.Join(lines, "\n")
	}

	first := strings.Index(cleaned, "{")
	last := strings.LastIndex(cleaned, "}")
	if first != -1 && last > first {
		cleaned = cleaned[first : last+1]
	}
	return cleaned
}

// ParsePlan decodes raw model output into a ComposePlan. Missing optional
// fields default to empty values here, at the deserialization boundary, so
// validation never has to deal with nil. Unknown top-level keys are ignored.
func ParsePlan(raw string) (*ComposePlan, error) {
	cleaned := ExtractJSONObject(raw)

	var plan ComposePlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, &JSONParseError{Raw: raw, Err: err}
	}

	if plan.Version == "" {
		plan.Version = "1"
	}
	if plan.Warnings == nil {
		plan.Warnings = []string{}
	}
	for i := range plan.Commits {
		c := &plan.Commits[i]
		if c.Bullets == nil {
			c.Bullets = []string{}
		}
		if c.Sections == nil {
			c.Sections = []BlueprintSection{}
		}
		if c.Hunks == nil {
			c.Hunks = []string{}
		}
		c.Title = stripRedundantPrefix(c.Title, c.Type)
	}
	return &plan, nil
}

// ParseCommitMessage decodes raw model output for the single-message path.
// Different styles name the subject field differently ("subject" vs
// "title"); both are accepted.
func ParseCommitMessage(raw string) (*PlannedCommit, error) {
	cleaned := ExtractJSONObject(raw)

	var msg struct {
		PlannedCommit
		Subject     string   `json:"subject"`
		BodyBullets []string `json:"body_bullets"`
	}
	if err := json.Unmarshal([]byte(cleaned), &msg); err != nil {
		return nil, &JSONParseError{Raw: raw, Err: err}
	}

	c := msg.PlannedCommit
	if c.Title == "" {
		c.Title = msg.Subject
	}
	if len(c.Bullets) == 0 {
		c.Bullets = msg.BodyBullets
	}
	if c.Bullets == nil {
		c.Bullets = []string{}
	}
	if c.Sections == nil {
		c.Sections = []BlueprintSection{}
	}
	c.Title = stripRedundantPrefix(c.Title, c.Type)
	if strings.TrimSpace(c.Title) == "" {
		return nil, &JSONParseError{Raw: raw, Err: fmt.Errorf("response has no title")}
	}
	return &c, nil
}

// stripRedundantPrefix removes a conventional-commit prefix from the title
// when it duplicates the commit's type field. Models sometimes return
// "feat(api): Add X" even though type and scope are separate JSON fields.
func stripRedundantPrefix(title, commitType string) string {
	if commitType == "" || title == "" {
		return title
	}
	m := conventionalPrefixRe.FindStringSubmatch(title)
	if m != nil && strings.EqualFold(m[1], commitType) {
		return title[len(m[0]):]
	}
	return title
}
