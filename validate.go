package commitstack

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// hunkPrefixRe extracts the numeric H<n> prefix of a hunk ID.
var hunkPrefixRe = regexp.MustCompile(`^(H\d+)`)

// Validate checks a compose plan against the inventory and returns every
// violation found, not just the first. Unassigned inventory hunks are not
// an error; they are summarized into plan.Warnings.
func Validate(plan *ComposePlan, inv *Inventory, maxCommits int) []string {
	var errs []string

	if len(plan.Commits) > maxCommits {
		errs = append(errs, fmt.Sprintf("plan has %d commits, exceeds max of %d", len(plan.Commits), maxCommits))
	}
	if len(plan.Commits) == 0 {
		errs = append(errs, "plan has no commits")
	}

	used := make(map[string]bool)

	for _, commit := range plan.Commits {
		if len(commit.Hunks) == 0 {
			errs = append(errs, fmt.Sprintf("commit %s has no hunks", commit.ID))
			continue
		}

		for _, hunkID := range commit.Hunks {
			if _, known := inv.ByID[hunkID]; !known {
				errs = append(errs, fmt.Sprintf("commit %s references unknown hunk: %s", commit.ID, hunkID))
			} else if used[hunkID] {
				errs = append(errs, fmt.Sprintf("hunk %s is used in multiple commits", hunkID))
			} else {
				used[hunkID] = true
			}
		}

		if strings.TrimSpace(commit.Title) == "" {
			errs = append(errs, fmt.Sprintf("commit %s has no title", commit.ID))
		}
	}

	var unassigned []string
	for id := range inv.ByID {
		if !used[id] {
			unassigned = append(unassigned, id)
		}
	}
	if len(unassigned) > 0 {
		sort.Strings(unassigned)
		shown := unassigned
		suffix := ""
		if len(unassigned) > 5 {
			shown = unassigned[:5]
			suffix = fmt.Sprintf(" and %d more", len(unassigned)-5)
		}
		plan.Warnings = append(plan.Warnings, "unassigned hunks: "+strings.Join(shown, ", ")+suffix)
	}

	return errs
}

// TryCorrectHunkIDs rewrites hunk references whose hash suffix the model
// hallucinated, provided the numeric prefix identifies exactly one unclaimed
// inventory hunk. Ambiguous or unmatched references are left alone so they
// surface as validation errors; a wrong correction is strictly worse than a
// confirmed failure. Returns whether anything changed and a log of the
// rewrites made.
func TryCorrectHunkIDs(plan *ComposePlan, inv *Inventory) (bool, []string) {
	used := make(map[string]bool)
	for _, commit := range plan.Commits {
		for _, hunkID := range commit.Hunks {
			if _, ok := inv.ByID[hunkID]; ok {
				used[hunkID] = true
			}
		}
	}

	var log []string
	corrected := false

	for ci := range plan.Commits {
		commit := &plan.Commits[ci]
		for hi, hunkID := range commit.Hunks {
			if _, ok := inv.ByID[hunkID]; ok {
				continue
			}

			m := hunkPrefixRe.FindStringSubmatch(hunkID)
			if m == nil {
				continue
			}
			prefix := m[1]

			var candidates []string
			for _, id := range inv.Order {
				if used[id] {
					continue
				}
				if cm := hunkPrefixRe.FindStringSubmatch(id); cm != nil && cm[1] == prefix {
					candidates = append(candidates, id)
				}
			}
			if len(candidates) != 1 {
				continue
			}

			commit.Hunks[hi] = candidates[0]
			used[candidates[0]] = true
			corrected = true
			log = append(log, fmt.Sprintf("commit %s: %s -> %s", commit.ID, hunkID, candidates[0]))
		}
	}

	return corrected, log
}
