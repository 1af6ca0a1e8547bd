package domain

import (
	"fmt"
	"strings"
	"time"
)

// SummaryLimit is the number of changed paths listed in a change summary.
const SummaryLimit = 10

// ChangeSet holds the counts derived from a working-tree status query.
type ChangeSet struct {
	Added    int
	Modified int
	Deleted  int
	// Entries are the raw porcelain lines, e.g. "?? notes.txt".
	Entries []string
}

// ParsePorcelain builds a ChangeSet from `git status --porcelain` output.
// Untracked and index-added entries count as new, any entry carrying a D as
// deleted, and every other status code as modified.
func ParsePorcelain(output string) ChangeSet {
	var cs ChangeSet
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || len(line) < 2 {
			continue
		}
		code := line[:2]
		switch {
		case strings.Contains(code, "?"):
			cs.Added++
		case strings.Contains(code, "D"):
			cs.Deleted++
		case strings.Contains(code, "A"):
			cs.Added++
		default:
			cs.Modified++
		}
		cs.Entries = append(cs.Entries, line)
	}
	return cs
}

// Total returns the number of changed paths.
func (c ChangeSet) Total() int {
	return c.Added + c.Modified + c.Deleted
}

// IsEmpty reports whether the working tree is clean.
func (c ChangeSet) IsEmpty() bool {
	return c.Total() == 0
}

// Headline returns the first line of the commit message.
func (c ChangeSet) Headline() string {
	var parts []string
	if c.Added > 0 {
		parts = append(parts, fmt.Sprintf("%d new", c.Added))
	}
	if c.Modified > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", c.Modified))
	}
	if c.Deleted > 0 {
		parts = append(parts, fmt.Sprintf("%d deleted", c.Deleted))
	}
	if len(parts) == 0 {
		return "Auto-update: minor changes"
	}
	return fmt.Sprintf("Auto-update: %s file(s)", strings.Join(parts, ", "))
}

// CommitMessage returns the full commit message stamped with the given time.
func (c ChangeSet) CommitMessage(now time.Time) string {
	return fmt.Sprintf("%s\n\nTimestamp: %s", c.Headline(), now.Format(time.RFC3339))
}

// Summary lists up to limit changed entries followed by a count of the rest.
func (c ChangeSet) Summary(limit int) string {
	if len(c.Entries) == 0 {
		return "No changes"
	}
	if limit <= 0 || len(c.Entries) <= limit {
		return strings.Join(c.Entries, "\n")
	}
	return fmt.Sprintf("%s\n... and %d more files",
		strings.Join(c.Entries[:limit], "\n"), len(c.Entries)-limit)
}
