package repository

import (
	"errors"
	"fmt"
	"strings"
)

// OutputClass is the meaning assigned to a git command's textual output.
type OutputClass string

const (
	ClassUnknown         OutputClass = "unknown"
	ClassNothingToCommit OutputClass = "nothing_to_commit"
	ClassAuthRequired    OutputClass = "auth_required"
	ClassNoUpstream      OutputClass = "no_upstream"
	ClassNetwork         OutputClass = "network"
	ClassConflict        OutputClass = "conflict"
	ClassRejected        OutputClass = "rejected"
	ClassUpToDate        OutputClass = "up_to_date"
	ClassNoRebase        OutputClass = "no_rebase_in_progress"
	ClassTimeout         OutputClass = "timeout"
)

// outputPattern maps a lowercase substring of git output to a class.
type outputPattern struct {
	substring string
	class     OutputClass
}

// outputPatterns is scanned in order and the first match wins, so auth
// patterns precede the generic "could not read from remote" network pattern.
var outputPatterns = []outputPattern{
	{"nothing to commit", ClassNothingToCommit},
	{"nothing added to commit", ClassNothingToCommit},
	{"no changes added to commit", ClassNothingToCommit},
	{"could not read username", ClassAuthRequired},
	{"could not read password", ClassAuthRequired},
	{"terminal prompts disabled", ClassAuthRequired},
	{"authentication failed", ClassAuthRequired},
	{"permission denied (publickey", ClassAuthRequired},
	{"invalid username or password", ClassAuthRequired},
	{"host key verification failed", ClassAuthRequired},
	{"returned error: 401", ClassAuthRequired},
	{"returned error: 403", ClassAuthRequired},
	{"no tracking information", ClassNoUpstream},
	{"couldn't find remote ref", ClassNoUpstream},
	{"no upstream configured", ClassNoUpstream},
	{"could not resolve host", ClassNetwork},
	{"could not resolve hostname", ClassNetwork},
	{"connection timed out", ClassNetwork},
	{"operation timed out", ClassNetwork},
	{"connection refused", ClassNetwork},
	{"network is unreachable", ClassNetwork},
	{"failed to connect to", ClassNetwork},
	{"unable to access", ClassNetwork},
	{"connection reset", ClassNetwork},
	{"could not read from remote repository", ClassNetwork},
	{"no rebase in progress", ClassNoRebase},
	{"conflict", ClassConflict},
	{"could not apply", ClassConflict},
	{"unmerged files", ClassConflict},
	{"[rejected]", ClassRejected},
	{"non-fast-forward", ClassRejected},
	{"failed to push some refs", ClassRejected},
	{"up to date", ClassUpToDate},
	{"up-to-date", ClassUpToDate},
}

// Classify returns the class of the first pattern found in the output.
func Classify(output string) OutputClass {
	lower := strings.ToLower(output)
	for _, p := range outputPatterns {
		if strings.Contains(lower, p.substring) {
			return p.class
		}
	}
	return ClassUnknown
}

// CommandError describes a failed git invocation.
type CommandError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Class    OutputClass
	Err      error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(e.Stdout)
	}
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("git %s failed (exit %d, %s): %s", strings.Join(e.Args, " "), e.ExitCode, e.Class, msg)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ClassOf returns the output class carried by err, or ClassUnknown.
func ClassOf(err error) OutputClass {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Class
	}
	return ClassUnknown
}
