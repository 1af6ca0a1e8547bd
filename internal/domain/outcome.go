package domain

import (
	"errors"
	"time"
)

// OutcomeStatus is the terminal state of a sync run.
type OutcomeStatus string

const (
	OutcomeNoChanges          OutcomeStatus = "no-changes"
	OutcomeCommittedAndPushed OutcomeStatus = "committed-and-pushed"
	OutcomeCommittedNotPushed OutcomeStatus = "committed-not-pushed"
	OutcomeFailed             OutcomeStatus = "failed-at-stage"
)

// Stage identifies the step of the workflow a run stopped at.
type Stage string

const (
	StageValidation   Stage = "validation"
	StageAuth         Stage = "auth"
	StageDetect       Stage = "detect"
	StageCommit       Stage = "commit"
	StageConnectivity Stage = "connectivity"
	StageSync         Stage = "sync"
	StagePush         Stage = "push"
	StageDone         Stage = "done"
)

// FailureKind is the closed taxonomy of run failures surfaced to callers.
type FailureKind string

const (
	KindNone               FailureKind = ""
	KindNotARepository     FailureKind = "NotARepository"
	KindToolUnavailable    FailureKind = "ToolUnavailable"
	KindInvalidRemote      FailureKind = "InvalidRemote"
	KindAuthNotConfigured  FailureKind = "AuthNotConfigured"
	KindNetworkUnreachable FailureKind = "NetworkUnreachable"
	KindCommitFailed       FailureKind = "CommitFailed"
	KindSyncConflict       FailureKind = "SyncConflict"
	KindPushAuthRequired   FailureKind = "PushAuthRequired"
	KindPushFailed         FailureKind = "PushFailed"
	KindInternal           FailureKind = "Internal"
)

// ErrorCategory groups failure kinds for alerting.
type ErrorCategory string

const (
	CategoryNone                    ErrorCategory = ""
	CategoryConfiguration           ErrorCategory = "Configuration"
	CategoryConnectivity            ErrorCategory = "Connectivity"
	CategoryVersionControlOperation ErrorCategory = "VersionControlOperation"
	CategoryConflict                ErrorCategory = "Conflict"
)

// Category returns the error category the kind belongs to.
func (k FailureKind) Category() ErrorCategory {
	switch k {
	case KindNotARepository, KindToolUnavailable, KindInvalidRemote, KindAuthNotConfigured:
		return CategoryConfiguration
	case KindNetworkUnreachable:
		return CategoryConnectivity
	case KindSyncConflict:
		return CategoryConflict
	case KindNone:
		return CategoryNone
	default:
		return CategoryVersionControlOperation
	}
}

// Sentinel errors for the failure kinds, checkable with errors.Is.
var (
	ErrNotARepository     = errors.New("not a git working tree root")
	ErrToolUnavailable    = errors.New("git executable unavailable")
	ErrInvalidRemote      = errors.New("invalid remote reference")
	ErrAuthNotConfigured  = errors.New("authentication not configured")
	ErrNetworkUnreachable = errors.New("remote unreachable")
	ErrCommitFailed       = errors.New("commit failed")
	ErrSyncConflict       = errors.New("rebase onto upstream failed and was aborted")
	ErrPushAuthRequired   = errors.New("push requires credentials")
	ErrPushFailed         = errors.New("push failed")
	ErrInternal           = errors.New("internal error")
)

var kindErrors = map[FailureKind]error{
	KindNotARepository:     ErrNotARepository,
	KindToolUnavailable:    ErrToolUnavailable,
	KindInvalidRemote:      ErrInvalidRemote,
	KindAuthNotConfigured:  ErrAuthNotConfigured,
	KindNetworkUnreachable: ErrNetworkUnreachable,
	KindCommitFailed:       ErrCommitFailed,
	KindSyncConflict:       ErrSyncConflict,
	KindPushAuthRequired:   ErrPushAuthRequired,
	KindPushFailed:         ErrPushFailed,
	KindInternal:           ErrInternal,
}

// Err returns the sentinel error for the kind, or nil for KindNone.
func (k FailureKind) Err() error {
	return kindErrors[k]
}

// RunOutcome is the result of one orchestrator run.
type RunOutcome struct {
	RunID         string
	Repository    string
	Branch        string
	Status        OutcomeStatus
	Stage         Stage
	Kind          FailureKind
	Err           error
	Changes       ChangeSet
	CommitMessage string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Committed reports whether the run produced a local commit.
func (o RunOutcome) Committed() bool {
	return o.CommitMessage != ""
}

// Success reports whether the run needs no attention.
func (o RunOutcome) Success() bool {
	return o.Status == OutcomeNoChanges || o.Status == OutcomeCommittedAndPushed
}

// ExitCode maps the outcome to a process exit code.
func (o RunOutcome) ExitCode() int {
	if o.Success() {
		return 0
	}
	return 1
}

// Duration returns how long the run took.
func (o RunOutcome) Duration() time.Duration {
	if o.FinishedAt.IsZero() {
		return 0
	}
	return o.FinishedAt.Sub(o.StartedAt)
}

var kindOrder = []FailureKind{
	KindNotARepository,
	KindToolUnavailable,
	KindInvalidRemote,
	KindAuthNotConfigured,
	KindNetworkUnreachable,
	KindCommitFailed,
	KindSyncConflict,
	KindPushAuthRequired,
	KindPushFailed,
	KindInternal,
}

// KindOf returns the first failure kind whose sentinel err wraps, or fallback.
func KindOf(err error, fallback FailureKind) FailureKind {
	if err == nil {
		return KindNone
	}
	for _, kind := range kindOrder {
		if errors.Is(err, kindErrors[kind]) {
			return kind
		}
	}
	return fallback
}
