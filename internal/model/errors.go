package model

import (
	"errors"
	"fmt"
)

// Kind classifies a relic error. The gateway and the lifecycle manager
// raise typed errors; the CLI layer is solely responsible for translating
// them into user-facing messages and recovery offers.
type Kind string

const (
	// KindRepoDetection indicates the working directory is not inside a
	// git repository, or repository detection itself failed.
	KindRepoDetection Kind = "repo-detection"

	// KindToolMissing indicates the git binary could not be found. Fatal.
	KindToolMissing Kind = "tool-missing"

	// KindToolTooOld indicates the installed git predates worktree
	// support at the required level. Fatal.
	KindToolTooOld Kind = "tool-too-old"

	// KindCommitNotFound indicates the requested revision does not exist
	// in the repository.
	KindCommitNotFound Kind = "commit-not-found"

	// KindDirtyWorktree indicates an operation was refused because the
	// working directory has uncommitted changes.
	KindDirtyWorktree Kind = "dirty-worktree"

	// KindCheckoutExists indicates git reported that a checkout already
	// exists at the target path. Recoverable: the caller may offer to
	// reuse the existing checkout instead.
	KindCheckoutExists Kind = "checkout-already-exists"

	// KindCheckoutCreateFailed indicates checkout creation failed for a
	// reason other than the target already existing.
	KindCheckoutCreateFailed Kind = "checkout-creation-failed"

	// KindCheckoutLocked indicates git refused removal because the
	// checkout is locked.
	KindCheckoutLocked Kind = "checkout-locked"

	// KindCheckoutRemoveFailed indicates git-level checkout removal
	// failed for a reason other than a lock.
	KindCheckoutRemoveFailed Kind = "checkout-removal-failed"

	// KindLinkFailed indicates a linking pass could not run at all (as
	// opposed to individual link failures, which are collected in the
	// LinkResult and never raised).
	KindLinkFailed Kind = "link-failed"

	// KindNotManaged indicates the target path is not a managed checkout
	// or has no registered window partner.
	KindNotManaged Kind = "not-managed"

	// KindUserCancelled indicates the user declined a confirmation prompt.
	KindUserCancelled Kind = "user-cancelled"
)

// Error is the typed error raised by the gateway and lifecycle layers.
// Recoverable distinguishes errors the orchestration layer can offer a
// recovery action for (e.g. "open the existing checkout instead") from
// fatal environment problems (missing or outdated git binary).
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Message is the human-readable description.
	Message string

	// Recoverable is false only for fatal environment errors.
	Recoverable bool

	// Err is the underlying cause, preserved for diagnostics.
	Err error
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a recoverable Error without an underlying cause.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Recoverable: true}
}

// WrapError creates a recoverable Error wrapping an underlying cause.
func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Recoverable: true, Err: err}
}

// NewFatalError creates a non-recoverable Error wrapping an optional cause.
// Used for the two fatal kinds: KindToolMissing and KindToolTooOld.
func NewFatalError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Recoverable: false, Err: err}
}

// HasKind reports whether err is (or wraps) a relic Error of the given kind.
func HasKind(err error, kind Kind) bool {
	var relicErr *Error
	if errors.As(err, &relicErr) {
		return relicErr.Kind == kind
	}
	return false
}

// ExitCode defines the CLI process exit codes. Scripts use these to
// distinguish outcomes programmatically.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitGitError indicates a git operation failed.
	ExitGitError ExitCode = 2

	// ExitToolUnusable indicates git is missing or too old.
	ExitToolUnusable ExitCode = 3

	// ExitCommitNotFound indicates the requested revision does not exist.
	ExitCommitNotFound ExitCode = 4

	// ExitCheckoutExists indicates a checkout already exists for the
	// requested revision and the caller declined to reuse it.
	ExitCheckoutExists ExitCode = 5

	// ExitNotManaged indicates the target path is not a relic-managed
	// checkout or has no registered partner.
	ExitNotManaged ExitCode = 6

	// ExitUserCancelled indicates the user declined a confirmation prompt.
	ExitUserCancelled ExitCode = 7
)

// ExitCodeFor maps an error kind to the CLI exit code. Kinds without a
// dedicated code fall through to ExitGitError since they all originate
// from git operations.
func ExitCodeFor(kind Kind) ExitCode {
	switch kind {
	case KindToolMissing, KindToolTooOld:
		return ExitToolUnusable
	case KindCommitNotFound:
		return ExitCommitNotFound
	case KindCheckoutExists:
		return ExitCheckoutExists
	case KindNotManaged:
		return ExitNotManaged
	case KindUserCancelled:
		return ExitUserCancelled
	default:
		return ExitGitError
	}
}
