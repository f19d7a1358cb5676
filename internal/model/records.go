package model

import "time"

// WorktreeRecord describes one isolated checkout under relic's management.
//
// A record exists in the durable registry if and only if the system believes
// the corresponding filesystem checkout exists and is under its management.
// Records are created atomically with the underlying checkout (the registry
// write happens only after git-level creation succeeds), are never mutated,
// and are removed when the checkout is deliberately closed, found stale, or
// found orphaned.
type WorktreeRecord struct {
	// ID uniquely identifies the record. It is derived from the repository
	// name, the short revision, and the creation timestamp, and is never
	// reused even for the same repo+revision combination.
	ID string `json:"id"`

	// Path is the absolute filesystem path of the checkout. It is unique
	// among live records and owned exclusively by this record once created.
	Path string `json:"path"`

	// CommitSHA is the full revision identifier the checkout is pinned to.
	// The checkout is detached — it does not track any branch.
	CommitSHA string `json:"commitSha"`

	// CommitMessage is the commit subject line, kept for display only.
	CommitMessage string `json:"commitMessage"`

	// OriginalRepoPath is the absolute path of the repository the checkout
	// was derived from. Needed for git worktree removal and for detecting
	// orphaned checkouts whose origin repository has disappeared.
	OriginalRepoPath string `json:"originalRepoPath"`

	// CreatedAtMillis is the creation timestamp in epoch milliseconds.
	CreatedAtMillis int64 `json:"createdAt"`
}

// CreatedAt returns the record's creation time.
func (r WorktreeRecord) CreatedAt() time.Time {
	return time.UnixMilli(r.CreatedAtMillis)
}

// Age returns how long ago the record was created, relative to now.
func (r WorktreeRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.CreatedAt())
}

// WindowPair is the bidirectional association between an origin workspace
// and the isolated checkout opened from it. Each path is expected to appear
// in at most one active pair at a time; registering a new pair evicts any
// prior pair sharing either path.
type WindowPair struct {
	// ID is a unique token for the pair.
	ID string `json:"id"`

	// OriginalPath is the absolute path of the origin workspace.
	OriginalPath string `json:"originalPath"`

	// WorktreePath is the absolute path of the isolated checkout.
	WorktreePath string `json:"worktreePath"`

	// CreatedAtMillis is the registration timestamp in epoch milliseconds.
	CreatedAtMillis int64 `json:"createdAt"`
}

// Touches reports whether path is either endpoint of the pair.
func (p WindowPair) Touches(path string) bool {
	return p.OriginalPath == path || p.WorktreePath == path
}

// PartnerOf returns the opposite-side path if path is one of the pair's
// endpoints, and "" otherwise.
func (p WindowPair) PartnerOf(path string) string {
	switch path {
	case p.OriginalPath:
		return p.WorktreePath
	case p.WorktreePath:
		return p.OriginalPath
	}
	return ""
}

// LinkResult is the outcome of one linking pass. The four lists are
// disjoint: an entry is linked, skipped (target already existed), or failed
// (creation raised), and every failure also appends a human-readable
// warning. The result is reported back to the caller and never persisted.
type LinkResult struct {
	// Linked lists entries for which a symlink was created, in plan order
	// (files first, then directories with a trailing slash).
	Linked []string `json:"linked"`

	// Skipped lists entries whose target path already existed. Linking
	// never overwrites, so pre-existing content is left untouched.
	Skipped []string `json:"skipped"`

	// Failed lists entries whose symlink creation raised an error.
	Failed []string `json:"failed"`

	// Warnings holds human-readable messages: one per failed entry, plus
	// any secrets-pattern warnings produced before linking.
	Warnings []string `json:"warnings"`
}
