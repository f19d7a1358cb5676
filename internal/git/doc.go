// Package git is the VCS gateway: a thin wrapper issuing git subprocess
// calls and translating tool-specific failures into the typed errors
// defined in internal/model.
//
// Design decisions:
//   - We shell out to `git` rather than using a Go Git library because
//     isolated checkouts are implemented with `git worktree`, which needs
//     full Git CLI compatibility; library support for linked working trees
//     is limited.
//   - The Gateway struct is stateless; all methods receive the repository
//     path as a parameter. It exists as a receiver to allow future
//     extension (custom git binary path, logging middleware).
//   - Every operation is side-effect-safe to retry. Checkout creation is
//     not idempotent: retrying after partial success surfaces an
//     "already exists" error that the caller handles, not this package.
package git
