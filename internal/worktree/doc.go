// Package worktree owns the lifecycle of isolated checkouts: creation,
// registration, removal, and the cleanup sweeps that guarantee no
// checkout outlives its usefulness by much.
//
// The Manager is the only component allowed to delete a checkout
// directory, and it does so only for paths that both follow the managed
// naming convention and appear in the durable registry. Removal degrades
// through three tiers (graceful git removal, forced git removal, direct
// directory deletion) so a checkout is reclaimed even when git refuses to
// cooperate; metadata pruning runs afterward on a best-effort basis.
package worktree
