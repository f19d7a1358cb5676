// Package model defines the domain types for the relic CLI.
//
// This package contains pure data structures with no external dependencies.
// The two durable entities (WorktreeRecord, WindowPair) are persisted as
// ordered JSON collections in the shared key-value store and are read back
// by every relic process on the machine; LinkResult is the ephemeral outcome
// of one linking pass and is never persisted.
//
// The package also defines the typed error taxonomy (Error, Kind) that the
// gateway and lifecycle layers raise, and the exit codes (ExitCode) the CLI
// layer translates them into.
package model
