// Package main is the entry point for the relic CLI.
//
// The binary opens historical commits as isolated side-by-side
// workspaces. All functionality lives in the internal/cli package, which
// defines the cobra commands.
//
// Build-time variables (version, commit, date) are injected via ldflags
// during the release process. During development they default to "dev",
// "none", and "unknown".
package main

import (
	"github.com/mmr-tortoise/relic/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Inject build-time version info into the CLI package. This keeps
	// the build system's ldflags decoupled from the CLI framework.
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
