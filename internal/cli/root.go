// Package cli implements the cobra-based CLI commands for relic.
//
// Each subcommand (open, close, switch, list, log, cleanup) is defined in
// its own file within this package. This file defines the root command
// that serves as the parent for all subcommands, handles global flags,
// and translates typed errors into process exit codes.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/relic/internal/config"
	"github.com/mmr-tortoise/relic/internal/git"
	"github.com/mmr-tortoise/relic/internal/model"
	"github.com/mmr-tortoise/relic/internal/pairing"
	"github.com/mmr-tortoise/relic/internal/store"
	"github.com/mmr-tortoise/relic/internal/worktree"
)

// Global flag variables shared across all subcommands. These are bound to
// cobra persistent flags on the root command, which makes them available
// to every subcommand automatically.
var (
	// jsonOutput switches command output to structured JSON for machine
	// consumption. Errors stay on stderr in either mode.
	jsonOutput bool

	// verbose enables trace output on stderr.
	verbose bool
)

// version, commit, and date are set at build time via ldflags. They are
// injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g. "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself performs no action. It provides help text,
// global flags, and the environment validation every subcommand relies
// on (git present and recent enough).
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "relic",
		Short: "Open historical commits as isolated side-by-side workspaces",
		Long: `relic opens any commit of a Git repository as an isolated, fully navigable
workspace next to your current working copy, without disturbing it.

Checkouts are detached worktrees under the system temp directory. External
state your build needs (.env files, node_modules) is symlinked in, the new
workspace is paired with the one it came from for quick switching, and
abandoned checkouts are swept automatically.`,

		// SilenceUsage prevents cobra from printing usage on every error;
		// SilenceErrors stops it from printing errors automatically. We
		// format errors ourselves (text or JSON based on --json).
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Help and version output must work even on a machine
			// without git; only real subcommands validate the tool.
			if cmd.Name() == "help" || !cmd.HasParent() {
				return nil
			}
			return git.NewGateway().ValidateToolVersion()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewOpenCommand())
	rootCmd.AddCommand(NewCloseCommand())
	rootCmd.AddCommand(NewSwitchCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewLogCommand())
	rootCmd.AddCommand(NewCleanupCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes. This is the main
// entry point called from main.go.
//
// Typed errors carry their kind, which maps to a documented exit code;
// everything else exits with the general error code.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		var relicErr *model.Error
		if errors.As(err, &relicErr) {
			printError(relicErr.Message, relicErr.Err)
			os.Exit(int(model.ExitCodeFor(relicErr.Kind)))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message in the appropriate format (JSON or
// text) based on the --json global flag. Errors go to stderr in both
// modes; stdout is reserved for successful command output.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// VerboseLog prints a message to stderr only when verbose mode is
// enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set. Subcommands use
// this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// session bundles the shared dependencies a subcommand needs: the state
// store, the gateway, the lifecycle manager, and the pairing registry.
// Commands open a session at the start of RunE and close it on return.
type session struct {
	store    *store.Store
	gateway  *git.Gateway
	manager  *worktree.Manager
	registry *pairing.Registry
}

// openSession wires up a session against the default state database.
func openSession() (*session, error) {
	s, err := store.Open(store.DefaultPath())
	if err != nil {
		return nil, err
	}
	gateway := git.NewGateway()
	return &session{
		store:    s,
		gateway:  gateway,
		manager:  worktree.NewManager(gateway, s),
		registry: pairing.NewRegistry(s),
	}, nil
}

// close releases the session's store handle.
func (s *session) close() {
	_ = s.store.Close()
}

// settingsForRepo loads the effective settings for the repository at
// repoPath (global file plus per-repo override).
func settingsForRepo(repoPath string) (config.Settings, error) {
	return config.LoadForRepo(config.DefaultGlobalPath(), repoPath)
}

// currentRepoRoot resolves the repository root of the current working
// directory.
func currentRepoRoot(gateway *git.Gateway) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return gateway.RepoRoot(cwd)
}
