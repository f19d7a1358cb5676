// Package cli — open.go implements the "relic open" command.
//
// Open is the primary user-facing operation. It orchestrates the full
// workflow of materializing a historical commit as an isolated workspace:
//
//  1. Detect the current repository and load its effective settings
//  2. Sweep stale checkouts (when auto-cleanup is enabled)
//  3. Create the detached checkout and register it
//  4. Plan and execute symlinks for external state (.env, node_modules)
//  5. Pair the new workspace with the origin for quick switching
//  6. Open the checkout as a new window (unless --no-window)
package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/relic/internal/git"
	"github.com/mmr-tortoise/relic/internal/linker"
	"github.com/mmr-tortoise/relic/internal/model"
)

// openFlags holds the flag values for the open command.
type openFlags struct {
	reuse    bool // --reuse: open the existing checkout instead of failing
	noWindow bool // --no-window: skip launching the window command
	noLink   bool // --no-link: skip the symlink pass
}

// NewOpenCommand creates the "open" cobra command.
func NewOpenCommand() *cobra.Command {
	flags := &openFlags{}

	cmd := &cobra.Command{
		Use:   "open <revision>",
		Short: "Open a commit as an isolated workspace",
		Long: `Open the given revision (commit hash, branch, tag, HEAD~n) as an isolated
detached checkout next to your current working copy.

The checkout lives under the system temp directory, gets your workspace's
external state symlinked in, and is paired with the current window so you
can switch back and forth.

Examples:
  relic open abc1234
  relic open HEAD~3
  relic open v1.2.0 --no-window`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpen(args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.reuse, "reuse", false, "Reuse an existing checkout of this commit instead of failing")
	cmd.Flags().BoolVar(&flags.noWindow, "no-window", false, "Create and link the checkout without opening a window")
	cmd.Flags().BoolVar(&flags.noLink, "no-link", false, "Skip linking external state into the checkout")

	return cmd
}

// runOpen is the main orchestration function for the open command.
func runOpen(revision string, flags *openFlags) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	// Step 1: Resolve the origin repository and its settings.
	repoRoot, err := currentRepoRoot(sess.gateway)
	if err != nil {
		return err
	}
	VerboseLog("Origin repository: %s", repoRoot)

	settings, err := settingsForRepo(repoRoot)
	if err != nil {
		return err
	}

	// Step 2: Opportunistic stale sweep. A failure here never blocks the
	// open; the next run retries.
	if settings.AutoCleanup {
		if swept, err := sweepStale(sess, time.Now()); err == nil && swept > 0 {
			VerboseLog("Swept %d stale checkout(s)", swept)
		}
	}

	// Step 3: Create the checkout. With --reuse, an already-existing
	// checkout of the same commit is opened instead of failing.
	record, err := sess.manager.Create(repoRoot, revision)
	if err != nil {
		if !flags.reuse || !model.HasKind(err, model.KindCheckoutExists) {
			return err
		}
		existing, found, lookupErr := findExistingCheckout(sess, repoRoot, revision)
		if lookupErr != nil {
			return lookupErr
		}
		if !found {
			return err
		}
		record = existing
		VerboseLog("Reusing existing checkout at %s", record.Path)
	}

	// Step 4: Link external state. Failures are collected per entry, not
	// raised; the checkout is usable either way.
	var result model.LinkResult
	if !flags.noLink {
		if warning := originDirtyWarning(sess.gateway, repoRoot); warning != "" {
			fmt.Fprintf(cmdStderr(), "Warning: %s\n", warning)
		}
		plan := linker.BuildPlan(repoRoot, settings.AllFilePatterns(), settings.DirectoryPatterns)
		if settings.SecretsWarning {
			for _, warning := range linker.SecretsWarnings(plan, settings.SecretsPatterns) {
				fmt.Fprintf(cmdStderr(), "Warning: %s\n", warning)
			}
		}
		result = linker.Link(repoRoot, record.Path, plan)
		for _, warning := range result.Warnings {
			VerboseLog("link: %s", warning)
		}
	}

	// Step 5: Pair the new workspace with the origin.
	if _, err := sess.registry.Register(repoRoot, record.Path); err != nil {
		return err
	}

	// Step 6: Open the window.
	if !flags.noWindow {
		if err := openWindow(settings.OpenCommand, record.Path); err != nil {
			// The checkout is fully set up; a missing editor command is
			// reported but does not undo the work.
			fmt.Fprintf(cmdStderr(), "Warning: could not open window: %v\n", err)
		}
	}

	printOpenResult(record, result)
	return nil
}

// originDirtyWarning returns the warning to show before linking when the
// origin working tree has uncommitted changes, or "" when there is
// nothing to warn about. Symlinks share live state, so a dirty origin
// bleeds its uncommitted changes into the checkout through them. The
// warning is advisory: detection failures stay silent.
func originDirtyWarning(gateway *git.Gateway, repoRoot string) string {
	dirty, err := gateway.IsDirty(repoRoot)
	if err != nil || !dirty {
		return ""
	}
	return fmt.Sprintf("working tree at %s has uncommitted changes; linked state reflects them", repoRoot)
}

// findExistingCheckout resolves the registered record for revision in the
// repository at repoRoot, used by --reuse.
func findExistingCheckout(sess *session, repoRoot, revision string) (model.WorktreeRecord, bool, error) {
	sha, err := sess.gateway.ResolveRevision(repoRoot, revision)
	if err != nil {
		return model.WorktreeRecord{}, false, err
	}
	records, err := sess.manager.ForRepo(repoRoot)
	if err != nil {
		return model.WorktreeRecord{}, false, err
	}
	for _, record := range records {
		if record.CommitSHA == sha {
			return record, true, nil
		}
	}
	return model.WorktreeRecord{}, false, nil
}

// printOpenResult outputs the open command results in text or JSON format.
func printOpenResult(record model.WorktreeRecord, result model.LinkResult) {
	if IsJSONOutput() {
		out := struct {
			Path          string           `json:"path"`
			CommitSha     string           `json:"commitSha"`
			CommitMessage string           `json:"commitMessage"`
			Linked        model.LinkResult `json:"linkResult"`
		}{
			Path:          record.Path,
			CommitSha:     record.CommitSHA,
			CommitMessage: record.CommitMessage,
			Linked:        result,
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Opened %s at %s\n", shortSha(record.CommitSHA), record.Path)
	if record.CommitMessage != "" {
		fmt.Printf("  Commit:  %s\n", record.CommitMessage)
	}
	if len(result.Linked) > 0 {
		fmt.Printf("  Linked:  %v\n", result.Linked)
	}
	if len(result.Skipped) > 0 {
		fmt.Printf("  Skipped: %v\n", result.Skipped)
	}
	if len(result.Failed) > 0 {
		fmt.Printf("  Failed:  %v\n", result.Failed)
	}
}

// shortSha abbreviates a commit identifier for display.
func shortSha(sha string) string {
	if len(sha) < 8 {
		return sha
	}
	return sha[:8]
}
