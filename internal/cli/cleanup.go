// Package cli — cleanup.go implements the "relic cleanup" command.
//
// Cleanup is the explicit sweep. By default it reclaims stale and
// orphaned checkouts (the same reconciliation the auto-sweep runs on
// open); with --all it removes every managed checkout. Bulk removal
// honors the configured confirmation prompt.
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/relic/internal/model"
)

// cleanupFlags holds the flag values for the cleanup command.
type cleanupFlags struct {
	all   bool // --all: remove every managed checkout, not just stale ones
	force bool // --force: skip the confirmation prompt
}

// NewCleanupCommand creates the "cleanup" cobra command.
func NewCleanupCommand() *cobra.Command {
	flags := &cleanupFlags{}

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove stale or all managed checkouts",
		Long: `Reconcile the checkout registry with the filesystem and reclaim
abandoned checkouts: records whose directory is gone are dropped,
checkouts whose origin repository disappeared are deleted, and checkouts
past the staleness threshold are removed.

With --all, every managed checkout is removed regardless of age.

Examples:
  relic cleanup
  relic cleanup --all
  relic cleanup --all --force`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanup(flags)
		},
	}

	cmd.Flags().BoolVar(&flags.all, "all", false, "Remove every managed checkout, not just stale ones")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Skip the confirmation prompt")

	return cmd
}

// runCleanup runs the requested sweep.
func runCleanup(flags *cleanupFlags) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	if flags.all && !flags.force {
		settings, err := settingsForRepo(".")
		if err != nil {
			return err
		}
		if settings.ConfirmCleanup {
			records, err := sess.manager.All()
			if err != nil {
				return err
			}
			if len(records) > 0 && !confirm(fmt.Sprintf("Remove all %d managed checkout(s)?", len(records))) {
				return model.NewError(model.KindUserCancelled, "cleanup cancelled")
			}
		}
	}

	var removed int
	if flags.all {
		removed, err = sweepAll(sess)
	} else {
		removed, err = sweepStale(sess, time.Now())
	}
	if err != nil {
		return err
	}

	printCleanupResult(removed)
	return nil
}

// sweepAll removes every managed checkout and reports how many were
// reclaimed. The pairing registry is updated in lockstep: a reclaimed
// checkout must not leave a dangling pair behind.
func sweepAll(sess *session) (int, error) {
	removed, err := sess.manager.CleanupAll()
	dropPairs(sess, removed)
	return len(removed), err
}

// sweepStale runs the stale/orphan reconciliation and drops the pairs of
// whatever it reclaimed.
func sweepStale(sess *session, now time.Time) (int, error) {
	removed, err := sess.manager.CleanupStale(now)
	dropPairs(sess, removed)
	return len(removed), err
}

// dropPairs unregisters the pairs of reclaimed checkout paths. Failures
// are swallowed: the checkouts are already gone, and a surviving pair
// can still be dropped by a later close on either side.
func dropPairs(sess *session, paths []string) {
	for _, path := range paths {
		if _, err := sess.registry.Unregister(path); err != nil {
			VerboseLog("failed to drop pair for %s: %v", path, err)
		}
	}
}

// confirm prompts on stderr and reads a yes/no answer from stdin. Only an
// explicit "y" or "yes" counts as consent.
func confirm(question string) bool {
	fmt.Fprintf(cmdStderr(), "%s [y/N] ", question)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// printCleanupResult outputs the cleanup command result.
func printCleanupResult(removed int) {
	if IsJSONOutput() {
		out := struct {
			Removed int `json:"removed"`
		}{Removed: removed}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}
	if removed == 0 {
		fmt.Println("Nothing to clean up.")
		return
	}
	fmt.Printf("Removed %d checkout(s)\n", removed)
}
