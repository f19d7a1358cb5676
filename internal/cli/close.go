// Package cli — close.go implements the "relic close" command.
//
// Close tears down an isolated checkout and its pairing. It can be run
// from either side of a pair: from inside the checkout (the common case,
// closing "this" window), from the origin workspace, or with an explicit
// path argument.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/relic/internal/model"
	"github.com/mmr-tortoise/relic/internal/naming"
)

// closeFlags holds the flag values for the close command.
type closeFlags struct {
	force bool // --force: skip the confirmation prompt
}

// NewCloseCommand creates the "close" cobra command.
func NewCloseCommand() *cobra.Command {
	flags := &closeFlags{}

	cmd := &cobra.Command{
		Use:   "close [path]",
		Short: "Close an isolated checkout and remove it",
		Long: `Close the isolated checkout at the given path (default: the current
directory's workspace) and reclaim it: the directory is removed, worktree
metadata is pruned, and the window pairing is dropped.

Run from inside a checkout, it closes that checkout. Run from the origin
workspace, it closes the checkout paired with it.

Examples:
  relic close
  relic close /tmp/relic-myapp-abc12345`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return runClose(target, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false, "Skip the confirmation prompt")

	return cmd
}

// runClose resolves which checkout the user means and removes it.
func runClose(target string, flags *closeFlags) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	if target == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		// Resolve to the workspace root so the registry lookup matches
		// the path recorded at open time.
		if root, err := sess.gateway.RepoRoot(cwd); err == nil {
			target = root
		} else {
			target = cwd
		}
	}

	checkoutPath, err := resolveCheckoutSide(sess, target)
	if err != nil {
		return err
	}
	VerboseLog("Closing checkout at %s", checkoutPath)

	if !flags.force {
		settings, err := settingsForRepo(target)
		if err != nil {
			return err
		}
		if settings.ConfirmCleanup && !confirm(fmt.Sprintf("Remove checkout at %s?", checkoutPath)) {
			return model.NewError(model.KindUserCancelled, "close cancelled")
		}
	}

	if err := sess.manager.Remove(checkoutPath); err != nil {
		return err
	}
	if _, err := sess.registry.Unregister(checkoutPath); err != nil {
		return err
	}

	printCloseResult(checkoutPath)
	return nil
}

// resolveCheckoutSide maps target to the checkout path to remove. A
// managed checkout path is used directly; an origin-side path resolves
// through the pairing registry to its partner.
func resolveCheckoutSide(sess *session, target string) (string, error) {
	if _, found, err := sess.manager.Get(target); err != nil {
		return "", err
	} else if found {
		return target, nil
	}
	if naming.IsManagedPath(target) {
		// Follows the convention but is unregistered: let the manager
		// apply its unmanaged-path rules.
		return target, nil
	}

	partner, found, err := sess.registry.Partner(target)
	if err != nil {
		return "", err
	}
	if !found {
		return "", model.NewError(model.KindNotManaged,
			fmt.Sprintf("%s is not a managed checkout and has no paired checkout", target))
	}
	return partner, nil
}

// printCloseResult outputs the close command result.
func printCloseResult(path string) {
	if IsJSONOutput() {
		out := struct {
			Closed string `json:"closed"`
		}{Closed: path}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}
	fmt.Printf("Closed %s\n", path)
}
