// Package cli — switch.go implements the "relic switch" command.
//
// Switch jumps between the two windows of a pair: from the origin
// workspace to its isolated checkout, or back. The partner lookup is
// symmetric, so the command behaves identically from either side.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/relic/internal/model"
)

// switchFlags holds the flag values for the switch command.
type switchFlags struct {
	printOnly bool // --print: print the partner path without opening it
}

// NewSwitchCommand creates the "switch" cobra command.
func NewSwitchCommand() *cobra.Command {
	flags := &switchFlags{}

	cmd := &cobra.Command{
		Use:   "switch [path]",
		Short: "Switch to the paired workspace window",
		Long: `Open the workspace paired with the given path (default: the current
directory's workspace). From the origin this is the isolated checkout;
from the checkout it is the origin.

Examples:
  relic switch
  relic switch --print`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return runSwitch(target, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.printOnly, "print", false, "Print the partner path instead of opening it")

	return cmd
}

// runSwitch looks up the partner of target and opens (or prints) it.
func runSwitch(target string, flags *switchFlags) error {
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
		if root, err := sess.gateway.RepoRoot(cwd); err == nil {
			target = root
		} else {
			target = cwd
		}
	}

	partner, found, err := sess.registry.Partner(target)
	if err != nil {
		return err
	}
	if !found {
		return model.NewError(model.KindNotManaged,
			fmt.Sprintf("%s has no paired workspace", target))
	}

	// A pair can outlive its checkout when the directory was reclaimed
	// out of band; surface that instead of opening a dead window.
	if _, err := os.Lstat(partner); err != nil {
		return model.NewError(model.KindNotManaged,
			fmt.Sprintf("paired workspace %s no longer exists", partner))
	}

	if !flags.printOnly {
		settings, err := settingsForRepo(target)
		if err != nil {
			return err
		}
		if err := openWindow(settings.OpenCommand, partner); err != nil {
			return err
		}
	}

	printSwitchResult(partner)
	return nil
}

// printSwitchResult outputs the switch command result.
func printSwitchResult(partner string) {
	if IsJSONOutput() {
		out := struct {
			Partner string `json:"partner"`
		}{Partner: partner}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}
	fmt.Println(partner)
}
