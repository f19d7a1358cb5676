// Package cli — list.go implements the "relic list" command.
//
// List shows the isolated checkouts the registry knows about, as a text
// table or JSON array. By default only checkouts of the current
// repository are shown; --all widens the view to every repository.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/relic/internal/model"
	"github.com/mmr-tortoise/relic/internal/worktree"
)

// listFlags holds the flag values for the list command.
type listFlags struct {
	all bool // --all: list checkouts of every repository
}

// NewListCommand creates the "list" cobra command.
func NewListCommand() *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open isolated checkouts",
		Long: `List the isolated checkouts currently under management.

Each checkout is shown with its commit, age, path, and whether it has
passed the staleness threshold.

Examples:
  relic list
  relic list --all
  relic list --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(flags)
		},
	}

	cmd.Flags().BoolVar(&flags.all, "all", false, "List checkouts of every repository, not just the current one")

	return cmd
}

// runList loads the records in scope and prints them.
func runList(flags *listFlags) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	var records []model.WorktreeRecord
	if flags.all {
		records, err = sess.manager.All()
	} else {
		var repoRoot string
		repoRoot, err = currentRepoRoot(sess.gateway)
		if err != nil {
			return err
		}
		records, err = sess.manager.ForRepo(repoRoot)
	}
	if err != nil {
		return err
	}

	printListResult(records)
	return nil
}

// listEntryJSON is the JSON output structure for a single checkout.
type listEntryJSON struct {
	ID            string `json:"id"`
	Path          string `json:"path"`
	CommitSha     string `json:"commitSha"`
	CommitMessage string `json:"commitMessage"`
	Repo          string `json:"originalRepoPath"`
	CreatedAt     string `json:"createdAt"`
	Stale         bool   `json:"stale"`
	Missing       bool   `json:"missing"`
}

// printListResult outputs the checkout list in text or JSON format.
func printListResult(records []model.WorktreeRecord) {
	now := time.Now()

	if IsJSONOutput() {
		out := struct {
			Checkouts []listEntryJSON `json:"checkouts"`
		}{
			// Empty slice instead of nil so JSON output shows [] rather
			// than null when nothing is open.
			Checkouts: make([]listEntryJSON, 0, len(records)),
		}
		for _, record := range records {
			out.Checkouts = append(out.Checkouts, listEntryJSON{
				ID:            record.ID,
				Path:          record.Path,
				CommitSha:     record.CommitSHA,
				CommitMessage: record.CommitMessage,
				Repo:          record.OriginalRepoPath,
				CreatedAt:     record.CreatedAt().Format(time.RFC3339),
				Stale:         record.Age(now) > worktree.StaleAfter,
				Missing:       pathMissing(record.Path),
			})
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(records) == 0 {
		fmt.Println("No open checkouts.")
		return
	}

	fmt.Printf("%-10s %-12s %-8s %s\n", "COMMIT", "AGE", "STATE", "PATH")
	for _, record := range records {
		state := "open"
		switch {
		case pathMissing(record.Path):
			state = "missing"
		case record.Age(now) > worktree.StaleAfter:
			state = "stale"
		}
		fmt.Printf("%-10s %-12s %-8s %s\n",
			shortSha(record.CommitSHA),
			FormatAge(record.Age(now)),
			state,
			record.Path,
		)
	}
}

// pathMissing reports whether the checkout directory has disappeared.
func pathMissing(path string) bool {
	_, err := os.Lstat(path)
	return err != nil
}

// FormatAge renders a duration as a compact age string ("5m", "3h",
// "2d"). Exported for testing.
func FormatAge(age time.Duration) string {
	switch {
	case age < time.Minute:
		return "now"
	case age < time.Hour:
		return fmt.Sprintf("%dm", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd", int(age.Hours()/24))
	}
}
