// Package cli — log.go implements the "relic log" command.
//
// Log lists recent commits of the current repository so the user can pick
// one to open. Commits that already have an open checkout are marked, and
// the listing depth follows the configured history limit.
package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/relic/internal/git"
)

// logFlags holds the flag values for the log command.
type logFlags struct {
	depth int  // --depth: override the configured history depth
	stat  bool // --stat: show how the working tree differs from each commit
}

// NewLogCommand creates the "log" cobra command.
func NewLogCommand() *cobra.Command {
	flags := &logFlags{}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List recent commits available to open",
		Long: `List recent commits of the current repository, newest first. Commits
that already have an open checkout are marked with an asterisk.

With --stat, each commit also shows how the current working tree differs
from it (files changed, lines added and deleted), which helps pick the
right commit to open.

Examples:
  relic log
  relic log --depth 20
  relic log --stat --depth 5
  relic log --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(flags)
		},
	}

	cmd.Flags().IntVar(&flags.depth, "depth", 0, "Number of commits to list (default: from settings)")
	cmd.Flags().BoolVar(&flags.stat, "stat", false, "Show the working tree's diff summary against each commit")

	return cmd
}

// runLog lists the commits and marks those with open checkouts.
func runLog(flags *logFlags) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.close()

	repoRoot, err := currentRepoRoot(sess.gateway)
	if err != nil {
		return err
	}

	depth := flags.depth
	if depth <= 0 {
		settings, err := settingsForRepo(repoRoot)
		if err != nil {
			return err
		}
		depth = settings.MaxHistoryDepth
	}

	commits, err := sess.gateway.Log(repoRoot, depth)
	if err != nil {
		return err
	}

	// Index the open checkouts of this repository by commit so each log
	// line can carry its marker.
	records, err := sess.manager.ForRepo(repoRoot)
	if err != nil {
		return err
	}
	open := make(map[string]bool, len(records))
	for _, record := range records {
		open[record.CommitSHA] = true
	}

	// With --stat, summarize how the working tree differs from each
	// listed commit. One failure skips that commit's summary only.
	stats := make(map[string][]git.FileChange)
	if flags.stat {
		for _, commit := range commits {
			changes, err := sess.gateway.DiffSummary(repoRoot, commit.Hash)
			if err != nil {
				VerboseLog("diff summary for %s failed: %v", commit.ShortHash(), err)
				continue
			}
			stats[commit.Hash] = changes
		}
	}

	printLogResult(commits, open, stats)
	return nil
}

// logEntryJSON is the JSON output structure for a single commit.
type logEntryJSON struct {
	Hash        string          `json:"hash"`
	Subject     string          `json:"subject"`
	AuthorName  string          `json:"authorName"`
	AuthorEmail string          `json:"authorEmail"`
	AuthorDate  string          `json:"authorDate"`
	Open        bool            `json:"open"`
	Diff        []logChangeJSON `json:"diff,omitempty"`
}

// logChangeJSON is the JSON output structure for one file in a commit's
// diff summary.
type logChangeJSON struct {
	Path      string `json:"path"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// printLogResult outputs the commit listing in text or JSON format.
func printLogResult(commits []git.Commit, open map[string]bool, stats map[string][]git.FileChange) {
	if IsJSONOutput() {
		out := struct {
			Commits []logEntryJSON `json:"commits"`
		}{
			Commits: make([]logEntryJSON, 0, len(commits)),
		}
		for _, commit := range commits {
			entry := logEntryJSON{
				Hash:        commit.Hash,
				Subject:     commit.Subject,
				AuthorName:  commit.AuthorName,
				AuthorEmail: commit.AuthorEmail,
				AuthorDate:  commit.AuthorDate.Format(time.RFC3339),
				Open:        open[commit.Hash],
			}
			for _, change := range stats[commit.Hash] {
				entry.Diff = append(entry.Diff, logChangeJSON{
					Path:      change.Path,
					Status:    change.Status,
					Additions: change.Additions,
					Deletions: change.Deletions,
				})
			}
			out.Commits = append(out.Commits, entry)
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	for _, commit := range commits {
		marker := " "
		if open[commit.Hash] {
			marker = "*"
		}
		fmt.Printf("%s %s  %s  %s <%s>\n",
			marker,
			commit.ShortHash(),
			commit.Subject,
			commit.AuthorName,
			commit.AuthorEmail,
		)
		if changes, ok := stats[commit.Hash]; ok {
			fmt.Printf("    %s\n", FormatDiffStat(changes))
		}
	}
}

// FormatDiffStat renders a diff summary as a compact one-liner, e.g.
// "3 files changed, +42 -7". Binary files (no line counts) are excluded
// from the totals. Exported for testing.
func FormatDiffStat(changes []git.FileChange) string {
	if len(changes) == 0 {
		return "no differences"
	}

	additions, deletions := 0, 0
	for _, change := range changes {
		if change.Additions > 0 {
			additions += change.Additions
		}
		if change.Deletions > 0 {
			deletions += change.Deletions
		}
	}

	noun := "files"
	if len(changes) == 1 {
		noun = "file"
	}
	return fmt.Sprintf("%d %s changed, +%d -%d", len(changes), noun, additions, deletions)
}
