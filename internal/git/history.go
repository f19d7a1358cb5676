package git

import (
	"strconv"
	"strings"
	"time"
)

// Field and record separators used in the log format string. ASCII unit
// and record separators cannot appear in commit metadata, which makes the
// output unambiguous even for multi-line commit messages.
const (
	logFieldSep  = "\x1f"
	logRecordSep = "\x1e"
)

// Commit holds the metadata of one commit as returned by Log.
type Commit struct {
	// Hash is the full commit identifier.
	Hash string

	// Subject is the first line of the commit message.
	Subject string

	// Body is the full commit message including the subject.
	Body string

	// AuthorName and AuthorEmail identify the commit author.
	AuthorName  string
	AuthorEmail string

	// AuthorDate is the author timestamp.
	AuthorDate time.Time
}

// ShortHash returns the abbreviated commit identifier used for display.
func (c Commit) ShortHash() string {
	if len(c.Hash) < 8 {
		return c.Hash
	}
	return c.Hash[:8]
}

// Log returns up to maxCount commits reachable from HEAD at repoPath,
// newest first. Each field is requested with an explicit format code
// (hash, author name/email, strict ISO date, full message) so parsing
// does not depend on locale or git display configuration.
func (g *Gateway) Log(repoPath string, maxCount int) ([]Commit, error) {
	format := strings.Join([]string{"%H", "%an", "%ae", "%aI", "%B"}, logFieldSep) + logRecordSep
	output, err := runGit(repoPath,
		"log", "--max-count="+strconv.Itoa(maxCount), "--pretty=format:"+format)
	if err != nil {
		return nil, err
	}
	return parseLog(output), nil
}

// CommitSubject returns the subject line of the given revision.
func (g *Gateway) CommitSubject(repoPath, sha string) (string, error) {
	output, err := runGit(repoPath, "log", "-1", "--pretty=format:%s", sha)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// parseLog splits record-separated log output into Commits. Malformed
// records (wrong field count) are skipped rather than failing the whole
// listing.
func parseLog(output string) []Commit {
	var commits []Commit
	for _, record := range strings.Split(output, logRecordSep) {
		record = strings.TrimLeft(record, "\n")
		if strings.TrimSpace(record) == "" {
			continue
		}
		fields := strings.SplitN(record, logFieldSep, 5)
		if len(fields) != 5 {
			continue
		}

		body := strings.TrimRight(fields[4], "\n")
		subject, _, _ := strings.Cut(body, "\n")

		commit := Commit{
			Hash:        fields[0],
			Subject:     strings.TrimSpace(subject),
			Body:        body,
			AuthorName:  fields[1],
			AuthorEmail: fields[2],
		}
		if date, err := time.Parse(time.RFC3339, fields[3]); err == nil {
			commit.AuthorDate = date
		}
		commits = append(commits, commit)
	}
	return commits
}

// FileChange describes one file's change in a diff summary.
type FileChange struct {
	// Path is the file path after the change (the new name for renames).
	Path string

	// Status is the single-letter change status: A (added), M (modified),
	// D (deleted), R (renamed).
	Status string

	// Additions and Deletions are changed line counts. Both are -1 for
	// binary files, for which git reports no line counts.
	Additions int
	Deletions int
}

// DiffSummary returns the per-file change summary of the working tree at
// dir against the given revision. It combines `diff --name-status` (change
// status, rename detection) with `diff --numstat` (line counts), joined by
// the post-change path.
func (g *Gateway) DiffSummary(dir, rev string) ([]FileChange, error) {
	statusOut, err := runGit(dir, "diff", "--name-status", "-M", rev)
	if err != nil {
		return nil, err
	}
	numstatOut, err := runGit(dir, "diff", "--numstat", "-M", rev)
	if err != nil {
		return nil, err
	}

	counts := parseNumstat(numstatOut)

	var changes []FileChange
	for _, line := range strings.Split(strings.TrimRight(statusOut, "\n"), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}

		// Rename lines carry a similarity score ("R100"); only the
		// leading letter is the status. Renames list old then new path.
		status := fields[0][:1]
		path := fields[1]
		if status == "R" && len(fields) >= 3 {
			path = fields[2]
		}

		change := FileChange{Path: path, Status: status, Additions: -1, Deletions: -1}
		if c, ok := counts[path]; ok {
			change.Additions = c.additions
			change.Deletions = c.deletions
		}
		changes = append(changes, change)
	}
	return changes, nil
}

type lineCounts struct {
	additions int
	deletions int
}

// parseNumstat parses `diff --numstat` output into a map keyed by the
// post-change path. Binary files report "-" for both counts and map to
// -1/-1. Rename lines use the "old => new" arrow form, optionally with a
// shared-prefix brace form like "dir/{a.txt => b.txt}".
func parseNumstat(output string) map[string]lineCounts {
	counts := make(map[string]lineCounts)
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 {
			continue
		}

		c := lineCounts{additions: -1, deletions: -1}
		if fields[0] != "-" {
			c.additions, _ = strconv.Atoi(fields[0])
		}
		if fields[1] != "-" {
			c.deletions, _ = strconv.Atoi(fields[1])
		}
		counts[numstatNewPath(fields[2])] = c
	}
	return counts
}

// numstatNewPath resolves the post-change path from a numstat path field,
// expanding git's rename notations.
func numstatNewPath(field string) string {
	if open := strings.Index(field, "{"); open != -1 {
		if close := strings.Index(field, "}"); close > open {
			inner := field[open+1 : close]
			if _, newPart, ok := strings.Cut(inner, " => "); ok {
				// "dir/{old => new}/rest" collapses to "dir/new/rest";
				// an empty side leaves a double slash to clean up.
				joined := field[:open] + newPart + field[close+1:]
				return strings.ReplaceAll(joined, "//", "/")
			}
		}
	}
	if _, newPart, ok := strings.Cut(field, " => "); ok {
		return newPart
	}
	return field
}
