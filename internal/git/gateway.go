package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/mmr-tortoise/relic/internal/model"
)

// Gateway provides git operations by invoking the git CLI.
//
// It is stateless — all methods receive the repository or working
// directory path as a parameter.
type Gateway struct{}

// NewGateway creates a new Gateway instance. There is no initialization
// logic today; the constructor follows Go convention so setup code can be
// added later without breaking callers.
func NewGateway() *Gateway {
	return &Gateway{}
}

// IsRepository reports whether dir is inside a git repository.
func (g *Gateway) IsRepository(dir string) bool {
	_, err := runGit(dir, "rev-parse", "--git-dir")
	return err == nil
}

// RepoRoot returns the top-level directory of the working tree containing
// dir. For a linked checkout this is the checkout root, not the main
// repository root.
func (g *Gateway) RepoRoot(dir string) (string, error) {
	output, err := runGit(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", model.WrapError(model.KindRepoDetection,
			fmt.Sprintf("not inside a git repository: %s", dir), err)
	}
	return strings.TrimSpace(output), nil
}

// CurrentBranch returns the short name of the currently checked-out
// branch, or "" if the repository is in a detached HEAD state.
func (g *Gateway) CurrentBranch(dir string) (string, error) {
	output, err := runGit(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	branch := strings.TrimSpace(output)
	if branch == "HEAD" {
		return "", nil // detached
	}
	return branch, nil
}

// CurrentRevision returns the full revision identifier of HEAD.
func (g *Gateway) CurrentRevision(dir string) (string, error) {
	output, err := runGit(dir, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// RevisionExists reports whether sha resolves to a commit in the
// repository at repoPath. Only the exit code matters; the output (the
// resolved object id) is discarded.
func (g *Gateway) RevisionExists(repoPath, sha string) bool {
	_, err := runGit(repoPath, "rev-parse", "--verify", "--quiet", sha+"^{commit}")
	return err == nil
}

// ResolveRevision resolves a revision expression (short sha, ref name,
// HEAD~n, ...) to the full commit identifier.
func (g *Gateway) ResolveRevision(repoPath, rev string) (string, error) {
	output, err := runGit(repoPath, "rev-parse", "--verify", rev+"^{commit}")
	if err != nil {
		return "", model.WrapError(model.KindCommitNotFound,
			fmt.Sprintf("revision %q not found", rev), err)
	}
	return strings.TrimSpace(output), nil
}

// IsDirty reports whether the working tree at dir has uncommitted
// changes, including untracked files.
func (g *Gateway) IsDirty(dir string) (bool, error) {
	output, err := runGit(dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(output) != "", nil
}

// runGit executes a git command with the given arguments against dir.
//
// It captures stdout and stderr separately. On success it returns stdout;
// on failure it returns an error that includes the trimmed stderr output
// for diagnostics. A missing git binary is reported as the fatal
// tool-missing error so it surfaces identically from every operation.
//
// The dir parameter is passed via the -C flag, which git handles itself
// and which works with every subcommand; this avoids mutating the
// process working directory.
func runGit(dir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", dir}, args...)

	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.Command("git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", model.NewFatalError(model.KindToolMissing,
				"git binary not found in PATH", err)
		}
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", fmt.Errorf("%s: %w", message, err)
	}

	return stdout.String(), nil
}
