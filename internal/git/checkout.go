package git

import (
	"fmt"
	"strings"

	"github.com/mmr-tortoise/relic/internal/model"
)

// CheckoutInfo holds metadata about a single linked working tree as parsed
// from `git worktree list --porcelain` output.
//
// Example porcelain block:
//
//	worktree /path/to/checkout
//	HEAD abc123def456
//	detached
type CheckoutInfo struct {
	// Path is the absolute filesystem path to the checkout directory.
	Path string

	// HEAD is the commit the checkout currently points to.
	HEAD string

	// Branch is the full branch reference (e.g. "refs/heads/main").
	// Empty when the checkout is detached.
	Branch string

	// IsDetached indicates a detached HEAD checkout — the state every
	// relic-created checkout is in.
	IsDetached bool

	// IsBare indicates the entry represents a bare repository.
	IsBare bool
}

// CreateIsolatedCheckout creates a detached checkout of sha at targetPath,
// backed by the repository at repoPath.
//
// The revision is verified first; a missing revision fails with
// commit-not-found before any filesystem mutation. A git failure whose
// message carries an "already exists" signal maps to
// checkout-already-exists (recoverable — the caller may offer to reuse the
// existing checkout); every other failure maps to checkout-creation-failed
// with the underlying error preserved.
func (g *Gateway) CreateIsolatedCheckout(repoPath, targetPath, sha string) error {
	if !g.RevisionExists(repoPath, sha) {
		return model.NewError(model.KindCommitNotFound,
			fmt.Sprintf("revision %q not found in %s", sha, repoPath))
	}

	_, err := runGit(repoPath, "worktree", "add", "--detach", targetPath, sha)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return model.WrapError(model.KindCheckoutExists,
				fmt.Sprintf("checkout already exists at %s", targetPath), err)
		}
		return model.WrapError(model.KindCheckoutCreateFailed,
			fmt.Sprintf("failed to create checkout at %s", targetPath), err)
	}
	return nil
}

// RemoveIsolatedCheckout removes the checkout at targetPath via git. With
// force, uncommitted changes in the checkout do not block removal.
//
// A "locked" signal in the git error maps to checkout-locked; every other
// failure maps to checkout-removal-failed. The caller owns the fallback
// strategy (retry forced, then direct deletion) — this method performs a
// single attempt.
func (g *Gateway) RemoveIsolatedCheckout(repoPath, targetPath string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, targetPath)

	_, err := runGit(repoPath, args...)
	if err != nil {
		if strings.Contains(err.Error(), "locked") {
			return model.WrapError(model.KindCheckoutLocked,
				fmt.Sprintf("checkout at %s is locked", targetPath), err)
		}
		return model.WrapError(model.KindCheckoutRemoveFailed,
			fmt.Sprintf("failed to remove checkout at %s", targetPath), err)
	}
	return nil
}

// PruneMetadata removes stale worktree administrative entries (broken
// links left behind when a checkout directory was deleted directly).
func (g *Gateway) PruneMetadata(repoPath string) error {
	_, err := runGit(repoPath, "worktree", "prune")
	return err
}

// ListCheckouts returns all working trees attached to the repository at
// repoPath, including the main working tree, parsed from
// `git worktree list --porcelain`.
func (g *Gateway) ListCheckouts(repoPath string) ([]CheckoutInfo, error) {
	output, err := runGit(repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseCheckoutList(output), nil
}

// parseCheckoutList parses `git worktree list --porcelain` output.
//
// Blocks are separated by blank lines. Within a block each line is a
// space-separated key-value pair; "bare" and "detached" are standalone
// markers.
func parseCheckoutList(output string) []CheckoutInfo {
	var checkouts []CheckoutInfo

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	var current *CheckoutInfo
	for _, line := range lines {
		// A blank line ends the current block.
		if line == "" {
			if current != nil {
				checkouts = append(checkouts, *current)
				current = nil
			}
			continue
		}

		key, value, _ := strings.Cut(line, " ")
		switch key {
		case "worktree":
			current = &CheckoutInfo{Path: value}
		case "HEAD":
			if current != nil {
				current.HEAD = value
			}
		case "branch":
			if current != nil {
				current.Branch = value
			}
		case "detached":
			if current != nil {
				current.IsDetached = true
			}
		case "bare":
			if current != nil {
				current.IsBare = true
			}
		}
	}

	// The last block may not be followed by a blank line.
	if current != nil {
		checkouts = append(checkouts, *current)
	}

	return checkouts
}
