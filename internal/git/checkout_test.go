package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/relic/internal/model"
)

func TestCreateIsolatedCheckout(t *testing.T) {
	repo := setupTestRepo(t)
	g := NewGateway()

	head, err := g.CurrentRevision(repo)
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "checkout")
	require.NoError(t, g.CreateIsolatedCheckout(repo, target, head))

	// The checkout directory exists and contains the committed file.
	_, statErr := os.Stat(filepath.Join(target, "README.md"))
	assert.NoError(t, statErr, "checkout should contain the repository contents")

	// The checkout is detached and pinned to the requested commit.
	rev, err := g.CurrentRevision(target)
	require.NoError(t, err)
	assert.Equal(t, head, rev)

	branch, err := g.CurrentBranch(target)
	require.NoError(t, err)
	assert.Empty(t, branch, "isolated checkouts are detached")
}

func TestCreateIsolatedCheckout_CommitNotFound(t *testing.T) {
	repo := setupTestRepo(t)
	g := NewGateway()

	target := filepath.Join(t.TempDir(), "checkout")
	err := g.CreateIsolatedCheckout(repo, target, "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
	require.Error(t, err)
	assert.True(t, model.HasKind(err, model.KindCommitNotFound))

	// The failed creation must leave nothing behind.
	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr), "no directory should exist after a failed create")
}

func TestCreateIsolatedCheckout_AlreadyExists(t *testing.T) {
	repo := setupTestRepo(t)
	g := NewGateway()

	head, err := g.CurrentRevision(repo)
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "checkout")
	require.NoError(t, g.CreateIsolatedCheckout(repo, target, head))

	// A second create at the same path surfaces the recoverable
	// already-exists error.
	err = g.CreateIsolatedCheckout(repo, target, head)
	require.Error(t, err)
	assert.True(t, model.HasKind(err, model.KindCheckoutExists))
}

func TestRemoveIsolatedCheckout(t *testing.T) {
	repo := setupTestRepo(t)
	g := NewGateway()

	head, err := g.CurrentRevision(repo)
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "checkout")
	require.NoError(t, g.CreateIsolatedCheckout(repo, target, head))

	require.NoError(t, g.RemoveIsolatedCheckout(repo, target, false))

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr), "checkout directory should be gone")
}

func TestRemoveIsolatedCheckout_DirtyNeedsForce(t *testing.T) {
	repo := setupTestRepo(t)
	g := NewGateway()

	head, err := g.CurrentRevision(repo)
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "checkout")
	require.NoError(t, g.CreateIsolatedCheckout(repo, target, head))

	// Untracked content makes git refuse graceful removal.
	require.NoError(t, os.WriteFile(filepath.Join(target, "scratch.txt"), []byte("wip"), 0644))

	err = g.RemoveIsolatedCheckout(repo, target, false)
	require.Error(t, err, "graceful removal should fail for a dirty checkout")

	// Forced removal succeeds.
	require.NoError(t, g.RemoveIsolatedCheckout(repo, target, true))
	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}

func TestListCheckouts(t *testing.T) {
	repo := setupTestRepo(t)
	g := NewGateway()

	head, err := g.CurrentRevision(repo)
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "checkout")
	require.NoError(t, g.CreateIsolatedCheckout(repo, target, head))

	checkouts, err := g.ListCheckouts(repo)
	require.NoError(t, err)
	// The main working tree plus the new checkout.
	require.Len(t, checkouts, 2)

	assert.False(t, checkouts[0].IsDetached, "main working tree is on a branch")
	assert.True(t, checkouts[1].IsDetached, "isolated checkout is detached")
	assert.Equal(t, head, checkouts[1].HEAD)
}

func TestPruneMetadata(t *testing.T) {
	repo := setupTestRepo(t)
	g := NewGateway()

	head, err := g.CurrentRevision(repo)
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "checkout")
	require.NoError(t, g.CreateIsolatedCheckout(repo, target, head))

	// Delete the directory behind git's back, then prune. The stale
	// administrative entry must disappear from the listing.
	require.NoError(t, os.RemoveAll(target))
	require.NoError(t, g.PruneMetadata(repo))

	checkouts, err := g.ListCheckouts(repo)
	require.NoError(t, err)
	assert.Len(t, checkouts, 1, "only the main working tree should remain after prune")
}

// --- parseCheckoutList unit tests ---

func TestParseCheckoutList(t *testing.T) {
	output := "worktree /path/to/main\n" +
		"HEAD abc123\n" +
		"branch refs/heads/main\n" +
		"\n" +
		"worktree /path/to/checkout\n" +
		"HEAD def456\n" +
		"detached\n"

	checkouts := parseCheckoutList(output)
	require.Len(t, checkouts, 2)

	assert.Equal(t, "/path/to/main", checkouts[0].Path)
	assert.Equal(t, "abc123", checkouts[0].HEAD)
	assert.Equal(t, "refs/heads/main", checkouts[0].Branch)
	assert.False(t, checkouts[0].IsDetached)

	assert.Equal(t, "/path/to/checkout", checkouts[1].Path)
	assert.Equal(t, "def456", checkouts[1].HEAD)
	assert.Empty(t, checkouts[1].Branch)
	assert.True(t, checkouts[1].IsDetached)
}

func TestParseCheckoutList_Bare(t *testing.T) {
	output := "worktree /path/to/bare\n" +
		"bare\n"

	checkouts := parseCheckoutList(output)
	require.Len(t, checkouts, 1)
	assert.True(t, checkouts[0].IsBare)
}

func TestParseCheckoutList_Empty(t *testing.T) {
	assert.Empty(t, parseCheckoutList(""))
}
