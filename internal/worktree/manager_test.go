package worktree

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/relic/internal/git"
	"github.com/mmr-tortoise/relic/internal/model"
	"github.com/mmr-tortoise/relic/internal/store"
)

// setupTestRepo creates a temporary git repository with one commit, since
// checkout creation requires at least one commit to point at.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	runTestGit(t, dir, "init")
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")

	err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test Repo\n"), 0644)
	require.NoError(t, err)

	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "initial commit")

	return dir
}

func runTestGit(t *testing.T, dir string, args ...string) {
	t.Helper()

	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
}

// newTestManager wires a Manager against a per-test state database.
func newTestManager(t *testing.T) *Manager {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewManager(git.NewGateway(), s)
}

// createCheckout creates a checkout of HEAD and schedules directory
// cleanup. Checkouts land under the real system temp directory, so tests
// must reclaim them even on failure paths.
func createCheckout(t *testing.T, m *Manager, repo string) model.WorktreeRecord {
	t.Helper()

	record, err := m.Create(repo, "HEAD")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(record.Path) })
	return record
}

func TestCreate(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager(t)

	record := createCheckout(t, m, repo)

	// The checkout exists on disk with the repository contents.
	_, statErr := os.Stat(filepath.Join(record.Path, "README.md"))
	assert.NoError(t, statErr)

	// The record carries the full metadata.
	assert.NotEmpty(t, record.ID)
	assert.Len(t, record.CommitSHA, 40)
	assert.Equal(t, "initial commit", record.CommitMessage)
	assert.Equal(t, repo, record.OriginalRepoPath)
	assert.NotZero(t, record.CreatedAtMillis)

	// The record is in the registry.
	got, found, err := m.Get(record.Path)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, record, got)
}

func TestCreate_CommitNotFoundLeavesNoRecord(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager(t)

	_, err := m.Create(repo, "deadbeefdeadbeefdeadbeefdeadbeefdeadbeef")
	require.Error(t, err)
	assert.True(t, model.HasKind(err, model.KindCommitNotFound))

	// A failed creation must leave the registry untouched.
	records, err := m.All()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCreate_SameCommitTwiceFails(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager(t)

	first := createCheckout(t, m, repo)

	// The checkout path is deterministic per repo+revision, so a second
	// open of the same commit collides.
	_, err := m.Create(repo, "HEAD")
	require.Error(t, err)
	assert.True(t, model.HasKind(err, model.KindCheckoutExists))

	// Exactly one record remains and the first checkout is untouched.
	records, err := m.All()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, first.Path, records[0].Path)
	_, statErr := os.Stat(first.Path)
	assert.NoError(t, statErr)
}

func TestRemove(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager(t)

	record := createCheckout(t, m, repo)

	require.NoError(t, m.Remove(record.Path))

	// The directory is gone and the record dropped.
	_, statErr := os.Stat(record.Path)
	assert.True(t, os.IsNotExist(statErr))

	_, found, err := m.Get(record.Path)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRemove_DirtyCheckout(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager(t)

	record := createCheckout(t, m, repo)

	// Uncommitted content makes git refuse graceful removal; removal
	// must degrade to the forced tier and still succeed.
	require.NoError(t, os.WriteFile(filepath.Join(record.Path, "scratch.txt"), []byte("wip"), 0644))

	require.NoError(t, m.Remove(record.Path))
	_, statErr := os.Stat(record.Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRemove_Idempotent(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager(t)

	record := createCheckout(t, m, repo)

	require.NoError(t, m.Remove(record.Path))

	// Removing an already-removed checkout converges to a no-op.
	assert.NoError(t, m.Remove(record.Path))
}

func TestRemove_UnmanagedPathIsNoOp(t *testing.T) {
	m := newTestManager(t)

	// A path outside the managed namespace is never touched: removal
	// succeeds quietly and leaves the directory intact.
	victim := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(victim, "precious.txt"), []byte("keep\n"), 0644))

	require.NoError(t, m.Remove(victim))

	_, statErr := os.Stat(filepath.Join(victim, "precious.txt"))
	assert.NoError(t, statErr, "unmanaged content must survive")
}

func TestIsManaged(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager(t)

	record := createCheckout(t, m, repo)

	managed, err := m.IsManaged(record.Path)
	require.NoError(t, err)
	assert.True(t, managed)

	// A convention-following name that is not in the registry is not
	// managed: naming alone never authorizes anything.
	impostor := filepath.Join(os.TempDir(), "relic-impostor-00000000")
	managed, err = m.IsManaged(impostor)
	require.NoError(t, err)
	assert.False(t, managed)

	// Neither is an arbitrary path.
	managed, err = m.IsManaged(t.TempDir())
	require.NoError(t, err)
	assert.False(t, managed)
}

func TestForRepoAndByCommit(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager(t)

	record := createCheckout(t, m, repo)

	forRepo, err := m.ForRepo(repo)
	require.NoError(t, err)
	require.Len(t, forRepo, 1)
	assert.Equal(t, record.ID, forRepo[0].ID)

	forOther, err := m.ForRepo("/nowhere")
	require.NoError(t, err)
	assert.Empty(t, forOther)

	// Abbreviated commit lookup.
	byCommit, err := m.ByCommit(record.CommitSHA[:8])
	require.NoError(t, err)
	require.Len(t, byCommit, 1)
	assert.Equal(t, record.ID, byCommit[0].ID)
}

func TestCleanupStale_DroppedWhenDirectoryMissing(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager(t)

	record := createCheckout(t, m, repo)

	// The directory vanished out of band; reconciliation drops the
	// record without attempting any removal.
	require.NoError(t, os.RemoveAll(record.Path))

	dropped, err := m.CleanupStale(time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{record.Path}, dropped)

	records, err := m.All()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCleanupStale_OrphanedByMissingRepo(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager(t)

	record := createCheckout(t, m, repo)

	// The origin repository disappeared: git cannot remove the checkout,
	// so it is deleted directly.
	require.NoError(t, os.RemoveAll(repo))

	dropped, err := m.CleanupStale(time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{record.Path}, dropped)

	_, statErr := os.Stat(record.Path)
	assert.True(t, os.IsNotExist(statErr), "orphaned checkout should be deleted")
}

func TestCleanupStale_FreshCheckoutKept(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager(t)

	record := createCheckout(t, m, repo)

	dropped, err := m.CleanupStale(time.Now())
	require.NoError(t, err)
	assert.Empty(t, dropped)

	_, statErr := os.Stat(record.Path)
	assert.NoError(t, statErr, "a fresh checkout must survive the sweep")
}

func TestCleanupStale_OldCheckoutRemoved(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager(t)

	record := createCheckout(t, m, repo)

	// Simulate the passage of time by sweeping with a future clock.
	future := time.Now().Add(StaleAfter + time.Hour)
	dropped, err := m.CleanupStale(future)
	require.NoError(t, err)
	assert.Equal(t, []string{record.Path}, dropped)

	_, statErr := os.Stat(record.Path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCleanupAll(t *testing.T) {
	repo := setupTestRepo(t)
	m := newTestManager(t)

	record := createCheckout(t, m, repo)

	removed, err := m.CleanupAll()
	require.NoError(t, err)
	assert.Equal(t, []string{record.Path}, removed)

	_, statErr := os.Stat(record.Path)
	assert.True(t, os.IsNotExist(statErr))

	records, err := m.All()
	require.NoError(t, err)
	assert.Empty(t, records)
}
