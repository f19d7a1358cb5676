package worktree

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mmr-tortoise/relic/internal/git"
	"github.com/mmr-tortoise/relic/internal/model"
	"github.com/mmr-tortoise/relic/internal/naming"
	"github.com/mmr-tortoise/relic/internal/store"
)

// StaleAfter is the age past which an untouched checkout is considered
// abandoned and becomes eligible for the stale sweep. Records carry no
// last-used timestamp, so creation age is the heuristic.
const StaleAfter = 24 * time.Hour

// Manager orchestrates checkout creation and removal against the gateway
// and keeps the durable registry consistent with the filesystem.
type Manager struct {
	gateway *git.Gateway
	store   *store.Store
}

// NewManager creates a Manager backed by the given gateway and state store.
func NewManager(gateway *git.Gateway, s *store.Store) *Manager {
	return &Manager{gateway: gateway, store: s}
}

// Create opens an isolated detached checkout of revision from the
// repository at repoPath and registers it.
//
// The revision is resolved first so a bad input fails before any
// filesystem mutation. The registry record is written only after the
// git-level creation succeeds; a creation failure therefore leaves no
// record behind. The checkout path is deterministic per repo+revision, so
// opening the same commit twice surfaces checkout-already-exists.
func (m *Manager) Create(repoPath, revision string) (model.WorktreeRecord, error) {
	sha, err := m.gateway.ResolveRevision(repoPath, revision)
	if err != nil {
		return model.WorktreeRecord{}, err
	}

	subject, err := m.gateway.CommitSubject(repoPath, sha)
	if err != nil {
		// The subject only decorates the path; resolution already proved
		// the commit exists.
		subject = ""
	}

	path := naming.CheckoutPath(repoPath, sha, subject)

	records, err := m.load()
	if err != nil {
		return model.WorktreeRecord{}, err
	}
	for _, record := range records {
		if record.Path == path {
			return model.WorktreeRecord{}, model.NewError(model.KindCheckoutExists,
				fmt.Sprintf("checkout already exists at %s", path))
		}
	}

	if err := m.gateway.CreateIsolatedCheckout(repoPath, path, sha); err != nil {
		return model.WorktreeRecord{}, err
	}

	now := time.Now()
	record := model.WorktreeRecord{
		ID:               naming.RecordID(repoPath, sha, now),
		Path:             path,
		CommitSHA:        sha,
		CommitMessage:    subject,
		OriginalRepoPath: repoPath,
		CreatedAtMillis:  now.UnixMilli(),
	}

	records = append(records, record)
	if err := m.save(records); err != nil {
		return model.WorktreeRecord{}, err
	}
	return record, nil
}

// Remove reclaims the checkout at path and drops its registry record.
//
// Removal degrades through three tiers: graceful git removal, forced git
// removal, then direct directory deletion. Whichever tier succeeds, a
// metadata prune is attempted afterward and its failure is swallowed. The
// record is untracked once the directory is gone, so repeated Remove
// calls on the same path converge to a no-op.
func (m *Manager) Remove(path string) error {
	record, found, err := m.Get(path)
	if err != nil {
		return err
	}
	if !found {
		// No record: only touch the directory if it follows the managed
		// naming convention. Anything else is not ours to delete, and not
		// ours to complain about either; callers that need a user-facing
		// "not managed" error raise it themselves.
		if !naming.IsManagedPath(path) {
			return nil
		}
		if _, statErr := os.Lstat(path); statErr == nil {
			return os.RemoveAll(path)
		}
		return nil
	}

	if err := m.removeDirectory(record); err != nil {
		return err
	}
	m.pruneQuietly(record.OriginalRepoPath)
	return m.untrack(record.Path)
}

// removeDirectory runs the three-tier removal for a registered checkout.
func (m *Manager) removeDirectory(record model.WorktreeRecord) error {
	if _, err := os.Lstat(record.Path); err != nil {
		// Already gone; only the record needs cleaning up.
		return nil
	}

	repo := record.OriginalRepoPath
	if err := m.gateway.RemoveIsolatedCheckout(repo, record.Path, false); err == nil {
		return nil
	}
	if err := m.gateway.RemoveIsolatedCheckout(repo, record.Path, true); err == nil {
		return nil
	}

	// Git refused twice (locked checkout, vanished origin repository).
	// The directory lives under the temp dir with the managed prefix, so
	// direct deletion is safe; the later prune clears git's metadata.
	if err := os.RemoveAll(record.Path); err != nil {
		return model.WrapError(model.KindCheckoutRemoveFailed,
			fmt.Sprintf("failed to remove checkout at %s", record.Path), err)
	}
	return nil
}

// pruneQuietly attempts a metadata prune and swallows any failure: prune
// is hygiene, never a correctness requirement.
func (m *Manager) pruneQuietly(repoPath string) {
	if repoPath == "" {
		return
	}
	_ = m.gateway.PruneMetadata(repoPath)
}

// IsManaged reports whether path is a checkout this manager owns: it must
// follow the naming convention AND appear in the registry. Either signal
// alone is insufficient to authorize destructive action.
func (m *Manager) IsManaged(path string) (bool, error) {
	if !naming.IsManagedPath(path) {
		return false, nil
	}
	_, found, err := m.Get(path)
	return found, err
}

// Get returns the record whose checkout lives at path.
func (m *Manager) Get(path string) (model.WorktreeRecord, bool, error) {
	records, err := m.load()
	if err != nil {
		return model.WorktreeRecord{}, false, err
	}
	for _, record := range records {
		if record.Path == path {
			return record, true, nil
		}
	}
	return model.WorktreeRecord{}, false, nil
}

// ForRepo returns every live record originating from the repository at
// repoPath, in creation order.
func (m *Manager) ForRepo(repoPath string) ([]model.WorktreeRecord, error) {
	records, err := m.load()
	if err != nil {
		return nil, err
	}
	var matched []model.WorktreeRecord
	for _, record := range records {
		if record.OriginalRepoPath == repoPath {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

// ByCommit returns records whose revision starts with shaPrefix, letting
// callers look up a checkout by an abbreviated commit identifier.
func (m *Manager) ByCommit(shaPrefix string) ([]model.WorktreeRecord, error) {
	records, err := m.load()
	if err != nil {
		return nil, err
	}
	var matched []model.WorktreeRecord
	for _, record := range records {
		if strings.HasPrefix(record.CommitSHA, shaPrefix) {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

// All returns every live record in creation order.
func (m *Manager) All() ([]model.WorktreeRecord, error) {
	return m.load()
}

// CleanupAll removes every registered checkout and returns the paths it
// reclaimed, so the orchestration layer can drop the matching pairs.
// Individual removal failures are skipped, not fatal: the sweep reclaims
// what it can, persists the survivors once at the end, and leaves failed
// records for the next run.
func (m *Manager) CleanupAll() ([]string, error) {
	records, err := m.load()
	if err != nil {
		return nil, err
	}

	kept := records[:0]
	var removed []string
	for _, record := range records {
		if err := m.removeDirectory(record); err != nil {
			kept = append(kept, record)
			continue
		}
		m.pruneQuietly(record.OriginalRepoPath)
		removed = append(removed, record.Path)
	}

	if len(removed) == 0 {
		return nil, nil
	}
	if err := m.save(kept); err != nil {
		return removed, err
	}
	return removed, nil
}

// CleanupStale reconciles the registry with the filesystem and reclaims
// abandoned checkouts. Three cases, per record:
//
//   - checkout directory missing: the record is dropped (nothing to delete)
//   - origin repository missing: the directory is deleted directly and the
//     record dropped (git cannot remove a worktree whose repo is gone)
//   - older than StaleAfter: full removal is attempted; a failure is
//     swallowed and the record kept so the next sweep retries
//
// It returns the paths of the records dropped from the registry, so the
// orchestration layer can drop the matching pairs.
func (m *Manager) CleanupStale(now time.Time) ([]string, error) {
	records, err := m.load()
	if err != nil {
		return nil, err
	}

	kept := records[:0]
	var dropped []string
	for _, record := range records {
		if _, err := os.Lstat(record.Path); err != nil {
			dropped = append(dropped, record.Path)
			continue
		}

		if _, err := os.Lstat(record.OriginalRepoPath); err != nil {
			if err := os.RemoveAll(record.Path); err == nil {
				dropped = append(dropped, record.Path)
				continue
			}
			kept = append(kept, record)
			continue
		}

		if record.Age(now) > StaleAfter {
			if err := m.removeDirectory(record); err == nil {
				m.pruneQuietly(record.OriginalRepoPath)
				dropped = append(dropped, record.Path)
				continue
			}
		}
		kept = append(kept, record)
	}

	if len(dropped) == 0 {
		return nil, nil
	}
	if err := m.save(kept); err != nil {
		return dropped, err
	}
	return dropped, nil
}

// untrack drops the record at path from the registry, if present.
func (m *Manager) untrack(path string) error {
	records, err := m.load()
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, record := range records {
		if record.Path == path {
			continue
		}
		kept = append(kept, record)
	}
	return m.save(kept)
}

// load reads the full record collection. A never-written key is an empty
// collection, not an error.
func (m *Manager) load() ([]model.WorktreeRecord, error) {
	raw, err := m.store.Get(store.KeyWorktrees)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var records []model.WorktreeRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("corrupt worktree registry: %w", err)
	}
	return records, nil
}

// save rewrites the full record collection.
func (m *Manager) save(records []model.WorktreeRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode worktree registry: %w", err)
	}
	return m.store.Put(store.KeyWorktrees, raw)
}
