package pairing

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/relic/internal/store"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewRegistry(s)
}

func TestRegister(t *testing.T) {
	r := newTestRegistry(t)

	pair, err := r.Register("/home/dev/app", "/tmp/relic-app-01234567")
	require.NoError(t, err)

	assert.NotEmpty(t, pair.ID)
	assert.Equal(t, "/home/dev/app", pair.OriginalPath)
	assert.Equal(t, "/tmp/relic-app-01234567", pair.WorktreePath)
	assert.NotZero(t, pair.CreatedAtMillis)

	pairs, err := r.All()
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
}

func TestPartner_Symmetric(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Register("/home/dev/app", "/tmp/relic-app-01234567")
	require.NoError(t, err)

	// Lookup works from either side of the pair.
	partner, found, err := r.Partner("/home/dev/app")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/tmp/relic-app-01234567", partner)

	partner, found, err = r.Partner("/tmp/relic-app-01234567")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/home/dev/app", partner)
}

func TestPartner_UnknownPath(t *testing.T) {
	r := newTestRegistry(t)

	_, found, err := r.Partner("/somewhere/else")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRegister_EvictsPriorPairs(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Register("/home/dev/app", "/tmp/relic-app-aaaa")
	require.NoError(t, err)

	// Re-registering the same origin with a new checkout evicts the old
	// pair entirely; the old checkout is left unpaired.
	_, err = r.Register("/home/dev/app", "/tmp/relic-app-bbbb")
	require.NoError(t, err)

	pairs, err := r.All()
	require.NoError(t, err)
	require.Len(t, pairs, 1, "each path participates in at most one pair")

	partner, found, err := r.Partner("/home/dev/app")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/tmp/relic-app-bbbb", partner)

	_, found, err = r.Partner("/tmp/relic-app-aaaa")
	require.NoError(t, err)
	assert.False(t, found, "the evicted checkout has no partner")
}

func TestIsOriginSideAndIsCheckoutSide(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Register("/home/dev/app", "/tmp/relic-app-01234567")
	require.NoError(t, err)

	origin, err := r.IsOriginSide("/home/dev/app")
	require.NoError(t, err)
	assert.True(t, origin)

	origin, err = r.IsOriginSide("/tmp/relic-app-01234567")
	require.NoError(t, err)
	assert.False(t, origin)

	checkout, err := r.IsCheckoutSide("/tmp/relic-app-01234567")
	require.NoError(t, err)
	assert.True(t, checkout)

	checkout, err = r.IsCheckoutSide("/home/dev/app")
	require.NoError(t, err)
	assert.False(t, checkout)
}

func TestUnregister(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Register("/home/dev/app", "/tmp/relic-app-01234567")
	require.NoError(t, err)

	// Unregister works from either endpoint.
	removed, err := r.Unregister("/tmp/relic-app-01234567")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	pairs, err := r.All()
	require.NoError(t, err)
	assert.Empty(t, pairs)

	// A second unregister is a harmless no-op.
	removed, err = r.Unregister("/tmp/relic-app-01234567")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestAll_EmptyRegistry(t *testing.T) {
	r := newTestRegistry(t)

	pairs, err := r.All()
	require.NoError(t, err)
	assert.Empty(t, pairs, "a never-written registry is an empty collection")
}
