package naming

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutPath(t *testing.T) {
	path := CheckoutPath("/home/dev/my-app", "0123456789abcdef0123456789abcdef01234567", "Fix login bug")

	base := filepath.Base(path)
	assert.Equal(t, "relic-my-app-01234567-fix-login-bug", base)
	assert.Equal(t, filepath.Clean(os.TempDir()), filepath.Dir(path),
		"checkouts live directly under the system temp directory")
}

func TestCheckoutPath_Deterministic(t *testing.T) {
	a := CheckoutPath("/home/dev/app", "0123456789abcdef0123456789abcdef01234567", "message")
	b := CheckoutPath("/home/dev/app", "0123456789abcdef0123456789abcdef01234567", "message")
	assert.Equal(t, a, b, "same repo+revision must map to the same path")
}

func TestCheckoutPath_NoSlug(t *testing.T) {
	path := CheckoutPath("/home/dev/app", "0123456789abcdef0123456789abcdef01234567", "!!! ...")
	assert.Equal(t, "relic-app-01234567", filepath.Base(path),
		"an unusable message drops the slug entirely")
}

func TestRecordID_UniqueOverTime(t *testing.T) {
	t1 := time.UnixMilli(1000)
	t2 := time.UnixMilli(2000)

	id1 := RecordID("/home/dev/app", "0123456789abcdef", t1)
	id2 := RecordID("/home/dev/app", "0123456789abcdef", t2)

	assert.NotEqual(t, id1, id2, "record IDs for the same repo+revision differ by timestamp")
	assert.True(t, strings.HasPrefix(id1, "app-01234567-"))
}

func TestSanitizeRepoName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean", "my-app", "my-app"},
		{"spaces and dots", "my app.v2", "myappv2"},
		{"unicode stripped", "プロジェクト", "repo"},
		{"leading hyphens trimmed", "--app--", "app"},
		{"underscore kept", "my_app", "my_app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeRepoName(tt.in))
		})
	}
}

func TestSanitizeRepoName_Truncates(t *testing.T) {
	long := strings.Repeat("a", 100)
	assert.Len(t, SanitizeRepoName(long), maxRepoNameLen)
}

func TestShortSha(t *testing.T) {
	assert.Equal(t, "01234567", ShortSha("0123456789abcdef0123456789abcdef01234567"))
	assert.Equal(t, "abc", ShortSha("abc"), "short input passes through unchanged")
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"three words max", "Fix the login bug in auth", "fix-the-login"},
		{"lowercased", "ADD Feature", "add-feature"},
		{"punctuation stripped", "fix: crash (again)", "fix-crash-again"},
		{"subject line only", "first line\nsecond line ignored", "first-line"},
		{"empty", "", ""},
		{"only punctuation", "!!! ???", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.in))
		})
	}
}

func TestIsManagedPath(t *testing.T) {
	managed := filepath.Join(os.TempDir(), "relic-app-01234567")
	assert.True(t, IsManagedPath(managed))

	// Prefix alone is not enough: the path must sit directly under the
	// temp directory.
	elsewhere := filepath.Join(t.TempDir(), "relic-app-01234567")
	require.NotEqual(t, filepath.Clean(os.TempDir()), filepath.Dir(elsewhere))
	assert.False(t, IsManagedPath(elsewhere))

	// Location alone is not enough either: the prefix must match.
	unprefixed := filepath.Join(os.TempDir(), "other-app-01234567")
	assert.False(t, IsManagedPath(unprefixed))

	// Nested under a managed dir does not count.
	nested := filepath.Join(managed, "sub")
	assert.False(t, IsManagedPath(nested))
}
