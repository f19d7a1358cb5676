// Package naming derives the deterministic, collision-resistant, and
// human-readable names relic uses for isolated checkouts, and provides the
// predicate that recognizes relic-owned paths.
//
// All functions are pure: they touch neither the filesystem nor git.
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Prefix marks every directory relic creates under the system temp
// directory. Recognition of relic-owned paths keys off this prefix plus
// the temp-dir location; neither alone is sufficient to claim a path.
const Prefix = "relic-"

const (
	maxRepoNameLen = 32
	shortShaLen    = 8
	maxSlugWords   = 3
	maxSlugLen     = 24
)

// CheckoutPath returns the temp-directory path for a checkout of sha in
// the repository at repoPath, optionally decorated with a slug of the
// commit message:
//
//	<tmp>/relic-<repo>-<shortsha>[-<slug>]
//
// The path is deterministic for a given repo+revision, so a second
// checkout attempt for the same pair lands on the same path and surfaces
// git's "already exists" error; uniqueness over time is carried by the
// record ID, not the path.
func CheckoutPath(repoPath, sha, message string) string {
	name := Prefix + SanitizeRepoName(filepath.Base(repoPath)) + "-" + ShortSha(sha)
	if slug := Slug(message); slug != "" {
		name += "-" + slug
	}
	return filepath.Join(os.TempDir(), name)
}

// RecordID derives a registry record identifier from the repository name,
// the short revision, and the creation timestamp. The timestamp makes IDs
// unique across repeated open/close cycles of the same commit.
func RecordID(repoPath, sha string, createdAt time.Time) string {
	return fmt.Sprintf("%s-%s-%d",
		SanitizeRepoName(filepath.Base(repoPath)), ShortSha(sha), createdAt.UnixMilli())
}

// SanitizeRepoName reduces a repository directory name to [A-Za-z0-9-_]
// and truncates it, so it is safe inside a flat temp-directory namespace.
func SanitizeRepoName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	sanitized := strings.Trim(b.String(), "-")
	if sanitized == "" {
		sanitized = "repo"
	}
	if len(sanitized) > maxRepoNameLen {
		sanitized = sanitized[:maxRepoNameLen]
	}
	return sanitized
}

// ShortSha abbreviates a revision identifier for use in names.
func ShortSha(sha string) string {
	if len(sha) <= shortShaLen {
		return sha
	}
	return sha[:shortShaLen]
}

// Slug converts the first few words of a commit message into a lowercase
// hyphenated fragment. Returns "" when the message yields nothing usable.
func Slug(message string) string {
	subject, _, _ := strings.Cut(message, "\n")
	words := strings.Fields(subject)
	if len(words) > maxSlugWords {
		words = words[:maxSlugWords]
	}

	var parts []string
	for _, word := range words {
		var b strings.Builder
		for _, r := range strings.ToLower(word) {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			parts = append(parts, b.String())
		}
	}

	slug := strings.Join(parts, "-")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	return slug
}

// IsManagedPath reports whether path follows relic's naming convention:
// a directory directly under the system temp directory whose name carries
// the relic prefix. Naming alone never authorizes destructive action —
// callers must additionally consult the registry (see the lifecycle
// manager's IsManaged).
func IsManagedPath(path string) bool {
	cleaned := filepath.Clean(path)
	if !strings.HasPrefix(filepath.Base(cleaned), Prefix) {
		return false
	}
	return filepath.Dir(cleaned) == filepath.Clean(os.TempDir())
}
