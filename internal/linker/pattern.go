// Package linker decides which entries of a source workspace should be
// symlinked into an isolated checkout, and executes that plan.
//
// Symlinks share external mutable state (secrets files, dependency trees)
// between the origin workspace and a checkout without duplicating it.
// Planning and execution are split: Plan is a pure filesystem read that
// degrades gracefully on unreadable directories, Link is best-effort and
// collects per-entry outcomes into a model.LinkResult instead of failing
// the pass.
package linker

import (
	"regexp"
	"strings"
)

// Compile translates a glob pattern into an anchored, case-insensitive
// regular expression. Only two metacharacters are supported: `*` matches
// any run of characters and `?` matches a single character; everything
// else, including `.`, is literal.
//
// The compiler is deliberately independent of any glob library so the
// matching semantics stay portable and testable in isolation.
func Compile(pattern string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("(?i)^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

// compileAll compiles a pattern list, dropping empty patterns.
func compileAll(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		compiled = append(compiled, Compile(pattern))
	}
	return compiled
}

// matchesAny reports whether name matches any of the compiled patterns.
func matchesAny(name string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}
