package linker

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/relic/internal/model"
)

// Link executes a plan, creating symlinks under targetDir that point back
// at the absolute source paths.
//
// Files are linked before directories — the ordering has no correctness
// impact but is a documented determinism guarantee for the result lists.
// An entry whose target path already exists is recorded as skipped and
// left untouched: linking never clobbers. A creation failure records the
// entry as failed with a human-readable warning and the pass continues —
// partial linking is a valid, reported outcome.
func Link(sourceDir, targetDir string, plan Plan) model.LinkResult {
	var result model.LinkResult

	for _, rel := range plan.Files {
		linkOne(sourceDir, targetDir, rel, rel, &result)
	}
	for _, dir := range plan.Directories {
		// Directories are reported with a trailing slash so callers can
		// tell a wholesale directory link from a single file.
		linkOne(sourceDir, targetDir, dir, dir+"/", &result)
	}

	return result
}

// linkOne links a single planned entry, appending the outcome to result.
// rel is the path relative to both roots; display is how the entry is
// reported in the result lists.
func linkOne(sourceDir, targetDir, rel, display string, result *model.LinkResult) {
	source, err := filepath.Abs(filepath.Join(sourceDir, filepath.FromSlash(rel)))
	if err != nil {
		result.Failed = append(result.Failed, display)
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("could not resolve source path for %s: %v", display, err))
		return
	}
	target := filepath.Join(targetDir, filepath.FromSlash(rel))

	// Lstat, not Stat: a dangling symlink at the target still counts as
	// existing and must not be overwritten.
	if _, err := os.Lstat(target); err == nil {
		result.Skipped = append(result.Skipped, display)
		return
	}

	// Parent creation must immediately precede the link attempt — the
	// only filesystem ordering this subsystem relies on.
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		result.Failed = append(result.Failed, display)
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("could not create parent directory for %s: %v", display, err))
		return
	}

	if err := os.Symlink(source, target); err != nil {
		result.Failed = append(result.Failed, display)
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("could not link %s: %v", display, err))
		return
	}

	result.Linked = append(result.Linked, display)
}

// SecretsWarnings returns one warning per planned entry whose name
// matches a secrets pattern. The warnings inform the user that sensitive
// state is about to be shared with the checkout; they never block the
// linking pass.
func SecretsWarnings(plan Plan, secretsPatterns []string) []string {
	pats := compileAll(secretsPatterns)
	if len(pats) == 0 {
		return nil
	}

	var warnings []string
	for _, rel := range plan.Files {
		if matchesAny(filepath.Base(rel), pats) {
			warnings = append(warnings,
				fmt.Sprintf("linking %s shares potentially sensitive data with the checkout", rel))
		}
	}
	for _, dir := range plan.Directories {
		if matchesAny(dir, pats) {
			warnings = append(warnings,
				fmt.Sprintf("linking %s/ shares potentially sensitive data with the checkout", dir))
		}
	}
	return warnings
}
