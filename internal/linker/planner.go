package linker

import (
	"os"
	"path/filepath"
)

// vcsMetadataDirs are directory names never descended into during the
// recursive file search — their contents belong to the VCS, not the
// workspace.
var vcsMetadataDirs = map[string]bool{
	".git": true,
	".hg":  true,
	".svn": true,
}

// Plan is the outcome of one planning pass over a source workspace.
type Plan struct {
	// Files are paths relative to the source directory, at any depth,
	// whose base name matched a file pattern.
	Files []string

	// Directories are root-level directory names that matched a
	// directory pattern. Each will be symlinked wholesale.
	Directories []string
}

// BuildPlan matches the configured glob patterns against the tree rooted
// at sourceDir.
//
// Directory matching is root-level only: immediate subdirectories of
// sourceDir whose name matches a directory pattern are selected. File
// matching is recursive, excluding any subtree already selected as a
// to-be-linked directory (it will be symlinked wholesale) and excluding
// VCS metadata directories. Unreadable directories are treated as empty —
// the plan degrades gracefully rather than failing.
func BuildPlan(sourceDir string, filePatterns, dirPatterns []string) Plan {
	filePats := compileAll(filePatterns)
	dirPats := compileAll(dirPatterns)

	var plan Plan

	selectedDirs := make(map[string]bool)
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		// Unreadable source: nothing to plan.
		return plan
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if matchesAny(entry.Name(), dirPats) {
			plan.Directories = append(plan.Directories, entry.Name())
			selectedDirs[entry.Name()] = true
		}
	}

	if len(filePats) == 0 {
		return plan
	}

	_ = filepath.WalkDir(sourceDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are treated as empty, not fatal.
			return nil
		}
		rel, relErr := filepath.Rel(sourceDir, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if d.IsDir() {
			if vcsMetadataDirs[d.Name()] {
				return filepath.SkipDir
			}
			// Skip subtrees that will be linked as whole directories.
			// Selection is root-level, so only depth-one names qualify.
			if selectedDirs[rel] {
				return filepath.SkipDir
			}
			return nil
		}

		if matchesAny(d.Name(), filePats) {
			plan.Files = append(plan.Files, filepath.ToSlash(rel))
		}
		return nil
	})

	return plan
}

// Entries returns every planned entry name in link order: files first,
// then directories with a trailing slash. This is also the order the
// LinkResult lists follow.
func (p Plan) Entries() []string {
	entries := make([]string, 0, len(p.Files)+len(p.Directories))
	entries = append(entries, p.Files...)
	for _, dir := range p.Directories {
		entries = append(entries, dir+"/")
	}
	return entries
}
