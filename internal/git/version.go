package git

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmr-tortoise/relic/internal/model"
)

// Minimum git version with stable linked-working-tree support. Versions
// before 2.15 lack `worktree remove` entirely.
const (
	minToolMajor = 2
	minToolMinor = 15
)

// ToolVersion returns the installed git version string as reported by
// `git version`, e.g. "2.39.2".
func (g *Gateway) ToolVersion() (string, error) {
	// `git version` works regardless of working directory; "." keeps the
	// shared runner's -C handling uniform.
	output, err := runGit(".", "version")
	if err != nil {
		return "", err
	}
	version, ok := parseToolVersion(output)
	if !ok {
		return "", fmt.Errorf("unrecognized git version output: %q", strings.TrimSpace(output))
	}
	return version, nil
}

// ValidateToolVersion fails fatally when the git binary is absent or its
// version is below the minimum required for isolated-checkout support.
func (g *Gateway) ValidateToolVersion() error {
	version, err := g.ToolVersion()
	if err != nil {
		if model.HasKind(err, model.KindToolMissing) {
			return err
		}
		return model.NewFatalError(model.KindToolMissing,
			"unable to determine git version", err)
	}

	major, minor, ok := splitVersion(version)
	if !ok {
		return model.NewFatalError(model.KindToolTooOld,
			fmt.Sprintf("cannot parse git version %q", version), nil)
	}
	if major < minToolMajor || (major == minToolMajor && minor < minToolMinor) {
		return model.NewFatalError(model.KindToolTooOld,
			fmt.Sprintf("git %s is too old: %d.%d or newer is required for isolated checkouts",
				version, minToolMajor, minToolMinor), nil)
	}
	return nil
}

// parseToolVersion extracts the version number from `git version` output.
// The output format is "git version <version>[ extra]", e.g.
// "git version 2.39.2 (Apple Git-143)".
func parseToolVersion(output string) (string, bool) {
	fields := strings.Fields(strings.TrimSpace(output))
	if len(fields) < 3 || fields[0] != "git" || fields[1] != "version" {
		return "", false
	}
	return fields[2], true
}

// splitVersion parses the leading major.minor components of a version
// string. Patch level and vendor suffixes ("2.39.2.windows.1") are
// ignored — the feature floor is defined at minor-version granularity.
func splitVersion(version string) (major, minor int, ok bool) {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}
