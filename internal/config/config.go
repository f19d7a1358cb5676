// Package config loads relic's link-pattern and behavior settings.
//
// Settings come from two layers. The global settings file lives next to
// the state database under the user config directory and is JSONC (JSON
// with Comments), so users can annotate their pattern lists. A repository
// can override individual fields with a .relic.yaml file at its root;
// override fields are pointers so "absent" and "explicitly set to the
// zero value" stay distinguishable during the merge.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// GlobalFileName is the global settings file name under the relic config
// directory.
const GlobalFileName = "settings.json"

// RepoFileName is the per-repository override file name, looked up at the
// repository root.
const RepoFileName = ".relic.yaml"

// Settings controls which workspace entries get linked into a checkout
// and how the CLI behaves around cleanup and window opening.
type Settings struct {
	// FilePatterns match file base names anywhere in the workspace
	// (outside linked directories and VCS metadata).
	FilePatterns []string `json:"filePatterns" yaml:"filePatterns"`

	// DirectoryPatterns match root-level directory names to be linked
	// wholesale.
	DirectoryPatterns []string `json:"directoryPatterns" yaml:"directoryPatterns"`

	// AdditionalPatterns are extra file patterns appended to FilePatterns,
	// kept separate so repository overrides can extend the defaults
	// without restating them.
	AdditionalPatterns []string `json:"additionalPatterns" yaml:"additionalPatterns"`

	// SecretsWarning enables the pre-link warning for entries matching
	// SecretsPatterns.
	SecretsWarning bool `json:"secretsWarning" yaml:"secretsWarning"`

	// SecretsPatterns identify entries likely to contain credentials.
	SecretsPatterns []string `json:"secretsPatterns" yaml:"secretsPatterns"`

	// MaxHistoryDepth caps how many commits the history listing shows.
	MaxHistoryDepth int `json:"maxHistoryDepth" yaml:"maxHistoryDepth"`

	// AutoCleanup enables the stale-checkout sweep on startup.
	AutoCleanup bool `json:"autoCleanup" yaml:"autoCleanup"`

	// ConfirmCleanup requires a confirmation prompt before bulk cleanup.
	ConfirmCleanup bool `json:"confirmCleanup" yaml:"confirmCleanup"`

	// OpenCommand is the executable used to open a checkout as a new
	// window.
	OpenCommand string `json:"openCommand" yaml:"openCommand"`
}

// Default returns the built-in settings used when no global file exists.
func Default() Settings {
	return Settings{
		FilePatterns:      []string{".env", ".env.*"},
		DirectoryPatterns: []string{"node_modules"},
		SecretsWarning:    true,
		SecretsPatterns:   []string{"*secret*", "*credential*", "*.pem", "*.key"},
		MaxHistoryDepth:   50,
		AutoCleanup:       true,
		ConfirmCleanup:    true,
		OpenCommand:       "code",
	}
}

// AllFilePatterns returns FilePatterns with AdditionalPatterns appended,
// which is the list the link planner consumes.
func (s Settings) AllFilePatterns() []string {
	if len(s.AdditionalPatterns) == 0 {
		return s.FilePatterns
	}
	merged := make([]string, 0, len(s.FilePatterns)+len(s.AdditionalPatterns))
	merged = append(merged, s.FilePatterns...)
	merged = append(merged, s.AdditionalPatterns...)
	return merged
}

// Override is the per-repository settings fragment. Every field is
// optional; nil means "keep the global value".
type Override struct {
	FilePatterns       *[]string `yaml:"filePatterns"`
	DirectoryPatterns  *[]string `yaml:"directoryPatterns"`
	AdditionalPatterns *[]string `yaml:"additionalPatterns"`
	SecretsWarning     *bool     `yaml:"secretsWarning"`
	SecretsPatterns    *[]string `yaml:"secretsPatterns"`
	MaxHistoryDepth    *int      `yaml:"maxHistoryDepth"`
	AutoCleanup        *bool     `yaml:"autoCleanup"`
	ConfirmCleanup     *bool     `yaml:"confirmCleanup"`
	OpenCommand        *string   `yaml:"openCommand"`
}

// DefaultGlobalPath resolves the global settings file location, falling
// back to the temp directory when no user config directory is resolvable.
func DefaultGlobalPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "relic", GlobalFileName)
}

// LoadGlobal reads the global settings file at path. A missing file
// yields the built-in defaults; a present but unparsable file is an
// error rather than a silent fallback, so a typo never quietly reverts
// the user to defaults.
func LoadGlobal(path string) (Settings, error) {
	settings := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read settings file: %w", err)
	}

	// Strip JSONC comments and trailing commas before parsing.
	if err := json.Unmarshal(jsonc.ToJSON(data), &settings); err != nil {
		return Default(), fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return settings, nil
}

// LoadForRepo returns the effective settings for the repository at
// repoPath: the global settings at globalPath with the repository's
// .relic.yaml override (if any) merged on top.
func LoadForRepo(globalPath, repoPath string) (Settings, error) {
	settings, err := LoadGlobal(globalPath)
	if err != nil {
		return settings, err
	}

	overridePath := filepath.Join(repoPath, RepoFileName)
	data, err := os.ReadFile(overridePath)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read repository override: %w", err)
	}

	var override Override
	if err := yaml.Unmarshal(data, &override); err != nil {
		return settings, fmt.Errorf("failed to parse %s: %w", overridePath, err)
	}

	return merge(settings, override), nil
}

// merge applies every non-nil override field on top of base.
func merge(base Settings, o Override) Settings {
	if o.FilePatterns != nil {
		base.FilePatterns = *o.FilePatterns
	}
	if o.DirectoryPatterns != nil {
		base.DirectoryPatterns = *o.DirectoryPatterns
	}
	if o.AdditionalPatterns != nil {
		base.AdditionalPatterns = *o.AdditionalPatterns
	}
	if o.SecretsWarning != nil {
		base.SecretsWarning = *o.SecretsWarning
	}
	if o.SecretsPatterns != nil {
		base.SecretsPatterns = *o.SecretsPatterns
	}
	if o.MaxHistoryDepth != nil {
		base.MaxHistoryDepth = *o.MaxHistoryDepth
	}
	if o.AutoCleanup != nil {
		base.AutoCleanup = *o.AutoCleanup
	}
	if o.ConfirmCleanup != nil {
		base.ConfirmCleanup = *o.ConfirmCleanup
	}
	if o.OpenCommand != nil {
		base.OpenCommand = *o.OpenCommand
	}
	return base
}
