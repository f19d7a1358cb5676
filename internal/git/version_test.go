package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolVersion(t *testing.T) {
	g := NewGateway()

	version, err := g.ToolVersion()
	require.NoError(t, err)
	assert.NotEmpty(t, version)

	major, minor, ok := splitVersion(version)
	require.True(t, ok, "installed git version %q should parse", version)
	assert.GreaterOrEqual(t, major, 2)
	_ = minor
}

func TestValidateToolVersion(t *testing.T) {
	// The environment running these tests has a modern git, so validation
	// must pass.
	g := NewGateway()
	assert.NoError(t, g.ValidateToolVersion())
}

func TestParseToolVersion(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
		ok     bool
	}{
		{"plain", "git version 2.39.2\n", "2.39.2", true},
		{"vendor suffix", "git version 2.39.2 (Apple Git-143)\n", "2.39.2", true},
		{"windows build", "git version 2.41.0.windows.1\n", "2.41.0.windows.1", true},
		{"garbage", "not a version\n", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseToolVersion(tt.output)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		major   int
		minor   int
		ok      bool
	}{
		{"standard", "2.39.2", 2, 39, true},
		{"two components", "2.15", 2, 15, true},
		{"vendor suffix", "2.41.0.windows.1", 2, 41, true},
		{"single component", "2", 0, 0, false},
		{"non-numeric", "a.b.c", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			major, minor, ok := splitVersion(tt.version)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.major, major)
				assert.Equal(t, tt.minor, minor)
			}
		})
	}
}
