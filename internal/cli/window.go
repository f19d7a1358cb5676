package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

// openWindow launches the configured window command against path and
// detaches: the editor process outlives the CLI.
func openWindow(command, path string) error {
	if command == "" {
		return fmt.Errorf("no window command configured")
	}

	// #nosec G204 — the command comes from the user's own settings file
	cmd := exec.Command(command, path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to run %s: %w", command, err)
	}
	// Reap the child in the background so it never becomes a zombie while
	// the CLI is still running.
	go func() { _ = cmd.Wait() }()
	return nil
}

// cmdStderr returns the stream for warnings and prompts. Indirection
// keeps output redirectable in tests.
func cmdStderr() io.Writer {
	return os.Stderr
}
