package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCLI builds the binary and drives it the way a user would
func TestCLI(t *testing.T) {
	tempDir := t.TempDir()
	binaryPath := filepath.Join(tempDir, "pluginmeta")

	build := exec.Command("go", "build", "-ldflags", "-X main.version=test", "-o", binaryPath, ".")
	require.NoError(t, build.Run(), "Failed to build CLI binary")

	t.Run("help", func(t *testing.T) {
		output, err := exec.Command(binaryPath, "--help").CombinedOutput()
		assert.NoError(t, err)

		out := string(output)
		assert.Contains(t, out, "Usage:")
		for _, sub := range []string{"extract", "registry", "strip", "serve", "version"} {
			assert.Contains(t, out, sub)
		}
		assert.Contains(t, out, "--config")
	})

	t.Run("version", func(t *testing.T) {
		cmd := exec.Command(binaryPath, "version")
		cmd.Dir = tempDir
		output, err := cmd.Output()
		require.NoError(t, err)
		assert.Equal(t, "pluginmeta test\n", string(output))
	})

	t.Run("unknown command", func(t *testing.T) {
		cmd := exec.Command(binaryPath, "frobnicate")
		output, err := cmd.CombinedOutput()
		assert.Error(t, err)
		assert.Contains(t, string(output), "unknown command")
	})

	t.Run("extract", func(t *testing.T) {
		dir := t.TempDir()
		plugin := filepath.Join(dir, "a.ts")
		require.NoError(t, os.WriteFile(plugin, []byte("export default defineNuxtPlugin({ name: 'a', order: 5 })\n"), 0o644))

		cmd := exec.Command(binaryPath, "extract", "-o", "json", plugin)
		cmd.Dir = dir
		output, err := cmd.Output()
		require.NoError(t, err)
		assert.Contains(t, string(output), `"name": "a"`)
		assert.Contains(t, string(output), `"order": 5`)
	})

	t.Run("missing arguments", func(t *testing.T) {
		output, err := exec.Command(binaryPath, "strip").CombinedOutput()
		assert.Error(t, err)
		assert.Contains(t, string(output), "requires at least 1 arg")
	})
}
