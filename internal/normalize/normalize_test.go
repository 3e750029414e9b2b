package normalize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFile verifies CRLF stripping, including a bare trailing carriage return.
func TestFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(path, []byte("a\r\nb\r\nc\r"), 0o755))

	changed, err := File(path)
	require.NoError(t, err)
	require.True(t, changed)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "a\nb\nc", string(contents))

	// Mode survives the rewrite.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	// Carriage returns inside a line are not line endings.
	require.NoError(t, os.WriteFile(path, []byte("a\rb\n"), 0o600))

	changed, err = File(path)
	require.NoError(t, err)
	require.False(t, changed)

	// A run of carriage returns at a line end goes away entirely,
	// even on the final line with no newline at all.
	require.NoError(t, os.WriteFile(path, []byte("a\r\r\nb\r\r"), 0o600))

	changed, err = File(path)
	require.NoError(t, err)
	require.True(t, changed)

	contents, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "a\nb", string(contents))
}

// TestFileIdempotent ensures the second pass is a byte-identical no-op.
func TestFileIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "entry.desktop")

	// Doubled carriage returns must not survive the first pass as a CRLF
	// for the second pass to find.
	for _, input := range []string{
		"[Desktop Entry]\r\nName=Demo\r\n",
		"xx\r\r\n",
		"xx\r\r",
	} {
		require.NoError(t, os.WriteFile(path, []byte(input), 0o600))

		changed, err := File(path)
		require.NoError(t, err)
		require.True(t, changed, input)

		first, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NotContains(t, string(first), "\r", input)

		changed, err = File(path)
		require.NoError(t, err)
		require.False(t, changed, input)

		second, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, first, second, input)
	}
}

// TestTree ensures only matching files under the root are rewritten.
func TestTree(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "usr", "bin"), 0o755))

	staged := filepath.Join(dir, "usr", "bin", "app.py")
	require.NoError(t, os.WriteFile(staged, []byte("x\r\n"), 0o600))

	launcher := filepath.Join(dir, "AppRun")
	require.NoError(t, os.WriteFile(launcher, []byte("run\r\n"), 0o755))

	binary := filepath.Join(dir, "payload.bin")
	require.NoError(t, os.WriteFile(binary, []byte("\x00\r\n\x01"), 0o600))

	require.NoError(t, Tree(context.Background(), dir, TextPatterns))

	contents, err := os.ReadFile(staged)
	require.NoError(t, err)
	require.Equal(t, "x\n", string(contents))

	contents, err = os.ReadFile(launcher)
	require.NoError(t, err)
	require.Equal(t, "run\n", string(contents))

	// Non-matching files are left byte-identical.
	contents, err = os.ReadFile(binary)
	require.NoError(t, err)
	require.Equal(t, []byte("\x00\r\n\x01"), contents)
}
