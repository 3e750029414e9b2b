package normalize

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/oshokin/appimage-packager/internal/logger"
)

// TextPatterns matches the text artifacts the pipeline stages.
// Normalization never leaves the staged tree, so other files in the
// working directory are left untouched.
//
//nolint:gochecknoglobals // Static pattern list.
var TextPatterns = []string{
	"AppRun",
	"*.py",
	"*.sh",
	"*.desktop",
	"*.svg",
}

// Tree rewrites every matching file under root to LF-only line endings.
// Running it on an already-normalized tree changes nothing.
func Tree(ctx context.Context, root string, patterns []string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			return nil
		}

		matched, err := matchesAny(entry.Name(), patterns)
		if err != nil {
			return err
		}

		if !matched {
			return nil
		}

		changed, err := File(path)
		if err != nil {
			return fmt.Errorf("normalize %s: %w", path, err)
		}

		if changed {
			logger.DebugKV(ctx, "Normalized line endings", "file", path)
		}

		return nil
	})
}

// File strips trailing carriage returns from every line of the file,
// rewriting it in place with its mode preserved. It reports whether the
// contents actually changed; an unchanged file is not rewritten, which
// keeps the operation byte-idempotent.
func File(path string) (bool, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return false, err
	}

	normalized := stripTrailingCarriageReturns(data)

	if bytes.Equal(data, normalized) {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	if err = os.WriteFile(path, normalized, info.Mode().Perm()); err != nil {
		return false, err
	}

	return true, nil
}

// stripTrailingCarriageReturns removes every carriage return at the end of
// every line, the final unterminated line included. A run of them goes in one
// pass, so the output is already a fixed point of the transform.
func stripTrailingCarriageReturns(data []byte) []byte {
	lines := bytes.Split(data, []byte("\n"))
	for i, line := range lines {
		lines[i] = bytes.TrimRight(line, "\r")
	}

	return bytes.Join(lines, []byte("\n"))
}

// matchesAny reports whether the file name matches one of the patterns.
func matchesAny(name string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("pattern %s: %w", pattern, err)
		}

		if matched {
			return true, nil
		}
	}

	return false, nil
}
