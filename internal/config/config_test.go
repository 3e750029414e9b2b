package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and default filling.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing identifier.
	cfg := new(Config)

	err := Validate(cfg)
	require.Error(t, err)

	// Bad tool base URL.
	cfg = &Config{
		AppID:       DefaultAppID,
		ToolBaseURL: "not a url",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Identifier alone is enough; everything else gets defaults.
	cfg = &Config{AppID: "org.example.ModernDemo"}

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultPayloadFilename, cfg.PayloadFile)
	require.Equal(t, DefaultLauncherFilename, cfg.LauncherFile)
	require.Equal(t, DefaultStagingDirName, cfg.StagingDir)
	require.Equal(t, DefaultToolFilename, cfg.ToolPath)
	require.Equal(t, DefaultToolBaseURL, cfg.ToolBaseURL)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		AppID:   "org.example.ModernDemo",
		Timeout: 42 * time.Second,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.AppID, loaded.AppID)
	require.Equal(t, cfg.Timeout, loaded.Timeout)

	// File exists with restricted permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}

// TestLoadMissingFile ensures a missing settings file yields defaults, not an error.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}
