package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oshokin/appimage-packager/internal/logger"
	"github.com/oshokin/appimage-packager/internal/tool"
)

const (
	// binDirRelative holds the payload and the convenience script.
	binDirRelative = "usr/bin"

	// applicationsDirRelative is the application-menu copy of the desktop entry.
	applicationsDirRelative = "usr/share/applications"

	// iconsDirRelative is the icon-theme copy of the scalable icon.
	iconsDirRelative = "usr/share/icons/hicolor/scalable/apps"

	// dataFileMode is applied to data and metadata artifacts.
	dataFileMode os.FileMode = 0o600

	// stagingDirMode is applied to every directory of the staging tree.
	stagingDirMode os.FileMode = 0o755
)

var (
	// errRequiredArtifactMissing is returned when a required input is absent.
	errRequiredArtifactMissing = errors.New("required artifact is missing")
	// errOptionalArtifactMissing marks the one tolerated missing input,
	// the convenience launcher script.
	errOptionalArtifactMissing = errors.New("optional artifact is missing")
)

// stage discards and rebuilds the staging tree from the input artifacts.
// Prior contents never survive: the tree is removed before anything is copied.
func (r *runner) stage(ctx context.Context) error {
	logger.InfoKV(ctx, "Rebuilding staging tree", "dir", r.cfg.StagingDir)

	if err := os.RemoveAll(r.cfg.StagingDir); err != nil {
		return fmt.Errorf("reset staging tree: %w", err)
	}

	for _, dir := range []string{binDirRelative, applicationsDirRelative, iconsDirRelative} {
		if err := os.MkdirAll(filepath.Join(r.cfg.StagingDir, dir), stagingDirMode); err != nil {
			return fmt.Errorf("create staging tree: %w", err)
		}
	}

	if err := r.installRequired(ctx); err != nil {
		return err
	}

	if err := r.installOptionalScript(ctx); err != nil {
		return err
	}

	// Launcher-class files must stay runnable for the packaging tool,
	// even if a copy path dropped the bits.
	return r.remarkLaunchersExecutable()
}

// installRequired copies the four required artifacts into their slots.
// Absence of any of them aborts the pipeline.
func (r *runner) installRequired(ctx context.Context) error {
	installs := []struct {
		source      string
		destination string
		mode        os.FileMode
	}{
		{r.cfg.LauncherFile, filepath.Base(r.cfg.LauncherFile), tool.ExecutableFileMode},
		{r.cfg.PayloadFile, filepath.Join(binDirRelative, filepath.Base(r.cfg.PayloadFile)), dataFileMode},
		{r.desc.DesktopFilename(), r.desc.DesktopFilename(), dataFileMode},
		{r.desc.DesktopFilename(), filepath.Join(applicationsDirRelative, r.desc.DesktopFilename()), dataFileMode},
		{r.desc.IconFilename(), r.desc.IconFilename(), dataFileMode},
		{r.desc.IconFilename(), filepath.Join(iconsDirRelative, r.desc.IconFilename()), dataFileMode},
	}

	for _, install := range installs {
		if err := r.installArtifact(install.source, install.destination, install.mode, false); err != nil {
			return err
		}

		logger.DebugKV(ctx, "Staged artifact", "source", install.source, "destination", install.destination)
	}

	return nil
}

// installOptionalScript stages the convenience launcher script when present.
// Its absence is the one tolerated missing input: the build logs it and continues.
func (r *runner) installOptionalScript(ctx context.Context) error {
	script := r.desc.ScriptFilename()

	err := r.installArtifact(script, filepath.Join(binDirRelative, script), tool.ExecutableFileMode, true)
	if errors.Is(err, errOptionalArtifactMissing) {
		logger.InfoKV(ctx, "Optional launcher script not found, continuing", "file", script)
		return nil
	}

	return err
}

// installArtifact copies a source file into the staging tree with the given mode.
// A missing source maps to the required or optional sentinel; any other
// failure is returned as is.
func (r *runner) installArtifact(source, destination string, mode os.FileMode, optional bool) error {
	data, err := os.ReadFile(filepath.Clean(source))
	if errors.Is(err, os.ErrNotExist) {
		if optional {
			return fmt.Errorf("%s: %w", source, errOptionalArtifactMissing)
		}

		return fmt.Errorf("%s: %w", source, errRequiredArtifactMissing)
	} else if err != nil {
		return fmt.Errorf("read %s: %w", source, err)
	}

	stagedPath := filepath.Join(r.cfg.StagingDir, destination)
	if err = os.WriteFile(stagedPath, data, mode); err != nil {
		return fmt.Errorf("stage %s: %w", destination, err)
	}

	r.stagedFiles = append(r.stagedFiles, destination)

	return nil
}

// remarkLaunchersExecutable re-applies the executable mode to the staged
// launcher-class files. Idempotent when the bits are already set.
func (r *runner) remarkLaunchersExecutable() error {
	launchers := []string{filepath.Base(r.cfg.LauncherFile)}

	scriptPath := filepath.Join(binDirRelative, r.desc.ScriptFilename())
	if _, err := os.Stat(filepath.Join(r.cfg.StagingDir, scriptPath)); err == nil {
		launchers = append(launchers, scriptPath)
	}

	for _, launcher := range launchers {
		if err := os.Chmod(filepath.Join(r.cfg.StagingDir, launcher), tool.ExecutableFileMode); err != nil {
			return fmt.Errorf("mark %s executable: %w", launcher, err)
		}
	}

	return nil
}
