package builder

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/appimage-packager/internal/logger"
)

const (
	// MarkerFilename marks that a build is running right now to avoid
	// two builds fighting over the same staging tree.
	MarkerFilename = "appimage-build-marker.bin"

	// markerLifetime is the period after which a stale build marker is ignored.
	// Packaging large trees can legitimately take minutes.
	markerLifetime = 15 * time.Minute
)

// IsBuildRunningNow checks presence of a marker file and attempts recovery
// if it looks stale: leftover packaging tool processes are terminated and
// the marker is removed.
func IsBuildRunningNow(ctx context.Context, toolName string) bool {
	logger.Debug(ctx, "Checking for the presence of a build marker")

	fileInfo, err := os.Stat(MarkerFilename)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The build marker is too old, attempting cleanup")

		if err = terminateToolProcesses(toolName); err != nil {
			return true
		}

		if err = os.Remove(MarkerFilename); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		logger.Debug(ctx, "Build marker not found, continuing")
		return false
	}

	logger.Infof(ctx, "Unable to read build marker: %v", err)

	return false
}

// terminateToolProcesses kills packaging tool processes left behind by an
// interrupted build. Only processes whose executable matches the tool name
// are touched; the packager itself is never a candidate.
func terminateToolProcesses(toolName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	currentPID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == currentPID || process.Executable() != toolName {
			continue
		}

		var leftover *os.Process

		leftover, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = leftover.Kill(); err != nil {
			return err
		}
	}

	return nil
}
