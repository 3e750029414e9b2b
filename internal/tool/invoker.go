package tool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/oshokin/appimage-packager/internal/logger"
)

// Invocation carries everything one packaging tool run needs.
// The execution mode and architecture tag are passed on the subprocess
// environment only; ambient process state is never touched.
type Invocation struct {
	// ToolPath is the packaging tool executable.
	ToolPath string
	// StagingDir is the staging tree root handed to the tool.
	StagingDir string
	// OutputPath is the bundle the tool must produce.
	OutputPath string
	// ArchTag is the architecture tag exported as ARCH.
	ArchTag string
	// ExtractAndRun makes the tool extract itself instead of mounting its
	// internal filesystem, for hosts where FUSE is unavailable.
	ExtractAndRun bool
}

// errToolFailed wraps a non-zero exit of the packaging tool.
var errToolFailed = errors.New("packaging tool failed")

// Run invokes the packaging tool exactly once, non-interactively.
// The tool's own diagnostics go straight to stdout/stderr; on failure any
// partial output artifact is removed.
func (inv *Invocation) Run(ctx context.Context) error {
	logger.InfoKV(ctx, "Invoking packaging tool",
		"tool", inv.ToolPath, "staging_dir", inv.StagingDir, "output", inv.OutputPath)

	cmd := exec.CommandContext(ctx, inv.ToolPath, inv.StagingDir, inv.OutputPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	env := append(os.Environ(), "ARCH="+inv.ArchTag)
	if inv.ExtractAndRun {
		env = append(env, "APPIMAGE_EXTRACT_AND_RUN=1")
	}

	cmd.Env = env

	if err := cmd.Run(); err != nil {
		// A partial artifact is not a valid build result.
		if _, statErr := os.Stat(inv.OutputPath); statErr == nil {
			_ = os.Remove(inv.OutputPath)
		}

		return fmt.Errorf("%w: %w", errToolFailed, err)
	}

	return nil
}
