package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/oshokin/appimage-packager/internal/config"
	"github.com/oshokin/appimage-packager/internal/domain/bundle"
	"github.com/oshokin/appimage-packager/internal/logger"
	"github.com/oshokin/appimage-packager/internal/normalize"
	"github.com/oshokin/appimage-packager/internal/tool"
)

// Options contains inputs for the builder entry point.
type Options struct {
	// ConfigPath is an optional path to the build settings YAML
	// (defaults to appimage-packager-settings.yaml).
	ConfigPath string
	// AppID overrides the configured application identifier when non-empty.
	AppID string
}

// runner holds the state of a single build execution.
// It is intentionally unexported—call Run(ctx, Options) from callers.
type runner struct {
	// cfg holds the validated build settings.
	cfg *config.Config
	// desc identifies the application being bundled.
	desc *bundle.Descriptor
	// archTag is the host architecture tag used for the tool download
	// and the tool invocation.
	archTag string
	// toolPath is the resolved packaging tool executable.
	toolPath string
	// stagedFiles lists staging-tree-relative paths installed by the stager.
	stagedFiles []string
}

// errBuildAlreadyRunning indicates a second build was started while another one holds the marker.
var errBuildAlreadyRunning = errors.New("a build is already running")

// Run executes the packaging pipeline and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "appimage-packager")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if opts.AppID != "" {
		cfg.AppID = opts.AppID
	}

	if err = config.Validate(cfg); err != nil {
		return err
	}

	r, err := newRunner(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize builder: %w", err)
	}

	defer r.cleanup(ctx)

	if err = r.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Build failed", "error", err)
		return err
	}

	logger.Info(ctx, "Build completed successfully")

	return nil
}

// newRunner validates the descriptor, resolves the host architecture,
// and writes a marker to avoid concurrent builds.
func newRunner(ctx context.Context, cfg *config.Config) (*runner, error) {
	desc, err := bundle.NewDescriptor(cfg.AppID)
	if err != nil {
		return nil, err
	}

	archTag, err := tool.HostTag()
	if err != nil {
		return nil, err
	}

	if IsBuildRunningNow(ctx, filepath.Base(cfg.ToolPath)) {
		return nil, errBuildAlreadyRunning
	}

	marker, err := os.Create(MarkerFilename)
	if err != nil {
		return nil, err
	}

	if err = marker.Close(); err != nil {
		return nil, err
	}

	return &runner{
		cfg:     cfg,
		desc:    desc,
		archTag: archTag,
	}, nil
}

// Run walks the pipeline through its states:
// staging and tool fetch (independent, executed concurrently and joined),
// normalization, tool invocation, and finalization.
// Any failure is terminal; the next invocation restarts from a clean tree.
func (r *runner) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return r.stage(groupCtx)
	})

	group.Go(func() error {
		return r.ensureTool(groupCtx)
	})

	if err := group.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "Normalizing staged text artifacts")

	if err := normalize.Tree(ctx, r.cfg.StagingDir, normalize.TextPatterns); err != nil {
		return fmt.Errorf("normalize staged artifacts: %w", err)
	}

	if err := r.invokeTool(ctx); err != nil {
		return err
	}

	artifactPath, err := r.finalize(ctx)
	if err != nil {
		return err
	}

	if err = r.writeManifest(ctx); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Bundle ready", "path", artifactPath)

	return nil
}

// ensureTool guarantees an executable packaging tool matching the host architecture.
func (r *runner) ensureTool(ctx context.Context) error {
	fetcher := tool.NewFetcher(r.cfg.ToolPath, r.cfg.ToolBaseURL, r.cfg.Timeout)

	toolPath, err := fetcher.Ensure(ctx, r.archTag)
	if err != nil {
		return fmt.Errorf("ensure packaging tool: %w", err)
	}

	// Absolute path keeps exec from treating a bare name as a PATH lookup.
	if toolPath, err = filepath.Abs(toolPath); err != nil {
		return fmt.Errorf("resolve packaging tool path: %w", err)
	}

	r.toolPath = toolPath

	return nil
}

// invokeTool runs the packaging tool once against the staged tree.
// The architecture tag and extract-and-run mode travel on the subprocess
// environment only.
func (r *runner) invokeTool(ctx context.Context) error {
	invocation := &tool.Invocation{
		ToolPath:      r.toolPath,
		StagingDir:    r.cfg.StagingDir,
		OutputPath:    r.desc.ArtifactFilename(),
		ArchTag:       r.archTag,
		ExtractAndRun: true,
	}

	if err := invocation.Run(ctx); err != nil {
		return fmt.Errorf("package staged tree: %w", err)
	}

	return nil
}

// finalize marks the produced bundle executable and resolves its final path.
func (r *runner) finalize(_ context.Context) (string, error) {
	artifact := r.desc.ArtifactFilename()

	if err := os.Chmod(artifact, tool.ExecutableFileMode); err != nil {
		return "", fmt.Errorf("mark bundle executable: %w", err)
	}

	artifactPath, err := filepath.Abs(artifact)
	if err != nil {
		return artifact, nil //nolint:nilerr // The relative name is still a valid result.
	}

	return artifactPath, nil
}

// cleanup removes the build marker.
func (r *runner) cleanup(ctx context.Context) {
	if _, err := os.Stat(MarkerFilename); err == nil {
		_ = os.Remove(MarkerFilename)
	}

	logger.Debug(ctx, "The builder has been stopped")
}
