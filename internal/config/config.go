package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds build parameters for the packaging pipeline.
// All paths are relative to the working directory the pipeline runs in.
type Config struct {
	// AppID is the reverse-domain application identifier to package.
	AppID string `yaml:"app_id"`
	// PayloadFile is the application payload installed under usr/bin.
	PayloadFile string `yaml:"payload_file"`
	// LauncherFile is the executable entrypoint installed at the staging root.
	LauncherFile string `yaml:"launcher_file"`
	// StagingDir is the staging tree root, wiped and rebuilt on every run.
	StagingDir string `yaml:"staging_dir"`
	// ToolPath is where the packaging tool is cached between runs.
	ToolPath string `yaml:"tool_path"`
	// ToolBaseURL is the release folder the packaging tool is downloaded from.
	ToolBaseURL string `yaml:"tool_base_url"`
	// Timeout bounds the packaging tool download.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for build settings.
	DefaultConfigFilename = "appimage-packager-settings.yaml"

	// DefaultAppID is the application packaged when no identifier is configured.
	DefaultAppID = "org.example.PassGUI"

	// DefaultPayloadFilename is the default application payload name.
	DefaultPayloadFilename = "app.py"

	// DefaultLauncherFilename is the default launcher entrypoint name.
	DefaultLauncherFilename = "AppRun"

	// DefaultStagingDirName is the default staging tree root.
	DefaultStagingDirName = "AppDir"

	// DefaultToolFilename is the default cache location of the packaging tool.
	DefaultToolFilename = "appimagetool"

	// DefaultToolBaseURL is the release folder serving architecture-tagged
	// appimagetool builds.
	DefaultToolBaseURL = "https://github.com/AppImage/AppImageKit/releases/download/continuous"

	// DefaultTimeout is the default duration for the tool download.
	DefaultTimeout = 5 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errAppIDRequired is returned when the application identifier is missing.
	errAppIDRequired = errors.New("application identifier must be provided")
)

// Default returns a configuration populated with all default values.
func Default() *Config {
	return &Config{
		AppID:        DefaultAppID,
		PayloadFile:  DefaultPayloadFilename,
		LauncherFile: DefaultLauncherFilename,
		StagingDir:   DefaultStagingDirName,
		ToolPath:     DefaultToolFilename,
		ToolBaseURL:  DefaultToolBaseURL,
		Timeout:      DefaultTimeout,
	}
}

// Load reads configuration from the provided path and validates essential fields.
// A missing settings file is not an error: the pipeline runs with defaults,
// so the CLI works with no arguments at all.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	} else if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults
// for everything left empty.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.AppID == "" {
		return errAppIDRequired
	}

	if cfg.PayloadFile == "" {
		cfg.PayloadFile = DefaultPayloadFilename
	}

	if cfg.LauncherFile == "" {
		cfg.LauncherFile = DefaultLauncherFilename
	}

	if cfg.StagingDir == "" {
		cfg.StagingDir = DefaultStagingDirName
	}

	if cfg.ToolPath == "" {
		cfg.ToolPath = DefaultToolFilename
	}

	if cfg.ToolBaseURL == "" {
		cfg.ToolBaseURL = DefaultToolBaseURL
	}

	if _, err := url.ParseRequestURI(cfg.ToolBaseURL); err != nil {
		return fmt.Errorf("invalid tool base URL: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return nil
}
