package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/appimage-packager/internal/config"
	"github.com/oshokin/appimage-packager/internal/logger"
	"github.com/oshokin/appimage-packager/internal/service/builder"
	"github.com/oshokin/appimage-packager/internal/version"
)

var (
	// configPath to the build settings YAML file.
	configPath string
	// appID overrides the configured application identifier.
	appID string
	// logLevel selects how chatty the pipeline is.
	logLevel string

	// rootCmd represents the base command for building the portable bundle.
	rootCmd = &cobra.Command{
		Use:   "appimage-packager",
		Short: "Package a desktop application into a portable AppImage bundle",
		Long: `Builds a self-contained AppImage from the application artifacts in the
current directory: the payload, the launcher entrypoint, the desktop entry,
and the icon. The staging tree is rebuilt from scratch on every run; the
packaging tool is downloaded once and cached next to the inputs.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &builder.Options{
				ConfigPath: configPath,
				AppID:      appID,
			}

			return builder.Run(ctx, options)
		},
	}
)

// Execute runs the appimage-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to build settings file")
	rootCmd.Flags().StringVarP(&appID, "app-id", "a", "", "application identifier to package (overrides settings)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
}
