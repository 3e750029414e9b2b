package version

import "fmt"

var (
	// Version is the packager's semantic version. Release builds override it via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time ("none" for local builds).
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string, as recorded in build manifests.
func Short() string {
	return Version
}

// Full renders the complete build fingerprint for CLI output.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s", Version, Commit, BuildTime)
}
