// Package version exposes the packager's build metadata.
//
// Version, Commit, and BuildTime are injected via Go ldflags on release
// builds and default to sensible values locally. Short feeds the build
// manifest; Full renders the CLI `version` output.
package version
