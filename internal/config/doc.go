// Package config loads, saves, and validates build settings shared by the
// packaging pipeline: the application identifier, input artifact names,
// the staging tree root, and the packaging tool location and download URL.
//
// Settings are stored as YAML next to the build inputs; a missing settings
// file falls back to defaults so the tool runs with zero configuration.
package config
