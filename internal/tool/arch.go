package tool

import (
	"errors"
	"fmt"
	"runtime"
)

// errUnsupportedArchitecture is returned when no packaging tool build
// exists for the host architecture.
var errUnsupportedArchitecture = errors.New("no packaging tool build for architecture")

// archTags maps Go architecture names to the tags used both in the tool
// download URL and in the ARCH variable passed to the invocation.
//
//nolint:gochecknoglobals // Static lookup table.
var archTags = map[string]string{
	"amd64": "x86_64",
	"arm64": "aarch64",
	"386":   "i686",
	"arm":   "armhf",
}

// TagFor translates a Go architecture name into the packaging tool's
// architecture tag.
func TagFor(goarch string) (string, error) {
	tag, ok := archTags[goarch]
	if !ok {
		return "", fmt.Errorf("%s: %w", goarch, errUnsupportedArchitecture)
	}

	return tag, nil
}

// HostTag returns the architecture tag for the machine the pipeline runs on.
func HostTag() (string, error) {
	return TagFor(runtime.GOARCH)
}
