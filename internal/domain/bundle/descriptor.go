package bundle

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ArtifactExtension is appended to the application identifier
	// to name the produced bundle.
	ArtifactExtension = ".AppImage"

	// desktopExtension suffixes the desktop entry derived from the identifier.
	desktopExtension = ".desktop"

	// iconExtension suffixes the scalable icon derived from the identifier.
	iconExtension = ".svg"

	// scriptExtension suffixes the optional convenience launcher script
	// derived from the short name.
	scriptExtension = ".sh"
)

var (
	// errEmptyIdentifier is returned when the application identifier is blank.
	errEmptyIdentifier = errors.New("application identifier is empty")
	// errIdentifierNotReverseDomain is returned when the identifier
	// has no dot-separated segments.
	errIdentifierNotReverseDomain = errors.New("application identifier must be in reverse-domain form")
	// errEmptyShortName is returned when the final identifier segment is empty.
	errEmptyShortName = errors.New("application identifier ends with an empty segment")
)

// Descriptor identifies the application being bundled.
// The identifier is in reverse-domain form (e.g. org.example.PassGUI);
// the short name is always its non-empty final dot-separated segment.
type Descriptor struct {
	// id is the full reverse-domain application identifier.
	id string
}

// NewDescriptor validates the identifier and returns a Descriptor for it.
func NewDescriptor(id string) (*Descriptor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errEmptyIdentifier
	}

	if !strings.Contains(id, ".") {
		return nil, fmt.Errorf("%s: %w", id, errIdentifierNotReverseDomain)
	}

	if strings.HasSuffix(id, ".") {
		return nil, fmt.Errorf("%s: %w", id, errEmptyShortName)
	}

	return &Descriptor{id: id}, nil
}

// ID returns the full application identifier.
func (d *Descriptor) ID() string {
	return d.id
}

// ShortName returns the final dot-separated segment of the identifier.
func (d *Descriptor) ShortName() string {
	return d.id[strings.LastIndex(d.id, ".")+1:]
}

// DesktopFilename returns the desktop entry filename derived from the identifier.
func (d *Descriptor) DesktopFilename() string {
	return d.id + desktopExtension
}

// IconFilename returns the scalable icon filename derived from the identifier.
func (d *Descriptor) IconFilename() string {
	return d.id + iconExtension
}

// ScriptFilename returns the optional convenience launcher script filename
// derived from the short name.
func (d *Descriptor) ScriptFilename() string {
	return d.ShortName() + scriptExtension
}

// ArtifactFilename returns the name of the bundle the pipeline produces.
func (d *Descriptor) ArtifactFilename() string {
	return d.id + ArtifactExtension
}
