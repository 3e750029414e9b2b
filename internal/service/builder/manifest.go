package builder

import (
	"context"
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/appimage-packager/internal/config"
	"github.com/oshokin/appimage-packager/internal/logger"
	"github.com/oshokin/appimage-packager/internal/version"

	// Ensure SHA512 is available for manifest checksums.
	_ "crypto/sha512"
)

const (
	// manifestSuffix is appended to the application identifier
	// to name the build manifest.
	manifestSuffix = ".build-manifest.yaml"

	// manifestChecksumFunction hashes staged files and the artifact.
	manifestChecksumFunction crypto.Hash = crypto.SHA512

	// defaultMapCapacity is the default initial capacity for maps.
	defaultMapCapacity = 16
)

// errHashUnavailable is returned when the checksum function is not linked in.
var errHashUnavailable = errors.New("hash function unavailable")

// Manifest records what a build produced: the bundle name, the architecture
// it targets, and checksums of every staged file and of the artifact itself.
type Manifest struct {
	// VersionNumber is the packager version that produced the build.
	VersionNumber string `yaml:"version"`
	// Architecture is the architecture tag the bundle was built for.
	Architecture string `yaml:"architecture"`
	// Artifact is the produced bundle filename.
	Artifact string `yaml:"artifact"`
	// Files maps staged paths and the artifact to base64-encoded checksums.
	Files map[string]string `yaml:"files"`
}

// writeManifest summarizes the finished build next to the artifact.
func (r *runner) writeManifest(ctx context.Context) error {
	manifest := &Manifest{
		VersionNumber: version.Short(),
		Architecture:  r.archTag,
		Artifact:      r.desc.ArtifactFilename(),
		Files:         make(map[string]string, defaultMapCapacity),
	}

	staged := append([]string(nil), r.stagedFiles...)
	sort.Strings(staged)

	for _, relativePath := range staged {
		checksum, err := fileChecksum(filepath.Join(r.cfg.StagingDir, relativePath))
		if err != nil {
			return err
		}

		manifest.Files[relativePath] = base64.StdEncoding.EncodeToString(checksum)
	}

	artifactChecksum, err := fileChecksum(manifest.Artifact)
	if err != nil {
		return err
	}

	manifest.Files[manifest.Artifact] = base64.StdEncoding.EncodeToString(artifactChecksum)

	contents, err := yaml.Marshal(manifest)
	if err != nil {
		return err
	}

	manifestPath := r.desc.ID() + manifestSuffix
	if err = os.WriteFile(manifestPath, contents, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write build manifest: %w", err)
	}

	logger.InfoKV(ctx, "Saved build manifest", "path", manifestPath)

	return nil
}

// fileChecksum returns checksum bytes for a file using manifestChecksumFunction.
func fileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	if !manifestChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := manifestChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}
