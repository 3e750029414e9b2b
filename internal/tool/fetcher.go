package tool

import (
	"bytes"
	"context"
	"crypto"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/appimage-packager/internal/logger"

	// Ensure SHA512 is available for download integrity checks.
	_ "crypto/sha512"
)

const (
	// ExecutableFileMode is applied to the cached tool and to launcher-class
	// artifacts so the packaging tool can run them.
	ExecutableFileMode os.FileMode = 0o755

	// checksumFunction verifies the downloaded tool was written intact.
	checksumFunction crypto.Hash = crypto.SHA512

	// toolFilenamePrefix and toolFilenameSuffix frame the architecture tag
	// in the released tool filename.
	toolFilenamePrefix = "appimagetool-"
	toolFilenameSuffix = ".AppImage"
)

var (
	// errBadHTTPStatus is returned when the download endpoint answers
	// with anything but 200 OK.
	errBadHTTPStatus = errors.New("unexpected http status")
	// errToolNotExecutable is returned when the fetched tool file
	// has no execute bit after install.
	errToolNotExecutable = errors.New("packaging tool is not executable")
)

// Fetcher guarantees a local, executable, architecture-matched packaging tool.
// The cached file persists across builds; only its absence triggers a download.
type Fetcher struct {
	// path is the cache location of the tool executable.
	path string
	// baseURL is the release folder the tool is downloaded from.
	baseURL string
	// client performs the download with the configured timeout.
	client *http.Client
}

// NewFetcher creates a fetcher caching the tool at path and downloading
// from baseURL when the cache is empty.
func NewFetcher(path, baseURL string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		path:    path,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Ensure returns the path to an executable packaging tool for the given
// architecture tag, downloading it on first use. A cached executable tool
// short-circuits without any network access.
func (f *Fetcher) Ensure(ctx context.Context, archTag string) (string, error) {
	if info, err := os.Stat(f.path); err == nil && info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0 {
		logger.InfoKV(ctx, "Using cached packaging tool", "path", f.path)
		return f.path, nil
	}

	downloadURL, err := f.DownloadURL(archTag)
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Downloading packaging tool", "url", downloadURL)

	data, err := f.download(ctx, downloadURL)
	if err != nil {
		return "", fmt.Errorf("download packaging tool: %w", err)
	}

	if err = f.install(data); err != nil {
		return "", fmt.Errorf("install packaging tool: %w", err)
	}

	// The download is corrupted if the execute bit did not stick.
	info, err := os.Stat(f.path)
	if err != nil {
		return "", err
	}

	if info.Mode().Perm()&0o111 == 0 {
		return "", fmt.Errorf("%s: %w", f.path, errToolNotExecutable)
	}

	logger.InfoKV(ctx, "Packaging tool ready", "path", f.path, "size", info.Size())

	return f.path, nil
}

// DownloadURL composes the release URL of the tool build for the given
// architecture tag.
func (f *Fetcher) DownloadURL(archTag string) (string, error) {
	releaseURL, err := url.Parse(f.baseURL)
	if err != nil {
		return "", err
	}

	// Use path.Join to normalize duplicate slashes when composing the URL path.
	releaseURL.Path = path.Join(releaseURL.Path, toolFilenamePrefix+archTag+toolFilenameSuffix)

	return releaseURL.String(), nil
}

// download fetches the tool body from the release endpoint.
func (f *Fetcher) download(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", downloadURL, response.Status, errBadHTTPStatus)
	}

	return io.ReadAll(response.Body)
}

// install writes the downloaded tool atomically with the executable mode set,
// verifying the written file against a checksum of the downloaded body.
func (f *Fetcher) install(data []byte) error {
	hasher := checksumFunction.New()
	if _, err := hasher.Write(data); err != nil {
		return fmt.Errorf("calculate checksum: %w", err)
	}

	// Apply replaces an existing target, so make sure one is there.
	if _, err := os.Stat(f.path); err != nil && os.IsNotExist(err) {
		if _, err = os.Create(f.path); err != nil {
			return err
		}
	}

	options := goupdate.Options{
		TargetPath: f.path,
		TargetMode: ExecutableFileMode,
		Checksum:   hasher.Sum(nil),
		Hash:       checksumFunction,
	}

	if err := goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return err
	}

	oldPath := f.path + ".old"
	if _, err := os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	return nil
}
