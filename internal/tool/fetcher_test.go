package tool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestDownloadURL checks the composed release URL carries the architecture tag.
func TestDownloadURL(t *testing.T) {
	t.Parallel()

	f := NewFetcher("appimagetool", "https://example.com/releases/continuous", time.Second)

	got, err := f.DownloadURL("x86_64")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/releases/continuous/appimagetool-x86_64.AppImage", got)
}

// TestEnsureCachedFastPath ensures a cached executable tool triggers no network access.
func TestEnsureCachedFastPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "appimagetool")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))

	// The base URL is unreachable on purpose: the fast path must not touch it.
	f := NewFetcher(path, "http://127.0.0.1:1/releases", time.Second)

	got, err := f.Ensure(context.Background(), "x86_64")
	require.NoError(t, err)
	require.Equal(t, path, got)
}

// TestEnsureCachedNotExecutable ensures a cached file without execute bits is re-fetched.
func TestEnsureCachedNotExecutable(t *testing.T) {
	t.Parallel()

	var requests int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		_, _ = w.Write([]byte("tool body"))
	}))
	defer server.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "appimagetool")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))

	f := NewFetcher(path, server.URL, time.Second)

	got, err := f.Ensure(context.Background(), "x86_64")
	require.NoError(t, err)
	require.Equal(t, path, got)
	require.Equal(t, 1, requests)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "tool body", string(contents))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NotZero(t, info.Mode().Perm()&0o111)
}

// TestEnsureCachedDirectory ensures a directory at the cache path does not
// pass for a cached tool, even though directories carry execute bits.
func TestEnsureCachedDirectory(t *testing.T) {
	t.Parallel()

	var requests int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		_, _ = w.Write([]byte("tool body"))
	}))
	defer server.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "appimagetool")
	require.NoError(t, os.Mkdir(path, 0o755))

	f := NewFetcher(path, server.URL, time.Second)

	got, err := f.Ensure(context.Background(), "x86_64")
	require.NoError(t, err)
	require.Equal(t, path, got)
	require.Equal(t, 1, requests)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.True(t, info.Mode().IsRegular())
	require.NotZero(t, info.Mode().Perm()&0o111)
}

// TestEnsureDownloads fetches the tool from a test server and marks it executable.
func TestEnsureDownloads(t *testing.T) {
	t.Parallel()

	var requestedPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path

		_, _ = w.Write([]byte("tool body"))
	}))
	defer server.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "appimagetool")

	f := NewFetcher(path, server.URL, time.Second)

	got, err := f.Ensure(context.Background(), "aarch64")
	require.NoError(t, err)
	require.Equal(t, path, got)
	require.Equal(t, "/appimagetool-aarch64.AppImage", requestedPath)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NotZero(t, info.Mode().Perm()&0o111)

	// No apply leftovers.
	_, err = os.Stat(path + ".old")
	require.True(t, os.IsNotExist(err))
}

// TestEnsureBadStatus ensures a non-200 download response is fatal.
func TestEnsureBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dir := t.TempDir()
	f := NewFetcher(filepath.Join(dir, "appimagetool"), server.URL, time.Second)

	_, err := f.Ensure(context.Background(), "x86_64")
	require.Error(t, err)
}
