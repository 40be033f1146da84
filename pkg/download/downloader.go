// Package download fetches installer files over HTTPS into a local cache.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ProgressCallback is called with download progress updates.
// total is -1 when the server sent no Content-Length.
type ProgressCallback func(downloaded, total int64)

// Options configures a download.
type Options struct {
	URL        string
	DestPath   string
	SHA256     string // Expected checksum (optional)
	OnProgress ProgressCallback
}

// Downloader handles file downloads.
type Downloader struct {
	client *http.Client
}

// NewDownloader creates a new downloader.
func NewDownloader() *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: 0, // No timeout for large downloads
		},
	}
}

// NewDownloaderWithClient creates a downloader with a custom HTTP client.
func NewDownloaderWithClient(client *http.Client) *Downloader {
	return &Downloader{client: client}
}

// Download downloads a file with progress tracking. The file is written to
// DestPath.downloading and renamed into place only after the body (and the
// checksum, when given) is complete.
func (d *Downloader) Download(ctx context.Context, opts Options) error {
	destDir := filepath.Dir(opts.DestPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	tmpPath := opts.DestPath + ".downloading"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	renamed := false
	defer func() {
		out.Close()
		if !renamed {
			os.Remove(tmpPath)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	reader := &progressReader{
		reader:     resp.Body,
		total:      resp.ContentLength,
		onProgress: opts.OnProgress,
	}

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if opts.SHA256 != "" {
		hash, err := FileSHA256(tmpPath)
		if err != nil {
			return fmt.Errorf("failed to calculate checksum: %w", err)
		}
		if !strings.EqualFold(hash, opts.SHA256) {
			return fmt.Errorf("checksum mismatch: expected %s, got %s", opts.SHA256, hash)
		}
	}

	if err := os.Rename(tmpPath, opts.DestPath); err != nil {
		return fmt.Errorf("failed to move file: %w", err)
	}
	renamed = true

	return nil
}

// Cached reports whether path already holds a usable download. Without a
// checksum any existing non-empty file counts.
func Cached(path, sha string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return false
	}
	if sha == "" {
		return true
	}
	hash, err := FileSHA256(path)
	return err == nil && strings.EqualFold(hash, sha)
}

// FileName picks a local file name for a download. URLs whose last path
// element is not a .deb (for example a redirecting API endpoint) fall back
// to <name>.deb.
func FileName(rawURL, name string) string {
	if u, err := url.Parse(rawURL); err == nil {
		base := path.Base(u.Path)
		if strings.HasSuffix(base, ".deb") {
			return base
		}
	}
	return name + ".deb"
}

// FileSHA256 calculates the SHA256 hash of a file.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// progressReader wraps a reader and reports progress.
type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	onProgress ProgressCallback
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.downloaded += int64(n)
	if r.onProgress != nil {
		r.onProgress(r.downloaded, r.total)
	}
	return n, err
}
