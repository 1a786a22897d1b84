// Package imagecache downloads remote seed images into a local cache.
package imagecache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	httputil "github.com/gensys/chromapoem/internal/util/http"
)

// Options configures a cached download.
type Options struct {
	// Dir is the cache directory. Empty uses DefaultDir.
	Dir string

	// Refresh downloads the image even when a cached copy exists.
	Refresh bool

	// Timeout bounds the download. Zero uses the HTTP helper default.
	Timeout time.Duration
}

// DefaultDir returns the default cache directory.
func DefaultDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "chromapoem", "images"), nil
	}
	return filepath.Join(cacheDir, "chromapoem", "images"), nil
}

// Filename returns the deterministic cache file name for a URL: a hash of the
// URL plus the extension of its path, or .img when it has none.
func Filename(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))

	ext := ""
	if u, err := url.Parse(rawURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	if ext == "" || len(ext) > 5 {
		ext = ".img"
	}
	return fmt.Sprintf("%x%s", hash[:16], ext)
}

// Fetch returns the local path of rawURL, downloading it when it is not
// cached yet.
func Fetch(ctx context.Context, rawURL string, opts Options) (string, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return "", fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	dir := opts.Dir
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	cachedPath := filepath.Join(dir, Filename(rawURL))
	if !opts.Refresh {
		if _, err := os.Stat(cachedPath); err == nil {
			return cachedPath, nil
		}
	}

	data, err := httputil.Fetch(ctx, rawURL, httputil.Options{Timeout: opts.Timeout})
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	if err := os.WriteFile(cachedPath, data, 0o644); err != nil { // #nosec G306 - Cache files need standard read permissions
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	return cachedPath, nil
}
