// Package image loads source images used to seed palettes.
package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "golang.org/x/image/webp" // Register WebP format

	httputil "github.com/gensys/chromapoem/internal/util/http"
	"github.com/gensys/chromapoem/internal/util/imagecache"
)

// Loader loads an image from a path or URL.
type Loader interface {
	Load(ctx context.Context, path string) (image.Image, error)
}

// SupportedImageExtensions returns the file extensions that can be decoded.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
}

// IsURL reports whether path is an HTTP(S) URL.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load decodes a JPEG, PNG, GIF or WebP file.
func (l *FileLoader) Load(_ context.Context, path string) (image.Image, error) {
	if err := ValidateImagePath(path); err != nil {
		return nil, err
	}
	return decodeFile(path)
}

func decodeFile(path string) (image.Image, error) {
	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}
	return img, nil
}

// ValidateImagePath checks that a local path is a regular file with a
// supported extension. URLs are accepted as-is.
func ValidateImagePath(path string) error {
	if path == "" {
		return fmt.Errorf("image path cannot be empty")
	}
	if IsURL(path) {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file not found: %s", path)
		}
		return fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(SupportedImageExtensions(), ext) {
		return fmt.Errorf("unsupported image extension %q (supported: %s)", ext, strings.Join(SupportedImageExtensions(), ", "))
	}
	return nil
}

// SmartLoader loads images from both local files and HTTP(S) URLs.
type SmartLoader struct {
	fileLoader *FileLoader
	// Timeout bounds URL downloads. Zero uses the HTTP helper default.
	Timeout time.Duration
	// Cache keeps downloaded images in CacheDir (empty for the default
	// cache directory) and reuses them on later loads.
	Cache    bool
	CacheDir string
}

// NewSmartLoader creates a new SmartLoader instance.
func NewSmartLoader() *SmartLoader {
	return &SmartLoader{fileLoader: NewFileLoader()}
}

// Load loads an image from either a local file path or HTTP(S) URL.
func (l *SmartLoader) Load(ctx context.Context, path string) (image.Image, error) {
	if IsURL(path) {
		return l.loadFromURL(ctx, path)
	}
	return l.fileLoader.Load(ctx, path)
}

func (l *SmartLoader) loadFromURL(ctx context.Context, url string) (image.Image, error) {
	if l.Cache {
		path, err := imagecache.Fetch(ctx, url, imagecache.Options{Dir: l.CacheDir, Timeout: l.Timeout})
		if err != nil {
			return nil, err
		}
		return decodeFile(path)
	}

	data, err := httputil.Fetch(ctx, url, httputil.Options{Timeout: l.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}
	return img, nil
}
