package report

import (
	"archive/tar"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/gensys/chromapoem/internal/snapshot"
)

// Bundle entry names.
const (
	PaletteFile  = "palette.json"
	ReportFile   = "report.txt"
	PreviewFile  = "preview.png"
	WaveformFile = "waveform.png"
	ChimeFile    = "chime.wav"
	PoemFile     = "poem.txt"
)

// BundleFiles lists the entries of a bundle in archive order.
var BundleFiles = []string{PaletteFile, ReportFile, PreviewFile, WaveformFile, ChimeFile, PoemFile}

// MaxBundleSize bounds the decompressed size ReadBundle accepts.
const MaxBundleSize = 64 * 1024 * 1024

// Entry is one file read back from a bundle.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
	Data    []byte
}

// Bundle is the content of a report archive.
type Bundle struct {
	Entries []Entry
}

// File returns the data of the named entry.
func (b *Bundle) File(name string) ([]byte, bool) {
	for _, e := range b.Entries {
		if e.Name == name {
			return e.Data, true
		}
	}
	return nil, false
}

// Names returns the entry names in archive order.
func (b *Bundle) Names() []string {
	names := make([]string, len(b.Entries))
	for i, e := range b.Entries {
		names[i] = e.Name
	}
	return names
}

// Snapshot decodes the bundled palette.json.
func (b *Bundle) Snapshot() (*snapshot.Snapshot, error) {
	data, ok := b.File(PaletteFile)
	if !ok {
		return nil, fmt.Errorf("bundle has no %s", PaletteFile)
	}
	return snapshot.Decode(data)
}

// WriteBundle writes the report as a .tar.xz archive.
func WriteBundle(w io.Writer, r *Report) error {
	palette, err := json.MarshalIndent(r.Snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode palette: %w", err)
	}
	poemText := r.Poem
	if r.PoemError != "" {
		poemText = "Poem unavailable: " + r.PoemError
	}

	files := map[string][]byte{
		PaletteFile:  palette,
		ReportFile:   []byte(r.Text()),
		PreviewFile:  r.PreviewPNG,
		WaveformFile: r.WaveformPNG,
		ChimeFile:    r.ChimeWAV,
		PoemFile:     []byte(poemText),
	}

	xzw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}
	tw := tar.NewWriter(xzw)

	modTime := r.GeneratedAt
	if modTime.IsZero() {
		modTime = time.Now()
	}
	for _, name := range BundleFiles {
		data := files[name]
		header := &tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(data)),
			ModTime:  modTime,
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("failed to write %s header: %w", name, err)
		}
		if _, err := tw.Write(data); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to close tar archive: %w", err)
	}
	if err := xzw.Close(); err != nil {
		return fmt.Errorf("failed to close xz stream: %w", err)
	}
	return nil
}

// ReadBundle reads a .tar.xz bundle. Entries with unsafe paths or a total
// size above MaxBundleSize are rejected.
func ReadBundle(r io.Reader) (*Bundle, error) {
	xzr, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}
	tr := tar.NewReader(newLimitedReader(xzr, MaxBundleSize))

	b := &Bundle{}
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar archive: %w", err)
		}
		if header.Typeflag == tar.TypeDir {
			continue
		}
		if err := validateEntryName(header.Name); err != nil {
			return nil, err
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		b.Entries = append(b.Entries, Entry{
			Name:    header.Name,
			Size:    header.Size,
			ModTime: header.ModTime,
			Data:    data,
		})
	}

	if len(b.Entries) == 0 {
		return nil, fmt.Errorf("no files found in archive")
	}
	return b, nil
}

// validateEntryName rejects absolute and parent-relative archive paths.
func validateEntryName(name string) error {
	if name == "" {
		return fmt.Errorf("empty file path in archive")
	}
	if path.IsAbs(name) || strings.HasPrefix(name, "\\") {
		return fmt.Errorf("absolute paths in archives are not allowed: %s", name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return fmt.Errorf("file path contains directory traversal (..): %s", name)
		}
	}
	return nil
}

// limitedReader fails once more than the allowed bytes are read, unlike
// io.LimitReader which reports a silent EOF.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func newLimitedReader(r io.Reader, maxBytes int64) *limitedReader {
	return &limitedReader{r: r, remaining: maxBytes}
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		return 0, fmt.Errorf("decompression size limit exceeded")
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}
