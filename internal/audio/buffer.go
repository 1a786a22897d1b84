package audio

import (
	"errors"
	"io"

	"github.com/gensys/chromapoem/internal/colour"
)

// seekBuffer is an in-memory io.WriteSeeker. wav.Encode seeks back to patch
// the RIFF sizes once the stream is drained.
type seekBuffer struct {
	buf []byte
	pos int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if end := b.pos + len(p); end > len(b.buf) {
		b.buf = append(b.buf, make([]byte, end-len(b.buf))...)
	}
	n := copy(b.buf[b.pos:], p)
	b.pos += n
	return n, nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = b.pos
	case io.SeekEnd:
		base = len(b.buf)
	default:
		return 0, errors.New("invalid whence")
	}
	next := base + int(offset)
	if next < 0 {
		return 0, errors.New("negative position")
	}
	b.pos = next
	return int64(next), nil
}

// EncodeWAV renders the palette chime and returns the WAV file bytes.
func EncodeWAV(p colour.Palette) ([]byte, error) {
	var b seekBuffer
	if err := WriteWAV(&b, p); err != nil {
		return nil, err
	}
	return b.buf, nil
}
