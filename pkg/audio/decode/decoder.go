// ABOUTME: File decoder interface definition
// ABOUTME: Common interface for decoding audio files to 16-bit PCM
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio"
)

// Common decoder errors
var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrInvalidData       = errors.New("invalid audio data")
)

// Comment is a raw metadata entry as stored in the container
// (Vorbis comment field, ID3v2 frame ID or RIFF INFO chunk ID).
type Comment struct {
	Key   string
	Value string
}

// File is an open audio file decoded to interleaved 16-bit PCM
type File interface {
	// Info returns channel count, sample rate and frame count
	Info() audio.FileInfo

	// ReadSamples reads up to len(dst) interleaved samples.
	// Returns io.EOF once every sample has been read.
	ReadSamples(dst []int16) (int, error)

	// Comments returns the raw metadata entries found in the file
	Comments() []Comment

	// Close releases the file
	Close() error
}

// Opener opens audio files for decoding
type Opener interface {
	Open(path string) (File, error)
}

// OpenerFunc adapts a function to the Opener interface
type OpenerFunc func(path string) (File, error)

// Open calls f(path)
func (f OpenerFunc) Open(path string) (File, error) {
	return f(path)
}

// Default opens files with the built-in decoders
var Default Opener = OpenerFunc(Open)

// Open opens an audio file, choosing the decoder by file extension.
// Supported: .wav, .flac, .mp3, .opus/.ogg (Ogg Opus)
func Open(path string) (File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("audio file not found: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".wav", ".wave":
		return OpenWAV(path)
	case ".flac":
		return OpenFLAC(path)
	case ".mp3":
		return OpenMP3(path)
	case ".opus", ".ogg":
		return OpenOpus(path)
	default:
		return nil, fmt.Errorf("%w: %s (supported: .wav, .flac, .mp3, .opus)", ErrUnsupportedFormat, ext)
	}
}

// ReadFull reads exactly len(dst) samples from f.
// A file that ends early returns io.ErrUnexpectedEOF with the count read.
func ReadFull(f File, dst []int16) (int, error) {
	read := 0
	for read < len(dst) {
		n, err := f.ReadSamples(dst[read:])
		read += n
		if err == io.EOF {
			if read < len(dst) {
				return read, io.ErrUnexpectedEOF
			}
			return read, nil
		}
		if err != nil {
			return read, err
		}
		if n == 0 {
			return read, io.ErrNoProgress
		}
	}
	return read, nil
}

// readChunk is the growth step of ReadN
const readChunk = 1 << 16

// ReadN reads n samples from f. The result grows as samples arrive, so a
// header that overstates the length costs no more memory than the file holds.
// A file that ends early returns the samples read and io.ErrUnexpectedEOF.
func ReadN(f File, n int64) ([]int16, error) {
	pcm := make([]int16, 0, min(n, readChunk))
	for int64(len(pcm)) < n {
		start := len(pcm)
		want := int(min(n-int64(start), readChunk))

		pcm = slices.Grow(pcm, want)[:start+want]
		got, err := ReadFull(f, pcm[start:])
		pcm = pcm[:start+got]
		if err != nil {
			return pcm, err
		}
	}
	return pcm, nil
}

// pcmReader serves samples from a fully decoded slice
type pcmReader struct {
	pcm []int16
	pos int
}

func (r *pcmReader) read(dst []int16) (int, error) {
	if r.pos >= len(r.pcm) {
		return 0, io.EOF
	}
	n := copy(dst, r.pcm[r.pos:])
	r.pos += n
	return n, nil
}
