// ABOUTME: MP3 audio file decoder
// ABOUTME: Decodes MP3 audio with go-mp3 and reads ID3v2 text frames
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"

	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio"
)

// mp3BytesPerFrame is fixed: go-mp3 always outputs 16-bit stereo
const mp3BytesPerFrame = 4

// MP3File reads an MP3 file
type MP3File struct {
	file     *os.File
	decoder  *mp3.Decoder
	info     audio.FileInfo
	buf      []byte
	comments []Comment
}

// OpenMP3 opens an MP3 file for decoding
func OpenMP3(path string) (*MP3File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	// Missing or damaged tags never fail the open
	comments, _ := readID3v2(f)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rewind MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	length := decoder.Length()
	if length < 0 {
		f.Close()
		return nil, fmt.Errorf("%w: MP3 length unknown", ErrInvalidData)
	}

	return &MP3File{
		file:    f,
		decoder: decoder,
		info: audio.FileInfo{
			Channels:   2,
			SampleRate: decoder.SampleRate(),
			Frames:     length / mp3BytesPerFrame,
		},
		comments: comments,
	}, nil
}

// Info returns the stream format
func (m *MP3File) Info() audio.FileInfo {
	return m.info
}

// ReadSamples reads interleaved stereo samples
func (m *MP3File) ReadSamples(dst []int16) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * audio.BytesPerSample
	if cap(m.buf) < need {
		m.buf = make([]byte, need)
	}
	buf := m.buf[:need]

	n, err := io.ReadFull(m.decoder, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("mp3 decode error: %w", err)
	}

	samples := audio.Int16FromBytes(buf[:n])
	return copy(dst, samples), nil
}

// Comments returns the ID3v2 frames found at the start of the file
func (m *MP3File) Comments() []Comment {
	return m.comments
}

// Close closes the underlying file
func (m *MP3File) Close() error {
	return m.file.Close()
}
