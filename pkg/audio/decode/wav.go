// ABOUTME: WAV audio file decoder
// ABOUTME: Decodes PCM WAV files and their LIST/INFO metadata with go-audio/wav
package decode

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio"
)

// wavFormatPCM is the WAVE_FORMAT_PCM format tag
const wavFormatPCM = 1

// WAVFile reads a PCM WAV file
type WAVFile struct {
	file     *os.File
	decoder  *wav.Decoder
	info     audio.FileInfo
	bitDepth int
	buf      *goaudio.IntBuffer
	comments []Comment
}

// OpenWAV opens a WAV file for decoding
func OpenWAV(path string) (*WAVFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}

	// LIST chunks may sit after the data chunk, so metadata gets its own pass
	meta := wav.NewDecoder(f)
	meta.ReadMetadata()
	comments := wavComments(meta.Metadata)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rewind WAV file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("%w: not a valid WAV file", ErrInvalidData)
	}

	if decoder.WavAudioFormat != wavFormatPCM {
		f.Close()
		return nil, fmt.Errorf("%w: WAV format tag %d (only PCM supported)", ErrUnsupportedFormat, decoder.WavAudioFormat)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth != 8 && bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		f.Close()
		return nil, fmt.Errorf("%w: unsupported bit depth: %d", ErrUnsupportedFormat, bitDepth)
	}

	if err := decoder.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to locate WAV data chunk: %w", err)
	}

	bytesPerFrame := int64(decoder.NumChans) * int64(bitDepth/8)
	if bytesPerFrame == 0 {
		f.Close()
		return nil, fmt.Errorf("%w: WAV header declares no channels", ErrInvalidData)
	}

	// The data chunk size is only a claim; never count past the end of the file
	dataSize := int64(decoder.PCMSize)
	if remaining, err := remainingBytes(f); err == nil && remaining < dataSize {
		dataSize = remaining
	}
	frames := dataSize / bytesPerFrame

	return &WAVFile{
		file:    f,
		decoder: decoder,
		info: audio.FileInfo{
			Channels:   int(decoder.NumChans),
			SampleRate: int(decoder.SampleRate),
			Frames:     frames,
		},
		bitDepth: bitDepth,
		buf: &goaudio.IntBuffer{
			Format:         decoder.Format(),
			SourceBitDepth: bitDepth,
		},
		comments: comments,
	}, nil
}

// Info returns the stream format
func (w *WAVFile) Info() audio.FileInfo {
	return w.info
}

// ReadSamples reads interleaved samples converted to 16-bit
func (w *WAVFile) ReadSamples(dst []int16) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(w.buf.Data) < len(dst) {
		w.buf.Data = make([]int, len(dst))
	}
	w.buf.Data = w.buf.Data[:len(dst)]

	n, err := w.decoder.PCMBuffer(w.buf)
	if err != nil {
		return 0, fmt.Errorf("wav decode error: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	for i := 0; i < n; i++ {
		sample := int32(w.buf.Data[i])
		if w.bitDepth == 8 {
			// 8-bit WAV is unsigned
			sample -= 128
		}
		dst[i] = audio.ScaleToInt16(sample, w.bitDepth)
	}

	return n, nil
}

// Comments returns LIST/INFO entries keyed by their RIFF chunk IDs
func (w *WAVFile) Comments() []Comment {
	return w.comments
}

// Close closes the underlying file
func (w *WAVFile) Close() error {
	return w.file.Close()
}

// wavComments maps go-audio metadata back to RIFF INFO IDs
func wavComments(m *wav.Metadata) []Comment {
	if m == nil {
		return nil
	}

	fields := []Comment{
		{"INAM", m.Title},
		{"IART", m.Artist},
		{"IPRD", m.Product},
		{"IGNR", m.Genre},
		{"ICRD", m.CreationDate},
		{"ITRK", m.TrackNbr},
		{"ICMT", m.Comments},
		{"ICOP", m.Copyright},
		{"ISFT", m.Software},
		{"IENG", m.Engineer},
		{"ITCH", m.Technician},
		{"IKEY", m.Keywords},
		{"IMED", m.Medium},
		{"ISBJ", m.Subject},
		{"ISRC", m.Source},
		{"IARL", m.Location},
	}

	var comments []Comment
	for _, c := range fields {
		if c.Value != "" {
			comments = append(comments, c)
		}
	}
	return comments
}

// remainingBytes returns the bytes between the current offset and the end of f
func remainingBytes(f *os.File) (int64, error) {
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return max(st.Size()-pos, 0), nil
}
