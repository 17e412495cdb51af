// ABOUTME: Ogg Opus audio file decoder
// ABOUTME: Decodes Opus streams with hraban/opus and reads OpusHead/OpusTags
package decode

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/hraban/opus.v2"

	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio"
)

// Opus always decodes at 48kHz
const opusSampleRate = 48000

// Max frame size per channel (120ms at 48kHz)
const opusMaxFrame = 5760

// OpusFile holds a fully decoded Ogg Opus file.
// The container does not declare its length, so the stream is decoded
// at open time.
type OpusFile struct {
	file     *os.File
	info     audio.FileInfo
	pcm      pcmReader
	comments []Comment
}

// OpenOpus opens and decodes an Ogg Opus file
func OpenOpus(path string) (*OpusFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Opus file: %w", err)
	}

	channels, comments, err := readOpusHeaders(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rewind Opus file: %w", err)
	}

	// bufio.Reader hides io.Closer so the stream cannot close f
	stream, err := opus.NewStream(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create opus stream: %w", err)
	}
	defer stream.Close()

	var pcm []int16
	buf := make([]int16, opusMaxFrame*channels)
	for {
		n, err := stream.Read(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("opus decode failed: %w", err)
		}
		pcm = append(pcm, buf[:n*channels]...)
	}

	return &OpusFile{
		file: f,
		info: audio.FileInfo{
			Channels:   channels,
			SampleRate: opusSampleRate,
			Frames:     int64(len(pcm) / channels),
		},
		pcm:      pcmReader{pcm: pcm},
		comments: comments,
	}, nil
}

// Info returns the stream format
func (o *OpusFile) Info() audio.FileInfo {
	return o.info
}

// ReadSamples reads interleaved samples
func (o *OpusFile) ReadSamples(dst []int16) (int, error) {
	return o.pcm.read(dst)
}

// Comments returns the OpusTags entries
func (o *OpusFile) Comments() []Comment {
	return o.comments
}

// Close closes the underlying file
func (o *OpusFile) Close() error {
	return o.file.Close()
}

// readOpusHeaders reads the OpusHead and OpusTags packets
func readOpusHeaders(r io.Reader) (int, []Comment, error) {
	packets, err := readOggPackets(r, 2)
	if len(packets) == 0 {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return 0, nil, fmt.Errorf("%w: failed to read Ogg stream: %v", ErrInvalidData, err)
	}

	head := packets[0]
	if len(head) < 19 || string(head[:8]) != "OpusHead" {
		return 0, nil, fmt.Errorf("%w: not an Ogg Opus stream", ErrUnsupportedFormat)
	}

	channels := int(head[9])
	if channels == 0 {
		return 0, nil, fmt.Errorf("%w: OpusHead declares zero channels", ErrInvalidData)
	}

	var comments []Comment
	if len(packets) > 1 && len(packets[1]) >= 8 && string(packets[1][:8]) == "OpusTags" {
		comments = parseVorbisComments(packets[1][8:])
	}

	return channels, comments, nil
}

// readOggPackets reads up to want complete packets from the start of an
// Ogg stream. Packets may span pages; a segment shorter than 255 bytes
// ends a packet.
func readOggPackets(r io.Reader, want int) ([][]byte, error) {
	var packets [][]byte
	var current []byte
	header := make([]byte, 27)

	for len(packets) < want {
		if _, err := io.ReadFull(r, header); err != nil {
			return packets, err
		}
		if string(header[:4]) != "OggS" {
			return packets, errors.New("invalid Ogg page")
		}
		if header[4] != 0 {
			return packets, fmt.Errorf("unsupported Ogg version: %d", header[4])
		}

		segments := make([]byte, header[26])
		if _, err := io.ReadFull(r, segments); err != nil {
			return packets, err
		}

		for _, size := range segments {
			seg := make([]byte, size)
			if _, err := io.ReadFull(r, seg); err != nil {
				return packets, err
			}
			current = append(current, seg...)
			if size < 255 {
				packets = append(packets, current)
				current = nil
				if len(packets) == want {
					break
				}
			}
		}
	}

	return packets, nil
}

// parseVorbisComments parses a Vorbis comment block (without its magic):
// vendor string, then "KEY=value" entries, all length-prefixed little-endian.
func parseVorbisComments(data []byte) []Comment {
	readString := func() (string, bool) {
		if len(data) < 4 {
			return "", false
		}
		n := binary.LittleEndian.Uint32(data)
		if uint64(n) > uint64(len(data)-4) {
			return "", false
		}
		s := string(data[4 : 4+n])
		data = data[4+n:]
		return s, true
	}

	if _, ok := readString(); !ok {
		return nil
	}
	if len(data) < 4 {
		return nil
	}
	count := binary.LittleEndian.Uint32(data)
	data = data[4:]

	var comments []Comment
	for i := uint32(0); i < count; i++ {
		entry, ok := readString()
		if !ok {
			break
		}
		key, value, found := strings.Cut(entry, "=")
		if !found || value == "" {
			continue
		}
		comments = append(comments, Comment{Key: key, Value: value})
	}
	return comments
}
