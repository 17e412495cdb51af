// ABOUTME: Tests for shared decoder helpers
// ABOUTME: Tests ReadFull, ID3v2 and Ogg/Vorbis comment parsing
package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio"
)

// stubFile serves a fixed sample slice in chunks
type stubFile struct {
	pcm   pcmReader
	chunk int
	err   error
}

func (s *stubFile) Info() audio.FileInfo { return audio.FileInfo{Channels: 1, Frames: int64(len(s.pcm.pcm))} }
func (s *stubFile) Comments() []Comment  { return nil }
func (s *stubFile) Close() error         { return nil }

func (s *stubFile) ReadSamples(dst []int16) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if len(dst) > s.chunk {
		dst = dst[:s.chunk]
	}
	return s.pcm.read(dst)
}

func TestReadFull(t *testing.T) {
	f := &stubFile{pcm: pcmReader{pcm: []int16{1, 2, 3, 4, 5}}, chunk: 2}

	dst := make([]int16, 5)
	n, err := ReadFull(f, dst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 samples, got %d", n)
	}
	if dst[4] != 5 {
		t.Errorf("expected last sample 5, got %d", dst[4])
	}
}

func TestReadFullShort(t *testing.T) {
	f := &stubFile{pcm: pcmReader{pcm: []int16{1, 2, 3}}, chunk: 8}

	n, err := ReadFull(f, make([]int16, 10))
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 samples read, got %d", n)
	}
}

func TestReadFullError(t *testing.T) {
	boom := errors.New("disk on fire")
	f := &stubFile{err: boom, chunk: 8}

	_, err := ReadFull(f, make([]int16, 4))
	if !errors.Is(err, boom) {
		t.Fatalf("expected underlying error, got %v", err)
	}
}

// id3Tag builds an ID3v2.3 tag with the given text frames
func id3Tag(frames map[string]string) []byte {
	var body bytes.Buffer
	for id, text := range frames {
		data := append([]byte{3}, []byte(text)...) // UTF-8 encoding byte
		header := make([]byte, 10)
		copy(header, id)
		binary.BigEndian.PutUint32(header[4:8], uint32(len(data)))
		body.Write(header)
		body.Write(data)
	}
	body.Write(make([]byte, 16)) // padding

	size := body.Len()
	header := []byte{'I', 'D', '3', 3, 0, 0,
		byte(size>>21) & 0x7F, byte(size>>14) & 0x7F, byte(size>>7) & 0x7F, byte(size) & 0x7F}
	return append(header, body.Bytes()...)
}

func TestReadN(t *testing.T) {
	f := &stubFile{pcm: pcmReader{pcm: []int16{1, 2, 3, 4, 5}}, chunk: 2}

	pcm, err := ReadN(f, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pcm) != 5 || pcm[4] != 5 {
		t.Errorf("expected samples 1..5, got %v", pcm)
	}
}

func TestReadNOverstatedLength(t *testing.T) {
	f := &stubFile{pcm: pcmReader{pcm: []int16{1, 2, 3}}, chunk: 8}

	pcm, err := ReadN(f, 1<<30)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
	if len(pcm) != 3 {
		t.Errorf("expected 3 samples read, got %d", len(pcm))
	}
	if cap(pcm) > readChunk {
		t.Errorf("allocated %d samples for a 3 sample file", cap(pcm))
	}
}

func TestReadNEmpty(t *testing.T) {
	f := &stubFile{chunk: 8}

	pcm, err := ReadN(f, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pcm) != 0 {
		t.Errorf("expected no samples, got %d", len(pcm))
	}
}

func TestReadID3v2(t *testing.T) {
	tag := id3Tag(map[string]string{"TIT2": "Shot", "TPE1": "Foley"})

	comments, err := readID3v2(bytes.NewReader(tag))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := map[string]string{}
	for _, c := range comments {
		found[c.Key] = c.Value
	}
	if found["TIT2"] != "Shot" {
		t.Errorf("expected TIT2 'Shot', got %q", found["TIT2"])
	}
	if found["TPE1"] != "Foley" {
		t.Errorf("expected TPE1 'Foley', got %q", found["TPE1"])
	}
}

func TestReadID3v2Absent(t *testing.T) {
	comments, err := readID3v2(bytes.NewReader(make([]byte, 32)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comments != nil {
		t.Errorf("expected no comments, got %v", comments)
	}
}

func TestDecodeID3Text(t *testing.T) {
	tests := []struct {
		name     string
		encoding byte
		data     []byte
		expected string
	}{
		{"latin1", 0, []byte{'c', 0xE9}, "cé"},
		{"utf16 le bom", 1, []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "hi"},
		{"utf16 be bom", 1, []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}, "hi"},
		{"utf16 be", 2, []byte{0, 'o', 0, 'k'}, "ok"},
		{"utf8", 3, []byte("héllo"), "héllo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeID3Text(tt.encoding, tt.data); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParseCommentFrame(t *testing.T) {
	data := append([]byte{3, 'e', 'n', 'g', 'd', 'e', 's', 'c', 0}, []byte("recorded outdoors")...)
	if got := parseCommentFrame(data); got != "recorded outdoors" {
		t.Errorf("expected comment text, got %q", got)
	}
}

// vorbisComments builds a Vorbis comment block without magic
func vorbisComments(vendor string, entries ...string) []byte {
	var b bytes.Buffer
	writeString := func(s string) {
		_ = binary.Write(&b, binary.LittleEndian, uint32(len(s)))
		b.WriteString(s)
	}
	writeString(vendor)
	_ = binary.Write(&b, binary.LittleEndian, uint32(len(entries)))
	for _, e := range entries {
		writeString(e)
	}
	return b.Bytes()
}

// oggPage wraps packets into one Ogg page
func oggPage(packets ...[]byte) []byte {
	var segments []byte
	var data []byte
	for _, p := range packets {
		n := len(p)
		for n >= 255 {
			segments = append(segments, 255)
			n -= 255
		}
		segments = append(segments, byte(n))
		data = append(data, p...)
	}

	header := make([]byte, 27)
	copy(header, "OggS")
	header[26] = byte(len(segments))
	page := append(header, segments...)
	return append(page, data...)
}

func TestReadOpusHeaders(t *testing.T) {
	head := make([]byte, 19)
	copy(head, "OpusHead")
	head[8] = 1
	head[9] = 2

	tags := append([]byte("OpusTags"), vorbisComments("libopus", "TITLE=Shot", "ARTIST=Foley", "EMPTY=")...)

	stream := append(oggPage(head), oggPage(tags)...)

	channels, comments, err := readOpusHeaders(bytes.NewReader(stream))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channels != 2 {
		t.Errorf("expected 2 channels, got %d", channels)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %v", comments)
	}
	if comments[0].Key != "TITLE" || comments[0].Value != "Shot" {
		t.Errorf("unexpected first comment: %+v", comments[0])
	}
}

func TestReadOpusHeadersNotOpus(t *testing.T) {
	stream := oggPage([]byte("\x01vorbis-ish-header-data"))

	_, _, err := readOpusHeaders(bytes.NewReader(stream))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestReadOggPacketsSpanningSegments(t *testing.T) {
	big := bytes.Repeat([]byte{0xAB}, 600)
	small := []byte("tail")

	packets, err := readOggPackets(bytes.NewReader(oggPage(big, small)), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(packets) != 2 {
		t.Fatalf("expected 2 packets, got %d", len(packets))
	}
	if len(packets[0]) != 600 {
		t.Errorf("expected first packet of 600 bytes, got %d", len(packets[0]))
	}
	if string(packets[1]) != "tail" {
		t.Errorf("expected second packet 'tail', got %q", packets[1])
	}
}
