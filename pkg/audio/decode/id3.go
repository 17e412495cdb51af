// ABOUTME: ID3v2 tag reader for MP3 files
// ABOUTME: Extracts text and comment frames from ID3v2.3/2.4 headers
package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"
)

const id3HeaderSize = 10

// readID3v2 reads the text frames of an ID3v2.3 or ID3v2.4 tag at the
// start of r. Returns nil when no tag is present.
func readID3v2(r io.Reader) ([]Comment, error) {
	header := make([]byte, id3HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	if string(header[0:3]) != "ID3" {
		return nil, nil
	}

	version := header[3]
	if version != 3 && version != 4 {
		return nil, fmt.Errorf("unsupported ID3v2 version: 2.%d", version)
	}

	flags := header[5]
	size := decodeSynchsafe(header[6:10])

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("failed to read ID3v2 tag: %w", err)
	}

	offset := 0
	if flags&0x40 != 0 && len(body) >= 4 {
		// Extended header: synchsafe size including itself in 2.4, plain size excluding itself in 2.3
		if version == 4 {
			offset = int(decodeSynchsafe(body[0:4]))
		} else {
			offset = int(binary.BigEndian.Uint32(body[0:4])) + 4
		}
	}

	var comments []Comment
	for offset+id3HeaderSize <= len(body) {
		frameHeader := body[offset : offset+id3HeaderSize]

		// Padding
		if frameHeader[0] == 0 {
			break
		}

		id := string(frameHeader[0:4])
		var frameSize int
		if version == 4 {
			frameSize = int(decodeSynchsafe(frameHeader[4:8]))
		} else {
			frameSize = int(binary.BigEndian.Uint32(frameHeader[4:8]))
		}

		start := offset + id3HeaderSize
		end := start + frameSize
		if frameSize <= 0 || end > len(body) {
			break
		}
		data := body[start:end]
		offset = end

		switch {
		case id == "COMM":
			if text := parseCommentFrame(data); text != "" {
				comments = append(comments, Comment{Key: id, Value: text})
			}
		case strings.HasPrefix(id, "T") && id != "TXXX":
			for _, value := range parseTextFrame(data) {
				comments = append(comments, Comment{Key: id, Value: value})
			}
		}
	}

	return comments, nil
}

// parseTextFrame decodes a text frame; 2.4 frames may carry several
// NUL-separated values.
func parseTextFrame(data []byte) []string {
	if len(data) < 2 {
		return nil
	}

	text := decodeID3Text(data[0], data[1:])
	var values []string
	for _, v := range strings.Split(text, "\x00") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// parseCommentFrame returns the text of a COMM frame, skipping language
// and short description.
func parseCommentFrame(data []byte) string {
	if len(data) < 5 {
		return ""
	}

	encoding := data[0]
	rest := data[4:]

	// Skip the NUL-terminated short description
	terminator := []byte{0}
	if encoding == 1 || encoding == 2 {
		terminator = []byte{0, 0}
	}
	idx := -1
	for i := 0; i+len(terminator) <= len(rest); i += len(terminator) {
		if bytes.Equal(rest[i:i+len(terminator)], terminator) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ""
	}

	text := decodeID3Text(encoding, rest[idx+len(terminator):])
	return strings.TrimSpace(strings.TrimRight(text, "\x00"))
}

// decodeID3Text decodes text per the ID3v2 encoding byte
func decodeID3Text(encoding byte, data []byte) string {
	switch encoding {
	case 0:
		// ISO-8859-1 maps directly onto the first 256 code points
		runes := make([]rune, len(data))
		for i, b := range data {
			runes[i] = rune(b)
		}
		return string(runes)
	case 1:
		return decodeUTF16(data, true)
	case 2:
		return decodeUTF16(data, false)
	default:
		return string(data)
	}
}

// decodeUTF16 decodes UTF-16 text. With bom set, a byte order mark picks
// the endianness; otherwise big-endian is assumed.
func decodeUTF16(data []byte, bom bool) string {
	bigEndian := true
	if bom && len(data) >= 2 {
		switch {
		case data[0] == 0xFF && data[1] == 0xFE:
			bigEndian = false
			data = data[2:]
		case data[0] == 0xFE && data[1] == 0xFF:
			data = data[2:]
		}
	}

	units := make([]uint16, len(data)/2)
	for i := range units {
		if bigEndian {
			units[i] = binary.BigEndian.Uint16(data[i*2:])
		} else {
			units[i] = binary.LittleEndian.Uint16(data[i*2:])
		}
	}
	return string(utf16.Decode(units))
}

// decodeSynchsafe decodes a 28-bit synchsafe integer
func decodeSynchsafe(b []byte) uint32 {
	return uint32(b[0]&0x7F)<<21 | uint32(b[1]&0x7F)<<14 | uint32(b[2]&0x7F)<<7 | uint32(b[3]&0x7F)
}
