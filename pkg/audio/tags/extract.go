// ABOUTME: Tag extraction from open decoded files
// ABOUTME: Maps Vorbis comment, ID3v2 frame and RIFF INFO keys to canonical keys
package tags

import (
	"strings"

	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/decode"
)

// Source exposes raw container metadata; every decode.File is a Source
type Source interface {
	Comments() []decode.Comment
}

// keyMap maps raw container keys (upper-case) to canonical keys
var keyMap = map[string]string{
	// Vorbis comments (FLAC, Opus)
	"TITLE":        Title,
	"ARTIST":       Artist,
	"ALBUM":        Album,
	"ALBUMARTIST":  AlbumArtist,
	"ALBUM ARTIST": AlbumArtist,
	"GENRE":        Genre,
	"DATE":         Date,
	"YEAR":         Date,
	"TRACKNUMBER":  Track,
	"DISCNUMBER":   Disc,
	"COMMENT":      Comment,
	"DESCRIPTION":  Comment,
	"COPYRIGHT":    Copyright,
	"COMPOSER":     Composer,
	"ENCODER":      Encoder,
	"ENCODED-BY":   Encoder,

	// ID3v2 frames (MP3)
	"TIT2": Title,
	"TPE1": Artist,
	"TALB": Album,
	"TPE2": AlbumArtist,
	"TCON": Genre,
	"TDRC": Date,
	"TYER": Date,
	"TRCK": Track,
	"TPOS": Disc,
	"COMM": Comment,
	"TCOP": Copyright,
	"TCOM": Composer,
	"TSSE": Encoder,

	// RIFF INFO chunks (WAV)
	"INAM": Title,
	"IART": Artist,
	"IPRD": Album,
	"IGNR": Genre,
	"ICRD": Date,
	"ITRK": Track,
	"IPRT": Track,
	"ICMT": Comment,
	"ICOP": Copyright,
	"ISFT": Encoder,
}

// Extract reads the metadata of an open file into a Tags snapshot.
// Unknown keys are ignored; the first value of a repeated key wins.
// A file without metadata yields an empty set.
func Extract(src Source) Tags {
	values := make(map[string]string)

	for _, c := range src.Comments() {
		key, ok := keyMap[strings.ToUpper(strings.TrimSpace(c.Key))]
		if !ok {
			continue
		}
		if _, seen := values[key]; seen {
			continue
		}
		if v := strings.TrimSpace(c.Value); v != "" {
			values[key] = v
		}
	}

	return New(values)
}

// Normalize returns the canonical key for a raw container key
func Normalize(raw string) (string, bool) {
	key, ok := keyMap[strings.ToUpper(strings.TrimSpace(raw))]
	return key, ok
}
