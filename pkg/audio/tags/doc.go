// ABOUTME: Audio metadata package
// ABOUTME: Provides the Tags snapshot and extraction from decoded files
// Package tags extracts descriptive metadata (title, artist, album, ...)
// from open decoded files.
//
// Raw container keys are mapped to canonical keys:
//   - Vorbis comments (FLAC, Opus): TITLE, ARTIST, ALBUM, ...
//   - ID3v2 frames (MP3): TIT2, TPE1, TALB, ...
//   - RIFF INFO chunks (WAV): INAM, IART, IPRD, ...
//
// Missing tags are absent from the set, never empty strings.
//
// Example:
//
//	t := tags.Extract(file)
//	if title, ok := t.Get(tags.Title); ok {
//	    fmt.Println(title)
//	}
package tags
