// ABOUTME: Format-agnostic audio metadata snapshot
// ABOUTME: Immutable tag set with canonical keys; missing tags are absent
package tags

import (
	"iter"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Canonical tag keys
const (
	Title       = "title"
	Artist      = "artist"
	Album       = "album"
	AlbumArtist = "albumartist"
	Genre       = "genre"
	Date        = "date"
	Track       = "track"
	Disc        = "disc"
	Comment     = "comment"
	Copyright   = "copyright"
	Composer    = "composer"
	Encoder     = "encoder"
)

// Tags is an immutable snapshot of descriptive metadata.
//
// The zero value is an empty tag set. Copies share the underlying
// storage, which is never written after construction.
type Tags struct {
	values map[string]string
}

// New builds a tag set from canonical key/value pairs.
// Empty values are dropped so that missing tags stay absent.
func New(values map[string]string) Tags {
	t := Tags{values: make(map[string]string, len(values))}
	for k, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			t.values[strings.ToLower(k)] = v
		}
	}
	return t
}

// Get returns the value for key and whether it is present
func (t Tags) Get(key string) (string, bool) {
	v, ok := t.values[strings.ToLower(key)]
	return v, ok
}

// Int returns the leading number of a numeric tag such as "3/12"
func (t Tags) Int(key string) (int, bool) {
	v, ok := t.Get(key)
	if !ok {
		return 0, false
	}
	if i := strings.IndexByte(v, '/'); i >= 0 {
		v = v[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Title returns the title tag or ""
func (t Tags) Title() string { return t.values[Title] }

// Artist returns the artist tag or ""
func (t Tags) Artist() string { return t.values[Artist] }

// Album returns the album tag or ""
func (t Tags) Album() string { return t.values[Album] }

// Len returns the number of tags present
func (t Tags) Len() int {
	return len(t.values)
}

// IsEmpty reports whether no tag is present
func (t Tags) IsEmpty() bool {
	return len(t.values) == 0
}

// Keys returns the present keys in sorted order
func (t Tags) Keys() []string {
	return slices.Sorted(maps.Keys(t.values))
}

// All returns an iterator over all tags in key order
func (t Tags) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range t.Keys() {
			if !yield(k, t.values[k]) {
				return
			}
		}
	}
}

// Map returns a copy of the tags as a map
func (t Tags) Map() map[string]string {
	return maps.Clone(t.values)
}
