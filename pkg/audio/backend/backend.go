// ABOUTME: Audio backend interface definition
// ABOUTME: Device buffer handles, buffer formats, and the backend/voice contracts
package backend

import (
	"errors"
	"fmt"
	"sync"
)

// Buffer is an opaque device buffer handle
type Buffer uint32

// NoBuffer is the sentinel handle; it never names a live buffer
const NoBuffer Buffer = 0

// Format is a device buffer sample layout
type Format int

const (
	FormatMono16 Format = iota + 1
	FormatStereo16
)

// Channels returns the channel count of the format
func (f Format) Channels() int {
	switch f {
	case FormatMono16:
		return 1
	case FormatStereo16:
		return 2
	default:
		return 0
	}
}

// FrameSize returns the bytes per frame
func (f Format) FrameSize() int {
	return f.Channels() * 2
}

// Valid reports whether f is a known format
func (f Format) Valid() bool {
	return f.Channels() > 0
}

func (f Format) String() string {
	switch f {
	case FormatMono16:
		return "mono16"
	case FormatStereo16:
		return "stereo16"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// ChannelsFormat maps a channel count to a buffer format.
// Only mono and stereo are recognized.
func ChannelsFormat(channels int) (Format, bool) {
	switch channels {
	case 1:
		return FormatMono16, true
	case 2:
		return FormatStereo16, true
	default:
		return 0, false
	}
}

// Backend errors reported through Backend.Error
var (
	ErrNoContext    = errors.New("no active audio context")
	ErrInvalidName  = errors.New("invalid buffer name")
	ErrInvalidValue = errors.New("invalid value")
	ErrInvalidEnum  = errors.New("invalid buffer format")
)

// Backend manages device buffers.
//
// Buffer calls do not return errors; failures are recorded and reported by
// the next Error call, which also clears them.
type Backend interface {
	// HasActiveContext reports whether a playback context is open
	HasActiveContext() bool

	// ChannelsFormat maps a channel count to a buffer format
	ChannelsFormat(channels int) (Format, bool)

	// GenBuffer allocates a new, empty buffer. Returns NoBuffer on failure.
	GenBuffer() Buffer

	// BufferData uploads 16-bit little-endian PCM into buf
	BufferData(buf Buffer, format Format, data []byte, sampleRate int)

	// Error returns and clears the first error recorded since the last call
	Error() error

	// DeleteBuffer frees buf. Deleting NoBuffer is a no-op.
	DeleteBuffer(buf Buffer)

	// Lock and Unlock bracket a sequence of calls together with the Error
	// check that ends it. The pending error is shared by every caller, so a
	// sequence that reads it must hold the lock.
	sync.Locker
}

// Voice plays one buffer on a device
type Voice interface {
	Play()
	Pause()
	// Stop pauses and rewinds to the start
	Stop()
	IsPlaying() bool
	Close() error
}

// Device is a Backend that can play its buffers
type Device interface {
	Backend

	// NewVoice binds buf to a new, paused voice
	NewVoice(buf Buffer) (Voice, error)

	// StopAll stops every voice on the device
	StopAll()

	// SetVolume sets the master volume (0-100)
	SetVolume(volume int)

	// SetMuted sets mute state
	SetMuted(muted bool)

	// Close tears down the playback context
	Close() error
}
