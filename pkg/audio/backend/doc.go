// ABOUTME: Audio backend package for device buffers and playback
// ABOUTME: Provides the Backend/Device interfaces with oto, malgo and in-memory implementations
// Package backend owns device buffers and plays them.
//
// A Backend hands out Buffer handles, accepts 16-bit PCM uploads and records
// failures in a sticky error slot read by Error. A Device adds voices that
// play a buffer on the output.
//
// Implementations:
//   - Oto: one oto player per voice
//   - Malgo: miniaudio callback mixing all voices
//   - Memory: headless, rendered on demand
//
// Example:
//
//	dev := backend.NewMemory(48000, 2)
//	buf := dev.GenBuffer()
//	dev.BufferData(buf, backend.FormatMono16, pcm, 44100)
//	if err := dev.Error(); err != nil {
//	    dev.DeleteBuffer(buf)
//	}
package backend
