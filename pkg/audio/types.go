// ABOUTME: Audio type definitions
// ABOUTME: Defines decoded file info and 16-bit PCM conversion helpers
package audio

import (
	"encoding/binary"
	"time"
)

const (
	// BytesPerSample is the size of one 16-bit PCM sample
	BytesPerSample = 2

	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// FileInfo describes a decoded audio file
type FileInfo struct {
	Channels   int
	SampleRate int
	Frames     int64 // Samples per channel
}

// SampleCount returns the number of interleaved samples (channels × frames)
func (i FileInfo) SampleCount() int64 {
	return int64(i.Channels) * i.Frames
}

// Duration returns the playback length at the native sample rate
func (i FileInfo) Duration() time.Duration {
	if i.SampleRate <= 0 {
		return 0
	}
	return time.Duration(i.Frames) * time.Second / time.Duration(i.SampleRate)
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// ScaleToInt16 converts a sample of the given bit depth to the 16-bit range
func ScaleToInt16(sample int32, bitDepth int) int16 {
	switch {
	case bitDepth == 16:
		return int16(sample)
	case bitDepth > 16:
		return int16(sample >> (bitDepth - 16))
	case bitDepth > 0:
		return int16(sample << (16 - bitDepth))
	default:
		return 0
	}
}

// Int16ToBytes packs samples as little-endian bytes
func Int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// Int16FromBytes unpacks little-endian bytes into samples.
// A trailing odd byte is ignored.
func Int16FromBytes(data []byte) []int16 {
	samples := make([]int16, len(data)/BytesPerSample)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}

// Remix converts interleaved samples between channel layouts.
// Mono is duplicated to every output channel; multi-channel input is
// averaged down to mono; other layouts copy the overlapping channels.
func Remix(samples []int16, from, to int) []int16 {
	if from == to || from <= 0 || to <= 0 {
		return samples
	}

	frames := len(samples) / from
	out := make([]int16, frames*to)

	for f := 0; f < frames; f++ {
		in := samples[f*from : (f+1)*from]
		switch {
		case from == 1:
			for ch := 0; ch < to; ch++ {
				out[f*to+ch] = in[0]
			}
		case to == 1:
			var sum int32
			for _, s := range in {
				sum += int32(s)
			}
			out[f] = int16(sum / int32(from))
		default:
			for ch := 0; ch < to && ch < from; ch++ {
				out[f*to+ch] = in[ch]
			}
		}
	}

	return out
}
