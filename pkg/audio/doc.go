// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines FileInfo and 16-bit PCM conversion functions
// Package audio provides fundamental audio types and utilities for sample loading.
//
// This package defines core types used throughout the sampler:
//   - FileInfo: Channel count, sample rate and frame count of a decoded file
//
// It also provides utilities for working with 16-bit PCM:
//   - bit depth scaling to the 16-bit range
//   - int16 ↔ little-endian byte conversions
//   - mono/stereo remixing
//
// Example:
//
//	info := audio.FileInfo{Channels: 2, SampleRate: 44100, Frames: 44100}
//	pcm := make([]int16, info.SampleCount())
//	data := audio.Int16ToBytes(pcm)
package audio
