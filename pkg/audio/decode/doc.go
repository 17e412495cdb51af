// ABOUTME: Audio file decoder package for multiple container support
// ABOUTME: Provides File/Opener interfaces and WAV, FLAC, MP3, Opus implementations
// Package decode opens audio files and decodes them to 16-bit PCM.
//
// Supports: WAV (8/16/24/32-bit PCM), FLAC, MP3, Ogg Opus
//
// Every decoder implements the File interface: it reports the channel
// count, sample rate and frame count up front, yields interleaved int16
// samples on request, and exposes the raw metadata entries of the
// container for the tags package to normalise.
//
// Example:
//
//	f, err := decode.Open("shot.wav")
//	defer f.Close()
//	pcm := make([]int16, f.Info().SampleCount())
//	_, err = decode.ReadFull(f, pcm)
package decode
