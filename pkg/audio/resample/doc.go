// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts 16-bit PCM between different sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling.
//
// Example:
//
//	r := resample.New(44100, 48000, 2)
//	outputSize := r.Resample(inputSamples, outputSamples)
//
//	// or, for a complete buffer
//	out := resample.New(44100, 48000, 2).ResampleAll(pcm)
package resample
