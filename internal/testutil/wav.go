// ABOUTME: Shared test fixtures for audio files
// ABOUTME: Writes deterministic PCM WAV files into temp dirs
// Package testutil provides shared test utilities for the sampler packages.
// Fixtures are generated on the fly so tests never depend on binary files.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

// WAVFixture describes a generated 16-bit PCM WAV file
type WAVFixture struct {
	Channels   int
	SampleRate int
	Frames     int
	Title      string
	Artist     string
}

// FixtureSample returns the value written at interleaved index i
func FixtureSample(i int) int16 {
	return int16(i%2000 - 1000)
}

// WriteWAV writes fx into dir/name and returns the full path
func WriteWAV(tb testing.TB, dir, name string, fx WAVFixture) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(tb, err, "create fixture")

	enc := wav.NewEncoder(f, fx.SampleRate, 16, fx.Channels, 1)
	if fx.Title != "" || fx.Artist != "" {
		enc.Metadata = &wav.Metadata{Title: fx.Title, Artist: fx.Artist}
	}

	data := make([]int, fx.Frames*fx.Channels)
	for i := range data {
		data[i] = int(FixtureSample(i))
	}

	err = enc.Write(&audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: fx.SampleRate, NumChannels: fx.Channels},
		SourceBitDepth: 16,
	})
	require.NoError(tb, err, "write fixture samples")
	require.NoError(tb, enc.Close(), "finalize fixture")
	require.NoError(tb, f.Close(), "close fixture")

	return path
}

// WriteFile writes raw bytes into dir/name and returns the full path
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(path, data, 0o600), "write file")
	return path
}
