// ABOUTME: FLAC fixtures for decoder and loader tests
// ABOUTME: Encodes verbatim frames with mewkiz/flac, optionally with Vorbis comments
package testutil

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
	"github.com/stretchr/testify/require"
)

// FLACFixture describes a generated FLAC file
type FLACFixture struct {
	Channels      int
	SampleRate    int
	Frames        int
	BitsPerSample int // 16 when zero
	BlockSize     int // 1024 when zero
	Title         string

	// Unsized leaves the total sample count in STREAMINFO at zero
	Unsized bool
}

// FLACSample returns the value stored at interleaved index i. Scaled back to
// 16 bits it equals FixtureSample(i).
func FLACSample(i, bitsPerSample int) int32 {
	return int32(FixtureSample(i)) << (bitsPerSample - 16)
}

// WriteFLAC writes fx into dir/name and returns the full path
func WriteFLAC(tb testing.TB, dir, name string, fx FLACFixture) string {
	tb.Helper()

	bps := fx.BitsPerSample
	if bps == 0 {
		bps = 16
	}
	blockSize := fx.BlockSize
	if blockSize == 0 {
		blockSize = 1024
	}

	var channels frame.Channels
	switch fx.Channels {
	case 1:
		channels = frame.ChannelsMono
	case 2:
		channels = frame.ChannelsLR
	default:
		tb.Fatalf("FLAC fixture supports 1 or 2 channels, got %d", fx.Channels)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(tb, err, "create fixture")

	info := &meta.StreamInfo{
		BlockSizeMin:  16,
		BlockSizeMax:  uint16(blockSize),
		SampleRate:    uint32(fx.SampleRate),
		NChannels:     uint8(fx.Channels),
		BitsPerSample: uint8(bps),
	}

	var blocks []*meta.Block
	if fx.Title != "" {
		blocks = append(blocks, &meta.Block{
			// Length only has to be non-zero; the encoder computes the real one
			Header: meta.Header{Type: meta.TypeVorbisComment, Length: 1},
			Body: &meta.VorbisComment{
				Vendor: "resonate-sampler",
				Tags:   [][2]string{{"TITLE", fx.Title}},
			},
		})
	}

	// Without a seeker the encoder cannot rewrite STREAMINFO on Close
	var w io.Writer = f
	if fx.Unsized {
		w = struct{ io.Writer }{f}
	}

	enc, err := flac.NewEncoder(w, info, blocks...)
	require.NoError(tb, err, "create FLAC encoder")

	for start := 0; start < fx.Frames; start += blockSize {
		n := min(blockSize, fx.Frames-start)

		subframes := make([]*frame.Subframe, fx.Channels)
		for ch := range subframes {
			samples := make([]int32, n)
			for i := range samples {
				samples[i] = FLACSample((start+i)*fx.Channels+ch, bps)
			}
			subframes[ch] = &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   samples,
				NSamples:  n,
			}
		}

		err := enc.WriteFrame(&frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(n),
				SampleRate:        uint32(fx.SampleRate),
				Channels:          channels,
				BitsPerSample:     uint8(bps),
			},
			Subframes: subframes,
		})
		require.NoError(tb, err, "write FLAC frame")
	}

	require.NoError(tb, enc.Close(), "finalize fixture")
	if fx.Unsized {
		require.NoError(tb, f.Close(), "close fixture")
	}

	return path
}
