// ABOUTME: Tests for the FLAC decoder
// ABOUTME: Uses encoded FLAC fixtures to verify frame stitching, bit depth scaling and comments
package decode

import (
	"io"
	"testing"

	"github.com/Resonate-Protocol/resonate-sampler/internal/testutil"
)

func TestOpenFLAC(t *testing.T) {
	tests := []struct {
		name string
		fx   testutil.FLACFixture
	}{
		{"mono 16-bit", testutil.FLACFixture{Channels: 1, SampleRate: 44100, Frames: 2500}},
		{"stereo 16-bit", testutil.FLACFixture{Channels: 2, SampleRate: 48000, Frames: 1500, BlockSize: 512}},
		{"stereo 24-bit", testutil.FLACFixture{Channels: 2, SampleRate: 96000, Frames: 1200, BitsPerSample: 24}},
		{"unsized stream", testutil.FLACFixture{Channels: 1, SampleRate: 22050, Frames: 2100, Unsized: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFLAC(t, t.TempDir(), "shot.flac", tt.fx)

			f, err := Open(path)
			if err != nil {
				t.Fatalf("failed to open: %v", err)
			}
			defer f.Close()

			info := f.Info()
			if info.Channels != tt.fx.Channels {
				t.Errorf("expected %d channels, got %d", tt.fx.Channels, info.Channels)
			}
			if info.SampleRate != tt.fx.SampleRate {
				t.Errorf("expected sample rate %d, got %d", tt.fx.SampleRate, info.SampleRate)
			}
			if info.Frames != int64(tt.fx.Frames) {
				t.Fatalf("expected %d frames, got %d", tt.fx.Frames, info.Frames)
			}

			// Odd-sized reads cross frame boundaries
			samples := make([]int16, 0, info.SampleCount())
			chunk := make([]int16, 700)
			for {
				n, err := f.ReadSamples(chunk)
				samples = append(samples, chunk[:n]...)
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("read failed after %d samples: %v", len(samples), err)
				}
			}

			if int64(len(samples)) != info.SampleCount() {
				t.Fatalf("expected %d samples, got %d", info.SampleCount(), len(samples))
			}
			for i, s := range samples {
				if s != testutil.FixtureSample(i) {
					t.Fatalf("sample %d: expected %d, got %d", i, testutil.FixtureSample(i), s)
				}
			}
		})
	}
}

func TestOpenFLACComments(t *testing.T) {
	path := testutil.WriteFLAC(t, t.TempDir(), "tagged.flac", testutil.FLACFixture{
		Channels:   1,
		SampleRate: 44100,
		Frames:     100,
		Title:      "Shot",
	})

	f, err := OpenFLAC(path)
	if err != nil {
		t.Fatalf("failed to open: %v", err)
	}
	defer f.Close()

	comments := f.Comments()
	if len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %v", comments)
	}
	if comments[0].Key != "TITLE" || comments[0].Value != "Shot" {
		t.Errorf("expected TITLE=Shot, got %s=%s", comments[0].Key, comments[0].Value)
	}
}

func TestOpenFLACInvalid(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "garbage.flac", []byte("fLaC but not really"))

	f, err := OpenFLAC(path)
	if err == nil {
		f.Close()
		t.Fatal("expected error for invalid FLAC, got nil")
	}
}
