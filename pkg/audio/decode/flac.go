// ABOUTME: FLAC audio file decoder
// ABOUTME: Decodes FLAC frames and Vorbis comments using mewkiz/flac
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/meta"

	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio"
)

// FLACFile reads a FLAC file
type FLACFile struct {
	file     *os.File
	stream   *flac.Stream
	info     audio.FileInfo
	bitDepth int
	pending  pcmReader
	comments []Comment
}

// OpenFLAC opens a FLAC file for decoding
func OpenFLAC(path string) (*FLACFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	// Parse (not New) so that Vorbis comment blocks are read as well
	stream, err := flac.Parse(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	d := &FLACFile{
		file:   f,
		stream: stream,
		info: audio.FileInfo{
			Channels:   int(info.NChannels),
			SampleRate: int(info.SampleRate),
			Frames:     int64(info.NSamples),
		},
		bitDepth: int(info.BitsPerSample),
	}

	for _, block := range stream.Blocks {
		if vc, ok := block.Body.(*meta.VorbisComment); ok {
			for _, tag := range vc.Tags {
				d.comments = append(d.comments, Comment{Key: tag[0], Value: tag[1]})
			}
		}
	}

	// Streams that do not declare their length are decoded up front
	if info.NSamples == 0 {
		pcm, err := d.decodeAll()
		if err != nil {
			f.Close()
			return nil, err
		}
		d.pending = pcmReader{pcm: pcm}
		d.info.Frames = int64(len(pcm) / d.info.Channels)
	}

	return d, nil
}

// Info returns the stream format
func (d *FLACFile) Info() audio.FileInfo {
	return d.info
}

// ReadSamples reads interleaved samples converted to 16-bit
func (d *FLACFile) ReadSamples(dst []int16) (int, error) {
	read := 0
	for read < len(dst) {
		n, _ := d.pending.read(dst[read:])
		read += n
		if read == len(dst) {
			break
		}

		pcm, err := d.nextFrame()
		if err == io.EOF {
			if read == 0 {
				return 0, io.EOF
			}
			return read, nil
		}
		if err != nil {
			return read, err
		}
		d.pending = pcmReader{pcm: pcm}
	}
	return read, nil
}

// Comments returns the Vorbis comments of the stream
func (d *FLACFile) Comments() []Comment {
	return d.comments
}

// Close closes the underlying file
func (d *FLACFile) Close() error {
	return d.file.Close()
}

// nextFrame decodes one FLAC frame into interleaved 16-bit samples
func (d *FLACFile) nextFrame() ([]int16, error) {
	frame, err := d.stream.ParseNext()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("flac decode error: %w", err)
	}

	channels := len(frame.Subframes)
	blockSize := int(frame.BlockSize)
	pcm := make([]int16, blockSize*channels)

	for i := 0; i < blockSize; i++ {
		for ch := 0; ch < channels; ch++ {
			pcm[i*channels+ch] = audio.ScaleToInt16(frame.Subframes[ch].Samples[i], d.bitDepth)
		}
	}

	return pcm, nil
}

func (d *FLACFile) decodeAll() ([]int16, error) {
	var all []int16
	for {
		pcm, err := d.nextFrame()
		if err == io.EOF {
			return all, nil
		}
		if err != nil {
			return nil, err
		}
		all = append(all, pcm...)
	}
}
