// ABOUTME: Device buffer table shared by all backends
// ABOUTME: Allocates handles, stores uploaded PCM and tracks sticky error state
package backend

import (
	"fmt"
	"sync"

	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/resample"
)

// bufferData is the content of one device buffer
type bufferData struct {
	format     Format
	data       []byte
	sampleRate int
}

// bufferTable implements the buffer half of Backend.
// Backends embed it and supply the context status.
type bufferTable struct {
	active func() bool

	// seq is held by callers across a call sequence and its Error check
	seq sync.Mutex

	mu      sync.Mutex
	next    Buffer
	buffers map[Buffer]*bufferData
	err     error
}

func newBufferTable(active func() bool) *bufferTable {
	return &bufferTable{
		active:  active,
		buffers: make(map[Buffer]*bufferData),
	}
}

// setErr records err unless an earlier error is still pending (must hold t.mu)
func (t *bufferTable) setErr(err error) {
	if t.err == nil {
		t.err = err
	}
}

// Lock reserves the error state for a sequence of calls ending in Error
func (t *bufferTable) Lock() {
	t.seq.Lock()
}

// Unlock ends a sequence started with Lock
func (t *bufferTable) Unlock() {
	t.seq.Unlock()
}

// ChannelsFormat maps a channel count to a buffer format
func (t *bufferTable) ChannelsFormat(channels int) (Format, bool) {
	return ChannelsFormat(channels)
}

// GenBuffer allocates a new, empty buffer
func (t *bufferTable) GenBuffer() Buffer {
	// active may take the device lock, so query it before t.mu
	active := t.active()

	t.mu.Lock()
	defer t.mu.Unlock()

	if !active {
		t.setErr(ErrNoContext)
		return NoBuffer
	}

	t.next++
	if t.next == NoBuffer {
		t.next++
	}
	t.buffers[t.next] = &bufferData{}
	return t.next
}

// BufferData uploads PCM into buf, replacing any previous content
func (t *bufferTable) BufferData(buf Buffer, format Format, data []byte, sampleRate int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.buffers[buf]
	switch {
	case !ok:
		t.setErr(fmt.Errorf("%w: %d", ErrInvalidName, buf))
		return
	case !format.Valid():
		t.setErr(fmt.Errorf("%w: %v", ErrInvalidEnum, format))
		return
	case sampleRate <= 0:
		t.setErr(fmt.Errorf("%w: sample rate %d", ErrInvalidValue, sampleRate))
		return
	case len(data)%format.FrameSize() != 0:
		t.setErr(fmt.Errorf("%w: %d bytes is not a whole number of %s frames", ErrInvalidValue, len(data), format))
		return
	}

	b.format = format
	b.data = append([]byte(nil), data...)
	b.sampleRate = sampleRate
}

// Error returns and clears the pending error
func (t *bufferTable) Error() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.err
	t.err = nil
	return err
}

// DeleteBuffer frees buf
func (t *bufferTable) DeleteBuffer(buf Buffer) {
	if buf == NoBuffer {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.buffers[buf]; !ok {
		t.setErr(fmt.Errorf("%w: %d", ErrInvalidName, buf))
		return
	}
	delete(t.buffers, buf)
}

// Live returns the number of allocated buffers
func (t *bufferTable) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buffers)
}

// lookup returns a copy of the buffer description
func (t *bufferTable) lookup(buf Buffer) (bufferData, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, ok := t.buffers[buf]
	if !ok {
		return bufferData{}, false
	}
	return *b, true
}

// render converts buf to interleaved samples in the device layout
func (t *bufferTable) render(buf Buffer, sampleRate, channels int) ([]int16, error) {
	b, ok := t.lookup(buf)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidName, buf)
	}
	if !b.format.Valid() {
		return nil, fmt.Errorf("%w: buffer %d has no data", ErrInvalidValue, buf)
	}

	pcm := audio.Int16FromBytes(b.data)
	pcm = audio.Remix(pcm, b.format.Channels(), channels)
	if b.sampleRate != sampleRate {
		pcm = resample.New(b.sampleRate, sampleRate, channels).ResampleAll(pcm)
	}
	return pcm, nil
}
