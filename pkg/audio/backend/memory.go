// ABOUTME: In-memory audio backend
// ABOUTME: Headless device used by the info command and tests, rendered on demand
package backend

import (
	"sync/atomic"
)

const (
	DefaultSampleRate = 48000
	DefaultChannels   = 2
)

// Memory is a Device without hardware. Voices are mixed only when Render is
// called.
type Memory struct {
	*bufferTable
	*mixer

	sampleRate int
	channels   int
	closed     atomic.Bool
}

// NewMemory creates an in-memory device with an active context
func NewMemory(sampleRate, channels int) *Memory {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if channels <= 0 {
		channels = DefaultChannels
	}

	m := &Memory{
		mixer:      newMixer(),
		sampleRate: sampleRate,
		channels:   channels,
	}
	m.bufferTable = newBufferTable(m.HasActiveContext)
	return m
}

// HasActiveContext reports whether the device is open
func (m *Memory) HasActiveContext() bool {
	return !m.closed.Load()
}

// NewVoice binds buf to a new, paused voice
func (m *Memory) NewVoice(buf Buffer) (Voice, error) {
	pcm, err := m.render(buf, m.sampleRate, m.channels)
	if err != nil {
		return nil, err
	}
	return m.add(pcm), nil
}

// Render mixes the next frames of output
func (m *Memory) Render(frames int) []int16 {
	out := make([]int16, frames*m.channels)
	m.mix(out)
	return out
}

// Playing returns the number of playing voices
func (m *Memory) Playing() int {
	return m.playing()
}

// StopAll stops every voice
func (m *Memory) StopAll() {
	m.stopAll()
}

// SampleRate returns the device rate
func (m *Memory) SampleRate() int {
	return m.sampleRate
}

// Channels returns the device channel count
func (m *Memory) Channels() int {
	return m.channels
}

// Close ends the context. Buffers stay allocated until deleted.
func (m *Memory) Close() error {
	m.closed.Store(true)
	m.stopAll()
	return nil
}
