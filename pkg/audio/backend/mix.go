// ABOUTME: Software mixer for callback-driven backends
// ABOUTME: Sums playing voices into one interleaved int16 stream with master volume
package backend

import (
	"fmt"
	"math"
	"sync"
)

// mixer sums the voices of one device
type mixer struct {
	mu     sync.Mutex
	voices map[*mixVoice]struct{}
	volume int
	muted  bool
}

func newMixer() *mixer {
	return &mixer{
		voices: make(map[*mixVoice]struct{}),
		volume: 100,
	}
}

// add registers a paused voice over pcm
func (m *mixer) add(pcm []int16) *mixVoice {
	v := &mixVoice{m: m, pcm: pcm}

	m.mu.Lock()
	m.voices[v] = struct{}{}
	m.mu.Unlock()

	return v
}

// mix fills out with the sum of all playing voices.
// A voice that runs out of data stops and rewinds.
func (m *mixer) mix(out []int16) {
	acc := make([]int32, len(out))

	m.mu.Lock()
	for v := range m.voices {
		if !v.playing {
			continue
		}
		n := copy32(acc, v.pcm[v.pos:])
		v.pos += n
		if v.pos >= len(v.pcm) {
			v.playing = false
			v.pos = 0
		}
	}
	volume, muted := m.volume, m.muted
	m.mu.Unlock()

	applyVolume(acc, volume, muted)

	for i, s := range acc {
		out[i] = clamp16(s)
	}
}

// playing returns the number of playing voices
func (m *mixer) playing() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for v := range m.voices {
		if v.playing {
			n++
		}
	}
	return n
}

// stopAll stops every voice
func (m *mixer) stopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for v := range m.voices {
		v.playing = false
		v.pos = 0
	}
}

// SetVolume sets the master volume (0-100)
func (m *mixer) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}

	m.mu.Lock()
	m.volume = volume
	m.mu.Unlock()
}

// SetMuted sets mute state
func (m *mixer) SetMuted(muted bool) {
	m.mu.Lock()
	m.muted = muted
	m.mu.Unlock()
}

// Volume returns the master volume
func (m *mixer) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func copy32(dst []int32, src []int16) int {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		dst[i] += int32(src[i])
	}
	return n
}

func applyVolume(samples []int32, volume int, muted bool) {
	if muted {
		clear(samples)
		return
	}
	if volume == 100 {
		return
	}

	multiplier := float64(volume) / 100.0
	for i, s := range samples {
		samples[i] = int32(float64(s) * multiplier)
	}
}

func clamp16(s int32) int16 {
	if s > math.MaxInt16 {
		return math.MaxInt16
	}
	if s < math.MinInt16 {
		return math.MinInt16
	}
	return int16(s)
}

// mixVoice is a Voice played through a mixer
type mixVoice struct {
	m       *mixer
	pcm     []int16
	pos     int
	playing bool
	closed  bool
}

func (v *mixVoice) Play() {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	if !v.closed {
		v.playing = true
	}
}

func (v *mixVoice) Pause() {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	v.playing = false
}

func (v *mixVoice) Stop() {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	v.playing = false
	v.pos = 0
}

func (v *mixVoice) IsPlaying() bool {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	return v.playing
}

func (v *mixVoice) Close() error {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()

	if v.closed {
		return fmt.Errorf("voice already closed")
	}
	v.closed = true
	v.playing = false
	delete(v.m.voices, v)
	return nil
}
