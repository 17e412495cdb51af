// ABOUTME: Malgo-based audio backend implementation
// ABOUTME: Uses miniaudio via malgo with a callback that mixes all playing voices
package backend

import (
	"fmt"
	"log"
	"sync"

	"github.com/gen2brain/malgo"
)

// Malgo device implementation using malgo/miniaudio library
type Malgo struct {
	*bufferTable
	*mixer

	mu         sync.Mutex
	malgoCtx   *malgo.AllocatedContext
	device     *malgo.Device
	sampleRate int
	channels   int
	ready      bool
}

// NewMalgo creates an unopened Malgo device
func NewMalgo() *Malgo {
	m := &Malgo{mixer: newMixer()}
	m.bufferTable = newBufferTable(m.HasActiveContext)
	return m
}

// Open initializes the playback device
func (m *Malgo) Open(sampleRate, channels int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// If already initialized with same format, reuse
	if m.device != nil && m.sampleRate == sampleRate && m.channels == channels {
		log.Printf("Audio output already initialized with same format, reusing device")
		return nil
	}

	if m.device != nil {
		log.Printf("Format change detected (%dHz/%dch -> %dHz/%dch), reinitializing device",
			m.sampleRate, m.channels, sampleRate, channels)
		m.closeDevice()
	}

	if m.malgoCtx == nil {
		ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err != nil {
			return fmt.Errorf("failed to initialize malgo context: %w", err)
		}
		m.malgoCtx = ctx
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	onSamples := func(pOutputSample, pInputSamples []byte, frameCount uint32) {
		m.dataCallback(pOutputSample, frameCount)
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start device: %w", err)
	}

	m.device = device
	m.sampleRate = sampleRate
	m.channels = channels
	m.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels (malgo/S16)", sampleRate, channels)

	return nil
}

// HasActiveContext reports whether the device is running
func (m *Malgo) HasActiveContext() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// NewVoice binds buf to a new, paused voice
func (m *Malgo) NewVoice(buf Buffer) (Voice, error) {
	m.mu.Lock()
	rate, channels, ready := m.sampleRate, m.channels, m.ready
	m.mu.Unlock()

	if !ready {
		return nil, ErrNoContext
	}

	pcm, err := m.render(buf, rate, channels)
	if err != nil {
		return nil, err
	}
	return m.add(pcm), nil
}

// StopAll stops every voice
func (m *Malgo) StopAll() {
	m.stopAll()
}

// dataCallback is called by malgo to fill the audio output buffer
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	samples := make([]int16, int(frameCount)*m.channels)
	m.mix(samples)

	for i, s := range samples {
		pOutput[i*2] = byte(s)
		pOutput[i*2+1] = byte(s >> 8)
	}
}

// Close releases output resources
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeDevice()

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	return nil
}

// closeDevice stops and uninitializes the device (must hold m.mu)
func (m *Malgo) closeDevice() {
	if m.device == nil {
		return
	}
	if err := m.device.Stop(); err != nil {
		log.Printf("Warning: device stop error: %v", err)
	}
	m.device.Uninit()
	m.device = nil
	m.ready = false
}
