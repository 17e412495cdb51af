// ABOUTME: Oto-based audio backend implementation
// ABOUTME: Plays device buffers through one oto player per voice
package backend

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// Oto device implementation using oto library
type Oto struct {
	*bufferTable

	mu         sync.Mutex
	otoCtx     *oto.Context
	voices     map[*otoVoice]struct{}
	sampleRate int
	channels   int
	volume     int
	muted      bool
	ready      bool
}

// NewOto creates an unopened Oto device
func NewOto() *Oto {
	o := &Oto{
		voices: make(map[*otoVoice]struct{}),
		volume: 100,
	}
	o.bufferTable = newBufferTable(o.HasActiveContext)
	return o
}

// Open initializes the output device
func (o *Oto) Open(sampleRate, channels int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	// oto only allows one context per process
	if o.otoCtx != nil {
		if o.sampleRate != sampleRate || o.channels != channels {
			log.Printf("Warning: format change detected (%dHz %dch -> %dHz %dch) but oto doesn't support reinitialization. Continuing with existing context.",
				o.sampleRate, o.channels, sampleRate, channels)
		}
		if err := o.otoCtx.Resume(); err != nil {
			return fmt.Errorf("failed to resume oto context: %w", err)
		}
		o.ready = true
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = sampleRate
	o.channels = channels
	o.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels (oto)", sampleRate, channels)

	return nil
}

// HasActiveContext reports whether the device is open
func (o *Oto) HasActiveContext() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ready
}

// NewVoice binds buf to a new, paused oto player
func (o *Oto) NewVoice(buf Buffer) (Voice, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.ready {
		return nil, ErrNoContext
	}

	pcm, err := o.render(buf, o.sampleRate, o.channels)
	if err != nil {
		return nil, err
	}

	v := &otoVoice{
		o:      o,
		player: o.otoCtx.NewPlayer(bytes.NewReader(audio.Int16ToBytes(pcm))),
	}
	v.player.SetVolume(o.gain())
	o.voices[v] = struct{}{}
	return v, nil
}

// gain converts volume and mute to a player gain (must hold o.mu)
func (o *Oto) gain() float64 {
	if o.muted {
		return 0
	}
	return float64(o.volume) / 100.0
}

// StopAll stops every voice
func (o *Oto) StopAll() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for v := range o.voices {
		v.stop()
	}
}

// SetVolume sets the volume (0-100)
func (o *Oto) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.volume = volume
	for v := range o.voices {
		v.player.SetVolume(o.gain())
	}
	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state
func (o *Oto) SetMuted(muted bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.muted = muted
	for v := range o.voices {
		v.player.SetVolume(o.gain())
	}
	log.Printf("Muted: %v", muted)
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for v := range o.voices {
		if err := v.player.Close(); err != nil {
			log.Printf("Warning: player close error: %v", err)
		}
		delete(o.voices, v)
	}
	if o.otoCtx != nil {
		if err := o.otoCtx.Suspend(); err != nil {
			return fmt.Errorf("failed to suspend oto context: %w", err)
		}
	}
	o.ready = false
	return nil
}

// otoVoice wraps one oto player
type otoVoice struct {
	o      *Oto
	player *oto.Player
}

func (v *otoVoice) Play() {
	v.player.Play()
}

func (v *otoVoice) Pause() {
	v.player.Pause()
}

func (v *otoVoice) Stop() {
	v.o.mu.Lock()
	defer v.o.mu.Unlock()
	v.stop()
}

func (v *otoVoice) stop() {
	v.player.Pause()
	if _, err := v.player.Seek(0, io.SeekStart); err != nil {
		log.Printf("Warning: player rewind error: %v", err)
	}
}

func (v *otoVoice) IsPlaying() bool {
	return v.player.IsPlaying()
}

func (v *otoVoice) Close() error {
	v.o.mu.Lock()
	delete(v.o.voices, v)
	v.o.mu.Unlock()

	return v.player.Close()
}
