// ABOUTME: Playback instance of a shared sample
// ABOUTME: Holds a sample reference and a device voice bound to its buffer
package sound

import (
	"fmt"
	"sync"

	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/backend"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/sample"
	"github.com/google/uuid"
)

// Sound plays one shared sample. Many sounds may play the same sample at
// once; each keeps the sample alive until it is closed.
type Sound struct {
	id    uuid.UUID
	ref   *sample.Ref
	voice backend.Voice

	mu     sync.Mutex
	closed bool
}

// New creates a paused sound of the sample held by ref
func New(ref *sample.Ref, device backend.Device) (*Sound, error) {
	own, err := ref.Clone()
	if err != nil {
		return nil, err
	}

	voice, err := device.NewVoice(own.Data().Buffer())
	if err != nil {
		own.Release()
		return nil, fmt.Errorf("failed to create voice for %s: %w", own.Data().Path(), err)
	}

	return &Sound{
		id:    uuid.New(),
		ref:   own,
		voice: voice,
	}, nil
}

func (s *Sound) ID() uuid.UUID {
	return s.id
}

// Sample returns the sample being played, or nil once closed
func (s *Sound) Sample() *sample.SampleData {
	return s.ref.Data()
}

// Play starts or resumes playback
func (s *Sound) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.voice.Play()
	}
}

// Restart plays from the beginning
func (s *Sound) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.voice.Stop()
		s.voice.Play()
	}
}

// Pause halts playback keeping the position
func (s *Sound) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.voice.Pause()
	}
}

// Stop halts playback and rewinds
func (s *Sound) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.voice.Stop()
	}
}

func (s *Sound) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.voice.IsPlaying()
}

// Close stops the voice and drops the sample reference. Safe to call twice.
func (s *Sound) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	err := s.voice.Close()
	s.ref.Release()
	if err != nil {
		return fmt.Errorf("failed to close voice: %w", err)
	}
	return nil
}
