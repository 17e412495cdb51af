// ABOUTME: Immutable decoded sample backed by one device buffer
// ABOUTME: Holds file info, tags and the buffer handle; releases the buffer once
package sample

import (
	"log"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/backend"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/tags"
	"github.com/google/uuid"
)

// SampleData is a fully loaded sample. It is read-only after Load returns
// and may be shared across goroutines through a Ref.
type SampleData struct {
	id          uuid.UUID
	path        string
	info        audio.FileInfo
	sampleCount int64
	format      backend.Format
	buffer      backend.Buffer
	tags        tags.Tags

	backend  backend.Backend
	observer Observer
	once     sync.Once
}

// Info returns the channel count, sample rate and frame count
func (s *SampleData) Info() audio.FileInfo {
	return s.info
}

// Buffer returns the device buffer handle
func (s *SampleData) Buffer() backend.Buffer {
	return s.buffer
}

// Tags returns the metadata captured at load time
func (s *SampleData) Tags() tags.Tags {
	return s.tags
}

// SampleCount returns Channels × Frames
func (s *SampleData) SampleCount() int64 {
	return s.sampleCount
}

// Format returns the buffer format the PCM was uploaded with
func (s *SampleData) Format() backend.Format {
	return s.format
}

// Path returns the file the sample was loaded from
func (s *SampleData) Path() string {
	return s.path
}

// ID returns the identity assigned at load time
func (s *SampleData) ID() uuid.UUID {
	return s.id
}

// Duration returns the playing time at the file's sample rate
func (s *SampleData) Duration() time.Duration {
	return s.info.Duration()
}

// Release deletes the device buffer of a sample that was never shared.
// Shared samples are released by their last Ref instead.
func (s *SampleData) Release() {
	s.release()
}

// release deletes the device buffer. Only the first call has an effect.
func (s *SampleData) release() {
	s.once.Do(func() {
		if s.buffer == backend.NoBuffer || s.backend == nil {
			return
		}

		s.backend.Lock()
		s.backend.DeleteBuffer(s.buffer)
		err := s.backend.Error()
		s.backend.Unlock()

		if err != nil {
			// An already-invalid handle is not a failure of the release
			log.Printf("Warning: releasing buffer %d for %s: %v", s.buffer, s.path, err)
		}

		log.Printf("Released sample: %s (buffer %d)", s.path, s.buffer)
		if s.observer != nil {
			s.observer.Released(s)
		}
	})
}
