// ABOUTME: Sample loading pipeline
// ABOUTME: Opens, decodes and uploads a file into a device buffer, cleaning up on failure
package sample

import (
	"errors"
	"fmt"
	"log"

	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/backend"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/tags"
	"github.com/google/uuid"
)

// maxSampleCount bounds the sample count a file header may declare
const maxSampleCount = 1 << 31

// Observer is notified about sample lifecycle events
type Observer interface {
	Loaded(s *SampleData)
	LoadFailed(kind Kind)
	Released(s *SampleData)
}

// Manager loads samples into device buffers
type Manager struct {
	Backend  backend.Backend
	Opener   decode.Opener
	Observer Observer
}

// NewManager creates a manager using the built-in decoders
func NewManager(b backend.Backend) *Manager {
	return &Manager{
		Backend: b,
		Opener:  decode.Default,
	}
}

// Load decodes path and uploads it into a new device buffer.
// On failure the returned error is a *LoadError and no buffer is left allocated.
func (m *Manager) Load(path string) (*SampleData, error) {
	s, err := m.load(path)
	if err != nil {
		if m.Observer != nil {
			m.Observer.LoadFailed(KindOf(err))
		}
		return nil, err
	}

	if m.Observer != nil {
		m.Observer.Loaded(s)
	}
	return s, nil
}

func (m *Manager) load(path string) (s *SampleData, err error) {
	if m.Backend == nil || !m.Backend.HasActiveContext() {
		return nil, loadErr(KindNoActiveContext, path, nil)
	}

	if path == "" {
		return nil, loadErr(KindFileOpen, path, errors.New("empty path"))
	}

	opener := m.Opener
	if opener == nil {
		opener = decode.Default
	}

	f, err := opener.Open(path)
	if err != nil {
		return nil, loadErr(KindFileOpen, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("Warning: failed to close %s: %v", path, cerr)
		}
	}()

	info := f.Info()
	count, err := sampleCount(info)
	if err != nil {
		return nil, loadErr(KindDecode, path, err)
	}

	pcm, err := decode.ReadN(f, count)
	if err != nil {
		return nil, loadErr(KindDecode, path, fmt.Errorf("read %d of %d samples: %w", len(pcm), count, err))
	}

	format, ok := m.Backend.ChannelsFormat(info.Channels)
	if !ok {
		return nil, loadErr(KindUnsupportedFormat, path, fmt.Errorf("%d channels", info.Channels))
	}

	buf, err := m.upload(format, pcm, info.SampleRate)
	if err != nil {
		return nil, loadErr(KindBackend, path, err)
	}

	s = &SampleData{
		id:          uuid.New(),
		path:        path,
		info:        info,
		sampleCount: count,
		format:      format,
		buffer:      buf,
		tags:        tags.Extract(f),
		backend:     m.Backend,
		observer:    m.Observer,
	}

	log.Printf("Loaded sample: %s (%d Hz, %d channels, %d frames, buffer %d)",
		path, info.SampleRate, info.Channels, info.Frames, buf)

	return s, nil
}

// upload allocates a buffer and fills it, deleting the buffer if the
// backend reports an error. The backend stays locked from the first call to
// the last Error check so no other sequence can set or clear its error.
func (m *Manager) upload(format backend.Format, pcm []int16, sampleRate int) (backend.Buffer, error) {
	data := audio.Int16ToBytes(pcm)

	m.Backend.Lock()
	defer m.Backend.Unlock()

	if stale := m.Backend.Error(); stale != nil {
		log.Printf("Warning: discarding stale backend error: %v", stale)
	}

	buf := m.Backend.GenBuffer()
	if buf == backend.NoBuffer {
		if err := m.Backend.Error(); err != nil {
			return backend.NoBuffer, fmt.Errorf("failed to generate buffer: %w", err)
		}
		return backend.NoBuffer, errors.New("failed to generate buffer")
	}

	m.Backend.BufferData(buf, format, data, sampleRate)

	if err := m.Backend.Error(); err != nil {
		m.Backend.DeleteBuffer(buf)
		if derr := m.Backend.Error(); derr != nil {
			log.Printf("Warning: failed to delete buffer %d: %v", buf, derr)
		}
		return backend.NoBuffer, fmt.Errorf("failed to upload buffer data: %w", err)
	}

	return buf, nil
}

func sampleCount(info audio.FileInfo) (int64, error) {
	if info.Channels < 0 || info.Frames < 0 {
		return 0, fmt.Errorf("%w: %d channels, %d frames", decode.ErrInvalidData, info.Channels, info.Frames)
	}
	if info.Channels > 0 && info.Frames > maxSampleCount/int64(info.Channels) {
		return 0, fmt.Errorf("%w: %d frames of %d channels is too large", decode.ErrInvalidData, info.Frames, info.Channels)
	}
	return info.SampleCount(), nil
}
