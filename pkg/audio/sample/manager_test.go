// ABOUTME: Tests for the sample loading pipeline
// ABOUTME: Covers each failure gate, cleanup on failure and real WAV loads
package sample

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-sampler/internal/testutil"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/backend"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/tags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestManager() (*Manager, *mockBackend, *mockOpener) {
	b := newMockBackend()
	o := newMockOpener()
	return &Manager{Backend: b, Opener: o}, b, o
}

func TestLoadSampleCount(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		frames   int
		format   backend.Format
	}{
		{"mono", 1, 1000, backend.FormatMono16},
		{"stereo", 2, 1000, backend.FormatStereo16},
		{"empty", 1, 0, backend.FormatMono16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, b, o := newTestManager()
			f := o.add("shot.wav", newMockFile(tt.channels, 44100, tt.frames))

			s, err := m.Load("shot.wav")
			require.NoError(t, err)

			assert.Equal(t, int64(tt.channels*tt.frames), s.SampleCount())
			assert.Equal(t, int64(tt.frames), s.Info().Frames)
			assert.Equal(t, tt.format, s.Format())
			assert.NotEqual(t, backend.NoBuffer, s.Buffer())
			assert.Equal(t, tt.channels*tt.frames*audio.BytesPerSample, b.uploadBytes)
			assert.Equal(t, 44100, b.uploadRate)
			assert.Equal(t, 1, f.closed, "file must be closed once")
		})
	}
}

func TestLoadUploadFormatMatchesMapping(t *testing.T) {
	for _, channels := range []int{1, 2} {
		m, b, o := newTestManager()
		o.add("x.wav", newMockFile(channels, 48000, 10))

		s, err := m.Load("x.wav")
		require.NoError(t, err)

		want, _ := backend.ChannelsFormat(s.Info().Channels)
		assert.Equal(t, want, b.uploadFormat)
		assert.Equal(t, b.mappedFormat, b.uploadFormat)
	}
}

func TestLoadNoActiveContext(t *testing.T) {
	m, b, o := newTestManager()
	b.active = false
	o.add("shot.wav", newMockFile(1, 44100, 10))

	s, err := m.Load("shot.wav")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrNoActiveContext)
	assert.Equal(t, KindNoActiveContext, KindOf(err))
	assert.Equal(t, 0, o.callCount(), "no file access without a context")
	assert.Equal(t, 0, b.genCalls)
}

func TestLoadNilBackend(t *testing.T) {
	m := &Manager{Opener: newMockOpener()}

	_, err := m.Load("shot.wav")
	assert.Equal(t, KindNoActiveContext, KindOf(err))
}

func TestLoadNonexistentPath(t *testing.T) {
	b := newMockBackend()
	m := &Manager{Backend: b, Opener: decode.Default}

	_, err := m.Load(filepath.Join(t.TempDir(), "missing.wav"))
	assert.ErrorIs(t, err, ErrFileOpen)
	assert.Equal(t, 0, b.genCalls, "no buffer may be allocated")
	assert.Equal(t, 0, b.liveCount())
}

func TestLoadEmptyPath(t *testing.T) {
	m, b, o := newTestManager()

	_, err := m.Load("")
	assert.Equal(t, KindFileOpen, KindOf(err))
	assert.Equal(t, 1, b.contextCalls, "context is checked first")
	assert.Equal(t, 0, o.callCount())
}

func TestLoadDecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		file *mockFile
	}{
		{
			name: "short read",
			file: &mockFile{
				info: audio.FileInfo{Channels: 2, SampleRate: 44100, Frames: 100},
				pcm:  make([]int16, 50),
			},
		},
		{
			name: "io error",
			file: &mockFile{
				info:    audio.FileInfo{Channels: 1, SampleRate: 44100, Frames: 10},
				readErr: errors.New("disk on fire"),
			},
		},
		{
			name: "negative frames",
			file: &mockFile{info: audio.FileInfo{Channels: 1, SampleRate: 44100, Frames: -1}},
		},
		{
			name: "too large",
			file: &mockFile{info: audio.FileInfo{Channels: 2, SampleRate: 44100, Frames: 1 << 40}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, b, o := newTestManager()
			o.add("bad.wav", tt.file)

			_, err := m.Load("bad.wav")
			assert.ErrorIs(t, err, ErrDecode)
			assert.Equal(t, 1, tt.file.closed, "file must be closed on failure")
			assert.Equal(t, 0, b.genCalls)
		})
	}
}

func TestLoadUnsupportedChannels(t *testing.T) {
	m, b, o := newTestManager()
	f := o.add("surround.wav", newMockFile(6, 48000, 10))

	_, err := m.Load("surround.wav")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, 1, f.closed)
	assert.Equal(t, 0, b.genCalls)
}

func TestLoadUploadFailureDeletesBuffer(t *testing.T) {
	m, b, o := newTestManager()
	b.uploadErr = backend.ErrInvalidValue
	f := o.add("shot.wav", newMockFile(1, 44100, 10))

	s, err := m.Load("shot.wav")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrBackend)
	assert.ErrorIs(t, err, backend.ErrInvalidValue, "backend message is carried")
	assert.Equal(t, []backend.Buffer{1}, b.deleted, "generated buffer must be deleted")
	assert.Equal(t, 0, b.liveCount())
	assert.Equal(t, 1, f.closed)
}

func TestLoadGenBufferFailure(t *testing.T) {
	m, b, o := newTestManager()
	b.genFail = true
	o.add("shot.wav", newMockFile(1, 44100, 10))

	_, err := m.Load("shot.wav")
	assert.ErrorIs(t, err, ErrBackend)
	assert.Equal(t, 0, b.uploadCalls)
	assert.Empty(t, b.deleted)
}

func TestLoadDiscardsStaleBackendError(t *testing.T) {
	m, b, o := newTestManager()
	b.pending = backend.ErrInvalidName
	o.add("shot.wav", newMockFile(1, 44100, 10))

	_, err := m.Load("shot.wav")
	assert.NoError(t, err)
}

// releaseDuringUpload makes BufferData start a release of an unrelated,
// already-invalid handle on another goroutine and gives it time to run
// before the loader checks the backend error. The returned func waits for it.
func releaseDuringUpload(b *mockBackend) func() {
	var wg sync.WaitGroup
	b.afterUpload = func() {
		started := make(chan struct{})
		wg.Add(1)
		go func() {
			defer wg.Done()
			close(started)
			stale := &SampleData{path: "stale.wav", buffer: 999, backend: b}
			stale.release()
		}()
		<-started
		time.Sleep(20 * time.Millisecond)
	}
	return wg.Wait
}

func TestLoadRejectedUploadNotMaskedByConcurrentRelease(t *testing.T) {
	m, b, o := newTestManager()
	b.uploadErr = backend.ErrInvalidValue
	o.add("bad.wav", newMockFile(1, 44100, 10))
	wait := releaseDuringUpload(b)

	s, err := m.Load("bad.wav")
	wait()

	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrBackend)
	assert.ErrorIs(t, err, backend.ErrInvalidValue)
	assert.Equal(t, 0, b.liveCount(), "rejected buffer must be deleted")
}

func TestLoadNotFailedByConcurrentReleaseError(t *testing.T) {
	m, b, o := newTestManager()
	o.add("good.wav", newMockFile(1, 44100, 10))
	wait := releaseDuringUpload(b)

	s, err := m.Load("good.wav")
	wait()

	require.NoError(t, err)
	assert.Equal(t, backend.Buffer(1), s.Buffer())
	assert.Equal(t, 1, b.liveCount())
	assert.NoError(t, b.Error(), "the stale release drains its own error")
}

func TestLoadCloseErrorIsNotFatal(t *testing.T) {
	m, _, o := newTestManager()
	f := o.add("shot.wav", newMockFile(1, 44100, 10))
	f.closeErr = errors.New("close failed")

	s, err := m.Load("shot.wav")
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestLoadTags(t *testing.T) {
	m, _, o := newTestManager()
	f := o.add("shot.flac", newMockFile(1, 44100, 10))
	f.comments = []decode.Comment{{Key: "TITLE", Value: "Shot"}, {Key: "ARTIST", Value: ""}}

	s, err := m.Load("shot.flac")
	require.NoError(t, err)

	assert.Equal(t, "Shot", s.Tags().Title())
	_, ok := s.Tags().Get(tags.Artist)
	assert.False(t, ok, "empty values are absent")
}

func TestLoadObserver(t *testing.T) {
	m, _, o := newTestManager()
	obs := &recordingObserver{}
	m.Observer = obs
	o.add("shot.wav", newMockFile(1, 44100, 10))

	s, err := m.Load("shot.wav")
	require.NoError(t, err)
	_, err = m.Load("missing.wav")
	require.Error(t, err)

	s.Release()

	assert.Equal(t, 1, obs.loaded)
	assert.Equal(t, []Kind{KindFileOpen}, obs.failed)
	assert.Equal(t, 1, obs.released)
}

func TestLoadErrorMessage(t *testing.T) {
	err := loadErr(KindFileOpen, "a.wav", errors.New("boom"))
	assert.Equal(t, `failed to open audio file "a.wav": boom`, err.Error())

	var le *LoadError
	require.ErrorAs(t, error(err), &le)
	assert.Equal(t, "a.wav", le.Path)
	assert.NotErrorIs(t, err, ErrDecode)
}

func TestLoadRealWAV(t *testing.T) {
	dir := t.TempDir()
	mono := testutil.WriteWAV(t, dir, "mono.wav", testutil.WAVFixture{Channels: 1, SampleRate: 44100, Frames: 441, Title: "Shot"})
	stereo := testutil.WriteWAV(t, dir, "stereo.wav", testutil.WAVFixture{Channels: 2, SampleRate: 48000, Frames: 480})

	dev := backend.NewMemory(48000, 2)
	defer dev.Close()
	m := NewManager(dev)

	s1, err := m.Load(mono)
	require.NoError(t, err)
	assert.Equal(t, int64(441), s1.SampleCount())
	assert.Equal(t, "Shot", s1.Tags().Title())
	assert.Equal(t, backend.FormatMono16, s1.Format())

	s2, err := m.Load(stereo)
	require.NoError(t, err)
	assert.Equal(t, int64(960), s2.SampleCount())
	assert.True(t, s2.Tags().IsEmpty())

	assert.Equal(t, 2, dev.Live())
	s1.Release()
	s2.Release()
	assert.Equal(t, 0, dev.Live())
}

func TestLoadRealFLAC(t *testing.T) {
	path := testutil.WriteFLAC(t, t.TempDir(), "shot.flac", testutil.FLACFixture{
		Channels:      2,
		SampleRate:    44100,
		Frames:        3000,
		BitsPerSample: 24,
		Title:         "Shot",
	})

	dev := backend.NewMemory(44100, 2)
	defer dev.Close()

	s, err := NewManager(dev).Load(path)
	require.NoError(t, err)
	defer s.Release()

	assert.Equal(t, int64(6000), s.SampleCount())
	assert.Equal(t, backend.FormatStereo16, s.Format())
	assert.Equal(t, "Shot", s.Tags().Title())
	assert.Equal(t, 1, dev.Live())
}

func TestReleaseOnce(t *testing.T) {
	m, b, o := newTestManager()
	o.add("shot.wav", newMockFile(1, 44100, 10))

	s, err := m.Load("shot.wav")
	require.NoError(t, err)

	s.Release()
	s.Release()
	assert.Equal(t, 1, b.deleteCount())
}

func TestReleaseSentinelHandle(t *testing.T) {
	b := newMockBackend()
	s := &SampleData{backend: b}

	s.Release()
	assert.Equal(t, 0, b.deleteCount())
}

func TestReleaseInvalidHandleIsTolerated(t *testing.T) {
	b := newMockBackend()
	s := &SampleData{backend: b, buffer: 77}

	s.Release()
	assert.Equal(t, 1, b.deleteCount())
	assert.NoError(t, b.Error(), "release drains the backend error")
}
