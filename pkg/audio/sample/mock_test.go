// ABOUTME: Call-counting test doubles for the sample loader
// ABOUTME: Mock backend, mock decoder file and mock opener
package sample

import (
	"errors"
	"io"
	"sync"

	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/backend"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/decode"
)

type mockBackend struct {
	seq sync.Mutex
	mu  sync.Mutex

	active  bool
	genFail bool
	// uploadErr is reported by Error after the next BufferData
	uploadErr error
	pending   error

	next    backend.Buffer
	live    map[backend.Buffer]bool
	deleted []backend.Buffer

	contextCalls int
	formatCalls  int
	genCalls     int
	uploadCalls  int
	errorCalls   int

	mappedFormat backend.Format
	uploadFormat backend.Format
	uploadBytes  int
	uploadRate   int

	// afterUpload runs at the end of BufferData, outside the mock's lock
	afterUpload func()
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		active: true,
		live:   make(map[backend.Buffer]bool),
	}
}

func (b *mockBackend) HasActiveContext() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contextCalls++
	return b.active
}

func (b *mockBackend) ChannelsFormat(channels int) (backend.Format, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.formatCalls++
	f, ok := backend.ChannelsFormat(channels)
	b.mappedFormat = f
	return f, ok
}

func (b *mockBackend) GenBuffer() backend.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.genCalls++
	if b.genFail {
		b.pending = backend.ErrNoContext
		return backend.NoBuffer
	}
	b.next++
	b.live[b.next] = true
	return b.next
}

func (b *mockBackend) BufferData(buf backend.Buffer, format backend.Format, data []byte, sampleRate int) {
	b.mu.Lock()
	b.uploadCalls++
	b.uploadFormat = format
	b.uploadBytes = len(data)
	b.uploadRate = sampleRate
	if b.uploadErr != nil && b.pending == nil {
		b.pending = b.uploadErr
	}
	hook := b.afterUpload
	b.mu.Unlock()

	if hook != nil {
		hook()
	}
}

func (b *mockBackend) Error() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errorCalls++
	err := b.pending
	b.pending = nil
	return err
}

func (b *mockBackend) DeleteBuffer(buf backend.Buffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if buf == backend.NoBuffer {
		return
	}
	b.deleted = append(b.deleted, buf)
	if !b.live[buf] {
		b.pending = backend.ErrInvalidName
		return
	}
	delete(b.live, buf)
}

func (b *mockBackend) Lock() {
	b.seq.Lock()
}

func (b *mockBackend) Unlock() {
	b.seq.Unlock()
}

func (b *mockBackend) deleteCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.deleted)
}

func (b *mockBackend) liveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}

type mockFile struct {
	info     audio.FileInfo
	pcm      []int16
	comments []decode.Comment
	readErr  error
	closeErr error

	pos    int
	closed int
}

func (f *mockFile) Info() audio.FileInfo { return f.info }

func (f *mockFile) ReadSamples(dst []int16) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	if f.pos >= len(f.pcm) {
		return 0, io.EOF
	}
	n := copy(dst, f.pcm[f.pos:])
	f.pos += n
	return n, nil
}

func (f *mockFile) Comments() []decode.Comment { return f.comments }

func (f *mockFile) Close() error {
	f.closed++
	return f.closeErr
}

// newMockFile returns a file holding exactly channels × frames samples
func newMockFile(channels, rate, frames int) *mockFile {
	pcm := make([]int16, channels*frames)
	for i := range pcm {
		pcm[i] = int16(i)
	}
	return &mockFile{
		info: audio.FileInfo{Channels: channels, SampleRate: rate, Frames: int64(frames)},
		pcm:  pcm,
	}
}

type mockOpener struct {
	mu    sync.Mutex
	files map[string]*mockFile
	calls int
}

func newMockOpener() *mockOpener {
	return &mockOpener{files: make(map[string]*mockFile)}
}

func (o *mockOpener) add(path string, f *mockFile) *mockFile {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.files[path] = f
	return f
}

func (o *mockOpener) Open(path string) (decode.File, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	f, ok := o.files[path]
	if !ok {
		return nil, errors.New("no such file")
	}
	// each open starts from the beginning
	f.pos = 0
	return f, nil
}

func (o *mockOpener) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

type recordingObserver struct {
	mu       sync.Mutex
	loaded   int
	failed   []Kind
	released int
}

func (r *recordingObserver) Loaded(*SampleData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded++
}

func (r *recordingObserver) LoadFailed(kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, kind)
}

func (r *recordingObserver) Released(*SampleData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released++
}
