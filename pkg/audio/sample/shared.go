// ABOUTME: Reference-counted shared ownership of a SampleData
// ABOUTME: The device buffer is released when the last holder lets go
package sample

import (
	"sync/atomic"
)

// shared is the common state behind every Ref to one SampleData
type shared struct {
	data *SampleData
	refs atomic.Int64

	// onZero replaces the direct release when set (used by Bank to evict)
	onZero func(*shared)
}

func (sh *shared) drop() {
	if sh.refs.Add(-1) != 0 {
		return
	}
	if sh.onZero != nil {
		sh.onZero(sh)
		return
	}
	sh.data.release()
}

// Ref is one holder of a shared SampleData. Each holder calls Release once
// when done; further calls on the same Ref are ignored.
type Ref struct {
	sh       *shared
	released atomic.Bool
}

// Share wraps s in its first holder
func Share(s *SampleData) *Ref {
	sh := &shared{data: s}
	sh.refs.Store(1)
	return &Ref{sh: sh}
}

// Clone returns a new holder of the same data
func (r *Ref) Clone() (*Ref, error) {
	if r.released.Load() {
		return nil, ErrReleased
	}
	for {
		n := r.sh.refs.Load()
		if n <= 0 {
			return nil, ErrReleased
		}
		if r.sh.refs.CompareAndSwap(n, n+1) {
			return &Ref{sh: r.sh}, nil
		}
	}
}

// Data returns the shared sample, or nil after this holder released it
func (r *Ref) Data() *SampleData {
	if r.released.Load() {
		return nil
	}
	return r.sh.data
}

// Count returns the number of live holders
func (r *Ref) Count() int64 {
	return r.sh.refs.Load()
}

// Release drops this holder
func (r *Ref) Release() {
	if !r.released.CompareAndSwap(false, true) {
		return
	}
	r.sh.drop()
}
