// ABOUTME: Path-keyed cache of shared samples
// ABOUTME: Loads each file once, hands out holders and evicts on last release
package sample

import (
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Bank shares one SampleData per path among all its holders
type Bank struct {
	manager *Manager
	group   singleflight.Group

	mu      sync.Mutex
	entries map[string]*shared
}

// NewBank creates an empty bank loading through m
func NewBank(m *Manager) *Bank {
	return &Bank{
		manager: m,
		entries: make(map[string]*shared),
	}
}

// Acquire returns a new holder of the sample at path, loading it on first
// use. Concurrent first loads of one path share a single Load call.
func (b *Bank) Acquire(path string) (*Ref, error) {
	for {
		if r := b.acquire(path); r != nil {
			return r, nil
		}

		_, err, _ := b.group.Do(path, func() (any, error) {
			b.mu.Lock()
			_, ok := b.entries[path]
			b.mu.Unlock()
			if ok {
				return nil, nil
			}

			s, err := b.manager.Load(path)
			if err != nil {
				return nil, err
			}

			b.mu.Lock()
			b.entries[path] = &shared{data: s, onZero: b.evict}
			b.mu.Unlock()
			return nil, nil
		})
		if err != nil {
			return nil, err
		}
	}
}

// acquire adds a holder to an existing entry
func (b *Bank) acquire(path string) *Ref {
	b.mu.Lock()
	defer b.mu.Unlock()

	sh, ok := b.entries[path]
	if !ok {
		return nil
	}
	sh.refs.Add(1)
	return &Ref{sh: sh}
}

// evict removes sh once its count is still zero under the bank lock
func (b *Bank) evict(sh *shared) {
	path := sh.data.Path()

	b.mu.Lock()
	if sh.refs.Load() != 0 || b.entries[path] != sh {
		b.mu.Unlock()
		return
	}
	delete(b.entries, path)
	b.mu.Unlock()

	log.Printf("Evicted sample: %s", path)
	sh.data.release()
}

// Len returns the number of cached samples
func (b *Bank) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Paths returns the cached paths in sorted order
func (b *Bank) Paths() []string {
	b.mu.Lock()
	paths := make([]string, 0, len(b.entries))
	for p := range b.entries {
		paths = append(paths, p)
	}
	b.mu.Unlock()

	sort.Strings(paths)
	return paths
}
