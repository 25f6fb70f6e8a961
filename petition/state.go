// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package petition

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eerco/ensuring-integrity/models"
	"github.com/eerco/ensuring-integrity/sigstore"
)

// State is the in-memory signature collection shown to clients.
// Readers always receive copies; writers replace the slice wholesale.
type State struct {
	mu         sync.RWMutex
	sigs       []models.Signature
	version    string
	generation uint64
	lastSynced time.Time
	seeded     bool

	busy       atomic.Int32
	submitting atomic.Bool
}

// NewState returns an empty state
func NewState() *State {
	return &State{}
}

// Snapshot returns a copy of the collection, newest first
func (s *State) Snapshot() []models.Signature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sigs)
}

// Count returns the number of signatures currently held
func (s *State) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sigs)
}

// Version returns the payload hash of the last collection read from or
// written to the remote store. Empty until the first successful pass.
func (s *State) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// LastSyncedAt reports when the state last matched the remote store
func (s *State) LastSyncedAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSynced, !s.lastSynced.IsZero()
}

// Generation increases on every change. A sync pass records it before
// reading and hands it back to Apply so a slow read cannot undo a newer write.
func (s *State) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Apply replaces the collection with a freshly read remote one if nothing
// changed since gen was taken. It reports whether the replace happened.
func (s *State) Apply(gen uint64, coll sigstore.Collection, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		return false
	}
	s.replaceLocked(coll, at)
	return true
}

// Adopt unconditionally replaces the collection with one just written to
// the remote store.
func (s *State) Adopt(coll sigstore.Collection, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(coll, at)
}

func (s *State) replaceLocked(coll sigstore.Collection, at time.Time) {
	sigs := slices.Clone(coll.Signatures)
	sigstore.SortNewestFirst(sigs)

	s.sigs = sigs
	s.version = coll.Version
	s.lastSynced = at
	s.seeded = true
	s.generation++
}

// PrependLocal adds sig at the front without touching the remote version.
// Used when a write could not reach the store.
func (s *State) PrependLocal(sig models.Signature) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sigs = sigstore.Prepend(s.sigs, sig)
	s.seeded = true
	s.generation++
}

// Seed loads a cached collection. It is a no-op once the state holds
// anything, so a cache load that loses the race to the first sync is dropped.
func (s *State) Seed(sigs []models.Signature, version string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seeded {
		return false
	}
	s.sigs = slices.Clone(sigs)
	sigstore.SortNewestFirst(s.sigs)
	s.version = version
	s.seeded = true
	s.generation++
	return true
}

// Recent returns up to n signatures, newest first. placeholder is true when
// the collection is empty and the "be the first to sign" message should show.
func (s *State) Recent(n int) (sigs []models.Signature, placeholder bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.sigs) == 0 {
		return []models.Signature{}, true
	}
	if n <= 0 || n > len(s.sigs) {
		n = len(s.sigs)
	}
	return slices.Clone(s.sigs[:n]), false
}

// Syncing is true while any remote read or write is in flight
func (s *State) Syncing() bool {
	return s.busy.Load() > 0
}

// BeginSync marks a remote call as in flight. Call the returned func when it ends.
func (s *State) BeginSync() (end func()) {
	s.busy.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { s.busy.Add(-1) })
	}
}

// Submitting is true while a signature write is in flight
func (s *State) Submitting() bool {
	return s.submitting.Load()
}

func (s *State) tryBeginSubmit() bool {
	return s.submitting.CompareAndSwap(false, true)
}

func (s *State) endSubmit() {
	s.submitting.Store(false)
}
