// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package syncloop

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/eerco/ensuring-integrity/models"
	"github.com/eerco/ensuring-integrity/petition"
	"github.com/eerco/ensuring-integrity/sigstore"
)

// DefaultInterval is the time between passes when none is configured
const DefaultInterval = 30 * time.Second

var (
	ErrAlreadyStarted = errors.New("sync loop already started")
	ErrStopped        = errors.New("sync loop stopped")
)

// Reader fetches the remote collection
type Reader interface {
	Read(ctx context.Context) (sigstore.Collection, error)
}

// Saver stores the last good collection locally
type Saver interface {
	SaveSignatures(ctx context.Context, sigs []models.Signature, version string) error
}

// Syncer keeps a petition.State in step with the remote store by full
// replacement: every successful read becomes the state as-is.
type Syncer struct {
	reader   Reader
	state    *petition.State
	cache    Saver
	interval time.Duration
	now      func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	stopped   atomic.Bool
	flights   sync.WaitGroup
	life      context.Context
	endOfLife context.CancelFunc
}

// New creates a syncer. cache may be nil; interval <= 0 selects DefaultInterval.
func New(reader Reader, state *petition.State, cache Saver, interval time.Duration) *Syncer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	life, endOfLife := context.WithCancel(context.Background())
	return &Syncer{
		reader:    reader,
		state:     state,
		cache:     cache,
		interval:  interval,
		now:       time.Now,
		life:      life,
		endOfLife: endOfLife,
	}
}

// Interval returns the time between passes
func (s *Syncer) Interval() time.Duration {
	return s.interval
}

// Start runs one pass immediately and then one per interval until ctx is
// done or Stop is called. It does not block.
func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped.Load() {
		return ErrStopped
	}
	if s.done != nil {
		return ErrAlreadyStarted
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(loopCtx, s.done)

	slog.Info("Sync loop started", "interval", s.interval)
	return nil
}

func (s *Syncer) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.SyncNow(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SyncNow(ctx)
		}
	}
}

// Stop cancels the timer and any in-flight read, then waits for both to
// finish. Results that arrive after Stop are discarded. Safe to call more
// than once.
func (s *Syncer) Stop() {
	s.mu.Lock()
	alreadyStopped := s.stopped.Swap(true)
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	s.endOfLife()
	if cancel != nil {
		cancel()
		<-done
	}
	s.flights.Wait()

	if !alreadyStopped {
		slog.Info("Sync loop stopped")
	}
}

// SyncNow runs one pass, or joins the pass already in flight. It reports
// whether the read result was applied to the state. A failed read leaves the
// state untouched and returns an error wrapping sigstore.ErrRemoteUnavailable.
func (s *Syncer) SyncNow(ctx context.Context) (bool, error) {
	ch := s.group.DoChan("pass", func() (any, error) {
		s.mu.Lock()
		if s.stopped.Load() {
			s.mu.Unlock()
			return false, ErrStopped
		}
		s.flights.Add(1)
		s.mu.Unlock()
		defer s.flights.Done()

		return s.pass(s.life)
	})

	select {
	case res := <-ch:
		applied, _ := res.Val.(bool)
		return applied, res.Err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (s *Syncer) pass(ctx context.Context) (bool, error) {
	gen := s.state.Generation()

	end := s.state.BeginSync()
	defer end()

	coll, err := s.reader.Read(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("Sync pass failed, keeping current signatures", "error", err)
		}
		return false, err
	}

	if s.stopped.Load() {
		slog.Debug("Discarding sync result after stop")
		return false, nil
	}

	if !s.state.Apply(gen, coll, s.now().UTC()) {
		slog.Debug("Sync result superseded by a newer write")
		return false, nil
	}

	if s.cache != nil {
		if err := s.cache.SaveSignatures(ctx, coll.Signatures, coll.Version); err != nil {
			slog.Error("Failed to cache signatures", "error", err)
		}
	}

	slog.Debug("Sync pass applied", "count", len(coll.Signatures), "version", coll.Version)
	return true, nil
}
