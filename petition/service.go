// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package petition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eerco/ensuring-integrity/auth"
	"github.com/eerco/ensuring-integrity/i18n"
	"github.com/eerco/ensuring-integrity/models"
	"github.com/eerco/ensuring-integrity/sigstore"
)

var (
	ErrValidation       = errors.New("invalid signature")
	ErrSubmitInProgress = errors.New("a signature is already being submitted")
)

// ValidationError names the rejected field and the message key to show
type ValidationError struct {
	Field string
	Key   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s", e.Field)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Store is the remote side of a signature write
type Store interface {
	Append(ctx context.Context, sig models.Signature) (sigstore.Collection, error)
}

// Cache is the local, non-authoritative copy kept across restarts
type Cache interface {
	LoadSignatures(ctx context.Context) ([]models.Signature, string, error)
	SaveSignatures(ctx context.Context, sigs []models.Signature, version string) error
	MarkSigned(ctx context.Context, clientID, signatureID string, at time.Time) error
}

// SignResult is the outcome of a signature submission. Synced is false when
// the signature was only added locally.
type SignResult struct {
	Signature models.Signature
	Synced    bool
}

// Service creates signatures and keeps State in step with the remote store
type Service struct {
	state  *State
	store  Store
	cache  Cache
	bundle *i18n.Bundle
	now    func() time.Time
}

// NewService wires a service. cache may be nil.
func NewService(state *State, store Store, cache Cache, bundle *i18n.Bundle) *Service {
	if bundle == nil {
		bundle = i18n.Default()
	}
	return &Service{
		state:  state,
		store:  store,
		cache:  cache,
		bundle: bundle,
		now:    time.Now,
	}
}

// State returns the state the service writes to
func (s *Service) State() *State {
	return s.state
}

// Restore seeds the state from the local cache
func (s *Service) Restore(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	sigs, version, err := s.cache.LoadSignatures(ctx)
	if err != nil {
		return fmt.Errorf("load cached signatures: %w", err)
	}
	if s.state.Seed(sigs, version) {
		slog.Info("Restored cached signatures", "count", len(sigs))
	}
	return nil
}

// Validate checks a request and returns the signature fields it would
// produce. Email is checked for presence only and then dropped.
func (s *Service) Validate(req models.SignRequest) (models.Signature, error) {
	name := sanitizeText(req.Name)
	if name == "" {
		return models.Signature{}, &ValidationError{Field: "name", Key: "error_required"}
	}
	if strings.TrimSpace(req.Email) == "" {
		return models.Signature{}, &ValidationError{Field: "email", Key: "error_required"}
	}

	location, ok := s.bundle.NormalizeLocation(req.Location)
	if !ok {
		return models.Signature{}, &ValidationError{Field: "location", Key: "error_location"}
	}

	return models.Signature{
		Name:     name,
		Location: location,
		Comment:  sanitizeText(req.Comment),
	}, nil
}

// Sign validates req and writes a new signature to the remote store. If the
// store cannot be reached the signature is prepended locally and the result
// reports Synced false; that is not an error.
func (s *Service) Sign(ctx context.Context, clientID string, req models.SignRequest) (SignResult, error) {
	sig, err := s.Validate(req)
	if err != nil {
		return SignResult{}, err
	}

	if !s.state.tryBeginSubmit() {
		return SignResult{}, ErrSubmitInProgress
	}
	defer s.state.endSubmit()

	end := s.state.BeginSync()
	defer end()

	sig.ID = auth.NewSignatureID()
	sig.Timestamp = s.now().UTC()

	coll, err := s.store.Append(ctx, sig)
	if err != nil {
		slog.Warn("Signature not synced, keeping it locally",
			"signature_id", sig.ID,
			"error", err,
		)
		s.state.PrependLocal(sig)
		return SignResult{Signature: sig, Synced: false}, nil
	}

	s.state.Adopt(coll, s.now().UTC())

	if s.cache != nil {
		if clientID != "" {
			if err := s.cache.MarkSigned(ctx, clientID, sig.ID, sig.Timestamp); err != nil {
				slog.Error("Failed to record signed client", "client_id", clientID, "error", err)
			}
		}
		if err := s.cache.SaveSignatures(ctx, coll.Signatures, coll.Version); err != nil {
			slog.Error("Failed to cache signatures", "error", err)
		}
	}

	slog.Info("Signature added",
		"signature_id", sig.ID,
		"location", sig.Location,
		"count", len(coll.Signatures),
	)

	return SignResult{Signature: sig, Synced: true}, nil
}
