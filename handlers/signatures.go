// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eerco/ensuring-integrity/cliparse"
	"github.com/eerco/ensuring-integrity/i18n"
	"github.com/eerco/ensuring-integrity/middleware"
	"github.com/eerco/ensuring-integrity/models"
	"github.com/eerco/ensuring-integrity/petition"
)

// Syncer runs one read-and-replace pass against the remote store
type Syncer interface {
	SyncNow(ctx context.Context) (bool, error)
}

type SignatureHandler struct {
	svc    *petition.Service
	syncer Syncer
	bundle *i18n.Bundle
	cfg    cliparse.Config
}

func NewSignatureHandler(svc *petition.Service, syncer Syncer, bundle *i18n.Bundle, cfg cliparse.Config) *SignatureHandler {
	return &SignatureHandler{svc: svc, syncer: syncer, bundle: bundle, cfg: cfg}
}

// List handles GET /api/signatures
// Returns the current collection newest first. ?limit=n trims it.
func (h *SignatureHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	middleware.JSONResponse(w, http.StatusOK, h.listResponse(limit))
}

func (h *SignatureHandler) listResponse(limit int) models.SignatureListResponse {
	state := h.svc.State()
	sigs, _ := state.Recent(limit)

	resp := models.SignatureListResponse{
		Signatures: sigs,
		Count:      state.Count(),
		Syncing:    state.Syncing(),
	}
	if at, ok := state.LastSyncedAt(); ok {
		resp.LastSyncedAt = &at
	}
	return resp
}

// Sign handles POST /api/signatures
// 201 when the signature reached the remote store, 202 when it was only kept locally
func (h *SignatureHandler) Sign(w http.ResponseWriter, r *http.Request) {
	lang := middleware.LangFromContext(r.Context())

	var req models.SignRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// A client that disconnects mid-write must not abort the remote write
	ctx := context.WithoutCancel(r.Context())
	res, err := h.svc.Sign(ctx, middleware.ClientIDFromContext(r.Context()), req)
	if err != nil {
		status, key := signErrorStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("failed to sign", "error", err)
		}
		middleware.ErrorResponse(w, status, h.bundle.T(lang, key))
		return
	}

	resp := models.SignResponse{
		Signature: res.Signature,
		Synced:    res.Synced,
	}
	status := http.StatusCreated
	if !res.Synced {
		status = http.StatusAccepted
		resp.Notice = h.bundle.T(lang, "notice_not_synced")
	}

	middleware.JSONResponse(w, status, resp)
}

// signErrorStatus maps a Sign error to an HTTP status and a message key
func signErrorStatus(err error) (int, string) {
	var verr *petition.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Key
	case errors.Is(err, petition.ErrSubmitInProgress):
		return http.StatusConflict, "error_in_progress"
	default:
		return http.StatusInternalServerError, "error_generic"
	}
}

// SyncNow handles POST /api/sync
// Runs one pass (or joins the running one) and returns the resulting list.
// A failed read leaves the list as it was and answers 502.
func (h *SignatureHandler) SyncNow(w http.ResponseWriter, r *http.Request) {
	if _, err := h.syncer.SyncNow(r.Context()); err != nil {
		slog.Warn("manual sync failed", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Remote store unavailable, showing last known signatures")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, h.listResponse(0))
}

// Progress handles GET /api/progress
func (h *SignatureHandler) Progress(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, petition.Progress(h.svc.State().Count(), h.cfg.TargetSignatures))
}
