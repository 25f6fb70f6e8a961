// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eerco/ensuring-integrity/db"
	"github.com/eerco/ensuring-integrity/middleware"
	"github.com/eerco/ensuring-integrity/models"
)

type ClientHandler struct {
	cache *db.Cache
}

func NewClientHandler(cache *db.Cache) *ClientHandler {
	return &ClientHandler{cache: cache}
}

// GetMe handles GET /api/clients/me
// Returns whether the calling client has a confirmed signature
func (h *ClientHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.ClientIDFromContext(r.Context())
	if clientID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Client not identified")
		return
	}

	state, err := h.cache.Client(r.Context(), clientID)
	if err != nil {
		slog.Error("failed to load client", "client_id", clientID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ClientResponse{
		ClientID:  clientID,
		HasSigned: state.HasSigned,
		SignedAt:  state.SignedAt,
	})
}
