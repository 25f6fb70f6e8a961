// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/eerco/ensuring-integrity/auth"
)

const (
	// ClientCookie holds the signed client id issued to browsers
	ClientCookie = "ei_client"
	// ClientIDHeader lets native apps send their own client id (a UUID)
	ClientIDHeader = "X-Client-ID"
)

type clientKey struct{}

// ClientToucher records that a client was seen
type ClientToucher interface {
	TouchClient(ctx context.Context, clientID string) error
}

// WithClient attaches a client id to every request. The X-Client-ID header
// wins over the cookie; a browser without a valid cookie is issued a new one.
// touch may be nil.
func WithClient(salt string, touch ClientToucher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID, err := clientFromRequest(r, salt)
			if err != nil {
				clientID, err = auth.GenerateClientID()
				if err != nil {
					slog.Error("Failed to generate client id", "error", err)
					ErrorResponse(w, http.StatusInternalServerError, "Failed to identify client")
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     ClientCookie,
					Value:    auth.SignClientID(clientID, salt),
					Path:     "/",
					MaxAge:   365 * 24 * 60 * 60,
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if touch != nil {
				if err := touch.TouchClient(r.Context(), clientID); err != nil {
					slog.Warn("Failed to record client visit", "client_id", clientID, "error", err)
				}
			}

			next.ServeHTTP(w, r.WithContext(WithClientID(r.Context(), clientID)))
		})
	}
}

func clientFromRequest(r *http.Request, salt string) (string, error) {
	if raw := r.Header.Get(ClientIDHeader); raw != "" {
		if id, err := auth.ParseClientID(raw); err == nil {
			return id, nil
		}
	}
	c, err := r.Cookie(ClientCookie)
	if err != nil {
		return "", auth.ErrInvalidClientCookie
	}
	return auth.VerifyClientCookie(c.Value, salt)
}

// WithClientID stores a client id in ctx
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientKey{}, clientID)
}

// ClientIDFromContext returns the client id set by WithClient, or ""
func ClientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientKey{}).(string)
	return id
}
