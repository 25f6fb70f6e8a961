// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/eerco/ensuring-integrity/cliparse"
	"github.com/eerco/ensuring-integrity/db"
	"github.com/eerco/ensuring-integrity/handlers"
	"github.com/eerco/ensuring-integrity/i18n"
	"github.com/eerco/ensuring-integrity/middleware"
	"github.com/eerco/ensuring-integrity/petition"
)

// App bundles what the handlers need
type App struct {
	Service *petition.Service
	Syncer  handlers.Syncer
	Cache   *db.Cache
	Bundle  *i18n.Bundle
	Config  cliparse.Config
}

func NewRouter(app App) *http.ServeMux {
	mux := http.NewServeMux()

	bundle := app.Bundle
	if bundle == nil {
		bundle = i18n.Default()
	}

	// Initialize handlers
	signatureHandler := handlers.NewSignatureHandler(app.Service, app.Syncer, bundle, app.Config)
	clientHandler := handlers.NewClientHandler(app.Cache)
	contentHandler := handlers.NewContentHandler(bundle, app.Config)
	pageHandler := handlers.NewPageHandler(app.Service, app.Cache, bundle, app.Config)

	var toucher middleware.ClientToucher
	if app.Cache != nil {
		toucher = app.Cache
	}
	withClient := middleware.WithClient(app.Config.ClientKeySalt, toucher)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Landing page and plain form
	mux.Handle("GET /{$}", withClient(middleware.WithLogging(pageHandler.Landing)))
	mux.Handle("POST /sign", withClient(middleware.WithLogging(pageHandler.SignForm)))

	// Signatures
	mux.HandleFunc("GET /api/signatures", middleware.WithLogging(signatureHandler.List))
	mux.Handle("POST /api/signatures", withClient(middleware.WithLogging(signatureHandler.Sign)))
	mux.HandleFunc("POST /api/sync", middleware.WithLogging(signatureHandler.SyncNow))
	mux.HandleFunc("GET /api/progress", middleware.WithLogging(signatureHandler.Progress))

	// Client
	mux.Handle("GET /api/clients/me", withClient(middleware.WithLogging(clientHandler.GetMe)))

	// Static content
	mux.HandleFunc("GET /api/manifesto", middleware.WithLogging(contentHandler.Manifesto))
	mux.HandleFunc("GET /api/share", middleware.WithLogging(contentHandler.Share))
	mux.HandleFunc("GET /api/neighborhoods", middleware.WithLogging(contentHandler.Neighborhoods))

	return mux
}

// NewHandler is the full server handler: routes behind language resolution and CORS
func NewHandler(app App) http.Handler {
	bundle := app.Bundle
	if bundle == nil {
		bundle = i18n.Default()
	}
	return middleware.CORS(middleware.WithLanguage(bundle)(NewRouter(app)))
}
