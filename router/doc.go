// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the petition site.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints; NewHandler
wraps it with language resolution and CORS and is what the server runs:

	handler := router.NewHandler(router.App{
		Service: svc,
		Syncer:  syncer,
		Cache:   cache,
		Bundle:  i18n.Default(),
		Config:  cfg,
	})

# Endpoints

Health:

	GET /health

Pages:

	GET  /     - Landing page (progress, manifesto, form, recent signatures)
	POST /sign - Form submission, redirects back to /#petition

Signatures:

	GET  /api/signatures - Current collection, newest first (?limit=n)
	POST /api/signatures - Sign the petition
	POST /api/sync       - Refresh from the remote store now
	GET  /api/progress   - Count, target, and percentage

Clients:

	GET /api/clients/me - Has this client signed?

Content:

	GET /api/manifesto     - Pillars and the five freedoms
	GET /api/share         - Share links
	GET /api/neighborhoods - Neighborhood keys and labels

Every route except /health accepts ?lang=en|el. Routes that need to know the
caller (the pages, signing, /api/clients/me) go through middleware.WithClient,
which issues the ei_client cookie on first visit.
*/
package router
