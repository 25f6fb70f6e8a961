// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Ensuring Integrity petition server.

Ensuring Integrity is a bilingual (English/Greek) petition for stray animal
welfare in Thessaloniki. Signatures live in an external key-value blob store
that holds the whole collection as one JSON array; this server mirrors it,
writes new signatures to it, and renders the petition site.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	REMOTE_STORE_URL=https://... CLIENT_KEY_SALT=... go run .

Or with flags:

	go run . -p 3318 -r "https://..." -client-salt "..."

A .env file in the working directory is loaded first if present.

# Configuration

Required settings:

  - REMOTE_STORE_URL (-r): Blob endpoint holding the signature array
  - CLIENT_KEY_SALT (-client-salt): Secret for client cookie HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Local cache database (default: file:petition.db)
  - SYNC_INTERVAL (-sync-interval): Time between sync passes (default: 30s)
  - REMOTE_TIMEOUT (-remote-timeout): Timeout per store call (default: 10s)
  - WRITE_RETRIES (-write-retries): Re-read before write, 0 disables
  - TARGET_SIGNATURES (-target): Progress bar goal (default: 1000)
  - PUBLIC_URL (-public-url): URL used in share links

# Architecture

The server runs two tasks under one errgroup: the HTTP server and the sync
loop. SIGINT or SIGTERM stops the loop, drains requests, and closes the
local database.

  - sigstore: Remote store client (read, append by full replace)
  - syncloop: Periodic read-and-replace of the in-memory collection
  - petition: In-memory state, signing, progress
  - handlers: HTTP request handlers (signatures, clients, content, pages)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Logging, CORS, language, client identity, JSON helpers
  - i18n: Embedded English and Greek content
  - db: Local cache schema and queries
  - auth: Ids and signed client cookies
  - models: Request/response types
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
