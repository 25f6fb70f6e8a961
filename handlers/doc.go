// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the petition site.

# Handler Types

Each handler is a struct built by a constructor:

  - SignatureHandler: list, sign, manual sync, progress
  - ClientHandler: the calling client's has-signed flag
  - ContentHandler: manifesto, share links, neighborhood list
  - PageHandler: the server-rendered landing page and its form

	sigHandler := handlers.NewSignatureHandler(svc, syncer, bundle, cfg)

Handlers read the language and client id that middleware.WithLanguage and
middleware.WithClient put in the request context.

# Signing

	POST /api/signatures → Sign

	201 Created   the signature reached the remote store
	202 Accepted  the store was unreachable; the signature is shown locally
	              and "notice" explains it may not have synced
	400           blank name or email, unknown neighborhood, bad JSON
	409           another submission is in flight

POST /sign is the same operation for a plain HTML form. It always answers
303 See Other back to /#petition with ?status= set to "signed", "pending",
or the message key of the error.

# Sync

	POST /api/sync → SyncNow

Runs one pass against the remote store (or joins the one in flight) and
returns the list. If the read fails the list is unchanged and the answer is
502 Bad Gateway.

# Landing Page

GET / renders templates/landing.html with html/template. Signature names and
comments come from an unauthenticated store and are always escaped. Relative
times ("5 minutes ago") and counts ("1.000") follow the request language.
*/
package handlers
