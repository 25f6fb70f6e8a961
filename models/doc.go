// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Signature: id, name, location, comment, timestamp

The same Signature shape is what the remote store holds as a JSON array, so it
is shared by the store client, the local cache, and the HTTP responses.

# Request Types

  - SignRequest: name, email, location, comment

Email is required to sign but is dropped after validation. It never reaches a
Signature, a log line, or a response.

# Response Types

  - SignResponse: signature, synced, notice
  - SignatureListResponse: signatures, count, syncing, last_synced_at
  - ProgressResponse: count, target, percent, display_percent
  - ClientResponse: client_id, has_signed, signed_at
  - NeighborhoodsResponse, ManifestoResponse, ShareResponse: localized content
  - ErrorResponse: error, message

# Neighborhoods

Locations holds the enumerated neighborhoods. Values are stored by their
English label; Greek labels come from the i18n catalogs.
*/
package models
