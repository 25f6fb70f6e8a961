// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package sigstore is the client for the remote signature store.

The store is an external, unauthenticated key-value HTTP endpoint holding the
whole signature collection as one JSON array:

	GET  <endpoint>  → empty body, or [{id, name, location?, comment?, timestamp}, ...]
	POST <endpoint>  → replaces the stored array with the request body

# Reading

	coll, err := client.Read(ctx)

Read returns the collection newest first. Every failure (transport error,
non-2xx, empty body, malformed JSON) wraps ErrRemoteUnavailable, so callers
can keep their previous state with a single errors.Is check.

Records written by other clients are cleaned up on the way in: null elements
and records without a name are dropped, a record without an id gets a stable
id derived from its content, and later repeats of an id are dropped. A
collection read this way never holds two records with the same id.

# Writing

	coll, err := client.Append(ctx, sig)

Append reads, drops any record with sig.ID, prepends sig, and POSTs the whole
array back. Two clients appending at the same time can each read the same
collection and overwrite each other's record; the store offers no way to
prevent that. WithPrecondition re-reads just before the POST and starts over
if the payload hash changed, which narrows the window.
*/
package sigstore
