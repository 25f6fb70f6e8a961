// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifier generation and client identity helpers.

There are no user accounts. A "client" is one browser or app install, and the
only thing tracked per client is whether it has signed.

# Client Identity

Browsers receive a random UUID in an HMAC-signed cookie:

	id, err := auth.GenerateClientID()
	cookie := auth.SignClientID(id, salt)
	id, err = auth.VerifyClientCookie(cookie, salt)

Native apps may send their own UUID in the X-Client-ID header instead:

	id, err := auth.ParseClientID(r.Header.Get("X-Client-ID"))

# Signature IDs

	id := auth.NewSignatureID()

Signature IDs are generated once, when the signature is created, and are the
de-duplication key in the remote collection.

# ID Generation

Random hex IDs:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
