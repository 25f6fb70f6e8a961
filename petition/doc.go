// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package petition owns the signature collection served to clients and the
signing workflow.

# State

State holds the collection newest first, the "syncing" flag, and the submit
guard. Every reader gets a copy. Two kinds of update exist:

  - Apply: a sync pass replaces the collection with what it read, unless the
    state changed after the pass started (its generation moved on).
  - Adopt / PrependLocal: a write replaces it with the collection it wrote, or
    prepends the new signature when the store could not be reached.

# Signing

	res, err := svc.Sign(ctx, clientID, req)

Sign rejects blank names and emails and unknown neighborhoods with a
*ValidationError. Only one write runs at a time per process; a second call
gets ErrSubmitInProgress. A store failure is not an error: the signature is
kept locally and res.Synced is false, so the caller can show the
"may not have synced" notice.

# Progress

Progress(count, target) clamps at 100% and floors the displayed value:
250 of 1000 is 25%, 1200 of 1000 is 100%.
*/
package petition
