// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package syncloop refreshes the in-memory signature collection from the remote
store on a fixed interval.

	s := syncloop.New(client, state, cache, 30*time.Second)
	s.Start(ctx)
	defer s.Stop()

A pass reads the whole remote collection and, if the read succeeded, replaces
the state with it (full replace, newest first). A failed read keeps what the
state already holds. Passes never overlap: the ticker and SyncNow callers
share a single in-flight read through singleflight.

Stop cancels the timer and the in-flight read and waits for both. A result
that still arrives after Stop is dropped, as is one that raced with a newer
signature write.
*/
package syncloop
