// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db holds the local cache: schema creation and the Cache type.

The remote store is the authoritative signature collection. This database is a
best-effort mirror so the server can render a populated page before its first
remote read completes, and so it can remember which clients have signed.

# Opening

	conn, err := db.Open("sqlite", "file:petition.db")
	conn, err := db.Open("postgres", "postgres://...")

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - signature_cache: single row with the last-known collection as JSON
  - client: per-client has-signed flag, last signature id, timestamps

Timestamps are stored as Unix milliseconds so both drivers round-trip them
the same way.
*/
package db
