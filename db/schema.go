// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the local cache.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// One statement per Exec: lib/pq accepts multi-statement strings but the
// sqlite driver only runs the first one.
var schema = []string{
	// Last-known remote collection, a single row
	`CREATE TABLE IF NOT EXISTS signature_cache (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    payload TEXT NOT NULL,
    version TEXT NOT NULL DEFAULT '',
    updated_at BIGINT NOT NULL
)`,

	// Clients and their has-signed flag
	`CREATE TABLE IF NOT EXISTS client (
    id TEXT PRIMARY KEY,
    has_signed INTEGER NOT NULL DEFAULT 0 CHECK (has_signed IN (0, 1)),
    signature_id TEXT,
    signed_at BIGINT,
    created_at BIGINT NOT NULL,
    last_seen_at BIGINT NOT NULL
)`,

	`CREATE INDEX IF NOT EXISTS idx_client_has_signed ON client(has_signed)`,
}
