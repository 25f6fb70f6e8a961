// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/multierr"
	_ "modernc.org/sqlite"

	"github.com/eerco/ensuring-integrity/models"
)

// Open connects to the local cache database and verifies the connection.
// dbType is "sqlite" or "postgres".
func Open(dbType, url string) (*sql.DB, error) {
	switch dbType {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	// modernc.org/sqlite registers as "sqlite", lib/pq as "postgres"
	conn, err := sql.Open(dbType, url)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbType, err)
	}
	if dbType == "sqlite" {
		// sqlite serializes writers anyway; one connection avoids SQLITE_BUSY
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		return nil, multierr.Append(fmt.Errorf("ping %s: %w", dbType, err), conn.Close())
	}
	return conn, nil
}

// Cache is the local, non-authoritative mirror of the remote collection plus
// per-client has-signed flags. Losing it only costs a slower first render.
type Cache struct {
	db *sql.DB
}

func NewCache(db *sql.DB) *Cache {
	return &Cache{db: db}
}

// ClientState is the stored state of one client
type ClientState struct {
	ClientID    string
	HasSigned   bool
	SignatureID string
	SignedAt    *time.Time
}

// Close closes the underlying database
func (c *Cache) Close() error {
	return c.db.Close()
}

// LoadSignatures returns the cached collection, or nil if nothing was cached yet
func (c *Cache) LoadSignatures(ctx context.Context) ([]models.Signature, string, error) {
	var payload, version string
	err := c.db.QueryRowContext(ctx, `
		SELECT payload, version FROM signature_cache WHERE id = 1
	`).Scan(&payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("load cached signatures: %w", err)
	}

	var sigs []models.Signature
	if err := json.Unmarshal([]byte(payload), &sigs); err != nil {
		return nil, "", fmt.Errorf("decode cached signatures: %w", err)
	}
	return sigs, version, nil
}

// SaveSignatures replaces the cached collection
func (c *Cache) SaveSignatures(ctx context.Context, sigs []models.Signature, version string) error {
	if sigs == nil {
		sigs = []models.Signature{}
	}
	payload, err := json.Marshal(sigs)
	if err != nil {
		return fmt.Errorf("encode signatures: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO signature_cache (id, payload, version, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			payload = EXCLUDED.payload,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
	`, string(payload), version, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save cached signatures: %w", err)
	}
	return nil
}

// TouchClient records a client visit, creating the row on first sight
func (c *Cache) TouchClient(ctx context.Context, clientID string) error {
	now := time.Now().UnixMilli()
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO client (id, has_signed, created_at, last_seen_at)
		VALUES ($1, 0, $2, $2)
		ON CONFLICT (id) DO UPDATE SET last_seen_at = EXCLUDED.last_seen_at
	`, clientID, now)
	if err != nil {
		return fmt.Errorf("touch client: %w", err)
	}
	return nil
}

// MarkSigned sets the has-signed flag for a client. Signing again (the
// "sign for a family member" flow) moves signed_at forward.
func (c *Cache) MarkSigned(ctx context.Context, clientID, signatureID string, at time.Time) error {
	now := time.Now().UnixMilli()
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO client (id, has_signed, signature_id, signed_at, created_at, last_seen_at)
		VALUES ($1, 1, $2, $3, $4, $4)
		ON CONFLICT (id) DO UPDATE SET
			has_signed = 1,
			signature_id = EXCLUDED.signature_id,
			signed_at = EXCLUDED.signed_at,
			last_seen_at = EXCLUDED.last_seen_at
	`, clientID, signatureID, at.UnixMilli(), now)
	if err != nil {
		return fmt.Errorf("mark client signed: %w", err)
	}
	return nil
}

// Client returns the stored state of a client. Unknown clients have not signed.
func (c *Cache) Client(ctx context.Context, clientID string) (ClientState, error) {
	state := ClientState{ClientID: clientID}

	var (
		hasSigned   int
		signatureID sql.NullString
		signedAt    sql.NullInt64
	)
	err := c.db.QueryRowContext(ctx, `
		SELECT has_signed, signature_id, signed_at FROM client WHERE id = $1
	`, clientID).Scan(&hasSigned, &signatureID, &signedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("query client: %w", err)
	}

	state.HasSigned = hasSigned == 1
	state.SignatureID = signatureID.String
	if signedAt.Valid {
		t := time.UnixMilli(signedAt.Int64).UTC()
		state.SignedAt = &t
	}
	return state, nil
}

// HasSigned reports whether the client has a confirmed signature
func (c *Cache) HasSigned(ctx context.Context, clientID string) (bool, error) {
	state, err := c.Client(ctx, clientID)
	if err != nil {
		return false, err
	}
	return state.HasSigned, nil
}
