// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sigstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/eerco/ensuring-integrity/models"
)

var (
	// ErrRemoteUnavailable covers transport errors, non-2xx responses, empty
	// bodies and malformed payloads. Callers treat all of them the same way.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrEmptyPayload means the store answered but holds no collection yet
	// (empty body, JSON null, or 404). It wraps ErrRemoteUnavailable.
	ErrEmptyPayload = fmt.Errorf("%w: empty payload", ErrRemoteUnavailable)

	// ErrPreconditionFailed means the collection kept changing between read
	// and write for every allowed attempt.
	ErrPreconditionFailed = errors.New("remote collection changed during write")
)

// maxPayloadBytes caps how much of a response body is read
const maxPayloadBytes = 8 << 20

// Collection is one read of the remote store
type Collection struct {
	Signatures []models.Signature
	// Version is a hash of the raw payload, empty when the store was empty
	Version string
}

// Client reads and appends to a remote blob endpoint holding the signature
// collection as a single JSON array. The store has no partial update and no
// conditional write: every write replaces the whole array.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	retries  int
}

type Option func(*Client)

// defaultTimeout bounds one remote call made with the default HTTP client
const defaultTimeout = 10 * time.Second

// WithHTTPClient replaces the default HTTP client. The client is used as is;
// WithTimeout does not change it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithPrecondition makes Append re-read the collection right before writing
// and start over if it changed, up to retries extra attempts. This narrows
// the lost-update window between clients; it cannot close it.
func WithPrecondition(retries int) Option {
	return func(c *Client) {
		c.retries = retries
	}
}

func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		timeout:  defaultTimeout,
		retries:  -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Endpoint returns the remote URL this client talks to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Read fetches the full collection, newest first
func (c *Client) Read(ctx context.Context) (Collection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return Collection{}, fmt.Errorf("%w: build request: %w", ErrRemoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Collection{}, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Collection{}, ErrEmptyPayload
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Collection{}, fmt.Errorf("%w: GET status %d", ErrRemoteUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return Collection{}, fmt.Errorf("%w: read body: %w", ErrRemoteUnavailable, err)
	}

	sigs, err := Decode(body)
	if err != nil {
		return Collection{}, err
	}

	slog.Debug("remote store read", "endpoint", c.endpoint, "count", len(sigs))

	return Collection{Signatures: sigs, Version: payloadVersion(body)}, nil
}

// Append writes sig to the remote collection:
//  1. read the current collection
//  2. drop any record sharing sig.ID
//  3. prepend sig
//  4. POST the whole collection back
//
// An empty or missing remote collection counts as zero records so the first
// signature can be written. Any other failure aborts without writing, since
// writing over a collection we could not read would erase it.
func (c *Client) Append(ctx context.Context, sig models.Signature) (Collection, error) {
	attempts := 1
	if c.retries > 0 {
		attempts += c.retries
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		current, err := c.readForWrite(ctx)
		if err != nil {
			return Collection{}, err
		}

		next := Prepend(current.Signatures, sig)

		if c.retries >= 0 {
			check, err := c.readForWrite(ctx)
			if err != nil {
				return Collection{}, err
			}
			if check.Version != current.Version {
				slog.Warn("remote collection changed before write",
					"attempt", attempt,
					"max_attempts", attempts,
				)
				continue
			}
		}

		written, err := c.write(ctx, next)
		if err != nil {
			return Collection{}, err
		}
		return written, nil
	}

	return Collection{}, fmt.Errorf("%w: %w", ErrRemoteUnavailable, ErrPreconditionFailed)
}

func (c *Client) readForWrite(ctx context.Context) (Collection, error) {
	current, err := c.Read(ctx)
	if errors.Is(err, ErrEmptyPayload) {
		return Collection{Signatures: []models.Signature{}}, nil
	}
	return current, err
}

func (c *Client) write(ctx context.Context, sigs []models.Signature) (Collection, error) {
	body, err := json.Marshal(sigs)
	if err != nil {
		return Collection{}, fmt.Errorf("encode collection: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Collection{}, fmt.Errorf("%w: build request: %w", ErrRemoteUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Collection{}, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayloadBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Collection{}, fmt.Errorf("%w: POST status %d", ErrRemoteUnavailable, resp.StatusCode)
	}

	slog.Debug("remote store written", "endpoint", c.endpoint, "count", len(sigs))

	return Collection{Signatures: sigs, Version: payloadVersion(body)}, nil
}

func payloadVersion(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	sum := sha256.Sum256(trimmed)
	return hex.EncodeToString(sum[:])
}
