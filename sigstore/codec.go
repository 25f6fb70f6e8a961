// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sigstore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/eerco/ensuring-integrity/models"
)

// wireRecord is what other clients may have written: timestamps arrive as
// ISO strings from browsers, but epoch milliseconds are accepted too.
type wireRecord struct {
	ID        json.RawMessage `json:"id"`
	Name      string          `json:"name"`
	Location  string          `json:"location"`
	Comment   string          `json:"comment"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// Decode parses a remote payload into signatures, newest first. Null elements
// and records without a name are dropped. A record without an id gets one
// derived from its content, and records that repeat an earlier id are dropped.
func Decode(body []byte) ([]models.Signature, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyPayload
	}

	var records []wireRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: malformed payload: %w", ErrRemoteUnavailable, err)
	}

	sigs := make([]models.Signature, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.Name) == "" {
			continue
		}
		sig := models.Signature{
			ID:        coerceID(rec.ID),
			Name:      rec.Name,
			Location:  rec.Location,
			Comment:   rec.Comment,
			Timestamp: coerceTimestamp(rec.Timestamp),
		}
		if sig.ID == "" {
			sig.ID = contentID(sig, rec.Timestamp)
		}
		if seen[sig.ID] {
			continue
		}
		seen[sig.ID] = true
		sigs = append(sigs, sig)
	}

	SortNewestFirst(sigs)
	return sigs, nil
}

// Prepend returns a new collection with sig first and no other record sharing
// its id. The input slice is not modified.
func Prepend(existing []models.Signature, sig models.Signature) []models.Signature {
	out := make([]models.Signature, 0, len(existing)+1)
	out = append(out, sig)
	for _, s := range existing {
		if s.ID == sig.ID {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SortNewestFirst orders signatures by timestamp, newest first. Ties keep
// their relative order.
func SortNewestFirst(sigs []models.Signature) {
	slices.SortStableFunc(sigs, func(a, b models.Signature) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}

// contentID names a record that arrived without an id. Identical records get
// the same id, so they collapse into one.
func contentID(sig models.Signature, rawTimestamp json.RawMessage) string {
	h := sha256.New()
	for _, part := range []string{sig.Name, sig.Location, sig.Comment, string(bytes.TrimSpace(rawTimestamp))} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "legacy-" + hex.EncodeToString(h.Sum(nil))[:12]
}

func coerceID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// Numeric ids from hand-edited payloads
	return string(raw)
}

func coerceTimestamp(raw json.RawMessage) time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseTimestampString(s)
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(int64(ms)).UTC()
	}
	return time.Time{}
}

func parseTimestampString(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}
