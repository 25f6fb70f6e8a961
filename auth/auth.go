// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidClientCookie = errors.New("invalid client cookie")
	ErrInvalidClientID     = errors.New("invalid client id")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewSignatureID returns a fresh signature identifier (UUID v4)
func NewSignatureID() string {
	return uuid.NewString()
}

// GenerateClientID creates a random identifier for a browser or app client
func GenerateClientID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate client ID: %w", err)
	}
	return id.String(), nil
}

// ParseClientID validates a client ID supplied via the X-Client-ID header
func ParseClientID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidClientID
	}
	return id.String(), nil
}

// SignClientID produces the cookie value "<id>.<mac>" for a client ID.
// The MAC keeps clients from claiming someone else's has-signed flag by
// editing the cookie.
func SignClientID(clientID, salt string) string {
	return clientID + "." + clientMAC(clientID, salt)
}

// VerifyClientCookie checks a cookie value from SignClientID and returns the client ID
func VerifyClientCookie(value, salt string) (string, error) {
	idx := strings.LastIndexByte(value, '.')
	if idx <= 0 || idx == len(value)-1 {
		return "", ErrInvalidClientCookie
	}
	clientID, mac := value[:idx], value[idx+1:]
	expected := clientMAC(clientID, salt)
	if !hmac.Equal([]byte(mac), []byte(expected)) {
		return "", ErrInvalidClientCookie
	}
	if _, err := ParseClientID(clientID); err != nil {
		return "", ErrInvalidClientCookie
	}
	return clientID, nil
}

func clientMAC(clientID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(clientID))
	sum := h.Sum(nil)
	// URL-safe base64 without padding keeps the cookie value clean
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum[:18]), "=")
}
