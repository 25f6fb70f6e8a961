// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/eerco/ensuring-integrity/cliparse"
	"github.com/eerco/ensuring-integrity/db"
	"github.com/eerco/ensuring-integrity/models"
)

// SetupTestDB creates a fresh in-memory sqlite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", "file::memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration pointing at remoteURL
func GetTestConfig(remoteURL string) cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseURL:      "file::memory:",
		DatabaseType:     cliparse.DatabaseSQLite,
		RemoteStoreURL:   remoteURL,
		RemoteTimeout:    2 * time.Second,
		SyncInterval:     time.Hour,
		TargetSignatures: 1000,
		ClientKeySalt:    "test-client-salt",
		PublicURL:        "https://petition.example.test/",
	}
}

// MakeSignatures builds n signatures one minute apart, newest first
func MakeSignatures(n int, newest time.Time) []models.Signature {
	sigs := make([]models.Signature, 0, n)
	for i := 0; i < n; i++ {
		sigs = append(sigs, models.Signature{
			ID:        fmt.Sprintf("sig-%04d", n-i),
			Name:      fmt.Sprintf("Signer %d", n-i),
			Location:  models.LocationCityCenter,
			Timestamp: newest.Add(-time.Duration(i) * time.Minute).UTC(),
		})
	}
	return sigs
}

// BlobServer is an in-memory stand-in for the remote key-value store:
// GET returns the stored body, POST replaces it.
type BlobServer struct {
	*httptest.Server

	mu         sync.Mutex
	body       []byte
	getStatus  int
	postStatus int
	gets       int
	posts      int

	// BeforeGet, when set, runs before each GET is answered. Tests use it
	// to line up concurrent readers.
	BeforeGet func()
}

// NewBlobServer starts a fake store holding initial (nil means empty body)
func NewBlobServer(t *testing.T, initial []models.Signature) *BlobServer {
	t.Helper()

	s := &BlobServer{}
	if initial != nil {
		s.Set(t, initial)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *BlobServer) serve(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		s.gets++
		hook := s.BeforeGet
		s.mu.Unlock()

		if hook != nil {
			hook()
		}

		s.mu.Lock()
		status, body := s.getStatus, append([]byte(nil), s.body...)
		s.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)

	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.posts++
		if s.postStatus != 0 {
			w.WriteHeader(s.postStatus)
			return
		}
		s.body = body
		w.WriteHeader(http.StatusOK)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Set replaces the stored collection
func (s *BlobServer) Set(t *testing.T, sigs []models.Signature) {
	t.Helper()
	body, err := json.Marshal(sigs)
	if err != nil {
		t.Fatalf("Failed to encode signatures: %v", err)
	}
	s.SetRaw(string(body))
}

// SetRaw stores a raw body, useful for malformed payloads
func (s *BlobServer) SetRaw(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = []byte(body)
}

// FailGets makes every GET answer with status (0 restores normal behavior)
func (s *BlobServer) FailGets(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getStatus = status
}

// FailPosts makes every POST answer with status without storing anything
func (s *BlobServer) FailPosts(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postStatus = status
}

// Signatures decodes the stored collection
func (s *BlobServer) Signatures(t *testing.T) []models.Signature {
	t.Helper()
	s.mu.Lock()
	body := append([]byte(nil), s.body...)
	s.mu.Unlock()

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var sigs []models.Signature
	if err := json.Unmarshal(body, &sigs); err != nil {
		t.Fatalf("Failed to decode stored collection: %v", err)
	}
	return sigs
}

// Gets returns how many GET requests were served
func (s *BlobServer) Gets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

// Posts returns how many POST requests were received
func (s *BlobServer) Posts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertNewestFirst fails the test if any adjacent pair is out of order
func AssertNewestFirst(t *testing.T, sigs []models.Signature) {
	t.Helper()
	for i := 1; i < len(sigs); i++ {
		if sigs[i-1].Timestamp.Before(sigs[i].Timestamp) {
			t.Errorf("signatures out of order at %d: %v before %v", i, sigs[i-1].Timestamp, sigs[i].Timestamp)
		}
	}
}
