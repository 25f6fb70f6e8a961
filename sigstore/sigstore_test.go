// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sigstore

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/eerco/ensuring-integrity/models"
	"github.com/eerco/ensuring-integrity/testutil"
)

var newest = time.Date(2025, 12, 5, 12, 0, 0, 0, time.UTC)

func countID(sigs []models.Signature, id string) int {
	n := 0
	for _, s := range sigs {
		if s.ID == id {
			n++
		}
	}
	return n
}

func TestRead(t *testing.T) {
	stored := testutil.MakeSignatures(3, newest)
	server := testutil.NewBlobServer(t, stored)
	client := New(server.URL)

	got, err := client.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if diff := cmp.Diff(stored, got.Signatures); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}
	if got.Version == "" {
		t.Error("expected non-empty version for a non-empty payload")
	}
	testutil.AssertNewestFirst(t, got.Signatures)
}

func TestRead_SortsAndCoercesTimestamps(t *testing.T) {
	server := testutil.NewBlobServer(t, nil)
	server.SetRaw(`[
		{"id": "old", "name": "Old", "timestamp": "2025-12-01T08:00:00.000Z"},
		{"id": "mid", "name": "Mid", "timestamp": 1764590400000},
		{"id": "new", "name": "New", "location": "Toumba", "comment": "yes", "timestamp": "2025-12-04T09:30:00Z"},
		{"id": 42, "name": "Numeric", "timestamp": null}
	]`)
	client := New(server.URL)

	got, err := client.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	ids := make([]string, 0, len(got.Signatures))
	for _, s := range got.Signatures {
		ids = append(ids, s.ID)
	}
	// 1764590400000 ms = 2025-12-01T12:00:00Z; missing timestamps sort last
	want := []string{"new", "mid", "old", "42"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if got.Signatures[0].Location != models.LocationToumba || got.Signatures[0].Comment != "yes" {
		t.Errorf("optional fields not decoded: %+v", got.Signatures[0])
	}
	testutil.AssertNewestFirst(t, got.Signatures)
}

func TestRead_DropsRepeatedIDs(t *testing.T) {
	server := testutil.NewBlobServer(t, nil)
	server.SetRaw(`[
		{"id": "a", "name": "Latest write", "timestamp": "2025-12-02T10:00:00Z"},
		{"id": "a", "name": "Stale copy", "timestamp": "2025-12-03T10:00:00Z"},
		{"id": "b", "name": "Other", "timestamp": "2025-12-01T10:00:00Z"}
	]`)

	got, err := New(server.URL).Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if countID(got.Signatures, "a") != 1 {
		t.Fatalf("expected id a once, got %d", countID(got.Signatures, "a"))
	}
	if got.Signatures[0].Name != "Latest write" {
		t.Errorf("expected first occurrence to win, got %q", got.Signatures[0].Name)
	}
}

func TestRead_DropsNullAndIDlessRecords(t *testing.T) {
	server := testutil.NewBlobServer(t, nil)
	server.SetRaw(`[
		null,
		{"name": "A", "timestamp": "2025-12-01T10:00:00Z"},
		{"name": "B", "timestamp": "2025-12-02T10:00:00Z"},
		{"name": "B", "timestamp": "2025-12-02T10:00:00Z"},
		{"id": "blank", "name": "  ", "timestamp": "2025-12-03T10:00:00Z"},
		{}
	]`)

	got, err := New(server.URL).Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	var names []string
	seen := make(map[string]bool)
	for _, sig := range got.Signatures {
		names = append(names, sig.Name)
		if sig.ID == "" {
			t.Errorf("record %q has an empty id", sig.Name)
		}
		if seen[sig.ID] {
			t.Errorf("id %q appears more than once", sig.ID)
		}
		seen[sig.ID] = true
	}
	if diff := cmp.Diff([]string{"B", "A"}, names); diff != "" {
		t.Errorf("decoded names mismatch (-want +got):\n%s", diff)
	}

	// Derived ids are stable across reads
	again, err := New(server.URL).Read(context.Background())
	if err != nil {
		t.Fatalf("second Read() error = %v", err)
	}
	if diff := cmp.Diff(got.Signatures, again.Signatures); diff != "" {
		t.Errorf("second read differs (-first +second):\n%s", diff)
	}
}

func TestRead_SoftFailures(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(s *testutil.BlobServer)
		wantEmpty bool
	}{
		{"server error", func(s *testutil.BlobServer) { s.FailGets(http.StatusInternalServerError) }, false},
		{"forbidden", func(s *testutil.BlobServer) { s.FailGets(http.StatusForbidden) }, false},
		{"not found", func(s *testutil.BlobServer) { s.FailGets(http.StatusNotFound) }, true},
		{"empty body", func(s *testutil.BlobServer) { s.SetRaw("") }, true},
		{"json null", func(s *testutil.BlobServer) { s.SetRaw("null") }, true},
		{"malformed", func(s *testutil.BlobServer) { s.SetRaw("[{not json") }, false},
		{"object instead of array", func(s *testutil.BlobServer) { s.SetRaw(`{"id":"x"}`) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testutil.NewBlobServer(t, nil)
			tt.setup(server)

			_, err := New(server.URL).Read(context.Background())
			if !errors.Is(err, ErrRemoteUnavailable) {
				t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
			}
			if errors.Is(err, ErrEmptyPayload) != tt.wantEmpty {
				t.Errorf("ErrEmptyPayload = %v, want %v (err: %v)", errors.Is(err, ErrEmptyPayload), tt.wantEmpty, err)
			}
		})
	}
}

func TestRead_TransportError(t *testing.T) {
	server := testutil.NewBlobServer(t, nil)
	url := server.URL
	server.Close()

	_, err := New(url, WithTimeout(time.Second)).Read(context.Background())
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
	}
}

func TestNew_TimeoutOptions(t *testing.T) {
	shared := &http.Client{Timeout: 3 * time.Second}

	tests := []struct {
		name string
		opts []Option
		want time.Duration
	}{
		{"default", nil, defaultTimeout},
		{"timeout", []Option{WithTimeout(time.Second)}, time.Second},
		{"custom client then timeout", []Option{WithHTTPClient(shared), WithTimeout(time.Second)}, 3 * time.Second},
		{"timeout then custom client", []Option{WithTimeout(time.Second), WithHTTPClient(shared)}, 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("http://store.invalid", tt.opts...)
			if c.http.Timeout != tt.want {
				t.Errorf("client timeout = %v, want %v", c.http.Timeout, tt.want)
			}
		})
	}

	if shared.Timeout != 3*time.Second {
		t.Errorf("shared client timeout changed to %v", shared.Timeout)
	}
}

func TestAppend(t *testing.T) {
	stored := testutil.MakeSignatures(2, newest)
	server := testutil.NewBlobServer(t, stored)
	client := New(server.URL)

	sig := models.Signature{ID: "fresh", Name: "Anna", Location: models.LocationKalamaria, Timestamp: newest.Add(time.Minute)}
	written, err := client.Append(context.Background(), sig)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	want := append([]models.Signature{sig}, stored...)
	if diff := cmp.Diff(want, written.Signatures); diff != "" {
		t.Errorf("written collection mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, server.Signatures(t)); diff != "" {
		t.Errorf("stored collection mismatch (-want +got):\n%s", diff)
	}
	if server.Posts() != 1 {
		t.Errorf("expected 1 POST, got %d", server.Posts())
	}

	// A following read sees the same version
	again, err := client.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if again.Version != written.Version {
		t.Errorf("read version %q differs from written version %q", again.Version, written.Version)
	}
}

func TestAppend_DeduplicatesByID(t *testing.T) {
	collections := map[string][]models.Signature{
		"empty":         {},
		"one other":     testutil.MakeSignatures(1, newest),
		"already there": append([]models.Signature{{ID: "r", Name: "Earlier attempt", Timestamp: newest.Add(-time.Hour)}}, testutil.MakeSignatures(3, newest)...),
		"twice already": {
			{ID: "r", Name: "First", Timestamp: newest},
			{ID: "x", Name: "X", Timestamp: newest.Add(-time.Minute)},
			{ID: "r", Name: "Second", Timestamp: newest.Add(-2 * time.Minute)},
		},
	}

	for name, existing := range collections {
		t.Run(name, func(t *testing.T) {
			server := testutil.NewBlobServer(t, existing)
			r := models.Signature{ID: "r", Name: "Retry", Timestamp: newest.Add(time.Hour)}

			written, err := New(server.URL).Append(context.Background(), r)
			if err != nil {
				t.Fatalf("Append() error = %v", err)
			}
			if n := countID(written.Signatures, "r"); n != 1 {
				t.Errorf("written collection has id r %d times", n)
			}
			if n := countID(server.Signatures(t), "r"); n != 1 {
				t.Errorf("stored collection has id r %d times", n)
			}
			if written.Signatures[0].Name != "Retry" {
				t.Errorf("new record should be first, got %q", written.Signatures[0].Name)
			}
		})
	}
}

func TestAppend_DoesNotWriteBackPhantomRecords(t *testing.T) {
	server := testutil.NewBlobServer(t, nil)
	server.SetRaw(`[
		null,
		{"name": "A", "timestamp": "2025-12-01T10:00:00Z"},
		{"name": "B", "timestamp": "2025-12-02T10:00:00Z"}
	]`)

	sig := models.Signature{ID: "new", Name: "New", Timestamp: newest}
	if _, err := New(server.URL).Append(context.Background(), sig); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	stored := server.Signatures(t)
	if len(stored) != 3 {
		t.Fatalf("expected 3 stored records, got %d: %+v", len(stored), stored)
	}
	seen := make(map[string]bool)
	for _, s := range stored {
		if s.ID == "" || s.Name == "" {
			t.Errorf("stored record without id or name: %+v", s)
		}
		if seen[s.ID] {
			t.Errorf("id %q stored more than once", s.ID)
		}
		seen[s.ID] = true
	}
	if stored[0].ID != "new" {
		t.Errorf("expected new record first, got %q", stored[0].ID)
	}
}

func TestAppend_EmptyStoreStartsCollection(t *testing.T) {
	for _, status := range []int{0, http.StatusNotFound} {
		server := testutil.NewBlobServer(t, nil)
		server.FailGets(status)

		sig := models.Signature{ID: "first", Name: "First", Timestamp: newest}
		written, err := New(server.URL).Append(context.Background(), sig)
		if err != nil {
			t.Fatalf("Append() on empty store (GET status %d) error = %v", status, err)
		}
		if len(written.Signatures) != 1 {
			t.Errorf("expected 1 signature, got %d", len(written.Signatures))
		}
	}
}

func TestAppend_Failures(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(s *testutil.BlobServer)
		wantPosts int
	}{
		{"read fails", func(s *testutil.BlobServer) { s.FailGets(http.StatusBadGateway) }, 0},
		{"read malformed", func(s *testutil.BlobServer) { s.SetRaw("<html>oops</html>") }, 0},
		{"write fails", func(s *testutil.BlobServer) { s.FailPosts(http.StatusServiceUnavailable) }, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testutil.NewBlobServer(t, testutil.MakeSignatures(2, newest))
			tt.setup(server)

			_, err := New(server.URL).Append(context.Background(), models.Signature{ID: "n", Name: "N", Timestamp: newest})
			if !errors.Is(err, ErrRemoteUnavailable) {
				t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
			}
			if server.Posts() != tt.wantPosts {
				t.Errorf("expected %d POSTs, got %d", tt.wantPosts, server.Posts())
			}
		})
	}
}

func TestAppend_PreconditionRetries(t *testing.T) {
	server := testutil.NewBlobServer(t, testutil.MakeSignatures(1, newest))

	// Another writer sneaks in between our read and our pre-write check,
	// once. The second attempt must succeed and keep their record.
	var once sync.Once
	var gets atomic.Int32
	server.BeforeGet = func() {
		if gets.Add(1) == 2 {
			once.Do(func() {
				server.Set(t, append([]models.Signature{{ID: "theirs", Name: "Other client", Timestamp: newest.Add(time.Second)}}, testutil.MakeSignatures(1, newest)...))
			})
		}
	}

	client := New(server.URL, WithPrecondition(2))
	mine := models.Signature{ID: "mine", Name: "Me", Timestamp: newest.Add(time.Minute)}
	if _, err := client.Append(context.Background(), mine); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	stored := server.Signatures(t)
	if countID(stored, "theirs") != 1 || countID(stored, "mine") != 1 {
		t.Errorf("expected both records to survive, got %+v", stored)
	}
	if server.Posts() != 1 {
		t.Errorf("expected exactly one POST, got %d", server.Posts())
	}
}

func TestAppend_PreconditionGivesUp(t *testing.T) {
	server := testutil.NewBlobServer(t, testutil.MakeSignatures(1, newest))

	// Every GET sees a different payload
	var n atomic.Int64
	server.BeforeGet = func() {
		step := n.Add(1)
		server.Set(t, []models.Signature{{ID: "churn", Name: "Churn", Timestamp: newest.Add(time.Duration(step) * time.Second)}})
	}

	_, err := New(server.URL, WithPrecondition(1)).Append(context.Background(), models.Signature{ID: "mine", Name: "Me", Timestamp: newest})
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Errorf("precondition failure should also be ErrRemoteUnavailable, got %v", err)
	}
	if server.Posts() != 0 {
		t.Errorf("expected no POST, got %d", server.Posts())
	}
}

// Two clients read the same N records, then both write. The blob store is
// last-write-wins, so one signature can be lost. This is accepted behavior of
// the store; the test pins down that it can happen.
func TestAppend_ConcurrentWritersCanLoseUpdate(t *testing.T) {
	const n = 5
	server := testutil.NewBlobServer(t, testutil.MakeSignatures(n, newest))

	var ready sync.WaitGroup
	ready.Add(2)
	release := make(chan struct{})
	var mu sync.Mutex
	first := 0
	server.BeforeGet = func() {
		mu.Lock()
		first++
		gate := first <= 2
		mu.Unlock()
		if gate {
			ready.Done()
			<-release
		}
	}
	go func() {
		ready.Wait()
		close(release)
	}()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{"client-a", "client-b"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = New(server.URL).Append(context.Background(), models.Signature{ID: id, Name: id, Timestamp: newest.Add(time.Hour)})
		}(i, id)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	stored := server.Signatures(t)
	if len(stored) != n+1 {
		t.Fatalf("expected last write to win with %d records, got %d", n+1, len(stored))
	}
	lost := countID(stored, "client-a") + countID(stored, "client-b")
	if lost != 1 {
		t.Errorf("expected exactly one of the two new records to survive, got %d", lost)
	}
}

func TestPrepend(t *testing.T) {
	existing := testutil.MakeSignatures(3, newest)
	snapshot := append([]models.Signature(nil), existing...)

	sig := models.Signature{ID: existing[1].ID, Name: "Replacement", Timestamp: newest.Add(time.Hour)}
	got := Prepend(existing, sig)

	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].Name != "Replacement" {
		t.Errorf("expected new record first, got %q", got[0].Name)
	}
	if countID(got, sig.ID) != 1 {
		t.Errorf("expected id %s once", sig.ID)
	}
	if diff := cmp.Diff(snapshot, existing); diff != "" {
		t.Errorf("Prepend modified its input (-want +got):\n%s", diff)
	}
}
