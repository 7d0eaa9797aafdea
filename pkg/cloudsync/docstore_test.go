package cloudsync

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// fakeBackend serves the REST surface the doc store expects: PUT upserts a
// record, GET returns the collection as a JSON array.
type fakeBackend struct {
	mu      sync.Mutex
	records map[string]map[string][]byte // collection -> docID -> record

	lastAuth    string
	lastOrderBy string
}

func newFakeBackend() (*fakeBackend, *httptest.Server) {
	b := &fakeBackend{records: make(map[string]map[string][]byte)}

	r := chi.NewRouter()
	r.Put("/users/{userID}/{collection}/{docID}", func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		collection := "users/" + chi.URLParam(req, "userID") + "/" + chi.URLParam(req, "collection")

		b.mu.Lock()
		b.lastAuth = req.Header.Get("Authorization")
		if b.records[collection] == nil {
			b.records[collection] = make(map[string][]byte)
		}
		b.records[collection][chi.URLParam(req, "docID")] = body
		b.mu.Unlock()

		w.WriteHeader(http.StatusOK)
	})
	r.Get("/users/{userID}/{collection}", func(w http.ResponseWriter, req *http.Request) {
		collection := "users/" + chi.URLParam(req, "userID") + "/" + chi.URLParam(req, "collection")

		b.mu.Lock()
		b.lastAuth = req.Header.Get("Authorization")
		b.lastOrderBy = req.URL.Query().Get("orderBy")
		var out []json.RawMessage
		for _, record := range b.records[collection] {
			out = append(out, record)
		}
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if out == nil {
			out = []json.RawMessage{}
		}
		if err := json.NewEncoder(w).Encode(out); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	return b, httptest.NewServer(r)
}

func TestHTTPDocStore_WriteReadRoundTrip(t *testing.T) {
	backend, server := newFakeBackend()
	defer server.Close()

	store := NewHTTPDocStore(server.URL, func() string { return "tok123" })
	ctx := context.Background()

	record := map[string]string{"id": "n1", "title": "hello"}
	require.NoError(t, store.Write(ctx, "users/u1/notes", "n1", record))
	require.Equal(t, "Bearer tok123", backend.lastAuth)

	records, err := store.ReadAll(ctx, "users/u1/notes", "updatedAt")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "updatedAt", backend.lastOrderBy)

	var got map[string]string
	require.NoError(t, json.Unmarshal(records[0], &got))
	require.Equal(t, record, got)
}

func TestHTTPDocStore_NoOrderBy(t *testing.T) {
	backend, server := newFakeBackend()
	defer server.Close()

	store := NewHTTPDocStore(server.URL, nil)

	_, err := store.ReadAll(context.Background(), "users/u1/folders", "")
	require.NoError(t, err)
	require.Empty(t, backend.lastOrderBy)
	require.Empty(t, backend.lastAuth)
}

func TestHTTPDocStore_ServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	store := NewHTTPDocStore(server.URL, nil)

	err := store.Write(context.Background(), "users/u1/notes", "n1", map[string]string{})
	require.Error(t, err)

	_, err = store.ReadAll(context.Background(), "users/u1/notes", "")
	require.Error(t, err)
}
