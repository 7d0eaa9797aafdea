package cloudsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DocStore is the minimal surface the sync adapter needs from the hosted
// document database: write one record, read one collection.
type DocStore interface {
	Write(ctx context.Context, collectionPath, docID string, fields interface{}) error
	ReadAll(ctx context.Context, collectionPath, orderByField string) ([]json.RawMessage, error)
}

// HTTPDocStore talks to the hosted backend over its REST surface. Records
// are addressed as {base}/{collectionPath}/{docID}; reading a collection is
// a GET on {base}/{collectionPath} with an optional orderBy query, returning
// a JSON array of records. The server stamps each written record with a
// syncedAt timestamp.
type HTTPDocStore struct {
	baseURL string
	client  *http.Client
	token   func() string
}

// NewHTTPDocStore creates a client for the backend at baseURL. token is
// called per request to supply the current bearer token.
func NewHTTPDocStore(baseURL string, token func() string) *HTTPDocStore {
	return &HTTPDocStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		token:   token,
	}
}

func (s *HTTPDocStore) authorize(req *http.Request) {
	if s.token != nil {
		if t := s.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}
}

// Write upserts one record under collectionPath/docID.
func (s *HTTPDocStore) Write(ctx context.Context, collectionPath, docID string, fields interface{}) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s", s.baseURL, collectionPath, url.PathEscape(docID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("remote write failed: %s", resp.Status)
	}
	return nil
}

// ReadAll fetches every record under collectionPath. An empty orderByField
// leaves the server ordering unspecified; otherwise records come back
// ordered by that field, newest first.
func (s *HTTPDocStore) ReadAll(ctx context.Context, collectionPath, orderByField string) ([]json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/%s", s.baseURL, collectionPath)
	if orderByField != "" {
		endpoint += "?orderBy=" + url.QueryEscape(orderByField) + "&direction=desc"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("remote read failed: %s", resp.Status)
	}

	var records []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	return records, nil
}
