package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infraguard/internal/domain"
)

func newTestStorage(t *testing.T, handler http.HandlerFunc) *Storage {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewStorage(Config{URL: srv.URL, APIKey: "qd-key", Collection: "chunks"})
}

func TestInitCreatesCollection(t *testing.T) {
	var got map[string]any
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/collections/chunks", r.URL.Path)
		assert.Equal(t, "qd-key", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	})

	require.NoError(t, s.Init(context.Background(), 3))
	vectors := got["vectors"].(map[string]any)
	assert.Equal(t, float64(3), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
}

func TestInitRejectsInvalidDimension(t *testing.T) {
	s := NewStorage(Config{URL: "http://unused", Collection: "chunks"})
	assert.Error(t, s.Init(context.Background(), 0))
}

func TestUpsertSendsPointsWithPayload(t *testing.T) {
	var got struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/chunks/points", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	})

	chunks := []domain.Chunk{{DocumentID: "d1", ChunkID: "c1", Source: "main.tf", Text: "resource", Index: 0}}
	require.NoError(t, s.Upsert(context.Background(), chunks, [][]float32{{0.1, 0.2}}))

	require.Len(t, got.Points, 1)
	assert.NotEmpty(t, got.Points[0].ID)
	assert.Equal(t, []float32{0.1, 0.2}, got.Points[0].Vector)
	assert.Equal(t, "main.tf", got.Points[0].Payload["source"])
	assert.Equal(t, "resource", got.Points[0].Payload["text"])
}

func TestUpsertRejectsMismatchedLengths(t *testing.T) {
	s := NewStorage(Config{URL: "http://unused", Collection: "chunks"})
	err := s.Upsert(context.Background(), []domain.Chunk{{}}, nil)
	assert.Error(t, err)
}

func TestSearchDecodesResults(t *testing.T) {
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/chunks/points/search", r.URL.Path)
		_, _ = w.Write([]byte(`{"result":[
			{"score":0.91,"payload":{"document_id":"d1","chunk_id":"c1","source":"vpc.tf","index":2,"text":"cidr_block"}},
			{"score":0.42,"payload":{"document_id":"d2","chunk_id":"c2","source":"iam.tf","index":0,"text":"policy"}}
		]}`))
	})

	results, err := s.Search(context.Background(), []float32{0.1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 0.91, results[0].Score)
	assert.Equal(t, "vpc.tf", results[0].Chunk.Source)
	assert.Equal(t, 2, results[0].Chunk.Index)
	assert.Equal(t, "cidr_block", results[0].Chunk.Text)
	assert.Equal(t, "iam.tf", results[1].Chunk.Source)
}

func TestClearDropsCollection(t *testing.T) {
	var method, path string
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
	})

	require.NoError(t, s.Clear(context.Background()))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/collections/chunks", path)
}

func TestClearToleratesMissingCollection(t *testing.T) {
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	assert.NoError(t, s.Clear(context.Background()))
}

func TestClearPropagatesServerError(t *testing.T) {
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	assert.Error(t, s.Clear(context.Background()))
}

func TestCountUsesExactCount(t *testing.T) {
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/chunks/points/count", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["exact"])
		_, _ = w.Write([]byte(`{"result":{"count":17}}`))
	})

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 17, n)
}

func TestSearchPropagatesHTTPError(t *testing.T) {
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := s.Search(context.Background(), []float32{0.1}, 4)
	assert.Error(t, err)
}
