// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package vespa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(serverURL string) Config {
	cfg := DefaultConfig()
	cfg.QueryEndpoint = serverURL
	cfg.FeedEndpoint = serverURL
	cfg.Namespace = "ns"
	cfg.RetryDelay = time.Millisecond
	cfg.MaxRetryAttempts = 3
	return cfg
}

func TestSearch_AppliesDefaults(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"root":{"id":"toplevel","fields":{"totalCount":0}}}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.Search(context.Background(), Payload{KeyYQL: "select * from sources *"})
	require.NoError(t, err)
	assert.Equal(t, "30s", got[KeyTimeout])
	assert.NotContains(t, got, KeyTracelevel)
}

func TestSearch_DebugModeAddsTracing(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"root":{"fields":{"totalCount":0}}}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.IsDebugMode = true
	_, err := NewClient(cfg).Search(context.Background(), Payload{})
	require.NoError(t, err)
	assert.Equal(t, true, got[KeyRankingListFeatures])
	assert.Equal(t, float64(4), got[KeyTracelevel])
}

func TestSearch_DoesNotMutateCallerPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"root":{"fields":{"totalCount":0}}}`))
	}))
	defer srv.Close()

	payload := Payload{KeyYQL: "select * from sources *"}
	_, err := NewClient(testConfig(srv.URL)).Search(context.Background(), payload)
	require.NoError(t, err)
	assert.NotContains(t, payload, KeyTimeout)
}

func TestSearch_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL)).Search(context.Background(), Payload{})
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, CodeSearchFailed, oopsErr.Code())
}

func TestSearch_RootErrorsSurfaceAsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"root":{"fields":{"totalCount":0},"errors":[{"code":8,"summary":"Error in search reply"}]}}`))
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL)).Search(context.Background(), Payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error in search reply")
}

func TestInsert_RetriesThrottleThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := NewClient(testConfig(srv.URL)).Insert(context.Background(), "file", "doc1", map[string]any{"title": "t"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestInsert_ExhaustedRetriesNameDocID(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewClient(testConfig(srv.URL)).Insert(context.Background(), "file", "doc1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "doc1")

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, CodeInsertFailed, oopsErr.Code())
	// initial attempt + MaxRetryAttempts retries
	assert.Equal(t, 4, oopsErr.Context()["attempts"])
	assert.Equal(t, int32(4), calls.Load())
}

func TestInsert_NonThrottleErrorIsFatal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewClient(testConfig(srv.URL)).Insert(context.Background(), "file", "doc1", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetDocument_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	_, err := client.GetDocument(context.Background(), "file", "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	doc, err := client.GetDocumentOrNil(context.Background(), "file", "missing")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestGetDocument_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/document/v1/ns/file/docid/doc1", r.URL.Path)
		_, _ = w.Write([]byte(`{"pathId":"/document/v1/ns/file/docid/doc1","id":"id:ns:file::doc1","fields":{"title":"t"}}`))
	}))
	defer srv.Close()

	doc, err := NewClient(testConfig(srv.URL)).GetDocument(context.Background(), "file", "doc1")
	require.NoError(t, err)
	assert.Equal(t, "t", doc.Fields["title"])
}

func TestUpdateDocument_AssignShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	err := NewClient(testConfig(srv.URL)).UpdateDocument(context.Background(), "file", "doc1",
		map[string]any{"title": "new"})
	require.NoError(t, err)

	fields, ok := got["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"assign": "new"}, fields["title"])
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.QueryEndpoint = ""
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.RetryDelay = 0
	require.Error(t, cfg.Validate())
}

func TestPayload_Clone(t *testing.T) {
	p := Payload{KeyQuery: "q"}
	q := p.Clone()
	q[KeyQuery] = "other"
	assert.Equal(t, "q", p[KeyQuery])
}
