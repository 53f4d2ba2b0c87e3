package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SkylineCommunications/idpcheck/internal/core"
)

func newTestHTTP(t *testing.T, handler http.Handler) *HTTP {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	h := NewHTTP(srv.URL, "token-1", 0, 3, core.NewRecordingLogger())
	h.Backoff = 0
	return h
}

func TestHTTP_Operations(t *testing.T) {
	var putBody, postBody valueDTO
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/elements", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.Equal(t, "My View", r.URL.Query().Get("view"))
		_ = json.NewEncoder(w).Encode([]elementDTO{{AgentID: 1, ElementID: 2, Name: "B"}})
	})
	mux.HandleFunc("GET /api/v1/elements/1/2/properties/IDP", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(valueDTO{Value: "true"})
	})
	mux.HandleFunc("PUT /api/v1/elements/1/2/properties/IDP", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&putBody))
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/v1/elements/by-name/{element}/tables/{table}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DataMiner IDP", r.PathValue("element"))
		assert.Equal(t, "1100", r.PathValue("table"))
		assert.Equal(t, "1104", r.URL.Query().Get("column"))
		_ = json.NewEncoder(w).Encode(tableDTO{Rows: map[string]string{"1/1": "A"}})
	})
	mux.HandleFunc("POST /api/v1/elements/by-name/{element}/parameters/{param}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "14", r.PathValue("param"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&postBody))
	})

	ctx := context.Background()
	h := newTestHTTP(t, mux)

	elems, err := h.ListElements(ctx, "My View")
	require.NoError(t, err)
	assert.Equal(t, []core.Element{{AgentID: 1, ElementID: 2, Name: "B"}}, elems)

	v, err := h.GetProperty(ctx, "1/2", "IDP")
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	require.NoError(t, h.SetProperty(ctx, "1/2", "IDP", ""))
	assert.Equal(t, valueDTO{Value: ""}, putBody)

	rows, err := h.ReadTable(ctx, managedRef)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1/1": "A"}, rows)

	require.NoError(t, h.Trigger(ctx, core.ParameterRef{Element: "DataMiner IDP", Parameter: 14}, "1/2|1/3"))
	assert.Equal(t, valueDTO{Value: "1/2|1/3"}, postBody)
}

func TestHTTP_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	h := newTestHTTP(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))

	_, err := h.ReadTable(context.Background(), managedRef)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTP_ServerErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	h := newTestHTTP(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(valueDTO{Value: "false"})
	}))

	v, err := h.GetProperty(context.Background(), "1/2", "IDP")
	require.NoError(t, err)
	assert.Equal(t, "false", v)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTP_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	h := newTestHTTP(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	err := h.Trigger(context.Background(), refreshRef, "1")
	assert.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTP_ClientErrors(t *testing.T) {
	h := newTestHTTP(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))

	err := h.SetProperty(context.Background(), "1/2", "IDP", "")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Status)
	assert.Equal(t, "forbidden", statusErr.Body)

	_, err = h.GetProperty(context.Background(), "not-a-key", "IDP")
	assert.Error(t, err)
}
