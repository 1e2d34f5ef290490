package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/zageabb/reflex-AgentDemo/internal/errors"
)

func TestCatalogClientLookup(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/api/scenarios", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"scenarios":[
			{"id":"a","title":"Alpha","category":"Demo"},
			{"id":"b","title":"Beta","category":"Sales"}
		]}}`))
	}))
	defer server.Close()

	c := NewCatalogClient(server.Client(), server.URL+"/", "/api/scenarios")
	ctx := context.Background()

	s, err := c.Lookup(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "Beta", s.Title)

	s, err = c.Lookup(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", s.Title)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))

	_, err = c.Lookup(ctx, "zzz")
	assert.True(t, apperrors.IsNotFoundError(err))
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))

	groups, err := c.Grouped(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Demo", groups[0].Category)
}

func TestCatalogClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/down":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/failed":
			w.Write([]byte(`{"success":false,"error":{"code":"CATALOG_UNAVAILABLE","message":"boom"}}`))
		default:
			w.Write([]byte(`not json`))
		}
	}))
	defer server.Close()

	ctx := context.Background()
	_, err := NewCatalogClient(nil, server.URL, "/down").List(ctx)
	assert.ErrorContains(t, err, "503")

	_, err = NewCatalogClient(nil, server.URL, "/failed").List(ctx)
	assert.ErrorContains(t, err, "CATALOG_UNAVAILABLE")

	_, err = NewCatalogClient(nil, server.URL, "/garbage").Lookup(ctx, "x")
	assert.ErrorContains(t, err, "decode")
}
