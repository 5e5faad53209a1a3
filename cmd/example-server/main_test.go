package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRouter_NamespacesAreIndependent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h, err := newRouter(ctx, zaptest.NewLogger(t))
	require.NoError(t, err)

	do := func(method, path string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(method, path, nil)
		r.Header.Set("X-Real-IP", "203.0.113.7")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusNoContent, do(http.MethodPost, "/login").Code, "login %d", i+1)
	}
	login := do(http.MethodPost, "/login")
	assert.Equal(t, http.StatusTooManyRequests, login.Code)
	assert.Equal(t, "Too many login attempts\n", login.Body.String())
	assert.Equal(t, "3", login.Header().Get("X-RateLimit-Limit"))

	api := do(http.MethodGet, "/api/items")
	assert.Equal(t, http.StatusOK, api.Code, "/api keeps its own counter")
	assert.Equal(t, "5", api.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", api.Header().Get("X-RateLimit-Remaining"))

	health := do(http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Empty(t, health.Header().Get("X-RateLimit-Limit"))
}
