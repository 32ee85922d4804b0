package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestHealthHandler(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name     string
		ready    bool
		checks   []healthCheck
		wantCode int
		wantBody healthResponse
	}{
		{
			name:     "NotReady",
			ready:    false,
			checks:   []healthCheck{{name: "database", ping: up}},
			wantCode: http.StatusServiceUnavailable,
			wantBody: healthResponse{Status: "starting"},
		},
		{
			name:     "ReadyWithoutChecks",
			ready:    true,
			wantCode: http.StatusOK,
			wantBody: healthResponse{Status: "ok"},
		},
		{
			name:     "AllUp",
			ready:    true,
			checks:   []healthCheck{{name: "database", ping: up}, {name: "redis", ping: up}},
			wantCode: http.StatusOK,
			wantBody: healthResponse{Status: "ok", Checks: map[string]string{"database": "up", "redis": "up"}},
		},
		{
			name:     "OneDown",
			ready:    true,
			checks:   []healthCheck{{name: "database", ping: up}, {name: "redis", ping: down}},
			wantCode: http.StatusServiceUnavailable,
			wantBody: healthResponse{Status: "degraded", Checks: map[string]string{"database": "up", "redis": "down"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h := newHealthHandler(atomic.NewBool(tt.ready), tt.checks)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/health", nil)

			// Act
			h.ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, tt.wantCode, rec.Code)

			var got healthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantBody, got)
		})
	}
}

func TestHealthHandler_FollowsReadiness(t *testing.T) {
	// Arrange
	ready := atomic.NewBool(true)
	h := newHealthHandler(ready, nil)

	// Act
	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/health", nil))
	ready.Store(false)
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/health", nil))

	// Assert
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusServiceUnavailable, second.Code)
}
