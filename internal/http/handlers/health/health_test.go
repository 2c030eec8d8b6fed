package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name     string
		checks   map[string]Pinger
		wantCode int
		wantDeps map[string]string
	}{
		{"all up", map[string]Pinger{"postgres": ok, "redis": ok}, http.StatusOK,
			map[string]string{"postgres": "ok", "redis": "ok"}},
		{"redis down", map[string]Pinger{"postgres": ok, "redis": down}, http.StatusServiceUnavailable,
			map[string]string{"postgres": "ok", "redis": "unavailable"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			New(log, tt.checks).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, rr.Code)
			var st Status
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
			assert.Equal(t, tt.wantDeps, st.Dependencies)
		})
	}
}
