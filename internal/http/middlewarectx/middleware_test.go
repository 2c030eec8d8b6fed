package middlewarectx

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/neuro-store/internal/lib/apperr"
	"github.com/magabrotheeeer/neuro-store/internal/lib/ratelimit"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

type AuthenticatorMock struct {
	mock.Mock
}

func (m *AuthenticatorMock) Authenticate(ctx context.Context, token string) (*models.Principal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Principal), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

type errorEnvelope struct {
	Error struct {
		Type      string         `json:"type"`
		Message   string         `json:"message"`
		Details   map[string]any `json:"details"`
		RequestID string         `json:"request_id"`
	} `json:"error"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var e errorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &e))
	return e
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def", "abc.def", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic dXNlcg==", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := bearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestJWTMiddleware(t *testing.T) {
	var seen models.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("anonymous request gets 401 envelope", func(t *testing.T) {
		auth := new(AuthenticatorMock)
		rr := httptest.NewRecorder()

		JWTMiddleware(auth, newNoopLogger())(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/subscriptions", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		e := decodeError(t, rr)
		assert.Equal(t, string(apperr.KindAuthentication), e.Error.Type)
		assert.NotEmpty(t, e.Error.RequestID)
		auth.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("rejected token", func(t *testing.T) {
		auth := new(AuthenticatorMock)
		auth.On("Authenticate", mock.Anything, "expired").
			Return(nil, apperr.Authentication("Недействительный или истекший токен аутентификации")).Once()
		req := httptest.NewRequest(http.MethodGet, "/subscriptions", nil)
		req.Header.Set("Authorization", "Bearer expired")
		rr := httptest.NewRecorder()

		JWTMiddleware(auth, newNoopLogger())(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Недействительный или истекший токен аутентификации", decodeError(t, rr).Error.Message)
	})

	t.Run("valid token puts principal into context", func(t *testing.T) {
		auth := new(AuthenticatorMock)
		auth.On("Authenticate", mock.Anything, "good").
			Return(&models.Principal{UserID: 42, Email: "u@example.com", Roles: []string{models.RoleUser}}, nil).Once()
		req := httptest.NewRequest(http.MethodGet, "/subscriptions", nil)
		req.Header.Set("Authorization", "Bearer good")
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		req.Header.Set("User-Agent", "test-agent")
		rr := httptest.NewRecorder()

		JWTMiddleware(auth, newNoopLogger())(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, int64(42), seen.UserID)
		assert.Equal(t, "203.0.113.7", seen.IPAddress)
		assert.Equal(t, "test-agent", seen.UserAgent)
	})
}

func TestRequireRoles(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	guarded := RequireRoles(newNoopLogger(), models.RoleAdmin)(next)

	tests := []struct {
		name      string
		principal *models.Principal
		wantCode  int
	}{
		{"admin passes", &models.Principal{UserID: 1, Roles: []string{models.RoleAdmin}}, http.StatusCreated},
		{"user forbidden", &models.Principal{UserID: 2, Roles: []string{models.RoleUser}}, http.StatusForbidden},
		{"moderator forbidden", &models.Principal{UserID: 3, Roles: []string{models.RoleModerator}}, http.StatusForbidden},
		{"anonymous", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/products", nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), *tt.principal))
			}
			rr := httptest.NewRecorder()

			guarded.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			if tt.wantCode == http.StatusForbidden {
				assert.Equal(t, string(apperr.KindAuthorization), decodeError(t, rr).Error.Type)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.New(nil, newNoopLogger())
	rate := ratelimit.Rate{Limit: 2, Period: time.Minute}
	h := RateLimitMiddleware(limiter, "login", rate, newNoopLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = ip + ":5555"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.1").Code)
	assert.Equal(t, http.StatusOK, send("198.51.100.1").Code)

	rr := send("198.51.100.1")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	retry, err := strconv.Atoi(rr.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retry, 1)
	assert.LessOrEqual(t, retry, 60)
	assert.Equal(t, string(apperr.KindRateLimit), decodeError(t, rr).Error.Type)

	assert.Equal(t, http.StatusOK, send("198.51.100.2").Code, "other clients are not affected")
}
