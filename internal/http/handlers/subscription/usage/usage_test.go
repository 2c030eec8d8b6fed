package usage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/neuro-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/neuro-store/internal/lib/apperr"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) RecordUsage(ctx context.Context, p models.Principal, id int64, req models.UsageRequest) (*models.UsageEvent, error) {
	args := m.Called(ctx, p, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UsageEvent), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRequest(id, body string, p models.Principal) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/subscriptions/"+id+"/usage", bytes.NewBufferString(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(middlewarectx.WithPrincipal(ctx, p))
}

func TestUsageHandler_ServeHTTP(t *testing.T) {
	p := models.Principal{UserID: 10, Roles: []string{models.RoleUser}}

	t.Run("recorded", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("RecordUsage", mock.Anything, p, int64(5), mock.MatchedBy(func(r models.UsageRequest) bool {
			return r.EventType == "completion" && r.TokensUsed == 120
		})).Return(&models.UsageEvent{ID: 1, SubscriptionID: 5, EventType: "completion", TokensUsed: 120}, nil).Once()

		rr := httptest.NewRecorder()
		New(newNoopLogger(), svc).ServeHTTP(rr, newRequest("5", `{"event_type":"completion","tokens_used":120}`, p))

		assert.Equal(t, http.StatusCreated, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("quota exceeded", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("RecordUsage", mock.Anything, p, int64(5), mock.Anything).
			Return(nil, apperr.BusinessRule("Исчерпан лимит запросов по тарифу")).Once()

		rr := httptest.NewRecorder()
		New(newNoopLogger(), svc).ServeHTTP(rr, newRequest("5", `{"event_type":"completion"}`, p))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var resp map[string]map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Исчерпан лимит запросов по тарифу", resp["error"]["message"])
	})

	t.Run("bad id", func(t *testing.T) {
		svc := new(ServiceMock)

		rr := httptest.NewRecorder()
		New(newNoopLogger(), svc).ServeHTTP(rr, newRequest("abc", `{"event_type":"completion"}`, p))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		svc.AssertNotCalled(t, "RecordUsage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		svc := new(ServiceMock)

		rr := httptest.NewRecorder()
		New(newNoopLogger(), svc).ServeHTTP(rr, newRequest("5", `{"event_type":"completion","status":"weird"}`, p))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})
}
