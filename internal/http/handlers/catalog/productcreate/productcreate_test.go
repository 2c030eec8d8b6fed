package productcreate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/neuro-store/internal/http/middlewarectx"
	"github.com/magabrotheeeer/neuro-store/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CreateProduct(ctx context.Context, actor models.Principal, req models.ProductRequest) (*models.Product, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestProductCreateHandler_EchoesFields(t *testing.T) {
	admin := models.Principal{UserID: 1, Roles: []string{models.RoleAdmin}}
	svc := new(ServiceMock)
	svc.On("CreateProduct", mock.Anything, admin, mock.MatchedBy(func(r models.ProductRequest) bool {
		return r.Name == "Vision API" && r.Category == "cv"
	})).Return(&models.Product{ID: 3, Name: "Vision API", Category: "cv", IsActive: true}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/products",
		bytes.NewBufferString(`{"name":"Vision API","category":"cv"}`))
	req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), admin))
	rr := httptest.NewRecorder()

	New(newNoopLogger(), svc).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp struct {
		Status string         `json:"status"`
		Data   models.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "OK", resp.Status)
	assert.Equal(t, "Vision API", resp.Data.Name)
	assert.Equal(t, "cv", resp.Data.Category)
	svc.AssertExpectations(t)
}

func TestProductCreateHandler_ValidationDetails(t *testing.T) {
	admin := models.Principal{UserID: 1, Roles: []string{models.RoleAdmin}}
	svc := new(ServiceMock)

	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(`{"category":"cv"}`))
	req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), admin))
	rr := httptest.NewRecorder()

	New(newNoopLogger(), svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "validation_errors")
	svc.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything, mock.Anything)
}
