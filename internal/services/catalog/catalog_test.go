package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/neuro-store/internal/cache"
	"github.com/magabrotheeeer/neuro-store/internal/lib/apperr"
	"github.com/magabrotheeeer/neuro-store/internal/models"
	"github.com/magabrotheeeer/neuro-store/internal/storage"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *RepoMock) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *RepoMock) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *RepoMock) UpdateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *RepoMock) DeactivateProduct(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *RepoMock) ListProductPlans(ctx context.Context, productID int64) ([]models.Plan, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Plan), args.Error(1)
}

func (m *RepoMock) GetPlan(ctx context.Context, id int64) (*models.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *RepoMock) CreatePlan(ctx context.Context, p models.Plan) (*models.Plan, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *RepoMock) UpdatePlan(ctx context.Context, p models.Plan) (*models.Plan, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *RepoMock) DeactivatePlan(ctx context.Context, id int64) (*models.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}

func (m *RepoMock) AttachPlan(ctx context.Context, productID, planID int64) (*models.ProductPlan, error) {
	args := m.Called(ctx, productID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductPlan), args.Error(1)
}

type AuditMock struct{ mock.Mock }

func (m *AuditMock) WriteAudit(ctx context.Context, e models.AuditEntry) error {
	return m.Called(ctx, e).Error(0)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *CacheMock) InvalidatePattern(ctx context.Context, pattern string) error {
	return m.Called(ctx, pattern).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testTTL = TTL{Products: 300 * time.Second, Plans: 600 * time.Second}

var admin = models.Principal{UserID: 1, Roles: []string{models.RoleAdmin}, IPAddress: "127.0.0.1"}

func expectInvalidation(c *CacheMock) {
	c.On("InvalidatePattern", mock.Anything, cache.PatternProducts).Return(nil).Once()
	c.On("InvalidatePattern", mock.Anything, cache.PatternProductPlans).Return(nil).Once()
}

func TestListProducts_CacheMissThenStore(t *testing.T) {
	repo, c := new(RepoMock), new(CacheMock)
	filter := models.ProductFilter{Category: "nlp", Limit: 10}
	key := "products:category=nlp:limit=10:skip=0"
	products := []models.Product{{ID: 1, Name: "GPT", IsActive: true}}

	c.On("Get", mock.Anything, key, mock.Anything).Return(false, nil)
	repo.On("ListProducts", mock.Anything, filter).Return(products, nil)
	c.On("Set", mock.Anything, key, products, 300*time.Second).Return(nil)

	svc := NewCatalogService(repo, new(AuditMock), c, testTTL, newNoopLogger())
	got, err := svc.ListProducts(context.Background(), filter)

	require.NoError(t, err)
	assert.Equal(t, products, got)
	repo.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestListProducts_CacheHitSkipsStore(t *testing.T) {
	repo, c := new(RepoMock), new(CacheMock)
	c.On("Get", mock.Anything, "products:limit=100:skip=0", mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(2).(*[]models.Product) = []models.Product{{ID: 42}}
		}).
		Return(true, nil)

	svc := NewCatalogService(repo, new(AuditMock), c, testTTL, newNoopLogger())
	got, err := svc.ListProducts(context.Background(), models.ProductFilter{})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(42), got[0].ID)
	repo.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
}

func TestListProducts_CacheOutageFallsBackToStore(t *testing.T) {
	repo, c := new(RepoMock), new(CacheMock)
	c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
	c.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
	repo.On("ListProducts", mock.Anything, mock.Anything).Return(nil, nil)

	svc := NewCatalogService(repo, new(AuditMock), c, testTTL, newNoopLogger())
	got, err := svc.ListProducts(context.Background(), models.ProductFilter{})

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListProductPlans(t *testing.T) {
	t.Run("unknown product", func(t *testing.T) {
		repo, c := new(RepoMock), new(CacheMock)
		c.On("Get", mock.Anything, "product_plans:7", mock.Anything).Return(false, nil)
		repo.On("GetProduct", mock.Anything, int64(7)).Return(nil, storage.ErrNotFound)

		svc := NewCatalogService(repo, new(AuditMock), c, testTTL, newNoopLogger())
		_, err := svc.ListProductPlans(context.Background(), 7)

		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("cached with plans ttl", func(t *testing.T) {
		repo, c := new(RepoMock), new(CacheMock)
		plans := []models.Plan{{ID: 2, Price: decimal.RequireFromString("99.99"), DurationDays: 30, IsActive: true}}
		c.On("Get", mock.Anything, "product_plans:7", mock.Anything).Return(false, nil)
		repo.On("GetProduct", mock.Anything, int64(7)).Return(&models.Product{ID: 7, IsActive: true}, nil)
		repo.On("ListProductPlans", mock.Anything, int64(7)).Return(plans, nil)
		c.On("Set", mock.Anything, "product_plans:7", plans, 600*time.Second).Return(nil)

		svc := NewCatalogService(repo, new(AuditMock), c, testTTL, newNoopLogger())
		got, err := svc.ListProductPlans(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, plans, got)
		c.AssertExpectations(t)
	})
}

func TestCreateProduct_InvalidatesAndAudits(t *testing.T) {
	repo, c, a := new(RepoMock), new(CacheMock), new(AuditMock)
	req := models.ProductRequest{Name: "Vision", Category: "cv"}

	repo.On("CreateProduct", mock.Anything, models.Product{Name: "Vision", Category: "cv", IsActive: true}).
		Return(&models.Product{ID: 5, Name: "Vision", Category: "cv", IsActive: true}, nil)
	expectInvalidation(c)
	a.On("WriteAudit", mock.Anything, mock.MatchedBy(func(e models.AuditEntry) bool {
		return e.TableName == "products" && e.RecordID == 5 && e.Operation == "CREATE" &&
			e.UserID != nil && *e.UserID == admin.UserID && e.IPAddress == "127.0.0.1"
	})).Return(nil)

	svc := NewCatalogService(repo, a, c, testTTL, newNoopLogger())
	p, err := svc.CreateProduct(context.Background(), admin, req)

	require.NoError(t, err)
	assert.Equal(t, "Vision", p.Name)
	assert.True(t, p.IsActive)
	c.AssertExpectations(t)
	a.AssertExpectations(t)
}

func TestCreateProduct_AuditFailureIsNotFatal(t *testing.T) {
	repo, c, a := new(RepoMock), new(CacheMock), new(AuditMock)
	repo.On("CreateProduct", mock.Anything, mock.Anything).Return(&models.Product{ID: 5}, nil)
	expectInvalidation(c)
	a.On("WriteAudit", mock.Anything, mock.Anything).Return(errors.New("audit table locked"))

	svc := NewCatalogService(repo, a, c, testTTL, newNoopLogger())
	_, err := svc.CreateProduct(context.Background(), admin, models.ProductRequest{Name: "X"})

	assert.NoError(t, err)
}

func TestUpdateProduct(t *testing.T) {
	inactive := false

	t.Run("overwrites fields", func(t *testing.T) {
		repo, c, a := new(RepoMock), new(CacheMock), new(AuditMock)
		repo.On("GetProduct", mock.Anything, int64(3)).Return(&models.Product{ID: 3, Name: "Old", IsActive: true}, nil)
		repo.On("UpdateProduct", mock.Anything, models.Product{ID: 3, Name: "New", IsActive: false}).
			Return(&models.Product{ID: 3, Name: "New"}, nil)
		expectInvalidation(c)
		a.On("WriteAudit", mock.Anything, mock.Anything).Return(nil)

		svc := NewCatalogService(repo, a, c, testTTL, newNoopLogger())
		p, err := svc.UpdateProduct(context.Background(), admin, 3, models.ProductRequest{Name: "New", IsActive: &inactive})

		require.NoError(t, err)
		assert.Equal(t, "New", p.Name)
		repo.AssertExpectations(t)
	})

	t.Run("missing product", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetProduct", mock.Anything, int64(3)).Return(nil, storage.ErrNotFound)

		svc := NewCatalogService(repo, new(AuditMock), new(CacheMock), testTTL, newNoopLogger())
		_, err := svc.UpdateProduct(context.Background(), admin, 3, models.ProductRequest{Name: "New"})

		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestDeleteProduct(t *testing.T) {
	repo, c, a := new(RepoMock), new(CacheMock), new(AuditMock)
	repo.On("DeactivateProduct", mock.Anything, int64(3)).Return(&models.Product{ID: 3}, nil)
	expectInvalidation(c)
	a.On("WriteAudit", mock.Anything, mock.MatchedBy(func(e models.AuditEntry) bool {
		return e.Operation == "DELETE" && e.NewValues["is_active"] == false
	})).Return(nil)

	svc := NewCatalogService(repo, a, c, testTTL, newNoopLogger())
	require.NoError(t, svc.DeleteProduct(context.Background(), admin, 3))
	a.AssertExpectations(t)

	repo2 := new(RepoMock)
	repo2.On("DeactivateProduct", mock.Anything, int64(4)).Return(nil, storage.ErrNotFound)
	err := NewCatalogService(repo2, a, c, testTTL, newNoopLogger()).DeleteProduct(context.Background(), admin, 4)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCreatePlan(t *testing.T) {
	limit := 1000

	for _, price := range []string{"0", "-1", "0.004", "99.999", "10000000000"} {
		t.Run("rejects price "+price, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewCatalogService(repo, new(AuditMock), new(CacheMock), testTTL, newNoopLogger())

			_, err := svc.CreatePlan(context.Background(), admin, models.PlanRequest{
				Name: "Free", Price: decimal.RequireFromString(price), DurationDays: 30,
			})

			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			repo.AssertNotCalled(t, "CreatePlan", mock.Anything, mock.Anything)
		})
	}

	t.Run("creates plan", func(t *testing.T) {
		repo, c, a := new(RepoMock), new(CacheMock), new(AuditMock)
		price := decimal.RequireFromString("99.99")
		repo.On("CreatePlan", mock.Anything, mock.MatchedBy(func(p models.Plan) bool {
			return p.Price.Equal(price) && p.DurationDays == 30 && *p.MaxRequestsPerMonth == 1000 && p.IsActive
		})).Return(&models.Plan{ID: 8, Price: price, DurationDays: 30, MaxRequestsPerMonth: &limit, IsActive: true}, nil)
		expectInvalidation(c)
		a.On("WriteAudit", mock.Anything, mock.MatchedBy(func(e models.AuditEntry) bool {
			return e.TableName == "plans" && e.NewValues["price"] == "99.99"
		})).Return(nil)

		svc := NewCatalogService(repo, a, c, testTTL, newNoopLogger())
		p, err := svc.CreatePlan(context.Background(), admin, models.PlanRequest{
			Name: "Basic", Price: price, DurationDays: 30, MaxRequestsPerMonth: &limit,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(8), p.ID)
		a.AssertExpectations(t)
	})
}

func TestUpdatePlan_RejectsSubCentPrice(t *testing.T) {
	repo := new(RepoMock)
	svc := NewCatalogService(repo, new(AuditMock), new(CacheMock), testTTL, newNoopLogger())

	_, err := svc.UpdatePlan(context.Background(), admin, 8, models.PlanRequest{
		Name: "Basic", Price: decimal.RequireFromString("0.004"), DurationDays: 30,
	})

	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	repo.AssertNotCalled(t, "GetPlan", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdatePlan", mock.Anything, mock.Anything)
}

func TestAttachPlan(t *testing.T) {
	setup := func() (*RepoMock, *CacheMock, *AuditMock) {
		repo, c, a := new(RepoMock), new(CacheMock), new(AuditMock)
		repo.On("GetProduct", mock.Anything, int64(1)).Return(&models.Product{ID: 1}, nil)
		repo.On("GetPlan", mock.Anything, int64(2)).Return(&models.Plan{ID: 2}, nil)
		return repo, c, a
	}

	t.Run("attaches", func(t *testing.T) {
		repo, c, a := setup()
		repo.On("AttachPlan", mock.Anything, int64(1), int64(2)).
			Return(&models.ProductPlan{ID: 10, ProductID: 1, PlanID: 2, IsAvailable: true}, nil)
		expectInvalidation(c)
		a.On("WriteAudit", mock.Anything, mock.Anything).Return(nil)

		link, err := NewCatalogService(repo, a, c, testTTL, newNoopLogger()).AttachPlan(context.Background(), admin, 1, 2)

		require.NoError(t, err)
		assert.True(t, link.IsAvailable)
	})

	t.Run("duplicate link", func(t *testing.T) {
		repo, c, a := setup()
		repo.On("AttachPlan", mock.Anything, int64(1), int64(2)).Return(nil, storage.ErrAlreadyExists)

		_, err := NewCatalogService(repo, a, c, testTTL, newNoopLogger()).AttachPlan(context.Background(), admin, 1, 2)

		assert.ErrorIs(t, err, ErrPlanAttached)
		assert.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err))
		c.AssertNotCalled(t, "InvalidatePattern", mock.Anything, mock.Anything)
	})

	t.Run("missing plan", func(t *testing.T) {
		repo, c, a := new(RepoMock), new(CacheMock), new(AuditMock)
		repo.On("GetProduct", mock.Anything, int64(1)).Return(&models.Product{ID: 1}, nil)
		repo.On("GetPlan", mock.Anything, int64(9)).Return(nil, storage.ErrNotFound)

		_, err := NewCatalogService(repo, a, c, testTTL, newNoopLogger()).AttachPlan(context.Background(), admin, 1, 9)

		assert.ErrorIs(t, err, ErrPlanNotFound)
	})
}
