// Package services содержит бизнес-логику каталога: продукты, тарифы и их кеширование.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/neuro-store/internal/cache"
	"github.com/magabrotheeeer/neuro-store/internal/lib/apperr"
	"github.com/magabrotheeeer/neuro-store/internal/lib/audit"
	"github.com/magabrotheeeer/neuro-store/internal/lib/metrics"
	"github.com/magabrotheeeer/neuro-store/internal/lib/sl"
	"github.com/magabrotheeeer/neuro-store/internal/models"
	"github.com/magabrotheeeer/neuro-store/internal/storage"
)

// Ошибки каталога.
var (
	ErrProductNotFound = apperr.NotFound("Продукт не найден")
	ErrPlanNotFound    = apperr.NotFound("Тарифный план не найден")
	ErrPlanAttached    = apperr.BusinessRule("Тарифный план уже привязан к продукту")
	ErrInvalidPrice    = apperr.Validation("Ошибка валидации входных данных").
				WithDetails(map[string]any{"price": "must be greater than 0, have at most 2 decimal places and not exceed 9999999999.99"})
)

const defaultPageLimit = 100

// CatalogRepository определяет методы для работы с продуктами и тарифами в хранилище.
type CatalogRepository interface {
	ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, p models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) (*models.Product, error)
	DeactivateProduct(ctx context.Context, id int64) (*models.Product, error)

	// ListProductPlans возвращает доступные активные тарифы продукта.
	ListProductPlans(ctx context.Context, productID int64) ([]models.Plan, error)
	GetPlan(ctx context.Context, id int64) (*models.Plan, error)
	CreatePlan(ctx context.Context, p models.Plan) (*models.Plan, error)
	UpdatePlan(ctx context.Context, p models.Plan) (*models.Plan, error)
	DeactivatePlan(ctx context.Context, id int64) (*models.Plan, error)
	AttachPlan(ctx context.Context, productID, planID int64) (*models.ProductPlan, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// InvalidatePattern удаляет все ключи по шаблону.
	InvalidatePattern(ctx context.Context, pattern string) error
}

// TTL время жизни закешированных ответов каталога.
type TTL struct {
	Products time.Duration
	Plans    time.Duration
}

// CatalogService реализует бизнес-логику каталога с кешированием чтения.
type CatalogService struct {
	repo  CatalogRepository
	audit audit.Writer
	cache Cache
	ttl   TTL
	log   *slog.Logger
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo CatalogRepository, auditWriter audit.Writer, cache Cache, ttl TTL, log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		audit: auditWriter,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

// ListProducts возвращает активные продукты, используя кеш или репозиторий.
func (s *CatalogService) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	const op = "services.catalog.ListProducts"

	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Limit <= 0 || f.Limit > defaultPageLimit {
		f.Limit = defaultPageLimit
	}

	key := cache.Key(cache.PrefixProducts, nil, map[string]any{
		"category": f.Category,
		"skip":     f.Skip,
		"limit":    f.Limit,
	})
	var cached []models.Product
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	products, err := s.repo.ListProducts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if products == nil {
		products = []models.Product{}
	}
	s.toCache(ctx, key, products, s.ttl.Products)
	return products, nil
}

// GetProduct возвращает продукт по ID.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	const op = "services.catalog.GetProduct"

	p, err := s.repo.GetProduct(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListProductPlans возвращает тарифы продукта, используя кеш или репозиторий.
// Для неизвестного продукта возвращается NotFound.
func (s *CatalogService) ListProductPlans(ctx context.Context, productID int64) ([]models.Plan, error) {
	const op = "services.catalog.ListProductPlans"

	key := cache.Key(cache.PrefixProductPlans, []any{productID}, nil)
	var cached []models.Plan
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	plans, err := s.repo.ListProductPlans(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if plans == nil {
		plans = []models.Plan{}
	}
	s.toCache(ctx, key, plans, s.ttl.Plans)
	return plans, nil
}

// CreateProduct добавляет продукт. По умолчанию продукт активен.
func (s *CatalogService) CreateProduct(ctx context.Context, actor models.Principal, req models.ProductRequest) (*models.Product, error) {
	const op = "services.catalog.CreateProduct"

	p := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		APIEndpoint: req.APIEndpoint,
		IsActive:    true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	created, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("product created", slog.Int64("product_id", created.ID))

	s.invalidate(ctx)
	audit.Write(ctx, s.audit, s.log, audit.Entry(actor, "products", created.ID, audit.OpCreate, productValues(created)))
	return created, nil
}

// UpdateProduct перезаписывает поля продукта.
func (s *CatalogService) UpdateProduct(ctx context.Context, actor models.Principal, id int64, req models.ProductRequest) (*models.Product, error) {
	const op = "services.catalog.UpdateProduct"

	current, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	current.Name = req.Name
	current.Description = req.Description
	current.Category = req.Category
	current.APIEndpoint = req.APIEndpoint
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}

	updated, err := s.repo.UpdateProduct(ctx, *current)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx)
	audit.Write(ctx, s.audit, s.log, audit.Entry(actor, "products", id, audit.OpUpdate, productValues(updated)))
	return updated, nil
}

// DeleteProduct мягко удаляет продукт, снимая флаг активности.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor models.Principal, id int64) error {
	const op = "services.catalog.DeleteProduct"

	_, err := s.repo.DeactivateProduct(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx)
	audit.Write(ctx, s.audit, s.log, audit.Entry(actor, "products", id, audit.OpDelete, map[string]any{"is_active": false}))
	return nil
}

// GetPlan возвращает тариф по ID.
func (s *CatalogService) GetPlan(ctx context.Context, id int64) (*models.Plan, error) {
	const op = "services.catalog.GetPlan"

	p, err := s.repo.GetPlan(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// CreatePlan добавляет тариф. Цена должна быть положительной и точной до копейки.
func (s *CatalogService) CreatePlan(ctx context.Context, actor models.Principal, req models.PlanRequest) (*models.Plan, error) {
	const op = "services.catalog.CreatePlan"

	if !models.ValidAmount(req.Price) {
		return nil, ErrInvalidPrice
	}
	p := models.Plan{
		Name:                req.Name,
		Description:         req.Description,
		Price:               req.Price,
		DurationDays:        req.DurationDays,
		MaxRequestsPerMonth: req.MaxRequestsPerMonth,
		Features:            req.Features,
		IsActive:            true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	created, err := s.repo.CreatePlan(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("plan created", slog.Int64("plan_id", created.ID))

	s.invalidate(ctx)
	audit.Write(ctx, s.audit, s.log, audit.Entry(actor, "plans", created.ID, audit.OpCreate, planValues(created)))
	return created, nil
}

// UpdatePlan перезаписывает поля тарифа.
func (s *CatalogService) UpdatePlan(ctx context.Context, actor models.Principal, id int64, req models.PlanRequest) (*models.Plan, error) {
	const op = "services.catalog.UpdatePlan"

	if !models.ValidAmount(req.Price) {
		return nil, ErrInvalidPrice
	}
	current, err := s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	current.Name = req.Name
	current.Description = req.Description
	current.Price = req.Price
	current.DurationDays = req.DurationDays
	current.MaxRequestsPerMonth = req.MaxRequestsPerMonth
	current.Features = req.Features
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}

	updated, err := s.repo.UpdatePlan(ctx, *current)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx)
	audit.Write(ctx, s.audit, s.log, audit.Entry(actor, "plans", id, audit.OpUpdate, planValues(updated)))
	return updated, nil
}

// DeletePlan мягко удаляет тариф.
func (s *CatalogService) DeletePlan(ctx context.Context, actor models.Principal, id int64) error {
	const op = "services.catalog.DeletePlan"

	_, err := s.repo.DeactivatePlan(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrPlanNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx)
	audit.Write(ctx, s.audit, s.log, audit.Entry(actor, "plans", id, audit.OpDelete, map[string]any{"is_active": false}))
	return nil
}

// AttachPlan привязывает тариф к продукту. Повторная привязка запрещена.
func (s *CatalogService) AttachPlan(ctx context.Context, actor models.Principal, productID, planID int64) (*models.ProductPlan, error) {
	const op = "services.catalog.AttachPlan"

	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	if _, err := s.GetPlan(ctx, planID); err != nil {
		return nil, err
	}

	link, err := s.repo.AttachPlan(ctx, productID, planID)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return nil, ErrPlanAttached
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx)
	audit.Write(ctx, s.audit, s.log, audit.Entry(actor, "product_plans", link.ID, audit.OpCreate, map[string]any{
		"product_id": productID,
		"plan_id":    planID,
	}))
	return link, nil
}

// fromCache читает значение из кеша. Ошибка кеша считается промахом.
func (s *CatalogService) fromCache(ctx context.Context, key string, result any) bool {
	found, err := s.cache.Get(ctx, key, result)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		s.log.Warn("cache unavailable, reading from storage", slog.String("key", key), sl.Err(err))
		return false
	case found:
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	default:
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}
	return found
}

func (s *CatalogService) toCache(ctx context.Context, key string, value any, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.log.Warn("failed to cache value", slog.String("key", key), sl.Err(err))
	}
}

// invalidate сбрасывает все закешированные списки каталога.
func (s *CatalogService) invalidate(ctx context.Context) {
	for _, pattern := range []string{cache.PatternProducts, cache.PatternProductPlans} {
		if err := s.cache.InvalidatePattern(ctx, pattern); err != nil {
			s.log.Warn("failed to invalidate cache", slog.String("pattern", pattern), sl.Err(err))
		}
	}
}

func productValues(p *models.Product) map[string]any {
	return map[string]any{
		"name":         p.Name,
		"description":  p.Description,
		"category":     p.Category,
		"api_endpoint": p.APIEndpoint,
		"is_active":    p.IsActive,
	}
}

func planValues(p *models.Plan) map[string]any {
	v := map[string]any{
		"name":          p.Name,
		"price":         p.Price.StringFixed(2),
		"duration_days": p.DurationDays,
		"is_active":     p.IsActive,
	}
	if p.MaxRequestsPerMonth != nil {
		v["max_requests_per_month"] = *p.MaxRequestsPerMonth
	}
	return v
}
