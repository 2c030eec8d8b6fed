package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/neuro-store/internal/models"
)

const productColumns = `id, name, description, category, api_endpoint, is_active, created_at, updated_at`

const planColumns = `id, name, description, price, duration_days, max_requests_per_month,
			      features, is_active, created_at, updated_at`

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.APIEndpoint,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPlan(row rowScanner) (*models.Plan, error) {
	var p models.Plan
	var maxRequests sql.NullInt32
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationDays, &maxRequests,
		&p.Features, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if maxRequests.Valid {
		v := int(maxRequests.Int32)
		p.MaxRequestsPerMonth = &v
	}
	return &p, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// ListProducts возвращает активные продукты, опционально по категории.
func (s *Storage) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	const op = "storage.ListProducts"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+productColumns+`
			  FROM products
			  WHERE is_active AND ($1 = '' OR category = $1)
			  ORDER BY id
			  OFFSET $2 LIMIT $3`, f.Category, f.Skip, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetProduct возвращает продукт по id независимо от активности.
func (s *Storage) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	const op = "storage.GetProduct"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	p, err := scanProduct(s.DB.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return p, nil
}

// CreateProduct создаёт продукт.
func (s *Storage) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	const op = "storage.CreateProduct"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	created, err := scanProduct(s.DB.QueryRowContext(ctx,
		`INSERT INTO products (name, description, category, api_endpoint, is_active)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING `+productColumns,
		p.Name, p.Description, p.Category, p.APIEndpoint, p.IsActive))
	if err != nil {
		return nil, wrap(op, err)
	}
	return created, nil
}

// UpdateProduct обновляет продукт целиком.
func (s *Storage) UpdateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	const op = "storage.UpdateProduct"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	updated, err := scanProduct(s.DB.QueryRowContext(ctx,
		`UPDATE products
			  SET name = $2, description = $3, category = $4, api_endpoint = $5,
			      is_active = $6, updated_at = NOW()
			  WHERE id = $1
			  RETURNING `+productColumns,
		p.ID, p.Name, p.Description, p.Category, p.APIEndpoint, p.IsActive))
	if err != nil {
		return nil, wrap(op, err)
	}
	return updated, nil
}

// DeactivateProduct мягко удаляет продукт.
func (s *Storage) DeactivateProduct(ctx context.Context, id int64) (*models.Product, error) {
	const op = "storage.DeactivateProduct"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	p, err := scanProduct(s.DB.QueryRowContext(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = NOW()
			  WHERE id = $1
			  RETURNING `+productColumns, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return p, nil
}

// ListProductPlans возвращает активные тарифы, доступные для продукта.
func (s *Storage) ListProductPlans(ctx context.Context, productID int64) ([]models.Plan, error) {
	const op = "storage.ListProductPlans"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT p.id, p.name, p.description, p.price, p.duration_days,
			      p.max_requests_per_month, p.features, p.is_active, p.created_at, p.updated_at
			  FROM plans p
			  JOIN product_plans pp ON pp.plan_id = p.id
			  WHERE pp.product_id = $1 AND pp.is_available AND p.is_active
			  ORDER BY p.price, p.id`, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPlan возвращает тариф по id независимо от активности.
func (s *Storage) GetPlan(ctx context.Context, id int64) (*models.Plan, error) {
	const op = "storage.GetPlan"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	p, err := scanPlan(s.DB.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return p, nil
}

// CreatePlan создаёт тариф.
func (s *Storage) CreatePlan(ctx context.Context, p models.Plan) (*models.Plan, error) {
	const op = "storage.CreatePlan"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	created, err := scanPlan(s.DB.QueryRowContext(ctx,
		`INSERT INTO plans (name, description, price, duration_days, max_requests_per_month, features, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING `+planColumns,
		p.Name, p.Description, p.Price, p.DurationDays, nullableInt(p.MaxRequestsPerMonth), p.Features, p.IsActive))
	if err != nil {
		return nil, wrap(op, err)
	}
	return created, nil
}

// UpdatePlan обновляет тариф целиком. Уже купленные подписки не пересчитываются.
func (s *Storage) UpdatePlan(ctx context.Context, p models.Plan) (*models.Plan, error) {
	const op = "storage.UpdatePlan"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	updated, err := scanPlan(s.DB.QueryRowContext(ctx,
		`UPDATE plans
			  SET name = $2, description = $3, price = $4, duration_days = $5,
			      max_requests_per_month = $6, features = $7, is_active = $8, updated_at = NOW()
			  WHERE id = $1
			  RETURNING `+planColumns,
		p.ID, p.Name, p.Description, p.Price, p.DurationDays, nullableInt(p.MaxRequestsPerMonth), p.Features, p.IsActive))
	if err != nil {
		return nil, wrap(op, err)
	}
	return updated, nil
}

// DeactivatePlan мягко удаляет тариф.
func (s *Storage) DeactivatePlan(ctx context.Context, id int64) (*models.Plan, error) {
	const op = "storage.DeactivatePlan"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	p, err := scanPlan(s.DB.QueryRowContext(ctx,
		`UPDATE plans SET is_active = FALSE, updated_at = NOW()
			  WHERE id = $1
			  RETURNING `+planColumns, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return p, nil
}

// AttachPlan привязывает тариф к продукту. Повторная привязка даёт storage.ErrAlreadyExists,
// несуществующий продукт или тариф даёт storage.ErrForeignKey.
func (s *Storage) AttachPlan(ctx context.Context, productID, planID int64) (*models.ProductPlan, error) {
	const op = "storage.AttachPlan"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var pp models.ProductPlan
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO product_plans (product_id, plan_id) VALUES ($1, $2)
			  RETURNING id, product_id, plan_id, is_available, created_at`, productID, planID).
		Scan(&pp.ID, &pp.ProductID, &pp.PlanID, &pp.IsAvailable, &pp.CreatedAt)
	if err != nil {
		return nil, wrap(op, err)
	}
	return &pp, nil
}
