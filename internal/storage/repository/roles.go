package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/neuro-store/internal/models"
)

const roleColumns = `id, name, description, is_active, created_at`

func scanRole(row rowScanner) (*models.Role, error) {
	var r models.Role
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &r.IsActive, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Storage) queryRoles(ctx context.Context, op, query string, args ...any) ([]models.Role, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Role, 0)
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListActiveRoles возвращает активные роли.
func (s *Storage) ListActiveRoles(ctx context.Context) ([]models.Role, error) {
	const op = "storage.ListActiveRoles"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.queryRoles(ctx, op, `SELECT `+roleColumns+` FROM roles WHERE is_active ORDER BY id`)
}

// CreateRole создаёт роль. Занятое имя даёт storage.ErrAlreadyExists.
func (s *Storage) CreateRole(ctx context.Context, name, description string) (*models.Role, error) {
	const op = "storage.CreateRole"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	r, err := scanRole(s.DB.QueryRowContext(ctx,
		`INSERT INTO roles (name, description) VALUES ($1, $2) RETURNING `+roleColumns,
		name, description))
	if err != nil {
		return nil, wrap(op, err)
	}
	return r, nil
}

// GetRoleByID возвращает роль по id.
func (s *Storage) GetRoleByID(ctx context.Context, id int64) (*models.Role, error) {
	const op = "storage.GetRoleByID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	r, err := scanRole(s.DB.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return r, nil
}

// GetRoleByName возвращает роль по имени.
func (s *Storage) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	const op = "storage.GetRoleByName"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	r, err := scanRole(s.DB.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name))
	if err != nil {
		return nil, wrap(op, err)
	}
	return r, nil
}

// AssignRole назначает роль пользователю. Повторное назначение даёт
// storage.ErrAlreadyExists, запись не дублируется.
func (s *Storage) AssignRole(ctx context.Context, userID, roleID int64) (*models.UserRole, error) {
	const op = "storage.AssignRole"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var ur models.UserRole
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
			  RETURNING id, user_id, role_id, created_at`, userID, roleID).
		Scan(&ur.ID, &ur.UserID, &ur.RoleID, &ur.CreatedAt)
	if err != nil {
		return nil, wrap(op, err)
	}
	return &ur, nil
}

// RevokeRole снимает роль и возвращает ID удалённого назначения.
// Если назначения не было, возвращает storage.ErrNotFound.
func (s *Storage) RevokeRole(ctx context.Context, userID, roleID int64) (int64, error) {
	const op = "storage.RevokeRole"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var id int64
	if err := s.DB.QueryRowContext(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2 RETURNING id`, userID, roleID).Scan(&id); err != nil {
		return 0, wrap(op, err)
	}
	return id, nil
}

// UserRoles возвращает активные роли пользователя.
func (s *Storage) UserRoles(ctx context.Context, userID int64) ([]models.Role, error) {
	const op = "storage.UserRoles"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.queryRoles(ctx, op, `SELECT r.id, r.name, r.description, r.is_active, r.created_at
			  FROM roles r
			  JOIN user_roles ur ON ur.role_id = r.id
			  WHERE ur.user_id = $1 AND r.is_active
			  ORDER BY r.id`, userID)
}

// UserRoleNames возвращает имена активных ролей пользователя.
func (s *Storage) UserRoleNames(ctx context.Context, userID int64) ([]string, error) {
	roles, err := s.UserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names, nil
}
