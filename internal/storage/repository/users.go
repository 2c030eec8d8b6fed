package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/neuro-store/internal/models"
)

const userColumns = `id, email, password_hash, first_name, last_name, phone, balance,
			      is_active, is_verified, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone,
		&u.Balance, &u.IsActive, &u.IsVerified, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser сохраняет нового пользователя и выдаёт ему роль roleName, если такая роль есть.
// Возвращает storage.ErrAlreadyExists при занятом email.
func (s *Storage) CreateUser(ctx context.Context, user models.User, roleName string) (*models.User, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var created *models.User
	err := s.withTx(ctx, op, func(tx *sql.Tx) error {
		query := `INSERT INTO users (email, password_hash, first_name, last_name, phone)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + userColumns
		u, err := scanUser(tx.QueryRowContext(ctx, query,
			user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Phone))
		if err != nil {
			return wrap(op, err)
		}
		created = u

		if roleName == "" {
			return nil
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO user_roles (user_id, role_id)
			  SELECT $1, id FROM roles WHERE name = $2 AND is_active
			  ON CONFLICT DO NOTHING`, u.ID, roleName)
		if err != nil {
			return wrap(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetUserByID возвращает пользователя по id.
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUserByID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// ListUsers возвращает страницу пользователей, упорядоченных по id.
func (s *Storage) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	const op = "storage.ListUsers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id OFFSET $1 LIMIT $2`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SetUserActive включает или выключает пользователя.
func (s *Storage) SetUserActive(ctx context.Context, id int64, active bool) (*models.User, error) {
	const op = "storage.SetUserActive"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`UPDATE users SET is_active = $2, updated_at = NOW()
			  WHERE id = $1
			  RETURNING `+userColumns, id, active))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// GetBalance возвращает баланс пользователя.
func (s *Storage) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	const op = "storage.GetBalance"
	if err := checkCtx(ctx, op); err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	if err := s.DB.QueryRowContext(ctx,
		`SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance); err != nil {
		return decimal.Zero, wrap(op, err)
	}
	return balance, nil
}
