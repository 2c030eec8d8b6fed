package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/neuro-store/internal/models"
	"github.com/magabrotheeeer/neuro-store/internal/storage"
)

const subscriptionColumns = `id, user_id, product_id, plan_id, status, start_date, end_date,
			      auto_renew, requests_used, created_at, updated_at`

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	var sub models.Subscription
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.ProductID, &sub.PlanID, &sub.Status,
		&sub.StartDate, &sub.EndDate, &sub.AutoRenew, &sub.RequestsUsed,
		&sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListSubscriptions возвращает подписки пользователя, новые первыми.
func (s *Storage) ListSubscriptions(ctx context.Context, userID int64) ([]models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+subscriptionColumns+`
			  FROM subscriptions
			  WHERE user_id = $1
			  ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetSubscription возвращает подписку по id.
func (s *Storage) GetSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	sub, err := scanSubscription(s.DB.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return sub, nil
}

// CancelSubscription переводит активную подписку в cancelled и выключает автопродление.
// Если подписка уже не активна, возвращает storage.ErrStateChanged.
func (s *Storage) CancelSubscription(ctx context.Context, id int64) (*models.Subscription, error) {
	const op = "storage.CancelSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	sub, err := scanSubscription(s.DB.QueryRowContext(ctx,
		`UPDATE subscriptions
			  SET status = 'cancelled', auto_renew = FALSE, updated_at = NOW()
			  WHERE id = $1 AND status = 'active'
			  RETURNING `+subscriptionColumns, id))
	if err != nil {
		err = wrap(op, err)
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrStateChanged)
		}
		return nil, err
	}
	return sub, nil
}

// ExpireSubscription переводит активную подписку с истёкшим end_date в expired.
// Повторный вызов не меняет запись и возвращает storage.ErrStateChanged.
func (s *Storage) ExpireSubscription(ctx context.Context, id int64, now time.Time) (*models.Subscription, error) {
	const op = "storage.ExpireSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	sub, err := scanSubscription(s.DB.QueryRowContext(ctx,
		`UPDATE subscriptions
			  SET status = 'expired', updated_at = NOW()
			  WHERE id = $1 AND status = 'active' AND end_date < $2
			  RETURNING `+subscriptionColumns, id, now))
	if err != nil {
		err = wrap(op, err)
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrStateChanged)
		}
		return nil, err
	}
	return sub, nil
}
