package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/neuro-store/internal/models"
	"github.com/magabrotheeeer/neuro-store/internal/storage"
)

// RecordUsage добавляет событие использования и увеличивает счётчик запросов подписки
// в одной транзакции. Счётчик увеличивается только у активной подписки и только
// пока он меньше maxRequests (nil означает безлимит); иначе возвращается storage.ErrStateChanged.
func (s *Storage) RecordUsage(ctx context.Context, e models.UsageEvent, maxRequests *int) (*models.UsageEvent, int, error) {
	const op = "storage.RecordUsage"
	if err := checkCtx(ctx, op); err != nil {
		return nil, 0, err
	}

	var requestsUsed int
	created := e
	err := s.withTx(ctx, op, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`UPDATE subscriptions
			  SET requests_used = requests_used + 1, updated_at = NOW()
			  WHERE id = $1 AND status = 'active' AND ($2::INTEGER IS NULL OR requests_used < $2::INTEGER)
			  RETURNING requests_used`, e.SubscriptionID, nullableInt(maxRequests)).Scan(&requestsUsed)
		if err != nil {
			err = wrap(op, err)
			if isNotFound(err) {
				return fmt.Errorf("%s: %w", op, storage.ErrStateChanged)
			}
			return err
		}

		if err := tx.QueryRowContext(ctx,
			`INSERT INTO usage_events (user_id, subscription_id, product_id, event_type, request_data,
			      response_data, tokens_used, cost, duration_ms, status, error_message)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING id, created_at`,
			e.UserID, e.SubscriptionID, e.ProductID, e.EventType, e.RequestData, e.ResponseData,
			e.TokensUsed, e.Cost, e.DurationMS, e.Status, e.ErrorMessage).Scan(&created.ID, &created.CreatedAt); err != nil {
			return wrap(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return &created, requestsUsed, nil
}
