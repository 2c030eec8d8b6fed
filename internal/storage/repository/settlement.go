package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/neuro-store/internal/models"
	"github.com/magabrotheeeer/neuro-store/internal/storage"
)

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}

// Settle выполняет покупку подписки одной транзакцией: блокирует строку пользователя,
// повторно проверяет баланс, списывает цену, создаёт завершённый заказ, платёж
// с баланса и активную подписку. Любая ошибка откатывает все изменения.
//
// Блокировка FOR UPDATE сериализует конкурентные покупки одного пользователя,
// поэтому баланс не уходит в минус.
func (s *Storage) Settle(ctx context.Context, in models.Settlement) (*models.SettlementResult, error) {
	const op = "storage.Settle"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var res models.SettlementResult
	err := s.withTx(ctx, op, func(tx *sql.Tx) error {
		var balance decimal.Decimal
		if err := tx.QueryRowContext(ctx,
			`SELECT balance FROM users WHERE id = $1 FOR UPDATE`, in.UserID).Scan(&balance); err != nil {
			return wrap(op, err)
		}
		if balance.LessThan(in.Price) {
			return fmt.Errorf("%s: %w", op, storage.ErrInsufficientFunds)
		}

		if err := tx.QueryRowContext(ctx,
			`UPDATE users SET balance = balance - $2, updated_at = NOW()
			  WHERE id = $1
			  RETURNING balance`, in.UserID, in.Price).Scan(&res.BalanceAfter); err != nil {
			return wrap(op, err)
		}

		if err := tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, product_id, plan_id, status, amount, currency)
			  VALUES ($1, $2, $3, 'completed', $4, $5)
			  RETURNING id`,
			in.UserID, in.ProductID, in.PlanID, in.Price, in.Currency).Scan(&res.OrderID); err != nil {
			return wrap(op, err)
		}

		if err := tx.QueryRowContext(ctx,
			`INSERT INTO payments (order_id, user_id, amount, currency, payment_method, status, payment_date)
			  VALUES ($1, $2, $3, $4, 'balance', 'completed', $5)
			  RETURNING id`,
			res.OrderID, in.UserID, in.Price, in.Currency, in.Now).Scan(&res.PaymentID); err != nil {
			return wrap(op, err)
		}

		sub, err := scanSubscription(tx.QueryRowContext(ctx,
			`INSERT INTO subscriptions (user_id, product_id, plan_id, status, start_date, end_date, auto_renew, requests_used)
			  VALUES ($1, $2, $3, 'active', $4, $5, TRUE, 0)
			  RETURNING `+subscriptionColumns,
			in.UserID, in.ProductID, in.PlanID, in.Now, in.Now.Add(in.Duration)))
		if err != nil {
			return wrap(op, err)
		}
		res.Subscription = *sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
