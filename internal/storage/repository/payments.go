package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/neuro-store/internal/models"
)

// CreateTopUp создаёт ожидающий заказ без продукта и ожидающий карточный платёж.
// transaction_id формируется как TXN_<order id>_<unix time>.
func (s *Storage) CreateTopUp(ctx context.Context, in models.TopUp, now time.Time) (*models.Payment, error) {
	const op = "storage.CreateTopUp"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var p models.Payment
	err := s.withTx(ctx, op, func(tx *sql.Tx) error {
		var orderID int64
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, status, amount, currency, notes)
			  VALUES ($1, 'pending', $2, $3, 'Пополнение баланса')
			  RETURNING id`, in.UserID, in.Amount, in.Currency).Scan(&orderID); err != nil {
			return wrap(op, err)
		}

		txnID := fmt.Sprintf("TXN_%d_%d", orderID, now.Unix())
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO payments (order_id, user_id, amount, currency, payment_method, status, transaction_id)
			  VALUES ($1, $2, $3, $4, 'card', 'pending', $5)
			  RETURNING id, order_id, user_id, amount, currency, payment_method, status,
			      transaction_id, created_at, updated_at`,
			orderID, in.UserID, in.Amount, in.Currency, txnID).
			Scan(&p.ID, &p.OrderID, &p.UserID, &p.Amount, &p.Currency, &p.PaymentMethod, &p.Status,
				&p.TransactionID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return wrap(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CompleteTopUp подтверждает ожидающий карточный платёж пользователя: платёж и заказ
// переходят в completed, баланс увеличивается на сумму платежа. Условное обновление
// статуса гарантирует однократное зачисление; если ожидающего платежа нет,
// возвращается storage.ErrNotFound.
func (s *Storage) CompleteTopUp(ctx context.Context, paymentID, userID int64, now time.Time) (*models.VerifyResult, error) {
	const op = "storage.CompleteTopUp"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	res := models.VerifyResult{PaymentID: paymentID, Status: models.PaymentCompleted}
	err := s.withTx(ctx, op, func(tx *sql.Tx) error {
		var orderID int64
		if err := tx.QueryRowContext(ctx,
			`UPDATE payments
			  SET status = 'completed', payment_date = $3, updated_at = NOW()
			  WHERE id = $1 AND user_id = $2 AND status = 'pending' AND payment_method = 'card'
			  RETURNING order_id, amount`, paymentID, userID, now).Scan(&orderID, &res.Amount); err != nil {
			return wrap(op, err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = 'completed', updated_at = NOW() WHERE id = $1`, orderID); err != nil {
			return wrap(op, err)
		}

		if err := tx.QueryRowContext(ctx,
			`UPDATE users SET balance = balance + $2, updated_at = NOW()
			  WHERE id = $1
			  RETURNING balance`, userID, res.Amount).Scan(&res.NewBalance); err != nil {
			return wrap(op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// TopUpStatistics считает завершённые пополнения картой: общую сумму, количество
// и помесячную разбивку начиная с since.
func (s *Storage) TopUpStatistics(ctx context.Context, since time.Time) (*models.TopUpStatistics, error) {
	const op = "storage.TopUpStatistics"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var st models.TopUpStatistics
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0), COUNT(*)
			  FROM payments
			  WHERE payment_method = 'card' AND status = 'completed'`).Scan(&st.Total, &st.Count); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT date_trunc('month', payment_date) AS month, SUM(amount), COUNT(*)
			  FROM payments
			  WHERE payment_method = 'card' AND status = 'completed' AND payment_date >= $1
			  GROUP BY month
			  ORDER BY month`, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	st.Monthly = make([]models.TopUpMonth, 0)
	for rows.Next() {
		var m models.TopUpMonth
		if err := rows.Scan(&m.Month, &m.Total, &m.Count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		st.Monthly = append(st.Monthly, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &st, nil
}

