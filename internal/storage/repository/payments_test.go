package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/neuro-store/internal/models"
	"github.com/magabrotheeeer/neuro-store/internal/storage"
)

func TestStorage_CreateTopUp(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Unix(1_700_000_000, 0).UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(int64(7), "500", "RUB").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectQuery("INSERT INTO payments").
		WithArgs(int64(21), int64(7), "500", "RUB", "TXN_21_1700000000").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_id", "user_id", "amount", "currency", "payment_method", "status",
			"transaction_id", "created_at", "updated_at",
		}).AddRow(int64(22), int64(21), int64(7), "500.00", "RUB", "card", "pending", "TXN_21_1700000000", now, now))
	mock.ExpectCommit()

	p, err := s.CreateTopUp(context.Background(), models.TopUp{
		UserID:   7,
		Amount:   decimal.NewFromInt(500),
		Currency: "RUB",
	}, now)
	require.NoError(t, err)

	assert.Equal(t, int64(22), p.ID)
	assert.Equal(t, models.PaymentPending, p.Status)
	assert.Equal(t, models.PaymentMethodCard, p.PaymentMethod)
	assert.Equal(t, "TXN_21_1700000000", p.TransactionID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_CreateTopUp_NumericOverflowRollsBack(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.NumericValueOutOfRange, Message: "numeric field overflow"})
	mock.ExpectRollback()

	p, err := s.CreateTopUp(context.Background(), models.TopUp{
		UserID:   7,
		Amount:   decimal.RequireFromString("1e11"),
		Currency: "RUB",
	}, time.Now())

	assert.ErrorIs(t, err, storage.ErrOutOfRange)
	assert.Nil(t, p)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_CompleteTopUp(t *testing.T) {
	now := time.Now()

	t.Run("credits balance once", func(t *testing.T) {
		s, mock := newMockStorage(t)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE payments").
			WithArgs(int64(22), int64(7), now).
			WillReturnRows(sqlmock.NewRows([]string{"order_id", "amount"}).AddRow(int64(21), "500.00"))
		mock.ExpectExec("UPDATE orders SET status = 'completed'").
			WithArgs(int64(21)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("UPDATE users SET balance = balance \\+ \\$2").
			WithArgs(int64(7), "500").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("1500.00"))
		mock.ExpectCommit()

		res, err := s.CompleteTopUp(context.Background(), 22, 7, now)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(500).Equal(res.Amount))
		assert.True(t, decimal.NewFromInt(1500).Equal(res.NewBalance))
		assert.Equal(t, models.PaymentCompleted, res.Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already completed payment is not found", func(t *testing.T) {
		s, mock := newMockStorage(t)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE payments").
			WillReturnRows(sqlmock.NewRows([]string{"order_id", "amount"}))
		mock.ExpectRollback()

		res, err := s.CompleteTopUp(context.Background(), 22, 7, now)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
