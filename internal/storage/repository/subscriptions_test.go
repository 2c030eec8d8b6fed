package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/neuro-store/internal/models"
	"github.com/magabrotheeeer/neuro-store/internal/storage"
)

func TestStorage_CancelSubscription(t *testing.T) {
	now := time.Now()

	t.Run("active becomes cancelled", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery("UPDATE subscriptions").
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows(subscriptionRowColumns).
				AddRow(int64(4), int64(1), int64(2), int64(3), "cancelled", now, now.Add(time.Hour), false, 0, now, now))

		sub, err := s.CancelSubscription(context.Background(), 4)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionCancelled, sub.Status)
		assert.False(t, sub.AutoRenew)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non active is rejected", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery("UPDATE subscriptions").
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows(subscriptionRowColumns))

		_, err := s.CancelSubscription(context.Background(), 4)
		assert.ErrorIs(t, err, storage.ErrStateChanged)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStorage_RecordUsage_QuotaReached(t *testing.T) {
	s, mock := newMockStorage(t)
	limit := 100

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE subscriptions").
		WithArgs(int64(4), int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"requests_used"}))
	mock.ExpectRollback()

	_, _, err := s.RecordUsage(context.Background(), models.UsageEvent{SubscriptionID: 4}, &limit)
	assert.ErrorIs(t, err, storage.ErrStateChanged)
	require.NoError(t, mock.ExpectationsWereMet())
}
