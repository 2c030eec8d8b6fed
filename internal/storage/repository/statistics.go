package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/neuro-store/internal/models"
)

// Statistics собирает счётчики пользователей, подписок и заказов одним запросом.
func (s *Storage) Statistics(ctx context.Context) (*models.Statistics, error) {
	const op = "storage.Statistics"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var st models.Statistics
	err := s.DB.QueryRowContext(ctx, `SELECT
			  (SELECT COUNT(*) FROM users),
			  (SELECT COUNT(*) FROM users WHERE is_active),
			  (SELECT COUNT(*) FROM subscriptions),
			  (SELECT COUNT(*) FROM subscriptions WHERE status = 'active'),
			  (SELECT COUNT(*) FROM orders),
			  (SELECT COUNT(*) FROM orders WHERE status = 'completed'),
			  (SELECT COUNT(*) FROM orders WHERE status = 'pending')`).
		Scan(&st.Users.Total, &st.Users.Active,
			&st.Subscriptions.Total, &st.Subscriptions.Active,
			&st.Orders.Total, &st.Orders.Completed, &st.Orders.Pending)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	st.Users.Inactive = st.Users.Total - st.Users.Active
	st.Subscriptions.Inactive = st.Subscriptions.Total - st.Subscriptions.Active
	return &st, nil
}
