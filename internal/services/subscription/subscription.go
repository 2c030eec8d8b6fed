// Package services содержит бизнес-логику подписок: покупку с оплатой с баланса,
// отмену, ленивое истечение срока и учет использования.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/neuro-store/internal/lib/apperr"
	"github.com/magabrotheeeer/neuro-store/internal/lib/metrics"
	"github.com/magabrotheeeer/neuro-store/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/neuro-store/internal/models"
	"github.com/magabrotheeeer/neuro-store/internal/storage"
)

// Ошибки подписок.
var (
	ErrProductUnavailable  = apperr.NotFound("Продукт не найден или неактивен")
	ErrPlanUnavailable     = apperr.NotFound("Тарифный план не найден или неактивен")
	ErrInsufficientFunds   = apperr.BusinessRule("Недостаточно средств на балансе")
	ErrSubscriptionMissing = apperr.NotFound("Подписка не найдена")
	ErrAlreadyInactive     = apperr.BusinessRule("Подписка уже неактивна")
	ErrNotActive           = apperr.BusinessRule("Подписка неактивна")
	ErrQuotaExceeded       = apperr.BusinessRule("Исчерпан лимит запросов по тарифу")
	ErrForbidden           = apperr.Authorization("Недостаточно прав для доступа к этому ресурсу")
	ErrUserMissing         = apperr.NotFound("Пользователь не найден")
)

const day = 24 * time.Hour

// SubscriptionRepository определяет методы хранилища, нужные для работы с подписками.
type SubscriptionRepository interface {
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	GetPlan(ctx context.Context, id int64) (*models.Plan, error)

	// Settle списывает цену с баланса и создает заказ, платеж и подписку в одной транзакции.
	Settle(ctx context.Context, in models.Settlement) (*models.SettlementResult, error)

	ListSubscriptions(ctx context.Context, userID int64) ([]models.Subscription, error)
	GetSubscription(ctx context.Context, id int64) (*models.Subscription, error)
	CancelSubscription(ctx context.Context, id int64) (*models.Subscription, error)
	ExpireSubscription(ctx context.Context, id int64, now time.Time) (*models.Subscription, error)
	RecordUsage(ctx context.Context, e models.UsageEvent, maxRequests *int) (*models.UsageEvent, int, error)
}

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any)
}

// SubscriptionService реализует бизнес-логику подписок.
type SubscriptionService struct {
	repo     SubscriptionRepository
	events   EventPublisher
	currency string
	log      *slog.Logger
	now      func() time.Time
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, events EventPublisher, currency string, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		events:   events,
		currency: currency,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Purchase покупает подписку на продукт по тарифу, оплачивая ее с баланса пользователя.
// Списание, заказ, платеж и подписка создаются атомарно.
func (s *SubscriptionService) Purchase(ctx context.Context, p models.Principal, req models.PurchaseRequest) (*models.Subscription, error) {
	const op = "services.subscription.Purchase"

	product, err := s.repo.GetProduct(ctx, req.ProductID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err != nil || !product.IsActive {
		metrics.PurchasesTotal.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, ErrProductUnavailable
	}

	plan, err := s.repo.GetPlan(ctx, req.PlanID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err != nil || !plan.IsActive {
		metrics.PurchasesTotal.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, ErrPlanUnavailable
	}

	balance, err := s.repo.GetBalance(ctx, p.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserMissing
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if balance.LessThan(plan.Price) {
		metrics.PurchasesTotal.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, ErrInsufficientFunds
	}

	res, err := s.repo.Settle(ctx, models.Settlement{
		UserID:    p.UserID,
		ProductID: product.ID,
		PlanID:    plan.ID,
		Price:     plan.Price,
		Currency:  s.currency,
		Duration:  time.Duration(plan.DurationDays) * day,
		Now:       s.now(),
	})
	switch {
	case errors.Is(err, storage.ErrInsufficientFunds):
		metrics.PurchasesTotal.WithLabelValues(metrics.ResultRejected).Inc()
		return nil, ErrInsufficientFunds.Wrap(err)
	case errors.Is(err, storage.ErrNotFound):
		return nil, ErrUserMissing
	case err != nil:
		metrics.PurchasesTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.PurchasesTotal.WithLabelValues(metrics.ResultSuccess).Inc()

	s.log.Info("subscription purchased",
		slog.Int64("subscription_id", res.Subscription.ID),
		slog.Int64("user_id", p.UserID),
		slog.Int64("order_id", res.OrderID),
		slog.String("balance_after", res.BalanceAfter.StringFixed(2)),
	)
	s.events.Publish(ctx, rabbitmq.RoutingSubscriptionPurchased, models.PurchaseEvent{
		SubscriptionID: res.Subscription.ID,
		UserID:         p.UserID,
		ProductID:      product.ID,
		PlanID:         plan.ID,
		OrderID:        res.OrderID,
		Amount:         plan.Price,
		EndDate:        res.Subscription.EndDate,
	})
	return &res.Subscription, nil
}

// List возвращает подписки пользователя.
func (s *SubscriptionService) List(ctx context.Context, p models.Principal) ([]models.Subscription, error) {
	const op = "services.subscription.List"

	subs, err := s.repo.ListSubscriptions(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if subs == nil {
		subs = []models.Subscription{}
	}
	return subs, nil
}

// Get возвращает подписку владельцу или администратору.
func (s *SubscriptionService) Get(ctx context.Context, p models.Principal, id int64) (*models.Subscription, error) {
	const op = "services.subscription.Get"

	sub, err := s.repo.GetSubscription(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrSubscriptionMissing
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !p.CanAccess(sub.UserID) {
		return nil, ErrForbidden
	}
	return sub, nil
}

// Cancel отменяет активную подписку и выключает автопродление.
func (s *SubscriptionService) Cancel(ctx context.Context, p models.Principal, id int64) (*models.Subscription, error) {
	const op = "services.subscription.Cancel"

	sub, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubscriptionActive {
		return nil, ErrAlreadyInactive
	}

	cancelled, err := s.repo.CancelSubscription(ctx, id)
	if errors.Is(err, storage.ErrStateChanged) {
		return nil, ErrAlreadyInactive.Wrap(err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription cancelled", slog.Int64("subscription_id", id), slog.Int64("by", p.UserID))
	return cancelled, nil
}

// Status возвращает состояние подписки. Активная подписка с прошедшим end_date
// переводится в expired до формирования ответа.
func (s *SubscriptionService) Status(ctx context.Context, p models.Principal, id int64) (*models.SubscriptionStatus, error) {
	sub, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sub, err = s.expireIfDue(ctx, sub, now)
	if err != nil {
		return nil, err
	}

	st := &models.SubscriptionStatus{
		SubscriptionID: sub.ID,
		Status:         sub.Status,
		StartDate:      sub.StartDate,
		EndDate:        sub.EndDate,
		RequestsUsed:   sub.RequestsUsed,
		AutoRenew:      sub.AutoRenew,
	}
	if sub.Status == models.SubscriptionActive {
		st.DaysLeft = int(sub.EndDate.Sub(now) / day)
	}
	return st, nil
}

// RecordUsage фиксирует обращение к продукту по подписке и увеличивает счетчик запросов.
func (s *SubscriptionService) RecordUsage(ctx context.Context, p models.Principal, id int64, req models.UsageRequest) (*models.UsageEvent, error) {
	const op = "services.subscription.RecordUsage"

	sub, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if sub, err = s.expireIfDue(ctx, sub, s.now()); err != nil {
		return nil, err
	}
	if sub.Status != models.SubscriptionActive {
		return nil, ErrNotActive
	}

	plan, err := s.repo.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if plan.MaxRequestsPerMonth != nil && sub.RequestsUsed >= *plan.MaxRequestsPerMonth {
		return nil, ErrQuotaExceeded
	}

	status := req.Status
	if status == "" {
		status = "success"
	}
	event, used, err := s.repo.RecordUsage(ctx, models.UsageEvent{
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		ProductID:      sub.ProductID,
		EventType:      req.EventType,
		RequestData:    req.RequestData,
		ResponseData:   req.ResponseData,
		TokensUsed:     req.TokensUsed,
		Cost:           req.Cost,
		DurationMS:     req.DurationMS,
		Status:         status,
		ErrorMessage:   req.ErrorMessage,
	}, plan.MaxRequestsPerMonth)
	if errors.Is(err, storage.ErrStateChanged) {
		if plan.MaxRequestsPerMonth != nil {
			return nil, ErrQuotaExceeded.Wrap(err)
		}
		return nil, ErrNotActive.Wrap(err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug("usage recorded", slog.Int64("subscription_id", sub.ID), slog.Int("requests_used", used))
	return event, nil
}

// expireIfDue переводит подписку в expired, если срок вышел. Гонка с параллельным
// запросом разрешается перечитыванием записи.
func (s *SubscriptionService) expireIfDue(ctx context.Context, sub *models.Subscription, now time.Time) (*models.Subscription, error) {
	const op = "services.subscription.expireIfDue"

	if sub.Status != models.SubscriptionActive || !now.After(sub.EndDate) {
		return sub, nil
	}

	expired, err := s.repo.ExpireSubscription(ctx, sub.ID, now)
	if errors.Is(err, storage.ErrStateChanged) {
		expired, err = s.repo.GetSubscription(ctx, sub.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription expired", slog.Int64("subscription_id", sub.ID))
	return expired, nil
}
