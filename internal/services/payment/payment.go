// Package services реализует пополнение баланса картой с подтверждением кодом,
// просмотр баланса и статистику пополнений.
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

// Ошибки платежей.
var (
	ErrInvalidAmount   = apperr.Validation("Ошибка валидации входных данных").WithDetails(map[string]any{"amount": "must be greater than 0, have at most 2 decimal places and not exceed 9999999999.99"})
	ErrCardExpired     = apperr.BusinessRule("Неверная дата истечения карты")
	ErrInvalidCode     = apperr.BusinessRule("Неверный код верификации")
	ErrPaymentNotFound = apperr.NotFound("Платеж не найден")
	ErrUserNotFound    = apperr.NotFound("Пользователь не найден")
)

const statisticsLookback = 12

// PaymentRepository определяет методы хранилища для пополнений.
type PaymentRepository interface {
	// CreateTopUp создает ожидающие подтверждения заказ и платеж.
	CreateTopUp(ctx context.Context, in models.TopUp, now time.Time) (*models.Payment, error)
	// CompleteTopUp подтверждает ожидающий платеж пользователя и зачисляет сумму на баланс.
	CompleteTopUp(ctx context.Context, paymentID, userID int64, now time.Time) (*models.VerifyResult, error)
	GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	TopUpStatistics(ctx context.Context, since time.Time) (*models.TopUpStatistics, error)
}

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any)
}

// Service управляет пополнением баланса.
type Service struct {
	repo             PaymentRepository
	events           EventPublisher
	verificationCode string
	currency         string
	log              *slog.Logger
	now              func() time.Time
}

// NewPaymentService создает новый экземпляр Service.
func NewPaymentService(repo PaymentRepository, events EventPublisher, verificationCode, currency string, log *slog.Logger) *Service {
	return &Service{
		repo:             repo,
		events:           events,
		verificationCode: verificationCode,
		currency:         currency,
		log:              log,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// TopUp создает ожидающее пополнение и отправляет код подтверждения событием payment.verification.
// Данные карты проверяются на формат и срок действия и нигде не сохраняются.
func (s *Service) TopUp(ctx context.Context, p models.Principal, req models.TopUpRequest) (*models.TopUpResult, error) {
	const op = "services.payment.TopUp"

	if !models.ValidAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}
	now := s.now()
	if cardExpired(req.ExpiryMonth, req.ExpiryYear, now) {
		return nil, ErrCardExpired
	}

	payment, err := s.repo.CreateTopUp(ctx, models.TopUp{
		UserID:   p.UserID,
		Amount:   req.Amount,
		Currency: s.currency,
	}, now)
	if errors.Is(err, storage.ErrForeignKey) {
		return nil, ErrUserNotFound
	}
	if errors.Is(err, storage.ErrOutOfRange) {
		return nil, ErrInvalidAmount.Wrap(err)
	}
	if err != nil {
		metrics.TopUpsTotal.WithLabelValues("created", metrics.ResultError).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.TopUpsTotal.WithLabelValues("created", metrics.ResultSuccess).Inc()

	s.log.Info("top-up created",
		slog.Int64("payment_id", payment.ID),
		slog.Int64("user_id", p.UserID),
		slog.String("transaction_id", payment.TransactionID),
	)
	s.events.Publish(ctx, rabbitmq.RoutingPaymentVerification, models.VerificationEvent{
		PaymentID: payment.ID,
		UserID:    p.UserID,
		Email:     p.Email,
		Amount:    payment.Amount,
		Code:      s.verificationCode,
	})

	return &models.TopUpResult{
		PaymentID:            payment.ID,
		OrderID:              payment.OrderID,
		Amount:               payment.Amount,
		Currency:             payment.Currency,
		Status:               payment.Status,
		VerificationRequired: true,
	}, nil
}

// Verify проверяет код и зачисляет сумму ожидающего платежа на баланс.
// Платеж подтверждается не более одного раза.
func (s *Service) Verify(ctx context.Context, p models.Principal, req models.VerifyPaymentRequest) (*models.VerifyResult, error) {
	const op = "services.payment.Verify"

	if req.VerificationCode != s.verificationCode {
		metrics.TopUpsTotal.WithLabelValues("verified", metrics.ResultRejected).Inc()
		return nil, ErrInvalidCode
	}

	res, err := s.repo.CompleteTopUp(ctx, req.PaymentID, p.UserID, s.now())
	if errors.Is(err, storage.ErrNotFound) {
		metrics.TopUpsTotal.WithLabelValues("verified", metrics.ResultRejected).Inc()
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		metrics.TopUpsTotal.WithLabelValues("verified", metrics.ResultError).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.TopUpsTotal.WithLabelValues("verified", metrics.ResultSuccess).Inc()

	s.log.Info("top-up verified",
		slog.Int64("payment_id", res.PaymentID),
		slog.Int64("user_id", p.UserID),
		slog.String("amount", res.Amount.StringFixed(2)),
	)
	s.events.Publish(ctx, rabbitmq.RoutingBalanceCredited, res)
	return res, nil
}

// Balance возвращает текущий баланс пользователя.
func (s *Service) Balance(ctx context.Context, p models.Principal) (*models.Balance, error) {
	const op = "services.payment.Balance"

	balance, err := s.repo.GetBalance(ctx, p.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.Balance{Balance: balance, Currency: s.currency}, nil
}

// TopUpStatistics возвращает сумму и количество подтвержденных пополнений
// за последние 12 месяцев с разбивкой по месяцам.
func (s *Service) TopUpStatistics(ctx context.Context) (*models.TopUpStatistics, error) {
	const op = "services.payment.TopUpStatistics"

	now := s.now()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -statisticsLookback+1, 0)
	st, err := s.repo.TopUpStatistics(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if st.Monthly == nil {
		st.Monthly = []models.TopUpMonth{}
	}
	return st, nil
}

// cardExpired сообщает, истек ли срок карты. Карта действует до конца месяца expiry.
func cardExpired(month, year int, now time.Time) bool {
	validUntil := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return !now.Before(validUntil)
}
