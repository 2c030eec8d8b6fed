package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы подписки.
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

// Subscription подписка пользователя на продукт по тарифу.
// EndDate всегда равен StartDate + Plan.DurationDays.
type Subscription struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	ProductID    int64     `json:"product_id"`
	PlanID       int64     `json:"plan_id"`
	Status       string    `json:"status"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	AutoRenew    bool      `json:"auto_renew"`
	RequestsUsed int       `json:"requests_used"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SubscriptionStatus ответ на запрос статуса подписки.
type SubscriptionStatus struct {
	SubscriptionID int64     `json:"subscription_id"`
	Status         string    `json:"status"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	DaysLeft       int       `json:"days_left"`
	RequestsUsed   int       `json:"requests_used"`
	AutoRenew      bool      `json:"auto_renew"`
}

// PurchaseRequest тело запроса покупки подписки.
type PurchaseRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	PlanID    int64 `json:"plan_id" validate:"required,gt=0"`
}

// Settlement входные данные транзакции покупки.
type Settlement struct {
	UserID    int64
	ProductID int64
	PlanID    int64
	Price     decimal.Decimal
	Currency  string
	Duration  time.Duration
	Now       time.Time
}

// SettlementResult строки, созданные транзакцией покупки.
type SettlementResult struct {
	Subscription Subscription
	OrderID      int64
	PaymentID    int64
	BalanceAfter decimal.Decimal
}

// PurchaseEvent доменное событие успешной покупки.
type PurchaseEvent struct {
	SubscriptionID int64           `json:"subscription_id"`
	UserID         int64           `json:"user_id"`
	ProductID      int64           `json:"product_id"`
	PlanID         int64           `json:"plan_id"`
	OrderID        int64           `json:"order_id"`
	Amount         decimal.Decimal `json:"amount"`
	EndDate        time.Time       `json:"end_date"`
}
