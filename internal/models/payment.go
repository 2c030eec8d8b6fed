package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы заказа.
const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// Статусы и способы оплаты.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"

	PaymentMethodBalance = "balance"
	PaymentMethodCard    = "card"
)

// Order заказ. ProductID и PlanID пусты у заказов на пополнение баланса.
type Order struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	ProductID *int64          `json:"product_id,omitempty"`
	PlanID    *int64          `json:"plan_id,omitempty"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Payment платёж, связан с заказом один к одному.
type Payment struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"order_id"`
	UserID        int64           `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id,omitempty"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TopUpRequest тело запроса пополнения баланса картой.
type TopUpRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	CardNumber     string          `json:"card_number" validate:"required,numeric,min=16,max=19"`
	CardHolderName string          `json:"card_holder_name" validate:"required,max=100"`
	ExpiryMonth    int             `json:"expiry_month" validate:"required,gte=1,lte=12"`
	ExpiryYear     int             `json:"expiry_year" validate:"required,gte=2000,lte=2100"`
	CVV            string          `json:"cvv" validate:"required,numeric,min=3,max=4"`
}

// TopUp ожидающее подтверждения пополнение.
type TopUp struct {
	UserID        int64
	Amount        decimal.Decimal
	Currency      string
	TransactionID string
}

// TopUpResult ответ на создание пополнения.
type TopUpResult struct {
	PaymentID            int64           `json:"payment_id"`
	OrderID              int64           `json:"order_id"`
	Amount               decimal.Decimal `json:"amount"`
	Currency             string          `json:"currency"`
	Status               string          `json:"status"`
	VerificationRequired bool            `json:"verification_required"`
}

// VerifyPaymentRequest тело запроса подтверждения пополнения.
type VerifyPaymentRequest struct {
	PaymentID        int64  `json:"payment_id" validate:"required,gt=0"`
	VerificationCode string `json:"verification_code" validate:"required,min=4,max=6"`
}

// VerifyResult ответ на подтверждение пополнения.
type VerifyResult struct {
	PaymentID  int64           `json:"payment_id"`
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Status     string          `json:"status"`
}

// Balance текущий баланс пользователя.
type Balance struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// VerificationEvent событие с кодом подтверждения пополнения.
type VerificationEvent struct {
	PaymentID int64           `json:"payment_id"`
	UserID    int64           `json:"user_id"`
	Email     string          `json:"email"`
	Amount    decimal.Decimal `json:"amount"`
	Code      string          `json:"code"`
}

// TopUpMonth сумма пополнений за месяц.
type TopUpMonth struct {
	Month time.Time       `json:"month"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

// TopUpStatistics статистика пополнений.
type TopUpStatistics struct {
	Total   decimal.Decimal `json:"total"`
	Count   int64           `json:"count"`
	Monthly []TopUpMonth    `json:"monthly"`
}
