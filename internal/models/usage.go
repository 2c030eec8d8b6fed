package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageEvent запись об обращении к продукту в рамках подписки, только добавляется.
type UsageEvent struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	SubscriptionID int64           `json:"subscription_id"`
	ProductID      int64           `json:"product_id"`
	EventType      string          `json:"event_type"`
	RequestData    string          `json:"request_data,omitempty"`
	ResponseData   string          `json:"response_data,omitempty"`
	TokensUsed     int             `json:"tokens_used"`
	Cost           decimal.Decimal `json:"cost"`
	DurationMS     int             `json:"duration_ms"`
	Status         string          `json:"status"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// UsageRequest тело запроса регистрации использования.
type UsageRequest struct {
	EventType    string          `json:"event_type" validate:"required,max=50"`
	RequestData  string          `json:"request_data"`
	ResponseData string          `json:"response_data"`
	TokensUsed   int             `json:"tokens_used" validate:"gte=0"`
	Cost         decimal.Decimal `json:"cost"`
	DurationMS   int             `json:"duration_ms" validate:"gte=0"`
	Status       string          `json:"status" validate:"omitempty,oneof=success error"`
	ErrorMessage string          `json:"error_message"`
}

// AuditEntry запись журнала аудита.
type AuditEntry struct {
	ID        int64          `json:"id"`
	TableName string         `json:"table_name"`
	RecordID  int64          `json:"record_id"`
	Operation string         `json:"operation"`
	UserID    *int64         `json:"user_id,omitempty"`
	OldValues map[string]any `json:"old_values,omitempty"`
	NewValues map[string]any `json:"new_values,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Статистика для административной панели.
type (
	// CountStats счётчики активных и неактивных записей.
	CountStats struct {
		Total    int64 `json:"total"`
		Active   int64 `json:"active"`
		Inactive int64 `json:"inactive"`
	}

	// OrderStats счётчики заказов по статусам.
	OrderStats struct {
		Total     int64 `json:"total"`
		Completed int64 `json:"completed"`
		Pending   int64 `json:"pending"`
	}

	// Statistics сводная статистика системы.
	Statistics struct {
		Users         CountStats `json:"users"`
		Subscriptions CountStats `json:"subscriptions"`
		Orders        OrderStats `json:"orders"`
	}
)
