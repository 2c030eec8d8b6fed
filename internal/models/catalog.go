package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product продукт каталога (нейросетевой сервис).
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	APIEndpoint string    `json:"api_endpoint,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Plan тарифный план. MaxRequestsPerMonth == nil означает безлимит.
type Plan struct {
	ID                  int64           `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	Price               decimal.Decimal `json:"price"`
	DurationDays        int             `json:"duration_days"`
	MaxRequestsPerMonth *int            `json:"max_requests_per_month,omitempty"`
	Features            string          `json:"features,omitempty"`
	IsActive            bool            `json:"is_active"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ProductPlan связь продукта и тарифа.
type ProductPlan struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	PlanID      int64     `json:"plan_id"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProductFilter параметры выборки списка продуктов.
type ProductFilter struct {
	Category string
	Skip     int
	Limit    int
}

// ProductRequest тело запросов создания и обновления продукта.
type ProductRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"max=100"`
	APIEndpoint string `json:"api_endpoint" validate:"max=500"`
	IsActive    *bool  `json:"is_active"`
}

// PlanRequest тело запросов создания и обновления тарифа.
type PlanRequest struct {
	Name                string          `json:"name" validate:"required,min=1,max=255"`
	Description         string          `json:"description"`
	Price               decimal.Decimal `json:"price"`
	DurationDays        int             `json:"duration_days" validate:"required,gt=0,lte=3650"`
	MaxRequestsPerMonth *int            `json:"max_requests_per_month" validate:"omitempty,gt=0"`
	Features            string          `json:"features"`
	IsActive            *bool           `json:"is_active"`
}

// AttachPlanRequest тело запроса привязки тарифа к продукту.
type AttachPlanRequest struct {
	PlanID int64 `json:"plan_id" validate:"required,gt=0"`
}
