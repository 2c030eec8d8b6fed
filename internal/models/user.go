// Package models содержит доменные структуры магазина: пользователей, роли,
// каталог, подписки, заказы и платежи, а также входные DTO HTTP-запросов.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Названия системных ролей.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           int64           `json:"id"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Phone        string          `json:"phone,omitempty"`
	Balance      decimal.Decimal `json:"balance"`
	IsActive     bool            `json:"is_active"`
	IsVerified   bool            `json:"is_verified"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Principal описывает аутентифицированного пользователя текущего запроса.
// Роли резолвятся из хранилища на каждый запрос, в токене их нет.
type Principal struct {
	UserID int64
	Email  string
	Roles  []string

	// Клиентские данные запроса для журнала аудита.
	IPAddress string
	UserAgent string
}

// HasRole сообщает, есть ли у пользователя хотя бы одна из ролей.
func (p Principal) HasRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}

// IsAdmin сокращение для HasRole(RoleAdmin).
func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

// CanAccess разрешает доступ владельцу ресурса или администратору.
func (p Principal) CanAccess(ownerID int64) bool {
	return p.UserID == ownerID || p.IsAdmin()
}

// RegisterRequest тело запроса регистрации.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=128"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
}

// LoginRequest тело запроса входа.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Token ответ на успешный вход.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// UserRoles роли пользователя и производные флаги.
type UserRoles struct {
	UserID      int64    `json:"user_id"`
	Roles       []string `json:"roles"`
	IsAdmin     bool     `json:"is_admin"`
	IsModerator bool     `json:"is_moderator"`
}
