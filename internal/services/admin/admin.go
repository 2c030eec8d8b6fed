// Package services содержит административные операции над пользователями и сводную статистику.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/neuro-store/internal/lib/apperr"
	"github.com/magabrotheeeer/neuro-store/internal/lib/audit"
	"github.com/magabrotheeeer/neuro-store/internal/models"
	"github.com/magabrotheeeer/neuro-store/internal/storage"
)

// Ошибки администрирования.
var (
	ErrUserNotFound   = apperr.NotFound("Пользователь не найден")
	ErrSelfDeactivate = apperr.BusinessRule("Нельзя деактивировать самого себя")
)

const maxPageLimit = 1000

// AdminRepository определяет методы хранилища для администрирования.
type AdminRepository interface {
	ListUsers(ctx context.Context, skip, limit int) ([]models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	SetUserActive(ctx context.Context, id int64, active bool) (*models.User, error)
	Statistics(ctx context.Context) (*models.Statistics, error)
}

// AdminService реализует административные операции.
type AdminService struct {
	repo  AdminRepository
	audit audit.Writer
	log   *slog.Logger
}

// NewAdminService создает новый экземпляр AdminService.
func NewAdminService(repo AdminRepository, auditWriter audit.Writer, log *slog.Logger) *AdminService {
	return &AdminService{repo: repo, audit: auditWriter, log: log}
}

// ListUsers возвращает страницу пользователей.
func (s *AdminService) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	const op = "services.admin.ListUsers"

	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxPageLimit {
		limit = 100
	}
	users, err := s.repo.ListUsers(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// GetUser возвращает пользователя по ID.
func (s *AdminService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "services.admin.GetUser"

	u, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Activate включает пользователя.
func (s *AdminService) Activate(ctx context.Context, actor models.Principal, id int64) (*models.User, error) {
	return s.setActive(ctx, actor, id, true)
}

// Deactivate выключает пользователя. Деактивировать самого себя нельзя.
func (s *AdminService) Deactivate(ctx context.Context, actor models.Principal, id int64) (*models.User, error) {
	if actor.UserID == id {
		return nil, ErrSelfDeactivate
	}
	return s.setActive(ctx, actor, id, false)
}

func (s *AdminService) setActive(ctx context.Context, actor models.Principal, id int64, active bool) (*models.User, error) {
	const op = "services.admin.setActive"

	u, err := s.repo.SetUserActive(ctx, id, active)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user activity changed",
		slog.Int64("user_id", id),
		slog.Bool("is_active", active),
		slog.Int64("by", actor.UserID),
	)
	audit.Write(ctx, s.audit, s.log, audit.Entry(actor, "users", id, audit.OpUpdate, map[string]any{"is_active": active}))
	return u, nil
}

// Statistics возвращает счетчики пользователей, подписок и заказов.
func (s *AdminService) Statistics(ctx context.Context) (*models.Statistics, error) {
	const op = "services.admin.Statistics"

	st, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}
