// Package services содержит управление ролями и их назначением пользователям.
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

// Ошибки ролей.
var (
	ErrRoleExists         = apperr.BusinessRule("Роль с таким именем уже существует")
	ErrRoleNotFound       = apperr.NotFound("Роль не найдена")
	ErrUserNotFound       = apperr.NotFound("Пользователь не найден")
	ErrRoleAssigned       = apperr.BusinessRule("Роль уже назначена этому пользователю")
	ErrAssignmentNotFound = apperr.NotFound("Назначение роли не найдено")
)

// RoleRepository определяет методы хранилища для работы с ролями.
type RoleRepository interface {
	ListActiveRoles(ctx context.Context) ([]models.Role, error)
	CreateRole(ctx context.Context, name, description string) (*models.Role, error)
	GetRoleByID(ctx context.Context, id int64) (*models.Role, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	AssignRole(ctx context.Context, userID, roleID int64) (*models.UserRole, error)
	RevokeRole(ctx context.Context, userID, roleID int64) (int64, error)
	UserRoles(ctx context.Context, userID int64) ([]models.Role, error)
}

// RoleService реализует управление ролями.
type RoleService struct {
	repo  RoleRepository
	audit audit.Writer
	log   *slog.Logger
}

// NewRoleService создает новый экземпляр RoleService.
func NewRoleService(repo RoleRepository, auditWriter audit.Writer, log *slog.Logger) *RoleService {
	return &RoleService{repo: repo, audit: auditWriter, log: log}
}

// List возвращает активные роли.
func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	const op = "services.roles.List"

	roles, err := s.repo.ListActiveRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if roles == nil {
		roles = []models.Role{}
	}
	return roles, nil
}

// Create добавляет роль. Имя роли уникально.
func (s *RoleService) Create(ctx context.Context, actor models.Principal, req models.RoleRequest) (*models.Role, error) {
	const op = "services.roles.Create"

	role, err := s.repo.CreateRole(ctx, req.Name, req.Description)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return nil, ErrRoleExists
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	audit.Write(ctx, s.audit, s.log, audit.Entry(actor, "roles", role.ID, audit.OpCreate, map[string]any{
		"name":        role.Name,
		"description": role.Description,
	}))
	return role, nil
}

// Assign назначает роль пользователю. Пользователь и роль должны существовать,
// повторное назначение запрещено.
func (s *RoleService) Assign(ctx context.Context, actor models.Principal, req models.RoleAssignment) (*models.UserRole, error) {
	const op = "services.roles.Assign"

	if err := s.ensureUser(ctx, req.UserID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetRoleByID(ctx, req.RoleID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ur, err := s.repo.AssignRole(ctx, req.UserID, req.RoleID)
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		return nil, ErrRoleAssigned
	case errors.Is(err, storage.ErrForeignKey):
		return nil, ErrUserNotFound.Wrap(err)
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("role assigned", slog.Int64("user_id", req.UserID), slog.Int64("role_id", req.RoleID))
	audit.Write(ctx, s.audit, s.log, audit.Entry(actor, "user_roles", ur.ID, audit.OpCreate, map[string]any{
		"user_id": req.UserID,
		"role_id": req.RoleID,
	}))
	return ur, nil
}

// Revoke отзывает роль у пользователя.
func (s *RoleService) Revoke(ctx context.Context, actor models.Principal, req models.RoleAssignment) error {
	const op = "services.roles.Revoke"

	assignmentID, err := s.repo.RevokeRole(ctx, req.UserID, req.RoleID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrAssignmentNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("role revoked", slog.Int64("user_id", req.UserID), slog.Int64("role_id", req.RoleID))
	audit.Write(ctx, s.audit, s.log, audit.Entry(actor, "user_roles", assignmentID, audit.OpDelete, map[string]any{
		"user_id": req.UserID,
		"role_id": req.RoleID,
	}))
	return nil
}

// UserRoles возвращает активные роли пользователя.
func (s *RoleService) UserRoles(ctx context.Context, userID int64) ([]models.Role, error) {
	const op = "services.roles.UserRoles"

	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	roles, err := s.repo.UserRoles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if roles == nil {
		roles = []models.Role{}
	}
	return roles, nil
}

func (s *RoleService) ensureUser(ctx context.Context, userID int64) error {
	const op = "services.roles.ensureUser"

	_, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
