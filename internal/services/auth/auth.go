// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/neuro-store/internal/lib/apperr"
	"github.com/magabrotheeeer/neuro-store/internal/lib/jwt"
	"github.com/magabrotheeeer/neuro-store/internal/lib/password"
	"github.com/magabrotheeeer/neuro-store/internal/lib/sl"
	"github.com/magabrotheeeer/neuro-store/internal/models"
	"github.com/magabrotheeeer/neuro-store/internal/storage"
)

// Ошибки аутентификации.
var (
	ErrEmailTaken         = apperr.BusinessRule("Пользователь с таким email уже существует")
	ErrInvalidCredentials = apperr.Authentication("Неверный email или пароль")
	ErrInactiveUser       = apperr.BusinessRule("Пользователь неактивен")
	ErrInvalidToken       = apperr.Authentication("Недействительный или истекший токен аутентификации")
	ErrUserNotFound       = apperr.NotFound("Пользователь не найден")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и назначает ему роль roleName.
	CreateUser(ctx context.Context, user models.User, roleName string) (*models.User, error)

	// GetUserByEmail возвращает пользователя по email или storage.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID возвращает пользователя по ID или storage.ErrNotFound.
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// UserRoleNames возвращает имена активных ролей пользователя.
	UserRoleNames(ctx context.Context, userID int64) ([]string, error)
}

// AuthService отвечает за регистрацию, вход и проверку JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает нового пользователя с хэшированием пароля и ролью "user".
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	const op = "services.auth.Register"

	_, err := s.users.GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, models.User{
		Email:        req.Email,
		PasswordHash: hashed,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		IsActive:     true,
	}, models.RoleUser)
	if errors.Is(err, storage.ErrAlreadyExists) {
		return nil, ErrEmailTaken.Wrap(err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.Int64("user_id", user.ID))
	return user, nil
}

// Login проверяет пароль и выдает access-токен с идентификатором пользователя в sub.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.Token, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ok, err := password.Matches(user.PasswordHash, req.Password)
	if err != nil {
		s.log.Warn("stored password hash is malformed", slog.Int64("user_id", user.ID), sl.Err(err))
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	token, err := s.jwtMaker.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.jwtMaker.TTL().Seconds()),
	}, nil
}

// Authenticate проверяет токен, загружает активного пользователя и его роли.
// Роли каждый раз читаются из хранилища, поэтому отзыв роли действует сразу.
// Токен деактивированного пользователя считается недействительным.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Principal, error) {
	const op = "services.auth.Authenticate"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, ErrInvalidToken.Wrap(err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken.Wrap(err)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidToken.Wrap(err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}

	roles, err := s.users.UserRoleNames(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.Principal{UserID: user.ID, Email: user.Email, Roles: roles}, nil
}

// Me возвращает профиль текущего пользователя.
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	const op = "services.auth.Me"

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// MyRoles возвращает роли пользователя из уже разрешенного Principal.
func (s *AuthService) MyRoles(p models.Principal) models.UserRoles {
	roles := p.Roles
	if roles == nil {
		roles = []string{}
	}
	return models.UserRoles{
		UserID:      p.UserID,
		Roles:       roles,
		IsAdmin:     p.IsAdmin(),
		IsModerator: p.HasRole(models.RoleModerator),
	}
}
