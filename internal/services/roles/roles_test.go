package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/neuro-store/internal/lib/audit"
	"github.com/magabrotheeeer/neuro-store/internal/models"
	"github.com/magabrotheeeer/neuro-store/internal/storage"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListActiveRoles(ctx context.Context) ([]models.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Role), args.Error(1)
}

func (m *RepoMock) CreateRole(ctx context.Context, name, description string) (*models.Role, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *RepoMock) GetRoleByID(ctx context.Context, id int64) (*models.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *RepoMock) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) AssignRole(ctx context.Context, userID, roleID int64) (*models.UserRole, error) {
	args := m.Called(ctx, userID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserRole), args.Error(1)
}

func (m *RepoMock) RevokeRole(ctx context.Context, userID, roleID int64) (int64, error) {
	args := m.Called(ctx, userID, roleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) UserRoles(ctx context.Context, userID int64) ([]models.Role, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Role), args.Error(1)
}

type AuditMock struct{ mock.Mock }

func (m *AuditMock) WriteAudit(ctx context.Context, e models.AuditEntry) error {
	return m.Called(ctx, e).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var admin = models.Principal{UserID: 1, Roles: []string{models.RoleAdmin}}

func TestCreate(t *testing.T) {
	t.Run("creates", func(t *testing.T) {
		repo, a := new(RepoMock), new(AuditMock)
		repo.On("CreateRole", mock.Anything, "support", "Поддержка").Return(&models.Role{ID: 4, Name: "support", IsActive: true}, nil)
		a.On("WriteAudit", mock.Anything, mock.MatchedBy(func(e models.AuditEntry) bool {
			return e.TableName == "roles" && e.RecordID == 4
		})).Return(nil)

		role, err := NewRoleService(repo, a, newNoopLogger()).Create(context.Background(), admin, models.RoleRequest{Name: "support", Description: "Поддержка"})

		require.NoError(t, err)
		assert.Equal(t, "support", role.Name)
		a.AssertExpectations(t)
	})

	t.Run("duplicate name", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreateRole", mock.Anything, "admin", "").Return(nil, storage.ErrAlreadyExists)

		_, err := NewRoleService(repo, new(AuditMock), newNoopLogger()).Create(context.Background(), admin, models.RoleRequest{Name: "admin"})

		assert.ErrorIs(t, err, ErrRoleExists)
	})
}

func TestAssign(t *testing.T) {
	req := models.RoleAssignment{UserID: 5, RoleID: 2}

	tests := []struct {
		name    string
		setup   func(r *RepoMock, a *AuditMock)
		wantErr error
	}{
		{
			name: "assigns",
			setup: func(r *RepoMock, a *AuditMock) {
				r.On("GetUserByID", mock.Anything, int64(5)).Return(&models.User{ID: 5}, nil)
				r.On("GetRoleByID", mock.Anything, int64(2)).Return(&models.Role{ID: 2}, nil)
				r.On("AssignRole", mock.Anything, int64(5), int64(2)).Return(&models.UserRole{ID: 9, UserID: 5, RoleID: 2}, nil)
				a.On("WriteAudit", mock.Anything, mock.Anything).Return(nil)
			},
		},
		{
			name: "unknown user",
			setup: func(r *RepoMock, _ *AuditMock) {
				r.On("GetUserByID", mock.Anything, int64(5)).Return(nil, storage.ErrNotFound)
			},
			wantErr: ErrUserNotFound,
		},
		{
			name: "unknown role",
			setup: func(r *RepoMock, _ *AuditMock) {
				r.On("GetUserByID", mock.Anything, int64(5)).Return(&models.User{ID: 5}, nil)
				r.On("GetRoleByID", mock.Anything, int64(2)).Return(nil, storage.ErrNotFound)
			},
			wantErr: ErrRoleNotFound,
		},
		{
			name: "already assigned",
			setup: func(r *RepoMock, _ *AuditMock) {
				r.On("GetUserByID", mock.Anything, int64(5)).Return(&models.User{ID: 5}, nil)
				r.On("GetRoleByID", mock.Anything, int64(2)).Return(&models.Role{ID: 2}, nil)
				r.On("AssignRole", mock.Anything, int64(5), int64(2)).Return(nil, storage.ErrAlreadyExists)
			},
			wantErr: ErrRoleAssigned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, a := new(RepoMock), new(AuditMock)
			tt.setup(repo, a)

			ur, err := NewRoleService(repo, a, newNoopLogger()).Assign(context.Background(), admin, req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				a.AssertNotCalled(t, "WriteAudit", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(9), ur.ID)
			a.AssertExpectations(t)
		})
	}
}

func TestRevoke(t *testing.T) {
	repo, a := new(RepoMock), new(AuditMock)
	repo.On("RevokeRole", mock.Anything, int64(5), int64(2)).Return(int64(17), nil).Once()
	repo.On("RevokeRole", mock.Anything, int64(5), int64(2)).Return(int64(0), storage.ErrNotFound).Once()
	a.On("WriteAudit", mock.Anything, mock.MatchedBy(func(e models.AuditEntry) bool {
		return e.TableName == "user_roles" && e.RecordID == 17 && e.Operation == audit.OpDelete &&
			e.NewValues["user_id"] == int64(5) && e.NewValues["role_id"] == int64(2)
	})).Return(nil).Once()
	svc := NewRoleService(repo, a, newNoopLogger())

	require.NoError(t, svc.Revoke(context.Background(), admin, models.RoleAssignment{UserID: 5, RoleID: 2}))

	err := svc.Revoke(context.Background(), admin, models.RoleAssignment{UserID: 5, RoleID: 2})
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
	a.AssertExpectations(t)
}

func TestUserRoles(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetUserByID", mock.Anything, int64(5)).Return(&models.User{ID: 5}, nil)
	repo.On("UserRoles", mock.Anything, int64(5)).Return([]models.Role{{ID: 3, Name: models.RoleUser}}, nil)

	roles, err := NewRoleService(repo, new(AuditMock), newNoopLogger()).UserRoles(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, models.RoleUser, roles[0].Name)

	missing := new(RepoMock)
	missing.On("GetUserByID", mock.Anything, int64(6)).Return(nil, storage.ErrNotFound)
	_, err = NewRoleService(missing, new(AuditMock), newNoopLogger()).UserRoles(context.Background(), 6)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestList(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListActiveRoles", mock.Anything).Return(nil, nil)

	roles, err := NewRoleService(repo, new(AuditMock), newNoopLogger()).List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, roles)
}
