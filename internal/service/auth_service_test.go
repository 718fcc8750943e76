package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lavideas/kaizen-api/internal/models"
	appErrors "github.com/lavideas/kaizen-api/pkg/errors"
)

type stubAuthRepo struct {
	users   []models.User
	listErr error
}

func (s *stubAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuthRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.users, nil
}

func (s *stubAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (s *stubAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return nil
}

func (s *stubAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	return nil
}

func (s *stubAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	return nil
}

func (s *stubAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

func TestAuthServiceListUsers(t *testing.T) {
	repo := &stubAuthRepo{users: []models.User{
		{ID: "usr-1", Username: "ayse.demir", FullName: "Ayse Demir", PasswordHash: "secret", Role: models.RoleEmployee, Points: 120},
		{ID: "usr-2", Username: "seda.aksoy", FullName: "Seda Aksoy", PasswordHash: "secret", Role: models.RoleExecutive, Points: 5},
	}}
	svc := NewAuthService(repo, nil, zap.NewNop(), AuthConfig{})

	infos, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, "usr-1", infos[0].ID)
	require.Equal(t, models.RoleExecutive, infos[1].Role)
	require.Equal(t, 120, infos[0].Points)
}

func TestAuthServiceListUsersError(t *testing.T) {
	repo := &stubAuthRepo{listErr: errors.New("connection reset")}
	svc := NewAuthService(repo, nil, zap.NewNop(), AuthConfig{})

	_, err := svc.ListUsers(context.Background())
	requireServiceErr(t, err, appErrors.ErrInternal.Code)
}
