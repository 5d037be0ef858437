package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

func authFixture() (*fakeTeacherRepo, *fakeSessionRepo, *AuthService) {
	teachers := newFakeTeacherRepo()
	sessions := newFakeSessionRepo()
	svc := NewAuthService(teachers, sessions, validator.New(), zap.NewNop(), AuthConfig{
		Secret:     "test_secret",
		Expiration: time.Hour,
		Issuer:     "classtrack-test",
	})
	return teachers, sessions, svc
}

func TestRegisterAndLogin(t *testing.T) {
	teachers, sessions, svc := authFixture()

	res, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Tess",
		Email:    "Tess@School.test",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, models.RoleTeacher, res.Teacher.Role)
	assert.Equal(t, "tess@school.test", res.Teacher.Email)

	stored, err := teachers.FindByEmail(context.Background(), "tess@school.test")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)

	login, err := svc.Login(context.Background(), LoginRequest{Email: "tess@school.test", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)

	claims, err := svc.ValidateToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.AccountID)

	session, err := svc.ResolveSession(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, session.ActiveTeacherID)
	assert.Nil(t, session.PriorAdminID)
	assert.Len(t, sessions.items, 2)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, _, svc := authFixture()

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Tess", Email: "tess@school.test", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{Name: "Other", Email: "tess@school.test", Password: "secret456"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, _, svc := authFixture()
	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Tess", Email: "tess@school.test", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "tess@school.test", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@school.test", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	_, _, svc := authFixture()
	res, err := svc.Register(context.Background(), RegisterRequest{Name: "Tess", Email: "tess@school.test", Password: "secret123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims.SessionID))

	// The token still parses, but the session behind it is gone.
	_, err = svc.ResolveSession(context.Background(), claims)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsForgedSignature(t *testing.T) {
	_, _, svc := authFixture()
	res, err := svc.Register(context.Background(), RegisterRequest{Name: "Tess", Email: "tess@school.test", Password: "secret123"})
	require.NoError(t, err)

	other := NewAuthService(newFakeTeacherRepo(), newFakeSessionRepo(), validator.New(), zap.NewNop(), AuthConfig{
		Secret:     "different_secret",
		Expiration: time.Hour,
	})
	_, err = other.ValidateToken(res.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
