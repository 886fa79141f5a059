package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/timetable-solve-api/internal/models"
	"github.com/noah-isme/timetable-solve-api/pkg/config"
	appErrors "github.com/noah-isme/timetable-solve-api/pkg/errors"
)

type stubUserRepo struct {
	user *models.User
	err  error
}

func (s stubUserRepo) FindByEmail(context.Context, string) (*models.User, error) {
	return s.user, s.err
}

func newAuthFixture(t *testing.T, password string, active bool) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	repo := stubUserRepo{user: &models.User{ID: "u1", Email: "admin@example.com", PasswordHash: string(hash), Active: active}}
	return NewAuthService(repo, validator.New(), config.JWTConfig{Secret: "test-secret", Expiration: time.Hour}, zap.NewNop())
}

func TestAuthServiceLoginIssuesValidToken(t *testing.T) {
	svc := newAuthFixture(t, "s3cret", true)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "s3cret"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	assert.Empty(t, resp.User.PasswordHash, "hash must never leave the service")

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc := newAuthFixture(t, "s3cret", true)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	assert.Equal(t, appErrors.ErrInvalidCredentials, err)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	repo := stubUserRepo{err: sql.ErrNoRows}
	svc := NewAuthService(repo, validator.New(), config.JWTConfig{Secret: "x", Expiration: time.Hour}, zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "pw"})
	assert.Equal(t, appErrors.ErrInvalidCredentials, err)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	svc := newAuthFixture(t, "s3cret", false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "s3cret"})
	assert.Equal(t, appErrors.ErrInactiveAccount, err)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthFixture(t, "s3cret", true)

	_, err := svc.ValidateToken("not-a-token")
	assert.Equal(t, appErrors.ErrUnauthorized, err)
}
