package authenticating

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/northpalm/sales-ledger-api/infrastructure/repository"
	"github.com/northpalm/sales-ledger-api/infrastructure/repository/mocks"
	"github.com/northpalm/sales-ledger-api/internal/config"
	"github.com/northpalm/sales-ledger-api/internal/domain"
	"github.com/northpalm/sales-ledger-api/pkg/apiErrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

var loginTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *mocks.MockUserRepository, *mocks.MockSessionRepository) {
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)
	sessionRepo := mocks.NewMockSessionRepository(ctrl)

	cfg := &config.Config{SecretKey: "test-secret", Auth: config.Auth{TokenTTL: 7 * 24 * time.Hour}}
	service := NewService(userRepo, sessionRepo, cfg)
	service.bcryptCost = bcrypt.MinCost
	service.now = func() time.Time { return loginTime }

	return service, userRepo, sessionRepo
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func requireAuthCode(t *testing.T, err error, code string) {
	t.Helper()
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr), "esperado *AuthError, recebido %v", err)
	assert.Equal(t, code, authErr.Code)
}

func TestService_LoginAndValidate(t *testing.T) {
	ctx := context.Background()
	service, userRepo, sessionRepo := newTestService(t)

	user := &domain.User{ID: 2, Username: "staff1", Name: "직원1", Role: domain.RoleStaff, PasswordHash: hash(t, "staff123")}
	userRepo.EXPECT().GetUserByUsername(ctx, "staff1").Return(user, nil)

	var stored domain.Session
	sessionRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, session domain.Session) error {
		stored = session
		return nil
	})

	result, err := service.Login(ctx, " staff1 ", "staff123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, loginTime.Add(7*24*time.Hour), result.ExpiresAt)
	assert.Equal(t, domain.Actor{UserID: 2, Username: "staff1", Name: "직원1", Role: domain.RoleStaff}, result.User)
	assert.Len(t, stored.ID, 21)
	assert.Equal(t, 2, stored.UserID)

	sessionRepo.EXPECT().Get(ctx, stored.ID).Return(&stored, nil)

	claims, err := service.ValidateToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.ID)
	assert.Equal(t, domain.RoleStaff, claims.Actor().Role)

	t.Run("sessão revogada", func(t *testing.T) {
		sessionRepo.EXPECT().Get(ctx, stored.ID).Return(nil, nil)

		_, err := service.ValidateToken(ctx, result.Token)
		requireAuthCode(t, err, apiErrors.ErrExpiredToken)
		assert.True(t, IsTokenError(err))
	})

	t.Run("token expirado", func(t *testing.T) {
		service.now = func() time.Time { return loginTime.Add(8 * 24 * time.Hour) }
		defer func() { service.now = func() time.Time { return loginTime } }()

		_, err := service.ValidateToken(ctx, result.Token)
		requireAuthCode(t, err, apiErrors.ErrExpiredToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("assinatura de outra chave", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, domain.Claims{
			UserID: 1,
			Role:   domain.RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        stored.ID,
				ExpiresAt: jwt.NewNumericDate(loginTime.Add(time.Hour)),
			},
		})
		signed, err := forged.SignedString([]byte("other-secret"))
		require.NoError(t, err)

		_, err = service.ValidateToken(ctx, signed)
		requireAuthCode(t, err, apiErrors.ErrInvalidToken)
	})

	t.Run("token malformado ou ausente", func(t *testing.T) {
		_, err := service.ValidateToken(ctx, "not-a-token")
		requireAuthCode(t, err, apiErrors.ErrInvalidToken)

		_, err = service.ValidateToken(ctx, "")
		requireAuthCode(t, err, apiErrors.ErrInvalidToken)
	})
}

func TestService_LoginFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("senha incorreta", func(t *testing.T) {
		service, userRepo, _ := newTestService(t)
		userRepo.EXPECT().GetUserByUsername(ctx, "admin").Return(&domain.User{ID: 1, PasswordHash: hash(t, "admin123")}, nil)

		_, err := service.Login(ctx, "admin", "wrong")
		requireAuthCode(t, err, apiErrors.ErrInvalidCredentials)
	})

	t.Run("usuário inexistente", func(t *testing.T) {
		service, userRepo, _ := newTestService(t)
		userRepo.EXPECT().GetUserByUsername(ctx, "ghost").Return(nil, nil)

		_, err := service.Login(ctx, "ghost", "whatever")
		requireAuthCode(t, err, apiErrors.ErrInvalidCredentials)
	})

	t.Run("campos vazios", func(t *testing.T) {
		service, _, _ := newTestService(t)

		_, err := service.Login(ctx, "", "")
		requireAuthCode(t, err, apiErrors.ErrMissingRequiredData)
	})
}

func TestService_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("altera com senha atual correta", func(t *testing.T) {
		service, userRepo, _ := newTestService(t)
		userRepo.EXPECT().GetUserByID(ctx, 1).Return(&domain.User{ID: 1, PasswordHash: hash(t, "admin123")}, nil)
		userRepo.EXPECT().UpdatePassword(ctx, 1, gomock.Any()).DoAndReturn(func(_ context.Context, _ int, h string) error {
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("nova")))
			return nil
		})

		require.NoError(t, service.ChangePassword(ctx, 1, "admin123", "nova"))
	})

	t.Run("senha atual incorreta", func(t *testing.T) {
		service, userRepo, _ := newTestService(t)
		userRepo.EXPECT().GetUserByID(ctx, 1).Return(&domain.User{ID: 1, PasswordHash: hash(t, "admin123")}, nil)

		err := service.ChangePassword(ctx, 1, "errada", "nova")
		requireAuthCode(t, err, apiErrors.ErrWrongPassword)
	})

	t.Run("nova senha curta", func(t *testing.T) {
		service, _, _ := newTestService(t)

		err := service.ChangePassword(ctx, 1, "admin123", "abc")
		requireAuthCode(t, err, apiErrors.ErrWeakPassword)
	})
}

func TestService_CreateUser(t *testing.T) {
	ctx := context.Background()
	service, userRepo, _ := newTestService(t)

	userRepo.EXPECT().CreateUser(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, user *domain.User) (*domain.User, error) {
		assert.Equal(t, "staff2", user.Username)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("staff123")))
		user.ID = 3
		return user, nil
	})

	user, err := service.CreateUser(ctx, "staff2", "직원2", "staff123", domain.RoleStaff)
	require.NoError(t, err)
	assert.Equal(t, 3, user.ID)
	assert.Empty(t, user.PasswordHash)

	_, err = service.CreateUser(ctx, "x", "x", "staff123", domain.Role("owner"))
	assert.ErrorIs(t, err, ErrInvalidRole)

	userRepo.EXPECT().CreateUser(ctx, gomock.Any()).Return(nil, repository.ErrDuplicateUsername)

	_, err = service.CreateUser(ctx, "staff1", "직원1", "staff123", domain.RoleStaff)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, apiErrors.ErrUserAlreadyExists, authErr.Code)
}

func TestService_CleanupSessions(t *testing.T) {
	ctx := context.Background()
	service, _, sessionRepo := newTestService(t)

	sessionRepo.EXPECT().DeleteExpired(ctx, loginTime).Return(int64(4), nil)

	removed, err := service.CleanupSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)
}
