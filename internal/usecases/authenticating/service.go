package authenticating

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/northpalm/sales-ledger-api/infrastructure/repository"
	"github.com/northpalm/sales-ledger-api/internal/config"
	"github.com/northpalm/sales-ledger-api/internal/domain"
	"github.com/northpalm/sales-ledger-api/pkg/apiErrors"
	"github.com/northpalm/sales-ledger-api/pkg/log"
	"github.com/northpalm/sales-ledger-api/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 4

type Authenticator interface {
	Login(ctx context.Context, username, password string) (*domain.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetUserProfile(ctx context.Context, userID int) (*domain.User, error)
	ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error
	ValidateToken(ctx context.Context, tokenString string) (*domain.Claims, error)
	CreateUser(ctx context.Context, username, name, password string, role domain.Role) (*domain.User, error)
	CleanupSessions(ctx context.Context) (int64, error)
}

type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	secretKey   []byte
	tokenTTL    time.Duration
	bcryptCost  int
	now         func() time.Time
}

func NewService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, cfg *config.Config) *Service {
	ttl := cfg.Auth.TokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		secretKey:   []byte(cfg.SecretKey),
		tokenTTL:    ttl,
		bcryptCost:  bcrypt.DefaultCost,
		now:         time.Now,
	}
}

// Login valida as credenciais, registra a sessão e emite o token
func (s *Service) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Usuário e senha são obrigatórios")
	}

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao consultar usuário no banco de dados")
	}

	// mesma resposta para usuário inexistente e senha errada
	if user == nil {
		return nil, NewAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, "")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, NewUserAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, user.ID, "")
	}

	sessionID, err := utils.GenerateID()
	if err != nil {
		return nil, NewUserAuthError(err, apiErrors.ErrInternalServer, user.ID, "Erro ao gerar sessão")
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.tokenTTL)

	token, err := s.generateJWT(user, sessionID, issuedAt, expiresAt)
	if err != nil {
		return nil, NewUserAuthError(err, apiErrors.ErrInternalServer, user.ID, "Erro ao gerar token de autenticação")
	}

	if err := s.sessionRepo.Create(ctx, domain.Session{ID: sessionID, UserID: user.ID, ExpiresAt: expiresAt}); err != nil {
		return nil, NewUserAuthError(err, apiErrors.ErrDatabaseOperation, user.ID, "Erro ao registrar sessão")
	}

	log.ForContext(ctx).WithField("user_id", user.ID).Infof("Login de %s", user.Username)

	return &domain.LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User: domain.Actor{
			UserID:   user.ID,
			Username: user.Username,
			Name:     user.Name,
			Role:     user.Role,
		},
	}, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao encerrar sessão")
	}
	return nil
}

func (s *Service) GetUserProfile(ctx context.Context, userID int) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, NewUserAuthError(err, apiErrors.ErrDatabaseOperation, userID, "Erro ao buscar usuário")
	}
	if user == nil {
		return nil, NewUserAuthError(ErrUserNotFound, apiErrors.ErrUserNotFound, userID, "")
	}

	user.PasswordHash = ""
	return user, nil
}

// ChangePassword confere a senha atual antes de gravar o novo hash
func (s *Service) ChangePassword(ctx context.Context, userID int, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return NewUserAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, userID, "Senha atual e nova senha são obrigatórias")
	}

	if err := validatePassword(newPassword); err != nil {
		return NewUserAuthError(err, apiErrors.ErrWeakPassword, userID, "A nova senha deve ter pelo menos 4 caracteres")
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return NewUserAuthError(err, apiErrors.ErrDatabaseOperation, userID, "Erro ao buscar usuário")
	}
	if user == nil {
		return NewUserAuthError(ErrUserNotFound, apiErrors.ErrUserNotFound, userID, "")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return NewUserAuthError(ErrWrongPassword, apiErrors.ErrWrongPassword, userID, "")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return NewUserAuthError(err, apiErrors.ErrInternalServer, userID, "Erro ao gerar hash da senha")
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		return NewUserAuthError(err, apiErrors.ErrDatabaseOperation, userID, "Erro ao atualizar senha")
	}

	log.ForContext(ctx).WithField("user_id", userID).Info("Senha alterada")

	return nil
}

// CreateUser é usado pelo seed, pelo comando create-user e pela rota de administração
func (s *Service) CreateUser(ctx context.Context, username, name, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	name = strings.TrimSpace(name)
	if username == "" || name == "" || password == "" {
		return nil, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Usuário, nome e senha são obrigatórios")
	}

	if !role.Valid() {
		return nil, NewAuthError(ErrInvalidRole, apiErrors.ErrInvalidFormat, string(role))
	}

	if err := validatePassword(password); err != nil {
		return nil, NewAuthError(err, apiErrors.ErrWeakPassword, "A senha deve ter pelo menos 4 caracteres")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrInternalServer, "Erro ao gerar hash da senha")
	}

	user, err := s.userRepo.CreateUser(ctx, &domain.User{
		Username:     username,
		Name:         name,
		PasswordHash: string(hashedPassword),
		Role:         role,
	})
	if errors.Is(err, repository.ErrDuplicateUsername) {
		return nil, NewAuthError(ErrUserAlreadyExists, apiErrors.ErrUserAlreadyExists, username)
	}
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao criar usuário")
	}

	user.PasswordHash = ""
	return user, nil
}

// CleanupSessions apaga as sessões vencidas
func (s *Service) CleanupSessions(ctx context.Context) (int64, error) {
	removed, err := s.sessionRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao remover sessões expiradas")
	}
	return removed, nil
}

func (s *Service) generateJWT(user *domain.User, sessionID string, issuedAt, expiresAt time.Time) (string, error) {
	claims := domain.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken confere assinatura e validade do token e se a sessão ainda existe
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*domain.Claims, error) {
	if tokenString == "" {
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "Token de autenticação não informado")
	}

	claims := &domain.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewAuthError(ErrExpiredToken, apiErrors.ErrExpiredToken, "")
		}
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, err.Error())
	}

	if !token.Valid || claims.ID == "" {
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "")
	}

	session, err := s.sessionRepo.Get(ctx, claims.ID)
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "Erro ao consultar sessão")
	}
	if session == nil || session.UserID != claims.UserID || !session.ExpiresAt.After(s.now()) {
		return nil, NewUserAuthError(ErrSessionRevoked, apiErrors.ErrExpiredToken, claims.UserID, "")
	}

	return claims, nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
