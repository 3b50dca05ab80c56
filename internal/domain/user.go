package domain

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// ErrInsufficientRole indica que o usuário está autenticado mas não tem o papel exigido
var ErrInsufficientRole = errors.New("privilégios insuficientes")

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Actor é a identidade resolvida a partir do token de sessão
type Actor struct {
	UserID   int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// RequireRole é o guard consultado antes de cada mutação privilegiada
func RequireRole(actor Actor, allowed ...Role) error {
	for _, role := range allowed {
		if actor.Role == role {
			return nil
		}
	}
	return ErrInsufficientRole
}

type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Actor() Actor {
	return Actor{
		UserID:   c.UserID,
		Username: c.Username,
		Name:     c.Name,
		Role:     c.Role,
	}
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      Actor     `json:"user"`
}

// Session representa um token emitido e ainda não revogado
type Session struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
