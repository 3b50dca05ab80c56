package migration

import (
	"context"
	"fmt"

	"github.com/northpalm/sales-ledger-api/internal/domain"
	"github.com/northpalm/sales-ledger-api/internal/usecases/authenticating"
	"github.com/northpalm/sales-ledger-api/pkg/log"
	"github.com/northpalm/sales-ledger-api/pkg/utils"
	"github.com/pkg/errors"
)

type StoreSeeder interface {
	EnsureStores(ctx context.Context, stores []domain.Store) (int, error)
}

type UserCreator interface {
	CreateUser(ctx context.Context, username, name, password string, role domain.Role) (*domain.User, error)
}

type SeedUser struct {
	Username string
	Name     string
	Password string
	Role     domain.Role
}

type SeedResult struct {
	StoresCreated int
	UsersCreated  []SeedUser
	UsersSkipped  []string
}

// DefaultUsers devolve os usuários iniciais. Senha vazia é gerada aleatoriamente pelo Seed.
func DefaultUsers(adminPassword, staffPassword string) []SeedUser {
	return []SeedUser{
		{Username: "admin", Name: "관리자", Password: adminPassword, Role: domain.RoleAdmin},
		{Username: "staff1", Name: "직원1", Password: staffPassword, Role: domain.RoleStaff},
	}
}

// Seed carrega os pontos de venda padrão e cria os usuários que ainda não existem.
// Pode ser executado várias vezes.
func Seed(ctx context.Context, stores StoreSeeder, users UserCreator, seedUsers []SeedUser) (*SeedResult, error) {
	logger := log.ForContext(ctx)

	created, err := stores.EnsureStores(ctx, domain.DefaultStores)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar pontos de venda: %w", err)
	}
	logger.Infof("Pontos de venda carregados: %d novos de %d", created, len(domain.DefaultStores))

	result := &SeedResult{StoresCreated: created}

	for _, seedUser := range seedUsers {
		if seedUser.Password == "" {
			seedUser.Password, err = utils.GenerateID()
			if err != nil {
				return nil, fmt.Errorf("erro ao gerar senha de %s: %w", seedUser.Username, err)
			}
		}

		_, err := users.CreateUser(ctx, seedUser.Username, seedUser.Name, seedUser.Password, seedUser.Role)
		if errors.Is(err, authenticating.ErrUserAlreadyExists) {
			logger.Infof("Usuário %s já existe, mantendo", seedUser.Username)
			result.UsersSkipped = append(result.UsersSkipped, seedUser.Username)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao criar usuário %s: %w", seedUser.Username, err)
		}

		logger.Infof("Usuário %s criado com papel %s", seedUser.Username, seedUser.Role)
		result.UsersCreated = append(result.UsersCreated, seedUser)
	}

	return result, nil
}
