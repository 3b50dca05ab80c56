package repository

import (
	"context"
	"testing"

	"github.com/northpalm/sales-ledger-api/infrastructure/database"
	"github.com/northpalm/sales-ledger-api/internal/config"
	"github.com/northpalm/sales-ledger-api/internal/domain"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	conn   *database.Connection
	admin  *domain.User
	staff  *domain.User
	stores []*domain.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	conn, err := database.NewConnection(ctx, config.Database{
		Driver: config.DriverSQLite,
		DSN:    "file::memory:?_foreign_keys=on",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.Migrate(ctx))

	created, err := NewStoreRepository(conn).EnsureStores(ctx, domain.DefaultStores)
	require.NoError(t, err)
	require.Equal(t, len(domain.DefaultStores), created)

	users := NewUserRepository(conn)
	admin, err := users.CreateUser(ctx, &domain.User{Username: "admin", Name: "관리자", PasswordHash: "x", Role: domain.RoleAdmin})
	require.NoError(t, err)
	staff, err := users.CreateUser(ctx, &domain.User{Username: "staff1", Name: "직원1", PasswordHash: "x", Role: domain.RoleStaff})
	require.NoError(t, err)

	stores, err := NewStoreRepository(conn).ListActive(ctx)
	require.NoError(t, err)

	return &fixture{conn: conn, admin: admin, staff: staff, stores: stores}
}
