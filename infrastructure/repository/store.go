package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/northpalm/sales-ledger-api/infrastructure/database"
	"github.com/northpalm/sales-ledger-api/internal/domain"
)

//go:generate mockgen -source=store.go -destination=mocks/store_mock.go -package=mocks

const storesTable = "stores"

type StoreRepository interface {
	ListActive(ctx context.Context) ([]*domain.Store, error)
	GetByID(ctx context.Context, id int) (*domain.Store, error)
	EnsureStores(ctx context.Context, stores []domain.Store) (int, error)
}

type storeRepository struct {
	conn *database.Connection
}

func NewStoreRepository(conn *database.Connection) StoreRepository {
	return &storeRepository{
		conn: conn,
	}
}

func (r *storeRepository) ListActive(ctx context.Context) ([]*domain.Store, error) {
	query, args, err := r.conn.Builder().
		Select("id", "code", "name", "display_order", "is_active").
		From(storesTable).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("display_order ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar pontos de venda: %w", err)
	}
	defer rows.Close()

	stores := make([]*domain.Store, 0)
	for rows.Next() {
		var store domain.Store
		if err := rows.Scan(&store.ID, &store.Code, &store.Name, &store.DisplayOrder, &store.IsActive); err != nil {
			return nil, fmt.Errorf("erro ao escanear ponto de venda: %w", err)
		}
		stores = append(stores, &store)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return stores, nil
}

func (r *storeRepository) GetByID(ctx context.Context, id int) (*domain.Store, error) {
	query, args, err := r.conn.Builder().
		Select("id", "code", "name", "display_order", "is_active").
		From(storesTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var store domain.Store
	err = r.conn.QueryRowContext(ctx, query, args...).
		Scan(&store.ID, &store.Code, &store.Name, &store.DisplayOrder, &store.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar ponto de venda %d: %w", id, err)
	}

	return &store, nil
}

// EnsureStores insere os pontos de venda cujo código ainda não existe e devolve quantos foram criados
func (r *storeRepository) EnsureStores(ctx context.Context, stores []domain.Store) (int, error) {
	if len(stores) == 0 {
		return 0, nil
	}

	created := 0
	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, store := range stores {
			query, args, err := r.conn.Builder().
				Insert(storesTable).
				Columns("code", "name", "display_order", "is_active").
				Values(store.Code, store.Name, store.DisplayOrder, store.IsActive).
				Suffix("ON CONFLICT (code) DO NOTHING").
				ToSql()
			if err != nil {
				return fmt.Errorf("erro ao construir a query: %w", err)
			}

			result, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return fmt.Errorf("erro ao inserir ponto de venda %s: %w", store.Code, err)
			}

			ok, err := affectedOne(result)
			if err != nil {
				return err
			}
			if ok {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}
