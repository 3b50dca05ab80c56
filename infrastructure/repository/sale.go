// Package repository contém as implementações dos repositórios para acesso aos dados
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/northpalm/sales-ledger-api/infrastructure/database"
	"github.com/northpalm/sales-ledger-api/internal/domain"
)

//go:generate mockgen -source=sale.go -destination=mocks/sale_mock.go -package=mocks

const (
	salesTable          = "daily_sales"
	closingHistoryTable = "closing_history"
)

// ErrDuplicateSale é devolvido quando a constraint UNIQUE(sale_date, store_id) rejeita o insert
var ErrDuplicateSale = errors.New("já existe lançamento para esta data e ponto de venda")

type SaleRepository interface {
	Create(ctx context.Context, sale *domain.Sale) (*domain.Sale, error)
	GetByID(ctx context.Context, id int64) (*domain.Sale, error)
	FindByDateAndStore(ctx context.Context, saleDate time.Time, storeID int) (*domain.Sale, error)
	List(ctx context.Context, filter domain.SaleFilter) ([]*domain.Sale, error)
	UpdateOpen(ctx context.Context, id int64, req domain.UpdateSaleRequest) (bool, error)
	DeleteOpen(ctx context.Context, id int64) (bool, error)
	Close(ctx context.Context, entry domain.ClosingHistoryEntry) (bool, error)
	Reopen(ctx context.Context, entry domain.ClosingHistoryEntry) (bool, error)
	ListHistory(ctx context.Context, saleID int64) ([]*domain.ClosingHistoryEntry, error)
}

type saleRepository struct {
	conn *database.Connection
}

func NewSaleRepository(conn *database.Connection) SaleRepository {
	return &saleRepository{
		conn: conn,
	}
}

func (r *saleRepository) selectSales() squirrel.SelectBuilder {
	return r.conn.Builder().
		Select(
			"ds.id",
			"ds.sale_date",
			"ds.store_id",
			"ds.amount",
			"ds.memo",
			"ds.weather",
			"ds.is_closed",
			"ds.closed_at",
			"ds.closed_by",
			"ds.created_by",
			"ds.created_at",
			"ds.updated_at",
			"s.code",
			"s.name",
			"cu.name",
			"clu.name",
		).
		From(salesTable + " ds").
		Join("stores s ON s.id = ds.store_id").
		Join("users cu ON cu.id = ds.created_by").
		LeftJoin("users clu ON clu.id = ds.closed_by")
}

func (r *saleRepository) Create(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	var weather any
	if sale.Weather != nil {
		weather = string(*sale.Weather)
	}

	query, args, err := r.conn.Builder().
		Insert(salesTable).
		Columns("sale_date", "store_id", "amount", "memo", "weather", "is_closed", "created_by").
		Values(sale.SaleDateString(), sale.StoreID, sale.Amount, sale.Memo, weather, false, sale.CreatedBy).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var id int64
	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicateSale
		}
		return nil, fmt.Errorf("erro ao inserir lançamento: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *saleRepository) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	query, args, err := r.selectSales().
		Where(squirrel.Eq{"ds.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	sale, err := scanSale(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao buscar lançamento %d: %w", id, err)
	}

	return sale, nil
}

func (r *saleRepository) FindByDateAndStore(ctx context.Context, saleDate time.Time, storeID int) (*domain.Sale, error) {
	query, args, err := r.selectSales().
		Where(squirrel.Eq{
			"ds.sale_date": saleDate.Format(time.DateOnly),
			"ds.store_id":  storeID,
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	sale, err := scanSale(r.conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao buscar lançamento por data e ponto de venda: %w", err)
	}

	return sale, nil
}

func (r *saleRepository) List(ctx context.Context, filter domain.SaleFilter) ([]*domain.Sale, error) {
	queryBuilder := r.selectSales()

	if filter.StartDate != nil {
		queryBuilder = queryBuilder.Where(squirrel.GtOrEq{"ds.sale_date": filter.StartDate.Format(time.DateOnly)})
	}

	if filter.EndDate != nil {
		queryBuilder = queryBuilder.Where(squirrel.LtOrEq{"ds.sale_date": filter.EndDate.Format(time.DateOnly)})
	}

	if filter.StoreID != nil {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"ds.store_id": *filter.StoreID})
	}

	if filter.IsClosed != nil {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"ds.is_closed": *filter.IsClosed})
	}

	query, args, err := queryBuilder.
		OrderBy("ds.sale_date DESC", "s.display_order ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	sales := make([]*domain.Sale, 0)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("erro ao escanear lançamento: %w", err)
		}
		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return sales, nil
}

// UpdateOpen altera apenas lançamentos abertos. Devolve false quando nenhuma linha foi alterada.
func (r *saleRepository) UpdateOpen(ctx context.Context, id int64, req domain.UpdateSaleRequest) (bool, error) {
	queryBuilder := r.conn.Builder().
		Update(salesTable).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "is_closed": false})

	if req.Amount != nil {
		queryBuilder = queryBuilder.Set("amount", *req.Amount)
	}

	if req.Memo != nil {
		queryBuilder = queryBuilder.Set("memo", *req.Memo)
	}

	if req.Weather != nil {
		queryBuilder = queryBuilder.Set("weather", string(*req.Weather))
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return false, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("erro ao atualizar lançamento %d: %w", id, err)
	}

	return affectedOne(result)
}

// DeleteOpen remove o lançamento aberto e o seu histórico na mesma transação
func (r *saleRepository) DeleteOpen(ctx context.Context, id int64) (bool, error) {
	deleted := false

	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		historySQL, historyArgs, err := r.conn.Builder().
			Delete(closingHistoryTable).
			Where(squirrel.Eq{"sale_id": id}).
			Where("EXISTS (SELECT 1 FROM daily_sales WHERE id = ? AND is_closed = ?)", id, false).
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, historySQL, historyArgs...); err != nil {
			return fmt.Errorf("erro ao remover histórico do lançamento %d: %w", id, err)
		}

		saleSQL, saleArgs, err := r.conn.Builder().
			Delete(salesTable).
			Where(squirrel.Eq{"id": id, "is_closed": false}).
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query: %w", err)
		}

		result, err := tx.ExecContext(ctx, saleSQL, saleArgs...)
		if err != nil {
			return fmt.Errorf("erro ao remover lançamento %d: %w", id, err)
		}

		deleted, err = affectedOne(result)
		return err
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

// Close fecha o lançamento se ainda estiver aberto e registra a entrada no histórico
func (r *saleRepository) Close(ctx context.Context, entry domain.ClosingHistoryEntry) (bool, error) {
	return r.transition(ctx, entry, func(b squirrel.UpdateBuilder) squirrel.UpdateBuilder {
		return b.
			Set("is_closed", true).
			Set("closed_at", entry.PerformedAt.UTC()).
			Set("closed_by", entry.PerformedBy).
			Where(squirrel.Eq{"is_closed": false})
	})
}

// Reopen reabre o lançamento se estiver fechado e registra a entrada com o motivo
func (r *saleRepository) Reopen(ctx context.Context, entry domain.ClosingHistoryEntry) (bool, error) {
	return r.transition(ctx, entry, func(b squirrel.UpdateBuilder) squirrel.UpdateBuilder {
		return b.
			Set("is_closed", false).
			Set("closed_at", nil).
			Set("closed_by", nil).
			Where(squirrel.Eq{"is_closed": true})
	})
}

func (r *saleRepository) transition(
	ctx context.Context,
	entry domain.ClosingHistoryEntry,
	apply func(squirrel.UpdateBuilder) squirrel.UpdateBuilder,
) (bool, error) {
	applied := false

	var reason any
	if entry.Reason != nil {
		reason = *entry.Reason
	}

	err := r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		updateSQL, updateArgs, err := apply(
			r.conn.Builder().
				Update(salesTable).
				Set("updated_at", entry.PerformedAt.UTC()).
				Where(squirrel.Eq{"id": entry.SaleID}),
		).ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query: %w", err)
		}

		result, err := tx.ExecContext(ctx, updateSQL, updateArgs...)
		if err != nil {
			return fmt.Errorf("erro ao aplicar %s no lançamento %d: %w", entry.Action, entry.SaleID, err)
		}

		applied, err = affectedOne(result)
		if err != nil || !applied {
			return err
		}

		historySQL, historyArgs, err := r.conn.Builder().
			Insert(closingHistoryTable).
			Columns("sale_id", "action", "performed_by", "performed_at", "reason").
			Values(entry.SaleID, string(entry.Action), entry.PerformedBy, entry.PerformedAt.UTC(), reason).
			ToSql()
		if err != nil {
			return fmt.Errorf("erro ao construir a query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, historySQL, historyArgs...); err != nil {
			return fmt.Errorf("erro ao registrar histórico do lançamento %d: %w", entry.SaleID, err)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return applied, nil
}

func (r *saleRepository) ListHistory(ctx context.Context, saleID int64) ([]*domain.ClosingHistoryEntry, error) {
	query, args, err := r.conn.Builder().
		Select("ch.id", "ch.sale_id", "ch.action", "ch.performed_by", "u.name", "ch.performed_at", "ch.reason").
		From(closingHistoryTable + " ch").
		Join("users u ON u.id = ch.performed_by").
		Where(squirrel.Eq{"ch.sale_id": saleID}).
		OrderBy("ch.performed_at ASC", "ch.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.ClosingHistoryEntry, 0)
	for rows.Next() {
		var (
			entry  domain.ClosingHistoryEntry
			action string
			reason sql.NullString
		)

		if err := rows.Scan(
			&entry.ID,
			&entry.SaleID,
			&action,
			&entry.PerformedBy,
			&entry.PerformedByName,
			&entry.PerformedAt,
			&reason,
		); err != nil {
			return nil, fmt.Errorf("erro ao escanear histórico: %w", err)
		}

		entry.Action = domain.ClosingAction(action)
		if reason.Valid {
			entry.Reason = &reason.String
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (*domain.Sale, error) {
	var (
		sale         domain.Sale
		weather      sql.NullString
		closedAt     sql.NullTime
		closedBy     sql.NullInt64
		closedByName sql.NullString
	)

	if err := row.Scan(
		&sale.ID,
		&sale.SaleDate,
		&sale.StoreID,
		&sale.Amount,
		&sale.Memo,
		&weather,
		&sale.IsClosed,
		&closedAt,
		&closedBy,
		&sale.CreatedBy,
		&sale.CreatedAt,
		&sale.UpdatedAt,
		&sale.StoreCode,
		&sale.StoreName,
		&sale.CreatedByName,
		&closedByName,
	); err != nil {
		return nil, err
	}

	if weather.Valid {
		w := domain.Weather(weather.String)
		sale.Weather = &w
	}

	if closedAt.Valid {
		sale.ClosedAt = &closedAt.Time
	}

	if closedBy.Valid {
		by := int(closedBy.Int64)
		sale.ClosedBy = &by
	}

	if closedByName.Valid {
		sale.ClosedByName = &closedByName.String
	}

	return &sale, nil
}

func affectedOne(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("erro ao obter linhas afetadas: %w", err)
	}
	return n > 0, nil
}
