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

//go:generate mockgen -source=session.go -destination=mocks/session_mock.go -package=mocks

const sessionsTable = "sessions"

type SessionRepository interface {
	Create(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type sessionRepository struct {
	conn *database.Connection
}

func NewSessionRepository(conn *database.Connection) SessionRepository {
	return &sessionRepository{
		conn: conn,
	}
}

func (r *sessionRepository) Create(ctx context.Context, session domain.Session) error {
	query, args, err := r.conn.Builder().
		Insert(sessionsTable).
		Columns("id", "user_id", "expires_at").
		Values(session.ID, session.UserID, session.ExpiresAt.UTC()).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao criar sessão: %w", err)
	}

	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	query, args, err := r.conn.Builder().
		Select("id", "user_id", "expires_at", "created_at").
		From(sessionsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var session domain.Session
	err = r.conn.QueryRowContext(ctx, query, args...).
		Scan(&session.ID, &session.UserID, &session.ExpiresAt, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar sessão: %w", err)
	}

	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.conn.Builder().
		Delete(sessionsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("erro ao remover sessão: %w", err)
	}

	return nil
}

// DeleteExpired remove as sessões vencidas e devolve quantas foram apagadas
func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := r.conn.Builder().
		Delete(sessionsTable).
		Where(squirrel.LtOrEq{"expires_at": now.UTC()}).
		ToSql()
	if err != nil {
		return 0, err
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao remover sessões expiradas: %w", err)
	}

	return result.RowsAffected()
}
