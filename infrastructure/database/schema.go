package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/northpalm/sales-ledger-api/internal/config"
	"github.com/northpalm/sales-ledger-api/pkg/log"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(50) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name VARCHAR(100) NOT NULL,
		role VARCHAR(10) NOT NULL DEFAULT 'staff' CHECK (role IN ('admin', 'staff')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS stores (
		id SERIAL PRIMARY KEY,
		code VARCHAR(30) NOT NULL UNIQUE,
		name VARCHAR(100) NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id VARCHAR(64) PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS daily_sales (
		id BIGSERIAL PRIMARY KEY,
		sale_date DATE NOT NULL,
		store_id INTEGER NOT NULL REFERENCES stores(id),
		amount BIGINT NOT NULL CHECK (amount >= 0 AND amount < 100000000),
		memo TEXT NOT NULL DEFAULT '',
		weather VARCHAR(30),
		is_closed BOOLEAN NOT NULL DEFAULT FALSE,
		closed_at TIMESTAMPTZ,
		closed_by INTEGER REFERENCES users(id),
		created_by INTEGER NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT daily_sales_date_store_key UNIQUE (sale_date, store_id),
		CONSTRAINT daily_sales_closed_fields CHECK (
			(is_closed AND closed_at IS NOT NULL AND closed_by IS NOT NULL)
			OR (NOT is_closed AND closed_at IS NULL AND closed_by IS NULL)
		)
	)`,
	`CREATE TABLE IF NOT EXISTS closing_history (
		id BIGSERIAL PRIMARY KEY,
		sale_id BIGINT NOT NULL REFERENCES daily_sales(id) ON DELETE CASCADE,
		action VARCHAR(10) NOT NULL CHECK (action IN ('close', 'reopen')),
		performed_by INTEGER NOT NULL REFERENCES users(id),
		performed_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		reason TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_sales_date ON daily_sales(sale_date)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_sales_store ON daily_sales(store_id)`,
	`CREATE INDEX IF NOT EXISTS idx_closing_history_sale ON closing_history(sale_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'staff' CHECK (role IN ('admin', 'staff')),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS stores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS daily_sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sale_date DATE NOT NULL,
		store_id INTEGER NOT NULL REFERENCES stores(id),
		amount INTEGER NOT NULL CHECK (amount >= 0 AND amount < 100000000),
		memo TEXT NOT NULL DEFAULT '',
		weather TEXT,
		is_closed BOOLEAN NOT NULL DEFAULT 0,
		closed_at DATETIME,
		closed_by INTEGER REFERENCES users(id),
		created_by INTEGER NOT NULL REFERENCES users(id),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (sale_date, store_id),
		CHECK (
			(is_closed = 1 AND closed_at IS NOT NULL AND closed_by IS NOT NULL)
			OR (is_closed = 0 AND closed_at IS NULL AND closed_by IS NULL)
		)
	)`,
	`CREATE TABLE IF NOT EXISTS closing_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sale_id INTEGER NOT NULL REFERENCES daily_sales(id) ON DELETE CASCADE,
		action TEXT NOT NULL CHECK (action IN ('close', 'reopen')),
		performed_by INTEGER NOT NULL REFERENCES users(id),
		performed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		reason TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_sales_date ON daily_sales(sale_date)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_sales_store ON daily_sales(store_id)`,
	`CREATE INDEX IF NOT EXISTS idx_closing_history_sale ON closing_history(sale_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at)`,
}

// Migrate cria as tabelas que ainda não existem. É idempotente.
func (c *Connection) Migrate(ctx context.Context) error {
	var statements []string
	switch c.driver {
	case config.DriverPostgres:
		statements = postgresSchema
	case config.DriverSQLite:
		statements = sqliteSchema
	default:
		return fmt.Errorf("driver de banco de dados não suportado: %q", c.driver)
	}

	logger := log.ForContext(ctx)

	return c.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("erro ao aplicar schema: %w", err)
			}
		}
		logger.Infof("Schema aplicado com sucesso (%d comandos, driver %s)", len(statements), c.driver)
		return nil
	})
}
