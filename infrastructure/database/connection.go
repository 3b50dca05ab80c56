package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/northpalm/sales-ledger-api/internal/config"
)

type Connection struct {
	*sql.DB
	driver  string
	builder squirrel.StatementBuilderType
}

func NewConnection(
	ctx context.Context,
	cfg config.Database,
) (*Connection, error) {
	builder, err := statementBuilder(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	// sqlite só admite um escritor; uma única conexão também mantém vivo o banco ":memory:"
	if cfg.Driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Connection{DB: db, driver: cfg.Driver, builder: builder}, nil
}

func statementBuilder(driver string) (squirrel.StatementBuilderType, error) {
	switch driver {
	case config.DriverPostgres:
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar), nil
	case config.DriverSQLite:
		return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question), nil
	default:
		return squirrel.StatementBuilderType{}, fmt.Errorf("driver de banco de dados não suportado: %q", driver)
	}
}

func (c *Connection) Driver() string {
	return c.driver
}

// Builder devolve o statement builder do squirrel com o placeholder do driver
func (c *Connection) Builder() squirrel.StatementBuilderType {
	return c.builder
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// RunInTransaction run a query in the transaction
func (c *Connection) RunInTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err := recover(); err != nil {
			_ = tx.Rollback()
			panic(err)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}
