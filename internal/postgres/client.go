package postgres

import (
	"context"
	"database/sql"
	"time"

	// Postgres driver registration.
	_ "github.com/lib/pq"

	"github.com/nextstep/nextstep/internal/config"
	ierr "github.com/nextstep/nextstep/internal/errors"
	"github.com/nextstep/nextstep/internal/logger"
)

// IClient is the surface services depend on, so tests can substitute an
// in-memory implementation.
type IClient interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	LockSubscriber(ctx context.Context, subscriberID string) error
	Close() error
}

// Client wraps the sql.DB pool and carries transactions through contexts so
// repositories stay oblivious to transaction boundaries.
type Client struct {
	db  *sql.DB
	log *logger.Logger
}

type txKey struct{}

// NewClient opens the connection pool and verifies it with a ping.
func NewClient(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to open postgres connection").
			Mark(ierr.ErrDatabase)
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetimeMinute) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to postgres").
			Mark(ierr.ErrDatabase)
	}

	log.Infow("connected to postgres",
		"host", cfg.Postgres.Host,
		"database", cfg.Postgres.DBName,
	)
	return &Client{db: db, log: log}, nil
}

// TxFromContext returns the transaction stored in ctx, or nil.
func (c *Client) TxFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// Querier is the subset of sql.DB / sql.Tx the repositories need.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Querier returns the ambient transaction when one is in flight, otherwise
// the pool.
func (c *Client) Querier(ctx context.Context) Querier {
	if tx := c.TxFromContext(ctx); tx != nil {
		return tx
	}
	return c.db
}

// WithTx runs fn inside a transaction. Nested calls join the outer
// transaction instead of opening a second one.
func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx := c.TxFromContext(ctx); tx != nil {
		return fn(ctx)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to begin transaction").
			Mark(ierr.ErrDatabase)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			c.log.Errorw("transaction rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to commit transaction").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}
