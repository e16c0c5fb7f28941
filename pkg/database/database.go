// Package database owns the PostgreSQL connection pool shared by every
// repository. Connections go through the pgx stdlib driver so sqlc-style
// query packages, goose and watermill-sql can all share one *sql.DB.
//
// Transactions can be carried in context: WithinTx stores the *sql.Tx and
// Conn(ctx) hands repositories either that transaction or the pool, so
// several repositories can take part in one unit of work without knowing
// about each other.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/ghuser/orderdesk/pkg/logger"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
	connectAttempts = 5
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Database wraps the shared *sql.DB pool.
type Database struct {
	db  *sql.DB
	log logger.Logger
}

// NewPool opens the pool and waits for PostgreSQL to answer a ping, retrying
// with exponential backoff so workers can start alongside the database container.
func NewPool(ctx context.Context, url string, log logger.Logger) (*Database, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), connectAttempts),
		ctx,
	)
	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	}
	notify := func(err error, next time.Duration) {
		log.WarnContext(ctx, "database not ready, retrying", "error", err, "next_attempt_in", next)
	}
	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	log.InfoContext(ctx, "database pool ready", "max_open_conns", maxOpenConns)
	return &Database{db: db, log: log}, nil
}

// New wraps an already opened *sql.DB. Used by tests and tooling.
func New(db *sql.DB, log logger.Logger) *Database {
	return &Database{db: db, log: log}
}

// DB returns the underlying pool.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Ping checks connectivity for the health endpoint.
func (d *Database) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}
	return nil
}

// Close closes the pool.
func (d *Database) Close() error {
	return d.db.Close()
}

type txKey struct{}

// TxFromContext returns the transaction opened by WithinTx, if any.
func TxFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// Conn returns the transaction carried by ctx or the pool.
func (d *Database) Conn(ctx context.Context) DBTX {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return d.db
}

// WithTx runs fn inside a transaction. When ctx already carries one, fn joins
// it and commit/rollback is left to the outer owner.
func (d *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if tx, ok := TxFromContext(ctx); ok {
		return fn(tx)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("database: begin: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			d.log.ErrorContext(ctx, "database: rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("database: commit: %w", err)
	}
	return nil
}

// WithinTx is WithTx for callers that only pass the context on to repositories.
func (d *Database) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.WithTx(ctx, func(tx *sql.Tx) error {
		if _, ok := TxFromContext(ctx); ok {
			return fn(ctx)
		}
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}
