package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/universal-crud/backend-go/internal/config"
)

const maxOpenConns = 10

// DB wraps a bounded connection pool together with the active dialect.
// Every statement goes through Dialect.Adapt, so callers write their SQL
// once with `?` placeholders regardless of the configured database.
type DB struct {
	sql     *sql.DB
	dialect Dialect
	log     *logrus.Logger
}

// Result is the canonical outcome of a mutating statement.
type Result struct {
	RowsAffected int64
}

// Connect opens the pool for the configured database and verifies connectivity.
func Connect(cfg *config.Config, log *logrus.Logger) (*DB, error) {
	dialect, err := NewDialect(cfg.DBType)
	if err != nil {
		return nil, err
	}

	pool, err := sql.Open(dialect.DriverName(), dialect.DSN(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	pool.SetMaxOpenConns(maxOpenConns)
	pool.SetMaxIdleConns(maxOpenConns / 2)
	pool.SetConnMaxLifetime(30 * time.Minute)

	if err := pool.Ping(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Infof("Database connected (%s)", dialect.Name())
	return &DB{sql: pool, dialect: dialect, log: log}, nil
}

// Close releases the connection pool.
func (db *DB) Close() error {
	return db.sql.Close()
}

// Dialect returns the active dialect.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Ping verifies the database is still reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.sql.PingContext(ctx)
}

// Query runs an adapted query and returns the rows for typed scanning.
func (db *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := db.sql.QueryContext(ctx, db.dialect.Adapt(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rows, nil
}

// QueryRow runs an adapted query expected to return at most one row.
func (db *DB) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.sql.QueryRowContext(ctx, db.dialect.Adapt(query), args...)
}

// Exec runs an adapted mutating statement.
func (db *DB) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	res, err := db.sql.ExecContext(ctx, db.dialect.Adapt(query), args...)
	if err != nil {
		return Result{}, fmt.Errorf("exec failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Result{}, fmt.Errorf("rows affected: %w", err)
	}
	return Result{RowsAffected: affected}, nil
}

// Insert runs an INSERT and returns the new row id. PostgreSQL cannot report
// LastInsertId through database/sql, so the dialect appends a RETURNING clause
// and the id is scanned from the result instead.
func (db *DB) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	if clause := db.dialect.ReturningClause(); clause != "" {
		var id int64
		if err := db.sql.QueryRowContext(ctx, db.dialect.Adapt(query+clause), args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("insert failed: %w", err)
		}
		return id, nil
	}

	res, err := db.sql.ExecContext(ctx, db.dialect.Adapt(query), args...)
	if err != nil {
		return 0, fmt.Errorf("insert failed: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// IsDuplicate reports whether err is a unique constraint violation from either
// driver. The pre-insert uniqueness checks give friendly messages, but the
// UNIQUE constraints are what actually close the check-then-insert race.
func IsDuplicate(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}
