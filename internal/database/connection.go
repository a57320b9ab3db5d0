package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eventzone/booking-backend/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Postgres error codes the repositories translate for callers
const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

// Conn is a single checked-out connection. Both *sqlx.Conn and *sqlx.DB satisfy it.
type Conn interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// DB interface defines database operations
type DB interface {
	// WithConn acquires one pooled connection, runs fn on it and releases it on every path.
	WithConn(ctx context.Context, fn func(Conn) error) error
	PingContext(ctx context.Context) error
	Close() error
}

// PostgresDB implements the DB interface using sqlx
type PostgresDB struct {
	*sqlx.DB
	QueryTimeout time.Duration
}

// NewConnection creates a new database connection
func NewConnection(cfg config.DatabaseConfig) (*PostgresDB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sqlx.Connect("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxLifetime / 2)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{DB: db, QueryTimeout: cfg.QueryTimeout}, nil
}

// WithConn implements DB
func (db *PostgresDB) WithConn(ctx context.Context, fn func(Conn) error) error {
	if db.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, db.QueryTimeout)
		defer cancel()
	}

	conn, err := db.DB.Connx(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

// IsForeignKeyViolation reports whether err is a Postgres foreign key violation
func IsForeignKeyViolation(err error) bool {
	return hasPQCode(err, pqForeignKeyViolation)
}

// IsUniqueViolation reports whether err is a Postgres unique constraint violation
func IsUniqueViolation(err error) bool {
	return hasPQCode(err, pqUniqueViolation)
}

func hasPQCode(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}

// execAffected runs a single mutation on its own connection and reports the rows affected
func execAffected(ctx context.Context, db DB, op, query string, args ...interface{}) (int64, error) {
	var affected int64
	err := db.WithConn(ctx, func(conn Conn) error {
		result, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed %s: %w", op, err)
	}
	return affected, nil
}

// normalize trims identifiers before they reach a WHERE clause
func normalize(s string) string {
	return strings.TrimSpace(s)
}
