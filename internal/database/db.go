package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"todotracker/internal/config"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect names the SQL flavour behind a DB handle.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// DB is an open connection pool together with its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open opens and pings the database described by cfg.
func Open(ctx context.Context, cfg config.Database) (*DB, error) {
	dialect := Dialect(cfg.Driver)

	var dsn string
	switch dialect {
	case Postgres:
		dsn = cfg.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
				cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
		}
	case SQLite:
		dsn = sqliteDSN(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	sqlDB, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	if dialect == SQLite {
		// An in-memory database lives only as long as its single connection.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxIdleTime(0)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleMinutes) * time.Minute)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	if dialect == SQLite {
		if err := enforceForeignKeys(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	return &DB{DB: sqlDB, Dialect: dialect}, nil
}

// sqliteDSN turns on foreign key enforcement for every connection the
// driver opens, whatever DSN the operator configured.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

// enforceForeignKeys switches enforcement on for the pooled connection and
// confirms it took effect.
func enforceForeignKeys(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		return fmt.Errorf("enable sqlite foreign keys: %w", err)
	}
	var enabled int
	if err := db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&enabled); err != nil {
		return fmt.Errorf("check sqlite foreign keys: %w", err)
	}
	if enabled != 1 {
		return errors.New("sqlite foreign keys are disabled")
	}
	return nil
}

// OpenMemory opens an isolated in-memory sqlite database with foreign keys enforced.
func OpenMemory(ctx context.Context) (*DB, error) {
	return Open(ctx, config.Database{
		Driver: string(SQLite),
		DSN:    "file::memory:",
	})
}
