package database

import (
	"context"
	"fmt"
)

// CreateTables creates all required tables in the database
func CreateTables(ctx context.Context, db *DB) error {
	var statements []string
	switch db.Dialect {
	case Postgres:
		statements = postgresSchema
	case SQLite:
		statements = sqliteSchema
	default:
		return fmt.Errorf("no schema for dialect %q", db.Dialect)
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// "user" is reserved in postgres and must stay quoted in every query.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS "user" (
		id SERIAL PRIMARY KEY,
		username VARCHAR(120) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS todo_item (
		id SERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		done BOOLEAN NOT NULL DEFAULT FALSE,
		user_id INTEGER NOT NULL REFERENCES "user"(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS todo_item_user_created_idx ON todo_item(user_id, created_at DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS comment (
		id SERIAL PRIMARY KEY,
		message VARCHAR(500) NOT NULL,
		todo_id INTEGER NOT NULL REFERENCES todo_item(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS comment_todo_idx ON comment(todo_id, created_at, id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS "user" (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username VARCHAR(120) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS todo_item (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title VARCHAR(255) NOT NULL,
		done BOOLEAN NOT NULL DEFAULT FALSE,
		user_id INTEGER NOT NULL REFERENCES "user"(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS todo_item_user_created_idx ON todo_item(user_id, created_at DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS comment (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message VARCHAR(500) NOT NULL,
		todo_id INTEGER NOT NULL REFERENCES todo_item(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS comment_todo_idx ON comment(todo_id, created_at, id)`,
}
