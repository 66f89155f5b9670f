package database

import (
	"context"
	"fmt"
)

// Schema statements are written once in the shared subset of both dialects:
// SERIAL is a valid auto-increment column type in MySQL and PostgreSQL alike,
// and CURRENT_TIMESTAMP works as a default in both. Identifier quoting goes
// through the dialect adapter. The category foreign key is enforced by the
// application (existence check on create/update, delete blocked while
// referenced) because MySQL and PostgreSQL disagree on the column type a
// SERIAL key expands to.
var schema = []string{
	"CREATE TABLE IF NOT EXISTS `users` (" +
		"id SERIAL PRIMARY KEY, " +
		"username VARCHAR(50) NOT NULL UNIQUE, " +
		"email VARCHAR(100) NOT NULL UNIQUE, " +
		"password VARCHAR(255) NOT NULL, " +
		"first_name VARCHAR(50), " +
		"last_name VARCHAR(50), " +
		"role VARCHAR(10) NOT NULL DEFAULT 'user', " +
		"created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, " +
		"updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)",

	"CREATE TABLE IF NOT EXISTS `categories` (" +
		"id SERIAL PRIMARY KEY, " +
		"name VARCHAR(50) NOT NULL UNIQUE, " +
		"description VARCHAR(500), " +
		"created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)",

	"CREATE TABLE IF NOT EXISTS `products` (" +
		"id SERIAL PRIMARY KEY, " +
		"name VARCHAR(100) NOT NULL, " +
		"description VARCHAR(1000), " +
		"price DECIMAL(10,2) NOT NULL CHECK (price >= 0), " +
		"quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0), " +
		"category_id BIGINT, " +
		"image_url VARCHAR(255), " +
		"status VARCHAR(10) NOT NULL DEFAULT 'active', " +
		"created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, " +
		"updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)",
}

// Migrate creates the tables if they do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	db.log.Info("Database schema is up to date")
	return nil
}
