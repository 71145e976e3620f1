package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Timestamps are stored as unix milliseconds throughout so the schema works
// identically on both drivers.

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at BIGINT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token VARCHAR(64) PRIMARY KEY,
		user_id BIGINT NOT NULL,
		expires_at BIGINT NOT NULL DEFAULT 0,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS notes (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		title VARCHAR(512) NOT NULL,
		text TEXT NOT NULL,
		created BIGINT NOT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		is_archived TINYINT(1) NOT NULL DEFAULT 0,
		KEY idx_notes_owner_created (user_id, created),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		text TEXT NOT NULL,
		created INTEGER NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		is_archived INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_notes_owner_created ON notes (user_id, created);`,
}

// Connect opens the database for the given driver ("mysql" or "sqlite"),
// verifies connectivity and applies the schema idempotently.
func Connect(driver, dsn string) (*sql.DB, error) {
	var schema []string

	switch driver {
	case "mysql":
		schema = mysqlSchema
	case "sqlite":
		schema = sqliteSchema
		if !strings.HasPrefix(dsn, "file:") && filepath.Dir(dsn) != "." {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", driver, err)
	}

	if driver == "sqlite" {
		// modernc sqlite handles one writer at a time
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		if _, err := conn.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
			conn.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s db: %w", driver, err)
	}

	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return conn, nil
}
