package database

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tahcohcat/healplay/internal/logger"
)

type DB struct {
	*sqlx.DB
}

// NewDB opens the SQLite database at path and creates the schema.
func NewDB(path string) (*DB, error) {
	if path == "" {
		path = "healplay.db" // Default SQLite file
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}

	db, err := sqlx.Connect("sqlite3", path+sep+"_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// one writer at a time; also keeps :memory: databases on a single connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	dbWrapper := &DB{DB: db}

	if err := dbWrapper.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.New().Info(fmt.Sprintf("Database ready at %s", path))
	return dbWrapper, nil
}

// createTables creates the necessary database tables
func (db *DB) createTables() error {
	goodiesTable := `
	CREATE TABLE IF NOT EXISTS goodies (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		coins INTEGER NOT NULL CHECK (coins > 0),
		description TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL
	);`

	// goodie_id is not a foreign key: orders outlive catalog deletes
	ordersTable := `
	CREATE TABLE IF NOT EXISTS goodie_orders (
		id TEXT PRIMARY KEY,
		goodie_id TEXT NOT NULL,
		goodie_title TEXT NOT NULL,
		coins INTEGER NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('requested', 'delivered')),
		user_name TEXT NOT NULL DEFAULT '',
		user_email TEXT NOT NULL DEFAULT '',
		contact_number TEXT NOT NULL DEFAULT '',
		heal_coins_before INTEGER NOT NULL,
		heal_coins_after INTEGER NOT NULL,
		address_line1 TEXT NOT NULL DEFAULT '',
		address_line2 TEXT NOT NULL DEFAULT '',
		address_city TEXT NOT NULL DEFAULT '',
		address_state TEXT NOT NULL DEFAULT '',
		address_pincode TEXT NOT NULL DEFAULT '',
		address_instructions TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);`

	badgesTable := `
	CREATE TABLE IF NOT EXISTS badges (
		name TEXT PRIMARY KEY,
		icon TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		game_id TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);`

	parentBadgesTable := `
	CREATE TABLE IF NOT EXISTS parent_badges (
		parent_id TEXT NOT NULL,
		badge_name TEXT NOT NULL,
		earned_at DATETIME NOT NULL,
		PRIMARY KEY (parent_id, badge_name),
		FOREIGN KEY (badge_name) REFERENCES badges(name) ON DELETE CASCADE
	);`

	resultsTable := `
	CREATE TABLE IF NOT EXISTS game_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id TEXT NOT NULL,
		game_id TEXT NOT NULL,
		session_id TEXT UNIQUE NOT NULL,
		score INTEGER NOT NULL,
		max_score INTEGER NOT NULL,
		percentage INTEGER NOT NULL,
		level TEXT NOT NULL DEFAULT '',
		graded BOOLEAN NOT NULL,
		passed BOOLEAN NOT NULL,
		completed_at DATETIME NOT NULL
	);`

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON goodie_orders(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_goodies_created_at ON goodies(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_results_parent ON game_results(parent_id, game_id);`,
	}

	for _, query := range []string{goodiesTable, ordersTable, badgesTable, parentBadgesTable, resultsTable} {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, index := range indexes {
		if _, err := db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
