package cache

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// MemoryPath keeps the cache in memory for the life of the process.
const MemoryPath = ":memory:"

// DB wraps the SQLite database used to cache posts and comment threads.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite cache database and runs migrations.
func Open(path string) (*DB, error) {
	if path == "" {
		path = MemoryPath
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection, so an in-memory database is shared by every query.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY,
			title TEXT,
			link TEXT,
			body TEXT,
			excerpt TEXT,
			author TEXT,
			published_unix INTEGER,
			fetched_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS comment_lists (
			item_id INTEGER PRIMARY KEY,
			fetched_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS comments (
			id INTEGER PRIMARY KEY,
			item_id INTEGER NOT NULL REFERENCES comment_lists(item_id) ON DELETE CASCADE,
			parent_id INTEGER NOT NULL DEFAULT 0,
			author TEXT,
			body TEXT,
			posted_unix INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_item ON comments(item_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("executing migration: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
