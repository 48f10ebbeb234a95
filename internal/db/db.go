// Package db persists neurons in a local SQLite database so imported and
// fetched reconstructions survive between runs.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	conn *sql.DB
	Path string
}

const schema = `
CREATE TABLE IF NOT EXISTS neurons (
	skeleton_id INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	swc_header  TEXT NOT NULL DEFAULT '',
	imported_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS nodes (
	skeleton_id INTEGER NOT NULL REFERENCES neurons(skeleton_id) ON DELETE CASCADE,
	treenode_id INTEGER NOT NULL,
	parent_id   INTEGER NOT NULL,
	label       INTEGER NOT NULL,
	x           REAL NOT NULL,
	y           REAL NOT NULL,
	z           REAL NOT NULL,
	radius      REAL NOT NULL,
	confidence  INTEGER NOT NULL,
	creator_id  INTEGER NOT NULL,
	PRIMARY KEY (skeleton_id, treenode_id)
);

CREATE TABLE IF NOT EXISTS connectors (
	skeleton_id  INTEGER NOT NULL REFERENCES neurons(skeleton_id) ON DELETE CASCADE,
	treenode_id  INTEGER NOT NULL,
	connector_id INTEGER NOT NULL,
	relation     INTEGER NOT NULL,
	x            REAL NOT NULL,
	y            REAL NOT NULL,
	z            REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	skeleton_id INTEGER NOT NULL REFERENCES neurons(skeleton_id) ON DELETE CASCADE,
	tag         TEXT NOT NULL,
	treenode_id INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_nodes_skeleton ON nodes(skeleton_id);
CREATE INDEX IF NOT EXISTS idx_connectors_skeleton ON connectors(skeleton_id);
CREATE INDEX IF NOT EXISTS idx_tags_skeleton ON tags(skeleton_id);
`

// OpenDB opens (creating if necessary) a SQLite database with WAL mode and
// foreign keys enabled, and bootstraps the schema.
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{conn: conn, Path: path}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries.
func (d *DB) Conn() *sql.DB {
	return d.conn
}
