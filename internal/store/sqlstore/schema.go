package sqlstore

import (
	"database/sql"
	"fmt"
)

// The bootstrap is idempotent and unversioned: it only creates what is
// missing, so an existing database is served as found.
var schemas = map[dialect][]string{
	sqliteDialect: {
		`CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	is_admin INTEGER NOT NULL DEFAULT 0
)`,
		`CREATE TABLE IF NOT EXISTS skins (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	template_path TEXT
)`,
		`CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	subtitle TEXT DEFAULT '',
	content TEXT NOT NULL,
	content_html TEXT NOT NULL,
	skin_id INTEGER NOT NULL,
	publication_datetime TEXT,
	author TEXT DEFAULT '',
	author_description TEXT DEFAULT '',
	tags TEXT DEFAULT '[]',
	updated_at TEXT
)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_user_id ON articles(user_id)`,
	},
	postgresDialect: {
		`CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	username TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	is_admin INTEGER NOT NULL DEFAULT 0
)`,
		`CREATE TABLE IF NOT EXISTS skins (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	template_path TEXT
)`,
		`CREATE TABLE IF NOT EXISTS articles (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	title TEXT NOT NULL,
	subtitle TEXT DEFAULT '',
	content TEXT NOT NULL,
	content_html TEXT NOT NULL,
	skin_id BIGINT NOT NULL,
	publication_datetime TEXT,
	author TEXT DEFAULT '',
	author_description TEXT DEFAULT '',
	tags TEXT DEFAULT '[]',
	updated_at TEXT
)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_user_id ON articles(user_id)`,
	},
}

func applySchema(db *sql.DB, d dialect) error {
	for i, stmt := range schemas[d] {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement %d failed: %w", i+1, err)
		}
	}
	return nil
}
