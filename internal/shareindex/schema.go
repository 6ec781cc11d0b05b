// Package shareindex maintains a term-inverted index of shared files
// over SQLite, answering conjunctive multi-term searches and lazily
// populating per-file audio metadata.
package shareindex

import "database/sql"

const schema = `
CREATE TABLE IF NOT EXISTS root_folders (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	path          TEXT NOT NULL UNIQUE,
	alias         TEXT NOT NULL UNIQUE,
	is_buddy_only INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS folders (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	root_id       INTEGER NOT NULL REFERENCES root_folders(id) ON DELETE CASCADE,
	alias         TEXT NOT NULL UNIQUE,
	is_buddy_only INTEGER NOT NULL DEFAULT 0,
	indexed_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	folder_id  INTEGER NOT NULL REFERENCES folders(id) ON DELETE CASCADE,
	filename   TEXT NOT NULL,
	indexed_at INTEGER NOT NULL,
	UNIQUE(folder_id, filename)
);

CREATE TABLE IF NOT EXISTS file_metadata (
	file_id     INTEGER PRIMARY KEY REFERENCES files(id) ON DELETE CASCADE,
	filesize    INTEGER NOT NULL,
	bitrate     INTEGER NOT NULL DEFAULT 0,
	duration    INTEGER NOT NULL DEFAULT 0,
	vbr         INTEGER NOT NULL DEFAULT 0,
	sample_rate INTEGER NOT NULL DEFAULT 0,
	bit_depth   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS terms (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	term TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS file_terms (
	file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
	term_id INTEGER NOT NULL REFERENCES terms(id) ON DELETE CASCADE,
	PRIMARY KEY (file_id, term_id)
);

CREATE INDEX IF NOT EXISTS idx_file_terms_term ON file_terms(term_id);
CREATE INDEX IF NOT EXISTS idx_files_folder ON files(folder_id);
`

func migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
