package shareindex

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

// RootFolder is one configured share root: a real on-disk path exposed
// under alias on the wire.
type RootFolder struct {
	Path        string
	Alias       string
	IsBuddyOnly bool
}

// Index is the SQLite-backed term-inverted index over the configured
// share roots.
type Index struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if necessary) the index database at path and
// runs its schema migration.
func Open(path string, log *slog.Logger) (*Index, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("shareindex: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite's single-writer model; avoid pool contention

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("shareindex: enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("shareindex: enable foreign keys: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("shareindex: migrate: %w", err)
	}

	if log == nil {
		log = slog.Default()
	}

	return &Index{db: db, log: log}, nil
}

func (idx *Index) Close() error {
	return idx.db.Close()
}

// upsertRootFolder registers or updates a configured share root.
func (idx *Index) upsertRootFolder(rf RootFolder) (int64, error) {
	res, err := idx.db.Exec(
		`INSERT INTO root_folders(path, alias, is_buddy_only) VALUES(?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET alias=excluded.alias, is_buddy_only=excluded.is_buddy_only`,
		rf.Path, rf.Alias, boolToInt(rf.IsBuddyOnly),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err == nil && id > 0 {
		return id, nil
	}

	var rootID int64
	err = idx.db.QueryRow(`SELECT id FROM root_folders WHERE path = ?`, rf.Path).Scan(&rootID)
	return rootID, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
