// Package archive keeps parsed readings in a local SQLite database so
// repeated exports accumulate into one history. It is optional; the store is
// only opened when a database path is configured.
package archive

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"glucograph/internal/clarity"
)

const insertReadingSQL = `
INSERT INTO readings (ts, glucose_mg_dl) VALUES (?, ?)
ON CONFLICT(ts) DO UPDATE SET glucose_mg_dl = excluded.glucose_mg_dl
`

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the archive database at path and applies
// pending schema migrations.
func Open(path string) (*Store, error) {
	dsn, err := buildDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	// Single connection; this is a one-shot CLI, not a server.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InsertReadings upserts all readings in one transaction. Re-running on the
// same export is idempotent: duplicate timestamps overwrite in place.
func (s *Store) InsertReadings(readings []clarity.Reading) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(insertReadingSQL)
	if err != nil {
		rollback(tx)
		return fmt.Errorf("prepare insert: %w", err)
	}
	for _, r := range readings {
		ts := r.Time.UTC().Format(time.RFC3339Nano)
		if _, err := stmt.Exec(ts, r.MgDL); err != nil {
			rollback(tx)
			return fmt.Errorf("insert reading %s: %w", ts, err)
		}
	}
	if err := stmt.Close(); err != nil {
		rollback(tx)
		return fmt.Errorf("close insert stmt: %w", err)
	}
	return tx.Commit()
}

// CountReadings reports how many readings the archive holds in total.
func (s *Store) CountReadings() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM readings`).Scan(&n)
	return n, err
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		slog.Error("tx rollback", "error", err)
	}
}

func buildDSN(path string) (string, error) {
	// Ensure the directory exists for a file-backed db.
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	params := []string{
		"_foreign_keys=on",
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}

	// Don't double-wrap a caller-supplied "file:..." DSN.
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
