package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const defaultDocument = "ledger"

// SQLite keeps the document as a single row, so a write is one statement.
type SQLite struct {
	db   *sql.DB
	name string
}

func NewSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), dirMode); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db, name: defaultDocument}, nil
}

func (s *SQLite) Read(ctx context.Context) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, s.name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return body, err
}

func (s *SQLite) Write(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		s.name,
		data,
		time.Now().UTC(),
	)
	return err
}

// Backup copies the current row under a timestamped name.
func (s *SQLite) Backup(ctx context.Context) (string, error) {
	target := fmt.Sprintf("%s.bak-%s", s.name, time.Now().Format("20060102T150405"))
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO documents (name, body, updated_at)
		 SELECT ?, body, ? FROM documents WHERE name = ?`,
		target,
		time.Now().UTC(),
		s.name,
	)
	return target, err
}

// Names lists every stored document, backups included.
func (s *SQLite) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM documents ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
