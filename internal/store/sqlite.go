package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MalithGihan/mindmap-service/pkg/types"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	filename    TEXT NOT NULL,
	content     TEXT NOT NULL,
	uploaded_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS views (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	prompt     TEXT NOT NULL,
	map_data   TEXT NOT NULL,
	created_at INTEGER NOT NULL
);`

type Config struct {
	Path         string
	WALMode      bool
	BusyTimeout  time.Duration
	MaxOpenConns int
}

func DefaultConfig(path string) Config {
	if path == "" {
		path = "data/mindmap.db"
	}
	return Config{
		Path:         path,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 1, // single writer
	}
}

type SQLite struct {
	db *sql.DB
}

func OpenSQLite(cfg Config) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	pragmas := []string{fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds())}
	if cfg.WALMode {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	pragmas = append(pragmas, "PRAGMA synchronous = NORMAL")
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) AddDocument(ctx context.Context, d types.Document) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, filename, content, uploaded_at) VALUES (?, ?, ?, ?)`,
		d.ID, d.Filename, d.Content, d.UploadedAt.UnixNano())
	return err
}

func (s *SQLite) ListDocuments(ctx context.Context) ([]types.Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, filename, content, uploaded_at FROM documents ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Document
	for rows.Next() {
		var d types.Document
		var ts int64
		if err := rows.Scan(&d.ID, &d.Filename, &d.Content, &ts); err != nil {
			return nil, err
		}
		d.UploadedAt = time.Unix(0, ts)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLite) ClearDocuments(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents`)
	return err
}

func (s *SQLite) SaveView(ctx context.Context, v types.View) error {
	data, err := json.Marshal(v.MapData)
	if err != nil {
		return fmt.Errorf("encode map_data: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO views (id, name, prompt, map_data, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, prompt = excluded.prompt, map_data = excluded.map_data`,
		v.ID, v.Name, v.Prompt, string(data), v.CreatedAt.UnixNano())
	return err
}

func (s *SQLite) ListViews(ctx context.Context) ([]types.View, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, prompt, map_data, created_at FROM views ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.View
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLite) GetView(ctx context.Context, id string) (types.View, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, prompt, map_data, created_at FROM views WHERE id = ?`, id)
	v, err := scanView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.View{}, ErrNotFound
	}
	return v, err
}

func (s *SQLite) DeleteView(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM views WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanView(sc scanner) (types.View, error) {
	var v types.View
	var data string
	var ts int64
	if err := sc.Scan(&v.ID, &v.Name, &v.Prompt, &data, &ts); err != nil {
		return types.View{}, err
	}
	if err := json.Unmarshal([]byte(data), &v.MapData); err != nil {
		return types.View{}, fmt.Errorf("decode map_data for view %s: %w", v.ID, err)
	}
	v.CreatedAt = time.Unix(0, ts)
	return v, nil
}
