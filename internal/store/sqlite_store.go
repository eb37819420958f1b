package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"hny-greeting-service/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens path with the pure Go driver. A single connection keeps
// ":memory:" databases shared and serializes writers.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS visitor_messages (
			id TEXT PRIMARY KEY,
			visitor_id TEXT NOT NULL,
			type TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS visitor_messages_created_at_idx ON visitor_messages(created_at DESC, id DESC)`,
		`CREATE TABLE IF NOT EXISTS visitor_visits (
			visitor_id TEXT PRIMARY KEY,
			visits INTEGER NOT NULL DEFAULT 0,
			last_seen INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS visitor_themes (
			visitor_id TEXT PRIMARY KEY,
			theme TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveMessage(ctx context.Context, visitorID string, sub models.Submission) (models.Message, error) {
	m := newMessage(visitorID, sub)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO visitor_messages (id, visitor_id, type, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.VisitorID, m.Type, m.Content, m.CreatedAt.UnixMilli(),
	); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

func (s *SQLiteStore) ListMessages(ctx context.Context, limit int) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, visitor_id, type, content, created_at
		 FROM visitor_messages
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		var ms int64
		if err := rows.Scan(&m.ID, &m.VisitorID, &m.Type, &m.Content, &ms); err != nil {
			return nil, err
		}
		m.CreatedAt = time.UnixMilli(ms).UTC()
		items = append(items, m)
	}
	return items, rows.Err()
}

func (s *SQLiteStore) IncrementVisits(ctx context.Context, visitorID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO visitor_visits (visitor_id, visits, last_seen) VALUES (?, 1, ?)
		 ON CONFLICT (visitor_id) DO UPDATE SET visits = visits + 1, last_seen = excluded.last_seen
		 RETURNING visits`,
		visitorID, time.Now().UnixMilli(),
	).Scan(&n)
	return n, err
}

func (s *SQLiteStore) GetTheme(ctx context.Context, visitorID string) (string, error) {
	var theme string
	err := s.db.QueryRowContext(ctx,
		`SELECT theme FROM visitor_themes WHERE visitor_id = ?`,
		visitorID,
	).Scan(&theme)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return theme, err
}

func (s *SQLiteStore) SetTheme(ctx context.Context, visitorID, theme string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visitor_themes (visitor_id, theme, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (visitor_id) DO UPDATE SET theme = excluded.theme, updated_at = excluded.updated_at`,
		visitorID, theme, time.Now().UnixMilli(),
	)
	return err
}
