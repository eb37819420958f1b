package store

import (
	"context"
	"database/sql"
	"errors"

	"hny-greeting-service/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS visitor_messages (
			id TEXT PRIMARY KEY,
			visitor_id TEXT NOT NULL,
			type TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS visitor_messages_created_at_idx ON visitor_messages(created_at DESC, id DESC)`,
		`CREATE TABLE IF NOT EXISTS visitor_visits (
			visitor_id TEXT PRIMARY KEY,
			visits BIGINT NOT NULL DEFAULT 0,
			last_seen TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS visitor_themes (
			visitor_id TEXT PRIMARY KEY,
			theme TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) SaveMessage(ctx context.Context, visitorID string, sub models.Submission) (models.Message, error) {
	m := newMessage(visitorID, sub)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO visitor_messages (id, visitor_id, type, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.VisitorID, m.Type, m.Content, m.CreatedAt,
	); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

func (s *PostgresStore) ListMessages(ctx context.Context, limit int) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, visitor_id, type, content, created_at
		 FROM visitor_messages
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.VisitorID, &m.Type, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.CreatedAt = m.CreatedAt.UTC()
		items = append(items, m)
	}
	return items, rows.Err()
}

func (s *PostgresStore) IncrementVisits(ctx context.Context, visitorID string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO visitor_visits (visitor_id, visits) VALUES ($1, 1)
		 ON CONFLICT (visitor_id) DO UPDATE SET visits = visitor_visits.visits + 1, last_seen = NOW()
		 RETURNING visits`,
		visitorID,
	).Scan(&n)
	return n, err
}

func (s *PostgresStore) GetTheme(ctx context.Context, visitorID string) (string, error) {
	var theme string
	err := s.db.QueryRowContext(ctx,
		`SELECT theme FROM visitor_themes WHERE visitor_id = $1`,
		visitorID,
	).Scan(&theme)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return theme, err
}

func (s *PostgresStore) SetTheme(ctx context.Context, visitorID, theme string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visitor_themes (visitor_id, theme) VALUES ($1, $2)
		 ON CONFLICT (visitor_id) DO UPDATE SET theme = EXCLUDED.theme, updated_at = NOW()`,
		visitorID, theme,
	)
	return err
}
