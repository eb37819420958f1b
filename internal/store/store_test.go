package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hny-greeting-service/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()
	db, err := OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewSQLiteStore(db)
	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.EnsureSchema(ctx), "schema must be idempotent")
	return s
}

var _ Store = (*SQLiteStore)(nil)
var _ Store = (*PostgresStore)(nil)

func TestMessagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.SaveMessage(ctx, "v1", models.Submission{Type: " message ", Content: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "message", first.Type)

	second, err := s.SaveMessage(ctx, "v2", models.Submission{Type: "message", Content: "สวัสดี"})
	require.NoError(t, err)

	got, err := s.ListMessages(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, "สวัสดี", got[0].Content)
	assert.Equal(t, first.ID, got[1].ID)
	assert.True(t, first.CreatedAt.Equal(got[1].CreatedAt))

	got, err = s.ListMessages(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestIncrementVisits(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for want := int64(1); want <= 3; want++ {
		n, err := s.IncrementVisits(ctx, "v1")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	n, err := s.IncrementVisits(ctx, "v2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestTheme(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetTheme(ctx, "v1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetTheme(ctx, "v1", "theme-cute"))
	require.NoError(t, s.SetTheme(ctx, "v1", "theme-dark"))

	theme, err := s.GetTheme(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "theme-dark", theme)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, defaultListLimit, clampLimit(0))
	assert.Equal(t, defaultListLimit, clampLimit(500))
	assert.Equal(t, 5, clampLimit(5))
}
