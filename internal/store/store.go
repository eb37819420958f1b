package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"hny-greeting-service/internal/models"
)

var ErrNotFound = errors.New("not found")

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Store persists visitor messages, visit counters and theme preferences.
type Store interface {
	EnsureSchema(ctx context.Context) error
	SaveMessage(ctx context.Context, visitorID string, sub models.Submission) (models.Message, error)
	ListMessages(ctx context.Context, limit int) ([]models.Message, error)
	IncrementVisits(ctx context.Context, visitorID string) (int64, error)
	GetTheme(ctx context.Context, visitorID string) (string, error)
	SetTheme(ctx context.Context, visitorID, theme string) error
}

func newMessage(visitorID string, sub models.Submission) models.Message {
	return models.Message{
		ID:        ulid.Make().String(),
		VisitorID: visitorID,
		Type:      strings.TrimSpace(sub.Type),
		Content:   sub.Content,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxListLimit {
		return defaultListLimit
	}
	return limit
}
