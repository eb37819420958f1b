package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"hny-greeting-service/internal/store"
)

var ErrInvalidTheme = errors.New("invalid theme")

var themePattern = regexp.MustCompile(`^theme-[a-z0-9-]{1,32}$`)

// PreferenceService keeps per-visitor theme choices and visit counts.
type PreferenceService struct {
	store        store.Store
	defaultTheme string
}

func NewPreferenceService(st store.Store, defaultTheme string) *PreferenceService {
	if strings.TrimSpace(defaultTheme) == "" {
		defaultTheme = "theme-cute"
	}
	return &PreferenceService{store: st, defaultTheme: defaultTheme}
}

func (p *PreferenceService) Visit(ctx context.Context, visitorID string) (int64, error) {
	return p.store.IncrementVisits(ctx, visitorID)
}

// Theme returns the saved theme, or the default when none was saved.
func (p *PreferenceService) Theme(ctx context.Context, visitorID string) (string, error) {
	theme, err := p.store.GetTheme(ctx, visitorID)
	if errors.Is(err, store.ErrNotFound) {
		return p.defaultTheme, nil
	}
	if err != nil {
		return "", err
	}
	return theme, nil
}

func (p *PreferenceService) SetTheme(ctx context.Context, visitorID, theme string) (string, error) {
	theme = strings.TrimSpace(theme)
	if !themePattern.MatchString(theme) {
		return "", ErrInvalidTheme
	}
	if err := p.store.SetTheme(ctx, visitorID, theme); err != nil {
		return "", err
	}
	return theme, nil
}
