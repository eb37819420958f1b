package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const epochLayout = "2006-01-02T15:04:05"

type Config struct {
	Port               string
	DBDriver           string
	DatabaseURL        string
	SQLitePath         string
	AutoCreateDB       bool
	MaintenanceDB      string
	CORSAllowedOrigins string
	AdminAPIKeys       map[string]struct{}
	FeedURL            string
	FeedTimeout        time.Duration
	FeedCacheTTL       time.Duration
	ContentFile        string
	StaticDir          string
	MusicDir           string
	Location           *time.Location
	CampaignEpoch      time.Time
	TargetEpoch        time.Time
	SessionTTL         time.Duration
	TimerInterval      time.Duration
	DefaultTheme       string
	BGMSrc             string
}

type rawEnv struct {
	Port               string        `env:"PORT" envDefault:"8091"`
	DBDriver           string        `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	SQLitePath         string        `env:"SQLITE_PATH" envDefault:"hny.db"`
	AutoCreateDB       bool          `env:"AUTO_CREATE_DB"`
	MaintenanceDB      string        `env:"MAINTENANCE_DB" envDefault:"postgres"`
	CORSAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS"`
	AdminAPIKeys       string        `env:"ADMIN_API_KEYS"`
	FeedURL            string        `env:"FEED_URL"`
	FeedTimeout        time.Duration `env:"FEED_TIMEOUT" envDefault:"8s"`
	FeedCacheTTL       time.Duration `env:"FEED_CACHE_TTL" envDefault:"2m"`
	ContentFile        string        `env:"CONTENT_FILE"`
	StaticDir          string        `env:"STATIC_DIR" envDefault:"web"`
	MusicDir           string        `env:"MUSIC_DIR"`
	Timezone           string        `env:"TIMEZONE" envDefault:"Asia/Bangkok"`
	CampaignEpoch      string        `env:"CAMPAIGN_EPOCH" envDefault:"2025-01-01T00:00:00"`
	TargetEpoch        string        `env:"TARGET_EPOCH" envDefault:"2026-01-01T00:00:00"`
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	TimerInterval      time.Duration `env:"TIMER_INTERVAL" envDefault:"250ms"`
	DefaultTheme       string        `env:"DEFAULT_THEME" envDefault:"theme-cute"`
	BGMSrc             string        `env:"BGM_SRC" envDefault:"audio/bgm.mp3"`
}

func parseCSVSet(v string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, part := range strings.Split(v, ",") {
		s := strings.TrimSpace(part)
		if s == "" {
			continue
		}
		out[s] = struct{}{}
	}
	return out
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	var raw rawEnv
	if err := env.Parse(&raw); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:               strings.TrimSpace(raw.Port),
		DBDriver:           strings.ToLower(strings.TrimSpace(raw.DBDriver)),
		DatabaseURL:        strings.TrimSpace(raw.DatabaseURL),
		SQLitePath:         strings.TrimSpace(raw.SQLitePath),
		AutoCreateDB:       raw.AutoCreateDB,
		MaintenanceDB:      strings.TrimSpace(raw.MaintenanceDB),
		CORSAllowedOrigins: strings.TrimSpace(raw.CORSAllowedOrigins),
		AdminAPIKeys:       parseCSVSet(raw.AdminAPIKeys),
		FeedURL:            strings.TrimSpace(raw.FeedURL),
		FeedTimeout:        raw.FeedTimeout,
		FeedCacheTTL:       raw.FeedCacheTTL,
		ContentFile:        strings.TrimSpace(raw.ContentFile),
		StaticDir:          strings.TrimSpace(raw.StaticDir),
		MusicDir:           strings.TrimSpace(raw.MusicDir),
		SessionTTL:         raw.SessionTTL,
		TimerInterval:      raw.TimerInterval,
		DefaultTheme:       strings.TrimSpace(raw.DefaultTheme),
		BGMSrc:             strings.TrimSpace(raw.BGMSrc),
	}
	if cfg.MusicDir == "" && cfg.StaticDir != "" {
		cfg.MusicDir = cfg.StaticDir
	}

	loc, err := time.LoadLocation(strings.TrimSpace(raw.Timezone))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.CampaignEpoch, err = time.ParseInLocation(epochLayout, strings.TrimSpace(raw.CampaignEpoch), loc); err != nil {
		return Config{}, fmt.Errorf("invalid CAMPAIGN_EPOCH: %w", err)
	}
	if cfg.TargetEpoch, err = time.ParseInLocation(epochLayout, strings.TrimSpace(raw.TargetEpoch), loc); err != nil {
		return Config{}, fmt.Errorf("invalid TARGET_EPOCH: %w", err)
	}

	if cfg.Port == "" {
		return Config{}, errors.New("missing PORT")
	}
	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("missing DATABASE_URL")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			return Config{}, errors.New("missing SQLITE_PATH")
		}
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.FeedTimeout <= 0 {
		return Config{}, errors.New("FEED_TIMEOUT must be positive")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("SESSION_TTL must be positive")
	}
	if cfg.TimerInterval <= 0 {
		return Config{}, errors.New("TIMER_INTERVAL must be positive")
	}
	if !cfg.TargetEpoch.After(cfg.CampaignEpoch) {
		return Config{}, errors.New("TARGET_EPOCH must be after CAMPAIGN_EPOCH")
	}

	return cfg, nil
}
