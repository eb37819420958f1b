package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lib/pq"

	"hny-greeting-service/internal/config"
	"hny-greeting-service/internal/content"
	"hny-greeting-service/internal/feed"
	"hny-greeting-service/internal/handlers"
	"hny-greeting-service/internal/music"
	"hny-greeting-service/internal/routes"
	"hny-greeting-service/internal/schedule"
	"hny-greeting-service/internal/services"
	"hny-greeting-service/internal/store"
)

const reapInterval = time.Minute

func connectDB(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func databaseDoesNotExist(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 3D000: invalid_catalog_name
		return string(pqErr.Code) == "3D000"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") && strings.Contains(msg, "database")
}

func ensureDatabaseExists(ctx context.Context, cfg config.Config) error {
	u, err := url.Parse(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	dbName := strings.TrimPrefix(u.Path, "/")
	if strings.TrimSpace(dbName) == "" {
		return errors.New("DATABASE_URL missing database name")
	}

	maint := *u
	maint.Path = "/" + strings.TrimSpace(cfg.MaintenanceDB)
	maintDB, err := connectDB(ctx, maint.String())
	if err != nil {
		return err
	}
	defer maintDB.Close()

	var exists int
	err = maintDB.QueryRowContext(ctx, "SELECT 1 FROM pg_database WHERE datname = $1", dbName).Scan(&exists)
	if err == sql.ErrNoRows {
		exists = 0
		err = nil
	}
	if err != nil {
		return err
	}
	if exists == 1 {
		return nil
	}

	_, err = maintDB.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(dbName))
	return err
}

// openStore connects the configured database and ensures its schema.
func openStore(ctx context.Context, cfg config.Config) (store.Store, *sql.DB, error) {
	if cfg.DBDriver == "sqlite" {
		db, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		st := store.NewSQLiteStore(db)
		if err := st.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return st, db, nil
	}

	db, err := connectDB(ctx, cfg.DatabaseURL)
	if err != nil {
		if cfg.AutoCreateDB && databaseDoesNotExist(err) {
			if err2 := ensureDatabaseExists(ctx, cfg); err2 != nil {
				return nil, nil, err2
			}
			db, err = connectDB(ctx, cfg.DatabaseURL)
		}
	}
	if err != nil {
		return nil, nil, err
	}
	pg := store.NewPostgresStore(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return pg, db, nil
}

func loadCatalog(cfg config.Config) (content.Catalog, error) {
	if cfg.ContentFile != "" {
		return content.LoadCatalogFile(cfg.ContentFile)
	}
	return content.DefaultCatalog()
}

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, db, err := openStore(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	lib, err := music.Scan(cfg.MusicDir)
	if err != nil {
		panic(err)
	}
	if missing := lib.Missing(catalog.MusicRefs()); len(missing) > 0 {
		log.Printf("music: %d referenced tracks not found under %s: %v", len(missing), cfg.MusicDir, missing)
	}

	hc := &http.Client{Timeout: 30 * time.Second}
	feedClient := feed.NewClient(cfg.FeedURL, hc, cfg.FeedTimeout, cfg.FeedCacheTTL)
	var overlay content.OverlaySource
	if feedClient.Configured() {
		overlay = feedClient
	} else {
		log.Printf("feed: no endpoint configured, serving local content only")
	}

	sched := schedule.Real{}
	sessions := services.NewSessionService(services.SessionConfig{
		Items:         catalog.Items,
		Script:        catalog.Intro,
		Overlay:       overlay,
		Scheduler:     sched,
		Location:      cfg.Location,
		CampaignEpoch: cfg.CampaignEpoch,
		TargetEpoch:   cfg.TargetEpoch,
		TimerInterval: cfg.TimerInterval,
		TTL:           cfg.SessionTTL,
		BGMSrc:        cfg.BGMSrc,
	})
	messages := services.NewMessageService(st, feedClient, cfg.FeedTimeout)
	prefs := services.NewPreferenceService(st, cfg.DefaultTheme)

	h := routes.NewRouter(cfg,
		&handlers.SessionHandlers{Sessions: sessions},
		&handlers.StreamHandlers{Sessions: sessions},
		&handlers.VisitorHandlers{Messages: messages, Preferences: prefs},
		&handlers.MusicHandlers{Library: lib, Refs: catalog.MusicRefs()},
	)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sessions.RunReaper(runCtx, reapInterval)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sessions.Shutdown()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("hny-greeting-service listening on %s (db=%s items=%d tracks=%d)", addr, cfg.DBDriver, len(catalog.Items), len(lib.Tracks()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
	messages.Wait()
}
