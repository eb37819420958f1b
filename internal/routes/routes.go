package routes

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"hny-greeting-service/internal/config"
	"hny-greeting-service/internal/handlers"
)

const requestTimeout = 30 * time.Second

func NewRouter(cfg config.Config, sessions *handlers.SessionHandlers, stream *handlers.StreamHandlers, visitors *handlers.VisitorHandlers, tracks *handlers.MusicHandlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handlers.WithRequestLogging())
	r.Use(middleware.Recoverer)
	r.Use(handlers.WithCORS(cfg))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(handlers.WithVisitor())

		r.Route("/sessions/{id}", func(r chi.Router) {
			// Event streams stay open, so they sit outside the request timeout.
			r.Get("/events", stream.HandleEvents)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(requestTimeout))
				r.Get("/", sessions.GetSession)
				r.Post("/interact", sessions.Interact)
				r.Post("/proceed", sessions.Proceed)
				r.Post("/skip", sessions.Skip)
				r.Get("/timeline", sessions.Timeline)
				r.Get("/timer", sessions.Timer)
				r.Post("/timer/switch", sessions.SwitchTimer)
				r.Post("/chat/open", sessions.OpenChat)
				r.Post("/chat/advance", sessions.AdvanceChat)
				r.Post("/chat/choose", sessions.ChooseChat)
				r.Post("/chat/close", sessions.CloseChat)
				r.Post("/audio", sessions.Audio)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Post("/sessions", sessions.CreateSession)
			r.Post("/messages", visitors.SubmitMessage)
			r.With(handlers.WithAPIKey(cfg)).Get("/messages", visitors.ListMessages)
			r.Post("/visits", visitors.RecordVisit)
			r.Get("/theme", visitors.GetTheme)
			r.Put("/theme", visitors.SetTheme)
			r.Get("/music", tracks.ListTracks)
		})
	})

	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}
