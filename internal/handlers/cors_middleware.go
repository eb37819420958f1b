package handlers

import (
	"net/http"
	"strings"

	"hny-greeting-service/internal/config"
)

const (
	headerTimelineCards  = "X-Timeline-Cards"
	headerTimelineEmbeds = "X-Timeline-Embeds"
)

var (
	corsMethods = map[string]bool{http.MethodGet: true, http.MethodPost: true, http.MethodPut: true}

	corsAllowMethods  = "GET, POST, PUT"
	corsAllowHeaders  = "Content-Type, X-API-Key, Last-Event-ID"
	corsExposeHeaders = headerTimelineCards + ", " + headerTimelineEmbeds
)

// corsPolicy is the set of page origins allowed to call the API. Every
// allowed origin is echoed back with credentials because the visitor
// cookie has to travel with each request, so "*" never reaches the client.
type corsPolicy struct {
	any     bool
	origins map[string]struct{}
}

func newCORSPolicy(list string) corsPolicy {
	p := corsPolicy{origins: map[string]struct{}{}}
	for _, part := range strings.Split(list, ",") {
		origin := strings.TrimSpace(part)
		switch origin {
		case "":
		case "*":
			p.any = true
		default:
			p.origins[strings.TrimSuffix(origin, "/")] = struct{}{}
		}
	}
	return p
}

func (p corsPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if p.any {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

// isEventStream matches EventSource requests. They are simple GETs, so they
// only need the origin grant and nothing to expose.
func isEventStream(r *http.Request) bool {
	return r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

func WithCORS(cfg config.Config) func(http.Handler) http.Handler {
	policy := newCORSPolicy(cfg.CORSAllowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			allowed := policy.allows(origin)
			h := w.Header()
			h.Add("Vary", "Origin")

			if isPreflight(r) {
				if !allowed || !corsMethods[r.Header.Get("Access-Control-Request-Method")] {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				h.Add("Vary", "Access-Control-Request-Method")
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if allowed {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				if !isEventStream(r) {
					h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
