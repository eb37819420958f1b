package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hny-greeting-service/internal/services"
)

const keepAliveInterval = 15 * time.Second

type StreamHandlers struct {
	Sessions *services.SessionService
}

func sseWriteEvent(w io.Writer, event string, payload any) error {
	return sseWriteEventID(w, 0, event, payload)
}

func sseWriteEventID(w io.Writer, id uint64, event string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if id > 0 {
		if _, err := fmt.Fprintf(w, "id: %d\n", id); err != nil {
			return err
		}
	}
	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", string(b)); err != nil {
		return err
	}
	return nil
}

func lastEventID(r *http.Request) uint64 {
	v := strings.TrimSpace(r.Header.Get("Last-Event-ID"))
	if v == "" {
		v = strings.TrimSpace(r.URL.Query().Get("since"))
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// HandleEvents streams a session's effects. Reconnecting clients resume
// after Last-Event-ID.
func (h *StreamHandlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "session_not_found"})
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "streaming_not_supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	replay, events, cancel := sess.Hub().Subscribe(lastEventID(r))
	defer cancel()

	_ = sseWriteEvent(w, "hello", sess.Snapshot())
	for _, ev := range replay {
		if err := sseWriteEventID(w, ev.Seq, ev.Name, ev.Data); err != nil {
			return
		}
	}
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				_ = sseWriteEvent(w, "closed", map[string]any{"id": sess.ID})
				flusher.Flush()
				return
			}
			if err := sseWriteEventID(w, ev.Seq, ev.Name, ev.Data); err != nil {
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			sess.Touch()
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
