package handlers

import (
	"net/http"

	"hny-greeting-service/internal/music"
)

type MusicHandlers struct {
	Library *music.Library
	// Refs are the music paths the content refers to.
	Refs []string
}

func (h *MusicHandlers) ListTracks(w http.ResponseWriter, r *http.Request) {
	missing := h.Library.Missing(h.Refs)
	if missing == nil {
		missing = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": h.Library.Tracks(), "missing": missing})
}
