package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"hny-greeting-service/internal/models"
	"hny-greeting-service/internal/services"
)

type VisitorHandlers struct {
	Messages    *services.MessageService
	Preferences *services.PreferenceService
}

func (h *VisitorHandlers) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req models.Submission
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_json"})
		return
	}
	msg, err := h.Messages.Submit(r.Context(), VisitorID(r), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMessage) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "content_required"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "save_message_failed"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": msg})
}

func (h *VisitorHandlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	msgs, err := h.Messages.List(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "list_messages_failed"})
		return
	}
	writeJSON(w, http.StatusOK, models.MessagesResponse{Data: msgs})
}

func (h *VisitorHandlers) RecordVisit(w http.ResponseWriter, r *http.Request) {
	n, err := h.Preferences.Visit(r.Context(), VisitorID(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "record_visit_failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"visits": n}})
}

func (h *VisitorHandlers) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.Preferences.Theme(r.Context(), VisitorID(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "get_theme_failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"theme": theme}})
}

func (h *VisitorHandlers) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req models.ThemeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_json"})
		return
	}
	theme, err := h.Preferences.SetTheme(r.Context(), VisitorID(r), req.Theme)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTheme) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_theme"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "set_theme_failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"theme": theme}})
}
