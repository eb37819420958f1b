package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hny-greeting-service/internal/chat"
	"hny-greeting-service/internal/models"
	"hny-greeting-service/internal/services"
)

type SessionHandlers struct {
	Sessions *services.SessionService
}

func (h *SessionHandlers) session(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	sess, err := h.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "session_not_found"})
		return nil, false
	}
	return sess, true
}

func (h *SessionHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_json"})
		return
	}
	sess := h.Sessions.Create(VisitorID(r), req, r.Header.Get("Accept-Language"))
	writeJSON(w, http.StatusCreated, map[string]any{"data": sess.Snapshot()})
}

func (h *SessionHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": sess.Snapshot()})
}

func (h *SessionHandlers) Interact(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.InteractRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_json"})
		return
	}
	res, accepted := sess.Interact(req.X, req.Y)
	if !accepted {
		writeJSON(w, http.StatusConflict, map[string]any{"error": "interaction_ignored", "data": res})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": res})
}

func (h *SessionHandlers) Proceed(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	state, moved := sess.Proceed()
	if !moved {
		writeJSON(w, http.StatusConflict, map[string]any{"error": "proceed_unavailable", "state": state})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"state": state}})
}

func (h *SessionHandlers) Skip(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	state, err := sess.Skip()
	if err != nil {
		writeJSON(w, http.StatusConflict, map[string]any{"error": "skip_unavailable", "state": state})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"state": state}})
}

// Timeline returns the HTML of cards this session has not seen yet.
func (h *SessionHandlers) Timeline(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	res, err := sess.RenderTimeline(r.Context(), &buf)
	if err != nil {
		if errors.Is(err, services.ErrIntroRunning) {
			writeJSON(w, http.StatusConflict, map[string]any{"error": "intro_running"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "render_failed"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(headerTimelineCards, strconv.Itoa(res.Cards))
	w.Header().Set(headerTimelineEmbeds, strconv.FormatBool(res.Embeds))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *SessionHandlers) Timer(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": sess.TimerReading()})
}

func (h *SessionHandlers) SwitchTimer(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	reading, switched := sess.SwitchTimer()
	writeJSON(w, http.StatusOK, map[string]any{"data": reading, "switched": switched})
}

func (h *SessionHandlers) OpenChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.ChatOpenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_json"})
		return
	}
	view, err := sess.OpenChat(req.Day)
	switch {
	case errors.Is(err, services.ErrIntroRunning):
		writeJSON(w, http.StatusConflict, map[string]any{"error": "intro_running"})
	case errors.Is(err, services.ErrDayLocked):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "day_not_unlocked"})
	case errors.Is(err, services.ErrNotChat):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "not_a_chat"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "open_chat_failed"})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"data": view})
	}
}

func (h *SessionHandlers) AdvanceChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": sess.AdvanceChat()})
}

func (h *SessionHandlers) ChooseChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.ChatChooseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_json"})
		return
	}
	view, err := sess.ChooseChat(req.Option)
	switch {
	case errors.Is(err, chat.ErrNoChoicePending):
		writeJSON(w, http.StatusConflict, map[string]any{"error": "no_choice_pending", "data": view})
	case errors.Is(err, chat.ErrUnknownOption):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unknown_option", "data": view})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "choose_failed"})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"data": view})
	}
}

func (h *SessionHandlers) CloseChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": sess.CloseChat()})
}

func (h *SessionHandlers) Audio(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req models.AudioRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_json"})
		return
	}
	state, err := sess.SetAudio(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "src_or_toggle_required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": state})
}
