package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/lorekeep/lorekeep-research/internal/api/respond"
	"github.com/lorekeep/lorekeep-research/internal/api/validate"
	"github.com/lorekeep/lorekeep-research/internal/model"
	"github.com/lorekeep/lorekeep-research/internal/store"
)

// SessionHandler exposes session lifecycle and inspection endpoints over the
// store.
type SessionHandler struct {
	sessions store.Store
	log      zerolog.Logger
}

func NewSessionHandler(sessions store.Store, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, log: log}
}

// Create handles POST /v0/sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := h.sessions.Create(r.Context())
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]string{"sessionId": id})
}

// List handles GET /v0/sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.List(r.Context())
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// Get handles GET /v0/sessions/{sessionId}: the merged session context.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]

	sess, err := h.sessions.Retrieve(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "session not found: "+id)
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, sess)
}

// History handles GET /v0/sessions/{sessionId}/history?limit=N.
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]

	limit, err := validate.Limit(r.URL.Query().Get("limit"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	turns, err := h.sessions.History(r.Context(), id, limit)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"turns": turns,
		"count": len(turns),
	})
}

// Queries handles GET /v0/sessions/{sessionId}/queries.
func (h *SessionHandler) Queries(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]

	queries, err := h.sessions.Queries(r.Context(), id)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"queries": queries,
		"count":   len(queries),
	})
}

// Delete handles DELETE /v0/sessions/{sessionId}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["sessionId"]

	existed, err := h.sessions.Delete(r.Context(), id)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if !existed {
		respond.WriteNotFound(w, "session not found: "+id)
		return
	}
	h.log.Info().Str("session_id", id).Msg("session deleted")
	w.WriteHeader(http.StatusNoContent)
}
