package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lorekeep/lorekeep-research/internal/api/respond"
	"github.com/lorekeep/lorekeep-research/internal/api/validate"
	"github.com/lorekeep/lorekeep-research/internal/model"
	"github.com/lorekeep/lorekeep-research/internal/orchestrator"
)

// ResearchHandler exposes the research and follow-up workflows.
type ResearchHandler struct {
	orch *orchestrator.Orchestrator
	log  zerolog.Logger
}

func NewResearchHandler(orch *orchestrator.Orchestrator, log zerolog.Logger) *ResearchHandler {
	return &ResearchHandler{orch: orch, log: log}
}

// Research handles POST /v0/research. Workflow failures come back as a 200
// with success=false; only malformed requests get a non-2xx status.
func (h *ResearchHandler) Research(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query      string `json:"query"`
		SessionID  string `json:"sessionId,omitempty"`
		NumSources int    `json:"numSources,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	if err := validate.Query(req.Query); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.NumSources(req.NumSources); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	result := h.orch.RunResearch(r.Context(), req.Query, req.SessionID, req.NumSources)
	respond.WriteJSON(w, http.StatusOK, result)
}

// FollowUp handles POST /v0/follow-up. An unknown session, or one with no
// prior research, is a 404.
func (h *ResearchHandler) FollowUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string `json:"query"`
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	if err := validate.Query(req.Query); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.SessionID(req.SessionID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.orch.RunFollowUp(r.Context(), req.Query, req.SessionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, err.Error())
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, result)
}
