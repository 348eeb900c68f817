package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lorekeep/lorekeep-research/internal/api/respond"
	"github.com/lorekeep/lorekeep-research/internal/api/validate"
	"github.com/lorekeep/lorekeep-research/internal/document"
	"github.com/lorekeep/lorekeep-research/internal/model"
	"github.com/lorekeep/lorekeep-research/internal/orchestrator"
)

// DocumentHandler exposes document upload and analysis endpoints.
type DocumentHandler struct {
	orch     *orchestrator.Orchestrator
	maxBytes int64
	log      zerolog.Logger
}

func NewDocumentHandler(orch *orchestrator.Orchestrator, maxBytes int64, log zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{orch: orch, maxBytes: maxBytes, log: log}
}

// Upload handles POST /v0/documents: a multipart form with a "file" part
// (PDF or DOCX) and an optional "task" field. The upload starts a new
// session seeded with the document and an initial analysis.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		respond.WriteBadRequest(w, "invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.WriteBadRequest(w, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.WriteInternalError(w, "failed to read upload")
		return
	}

	doc, err := document.Extract(header.Filename, data)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		respond.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	doc.Task = r.FormValue("task")

	h.log.Info().Str("document", doc.Name).Int("bytes", len(data)).Msg("document uploaded")
	result := h.orch.IngestDocument(r.Context(), doc)
	respond.WriteJSON(w, http.StatusOK, result)
}

// Analyze handles POST /v0/documents/analyze: runs a task against the
// document already stored in the session.
func (h *DocumentHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Task      string `json:"task"`
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON")
		return
	}
	if err := validate.Query(req.Task); err != nil {
		respond.WriteBadRequest(w, "task is required")
		return
	}
	if err := validate.SessionID(req.SessionID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.orch.AnalyzeDocumentTask(r.Context(), req.Task, req.SessionID)
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
