// Package api is the thin HTTP transport over the session store and the
// workflow orchestrator.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/lorekeep/lorekeep-research/internal/api/recovery"
	"github.com/lorekeep/lorekeep-research/internal/orchestrator"
	"github.com/lorekeep/lorekeep-research/internal/store"
)

// NewRouter assembles the full /v0 route table with the recovery middleware
// applied.
func NewRouter(orch *orchestrator.Orchestrator, sessions store.Store, maxUploadBytes int64, log zerolog.Logger) http.Handler {
	sessionH := NewSessionHandler(sessions, log)
	researchH := NewResearchHandler(orch, log)
	documentH := NewDocumentHandler(orch, maxUploadBytes, log)
	healthH := NewHealthHandler()

	r := mux.NewRouter()
	v0 := r.PathPrefix("/v0").Subrouter()

	v0.HandleFunc("/sessions", sessionH.Create).Methods(http.MethodPost)
	v0.HandleFunc("/sessions", sessionH.List).Methods(http.MethodGet)
	v0.HandleFunc("/sessions/{sessionId}", sessionH.Get).Methods(http.MethodGet)
	v0.HandleFunc("/sessions/{sessionId}", sessionH.Delete).Methods(http.MethodDelete)
	v0.HandleFunc("/sessions/{sessionId}/history", sessionH.History).Methods(http.MethodGet)
	v0.HandleFunc("/sessions/{sessionId}/queries", sessionH.Queries).Methods(http.MethodGet)

	v0.HandleFunc("/research", researchH.Research).Methods(http.MethodPost)
	v0.HandleFunc("/follow-up", researchH.FollowUp).Methods(http.MethodPost)

	v0.HandleFunc("/documents", documentH.Upload).Methods(http.MethodPost)
	v0.HandleFunc("/documents/analyze", documentH.Analyze).Methods(http.MethodPost)

	v0.HandleFunc("/health", healthH.Check).Methods(http.MethodGet)

	return recovery.Middleware(r)
}
