// Package store defines the session persistence contract.
//
// Strictness is deliberately asymmetric: Store auto-creates unknown sessions
// and never fails bookkeeping for a successful workflow, while Retrieve is
// the single strict read that reports ErrNotFound. History and Queries are
// lenient enumerations returning empty results for unknown ids. The
// orchestrator's follow-up path depends on Retrieve failing fast.
package store

import (
	"context"

	"github.com/lorekeep/lorekeep-research/internal/model"
)

// Store exposes session persistence operations required by the orchestrator
// and the API layer. Implementations live under internal/store/<driver>/.
// All operations must be safe under concurrent invocation, including two
// callers racing on the same session id: each Store call's turn-append and
// context-merge is atomic relative to other calls on that session.
type Store interface {
	// Create allocates a fresh globally-unique session id.
	Create(ctx context.Context) (string, error)

	// Store appends a turn built from data and shallow-merges data into the
	// session context (later writes override same-named fields, distinct
	// fields accumulate). Unknown ids are auto-created, never an error.
	Store(ctx context.Context, sessionID string, data model.TurnData) error

	// Retrieve returns a snapshot of the session's merged context, or
	// model.ErrNotFound for unknown ids. Updates last-accessed time.
	Retrieve(ctx context.Context, sessionID string) (*model.Context, error)

	// History returns at most limit turns, oldest first with the most
	// recent turn last. Unknown ids yield an empty slice.
	History(ctx context.Context, sessionID string, limit int) ([]model.Turn, error)

	// Queries returns the session's query records in insertion order.
	// Unknown ids yield an empty slice.
	Queries(ctx context.Context, sessionID string) ([]model.QueryRecord, error)

	// Delete removes the session and reports whether it was present.
	Delete(ctx context.Context, sessionID string) (bool, error)

	// List returns a snapshot enumeration of all live sessions.
	List(ctx context.Context) ([]model.SessionSummary, error)
}
