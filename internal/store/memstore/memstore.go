// Package memstore is the in-memory session store driver. Sessions live for
// the process lifetime; there is no eviction, matching the service contract.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lorekeep/lorekeep-research/internal/model"
	"github.com/lorekeep/lorekeep-research/internal/store"
)

// session is the mutable record guarded by Store.mu. Turns are append-only;
// the context is the latest-wins merge of every stored payload.
type session struct {
	id           string
	createdAt    time.Time
	lastAccessed time.Time
	turns        []model.Turn
	queries      []model.QueryRecord
	context      model.Context
}

// Store implements store.Store over a process-wide map.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
	now      func() time.Time
	log      zerolog.Logger
}

var _ store.Store = (*Store)(nil)

// New returns an empty in-memory store.
func New(log zerolog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*session),
		now:      time.Now,
		log:      log,
	}
}

// Create allocates a fresh session. Id generation is collision-free for the
// store's lifetime (random UUIDs), so Create never fails.
func (s *Store) Create(ctx context.Context) (string, error) {
	id := uuid.New().String()

	s.mu.Lock()
	s.newSessionLocked(id)
	s.mu.Unlock()

	s.log.Info().Str("session_id", id).Msg("created session")
	return id, nil
}

// newSessionLocked initializes an empty session record. Caller holds mu.
func (s *Store) newSessionLocked(id string) *session {
	now := s.now()
	sess := &session{id: id, createdAt: now, lastAccessed: now}
	s.sessions[id] = sess
	return sess
}

// Store appends a turn and merges data into the session context atomically.
// Unknown ids are auto-created rather than rejected; the orchestrator relies
// on successful workflows never failing on session bookkeeping.
func (s *Store) Store(ctx context.Context, sessionID string, data model.TurnData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		s.log.Warn().Str("session_id", sessionID).Msg("session not found, creating")
		sess = s.newSessionLocked(sessionID)
	}

	now := s.now()
	if data.Query != "" {
		sess.queries = append(sess.queries, model.QueryRecord{Query: data.Query, Timestamp: now})
	}

	sess.turns = append(sess.turns, model.Turn{
		Query:     data.Query,
		Plan:      data.Plan,
		Sources:   data.Sources,
		Report:    data.Report,
		Document:  data.Document,
		Timestamp: now,
	})
	mergeContext(&sess.context, data)
	sess.lastAccessed = now
	return nil
}

// Retrieve returns a snapshot of the merged context. This is the single
// strict read: unknown ids report model.ErrNotFound.
func (s *Store) Retrieve(ctx context.Context, sessionID string) (*model.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, model.ErrNotFound
	}
	sess.lastAccessed = s.now()

	snap := cloneContext(sess.context)
	return &snap, nil
}

// History returns at most limit turns, oldest first within the returned
// window. Unknown sessions enumerate as empty, not as an error.
func (s *Store) History(ctx context.Context, sessionID string, limit int) ([]model.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return []model.Turn{}, nil
	}
	turns := sess.turns
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]model.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Queries returns the session's query records in insertion order.
func (s *Store) Queries(ctx context.Context, sessionID string) ([]model.QueryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return []model.QueryRecord{}, nil
	}
	out := make([]model.QueryRecord, len(sess.queries))
	copy(out, sess.queries)
	return out, nil
}

// Delete removes the session if present. The boolean is the sole success
// indicator; deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return false, nil
	}
	delete(s.sessions, sessionID)
	s.log.Info().Str("session_id", sessionID).Msg("deleted session")
	return true, nil
}

// List returns a point-in-time enumeration of all live sessions.
func (s *Store) List(ctx context.Context) ([]model.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.SessionSummary, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, model.SessionSummary{
			ID:             sess.id,
			CreatedAt:      sess.createdAt,
			LastAccessedAt: sess.lastAccessed,
			TurnCount:      len(sess.turns),
		})
	}
	return out, nil
}

// mergeContext applies the set fields of data over dst: top-level fields in
// data overwrite same-named fields, other fields are preserved, Extra keys
// merge individually.
func mergeContext(dst *model.Context, data model.TurnData) {
	if data.Query != "" {
		dst.Query = data.Query
	}
	if data.Plan != nil {
		dst.Plan = data.Plan
	}
	if data.Sources != nil {
		dst.Sources = data.Sources
	}
	if data.Report != nil {
		dst.Report = data.Report
	}
	if data.Document != nil {
		dst.Document = data.Document
	}
	for k, v := range data.Extra {
		if dst.Extra == nil {
			dst.Extra = make(map[string]any, len(data.Extra))
		}
		dst.Extra[k] = v
	}
}

// cloneContext copies the context deeply enough that callers can never
// observe or cause a partially-merged view through a shared slice or map.
func cloneContext(c model.Context) model.Context {
	out := c
	if c.Sources != nil {
		out.Sources = make([]model.Source, len(c.Sources))
		copy(out.Sources, c.Sources)
	}
	if c.Plan != nil {
		p := *c.Plan
		p.FocusAreas = append([]string(nil), c.Plan.FocusAreas...)
		p.SearchTerms = append([]string(nil), c.Plan.SearchTerms...)
		out.Plan = &p
	}
	if c.Report != nil {
		r := *c.Report
		r.KeyFindings = append([]string(nil), c.Report.KeyFindings...)
		r.Citations = append([]model.Citation(nil), c.Report.Citations...)
		out.Report = &r
	}
	if c.Document != nil {
		d := *c.Document
		out.Document = &d
	}
	if c.Extra != nil {
		out.Extra = make(map[string]any, len(c.Extra))
		for k, v := range c.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
