// Package orchestrator drives the research workflow across the planner,
// source provider, and synthesizer collaborators, persisting completed turns
// to the session store.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lorekeep/lorekeep-research/internal/agents"
	"github.com/lorekeep/lorekeep-research/internal/model"
	"github.com/lorekeep/lorekeep-research/internal/store"
)

// Orchestrator sequences one workflow invocation at a time per call; it holds
// no per-session state of its own, so concurrent invocations are safe as long
// as the store is.
type Orchestrator struct {
	planner    agents.Planner
	provider   agents.SourceProvider
	synth      agents.Synthesizer
	sessions   store.Store
	timeout    time.Duration
	defaultNum int
	log        zerolog.Logger
}

func New(planner agents.Planner, provider agents.SourceProvider, synth agents.Synthesizer, sessions store.Store, timeout time.Duration, log zerolog.Logger) *Orchestrator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Orchestrator{
		planner:    planner,
		provider:   provider,
		synth:      synth,
		sessions:   sessions,
		timeout:    timeout,
		defaultNum: model.DefaultPlan("").NumSources,
		log:        log,
	}
}

// WithDefaultNumSources overrides the source count used when planning fails
// and no explicit override is given.
func (o *Orchestrator) WithDefaultNumSources(n int) *Orchestrator {
	o.defaultNum = agents.ClampNumSources(n)
	return o
}

// callCtx bounds a single collaborator call. The parent ctx still governs
// overall cancellation.
func (o *Orchestrator) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.timeout)
}

// RunResearch executes the full plan-retrieve-synthesize workflow. All
// failures are reported through the result value; the method never returns
// an error and never panics on collaborator failure.
//
// An empty sessionID starts a new session. numSources > 0 overrides the
// planner's count.
func (o *Orchestrator) RunResearch(ctx context.Context, query, sessionID string, numSources int) *model.WorkflowResult {
	if sessionID == "" {
		id, err := o.sessions.Create(ctx)
		if err != nil {
			return o.failed(query, sessionID, fmt.Errorf("create session: %w", err))
		}
		sessionID = id
	}
	log := o.log.With().Str("session_id", sessionID).Logger()
	log.Info().Str("query", query).Msg("starting research workflow")

	plan := o.planOrDefault(ctx, query)

	n := plan.NumSources
	if numSources > 0 {
		n = agents.ClampNumSources(numSources)
	}

	sctx, cancel := o.callCtx(ctx)
	sources, err := o.provider.Search(sctx, agents.RefineQuery(query, plan.FocusAreas), n)
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("source retrieval failed")
		return o.failed(query, sessionID, fmt.Errorf("source retrieval: %w", err))
	}

	var report *model.Report
	if len(sources) == 0 {
		log.Warn().Msg("retrieval returned no sources, skipping synthesis")
		report = model.EmptySourceReport()
	} else {
		yctx, cancel := o.callCtx(ctx)
		report, err = o.synth.Synthesize(yctx, query, sources, plan.FocusAreas)
		cancel()
		if err != nil {
			log.Error().Err(err).Msg("synthesis failed")
			return o.failed(query, sessionID, fmt.Errorf("synthesis: %w", err))
		}
	}

	if err := o.sessions.Store(ctx, sessionID, model.TurnData{
		Query:   query,
		Plan:    plan,
		Sources: sources,
		Report:  report,
	}); err != nil {
		log.Error().Err(err).Msg("failed to persist turn")
		return o.failed(query, sessionID, fmt.Errorf("persist turn: %w", err))
	}

	log.Info().Int("num_sources", len(sources)).Msg("research workflow complete")
	return &model.WorkflowResult{
		Success:    true,
		SessionID:  sessionID,
		Query:      query,
		Plan:       plan,
		Sources:    sources,
		Report:     report,
		NumSources: len(sources),
	}
}

// RunFollowUp answers a question against the most recent sources already in
// the session. It never searches, and it does not persist a turn; the error
// return is reserved for session problems (unknown session, or a session
// with no prior sources), both of which wrap model.ErrNotFound.
func (o *Orchestrator) RunFollowUp(ctx context.Context, query, sessionID string) (*model.WorkflowResult, error) {
	sess, err := o.sessions.Retrieve(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(sess.Sources) == 0 {
		return nil, fmt.Errorf("session %s has no prior sources: %w", sessionID, model.ErrNotFound)
	}

	prev := sess.Query
	if prev == "" {
		prev = "Unknown"
	}
	hints := []string{"Previous query: " + prev}

	yctx, cancel := o.callCtx(ctx)
	report, err := o.synth.Synthesize(yctx, query, sess.Sources, hints)
	cancel()
	if err != nil {
		o.log.Error().Err(err).Str("session_id", sessionID).Msg("follow-up synthesis failed")
		r := o.failed(query, sessionID, fmt.Errorf("synthesis: %w", err))
		r.IsFollowUp = true
		return r, nil
	}

	o.log.Info().Str("session_id", sessionID).Msg("follow-up complete")
	return &model.WorkflowResult{
		Success:    true,
		SessionID:  sessionID,
		Query:      query,
		Sources:    sess.Sources,
		Report:     report,
		NumSources: len(sess.Sources),
		IsFollowUp: true,
	}, nil
}

// supplementarySourceCount bounds retrieval for a document analysis task.
const supplementarySourceCount = 3

// docSnippetLimit caps how much extracted text rides along in the synthetic
// source handed to the synthesizer.
const docSnippetLimit = 8000

// IngestDocument starts a new session around an uploaded document: the
// document is stored in the session context and an initial analysis report is
// synthesized over it as a single synthetic source. Failures are reported
// through the result value, as with RunResearch.
func (o *Orchestrator) IngestDocument(ctx context.Context, doc *model.Document) *model.WorkflowResult {
	query := doc.Task
	if query == "" {
		query = "Provide a comprehensive analysis of this document"
	}

	sessionID, err := o.sessions.Create(ctx)
	if err != nil {
		return o.failed(query, "", fmt.Errorf("create session: %w", err))
	}
	log := o.log.With().Str("session_id", sessionID).Str("document", doc.Name).Logger()
	log.Info().Int("text_bytes", len(doc.Text)).Msg("ingesting document")

	sources := []model.Source{documentSource(doc)}

	yctx, cancel := o.callCtx(ctx)
	report, err := o.synth.Synthesize(yctx, query, sources, []string{"Document: " + doc.Name})
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("document synthesis failed")
		return o.failed(query, sessionID, fmt.Errorf("synthesis: %w", err))
	}

	if err := o.sessions.Store(ctx, sessionID, model.TurnData{
		Query:    query,
		Sources:  sources,
		Report:   report,
		Document: doc,
	}); err != nil {
		log.Error().Err(err).Msg("failed to persist document turn")
		return o.failed(query, sessionID, fmt.Errorf("persist turn: %w", err))
	}

	return &model.WorkflowResult{
		Success:    true,
		SessionID:  sessionID,
		Query:      query,
		Sources:    sources,
		Report:     report,
		NumSources: len(sources),
	}
}

// AnalyzeDocumentTask runs a task against a session's stored document,
// augmented with a small set of supplementary web sources. The error return
// wraps model.ErrNotFound when the session is unknown or holds no document.
func (o *Orchestrator) AnalyzeDocumentTask(ctx context.Context, task, sessionID string) (*model.WorkflowResult, error) {
	sess, err := o.sessions.Retrieve(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Document == nil {
		return nil, fmt.Errorf("session %s has no stored document: %w", sessionID, model.ErrNotFound)
	}
	doc := sess.Document
	log := o.log.With().Str("session_id", sessionID).Str("document", doc.Name).Logger()

	plan := o.planOrDefault(ctx, task)

	sources := []model.Source{documentSource(doc)}
	sctx, cancel := o.callCtx(ctx)
	supplementary, err := o.provider.Search(sctx, agents.RefineQuery(task, plan.FocusAreas), supplementarySourceCount)
	cancel()
	if err != nil {
		log.Warn().Err(err).Msg("supplementary retrieval failed, analyzing document alone")
	} else {
		sources = append(sources, supplementary...)
	}

	yctx, cancel := o.callCtx(ctx)
	report, err := o.synth.Synthesize(yctx, task, sources, []string{"Document: " + doc.Name})
	cancel()
	if err != nil {
		log.Error().Err(err).Msg("document task synthesis failed")
		return o.failed(task, sessionID, fmt.Errorf("synthesis: %w", err)), nil
	}

	if err := o.sessions.Store(ctx, sessionID, model.TurnData{
		Query:   task,
		Plan:    plan,
		Sources: sources,
		Report:  report,
	}); err != nil {
		log.Error().Err(err).Msg("failed to persist document task turn")
		return o.failed(task, sessionID, fmt.Errorf("persist turn: %w", err)), nil
	}

	return &model.WorkflowResult{
		Success:    true,
		SessionID:  sessionID,
		Query:      task,
		Plan:       plan,
		Sources:    sources,
		Report:     report,
		NumSources: len(sources),
	}, nil
}

// documentSource wraps an uploaded document as a synthetic source the
// synthesizer can cite. The uploaded:// scheme marks it as non-web.
func documentSource(doc *model.Document) model.Source {
	text := doc.Text
	if len(text) > docSnippetLimit {
		text = text[:docSnippetLimit]
	}
	return model.Source{
		Title:        doc.Name,
		URL:          "uploaded://" + doc.Name,
		Snippet:      text,
		SourceDomain: "uploaded document",
	}
}

// planOrDefault absorbs planner failure by substituting the default plan.
func (o *Orchestrator) planOrDefault(ctx context.Context, query string) *model.Plan {
	pctx, cancel := o.callCtx(ctx)
	defer cancel()

	plan, err := o.planner.Plan(pctx, query)
	if err != nil {
		o.log.Warn().Err(err).Msg("planning failed, using default plan")
		fallback := model.DefaultPlan(query)
		fallback.NumSources = o.defaultNum
		return fallback
	}
	return plan
}

func (o *Orchestrator) failed(query, sessionID string, err error) *model.WorkflowResult {
	return &model.WorkflowResult{
		SessionID: sessionID,
		Query:     query,
		Sources:   []model.Source{},
		Error:     err.Error(),
	}
}
