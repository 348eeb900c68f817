package model

import "time"

// Source is a candidate reference returned by the source provider.
// URL must be non-empty for citation generation; synthetic and
// document-derived sources use sentinel schemes (e.g. uploaded://).
type Source struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	Snippet      string `json:"snippet"`
	SourceDomain string `json:"source"`
}

// Plan is the strategy record produced by the planner.
type Plan struct {
	Strategy      string   `json:"strategy"`
	NumSources    int      `json:"numSources"`
	FocusAreas    []string `json:"focusAreas"`
	SearchTerms   []string `json:"searchTerms"`
	OriginalQuery string   `json:"originalQuery,omitempty"`
}

// Citation is one formatted reference; Number is the 1-based position of
// the cited source in the turn's source list.
type Citation struct {
	Number       int    `json:"number"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	SourceDomain string `json:"source"`
	APA          string `json:"apaFormat"`
}

// Report is the structured synthesis output for one turn.
type Report struct {
	Summary     string     `json:"summary"`
	KeyFindings []string   `json:"keyFindings"`
	Conclusion  string     `json:"conclusion,omitempty"`
	Citations   []Citation `json:"citations"`
}

// Turn is one stored unit of workflow output within a session.
// Plan is nil for follow-ups and document analyses.
type Turn struct {
	Query     string    `json:"query,omitempty"`
	Plan      *Plan     `json:"plan,omitempty"`
	Sources   []Source  `json:"sources,omitempty"`
	Report    *Report   `json:"report,omitempty"`
	Document  *Document `json:"document,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Document carries the fields of an uploaded document stored in a session.
type Document struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Text string `json:"text"`
	Task string `json:"task,omitempty"`
}

// TurnData is the payload accepted by Store.Store: the recognized fields of
// one turn, plus Extra for forward-compatible keys. Zero-valued fields are
// not merged into the session context.
type TurnData struct {
	Query    string
	Plan     *Plan
	Sources  []Source
	Report   *Report
	Document *Document
	Extra    map[string]any
}

// Context is the flattened latest-wins view of a session's fields, distinct
// from its turn history. Follow-up synthesis reads the latest known sources
// and query from here rather than replaying turns.
type Context struct {
	Query    string         `json:"query,omitempty"`
	Plan     *Plan          `json:"plan,omitempty"`
	Sources  []Source       `json:"sources,omitempty"`
	Report   *Report        `json:"report,omitempty"`
	Document *Document      `json:"document,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// QueryRecord pairs a stored query with the time it was recorded.
type QueryRecord struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionSummary is the enumeration row returned by Store.List.
type SessionSummary struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
	TurnCount      int       `json:"turnCount"`
}

// WorkflowResult is the outcome of one research or follow-up invocation.
// Failed invocations carry Success=false and Error; they are never surfaced
// as bare Go errors to callers.
type WorkflowResult struct {
	Success    bool     `json:"success"`
	SessionID  string   `json:"sessionId,omitempty"`
	Query      string   `json:"query"`
	Plan       *Plan    `json:"plan,omitempty"`
	Sources    []Source `json:"sources"`
	Report     *Report  `json:"report,omitempty"`
	NumSources int      `json:"numSources"`
	IsFollowUp bool     `json:"isFollowUp,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// NoSourcesSummary is the fixed summary of the terminal report produced when
// retrieval yields an empty source set.
const NoSourcesSummary = "No sources available for research."

// EmptySourceReport returns the terminal report for an empty source set.
func EmptySourceReport() *Report {
	return &Report{
		Summary:     NoSourcesSummary,
		KeyFindings: []string{},
		Citations:   []Citation{},
	}
}

// DefaultPlan is the substitute used when planning fails; planning failure
// is recoverable by policy, not by retry.
func DefaultPlan(query string) *Plan {
	return &Plan{
		Strategy:      "comprehensive web research",
		NumSources:    5,
		FocusAreas:    []string{query},
		SearchTerms:   []string{query},
		OriginalQuery: query,
	}
}
