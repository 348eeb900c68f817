package agents

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lorekeep/lorekeep-research/internal/model"
)

// StrategyPlanner analyzes a query with a text model and returns a research
// strategy. Failures here are recoverable: the orchestrator substitutes
// model.DefaultPlan rather than aborting the workflow.
type StrategyPlanner struct {
	gen TextGenerator
	log zerolog.Logger
}

var _ Planner = (*StrategyPlanner)(nil)

// NewStrategyPlanner wires a text generator into a planner.
func NewStrategyPlanner(gen TextGenerator, log zerolog.Logger) *StrategyPlanner {
	return &StrategyPlanner{gen: gen, log: log}
}

const planningPromptTmpl = `You are a research coordinator. Analyze this research query and create a plan.

Query: "%s"

Provide a structured research plan in the following format:

STRATEGY: [Brief description of research approach]
NUM_SOURCES: [Recommended number: 3-10]
FOCUS_AREAS: [List 2-4 key aspects to research]
SEARCH_TERMS: [List 3-5 optimized search terms]

Be concise and strategic.`

// Plan generates and parses a strategy for the query.
func (p *StrategyPlanner) Plan(ctx context.Context, query string) (*model.Plan, error) {
	reply, err := p.gen.Generate(ctx, fmt.Sprintf(planningPromptTmpl, query))
	if err != nil {
		return nil, fmt.Errorf("planning: %w", err)
	}

	plan := ParsePlan(reply)
	if plan.Strategy == "" {
		return nil, fmt.Errorf("planning: reply carried no strategy")
	}
	plan.OriginalQuery = query

	p.log.Info().Str("strategy", plan.Strategy).Int("num_sources", plan.NumSources).Msg("created research plan")
	return plan, nil
}

var firstNumberRx = regexp.MustCompile(`\d+`)

// ParsePlan extracts the structured plan from a model reply. Unrecognized
// lines are ignored; a missing or unparsable NUM_SOURCES falls back to 5,
// and parsed values are clamped to [1,10].
func ParsePlan(text string) *model.Plan {
	plan := &model.Plan{NumSources: 5, FocusAreas: []string{}, SearchTerms: []string{}}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "STRATEGY:"):
			plan.Strategy = strings.TrimSpace(strings.TrimPrefix(line, "STRATEGY:"))
		case strings.HasPrefix(line, "NUM_SOURCES:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "NUM_SOURCES:"))
			if m := firstNumberRx.FindString(raw); m != "" {
				if n, err := strconv.Atoi(m); err == nil {
					plan.NumSources = ClampNumSources(n)
				}
			}
		case strings.HasPrefix(line, "FOCUS_AREAS:"):
			plan.FocusAreas = splitList(strings.TrimPrefix(line, "FOCUS_AREAS:"))
		case strings.HasPrefix(line, "SEARCH_TERMS:"):
			plan.SearchTerms = splitList(strings.TrimPrefix(line, "SEARCH_TERMS:"))
		}
	}
	return plan
}

// ClampNumSources bounds a requested source count to the supported [1,10].
func ClampNumSources(n int) int {
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}

// RefineQuery appends the top two focus areas to the query to sharpen
// retrieval. An empty focus list leaves the query untouched.
func RefineQuery(query string, focusAreas []string) string {
	if len(focusAreas) == 0 {
		return query
	}
	top := focusAreas
	if len(top) > 2 {
		top = top[:2]
	}
	return query + " " + strings.Join(top, " ")
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
