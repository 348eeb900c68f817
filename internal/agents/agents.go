// Package agents holds the three workflow collaborators: the planner that
// turns a query into a strategy, the source provider that retrieves
// candidate references, and the synthesizer that writes the report. The
// orchestrator depends only on the interfaces here; provider internals
// (model choice, search backends, fallback tiers) stay invisible to it.
package agents

import (
	"context"

	"github.com/lorekeep/lorekeep-research/internal/model"
)

// Planner converts a raw query into a research strategy.
type Planner interface {
	Plan(ctx context.Context, query string) (*model.Plan, error)
}

// SourceProvider returns a ranked list of sources for a query. numResults
// is a desired count in [1,10]; implementations may return fewer.
type SourceProvider interface {
	Search(ctx context.Context, query string, numResults int) ([]model.Source, error)
}

// Synthesizer turns a query, a source set, and free-text hints into a
// structured report.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, sources []model.Source, hints []string) (*model.Report, error)
}

// TextGenerator is the single-prompt text generation primitive backing the
// Gemini-based collaborator implementations. Tests substitute fakes.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
