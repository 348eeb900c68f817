package agents

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorekeep/lorekeep-research/internal/model"
)

// fakeGenerator replays scripted replies in order. A nil entry means that
// call fails.
type fakeGenerator struct {
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", errors.New("fakeGenerator: no scripted reply")
}

func TestParsePlan(t *testing.T) {
	plan := ParsePlan(`STRATEGY: survey recent peer-reviewed work
NUM_SOURCES: 4
FOCUS_AREAS: efficacy, safety, cost
SEARCH_TERMS: mRNA vaccine efficacy, mRNA vaccine safety`)

	assert.Equal(t, "survey recent peer-reviewed work", plan.Strategy)
	assert.Equal(t, 4, plan.NumSources)
	assert.Equal(t, []string{"efficacy", "safety", "cost"}, plan.FocusAreas)
	assert.Equal(t, []string{"mRNA vaccine efficacy", "mRNA vaccine safety"}, plan.SearchTerms)
}

func TestParsePlanClampsAndDefaults(t *testing.T) {
	plan := ParsePlan("STRATEGY: broad sweep\nNUM_SOURCES: 15 sources")
	assert.Equal(t, 10, plan.NumSources, "values above the cap clamp to 10")

	plan = ParsePlan("STRATEGY: x\nNUM_SOURCES: none really")
	assert.Equal(t, 5, plan.NumSources, "unparsable count keeps the default")

	plan = ParsePlan("complete nonsense with no sections")
	assert.Empty(t, plan.Strategy)
	assert.Equal(t, 5, plan.NumSources)
	assert.Empty(t, plan.FocusAreas)
	assert.Empty(t, plan.SearchTerms)
}

func TestClampNumSources(t *testing.T) {
	assert.Equal(t, 1, ClampNumSources(0))
	assert.Equal(t, 1, ClampNumSources(-3))
	assert.Equal(t, 7, ClampNumSources(7))
	assert.Equal(t, 10, ClampNumSources(25))
}

func TestRefineQuery(t *testing.T) {
	assert.Equal(t, "solar power", RefineQuery("solar power", nil))
	got := RefineQuery("solar power", []string{"storage", "grid", "policy"})
	assert.Equal(t, "solar power storage grid", got, "only the top two focus areas are appended")
}

func TestPlannerSetsOriginalQuery(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"STRATEGY: targeted review\nNUM_SOURCES: 3"}}
	p := NewStrategyPlanner(gen, zerolog.Nop())

	plan, err := p.Plan(context.Background(), "quantum error correction")
	require.NoError(t, err)
	assert.Equal(t, "quantum error correction", plan.OriginalQuery)
	assert.Equal(t, "targeted review", plan.Strategy)
	assert.Equal(t, 3, plan.NumSources)
}

func TestPlannerErrorsWithoutStrategy(t *testing.T) {
	p := NewStrategyPlanner(&fakeGenerator{replies: []string{"I cannot help with that."}}, zerolog.Nop())
	if _, err := p.Plan(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for a reply with no STRATEGY line")
	}

	p = NewStrategyPlanner(&fakeGenerator{errs: []error{errors.New("overloaded")}}, zerolog.Nop())
	if _, err := p.Plan(context.Background(), "anything"); err == nil {
		t.Fatal("expected generator error to propagate")
	}
}

func TestSearchLiveTier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/customsearch/v1", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.Equal(t, "test-cx", r.URL.Query().Get("cx"))
		// Mislabeled on purpose: the JSON body must decode regardless of
		// what content type the server claims.
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, `{"items":[
			{"title":"Ocean Currents","link":"https://www.noaa.gov/currents","snippet":"How currents move heat."},
			{"title":"","link":"https://example.org/a","snippet":""}
		]}`)
	}))
	defer srv.Close()

	s := NewWebSearcher(srv.URL, "test-key", "test-cx", nil, zerolog.Nop())
	sources, err := s.Search(context.Background(), "ocean currents", 2)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "Ocean Currents", sources[0].Title)
	assert.Equal(t, "noaa.gov", sources[0].SourceDomain, "www. prefix is stripped")
	assert.Equal(t, "Untitled", sources[1].Title)
	assert.Equal(t, "No description available", sources[1].Snippet)
}

func TestSearchDegradesToGenerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	gen := &fakeGenerator{replies: []string{"```json\n[{\"title\":\"Deep Dive\",\"url\":\"https://mit.edu/dive\",\"snippet\":\"A study.\",\"source\":\"\"}]\n```"}}
	s := NewWebSearcher(srv.URL, "key", "cx", gen, zerolog.Nop())

	sources, err := s.Search(context.Background(), "deep learning", 3)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "Deep Dive", sources[0].Title)
	assert.Equal(t, "mit.edu", sources[0].SourceDomain, "missing domain is derived from the URL")
	assert.Equal(t, 1, gen.calls)
}

func TestSearchStaticFallback(t *testing.T) {
	gen := &fakeGenerator{errs: []error{errors.New("down")}}
	s := NewWebSearcher("http://127.0.0.1:0", "", "", gen, zerolog.Nop())

	sources, err := s.Search(context.Background(), "plate tectonics", 10)
	require.NoError(t, err)
	require.Len(t, sources, 6, "static tier is capped by the reference domain list")

	assert.Equal(t, "Research on plate tectonics - Source 1", sources[0].Title)
	assert.Equal(t, "https://wikipedia.org/search?q=plate+tectonics", sources[0].URL)
	assert.Equal(t, "wikipedia.org", sources[0].SourceDomain)
	assert.Equal(t, "scholar.google.com", sources[5].SourceDomain)
}

func TestStructureReport(t *testing.T) {
	report := StructureReport(`EXECUTIVE SUMMARY:
Coral reefs are declining. Warming is the main driver.

KEY FINDINGS:
- Bleaching events have tripled
* Acidification slows calcification
1. Recovery windows are shrinking

CONCLUSION:
Mitigation must pair local and global action.`)

	assert.Equal(t, "Coral reefs are declining. Warming is the main driver.", report.Summary)
	require.Len(t, report.KeyFindings, 3)
	assert.Equal(t, "Bleaching events have tripled", report.KeyFindings[0])
	assert.Equal(t, "Acidification slows calcification", report.KeyFindings[1])
	assert.Equal(t, "Recovery windows are shrinking", report.KeyFindings[2])
	assert.Equal(t, "Mitigation must pair local and global action.", report.Conclusion)
}

func TestStructureReportCapsFindings(t *testing.T) {
	var lines []string
	for i := 0; i < 12; i++ {
		lines = append(lines, fmt.Sprintf("- finding %d", i))
	}
	report := StructureReport("KEY FINDINGS:\n" + strings.Join(lines, "\n"))
	assert.Len(t, report.KeyFindings, maxKeyFindings)
}

func TestSynthesizeEmptySources(t *testing.T) {
	gen := &fakeGenerator{}
	s := NewReportSynthesizer(gen, zerolog.Nop())

	report, err := s.Synthesize(context.Background(), "anything", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, model.NoSourcesSummary, report.Summary)
	assert.Zero(t, gen.calls, "empty sources must not invoke the model")
}

func TestSynthesizeCitationsAlignWithSources(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		"EXECUTIVE SUMMARY:\nTwo sources agree.\nKEY FINDINGS:\n- It works\nCONCLUSION:\nDone.",
	}}
	s := NewReportSynthesizer(gen, zerolog.Nop())

	sources := []model.Source{
		{Title: "First", URL: "https://a.edu/x", SourceDomain: "a.edu"},
		{Title: "Second", URL: "https://www.b.org/y"},
	}
	report, err := s.Synthesize(context.Background(), "q", sources, []string{"Previous query: old topic"})
	require.NoError(t, err)

	require.Len(t, report.Citations, len(sources))
	assert.Equal(t, 1, report.Citations[0].Number)
	assert.Equal(t, 2, report.Citations[1].Number)
	assert.Equal(t, "b.org", report.Citations[1].SourceDomain)
	assert.Equal(t, "First. (n.d.). a.edu. Retrieved from https://a.edu/x", report.Citations[0].APA)
	assert.Contains(t, gen.prompts[0], "Previous query: old topic")
	assert.Contains(t, gen.prompts[0], "[Source 2] Second")
}

func TestSynthesizeFindingsSecondPass(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		"EXECUTIVE SUMMARY:\nProse only, no bullets anywhere.",
		"- recovered finding one\n- recovered finding two",
	}}
	s := NewReportSynthesizer(gen, zerolog.Nop())

	report, err := s.Synthesize(context.Background(), "q", []model.Source{{Title: "T", URL: "https://x.gov/p"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls, "a findings-free reply triggers one extraction call")
	assert.Equal(t, []string{"recovered finding one", "recovered finding two"}, report.KeyFindings)
}

func TestSynthesizeGeneratorError(t *testing.T) {
	s := NewReportSynthesizer(&fakeGenerator{errs: []error{errors.New("quota")}}, zerolog.Nop())
	_, err := s.Synthesize(context.Background(), "q", []model.Source{{Title: "T", URL: "u"}}, nil)
	if err == nil {
		t.Fatal("expected synthesis error to propagate")
	}
}

func TestExtractDomain(t *testing.T) {
	assert.Equal(t, "nature.com", ExtractDomain("https://www.nature.com/articles/x"))
	assert.Equal(t, "arxiv.org", ExtractDomain("http://arxiv.org/abs/1234"))
	assert.Equal(t, "not a url", ExtractDomain("not a url"))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `[{"a":1}]`, StripCodeFence("```json\n[{\"a\":1}]\n```"))
	assert.Equal(t, `[{"a":1}]`, StripCodeFence("```\n[{\"a\":1}]\n```"))
	assert.Equal(t, `[{"a":1}]`, StripCodeFence(`[{"a":1}]`))
}
