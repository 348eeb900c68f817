package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lorekeep/lorekeep-research/internal/model"
)

const maxKeyFindings = 7

// ReportSynthesizer turns a source list into a structured report with
// citations aligned to the sources.
type ReportSynthesizer struct {
	gen TextGenerator
	log zerolog.Logger
}

var _ Synthesizer = (*ReportSynthesizer)(nil)

func NewReportSynthesizer(gen TextGenerator, log zerolog.Logger) *ReportSynthesizer {
	return &ReportSynthesizer{gen: gen, log: log}
}

const synthesisPromptTmpl = `Create a comprehensive research report for the query: "%s"

Sources:
%s
%s
Structure the report exactly as:

EXECUTIVE SUMMARY:
A concise overview of the findings (2-4 sentences).

KEY FINDINGS:
- First finding
- Second finding
(one finding per line, each starting with a dash)

CONCLUSION:
Closing synthesis of what the sources establish (2-3 sentences).

Base every statement on the sources above. Do not invent facts.`

// Synthesize produces a report from the sources. An empty source list yields
// the canonical empty report without a model call. Hints carry auxiliary
// context lines such as the previous query on a follow-up.
func (s *ReportSynthesizer) Synthesize(ctx context.Context, query string, sources []model.Source, hints []string) (*model.Report, error) {
	if len(sources) == 0 {
		s.log.Warn().Str("query", query).Msg("no sources to synthesize")
		return model.EmptySourceReport(), nil
	}

	var sb strings.Builder
	for i, src := range sources {
		fmt.Fprintf(&sb, "[Source %d] %s (%s)\n%s\n\n", i+1, src.Title, src.URL, src.Snippet)
	}

	extra := ""
	if len(hints) > 0 {
		extra = "\nAdditional Context:\n" + strings.Join(hints, "\n") + "\n"
	}

	reply, err := s.gen.Generate(ctx, fmt.Sprintf(synthesisPromptTmpl, query, sb.String(), extra))
	if err != nil {
		return nil, fmt.Errorf("synthesize report: %w", err)
	}

	report := StructureReport(reply)
	if len(report.KeyFindings) == 0 {
		report.KeyFindings = s.extractFindings(ctx, reply)
	}
	report.Citations = FormatCitations(sources)

	s.log.Info().
		Int("findings", len(report.KeyFindings)).
		Int("citations", len(report.Citations)).
		Msg("report synthesized")
	return report, nil
}

const findingsPromptTmpl = `Extract up to 5 key findings from the following research text.
Return one finding per line, each starting with a dash. No other text.

%s`

// extractFindings is a second-chance pass when the structured reply carried
// no parseable findings. A failure here degrades to an empty list rather
// than failing the whole synthesis.
func (s *ReportSynthesizer) extractFindings(ctx context.Context, text string) []string {
	reply, err := s.gen.Generate(ctx, fmt.Sprintf(findingsPromptTmpl, text))
	if err != nil {
		s.log.Warn().Err(err).Msg("findings extraction failed")
		return nil
	}
	var findings []string
	for _, line := range strings.Split(reply, "\n") {
		if f, ok := bulletText(line); ok {
			findings = append(findings, f)
		}
		if len(findings) == 5 {
			break
		}
	}
	return findings
}

// StructureReport splits a model reply into summary, findings, and
// conclusion by section headers. Text before any recognized header counts
// toward the summary.
func StructureReport(text string) *model.Report {
	report := &model.Report{}
	section := "summary"
	var summary, conclusion []string

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "EXECUTIVE SUMMARY"):
			section = "summary"
			continue
		case strings.HasPrefix(upper, "KEY FINDINGS"):
			section = "findings"
			continue
		case strings.HasPrefix(upper, "CONCLUSION"):
			section = "conclusion"
			continue
		}
		if line == "" {
			continue
		}
		switch section {
		case "summary":
			summary = append(summary, line)
		case "findings":
			if f, ok := bulletText(line); ok && len(report.KeyFindings) < maxKeyFindings {
				report.KeyFindings = append(report.KeyFindings, f)
			}
		case "conclusion":
			conclusion = append(conclusion, line)
		}
	}

	report.Summary = strings.Join(summary, " ")
	report.Conclusion = strings.Join(conclusion, " ")
	return report
}

// bulletText strips a leading bullet or "1." style marker. The second return
// reports whether the line looked like a list item.
func bulletText(line string) (string, bool) {
	line = strings.TrimSpace(line)
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	// numbered items such as "1. finding"
	if idx := strings.Index(line, ". "); idx > 0 && idx <= 2 {
		numeric := true
		for _, r := range line[:idx] {
			if r < '0' || r > '9' {
				numeric = false
				break
			}
		}
		if numeric {
			return strings.TrimSpace(line[idx+2:]), true
		}
	}
	return "", false
}

// FormatCitations builds one citation per source, numbered from 1 in source
// order.
func FormatCitations(sources []model.Source) []model.Citation {
	citations := make([]model.Citation, 0, len(sources))
	for i, src := range sources {
		domain := src.SourceDomain
		if domain == "" {
			domain = ExtractDomain(src.URL)
		}
		citations = append(citations, model.Citation{
			Number:       i + 1,
			Title:        src.Title,
			URL:          src.URL,
			SourceDomain: domain,
			APA:          fmt.Sprintf("%s. (n.d.). %s. Retrieved from %s", src.Title, domain, src.URL),
		})
	}
	return citations
}
