// Package application wires the pipeline together: extract a paper,
// build prompts, call the generation API, persist what comes back.
package application

import (
	"context"

	"github.com/paperjury/paperjury/internal/domain/ai"
	"github.com/paperjury/paperjury/internal/domain/paper"
	"github.com/paperjury/paperjury/internal/domain/prompt"
	"github.com/paperjury/paperjury/internal/domain/review"
)

// Extractor turns a paper file into a document.
type Extractor interface {
	ExtractFile(path string) (paper.Document, error)
}

// ProgressFunc receives one-line progress updates as a run advances.
type ProgressFunc func(format string, args ...any)

// RunSettings are the generation defaults for a run. Judges may override
// model, temperature, and token limit individually.
type RunSettings struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Guidelines  string
}

func modelFor(judge review.JudgeSpec, s RunSettings) string {
	if judge.Model != "" {
		return judge.Model
	}
	return s.Model
}

// reviewRequest assembles the generation request for one judge's review.
// Judge overrides beat run settings. Reviews read the cleaned text; the raw
// source is reserved for revision prompts.
func reviewRequest(doc paper.Document, clean string, judge review.JudgeSpec, s RunSettings) ai.Request {
	req := ai.Request{
		Prompt: prompt.Evaluation(prompt.EvaluationParams{
			Title:      doc.Title,
			Text:       clean,
			Persona:    judge.Persona,
			Guidelines: s.Guidelines,
		}),
		Model:       modelFor(judge, s),
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
		Title:       doc.Title,
	}
	if judge.Temperature != nil {
		req.Temperature = *judge.Temperature
	}
	if judge.MaxTokens != nil {
		req.MaxTokens = *judge.MaxTokens
	}
	if judge.Persona != "" {
		req.Persona = judge.Name
	}
	return req
}

// pacedGenerator spaces consecutive generation calls with the generator's
// pause: a run of n calls sleeps exactly n-1 times, and a single call
// never sleeps.
type pacedGenerator struct {
	gen   ai.Generator
	calls int
}

func newPacedGenerator(gen ai.Generator) *pacedGenerator {
	return &pacedGenerator{gen: gen}
}

func (p *pacedGenerator) generate(ctx context.Context, req ai.Request) ai.Result {
	if p.calls > 0 {
		p.gen.Pause(ctx)
	}
	p.calls++
	return p.gen.Generate(ctx, req)
}
