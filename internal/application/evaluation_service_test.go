package application

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paperjury/paperjury/internal/domain/ai"
	"github.com/paperjury/paperjury/internal/domain/paper"
	"github.com/paperjury/paperjury/internal/domain/review"
)

type fakeExtractor struct {
	paths []string
	err   error
}

func (f *fakeExtractor) ExtractFile(path string) (paper.Document, error) {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return paper.Document{}, f.err
	}
	return paper.Document{
		Path:   path,
		Title:  "Robust Panel Reviews",
		Text:   "body of " + paper.Stem(path),
		Format: paper.FormatLaTeX,
	}, nil
}

type scriptedGenerator struct {
	results []ai.Result
	calls   []ai.Request
	pauses  int
}

func (g *scriptedGenerator) Generate(_ context.Context, req ai.Request) ai.Result {
	g.calls = append(g.calls, req)
	if len(g.calls) <= len(g.results) {
		return g.results[len(g.calls)-1]
	}
	return ai.TextResult(fmt.Sprintf("generated #%d", len(g.calls)))
}

func (g *scriptedGenerator) Pause(context.Context) { g.pauses++ }

type fakeReviewStore struct {
	reviews   []review.Review
	summaries int
	reviewErr error
}

func (f *fakeReviewStore) SaveReview(doc paper.Document, rev review.Review, _ time.Time) (string, error) {
	if f.reviewErr != nil {
		return "", f.reviewErr
	}
	f.reviews = append(f.reviews, rev)
	return filepath.Join("out", fmt.Sprintf("%s.%s.review.txt", doc.Stem(), rev.Judge.Slug())), nil
}

func (f *fakeReviewStore) SaveSummary(doc paper.Document, _ *review.Set, _ time.Time) (string, error) {
	f.summaries++
	return filepath.Join("out", doc.Stem()+".summary.txt"), nil
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func testJudges() []review.JudgeSpec {
	return []review.JudgeSpec{
		{
			Name:        "Methodologist",
			Model:       "anthropic/claude-3-opus",
			Persona:     "You dissect experimental design.",
			Temperature: floatPtr(0.3),
			MaxTokens:   intPtr(2000),
		},
		{Name: "Statistician"},
		{Name: "Ethicist", Persona: "You check for ethical risks."},
	}
}

func testSettings() RunSettings {
	return RunSettings{
		Model:       "anthropic/claude-3-haiku",
		Temperature: 0.1,
		MaxTokens:   4000,
		Guidelines:  "Assess rigor, novelty, and clarity.",
	}
}

func TestEvaluateAllReviewsEveryJudgeInOrder(t *testing.T) {
	extractor := &fakeExtractor{}
	gen := &scriptedGenerator{results: []ai.Result{
		ai.TextResult("review one"),
		ai.TextResult("review two"),
		ai.TextResult("review three"),
	}}
	store := &fakeReviewStore{}
	svc := NewEvaluationService(extractor, gen, store, testJudges(), testSettings(), nil)

	report, err := svc.EvaluateAll(context.Background(), "paper.tex")
	if err != nil {
		t.Fatalf("EvaluateAll failed: %v", err)
	}

	if report.Reviews.Len() != 3 {
		t.Fatalf("expected 3 reviews, got %d", report.Reviews.Len())
	}
	wantTexts := []string{"review one", "review two", "review three"}
	wantJudges := []string{"Methodologist", "Statistician", "Ethicist"}
	for i, r := range report.Reviews.All() {
		if r.Judge.Name != wantJudges[i] {
			t.Errorf("review %d: judge = %q, want %q", i, r.Judge.Name, wantJudges[i])
		}
		if r.Text != wantTexts[i] {
			t.Errorf("review %d: text = %q, want %q", i, r.Text, wantTexts[i])
		}
		if r.Diagnostic {
			t.Errorf("review %d unexpectedly diagnostic", i)
		}
	}

	if gen.pauses != 2 {
		t.Errorf("pauses = %d, want 2 for 3 calls", gen.pauses)
	}
	if len(gen.calls) != 3 {
		t.Fatalf("generator calls = %d, want 3", len(gen.calls))
	}

	first := gen.calls[0]
	if first.Model != "anthropic/claude-3-opus" {
		t.Errorf("judge model override not applied: %q", first.Model)
	}
	if first.Temperature != 0.3 || first.MaxTokens != 2000 {
		t.Errorf("judge overrides not applied: temp=%v tokens=%v", first.Temperature, first.MaxTokens)
	}
	if first.Persona != "Methodologist" {
		t.Errorf("prompt-log persona = %q, want judge name", first.Persona)
	}
	if !strings.Contains(first.Prompt, "REVIEWER IDENTITY:") {
		t.Error("persona judge prompt missing identity section")
	}
	if !strings.Contains(first.Prompt, "Assess rigor, novelty, and clarity.") {
		t.Error("prompt missing guidelines text")
	}

	second := gen.calls[1]
	if second.Model != "anthropic/claude-3-haiku" {
		t.Errorf("default model not applied: %q", second.Model)
	}
	if second.Temperature != 0.1 || second.MaxTokens != 4000 {
		t.Errorf("default settings not applied: temp=%v tokens=%v", second.Temperature, second.MaxTokens)
	}
	if second.Persona != "" {
		t.Errorf("personaless judge carries persona %q", second.Persona)
	}
	if strings.Contains(second.Prompt, "REVIEWER IDENTITY:") {
		t.Error("personaless judge prompt has identity section")
	}

	if len(report.ReviewPaths) != 3 {
		t.Errorf("review paths = %d, want 3", len(report.ReviewPaths))
	}
	if report.SummaryPath == "" {
		t.Error("summary path empty for multi-judge panel")
	}
	if store.summaries != 1 {
		t.Errorf("summaries written = %d, want 1", store.summaries)
	}
}

func TestEvaluateAllContinuesPastDiagnostic(t *testing.T) {
	gen := &scriptedGenerator{results: []ai.Result{
		ai.TextResult("review one"),
		ai.DiagnosticResult(ai.KindRateLimited, ""),
		ai.TextResult("review three"),
	}}
	store := &fakeReviewStore{}
	svc := NewEvaluationService(&fakeExtractor{}, gen, store, testJudges(), testSettings(), nil)

	report, err := svc.EvaluateAll(context.Background(), "paper.tex")
	if err != nil {
		t.Fatalf("EvaluateAll failed: %v", err)
	}

	reviews := report.Reviews.All()
	if !reviews[1].Diagnostic {
		t.Error("rate-limited judge not marked diagnostic")
	}
	want := "API Error (429): Rate Limited - too many requests. Try increasing api_delay in your config."
	if reviews[1].Text != want {
		t.Errorf("diagnostic text = %q, want %q", reviews[1].Text, want)
	}
	if reviews[0].Diagnostic || reviews[2].Diagnostic {
		t.Error("healthy reviews marked diagnostic")
	}
	if len(store.reviews) != 3 {
		t.Errorf("saved reviews = %d, want all 3 including the diagnostic", len(store.reviews))
	}
	if report.Reviews.Diagnostics() != 1 {
		t.Errorf("diagnostics = %d, want 1", report.Reviews.Diagnostics())
	}
	if gen.pauses != 2 {
		t.Errorf("pauses = %d, want 2; a diagnostic must not change pacing", gen.pauses)
	}
}

func TestEvaluateJudgeSelectsByNameCaseInsensitive(t *testing.T) {
	gen := &scriptedGenerator{results: []ai.Result{ai.TextResult("solo review")}}
	store := &fakeReviewStore{}
	svc := NewEvaluationService(&fakeExtractor{}, gen, store, testJudges(), testSettings(), nil)

	report, err := svc.EvaluateJudge(context.Background(), "paper.tex", "statistician")
	if err != nil {
		t.Fatalf("EvaluateJudge failed: %v", err)
	}

	if report.Reviews.Len() != 1 {
		t.Fatalf("reviews = %d, want 1", report.Reviews.Len())
	}
	if got := report.Reviews.All()[0].Judge.Name; got != "Statistician" {
		t.Errorf("judge = %q, want Statistician", got)
	}
	if gen.pauses != 0 {
		t.Errorf("pauses = %d, want 0 for a single call", gen.pauses)
	}
	if report.SummaryPath != "" || store.summaries != 0 {
		t.Error("single-judge run wrote a summary")
	}
}

func TestEvaluateJudgeUnknown(t *testing.T) {
	gen := &scriptedGenerator{}
	extractor := &fakeExtractor{}
	svc := NewEvaluationService(extractor, gen, &fakeReviewStore{}, testJudges(), testSettings(), nil)

	_, err := svc.EvaluateJudge(context.Background(), "paper.tex", "Reviewer 2")
	if !errors.Is(err, ErrUnknownJudge) {
		t.Fatalf("expected ErrUnknownJudge, got %v", err)
	}
	if !strings.Contains(err.Error(), "Reviewer 2") {
		t.Errorf("error does not name the judge: %v", err)
	}
	if len(gen.calls) != 0 || len(extractor.paths) != 0 {
		t.Error("unknown judge still triggered work")
	}
}

func TestEvaluateAllSingleJudgeSkipsSummary(t *testing.T) {
	store := &fakeReviewStore{}
	judges := []review.JudgeSpec{{Name: "Methodologist"}}
	svc := NewEvaluationService(&fakeExtractor{}, &scriptedGenerator{}, store, judges, testSettings(), nil)

	report, err := svc.EvaluateAll(context.Background(), "paper.tex")
	if err != nil {
		t.Fatalf("EvaluateAll failed: %v", err)
	}
	if report.SummaryPath != "" || store.summaries != 0 {
		t.Error("single-judge panel wrote a summary")
	}
}

func TestEvaluateAllStopsOnPersistFailure(t *testing.T) {
	gen := &scriptedGenerator{}
	store := &fakeReviewStore{reviewErr: errors.New("disk full")}
	svc := NewEvaluationService(&fakeExtractor{}, gen, store, testJudges(), testSettings(), nil)

	_, err := svc.EvaluateAll(context.Background(), "paper.tex")
	if err == nil {
		t.Fatal("expected persistence failure to surface")
	}
	if !strings.Contains(err.Error(), "save review for Methodologist") {
		t.Errorf("error does not name the failing judge: %v", err)
	}
	if len(gen.calls) != 1 {
		t.Errorf("generator calls = %d, want 1; batch must stop on local failure", len(gen.calls))
	}
}

func TestEvaluateAllExtractionFailure(t *testing.T) {
	extractor := &fakeExtractor{err: fmt.Errorf("%w: paper.tex", paper.ErrNotFound)}
	gen := &scriptedGenerator{}
	svc := NewEvaluationService(extractor, gen, &fakeReviewStore{}, testJudges(), testSettings(), nil)

	_, err := svc.EvaluateAll(context.Background(), "paper.tex")
	if !errors.Is(err, paper.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(gen.calls) != 0 {
		t.Error("extraction failure still reached the generator")
	}
}
