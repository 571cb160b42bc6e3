package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paperjury/paperjury/internal/domain/ai"
	"github.com/paperjury/paperjury/internal/domain/paper"
	"github.com/paperjury/paperjury/internal/domain/review"
)

// ErrUnknownJudge is returned when a requested judge is not configured.
var ErrUnknownJudge = errors.New("unknown judge")

// ReviewStore persists review artifacts next to the paper.
type ReviewStore interface {
	SaveReview(doc paper.Document, rev review.Review, now time.Time) (string, error)
	SaveSummary(doc paper.Document, set *review.Set, now time.Time) (string, error)
}

// EvaluationReport is the outcome of a review run: the extracted document,
// every review collected (diagnostics included), and where they were written.
type EvaluationReport struct {
	Doc         paper.Document
	Reviews     *review.Set
	ReviewPaths []string
	SummaryPath string
}

// EvaluationService runs a panel of judges over a paper.
type EvaluationService struct {
	extractor Extractor
	generator ai.Generator
	store     ReviewStore
	judges    []review.JudgeSpec
	settings  RunSettings
	progress  ProgressFunc
	now       func() time.Time
}

// NewEvaluationService creates an evaluation service. progress may be nil.
func NewEvaluationService(
	extractor Extractor,
	generator ai.Generator,
	store ReviewStore,
	judges []review.JudgeSpec,
	settings RunSettings,
	progress ProgressFunc,
) *EvaluationService {
	if progress == nil {
		progress = func(string, ...any) {}
	}
	return &EvaluationService{
		extractor: extractor,
		generator: generator,
		store:     store,
		judges:    judges,
		settings:  settings,
		progress:  progress,
		now:       time.Now,
	}
}

// EvaluateAll reviews the paper with every configured judge, in
// configuration order. API failures become diagnostic reviews and do not
// stop the panel; persistence failures do.
func (s *EvaluationService) EvaluateAll(ctx context.Context, path string) (*EvaluationReport, error) {
	return s.evaluate(ctx, path, s.judges)
}

// EvaluateJudge reviews the paper with the single named judge. The name is
// matched case-insensitively against the configured panel.
func (s *EvaluationService) EvaluateJudge(ctx context.Context, path, judgeName string) (*EvaluationReport, error) {
	for _, j := range s.judges {
		if strings.EqualFold(j.Name, judgeName) {
			return s.evaluate(ctx, path, []review.JudgeSpec{j})
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownJudge, judgeName)
}

func (s *EvaluationService) evaluate(ctx context.Context, path string, judges []review.JudgeSpec) (*EvaluationReport, error) {
	doc, err := s.extractor.ExtractFile(path)
	if err != nil {
		return nil, err
	}
	s.progress("Reviewing %q (%d judge(s))", doc.Title, len(judges))

	clean := paper.Normalize(doc.Text)
	paced := newPacedGenerator(s.generator)
	report := &EvaluationReport{Doc: doc, Reviews: &review.Set{}}

	for _, judge := range judges {
		s.progress("  %s is reviewing...", judge.Name)
		res := paced.generate(ctx, reviewRequest(doc, clean, judge, s.settings))
		rev := review.Review{Judge: judge, Text: res.Output(), Diagnostic: !res.OK()}
		report.Reviews.Add(rev)

		reviewPath, err := s.store.SaveReview(doc, rev, s.now())
		if err != nil {
			return nil, fmt.Errorf("save review for %s: %w", judge.Name, err)
		}
		report.ReviewPaths = append(report.ReviewPaths, reviewPath)
		if rev.Diagnostic {
			s.progress("  %s could not review: %s", judge.Name, rev.Text)
		} else {
			s.progress("  %s done -> %s", judge.Name, reviewPath)
		}
	}

	if report.Reviews.Len() > 1 {
		summaryPath, err := s.store.SaveSummary(doc, report.Reviews, s.now())
		if err != nil {
			return nil, fmt.Errorf("save summary: %w", err)
		}
		report.SummaryPath = summaryPath
		s.progress("Summary -> %s", summaryPath)
	}
	return report, nil
}
