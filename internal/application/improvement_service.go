package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paperjury/paperjury/internal/domain/ai"
	"github.com/paperjury/paperjury/internal/domain/paper"
	"github.com/paperjury/paperjury/internal/domain/prompt"
	"github.com/paperjury/paperjury/internal/domain/review"
	"github.com/paperjury/paperjury/internal/domain/session"
)

// SessionStore persists improvement session artifacts.
type SessionStore interface {
	NewSessionDir(interactive bool, now time.Time) (string, error)
	SavePlan(sessionDir string, round int, plan string, now time.Time) (string, error)
	SaveRevision(sessionDir string, round int, stem, text string) (string, error)
	SaveFinal(sessionDir, stem, sourcePath string) (string, error)
}

// PlanDecision is the user's verdict on a proposed improvement plan.
type PlanDecision int

const (
	PlanAccepted PlanDecision = iota
	PlanRejected
	PlanQuit
)

// Approver gathers the user decisions an interactive session needs. The
// CLI backs it with stdin prompts; tests script it.
type Approver interface {
	// ApprovePlan presents a plan and returns the user's decision.
	ApprovePlan(round int, planPath, plan string) (PlanDecision, error)
	// ContinueRounds asks whether to run another round after a revision.
	ContinueRounds(round int, stats session.ChangeStats) (bool, error)
}

// ImprovementService drives improvement sessions: review the paper, plan
// revisions, apply them, repeat.
type ImprovementService struct {
	extractor Extractor
	generator ai.Generator
	store     SessionStore
	judges    []review.JudgeSpec
	settings  RunSettings
	progress  ProgressFunc
	now       func() time.Time
}

// NewImprovementService creates an improvement service. progress may be nil.
func NewImprovementService(
	extractor Extractor,
	generator ai.Generator,
	store SessionStore,
	judges []review.JudgeSpec,
	settings RunSettings,
	progress ProgressFunc,
) *ImprovementService {
	if progress == nil {
		progress = func(string, ...any) {}
	}
	return &ImprovementService{
		extractor: extractor,
		generator: generator,
		store:     store,
		judges:    judges,
		settings:  settings,
		progress:  progress,
		now:       time.Now,
	}
}

// Run improves the paper for a fixed number of rounds without user
// interaction. Each round re-reads the current paper from disk, collects a
// fresh panel of reviews, plans, and revises. Remote failures flow through
// as diagnostic text in the artifacts; only local failures abort the
// session.
func (s *ImprovementService) Run(ctx context.Context, path string, rounds int) (session.Outcome, error) {
	if rounds < 1 {
		return session.Outcome{}, fmt.Errorf("improvement rounds must be at least 1, got %d", rounds)
	}
	if len(s.judges) == 0 {
		return session.Outcome{}, errors.New("no judges configured")
	}

	lifecycle, err := session.NewLifecycle(session.ModeAutomatic)
	if err != nil {
		return session.Outcome{}, err
	}

	sessionDir, err := s.store.NewSessionDir(false, s.now())
	if err != nil {
		return session.Outcome{}, err
	}
	s.progress("Improvement session: %s", sessionDir)

	paced := newPacedGenerator(s.generator)
	stem := paper.Stem(path)
	current := path

	for round := 1; round <= rounds; round++ {
		s.progress("Round %d of %d", round, rounds)

		doc, err := s.extractor.ExtractFile(current)
		if err != nil {
			return session.Outcome{}, err
		}

		reviews := s.collectReviews(ctx, paced, doc)
		if err := lifecycle.Advance(session.EventReviewsReady); err != nil {
			return session.Outcome{}, err
		}

		plan := paced.generate(ctx, planRequest(doc, reviews, s.settings)).Output()
		planPath, err := s.store.SavePlan(sessionDir, round, plan, s.now())
		if err != nil {
			return session.Outcome{}, err
		}
		s.progress("  plan -> %s", planPath)
		if err := lifecycle.Advance(session.EventPlanReady); err != nil {
			return session.Outcome{}, err
		}

		revPath, stats, err := s.revise(ctx, paced, sessionDir, round, stem, doc, plan)
		if err != nil {
			return session.Outcome{}, err
		}
		s.progress("  revision -> %s (%s)", revPath, stats)
		current = revPath

		next := session.EventFinish
		if round < rounds {
			next = session.EventRevised
		}
		if err := lifecycle.Advance(next); err != nil {
			return session.Outcome{}, err
		}
	}

	finalPath, err := s.store.SaveFinal(sessionDir, stem, current)
	if err != nil {
		return session.Outcome{}, err
	}
	s.progress("Final -> %s", finalPath)

	return session.Outcome{SessionDir: sessionDir, FinalPath: finalPath, Rounds: rounds}, nil
}

// RunInteractive improves the paper with a user in the loop: every plan
// needs approval before it is applied, a rejected plan is regenerated from
// the same round's reviews, and the user decides after each revision
// whether another round runs. Quitting keeps everything written so far and
// reports the latest revision (or the untouched input) as the result.
func (s *ImprovementService) RunInteractive(ctx context.Context, path string, approver Approver) (session.Outcome, error) {
	if approver == nil {
		return session.Outcome{}, errors.New("interactive session requires an approver")
	}
	if len(s.judges) == 0 {
		return session.Outcome{}, errors.New("no judges configured")
	}

	lifecycle, err := session.NewLifecycle(session.ModeInteractive)
	if err != nil {
		return session.Outcome{}, err
	}

	sessionDir, err := s.store.NewSessionDir(true, s.now())
	if err != nil {
		return session.Outcome{}, err
	}
	s.progress("Improvement session: %s", sessionDir)

	paced := newPacedGenerator(s.generator)
	stem := paper.Stem(path)
	current := path
	completed := 0

	for round := 1; ; round++ {
		s.progress("Round %d", round)

		doc, err := s.extractor.ExtractFile(current)
		if err != nil {
			return session.Outcome{}, err
		}

		reviews := s.collectReviews(ctx, paced, doc)
		if err := lifecycle.Advance(session.EventReviewsReady); err != nil {
			return session.Outcome{}, err
		}

		// Plan until the user approves. Rejection regenerates the plan from
		// the round's cached reviews; the panel is not re-run.
		var plan string
		decision := PlanRejected
		for decision == PlanRejected {
			plan = paced.generate(ctx, planRequest(doc, reviews, s.settings)).Output()
			planPath, err := s.store.SavePlan(sessionDir, round, plan, s.now())
			if err != nil {
				return session.Outcome{}, err
			}
			if err := lifecycle.Advance(session.EventPlanProposed); err != nil {
				return session.Outcome{}, err
			}

			decision, err = approver.ApprovePlan(round, planPath, plan)
			if err != nil {
				return session.Outcome{}, err
			}
			switch decision {
			case PlanAccepted:
				err = lifecycle.Advance(session.EventApprove)
			case PlanRejected:
				err = lifecycle.Advance(session.EventReject)
			case PlanQuit:
				err = lifecycle.Advance(session.EventQuit)
			default:
				err = fmt.Errorf("unknown plan decision %d", decision)
			}
			if err != nil {
				return session.Outcome{}, err
			}
			if decision == PlanQuit {
				s.progress("Session ended at round %d before revision", round)
				return session.Outcome{SessionDir: sessionDir, FinalPath: current, Rounds: completed, Quit: true}, nil
			}
		}

		revPath, stats, err := s.revise(ctx, paced, sessionDir, round, stem, doc, plan)
		if err != nil {
			return session.Outcome{}, err
		}
		s.progress("  revision -> %s (%s)", revPath, stats)
		current = revPath
		completed = round

		cont, err := approver.ContinueRounds(round, stats)
		if err != nil {
			return session.Outcome{}, err
		}
		if !cont {
			if err := lifecycle.Advance(session.EventFinish); err != nil {
				return session.Outcome{}, err
			}
			break
		}
		if err := lifecycle.Advance(session.EventRevised); err != nil {
			return session.Outcome{}, err
		}
	}

	finalPath, err := s.store.SaveFinal(sessionDir, stem, current)
	if err != nil {
		return session.Outcome{}, err
	}
	s.progress("Final -> %s", finalPath)

	return session.Outcome{SessionDir: sessionDir, FinalPath: finalPath, Rounds: completed}, nil
}

// collectReviews runs the full panel over the document. Reviews are kept in
// memory for the plan prompt; improvement rounds do not write review files.
func (s *ImprovementService) collectReviews(ctx context.Context, paced *pacedGenerator, doc paper.Document) *review.Set {
	clean := paper.Normalize(doc.Text)
	set := &review.Set{}
	for _, judge := range s.judges {
		s.progress("  %s is reviewing...", judge.Name)
		res := paced.generate(ctx, reviewRequest(doc, clean, judge, s.settings))
		set.Add(review.Review{Judge: judge, Text: res.Output(), Diagnostic: !res.OK()})
	}
	return set
}

func (s *ImprovementService) revise(
	ctx context.Context,
	paced *pacedGenerator,
	sessionDir string,
	round int,
	stem string,
	doc paper.Document,
	plan string,
) (string, session.ChangeStats, error) {
	revised := paced.generate(ctx, revisionRequest(doc, plan, s.settings)).Output()
	revPath, err := s.store.SaveRevision(sessionDir, round, stem, revised)
	if err != nil {
		return "", session.ChangeStats{}, err
	}
	return revPath, session.Changes(doc.Text, revised), nil
}

func planRequest(doc paper.Document, reviews *review.Set, s RunSettings) ai.Request {
	return ai.Request{
		Prompt: prompt.ImprovementPlan(prompt.PlanParams{
			Title:   doc.Title,
			Text:    doc.Text,
			Reviews: planReviews(reviews),
		}),
		Model:       s.Model,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
		Title:       doc.Title,
	}
}

func revisionRequest(doc paper.Document, plan string, s RunSettings) ai.Request {
	return ai.Request{
		Prompt: prompt.Revision(prompt.RevisionParams{
			Title: doc.Title,
			Text:  doc.Text,
			Plan:  plan,
		}),
		Model:       s.Model,
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
		Title:       doc.Title,
	}
}

// planReviews flattens a review set for the plan prompt. Diagnostic texts
// pass through unchanged.
func planReviews(set *review.Set) []prompt.JudgeReview {
	out := make([]prompt.JudgeReview, 0, set.Len())
	for _, r := range set.All() {
		out = append(out, prompt.JudgeReview{Judge: r.Judge.Name, Text: r.Text})
	}
	return out
}
