// Package prompt assembles the texts sent to the generation API. Prompts
// are built from ordered sections so that variants differ by whole
// sections, never by string surgery inside a template.
package prompt

import (
	"fmt"
	"strings"
)

const (
	beginPaper = "BEGIN PAPER"
	endPaper   = "END PAPER"

	reviewerRole = "You are an expert academic reviewer for a top-tier machine learning conference. " +
		"Write your review directly, without meta commentary about being an AI."

	editorRole = "You are an expert academic editor helping authors improve a paper before resubmission."

	reviewInstructions = `Write a comprehensive review covering, in this order:
1. Summary: briefly summarize the paper and its contributions in your own words
2. Strengths and Weaknesses: a thorough assessment covering Quality, Clarity, Significance, and Originality
3. Quality Score (1-4): rate the technical soundness
4. Clarity Score (1-4): rate the writing and presentation quality
5. Significance Score (1-4): rate the impact and importance
6. Originality Score (1-4): rate the novelty and insights
7. Questions: list 3-5 key actionable questions for the authors
8. Limitations: assess whether limitations are adequately addressed
9. Overall Score (1-6): final recommendation with justification
10. Confidence Score (1-5): rate your confidence in the assessment`

	reviewClosing = "Be constructive, specific, and fair. Ground every point in the paper's own text " +
		"and number the sections of your review to match the list above."
)

// EvaluationParams feeds one review prompt. Persona is optional; when set
// it becomes a reviewer-identity section and nothing else changes.
type EvaluationParams struct {
	Title      string
	Text       string
	Persona    string
	Guidelines string
}

// Evaluation builds the review prompt for one judge.
func Evaluation(p EvaluationParams) string {
	sections := []string{reviewerRole}
	if p.Persona != "" {
		sections = append(sections, "REVIEWER IDENTITY:\n"+strings.TrimSpace(p.Persona))
	}
	sections = append(sections,
		"REVIEW GUIDELINES:\n"+strings.TrimSpace(p.Guidelines),
		"PAPER TITLE: "+p.Title,
		paperSection(p.Text),
		reviewInstructions,
		reviewClosing,
	)
	return strings.Join(sections, "\n\n")
}

// JudgeReview pairs a judge name with the review text used in plan prompts.
type JudgeReview struct {
	Judge string
	Text  string
}

// PlanParams feeds an improvement-plan prompt.
type PlanParams struct {
	Title   string
	Text    string
	Reviews []JudgeReview
}

// ImprovementPlan builds the prompt that turns collected reviews into a
// prioritized revision plan.
func ImprovementPlan(p PlanParams) string {
	var feedback strings.Builder
	feedback.WriteString("REVIEWER FEEDBACK:")
	for _, r := range p.Reviews {
		fmt.Fprintf(&feedback, "\n\n## Review by %s\n\n%s", r.Judge, strings.TrimSpace(r.Text))
	}

	sections := []string{
		editorRole,
		"PAPER TITLE: " + p.Title,
		paperSection(p.Text),
		feedback.String(),
		`Write an improvement plan for the authors:
- Address the reviewers' concerns by reorganizing, clarifying, and tightening what is already in the paper.
- Never invent results, experiments, citations, or data the paper does not contain.
- Tag every item [HIGH], [MEDIUM], or [LOW] and order items by priority.
- Anchor every item to the section or paragraph it applies to.`,
	}
	return strings.Join(sections, "\n\n")
}

// RevisionParams feeds a revision prompt.
type RevisionParams struct {
	Title string
	Text  string
	Plan  string
}

// Revision builds the prompt that applies an improvement plan and asks for
// the complete revised document back.
func Revision(p RevisionParams) string {
	sections := []string{
		editorRole,
		"PAPER TITLE: " + p.Title,
		paperSection(p.Text),
		"IMPROVEMENT PLAN:\n\n" + strings.TrimSpace(p.Plan),
		`Rewrite the paper applying the plan:
- Keep the original document format; LaTeX input must remain valid LaTeX.
- Keep all content the plan does not touch.
- Never invent results, experiments, citations, or data.
- Output the complete revised document and nothing else: no preamble, no commentary, no code fences.`,
	}
	return strings.Join(sections, "\n\n")
}

func paperSection(text string) string {
	return beginPaper + "\n" + text + "\n" + endPaper
}
