package prompt_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paperjury/paperjury/internal/domain/prompt"
)

var evalParams = prompt.EvaluationParams{
	Title:      "Robust Panel Reviews at Scale",
	Text:       "\\documentclass{article}\n\\title{Robust Panel Reviews at Scale}\nWe study panels.",
	Guidelines: "Judge soundness first.",
}

func TestEvaluationContainsRequiredElements(t *testing.T) {
	got := prompt.Evaluation(evalParams)

	elements := []string{
		"1. Summary",
		"2. Strengths and Weaknesses",
		"3. Quality Score (1-4)",
		"4. Clarity Score (1-4)",
		"5. Significance Score (1-4)",
		"6. Originality Score (1-4)",
		"7. Questions",
		"8. Limitations",
		"9. Overall Score (1-6)",
		"10. Confidence Score (1-5)",
	}
	last := -1
	for _, el := range elements {
		idx := strings.Index(got, el)
		if idx < 0 {
			t.Fatalf("prompt is missing element %q", el)
		}
		if idx < last {
			t.Errorf("element %q appears out of order", el)
		}
		last = idx
	}

	if n := strings.Count(got, evalParams.Text); n != 1 {
		t.Errorf("paper text appears %d times, want exactly 1", n)
	}
	if !strings.Contains(got, "BEGIN PAPER\n"+evalParams.Text+"\nEND PAPER") {
		t.Error("paper text is not fenced between BEGIN PAPER and END PAPER")
	}
	if !strings.Contains(got, "PAPER TITLE: "+evalParams.Title) {
		t.Error("prompt is missing the paper title line")
	}
	if !strings.Contains(got, "REVIEW GUIDELINES:\n"+evalParams.Guidelines) {
		t.Error("prompt is missing the guidelines section")
	}
}

func TestEvaluationPersonaAddsOneSection(t *testing.T) {
	base := prompt.Evaluation(evalParams)

	withPersona := evalParams
	withPersona.Persona = "You are a notoriously skeptical statistician."
	got := prompt.Evaluation(withPersona)

	section := "REVIEWER IDENTITY:\n" + withPersona.Persona + "\n\n"
	if strings.Count(got, section) != 1 {
		t.Fatalf("persona section missing or repeated in %q", got)
	}
	if strings.Replace(got, section, "", 1) != base {
		t.Error("persona variant should differ from the base prompt by exactly the identity section")
	}
}

func TestImprovementPlanListsReviewsInOrder(t *testing.T) {
	got := prompt.ImprovementPlan(prompt.PlanParams{
		Title: "Robust Panel Reviews at Scale",
		Text:  "We study panels.",
		Reviews: []prompt.JudgeReview{
			{Judge: "Methodologist", Text: "The ablations are thin."},
			{Judge: "Skeptic", Text: "Claims outrun the evidence."},
		},
	})

	first := strings.Index(got, "## Review by Methodologist")
	second := strings.Index(got, "## Review by Skeptic")
	if first < 0 || second < 0 {
		t.Fatal("plan prompt is missing judge headings")
	}
	if second < first {
		t.Error("reviews appear out of panel order")
	}
	for _, want := range []string{
		"The ablations are thin.",
		"[HIGH]",
		"[MEDIUM]",
		"[LOW]",
		"Never invent results",
		"section or paragraph",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("plan prompt is missing %q", want)
		}
	}
}

func TestRevisionCarriesPlanAndFormatRules(t *testing.T) {
	got := prompt.Revision(prompt.RevisionParams{
		Title: "Robust Panel Reviews at Scale",
		Text:  "We study panels.",
		Plan:  "[HIGH] Tighten the abstract (Section 1).",
	})

	for _, want := range []string{
		"IMPROVEMENT PLAN:\n\n[HIGH] Tighten the abstract (Section 1).",
		"must remain valid LaTeX",
		"complete revised document and nothing else",
		"BEGIN PAPER\nWe study panels.\nEND PAPER",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("revision prompt is missing %q", want)
		}
	}
}

func TestLoadGuidelines(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "guidelines.txt")
	if err := os.WriteFile(path, []byte("  Venue rules.\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	text, err := prompt.LoadGuidelines(path)
	if err != nil || text != "Venue rules." {
		t.Errorf("LoadGuidelines(file) = %q, %v", text, err)
	}

	text, err = prompt.LoadGuidelines("")
	if err != nil || text != prompt.DefaultGuidelines() {
		t.Error("empty path should use the built-in rubric")
	}
	if text == "" {
		t.Fatal("built-in rubric is empty")
	}

	if _, err = prompt.LoadGuidelines(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("missing configured file must fail, not fall back")
	}

	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("  \n \t"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err = prompt.LoadGuidelines(empty); err == nil {
		t.Error("whitespace-only configured file must fail, not fall back")
	}
}

func TestDefaultGuidelinesCoverReviewAxes(t *testing.T) {
	text := prompt.DefaultGuidelines()
	for _, axis := range []string{"Quality", "Clarity", "Significance", "Originality", "Limitations"} {
		if !strings.Contains(text, axis) {
			t.Errorf("built-in rubric does not mention %s", axis)
		}
	}
}
