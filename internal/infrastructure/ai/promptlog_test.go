package ai_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paperjury/paperjury/internal/domain/ai"
	infraai "github.com/paperjury/paperjury/internal/infrastructure/ai"
)

func TestWritePromptLog(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 1, 9, 15, 30, 12, 0, time.UTC)

	path, err := infraai.WritePromptLog(dir, now, ai.Request{
		Prompt:      "Review the paper.",
		Model:       "anthropic/claude-3-haiku",
		Temperature: 0.1,
		MaxTokens:   4000,
		Title:       "Robust Panel Reviews at Scale: a study!",
		Persona:     "Senior Methodologist",
	})
	if err != nil {
		t.Fatalf("WritePromptLog: %v", err)
	}

	wantName := "20250109_153012_Robust_Panel_Reviews_at_Scale_a_study_anthropic_claude-3-haiku_Senior_Methodologist.prompt.txt"
	if filepath.Base(path) != wantName {
		t.Errorf("log name = %q, want %q", filepath.Base(path), wantName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, want := range []string{
		"# Prompt Log",
		"# Timestamp: 2025-01-09 15:30:12",
		"# Paper: Robust Panel Reviews at Scale: a study!",
		"# Model: anthropic/claude-3-haiku",
		"# Temperature: 0.10",
		"# Max tokens: 4000",
		"# Persona: Senior Methodologist",
		"# Prompt length: 17 chars",
		"Review the paper.",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log is missing %q", want)
		}
	}
}

func TestWritePromptLogWithoutPersona(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 1, 9, 15, 30, 12, 0, time.UTC)

	path, err := infraai.WritePromptLog(dir, now, ai.Request{
		Prompt: "Plan improvements.",
		Model:  "anthropic/claude-3-haiku",
		Title:  "Untold Results",
	})
	if err != nil {
		t.Fatal(err)
	}
	name := filepath.Base(path)
	if !strings.HasSuffix(name, "_anthropic_claude-3-haiku.prompt.txt") {
		t.Errorf("personaless log name = %q", name)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "# Persona: none") {
		t.Error("log should record Persona: none")
	}
}

func TestPromptLogNameTruncatesLongTitles(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("VeryLongTitle", 20)

	path, err := infraai.WritePromptLog(dir, time.Now(), ai.Request{
		Prompt: "p",
		Model:  "m",
		Title:  long,
	})
	if err != nil {
		t.Fatal(err)
	}
	base := filepath.Base(path)
	parts := strings.SplitN(base, "_", 3) // date, time, rest
	if len(parts) != 3 {
		t.Fatalf("unexpected log name %q", base)
	}
	titlePart := strings.TrimSuffix(parts[2], "_m.prompt.txt")
	if len(titlePart) > 50 {
		t.Errorf("title part is %d chars, want at most 50", len(titlePart))
	}
}
