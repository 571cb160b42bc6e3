package wiring

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paperjury/paperjury/internal/domain/prompt"
	"github.com/paperjury/paperjury/internal/infrastructure/config"
)

func testConfig() *config.Config {
	return &config.Config{
		APIKey:  "test-key",
		BaseURL: "https://example.test/v1/chat/completions",
		Judges: []config.Judge{
			{Name: "Methodologist", Persona: "Senior methods reviewer."},
			{Name: "Statistician"},
		},
		Settings: config.Settings{
			Model:       "test/model",
			Temperature: 0.2,
			MaxTokens:   512,
			APIDelay:    0,
		},
	}
}

func TestBuildAppServicesDefaultsOutputToPaperDir(t *testing.T) {
	paperDir := t.TempDir()
	paperPath := filepath.Join(paperDir, "paper.tex")

	services, err := BuildAppServices(testConfig(), paperPath, Options{})
	if err != nil {
		t.Fatalf("BuildAppServices: %v", err)
	}

	if services.Evaluation == nil || services.Improvement == nil || services.Store == nil {
		t.Fatalf("expected non-nil services, got %+v", services)
	}
	if services.OutputDir != paperDir {
		t.Fatalf("expected output dir %s, got %s", paperDir, services.OutputDir)
	}
	if len(services.Judges) != 2 {
		t.Fatalf("expected 2 judges, got %d", len(services.Judges))
	}
	if services.Judges[0].Name != "Methodologist" || services.Judges[1].Name != "Statistician" {
		t.Fatalf("judge order not preserved: %+v", services.Judges)
	}
	if services.Guidelines != prompt.DefaultGuidelines() {
		t.Fatal("no guidelines file configured, expected the built-in rubric")
	}
}

func TestBuildAppServicesHonorsOutputDirOption(t *testing.T) {
	outDir := t.TempDir()
	paperPath := filepath.Join(t.TempDir(), "paper.tex")

	services, err := BuildAppServices(testConfig(), paperPath, Options{OutputDir: outDir})
	if err != nil {
		t.Fatalf("BuildAppServices: %v", err)
	}

	if services.OutputDir != outDir {
		t.Fatalf("expected output dir %s, got %s", outDir, services.OutputDir)
	}
}

func TestBuildAppServicesFailsOnMissingGuidelinesFile(t *testing.T) {
	cfg := testConfig()
	cfg.GuidelinesFile = filepath.Join(t.TempDir(), "missing-guidelines.txt")

	_, err := BuildAppServices(cfg, filepath.Join(t.TempDir(), "paper.tex"), Options{})
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected config.ErrInvalid for a missing guidelines file, got %v", err)
	}
}

func TestBuildAppServicesReadsGuidelinesFile(t *testing.T) {
	dir := t.TempDir()
	guidelinesPath := filepath.Join(dir, "guidelines.txt")
	if err := os.WriteFile(guidelinesPath, []byte("Venue rubric."), 0644); err != nil {
		t.Fatalf("write guidelines: %v", err)
	}

	cfg := testConfig()
	cfg.GuidelinesFile = guidelinesPath

	services, err := BuildAppServices(cfg, filepath.Join(dir, "paper.tex"), Options{})
	if err != nil {
		t.Fatalf("BuildAppServices: %v", err)
	}
	if services.Guidelines != "Venue rubric." {
		t.Fatalf("Guidelines = %q, want the configured file content", services.Guidelines)
	}
}
