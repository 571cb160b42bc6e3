// Package wiring assembles the application services from a loaded
// configuration. Both CLI commands build their pipeline here so the two
// stay wired identically.
package wiring

import (
	"fmt"
	"path/filepath"

	"github.com/paperjury/paperjury/internal/application"
	"github.com/paperjury/paperjury/internal/domain/prompt"
	"github.com/paperjury/paperjury/internal/domain/review"
	infraai "github.com/paperjury/paperjury/internal/infrastructure/ai"
	"github.com/paperjury/paperjury/internal/infrastructure/config"
	"github.com/paperjury/paperjury/internal/infrastructure/extract"
	"github.com/paperjury/paperjury/internal/infrastructure/storage"
)

// Options adjust how one command invocation is wired.
type Options struct {
	// OutputDir overrides where artifacts land; empty means the paper's
	// own directory.
	OutputDir string
	// LogPrompts forces prompt logging on, regardless of the config.
	LogPrompts bool
	// Progress receives one-line run updates; nil silences them.
	Progress application.ProgressFunc
}

// AppServices exposes the application layer services wired for one paper.
type AppServices struct {
	Evaluation  *application.EvaluationService
	Improvement *application.ImprovementService
	Store       *storage.ArtifactStore
	Judges      []review.JudgeSpec
	OutputDir   string
	// Guidelines is the rubric text in use, configured or built-in.
	Guidelines string
}

// BuildAppServices constructs the evaluation and improvement services for
// one paper path from a validated config. A guidelines file that was
// configured but cannot be read fails the build; reviews must never run
// against a rubric the user did not choose.
func BuildAppServices(cfg *config.Config, paperPath string, opts Options) (*AppServices, error) {
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(paperPath)
	}

	guidelines, err := prompt.LoadGuidelines(cfg.GuidelinesFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	client := infraai.NewClient(infraai.ClientConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Settings.Model,
		Delay:      cfg.Delay(),
		LogPrompts: cfg.Settings.LogPrompts || opts.LogPrompts,
		LogDir:     filepath.Join(outputDir, infraai.DefaultLogDir),
	})

	extractor := extract.NewExtractor()
	store := storage.NewArtifactStore(outputDir)
	judges := cfg.JudgeSpecs()
	settings := application.RunSettings{
		Model:       cfg.Settings.Model,
		Temperature: cfg.Settings.Temperature,
		MaxTokens:   cfg.Settings.MaxTokens,
		Guidelines:  guidelines,
	}

	return &AppServices{
		Evaluation:  application.NewEvaluationService(extractor, client, store, judges, settings, opts.Progress),
		Improvement: application.NewImprovementService(extractor, client, store, judges, settings, opts.Progress),
		Store:       store,
		Judges:      judges,
		OutputDir:   outputDir,
		Guidelines:  guidelines,
	}, nil
}
