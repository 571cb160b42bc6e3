// Package storage persists everything the pipeline produces: review
// files, panel summaries, and improvement session directories with their
// per-round artifacts.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/google/uuid"
	"github.com/paperjury/paperjury/internal/domain/paper"
	"github.com/paperjury/paperjury/internal/domain/review"
)

const (
	sessionPrefix            = "session_"
	interactiveSessionPrefix = "interactive_session_"

	headerRule  = "============================================================"
	sectionRule = "------------------------------------------------------------"

	timestampLayout = "2006-01-02 15:04:05"
	dirStampLayout  = "20060102_150405"
)

// ArtifactStore writes pipeline artifacts under one output directory.
type ArtifactStore struct {
	outputDir   string
	retryConfig retry.Config
}

func NewArtifactStore(outputDir string) *ArtifactStore {
	return &ArtifactStore{
		outputDir: outputDir,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

func (s *ArtifactStore) OutputDir() string {
	return s.outputDir
}

// resolve joins a generated filename onto a base directory and rejects
// anything that would escape it.
func (s *ArtifactStore) resolve(baseDir, filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))
	if filepath.Dir(cleanPath) != filepath.Clean(baseDir) {
		return "", fmt.Errorf("invalid artifact path: %s", filename)
	}
	return cleanPath, nil
}

func (s *ArtifactStore) ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// SaveReview writes one judge's review as <stem>.<judge>.review.txt and
// returns the path. Diagnostic reviews are written the same way; the file
// is the audit trail either way.
func (s *ArtifactStore) SaveReview(doc paper.Document, rev review.Review, now time.Time) (string, error) {
	if err := s.ensureDir(s.outputDir); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s.%s.review.txt", doc.Stem(), rev.Judge.Slug())
	path, err := s.resolve(s.outputDir, name)
	if err != nil {
		return "", err
	}

	model := rev.Judge.Model
	if model == "" {
		model = "default"
	}

	var b strings.Builder
	b.WriteString("# Paper Review\n")
	fmt.Fprintf(&b, "# Paper: %s\n", doc.Title)
	fmt.Fprintf(&b, "# Judge: %s (%s)\n", rev.Judge.Name, model)
	fmt.Fprintf(&b, "# Generated: %s\n", now.Format(timestampLayout))
	b.WriteString(headerRule + "\n\n")
	b.WriteString(strings.TrimSpace(rev.Text))
	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return "", fmt.Errorf("failed to write review file: %w", err)
	}
	return path, nil
}

// SaveSummary writes the combined panel summary as <stem>.summary.txt.
// Callers only invoke it when more than one judge reviewed the paper.
func (s *ArtifactStore) SaveSummary(doc paper.Document, set *review.Set, now time.Time) (string, error) {
	if err := s.ensureDir(s.outputDir); err != nil {
		return "", err
	}

	path, err := s.resolve(s.outputDir, doc.Stem()+".summary.txt")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# Review Summary\n")
	fmt.Fprintf(&b, "# Paper: %s\n", doc.Title)
	fmt.Fprintf(&b, "# Judges: %d\n", set.Len())
	fmt.Fprintf(&b, "# Generated: %s\n", now.Format(timestampLayout))
	b.WriteString(headerRule + "\n")
	for _, r := range set.All() {
		fmt.Fprintf(&b, "\n## %s\n\n%s\n\n%s\n", r.Judge.Name, strings.TrimSpace(r.Text), sectionRule)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}
	return path, nil
}

// NewSessionDir creates a fresh directory for one improvement session.
// Names are timestamped for chronological sorting with a short random
// suffix so same-second sessions never collide.
func (s *ArtifactStore) NewSessionDir(interactive bool, now time.Time) (string, error) {
	if err := s.ensureDir(s.outputDir); err != nil {
		return "", err
	}

	prefix := sessionPrefix
	if interactive {
		prefix = interactiveSessionPrefix
	}
	name := prefix + now.Format(dirStampLayout) + "_" + uuid.NewString()[:8]
	dir := filepath.Join(s.outputDir, name)
	if err := os.Mkdir(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}
	return dir, nil
}

// SavePlan writes the improvement plan for one round into the session dir.
// Rejected plans are replaced in place when a round re-plans.
func (s *ArtifactStore) SavePlan(sessionDir string, round int, plan string, now time.Time) (string, error) {
	path, err := s.resolve(sessionDir, fmt.Sprintf("round_%d_plan.txt", round))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Improvement Plan - Round %d\n", round)
	fmt.Fprintf(&b, "# Generated: %s\n", now.Format(timestampLayout))
	b.WriteString(headerRule + "\n\n")
	b.WriteString(strings.TrimSpace(plan))
	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return "", fmt.Errorf("failed to write plan file: %w", err)
	}
	return path, nil
}

// SaveRevision writes a round's revised paper. No header: the file feeds
// the next round's extraction and must stay a plain document.
func (s *ArtifactStore) SaveRevision(sessionDir string, round int, stem, text string) (string, error) {
	path, err := s.resolve(sessionDir, fmt.Sprintf("round_%d_%s_improved.tex", round, stem))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(text), 0600); err != nil {
		return "", fmt.Errorf("failed to write revision file: %w", err)
	}
	return path, nil
}

// SaveFinal copies the winning revision to the session's canonical final
// file, <stem>_final_improved.tex.
func (s *ArtifactStore) SaveFinal(sessionDir, stem, sourcePath string) (string, error) {
	data, err := s.readWithRetry(sourcePath)
	if err != nil {
		return "", fmt.Errorf("failed to read revision %s: %w", sourcePath, err)
	}

	path, err := s.resolve(sessionDir, stem+"_final_improved.tex")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write final file: %w", err)
	}
	return path, nil
}

func (s *ArtifactStore) readWithRetry(path string) ([]byte, error) {
	retryer := retry.New[[]byte](s.retryConfig)
	return retryer.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		return os.ReadFile(path)
	})
}
