package ai

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paperjury/paperjury/internal/domain/ai"
)

const DefaultLogDir = "logs"

const promptLogSeparator = "============================================================"

// WritePromptLog records one outgoing prompt under dir, named so that logs
// sort chronologically and identify the paper, model, and persona at a
// glance. Returns the path written.
func WritePromptLog(dir string, now time.Time, req ai.Request) (string, error) {
	if dir == "" {
		dir = DefaultLogDir
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create prompt log directory: %w", err)
	}

	title := req.Title
	if title == "" {
		title = "untitled"
	}
	persona := req.Persona
	if persona == "" {
		persona = "none"
	}

	var b strings.Builder
	b.WriteString("# Prompt Log\n")
	fmt.Fprintf(&b, "# Timestamp: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "# Paper: %s\n", title)
	fmt.Fprintf(&b, "# Model: %s\n", req.Model)
	fmt.Fprintf(&b, "# Temperature: %.2f\n", req.Temperature)
	fmt.Fprintf(&b, "# Max tokens: %d\n", req.MaxTokens)
	fmt.Fprintf(&b, "# Persona: %s\n", persona)
	fmt.Fprintf(&b, "# Prompt length: %d chars\n", len(req.Prompt))
	b.WriteString(promptLogSeparator + "\n\n")
	b.WriteString(req.Prompt)
	b.WriteString("\n")

	path := filepath.Join(dir, promptLogName(now, req))
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return "", fmt.Errorf("failed to write prompt log: %w", err)
	}
	return path, nil
}

func promptLogName(now time.Time, req ai.Request) string {
	name := now.Format("20060102_150405") + "_" + sanitizeForFilename(req.Title, "untitled") +
		"_" + sanitizeModel(req.Model)
	if req.Persona != "" {
		name += "_" + sanitizeForFilename(req.Persona, "persona")
	}
	return name + ".prompt.txt"
}

// sanitizeForFilename keeps alphanumerics, dash, and underscore, turns
// spaces into underscores, and caps the length at 50.
func sanitizeForFilename(s, fallback string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	out := b.String()
	if len(out) > 50 {
		out = out[:50]
	}
	if out == "" {
		return fallback
	}
	return out
}

func sanitizeModel(model string) string {
	return strings.NewReplacer("/", "_", ":", "_").Replace(model)
}
