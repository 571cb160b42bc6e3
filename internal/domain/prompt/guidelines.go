package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

// Shipped inside the binary so the default rubric never depends on files
// lying next to the executable.
//
//go:embed guidelines.txt
var defaultGuidelines string

// DefaultGuidelines returns the built-in review rubric, used when no
// guidelines file is configured.
func DefaultGuidelines() string {
	return strings.TrimSpace(defaultGuidelines)
}

// LoadGuidelines reads the review guidelines from path. An empty path means
// the built-in rubric; a configured file that cannot be read or has no
// content is a configuration error, never a silent fallback.
func LoadGuidelines(path string) (string, error) {
	if path == "" {
		return DefaultGuidelines(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read guidelines file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("guidelines file %s is empty", path)
	}
	return text, nil
}
