package paper

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies the source format of a paper file.
type Format string

const (
	FormatLaTeX Format = "latex"
	FormatPDF   Format = "pdf"
)

// UnknownTitle stands in wherever a title could not be determined.
const UnknownTitle = "Unknown Paper"

var (
	ErrNotFound          = errors.New("paper file not found")
	ErrUnsupportedFormat = errors.New("unsupported paper format")
	ErrExtractionFailed  = errors.New("paper extraction failed")
	ErrPDFUnavailable    = errors.New("pdf support unavailable")
)

// Document is a paper ready for evaluation: the extracted text as-is plus
// the metadata the pipeline needs to name artifacts and prompts.
type Document struct {
	Path   string
	Title  string
	Text   string
	Format Format
}

// Stem returns the source filename without directory or extension.
// Artifact names (reviews, revisions, the final file) derive from it.
func (d Document) Stem() string {
	return Stem(d.Path)
}

// Stem strips the directory and extension from a paper path.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FormatForPath maps a file extension to a Format. The extension decides
// alone; file contents are never sniffed.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tex":
		return FormatLaTeX, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
