// Package extract turns paper files on disk into paper.Documents.
package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/paperjury/paperjury/internal/domain/paper"
)

// PDFContent is what a PDFReader recovers from a file: page texts in page
// order plus the Title entry of the document metadata, when present.
type PDFContent struct {
	Pages     []string
	MetaTitle string
}

// PDFReader is the PDF capability seam. A nil reader means this build has
// no PDF support and .pdf inputs fail with paper.ErrPDFUnavailable.
type PDFReader interface {
	Read(path string) (PDFContent, error)
}

type Extractor struct {
	pdf PDFReader
}

// NewExtractor builds an extractor with the default PDF reader.
func NewExtractor() *Extractor {
	return &Extractor{pdf: pdfReader{}}
}

// NewExtractorWithPDF substitutes or disables (nil) the PDF capability.
func NewExtractorWithPDF(r PDFReader) *Extractor {
	return &Extractor{pdf: r}
}

// ExtractFile reads a paper from disk, picks the extraction path by file
// extension, and returns the document with its text verbatim. Cleaning for
// prompts is the caller's concern; revisions need the untouched source.
func (e *Extractor) ExtractFile(path string) (paper.Document, error) {
	format, err := paper.FormatForPath(path)
	if err != nil {
		return paper.Document{}, err
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return paper.Document{}, fmt.Errorf("%w: %s", paper.ErrNotFound, path)
	}

	switch format {
	case paper.FormatPDF:
		return e.extractPDF(path)
	default:
		return e.extractLaTeX(path)
	}
}

func (e *Extractor) extractLaTeX(path string) (paper.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return paper.Document{}, fmt.Errorf("%w: %v", paper.ErrExtractionFailed, err)
	}

	src := string(data)
	return paper.Document{
		Path:   path,
		Title:  paper.TitleFromLaTeX(src),
		Text:   src,
		Format: paper.FormatLaTeX,
	}, nil
}

func (e *Extractor) extractPDF(path string) (paper.Document, error) {
	if e.pdf == nil {
		return paper.Document{}, fmt.Errorf("%w: convert the paper to .tex or enable PDF support", paper.ErrPDFUnavailable)
	}

	content, err := e.pdf.Read(path)
	if err != nil {
		return paper.Document{}, fmt.Errorf("%w: %v", paper.ErrExtractionFailed, err)
	}

	var pages []string
	for _, p := range content.Pages {
		if strings.TrimSpace(p) != "" {
			pages = append(pages, p)
		}
	}
	text := strings.Join(pages, "\n\n")
	if text == "" {
		return paper.Document{}, fmt.Errorf("%w: %s contains no extractable text", paper.ErrExtractionFailed, path)
	}

	title := strings.TrimSpace(content.MetaTitle)
	if title == "" {
		title = paper.UnknownTitle
		if len(content.Pages) > 0 {
			title = paper.TitleFromPDFText(content.Pages[0])
		}
	}

	return paper.Document{
		Path:   path,
		Title:  title,
		Text:   text,
		Format: paper.FormatPDF,
	}, nil
}
