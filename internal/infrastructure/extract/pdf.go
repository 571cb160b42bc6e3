package extract

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// pdfReader backs the PDF capability with github.com/ledongthuc/pdf.
type pdfReader struct{}

// Read extracts page texts and the metadata title. The parser panics on
// some malformed files, so the panic is converted into an ordinary error
// and surfaces as an extraction failure upstream.
func (pdfReader) Read(path string) (content PDFContent, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return PDFContent{}, err
	}
	defer f.Close() //nolint:errcheck // read-only handle

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return PDFContent{}, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}

	title := ""
	if info := reader.Trailer().Key("Info"); !info.IsNull() {
		if t := info.Key("Title"); !t.IsNull() {
			title = t.Text()
		}
	}

	return PDFContent{Pages: pages, MetaTitle: title}, nil
}
