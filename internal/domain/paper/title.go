package paper

import (
	"regexp"
	"strings"
)

var (
	latexTitleOpen = regexp.MustCompile(`\\title\s*\{`)

	// Inside a captured title: unwrap formatting commands and drop the rest.
	titleWrapCmds = regexp.MustCompile(`\\[a-zA-Z]+\*?\{([^{}]*)\}`)
	titleBareCmds = regexp.MustCompile(`\\[a-zA-Z]+\*?`)

	titleMarkup = strings.NewReplacer(`\\`, " ", "~", " ")
)

// TitleFromLaTeX pulls the document title out of raw LaTeX source: the
// content of the first \title{...} declaration with nested formatting
// commands removed. Returns UnknownTitle when no usable declaration is
// present.
func TitleFromLaTeX(src string) string {
	loc := latexTitleOpen.FindStringIndex(src)
	if loc == nil {
		return UnknownTitle
	}
	raw, ok := balancedGroup(src[loc[1]:])
	if !ok {
		return UnknownTitle
	}
	title := titleMarkup.Replace(raw)
	for {
		unwrapped := titleWrapCmds.ReplaceAllString(title, "$1")
		if unwrapped == title {
			break
		}
		title = unwrapped
	}
	title = titleBareCmds.ReplaceAllString(title, "")
	title = braceChars.Replace(title)
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return UnknownTitle
	}
	return title
}

// balancedGroup returns the text up to the brace closing the group opened
// just before s. Escaped braces do not count toward nesting.
func balancedGroup(s string) (string, bool) {
	depth := 1
	escaped := false
	for i, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i], true
			}
		}
	}
	return "", false
}

const (
	titleScanLines = 10
	titleMinLen    = 10
	titleMaxLen    = 200
)

// TitleFromPDFText guesses a title from the first page of extracted PDF
// text: the first title-length line among the leading non-empty lines. Used
// only when the PDF metadata carries no title.
func TitleFromPDFText(firstPage string) string {
	seen := 0
	for _, line := range strings.Split(firstPage, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seen++
		if seen > titleScanLines {
			break
		}
		if len(line) > titleMinLen && len(line) < titleMaxLen {
			return line
		}
	}
	return UnknownTitle
}
