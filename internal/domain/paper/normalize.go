package paper

import (
	"regexp"
	"strings"
)

var (
	blankRuns     = regexp.MustCompile(`\n\s*\n\s*\n+`)
	spaceRuns     = regexp.MustCompile(`[ \t]+`)
	optArgCmds    = regexp.MustCompile(`\\[a-zA-Z]+\*?\[[^\]]*\]`)
	envMarkers    = regexp.MustCompile(`\\(?:begin|end)\{[^}]*\}`)
	bareCmds      = regexp.MustCompile(`\\[a-zA-Z]+\*?`)
	escapedBraces = regexp.MustCompile(`\\[{}]`)
	braceGroups   = regexp.MustCompile(`\{([^}]*)\}`)
	braceChars    = strings.NewReplacer("{", "", "}", "")
)

// Normalize reduces extracted paper text to plain prose for review prompts.
// LaTeX markup is stripped rather than rendered: commands carrying a bracketed
// optional argument are dropped whole, \begin/\end environment markers are
// dropped, remaining commands are replaced with a single space so adjacent
// words do not fuse, and brace groups keep their inner content. Runs of blank
// lines collapse to one blank line and horizontal whitespace to single
// spaces. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	s = spaceRuns.ReplaceAllString(s, " ")
	s = optArgCmds.ReplaceAllString(s, "")
	s = envMarkers.ReplaceAllString(s, "")
	s = bareCmds.ReplaceAllString(s, " ")
	s = escapedBraces.ReplaceAllString(s, " ")
	s = braceGroups.ReplaceAllString(s, "$1")
	s = braceChars.Replace(s)
	// Command removal opens fresh whitespace runs, so collapse once more.
	s = spaceRuns.ReplaceAllString(s, " ")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
