package review

import "strings"

// JudgeSpec configures one reviewer on the panel. Temperature and
// MaxTokens, when set, override the run-level settings for this judge only.
type JudgeSpec struct {
	Name        string
	Model       string
	Persona     string
	Temperature *float64
	MaxTokens   *int
}

// Slug returns a filename-safe form of the judge name: lowercase, spaces
// as underscores, everything outside [a-z0-9_-] dropped.
func (j JudgeSpec) Slug() string {
	var b strings.Builder
	for _, r := range strings.ToLower(j.Name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "judge"
	}
	return b.String()
}

// Review is one judge's verdict on a paper. Diagnostic marks text that is
// a rendered call failure rather than model output.
type Review struct {
	Judge      JudgeSpec
	Text       string
	Diagnostic bool
}

// Set collects reviews in panel order.
type Set struct {
	reviews []Review
}

func (s *Set) Add(r Review) {
	s.reviews = append(s.reviews, r)
}

// All returns the reviews in the order they were added.
func (s *Set) All() []Review {
	return s.reviews
}

func (s *Set) Len() int {
	return len(s.reviews)
}

// ByName finds a review by judge name, case-insensitively.
func (s *Set) ByName(name string) (Review, bool) {
	for _, r := range s.reviews {
		if strings.EqualFold(r.Judge.Name, name) {
			return r, true
		}
	}
	return Review{}, false
}

// Diagnostics counts reviews that carry diagnostic text instead of a
// model-written review.
func (s *Set) Diagnostics() int {
	n := 0
	for _, r := range s.reviews {
		if r.Diagnostic {
			n++
		}
	}
	return n
}
