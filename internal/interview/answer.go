package interview

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultFillerAnswer = "I am not sure."
	DefaultFillerIntro  = "Candidate provided a brief introduction."

	DefaultMinAnswerLength = 2
	DefaultMinIntroLength  = 5
)

// Filler replaces captured text that is too short to be a real answer.
type Filler struct {
	MinLength int
	Text      string
}

func AnswerFiller() Filler {
	return Filler{MinLength: DefaultMinAnswerLength, Text: DefaultFillerAnswer}
}

func IntroFiller() Filler {
	return Filler{MinLength: DefaultMinIntroLength, Text: DefaultFillerIntro}
}

// Apply returns the trimmed text, or the filler when the text is shorter than
// MinLength runes. The second value reports a substitution.
func (f Filler) Apply(text string) (string, bool) {
	text = strings.TrimSpace(text)

	minLength := max(f.MinLength, 1)
	if utf8.RuneCountInString(text) >= minLength {
		return text, false
	}

	filler := strings.TrimSpace(f.Text)
	if filler == "" {
		filler = DefaultFillerAnswer
	}
	return filler, true
}
