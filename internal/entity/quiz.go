package entity

import (
	"fmt"
	"strings"
)

// QuestionDirection selects which side of an entry is asked and which is expected.
type QuestionDirection int

const (
	NativeToForeign QuestionDirection = iota
	ForeignToNative
	Bidirectional
)

func (d QuestionDirection) String() string {
	switch d {
	case NativeToForeign:
		return "ntf"
	case ForeignToNative:
		return "ftn"
	case Bidirectional:
		return "both"
	default:
		return fmt.Sprintf("QuestionDirection(%d)", int(d))
	}
}

// Valid reports whether d is one of the three known directions.
func (d QuestionDirection) Valid() bool {
	return d >= NativeToForeign && d <= Bidirectional
}

// ParseQuestionDirection maps the CLI values ntf, ftn and both.
func ParseQuestionDirection(raw string) (QuestionDirection, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ntf":
		return NativeToForeign, nil
	case "ftn":
		return ForeignToNative, nil
	case "both", "":
		return Bidirectional, nil
	default:
		return 0, fmt.Errorf("%w: %q (want ntf, ftn or both)", ErrInvalidDirection, raw)
	}
}

// QAPair is one generated question.
type QAPair struct {
	Prompt   string
	Expected ExpectedAnswer
}

// AnswerOutcome is the classification of a single attempt.
type AnswerOutcome int

const (
	AnswerIncorrect AnswerOutcome = iota
	AnswerExact
	AnswerPartial
)

func (o AnswerOutcome) String() string {
	switch o {
	case AnswerExact:
		return "exact"
	case AnswerPartial:
		return "partial"
	default:
		return "incorrect"
	}
}

// Score is 1 for accepted answers and 0 otherwise.
func (o AnswerOutcome) Score() int {
	if o == AnswerExact || o == AnswerPartial {
		return 1
	}
	return 0
}

// QuizResult tallies a finished session; Correct+Wrong equals the questions asked.
type QuizResult struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

func (r QuizResult) Total() int { return r.Correct + r.Wrong }

// Percent returns the share of correct answers, 0 for an empty session.
func (r QuizResult) Percent() float64 {
	if r.Total() == 0 {
		return 0
	}
	return float64(r.Correct) * 100 / float64(r.Total())
}
