package usecase

import (
	"slices"

	"github.com/eslsoft/vocabulearn/internal/entity"
)

// Evaluate classifies attempt against a parsed expected answer.
//
// An exact match of the normalized strings wins. Otherwise a "/" list accepts
// any single alternative, and a parenthetical qualifier accepts the text
// before the first "(". Everything else is incorrect.
func Evaluate(attempt string, expected entity.ExpectedAnswer) entity.AnswerOutcome {
	got := entity.NormalizeAnswer(attempt)
	if got == expected.Primary && got != "" {
		return entity.AnswerExact
	}
	if got == "" {
		return entity.AnswerIncorrect
	}
	if expected.HasAlternatives() {
		if slices.Contains(expected.Alternatives, got) {
			return entity.AnswerPartial
		}
		return entity.AnswerIncorrect
	}
	if expected.Stem != "" && got == expected.Stem {
		return entity.AnswerPartial
	}
	return entity.AnswerIncorrect
}

// EvaluateText parses expected and evaluates attempt against it.
func EvaluateText(attempt, expected string) entity.AnswerOutcome {
	return Evaluate(attempt, entity.ParseExpectedAnswer(expected))
}
