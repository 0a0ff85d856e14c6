package usecase

import (
	"fmt"
	"math/rand/v2"

	"github.com/eslsoft/vocabulearn/internal/entity"
)

// QuestionGenerator turns vocabulary entries into prompt / expected-answer pairs.
type QuestionGenerator struct {
	rng *rand.Rand
}

// NewQuestionGenerator uses rng for the Bidirectional coin flip.
func NewQuestionGenerator(rng *rand.Rand) *QuestionGenerator {
	return &QuestionGenerator{rng: rng}
}

// Generate builds the question for item. Bidirectional picks NativeToForeign
// or ForeignToNative with equal probability on every call.
func (g *QuestionGenerator) Generate(item *entity.VocabItem, dir entity.QuestionDirection) (entity.QAPair, error) {
	if item == nil {
		return entity.QAPair{}, entity.ErrVocabItemNotFound
	}
	if !dir.Valid() {
		return entity.QAPair{}, fmt.Errorf("%w: %s", entity.ErrInvalidDirection, dir)
	}
	if dir == entity.Bidirectional {
		dir = entity.NativeToForeign
		if g.rng.IntN(2) == 1 {
			dir = entity.ForeignToNative
		}
	}
	if !item.HasTransliteration() {
		return entity.QAPair{}, fmt.Errorf("entry %d (%q): %w", item.ID, item.Native, entity.ErrMissingTransliteration)
	}

	native, foreign := item.Native, item.TransliteratedText()
	switch dir {
	case entity.NativeToForeign:
		return entity.QAPair{Prompt: native, Expected: entity.ParseExpectedAnswer(foreign)}, nil
	default:
		return entity.QAPair{Prompt: foreign, Expected: entity.ParseExpectedAnswer(native)}, nil
	}
}

// RequiresTransliteration reports whether questions in dir reference the
// transliterated text. Every known direction does.
func RequiresTransliteration(dir entity.QuestionDirection) bool {
	return dir.Valid()
}
